package csvsource

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

// Columns names the header fields holding each attribute.
type Columns struct {
	Year     string
	Hour     string
	Geometry string
	Volume   string
}

// DefaultColumns matches the NYC DOT Automated Traffic Volume Counts export.
func DefaultColumns() Columns {
	return Columns{Year: "Yr", Hour: "HH", Geometry: "WktGeom", Volume: "Vol"}
}

// Loader reads raw traffic count records from a CSV file.
// It implements pipeline.Extractor.
type Loader struct {
	path    string
	columns Columns
	logger  *slog.Logger
}

// NewLoader creates a loader for the file at path.
func NewLoader(path string, columns Columns, logger *slog.Logger) *Loader {
	return &Loader{path: path, columns: columns, logger: logger}
}

// Extract opens the file and decodes every row. Open failures wrap
// domain.ErrFileAccess; malformed content wraps domain.ErrParse.
func (l *Loader) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrFileAccess, err)
	}
	defer f.Close()

	records, err := Read(ctx, f, l.columns)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", l.path, err)
	}
	l.logger.Info("input file loaded", "path", l.path, "records", len(records))
	return records, nil
}

// columnIndex maps each attribute to its position in a row.
type columnIndex struct {
	year, hour, geometry, volume int
}

// Read decodes CSV rows from r. The first row must be a header containing
// every configured column; matching is case-insensitive.
func Read(ctx context.Context, r io.Reader, columns Columns) ([]domain.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input, no header row", domain.ErrParse)
	}
	if err != nil {
		return nil, classifyReadError(err)
	}
	idx, err := indexColumns(header, columns)
	if err != nil {
		return nil, err
	}

	var records []domain.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, classifyReadError(err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, decodeRow(row, idx, line))

		if len(records)%10000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	return records, nil
}

func indexColumns(header []string, columns Columns) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := positions[key]; !dup {
			positions[key] = i
		}
	}

	lookup := func(name string) (int, error) {
		i, ok := positions[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return 0, fmt.Errorf("%w: header is missing column %q", domain.ErrParse, name)
		}
		return i, nil
	}

	var idx columnIndex
	var err error
	if idx.year, err = lookup(columns.Year); err != nil {
		return idx, err
	}
	if idx.hour, err = lookup(columns.Hour); err != nil {
		return idx, err
	}
	if idx.geometry, err = lookup(columns.Geometry); err != nil {
		return idx, err
	}
	if idx.volume, err = lookup(columns.Volume); err != nil {
		return idx, err
	}
	return idx, nil
}

func decodeRow(row []string, idx columnIndex, line int) domain.RawRecord {
	rec := domain.RawRecord{
		Year:    parseOptionalInt(row[idx.year]),
		Hour:    parseOptionalInt(row[idx.hour]),
		WktGeom: strings.TrimSpace(row[idx.geometry]),
		Volume:  parseOptionalFloat(row[idx.volume]),
		Line:    line,
	}
	if rec.Hour != nil && (*rec.Hour < 0 || *rec.Hour > 23) {
		rec.Hour = nil
	}
	return rec
}

// parseOptionalInt accepts plain integers and integral floats ("2020.0").
// Anything else is absent.
func parseOptionalInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(f)
	return &n
}

func parseOptionalFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// classifyReadError separates structural CSV problems from I/O failures.
func classifyReadError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return fmt.Errorf("%w: %w", domain.ErrParse, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrFileAccess, err)
}
