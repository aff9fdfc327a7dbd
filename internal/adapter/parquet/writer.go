// Package parquet exports aggregated cells as a Parquet file for offline
// analysis.
package parquet

import (
	"context"
	"fmt"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
)

// Row is the on-disk layout of one cell.
type Row struct {
	Year    int32   `parquet:"name=year, type=INT32"`
	Hour    int32   `parquet:"name=hour, type=INT32"`
	Lat     float64 `parquet:"name=lat, type=DOUBLE"`
	Lon     float64 `parquet:"name=lon, type=DOUBLE"`
	Volume  float64 `parquet:"name=volume, type=DOUBLE"`
	BuildID string  `parquet:"name=build_id, type=BYTE_ARRAY, convertedtype=UTF8"`
}

const parallelism = 4

// Export writes every cell of ds to path, replacing any existing file.
// progress, when non-nil, is called once per row written.
func Export(ctx context.Context, path string, ds *domain.Dataset, progress func()) (int, error) {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewParquetWriter(fw, new(Row), parallelism)
	if err != nil {
		return 0, fmt.Errorf("create parquet writer: %w", err)
	}

	written := 0
	for _, c := range ds.All() {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		row := Row{
			Year:    int32(c.Year),
			Hour:    int32(c.Hour),
			Lat:     c.Lat,
			Lon:     c.Lon,
			Volume:  c.Volume,
			BuildID: ds.BuildID(),
		}
		if err := pw.Write(row); err != nil {
			return written, fmt.Errorf("write parquet row %d: %w", written, err)
		}
		written++
		if progress != nil {
			progress()
		}
	}

	if err := pw.WriteStop(); err != nil {
		return written, fmt.Errorf("finalize parquet file: %w", err)
	}
	return written, nil
}
