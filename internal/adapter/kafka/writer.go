package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/traffic-volume-dashboard/internal/config"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/domain"
	"github.com/couchcryptid/traffic-volume-dashboard/internal/observability"
)

// messageWriter is the subset of *kafkago.Writer used by Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes aggregated cells to a Kafka topic.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured cells topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaCellsTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish sends every cell of ds in batches of batchSize. The dataset's
// build identity travels in message headers so consumers can group a
// snapshot.
func (w *Writer) Publish(ctx context.Context, ds *domain.Dataset, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("publish cells: batch size must be positive, got %d", batchSize)
	}
	cells := ds.All()
	start := time.Now()
	for lo := 0; lo < len(cells); lo += batchSize {
		hi := min(lo+batchSize, len(cells))
		if err := w.LoadBatch(ctx, ds, cells[lo:hi]); err != nil {
			return fmt.Errorf("publish cells %d-%d: %w", lo, hi, err)
		}
	}
	w.logger.Info("cells published",
		"cells", len(cells),
		"build_id", ds.BuildID(),
		"duration", time.Since(start),
	)
	return nil
}

// LoadBatch serializes and publishes cells in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, ds *domain.Dataset, cells []domain.Cell) error {
	if len(cells) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(cells))
	for i := range cells {
		msg, err := serializeToMessage(cells[i], ds.BuildID(), ds.BuiltAt())
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.CellsPublished.Add(float64(len(cells)))
	}
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// cellKey is "year|hour|lat|lon", stable for a given cell across builds.
func cellKey(c domain.Cell) string {
	return strconv.Itoa(c.Year) + "|" + strconv.Itoa(c.Hour) + "|" +
		strconv.FormatFloat(c.Lat, 'f', -1, 64) + "|" +
		strconv.FormatFloat(c.Lon, 'f', -1, 64)
}

// serializeToMessage marshals a Cell into a Kafka message.
func serializeToMessage(cell domain.Cell, buildID string, builtAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(cell)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize cell: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(cellKey(cell)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "build_id", Value: []byte(buildID)},
			{Key: "built_at", Value: []byte(builtAt.Format(time.RFC3339))},
		},
	}, nil
}
