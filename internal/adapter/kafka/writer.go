package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/rainfall-features/internal/config"
	"github.com/couchcryptid/rainfall-features/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// messageWriter is the subset of *kafkago.Writer the sink needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes encoded feature rows to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// FeatureRow is the JSON payload of one published row.
type FeatureRow struct {
	Province   string             `json:"province"`
	Year       int                `json:"year"`
	Month      int                `json:"month"`
	Target     float64            `json:"target"`
	Features   map[string]float64 `json:"features"`
	PreparedAt time.Time          `json:"prepared_at"`
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Name identifies the loader in logs and metrics.
func (w *Writer) Name() string { return "kafka" }

// Load serializes every encoded row and publishes them in a single
// WriteMessages call. Rows with the same province land on the same partition.
func (w *Writer) Load(ctx context.Context, res domain.Result) error {
	if res.Table == nil || res.Table.Rows == 0 {
		return nil
	}
	msgs, err := buildMessages(res)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish feature rows: %w", err)
	}
	w.logger.Info("feature rows published", "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func buildMessages(res domain.Result) ([]kafkago.Message, error) {
	target, ok := res.Table.Column(domain.ColAvgRain)
	if !ok {
		return nil, fmt.Errorf("encoded table has no %s column", domain.ColAvgRain)
	}

	features := make([]*domain.Column, 0, len(res.Features))
	for _, name := range res.Features {
		col, ok := res.Table.Column(name)
		if !ok || col.Kind == domain.KindText {
			continue
		}
		features = append(features, col)
	}

	featureCount := []byte(strconv.Itoa(len(features)))
	preparedAt := []byte(res.PreparedAt.Format(time.RFC3339))

	msgs := make([]kafkago.Message, res.Table.Rows)
	for i := range res.Table.Rows {
		row := FeatureRow{
			Target:     target.Values[i],
			Features:   make(map[string]float64, len(features)),
			PreparedAt: res.PreparedAt,
		}
		if i < len(res.Records) {
			row.Province = res.Records[i].Province
			row.Year = res.Records[i].Year
			row.Month = res.Records[i].Month
		}
		for _, col := range features {
			row.Features[col.Name] = col.Values[i]
		}

		data, err := json.Marshal(row)
		if err != nil {
			return nil, fmt.Errorf("serialize feature row %d: %w", i, err)
		}
		msgs[i] = kafkago.Message{
			Key:   []byte(rowKey(row)),
			Value: data,
			Headers: []kafkago.Header{
				{Key: "run_id", Value: []byte(res.RunID)},
				{Key: "feature_count", Value: featureCount},
				{Key: "prepared_at", Value: preparedAt},
			},
		}
	}
	return msgs, nil
}

func rowKey(row FeatureRow) string {
	return fmt.Sprintf("%s|%d|%02d", row.Province, row.Year, row.Month)
}
