package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/nespreso-client/internal/config"
	"github.com/couchcryptid/nespreso-client/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces run summaries to a Kafka topic.
// It implements pipeline.SummaryPublisher.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured summary topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishSummary serializes and publishes one run summary.
func (p *Publisher) PublishSummary(ctx context.Context, s domain.RunSummary) error {
	msg, err := serializeSummary(s)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish run summary: %w", err)
	}
	p.logger.Debug("run summary published", "kind", s.Kind, "name", s.Name, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeSummary marshals a RunSummary into a Kafka message keyed by run name,
// so summaries for the same prefix or date span land on the same partition.
func serializeSummary(s domain.RunSummary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize run summary: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(s.Name),
		Value: data,
		Time:  s.FinishedAt,
		Headers: []kafkago.Header{
			{Key: "run_kind", Value: []byte(s.Kind)},
			{Key: "finished_at", Value: []byte(s.FinishedAt.Format(time.RFC3339))},
			{Key: "succeeded", Value: []byte(strconv.Itoa(s.Succeeded))},
		},
	}, nil
}
