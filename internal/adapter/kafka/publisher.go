// Package kafka announces successful forecast refreshes on a topic so
// downstream consumers can react to new data without polling the service.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/dwd-pollen/internal/config"
)

// Announcement describes one completed update pass.
type Announcement struct {
	LastUpdate time.Time `json:"last_update"`
	NextUpdate time.Time `json:"next_update"`
	Regions    int       `json:"regions"`
	Allergens  []string  `json:"allergens"`
}

// Publisher produces refresh announcements to a Kafka topic.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured announcement topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: w, logger: logger}
}

// PublishUpdate serializes and publishes one announcement. The message key
// is the publisher timestamp so compacted topics keep only the newest
// announcement per report.
func (p *Publisher) PublishUpdate(ctx context.Context, ann Announcement) error {
	data, err := json.Marshal(ann)
	if err != nil {
		return fmt.Errorf("serialize announcement: %w", err)
	}

	msg := kafkago.Message{
		Key:   []byte(ann.LastUpdate.Format(time.RFC3339)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "source", Value: []byte("dwd-open-data")},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish announcement: %w", err)
	}

	p.logger.Debug("published refresh announcement",
		"last_update", ann.LastUpdate, "regions", ann.Regions)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
