// Package events publishes exhibit domain events to Kafka. Publishing is
// fire-and-forget from the caller's perspective: a failed publish is logged
// and never fails the operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/comic-con-museum/fan-forge/internal/config"
	"github.com/comic-con-museum/fan-forge/internal/domain"
)

// Publisher emits exhibit domain events.
type Publisher interface {
	// Publish emits a single event. Implementations must be safe for
	// concurrent use.
	Publish(ctx context.Context, event *domain.Event) error

	// Close releases publisher resources.
	Close() error
}

// KafkaPublisher publishes events to a Kafka topic. Messages are keyed by
// exhibit ID so all events for one exhibit land on the same partition and
// preserve their order.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger zerolog.Logger
}

// Compile-time interface verification.
var _ Publisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a Kafka-backed publisher from configuration.
func NewKafkaPublisher(cfg config.EventsConfig, logger zerolog.Logger) *KafkaPublisher {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Publish emits a single event to the configured topic.
func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.Event) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.ExhibitID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	p.logger.Debug().
		Str("event_type", event.EventType).
		Str("event_id", event.EventID).
		Int64("exhibit_id", event.ExhibitID).
		Msg("event published")

	return nil
}

// Close flushes pending messages and closes the writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher discards all events. Used when event publishing is disabled.
type NopPublisher struct{}

// Compile-time interface verification.
var _ Publisher = (*NopPublisher)(nil)

// Publish discards the event.
func (NopPublisher) Publish(context.Context, *domain.Event) error { return nil }

// Close is a no-op.
func (NopPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when events are enabled in the
// configuration and a NopPublisher otherwise.
func NewPublisher(cfg config.EventsConfig, logger zerolog.Logger) Publisher {
	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(cfg, logger)
}
