// Package sink holds the optional ingest-side outputs: a Kafka forwarder
// for downstream consumers and a ClickHouse archiver for long-term storage.
// Sinks receive event copies after the store append; they never gate
// ingestion.
package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"github.com/upliftapps/pulse/internal/analytics"
	"github.com/upliftapps/pulse/internal/config"
	"github.com/upliftapps/pulse/internal/schema"
)

// Kafka forwards events and alerts to their configured topics. Writers are
// async so a slow broker never backs up into ingestion or queries.
type Kafka struct {
	events *kafka.Writer
	alerts *kafka.Writer
}

// NewKafka builds writers for the topics present in cfg. Missing topics
// disable the corresponding output.
func NewKafka(cfg config.KafkaConfig) *Kafka {
	k := &Kafka{}
	if topic, ok := cfg.Topics["events"]; ok && len(cfg.Brokers) > 0 {
		k.events = newWriter(cfg.Brokers, topic)
		log.Info().Str("topic", topic).Msg("Kafka event forwarder initialized")
	}
	if topic, ok := cfg.Topics["alerts"]; ok && len(cfg.Brokers) > 0 {
		k.alerts = newWriter(cfg.Brokers, topic)
		log.Info().Str("topic", topic).Msg("Kafka alert publisher initialized")
	}
	return k
}

func newWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              100,
		BatchTimeout:           time.Millisecond * 100,
		Async:                  true,
		AllowAutoTopicCreation: true,
	}
}

// Forward publishes one event, keyed by kind so consumers can partition by
// event family.
func (k *Kafka) Forward(ctx context.Context, e schema.Event) error {
	if k.events == nil {
		return nil
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", e.ID, err)
	}
	return k.events.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.Kind),
		Value: data,
	})
}

// PublishAlert publishes one triggered alert.
func (k *Kafka) PublishAlert(ctx context.Context, a analytics.Alert) error {
	if k.alerts == nil {
		return nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encoding alert %s: %w", a.ID, err)
	}
	return k.alerts.WriteMessages(ctx, kafka.Message{
		Key:   []byte(a.ID),
		Value: data,
	})
}

// Close closes all writers.
func (k *Kafka) Close() error {
	if k.events != nil {
		k.events.Close()
	}
	if k.alerts != nil {
		k.alerts.Close()
	}
	return nil
}
