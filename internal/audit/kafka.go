package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaStore appends resolution events to a Kafka topic as JSON records keyed
// by query, so replays of the same query land on the same partition.
type KafkaStore struct {
	client *kgo.Client
	topic  string
}

// NewKafkaStore connects a producer to the given brokers.
func NewKafkaStore(brokers []string, topic string) (*KafkaStore, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("audit: no kafka brokers configured")
	}
	if topic == "" {
		return nil, fmt.Errorf("audit: kafka topic is required")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("audit: create kafka client: %w", err)
	}
	return &KafkaStore{client: client, topic: topic}, nil
}

// Append produces the event synchronously.
func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("audit: marshal event: %w", err)
	}
	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.Query),
		Value: payload,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("audit: produce event: %w", err)
	}
	return nil
}

// Close flushes and releases the producer.
func (s *KafkaStore) Close() {
	s.client.Close()
}
