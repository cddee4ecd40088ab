// Package kafka publishes audit events to a Kafka topic. Kafka is the
// long-term home of audit data; postgres only holds the outbox.
package kafka

import (
	"context"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Publisher wraps a franz-go client for the audit topic.
type Publisher struct {
	client *kgo.Client
	topic  string
}

// NewPublisher connects to the given brokers. Close must be called to flush
// buffered records on shutdown.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Publish sends one audit record synchronously. The outbox worker only
// marks a row published after this returns nil, so delivery is
// at-least-once.
func (p *Publisher) Publish(ctx context.Context, key, value []byte) error {
	record := &kgo.Record{Topic: p.topic, Key: key, Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

func (p *Publisher) Close() {
	p.client.Close()
}
