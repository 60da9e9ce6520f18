package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"storefront/internal/infra"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer is the subset of *kafka.Writer used to publish.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes events to a single topic, keyed by the pattern so events
// of one kind stay ordered within a partition.
type Publisher struct {
	writer Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{writer: &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}}
}

func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w}
}

func (p *Publisher) Publish(ctx context.Context, pattern string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", pattern, err)
	}
	msg := kafkago.Message{
		Key:   []byte(pattern),
		Value: payload,
		Headers: []kafkago.Header{
			{Key: "pattern", Value: []byte(pattern)},
			{Key: "message-id", Value: []byte(uuid.NewString())},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s event: %w", pattern, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ infra.PublisherInterface = (*Publisher)(nil)
