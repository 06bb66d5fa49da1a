package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kafila-ticketing/internal/config"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/models"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order lifecycle events, one topic per event type,
// keyed by order id so a single order's events stay ordered.
type Producer struct {
	Writer MessageWriter
	Topics config.TopicConfig
	Logger *logger.Logger
}

func NewProducer(brokers []string, topics config.TopicConfig, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{Writer: writer, Topics: topics, Logger: log}
}

func (p *Producer) topicFor(eventType string) (string, error) {
	switch eventType {
	case models.EventOrderCreated:
		return p.Topics.OrderCreated, nil
	case models.EventOrderPaid:
		return p.Topics.OrderPaid, nil
	case models.EventOrderRefunded:
		return p.Topics.OrderRefunded, nil
	case models.EventOrderCheckedIn:
		return p.Topics.OrderCheckedIn, nil
	}
	return "", fmt.Errorf("no topic for event type %q", eventType)
}

// Publish streams one lifecycle event to its topic
func (p *Producer) Publish(ctx context.Context, ev models.LifecycleEvent) error {
	topic, err := p.topicFor(ev.Type)
	if err != nil {
		return err
	}

	msgBytes, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	if err := p.Writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(ev.OrderID),
		Value: msgBytes,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}

	p.Logger.LogKafka("PUBLISH", topic, ev.OrderID)
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// NopPublisher drops events. Used when kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.LifecycleEvent) error { return nil }
func (NopPublisher) Close() error                                        { return nil }
