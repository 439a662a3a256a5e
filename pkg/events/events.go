package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gamevault/storefront-backend/config"
	"github.com/gamevault/storefront-backend/pkg/logger"
	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	OrderCreated   EventType = "order.created"
	OrderPaid      EventType = "order.paid"
	OrderDelivered EventType = "order.delivered"
)

// OrderEvent is the message body written to the order topic.
type OrderEvent struct {
	Type       EventType `json:"type"`
	OrderID    uint      `json:"orderId"`
	UserID     uint      `json:"userId"`
	TotalPrice float64   `json:"totalPrice"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Key partitions events of one order together, e.g. order-created-42.
func (e OrderEvent) Key() string {
	return fmt.Sprintf("order-%s-%d", e.Type, e.OrderID)
}

type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
	Close() error
}

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.OrderTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

func NewKafkaPublisher(cfg config.KafkaConfig) *KafkaPublisher {
	logger.Info("Kafka order publisher configured", map[string]interface{}{
		"brokers": cfg.Brokers,
		"topic":   cfg.OrderTopic,
	})
	return &KafkaPublisher{writer: NewKafkaWriter(cfg)}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Key()),
		Value: value,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(cfg config.KafkaConfig) Publisher {
	if !cfg.Enabled() {
		logger.Info("Kafka not configured, order events disabled", nil)
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg)
}

type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []OrderEvent
	Err    error
}

func (r *Recorder) PublishOrderEvent(_ context.Context, event OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []OrderEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]OrderEvent(nil), r.events...)
}
