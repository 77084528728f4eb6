package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"lunchsync/internal/model"
)

const orderCreatedAction = "created"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher announces created orders on a Kafka topic.
type EventPublisher struct {
	writer messageWriter
	topic  string
}

type orderEvent struct {
	Entity     string            `json:"entity"`
	Action     string            `json:"action"`
	ResourceID string            `json:"resourceId"`
	Topic      string            `json:"topic"`
	Metadata   map[string]string `json:"metadata"`
	Data       model.OrderRecord `json:"data"`
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
		topic: topic,
	}
}

func (p *EventPublisher) OrderCreated(ctx context.Context, runID string, rec model.OrderRecord, stored *model.StoredOrder) error {
	resourceID := rec.Key()
	if stored != nil && stored.ID != "" {
		resourceID = stored.ID
	}
	value, err := json.Marshal(orderEvent{
		Entity:     "order",
		Action:     orderCreatedAction,
		ResourceID: resourceID,
		Topic:      "order." + orderCreatedAction,
		Metadata: map[string]string{
			"runId":   runID,
			"company": rec.Company,
		},
		Data: rec,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	msg := kafka.Message{Key: []byte(rec.Key()), Value: value, Time: time.Now().UTC()}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}
