// Package kafka ships audit events to a Kafka topic, keyed by credential id so
// every event for one credential lands on the same partition in order.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"credverify/internal/platform/kafka/producer"
	"credverify/pkg/platform/audit"
)

// Producer is the subset of producer.Producer used here.
type Producer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

type Store struct {
	producer Producer
	topic    string
}

func New(p Producer, topic string) *Store {
	return &Store{producer: p, topic: topic}
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.CredentialID.String()),
		Value: payload,
		Headers: map[string]string{
			"event_type": event.Action,
		},
	}
	if event.RequestID != "" {
		msg.Headers["request_id"] = event.RequestID
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
