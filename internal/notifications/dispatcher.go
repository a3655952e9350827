package notifications

import (
	"context"
	"log"
	"time"

	"fastmeet-service/internal/observability"
	"fastmeet-service/internal/rabbitmq"
)

// Envelope is the message consumed by the notification delivery service,
// which owns push tokens and per-user delivery preferences.
type Envelope struct {
	SchemaVersion int            `json:"schema_version"`
	Kind          string         `json:"kind"`
	ToUserID      int            `json:"to_user_id"`
	OccurredAt    string         `json:"occurred_at"`
	Payload       map[string]any `json:"payload"`
}

// Dispatcher publishes user notifications over AMQP. Fire and forget: a
// publish failure is logged and counted, never surfaced to the operation
// that triggered the notification.
type Dispatcher struct {
	publisher  rabbitmq.Publisher
	routingKey string
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(publisher rabbitmq.Publisher, routingKey string) *Dispatcher {
	return &Dispatcher{publisher: publisher, routingKey: routingKey}
}

// Notify publishes one notification envelope.
func (d *Dispatcher) Notify(ctx context.Context, toUserID int, kind string, payload map[string]any) {
	if d == nil || d.publisher == nil {
		return
	}

	envelope := Envelope{
		SchemaVersion: 1,
		Kind:          kind,
		ToUserID:      toUserID,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339Nano),
		Payload:       payload,
	}

	if err := d.publisher.Publish(ctx, d.routingKey, envelope); err != nil {
		observability.IncAMQPPublishError()
		log.Printf("notification publish failed: kind=%s user_id=%d err=%v", kind, toUserID, err)
	}
}
