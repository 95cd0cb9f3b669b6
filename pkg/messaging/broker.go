package messaging

import (
	"context"
	"encoding/json"
	"time"
)

// Broker defines the interface for message brokers. Payloads are opaque
// JSON documents.
type Broker interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// Handler processes one message from a subscription
type Handler func(ctx context.Context, payload []byte) error

// Envelope wraps an outbox payload on the wire
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}
