// Package events carries order lifecycle notifications over a message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Event types.
const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusUpdated = "order.status_updated"
)

// Event is the JSON message published for order changes.
type Event struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"orderId"`
	BuyerID    string    `json:"buyerId"`
	Status     string    `json:"status"`
	Amount     string    `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher emits events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Handler processes one consumed event.
type Handler func(ctx context.Context, e Event) error

// Bus publishes events and consumes them until the context is done.
type Bus interface {
	Publisher
	Consume(ctx context.Context, handler Handler) error
	Close() error
}

// Transport moves raw message bodies. pkg/rabbitmq and pkg/natsbus implement it.
type Transport interface {
	Publish(ctx context.Context, body []byte) error
	Consume(ctx context.Context, handler func([]byte) error) error
	Close() error
}

type transportBus struct {
	transport Transport
	logger    *zap.Logger
}

// NewBus encodes events as JSON on top of a transport.
func NewBus(transport Transport, logger *zap.Logger) Bus {
	return &transportBus{transport: transport, logger: logger}
}

func (b *transportBus) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
	}
	if err := b.transport.Publish(ctx, body); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", e.Type, err)
	}
	return nil
}

func (b *transportBus) Consume(ctx context.Context, handler Handler) error {
	return b.transport.Consume(ctx, func(body []byte) error {
		var e Event
		if err := json.Unmarshal(body, &e); err != nil {
			// Redelivering a malformed body can never succeed.
			b.logger.Warn("dropping malformed event", zap.ByteString("body", body), zap.Error(err))
			return nil
		}
		return handler(ctx, e)
	})
}

func (b *transportBus) Close() error {
	return b.transport.Close()
}

// Nop is a Bus that drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }

// Consume blocks until ctx is done.
func (Nop) Consume(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (Nop) Close() error { return nil }

// LogHandler logs every consumed event.
func LogHandler(logger *zap.Logger) Handler {
	return func(_ context.Context, e Event) error {
		logger.Info("order event",
			zap.String("type", e.Type),
			zap.String("order_id", e.OrderID),
			zap.String("buyer_id", e.BuyerID),
			zap.String("status", e.Status),
			zap.String("amount", e.Amount),
			zap.Time("occurred_at", e.OccurredAt),
		)
		return nil
	}
}

// PublishQuietly publishes e and logs failures instead of returning them.
func PublishQuietly(ctx context.Context, p Publisher, logger *zap.Logger, e Event) {
	if err := p.Publish(ctx, e); err != nil {
		logger.Error("failed to publish event",
			zap.String("type", e.Type),
			zap.String("order_id", e.OrderID),
			zap.Error(err),
		)
	}
}
