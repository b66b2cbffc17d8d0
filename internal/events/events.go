// Package events publishes order lifecycle events to a message broker.
package events

import (
	"context"
	"time"
)

const (
	TopicOrderPlaced    = "orders.placed"
	TopicOrderPaid      = "orders.paid"
	TopicOrderDelivered = "orders.delivered"
)

// OrderEvent is the payload for every order topic.
type OrderEvent struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	TotalPrice string    `json:"totalPrice"`
	Items      int       `json:"items"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher defines an interface for publishing events to a message broker.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, event any) error
}

// Noop discards events. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, string, any) error { return nil }
