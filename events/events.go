package events

import (
	"context"

	"tabletap/models"
)

type EventType string

const (
	OrderCreated       EventType = "order_created"
	OrderUpdated       EventType = "order_updated"
	OrderStatusChanged EventType = "order_status_changed"
)

// OrderEvent is the change notification emitted on every order mutation.
// Dashboard streams and the optional broker mirror both consume it.
type OrderEvent struct {
	Type        EventType          `json:"type"`
	OrderID     uint               `json:"order_id"`
	TableNumber int                `json:"table_number"`
	Status      models.OrderStatus `json:"status"`
}

type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// Fanout forwards an event to several publishers. A broker failure must not
// fail the order write that triggered it, so errors are returned combined
// only for the caller to log.
type Fanout []Publisher

func (f Fanout) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	var firstErr error
	for _, p := range f {
		if err := p.PublishOrderEvent(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
