// Package events defines the domain events raised by the order aggregate
// and the Watermill topics they are published on.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Watermill topics, one per event kind.
const (
	TopicOrderCreated     = "order.created"
	TopicOrderItemAdded   = "order.item_added"
	TopicOrderItemRemoved = "order.item_removed"
	TopicOrderConfirmed   = "order.confirmed"
	TopicOrderShipped     = "order.shipped"
	TopicOrderDelivered   = "order.delivered"
	TopicOrderCancelled   = "order.cancelled"
)

// DomainEvent is implemented by every order event.
type DomainEvent interface {
	Topic() string
}

// Meta carries the publish-time envelope shared by all events.
type Meta struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta returns a fresh envelope with schema version 1.
func NewMeta(occurredAt time.Time) Meta {
	return Meta{EventID: uuid.New(), Version: 1, OccurredAt: occurredAt}
}

// LineSummary is the snapshot of one order line carried on events.
type LineSummary struct {
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// OrderCreated is raised once by the order factory.
type OrderCreated struct {
	Meta
	OrderID       uuid.UUID `json:"order_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
}

func (OrderCreated) Topic() string { return TopicOrderCreated }

// OrderItemAdded is raised when a line is added or merged into an order.
type OrderItemAdded struct {
	Meta
	OrderID  uuid.UUID `json:"order_id"`
	SKU      string    `json:"sku"`
	Quantity int       `json:"quantity"` // quantity added, not the merged total
}

func (OrderItemAdded) Topic() string { return TopicOrderItemAdded }

// OrderItemRemoved is raised when a line is removed from a pending order.
type OrderItemRemoved struct {
	Meta
	OrderID uuid.UUID `json:"order_id"`
	SKU     string    `json:"sku"`
}

func (OrderItemRemoved) Topic() string { return TopicOrderItemRemoved }

// OrderConfirmed carries the full line snapshot at confirmation time.
type OrderConfirmed struct {
	Meta
	OrderID     uuid.UUID       `json:"order_id"`
	Lines       []LineSummary   `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (OrderConfirmed) Topic() string { return TopicOrderConfirmed }

// OrderShipped is raised on the Confirmed → Shipped transition.
type OrderShipped struct {
	Meta
	OrderID uuid.UUID `json:"order_id"`
}

func (OrderShipped) Topic() string { return TopicOrderShipped }

// OrderDelivered is raised on the Shipped → Delivered transition.
type OrderDelivered struct {
	Meta
	OrderID uuid.UUID `json:"order_id"`
}

func (OrderDelivered) Topic() string { return TopicOrderDelivered }

// OrderCancelled carries the line snapshot at cancellation time.
type OrderCancelled struct {
	Meta
	OrderID     uuid.UUID       `json:"order_id"`
	Lines       []LineSummary   `json:"lines"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (OrderCancelled) Topic() string { return TopicOrderCancelled }
