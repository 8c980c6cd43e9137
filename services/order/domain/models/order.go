package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domain "github.com/ghuser/shopcore/services/order/domain"
	"github.com/ghuser/shopcore/services/order/domain/events"
)

// OrderStatus is the order state machine. Transitions are forward-only
// except Cancelled, which is reachable from Pending and Confirmed.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OrderLine is one product position on an order. Lines are deduplicated
// by SKU: adding an existing SKU merges quantities into one line.
type OrderLine struct {
	SKU         string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// Order is the order aggregate: customer details, a deduplicated set of
// lines and the status state machine. Items are mutable only while the
// order is Pending; every transition raises exactly one domain event.
type Order struct {
	ID              uuid.UUID
	CustomerName    string
	CustomerEmail   string
	ShippingAddress string
	Status          OrderStatus

	// Version is the optimistic-concurrency stamp checked by the
	// Postgres repository on update.
	Version int

	CreatedAt  time.Time
	ModifiedAt *time.Time

	lines   []OrderLine
	pending []events.DomainEvent
}

// NewOrder constructs a Pending order with no lines. All customer fields
// are required and the email must parse as an address.
func NewOrder(customerName, customerEmail, shippingAddress string) (*Order, error) {
	if strings.TrimSpace(customerName) == "" || strings.TrimSpace(shippingAddress) == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if _, err := mail.ParseAddress(customerEmail); err != nil {
		return nil, domain.ErrInvalidCustomer
	}

	now := time.Now().UTC()
	o := &Order{
		ID:              uuid.New(),
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		ShippingAddress: shippingAddress,
		Status:          StatusPending,
		CreatedAt:       now,
	}
	o.raise(events.OrderCreated{
		Meta:          events.NewMeta(now),
		OrderID:       o.ID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
	})
	return o, nil
}

// RestoreOrder rebuilds an aggregate from persisted state without raising
// events. Used by repositories only.
func RestoreOrder(
	id uuid.UUID,
	customerName, customerEmail, shippingAddress string,
	status OrderStatus,
	version int,
	createdAt time.Time,
	modifiedAt *time.Time,
	lines []OrderLine,
) *Order {
	return &Order{
		ID:              id,
		CustomerName:    customerName,
		CustomerEmail:   customerEmail,
		ShippingAddress: shippingAddress,
		Status:          status,
		Version:         version,
		CreatedAt:       createdAt,
		ModifiedAt:      modifiedAt,
		lines:           append([]OrderLine(nil), lines...),
	}
}

// Lines returns a copy of the order lines.
func (o *Order) Lines() []OrderLine {
	return append([]OrderLine(nil), o.lines...)
}

// TotalAmount is the sum of unit price times quantity over all lines.
// Always recomputed, never stored.
func (o *Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.lines {
		total = total.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}

// AddItem appends a line, or merges the quantity into the existing line
// when the SKU is already present. Pending orders only.
func (o *Order) AddItem(sku, productName string, unitPrice decimal.Decimal, quantity int) error {
	if o.Status != StatusPending {
		return domain.ErrOrderNotPending
	}
	if strings.TrimSpace(sku) == "" || strings.TrimSpace(productName) == "" {
		return domain.ErrInvalidOrderLine
	}
	if !unitPrice.IsPositive() || quantity <= 0 {
		return domain.ErrInvalidOrderLine
	}

	now := time.Now().UTC()
	merged := false
	for idx := range o.lines {
		if o.lines[idx].SKU == sku {
			o.lines[idx].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		o.lines = append(o.lines, OrderLine{
			SKU:         sku,
			ProductName: productName,
			UnitPrice:   unitPrice,
			Quantity:    quantity,
		})
	}
	o.touch(now)

	o.raise(events.OrderItemAdded{
		Meta:     events.NewMeta(now),
		OrderID:  o.ID,
		SKU:      sku,
		Quantity: quantity,
	})
	return nil
}

// RemoveItem deletes the line with the given SKU. Pending orders only.
func (o *Order) RemoveItem(sku string) error {
	if o.Status != StatusPending {
		return domain.ErrOrderNotPending
	}

	for idx := range o.lines {
		if o.lines[idx].SKU == sku {
			now := time.Now().UTC()
			o.lines = append(o.lines[:idx], o.lines[idx+1:]...)
			o.touch(now)
			o.raise(events.OrderItemRemoved{
				Meta:    events.NewMeta(now),
				OrderID: o.ID,
				SKU:     sku,
			})
			return nil
		}
	}
	return domain.ErrLineNotFound
}

// Confirm transitions Pending → Confirmed. An order without lines cannot
// be confirmed. Stock validation happens in the application-layer
// confirmation coordinator before this is called.
func (o *Order) Confirm() error {
	if o.Status != StatusPending {
		return domain.ErrInvalidStatusTransition
	}
	if len(o.lines) == 0 {
		return domain.ErrEmptyOrder
	}

	now := time.Now().UTC()
	o.Status = StatusConfirmed
	o.touch(now)

	o.raise(events.OrderConfirmed{
		Meta:        events.NewMeta(now),
		OrderID:     o.ID,
		Lines:       o.lineSummaries(),
		TotalAmount: o.TotalAmount(),
	})
	return nil
}

// Ship transitions Confirmed → Shipped.
func (o *Order) Ship() error {
	if o.Status != StatusConfirmed {
		return domain.ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	o.Status = StatusShipped
	o.touch(now)
	o.raise(events.OrderShipped{Meta: events.NewMeta(now), OrderID: o.ID})
	return nil
}

// Deliver transitions Shipped → Delivered.
func (o *Order) Deliver() error {
	if o.Status != StatusShipped {
		return domain.ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	o.Status = StatusDelivered
	o.touch(now)
	o.raise(events.OrderDelivered{Meta: events.NewMeta(now), OrderID: o.ID})
	return nil
}

// Cancel transitions Pending or Confirmed → Cancelled. Shipped and
// Delivered orders are terminal and never cancellable.
func (o *Order) Cancel() error {
	if o.Status != StatusPending && o.Status != StatusConfirmed {
		return domain.ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	o.Status = StatusCancelled
	o.touch(now)
	o.raise(events.OrderCancelled{
		Meta:        events.NewMeta(now),
		OrderID:     o.ID,
		Lines:       o.lineSummaries(),
		TotalAmount: o.TotalAmount(),
	})
	return nil
}

// PullEvents drains and returns the buffered domain events in emission order.
func (o *Order) PullEvents() []events.DomainEvent {
	out := o.pending
	o.pending = nil
	return out
}

func (o *Order) lineSummaries() []events.LineSummary {
	out := make([]events.LineSummary, len(o.lines))
	for i, l := range o.lines {
		out[i] = events.LineSummary{
			SKU:         l.SKU,
			ProductName: l.ProductName,
			UnitPrice:   l.UnitPrice,
			Quantity:    l.Quantity,
		}
	}
	return out
}

func (o *Order) touch(now time.Time) {
	t := now
	o.ModifiedAt = &t
}

func (o *Order) raise(e events.DomainEvent) {
	o.pending = append(o.pending, e)
}
