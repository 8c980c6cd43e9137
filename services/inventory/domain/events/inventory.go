// Package events defines the domain events raised by the inventory
// aggregate and the Watermill topics they are published on.
//
// Events are appended to the aggregate's own buffer during a mutation and
// drained by the application layer after a successful save. There is no
// global event bus; the sink is passed explicitly.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Watermill topics, one per event kind.
const (
	TopicInventoryItemCreated     = "inventory.created"
	TopicStockIncreased           = "inventory.stock_increased"
	TopicStockDecreased           = "inventory.stock_decreased"
	TopicLowStockWarning          = "inventory.low_stock"
	TopicOutOfStock               = "inventory.out_of_stock"
	TopicMinimumStockLevelUpdated = "inventory.minimum_level_updated"
	TopicInventoryReserved        = "inventory.reserved"
	TopicReservationReleased      = "inventory.reservation_released"
	TopicReservationConfirmed     = "inventory.reservation_confirmed"
)

// DomainEvent is implemented by every inventory event. Topic returns the
// Watermill topic the event is published on.
type DomainEvent interface {
	Topic() string
}

// Meta carries the publish-time envelope shared by all events.
type Meta struct {
	EventID    uuid.UUID `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int       `json:"version"`  // Schema version; increment on breaking changes
	OccurredAt time.Time `json:"occurred_at"`
}

// NewMeta returns a fresh envelope with schema version 1.
func NewMeta(occurredAt time.Time) Meta {
	return Meta{EventID: uuid.New(), Version: 1, OccurredAt: occurredAt}
}

// InventoryItemCreated is raised once by the aggregate factory.
type InventoryItemCreated struct {
	Meta
	ItemID            uuid.UUID `json:"item_id"`
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	MinimumStockLevel int       `json:"minimum_stock_level"`
}

func (InventoryItemCreated) Topic() string { return TopicInventoryItemCreated }

// StockIncreased is raised on every successful IncreaseStock call.
type StockIncreased struct {
	Meta
	ItemID           uuid.UUID `json:"item_id"`
	SKU              string    `json:"sku"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Reason           string    `json:"reason,omitempty"`
}

func (StockIncreased) Topic() string { return TopicStockIncreased }

// StockDecreased is raised on every successful DecreaseStock call,
// including the decrement performed by ConfirmReservation.
type StockDecreased struct {
	Meta
	ItemID           uuid.UUID `json:"item_id"`
	SKU              string    `json:"sku"`
	PreviousQuantity int       `json:"previous_quantity"`
	NewQuantity      int       `json:"new_quantity"`
	Reason           string    `json:"reason,omitempty"`
}

func (StockDecreased) Topic() string { return TopicStockDecreased }

// LowStockWarning is raised every time a mutation leaves the quantity at
// or below the minimum stock level while still positive. The aggregate
// keeps no "already warned" flag, so repeated qualifying calls re-raise.
type LowStockWarning struct {
	Meta
	ItemID            uuid.UUID `json:"item_id"`
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	MinimumStockLevel int       `json:"minimum_stock_level"`
}

func (LowStockWarning) Topic() string { return TopicLowStockWarning }

// OutOfStock is raised when a decrease drops the quantity to zero.
// It is not raised on creation even when the initial quantity is zero.
type OutOfStock struct {
	Meta
	ItemID uuid.UUID `json:"item_id"`
	SKU    string    `json:"sku"`
}

func (OutOfStock) Topic() string { return TopicOutOfStock }

// MinimumStockLevelUpdated is raised when the threshold is replaced.
type MinimumStockLevelUpdated struct {
	Meta
	ItemID        uuid.UUID `json:"item_id"`
	SKU           string    `json:"sku"`
	PreviousLevel int       `json:"previous_level"`
	NewLevel      int       `json:"new_level"`
}

func (MinimumStockLevelUpdated) Topic() string { return TopicMinimumStockLevelUpdated }

// InventoryReserved is raised when a reservation is placed.
type InventoryReserved struct {
	Meta
	ItemID            uuid.UUID `json:"item_id"`
	SKU               string    `json:"sku"`
	ReservationID     string    `json:"reservation_id"`
	Quantity          int       `json:"quantity"`
	AvailableQuantity int       `json:"available_quantity"` // after the reservation
}

func (InventoryReserved) Topic() string { return TopicInventoryReserved }

// ReservationReleased is raised when a reservation is released without a
// stock decrement, either explicitly or by the expiry purge.
type ReservationReleased struct {
	Meta
	ItemID            uuid.UUID `json:"item_id"`
	SKU               string    `json:"sku"`
	ReservationID     string    `json:"reservation_id"`
	QuantityReleased  int       `json:"quantity_released"`
	AvailableQuantity int       `json:"available_quantity"` // after the release
}

func (ReservationReleased) Topic() string { return TopicReservationReleased }

// ReservationConfirmed is raised when a reservation is converted into a
// permanent stock decrement.
type ReservationConfirmed struct {
	Meta
	ItemID        uuid.UUID `json:"item_id"`
	SKU           string    `json:"sku"`
	ReservationID string    `json:"reservation_id"`
	Quantity      int       `json:"quantity"`
	NewQuantity   int       `json:"new_quantity"` // on-hand quantity after the decrement
	Reason        string    `json:"reason,omitempty"`
}

func (ReservationConfirmed) Topic() string { return TopicReservationConfirmed }
