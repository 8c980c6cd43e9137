package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the order domain. Use errors.Is() to check these.
var (
	// ErrOrderNotFound indicates the requested order does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidCustomer indicates blank customer name, email or shipping address.
	ErrInvalidCustomer = errors.New("invalid customer details")

	// ErrInvalidOrderLine indicates a line with a blank SKU or product name,
	// a non-positive unit price, or a non-positive quantity.
	ErrInvalidOrderLine = errors.New("invalid order line")

	// ErrOrderNotPending indicates an item mutation on an order that has
	// already left the Pending state.
	ErrOrderNotPending = errors.New("order items can only be changed while pending")

	// ErrLineNotFound indicates a removal for a SKU the order does not contain.
	ErrLineNotFound = errors.New("order line not found")

	// ErrEmptyOrder indicates a confirmation attempt on an order with no lines.
	ErrEmptyOrder = errors.New("order has no items")

	// ErrInvalidStatusTransition indicates a status operation attempted from
	// a status that forbids it.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrProductNotFound indicates an order line whose SKU has no inventory item.
	ErrProductNotFound = errors.New("no inventory item for product")

	// ErrConcurrentModification indicates the order changed between load and
	// save; the caller should reload and retry.
	ErrConcurrentModification = errors.New("order was modified concurrently")
)

// LineShortfall describes one order line that failed stock validation.
type LineShortfall struct {
	SKU       string `json:"sku"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// StockValidationError aggregates every line of an order that failed the
// stock sufficiency check during confirmation. The coordinator reports
// all failing lines, not just the first, and guarantees no inventory
// item was mutated when this error is returned.
type StockValidationError struct {
	OrderID string
	Lines   []LineShortfall
}

func (e *StockValidationError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = fmt.Sprintf("%s: requested %d, available %d", l.SKU, l.Requested, l.Available)
	}
	return fmt.Sprintf("insufficient stock for order %s: %s", e.OrderID, strings.Join(parts, "; "))
}
