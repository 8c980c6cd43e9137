package domain

import "errors"

// Sentinel errors for the inventory domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested inventory item does not exist.
	ErrItemNotFound = errors.New("inventory item not found")

	// ErrSKUAlreadyExists indicates an inventory item with the same SKU already exists.
	ErrSKUAlreadyExists = errors.New("inventory item with this SKU already exists")

	// ErrInvalidSKU indicates the SKU violates domain constraints.
	ErrInvalidSKU = errors.New("invalid SKU")

	// ErrInvalidQuantity indicates a quantity that is not allowed for the
	// attempted operation (negative initial quantity, non-positive delta).
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInvalidMinimumStockLevel indicates a negative minimum stock level.
	ErrInvalidMinimumStockLevel = errors.New("invalid minimum stock level")

	// ErrInvalidReservationID indicates a blank reservation identifier.
	ErrInvalidReservationID = errors.New("invalid reservation id")

	// ErrDuplicateReservation indicates an active reservation with the same
	// identifier already exists on the item.
	ErrDuplicateReservation = errors.New("reservation id already in use")

	// ErrReservationNotFound indicates no active reservation with the given
	// identifier exists on the item.
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrInsufficientStock indicates the requested quantity exceeds what is
	// on hand (for decreases) or available (for reservations).
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrConcurrentModification indicates the item changed between load and
	// save; the caller should reload and retry.
	ErrConcurrentModification = errors.New("inventory item was modified concurrently")
)
