package models

import (
	"time"

	"github.com/google/uuid"

	domain "github.com/ghuser/shopcore/services/inventory/domain"
	"github.com/ghuser/shopcore/services/inventory/domain/events"
)

// InventoryItem is the per-SKU stock ledger aggregate. It owns the
// on-hand quantity, the minimum stock threshold and the set of active
// reservations, and is mutated exclusively through its own methods.
//
// Every mutation either fully applies and appends domain events to the
// aggregate's buffer, or returns a sentinel error and leaves the
// aggregate exactly as before the call. The application layer drains
// the buffer with PullEvents after a successful save.
type InventoryItem struct {
	ID                uuid.UUID
	SKU               SKU
	Quantity          int
	MinimumStockLevel int

	// Version is the optimistic-concurrency stamp checked by the
	// Postgres repository on update.
	Version int

	CreatedAt  time.Time
	ModifiedAt *time.Time

	reservations []Reservation
	pending      []events.DomainEvent
}

// NewInventoryItem constructs a valid InventoryItem and raises the
// created event. An item created at or below its threshold additionally
// raises a low-stock warning; out-of-stock is only ever signaled by a
// decrease, never by creation.
func NewInventoryItem(sku SKU, initialQuantity, minimumStockLevel int) (*InventoryItem, error) {
	if sku.String() == "" {
		return nil, domain.ErrInvalidSKU
	}
	if initialQuantity < 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if minimumStockLevel < 0 {
		return nil, domain.ErrInvalidMinimumStockLevel
	}

	now := time.Now().UTC()
	item := &InventoryItem{
		ID:                uuid.New(),
		SKU:               sku,
		Quantity:          initialQuantity,
		MinimumStockLevel: minimumStockLevel,
		CreatedAt:         now,
	}

	item.raise(events.InventoryItemCreated{
		Meta:              events.NewMeta(now),
		ItemID:            item.ID,
		SKU:               sku.String(),
		Quantity:          initialQuantity,
		MinimumStockLevel: minimumStockLevel,
	})
	item.evaluateLowStock(now)

	return item, nil
}

// RestoreInventoryItem rebuilds an aggregate from persisted state without
// raising events. Used by repositories only.
func RestoreInventoryItem(
	id uuid.UUID,
	sku SKU,
	quantity, minimumStockLevel, version int,
	createdAt time.Time,
	modifiedAt *time.Time,
	reservations []Reservation,
) *InventoryItem {
	return &InventoryItem{
		ID:                id,
		SKU:               sku,
		Quantity:          quantity,
		MinimumStockLevel: minimumStockLevel,
		Version:           version,
		CreatedAt:         createdAt,
		ModifiedAt:        modifiedAt,
		reservations:      append([]Reservation(nil), reservations...),
	}
}

// Reservations returns a copy of all reservation entries, including
// expired ones that have not been purged yet.
func (i *InventoryItem) Reservations() []Reservation {
	return append([]Reservation(nil), i.reservations...)
}

// ReservedQuantity is the sum of all non-expired reservation quantities.
// Always recomputed, never stored.
func (i *InventoryItem) ReservedQuantity() int {
	return i.reservedAt(time.Now().UTC())
}

// AvailableQuantity is the on-hand quantity minus all active
// reservations, floored at zero.
func (i *InventoryItem) AvailableQuantity() int {
	return i.availableAt(time.Now().UTC())
}

// IsOutOfStock reports whether the on-hand quantity is exhausted.
func (i *InventoryItem) IsOutOfStock() bool {
	return i.Quantity <= 0
}

// IsBelowMinimum reports whether the on-hand quantity is at or below the
// minimum stock level.
func (i *InventoryItem) IsBelowMinimum() bool {
	return i.Quantity <= i.MinimumStockLevel
}

// IncreaseStock adds quantity to the on-hand count. The reason is carried
// on the event for audit purposes only.
func (i *InventoryItem) IncreaseStock(quantity int, reason string) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	now := time.Now().UTC()
	previous := i.Quantity
	i.Quantity += quantity
	i.touch(now)

	i.raise(events.StockIncreased{
		Meta:             events.NewMeta(now),
		ItemID:           i.ID,
		SKU:              i.SKU.String(),
		PreviousQuantity: previous,
		NewQuantity:      i.Quantity,
		Reason:           reason,
	})
	return nil
}

// DecreaseStock subtracts quantity from the on-hand count. Fails with
// ErrInsufficientStock when the request exceeds what is on hand; the
// check is against the physical count, not the available quantity.
func (i *InventoryItem) DecreaseStock(quantity int, reason string) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if quantity > i.Quantity {
		return domain.ErrInsufficientStock
	}

	now := time.Now().UTC()
	i.decrease(quantity, reason, now)
	return nil
}

// UpdateMinimumStockLevel replaces the threshold and re-evaluates the
// low-stock condition against the new level.
func (i *InventoryItem) UpdateMinimumStockLevel(newLevel int) error {
	if newLevel < 0 {
		return domain.ErrInvalidMinimumStockLevel
	}

	now := time.Now().UTC()
	previous := i.MinimumStockLevel
	i.MinimumStockLevel = newLevel
	i.touch(now)

	i.raise(events.MinimumStockLevelUpdated{
		Meta:          events.NewMeta(now),
		ItemID:        i.ID,
		SKU:           i.SKU.String(),
		PreviousLevel: previous,
		NewLevel:      newLevel,
	})
	i.evaluateLowStock(now)
	return nil
}

// ReserveStock places a hold on available stock under the caller-supplied
// reservation id. Fails if an active reservation with the same id already
// exists or if the request exceeds the available quantity. A nil
// expiresAt creates a hold that never expires on its own.
func (i *InventoryItem) ReserveStock(quantity int, reservationID string, expiresAt *time.Time) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if reservationID == "" {
		return domain.ErrInvalidReservationID
	}

	now := time.Now().UTC()
	if _, ok := i.activeReservation(reservationID, now); ok {
		return domain.ErrDuplicateReservation
	}
	if quantity > i.availableAt(now) {
		return domain.ErrInsufficientStock
	}

	i.reservations = append(i.reservations, Reservation{
		ID:         reservationID,
		Quantity:   quantity,
		ReservedAt: now,
		ExpiresAt:  expiresAt,
	})
	i.touch(now)

	i.raise(events.InventoryReserved{
		Meta:              events.NewMeta(now),
		ItemID:            i.ID,
		SKU:               i.SKU.String(),
		ReservationID:     reservationID,
		Quantity:          quantity,
		AvailableQuantity: i.availableAt(now),
	})
	return nil
}

// ReleaseReservation removes an active reservation without touching the
// on-hand quantity.
func (i *InventoryItem) ReleaseReservation(reservationID string) error {
	now := time.Now().UTC()
	idx, ok := i.activeReservation(reservationID, now)
	if !ok {
		return domain.ErrReservationNotFound
	}

	released := i.reservations[idx]
	i.removeReservationAt(idx)
	i.touch(now)

	i.raise(events.ReservationReleased{
		Meta:              events.NewMeta(now),
		ItemID:            i.ID,
		SKU:               i.SKU.String(),
		ReservationID:     released.ID,
		QuantityReleased:  released.Quantity,
		AvailableQuantity: i.availableAt(now),
	})
	return nil
}

// ConfirmReservation converts an active reservation into a permanent
// stock decrement. Removal of the reservation and the decrement happen in
// the same operation; no intermediate state is externally visible. An
// expired or unknown reservation fails with ErrReservationNotFound and
// nothing is applied.
func (i *InventoryItem) ConfirmReservation(reservationID, reason string) error {
	now := time.Now().UTC()
	idx, ok := i.activeReservation(reservationID, now)
	if !ok {
		return domain.ErrReservationNotFound
	}

	confirmed := i.reservations[idx]
	// A plain decrease can drop the on-hand count below the reserved
	// total, so the decrement must be re-checked here before anything
	// is mutated.
	if confirmed.Quantity > i.Quantity {
		return domain.ErrInsufficientStock
	}

	i.removeReservationAt(idx)

	i.raise(events.ReservationConfirmed{
		Meta:          events.NewMeta(now),
		ItemID:        i.ID,
		SKU:           i.SKU.String(),
		ReservationID: confirmed.ID,
		Quantity:      confirmed.Quantity,
		NewQuantity:   i.Quantity - confirmed.Quantity,
		Reason:        reason,
	})
	i.decrease(confirmed.Quantity, reason, now)
	return nil
}

// RemoveExpiredReservations purges every expired reservation, raising one
// release event per purged entry. Idempotent: a call with nothing expired
// changes nothing and raises nothing.
func (i *InventoryItem) RemoveExpiredReservations() {
	now := time.Now().UTC()

	kept := i.reservations[:0]
	var purged []Reservation
	for _, r := range i.reservations {
		if r.Expired(now) {
			purged = append(purged, r)
		} else {
			kept = append(kept, r)
		}
	}
	if len(purged) == 0 {
		return
	}
	i.reservations = kept
	i.touch(now)

	for _, r := range purged {
		i.raise(events.ReservationReleased{
			Meta:              events.NewMeta(now),
			ItemID:            i.ID,
			SKU:               i.SKU.String(),
			ReservationID:     r.ID,
			QuantityReleased:  r.Quantity,
			AvailableQuantity: i.availableAt(now),
		})
	}
}

// PullEvents drains and returns the buffered domain events in emission
// order. The application layer calls this after a successful save and
// hands the events to the sink.
func (i *InventoryItem) PullEvents() []events.DomainEvent {
	out := i.pending
	i.pending = nil
	return out
}

// decrease applies the quantity subtraction shared by DecreaseStock and
// ConfirmReservation: decrement, decreased event, then the low-stock and
// out-of-stock evaluations. Callers validate bounds first.
func (i *InventoryItem) decrease(quantity int, reason string, now time.Time) {
	previous := i.Quantity
	i.Quantity -= quantity
	i.touch(now)

	i.raise(events.StockDecreased{
		Meta:             events.NewMeta(now),
		ItemID:           i.ID,
		SKU:              i.SKU.String(),
		PreviousQuantity: previous,
		NewQuantity:      i.Quantity,
		Reason:           reason,
	})
	i.evaluateLowStock(now)
	if i.Quantity == 0 {
		i.raise(events.OutOfStock{
			Meta:   events.NewMeta(now),
			ItemID: i.ID,
			SKU:    i.SKU.String(),
		})
	}
}

// evaluateLowStock raises a warning whenever the guard holds. There is no
// suppression between calls; re-entering the same state re-raises.
func (i *InventoryItem) evaluateLowStock(now time.Time) {
	if i.Quantity > 0 && i.Quantity <= i.MinimumStockLevel {
		i.raise(events.LowStockWarning{
			Meta:              events.NewMeta(now),
			ItemID:            i.ID,
			SKU:               i.SKU.String(),
			Quantity:          i.Quantity,
			MinimumStockLevel: i.MinimumStockLevel,
		})
	}
}

// activeReservation returns the index of the non-expired reservation with
// the given id, if any.
func (i *InventoryItem) activeReservation(reservationID string, now time.Time) (int, bool) {
	for idx, r := range i.reservations {
		if r.ID == reservationID && !r.Expired(now) {
			return idx, true
		}
	}
	return 0, false
}

func (i *InventoryItem) removeReservationAt(idx int) {
	i.reservations = append(i.reservations[:idx], i.reservations[idx+1:]...)
}

func (i *InventoryItem) reservedAt(now time.Time) int {
	total := 0
	for _, r := range i.reservations {
		if !r.Expired(now) {
			total += r.Quantity
		}
	}
	return total
}

func (i *InventoryItem) availableAt(now time.Time) int {
	available := i.Quantity - i.reservedAt(now)
	if available < 0 {
		return 0
	}
	return available
}

func (i *InventoryItem) touch(now time.Time) {
	t := now
	i.ModifiedAt = &t
}

func (i *InventoryItem) raise(e events.DomainEvent) {
	i.pending = append(i.pending, e)
}
