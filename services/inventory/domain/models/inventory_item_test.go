package models

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	domain "github.com/ghuser/shopcore/services/inventory/domain"
	"github.com/ghuser/shopcore/services/inventory/domain/events"
)

func mustItem(t *testing.T, sku string, quantity, minimum int) *InventoryItem {
	t.Helper()
	item, err := NewInventoryItem(SKU(sku), quantity, minimum)
	if err != nil {
		t.Fatalf("unexpected error creating item: %v", err)
	}
	return item
}

func pastExpiry() *time.Time {
	t := time.Now().UTC().Add(-time.Minute)
	return &t
}

func futureExpiry() *time.Time {
	t := time.Now().UTC().Add(time.Hour)
	return &t
}

func countEvents[E events.DomainEvent](evts []events.DomainEvent) int {
	n := 0
	for _, e := range evts {
		if _, ok := e.(E); ok {
			n++
		}
	}
	return n
}

func TestNewInventoryItem(t *testing.T) {
	t.Run("creates item and raises created event", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 10)
		if item.ID == (uuid.UUID{}) {
			t.Fatal("expected non-zero UUID for ID")
		}
		if item.Quantity != 100 || item.MinimumStockLevel != 10 {
			t.Fatalf("unexpected state: quantity=%d minimum=%d", item.Quantity, item.MinimumStockLevel)
		}
		evts := item.PullEvents()
		if countEvents[events.InventoryItemCreated](evts) != 1 {
			t.Fatalf("expected one created event, got %v", evts)
		}
	})

	t.Run("rejects blank sku", func(t *testing.T) {
		if _, err := NewInventoryItem("", 10, 0); !errors.Is(err, domain.ErrInvalidSKU) {
			t.Fatalf("expected ErrInvalidSKU, got %v", err)
		}
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		if _, err := NewInventoryItem("SKU-1", -1, 0); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("rejects negative minimum level", func(t *testing.T) {
		if _, err := NewInventoryItem("SKU-1", 10, -1); !errors.Is(err, domain.ErrInvalidMinimumStockLevel) {
			t.Fatalf("expected ErrInvalidMinimumStockLevel, got %v", err)
		}
	})

	t.Run("raises low stock when created at or below threshold", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 5, 10)
		evts := item.PullEvents()
		if countEvents[events.LowStockWarning](evts) != 1 {
			t.Fatalf("expected one low stock warning, got %v", evts)
		}
	})

	t.Run("does not raise out of stock even when created empty", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 0, 10)
		evts := item.PullEvents()
		if countEvents[events.OutOfStock](evts) != 0 {
			t.Fatalf("out of stock must not be raised on creation, got %v", evts)
		}
		if countEvents[events.LowStockWarning](evts) != 0 {
			t.Fatalf("low stock requires a positive quantity, got %v", evts)
		}
	})
}

func TestIncreaseStock(t *testing.T) {
	t.Run("adds to quantity and raises increased event", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 10, 0)
		item.PullEvents()

		if err := item.IncreaseStock(15, "restock"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Quantity != 25 {
			t.Fatalf("expected quantity 25, got %d", item.Quantity)
		}

		evts := item.PullEvents()
		if len(evts) != 1 {
			t.Fatalf("expected exactly one event, got %d", len(evts))
		}
		inc, ok := evts[0].(events.StockIncreased)
		if !ok {
			t.Fatalf("expected StockIncreased, got %T", evts[0])
		}
		if inc.PreviousQuantity != 10 || inc.NewQuantity != 25 || inc.Reason != "restock" {
			t.Fatalf("unexpected event payload: %+v", inc)
		}
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 10, 0)
		if err := item.IncreaseStock(0, ""); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
		if err := item.IncreaseStock(-3, ""); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})
}

func TestDecreaseStock(t *testing.T) {
	t.Run("subtracts and raises decreased event", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 10)
		item.PullEvents()

		if err := item.DecreaseStock(30, "sale"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Quantity != 70 {
			t.Fatalf("expected quantity 70, got %d", item.Quantity)
		}
		evts := item.PullEvents()
		if countEvents[events.StockDecreased](evts) != 1 {
			t.Fatalf("expected one decreased event, got %v", evts)
		}
	})

	t.Run("fails when exceeding on-hand quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 10, 0)
		item.PullEvents()

		if err := item.DecreaseStock(11, ""); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		if item.Quantity != 10 {
			t.Fatalf("failed decrease must not mutate, quantity=%d", item.Quantity)
		}
		if len(item.PullEvents()) != 0 {
			t.Fatal("failed decrease must not raise events")
		}
	})

	t.Run("decrease to zero raises out of stock", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 10)
		item.PullEvents()

		if err := item.DecreaseStock(100, "clearance"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !item.IsOutOfStock() {
			t.Fatal("expected IsOutOfStock")
		}
		evts := item.PullEvents()
		if countEvents[events.OutOfStock](evts) != 1 {
			t.Fatalf("expected one out of stock event, got %v", evts)
		}
		if countEvents[events.LowStockWarning](evts) != 0 {
			t.Fatalf("low stock must not accompany zero quantity, got %v", evts)
		}
	})

	t.Run("decrease into threshold raises low stock", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 20, 10)
		item.PullEvents()

		if err := item.DecreaseStock(12, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		evts := item.PullEvents()
		if countEvents[events.LowStockWarning](evts) != 1 {
			t.Fatalf("expected one low stock warning, got %v", evts)
		}
	})

	t.Run("low stock re-raises on every qualifying call", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 10, 10)
		item.PullEvents()

		if err := item.DecreaseStock(1, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.DecreaseStock(1, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		evts := item.PullEvents()
		if got := countEvents[events.LowStockWarning](evts); got != 2 {
			t.Fatalf("expected a warning per qualifying call, got %d", got)
		}
	})

	t.Run("ignores reservations when checking on-hand quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(80, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		// The decrease check is against the physical count only.
		if err := item.DecreaseStock(50, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Quantity != 50 {
			t.Fatalf("expected quantity 50, got %d", item.Quantity)
		}
	})
}

func TestUpdateMinimumStockLevel(t *testing.T) {
	t.Run("replaces threshold and re-evaluates low stock", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 20, 5)
		item.PullEvents()

		if err := item.UpdateMinimumStockLevel(30); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		evts := item.PullEvents()
		if countEvents[events.MinimumStockLevelUpdated](evts) != 1 {
			t.Fatalf("expected one update event, got %v", evts)
		}
		if countEvents[events.LowStockWarning](evts) != 1 {
			t.Fatalf("raising the threshold above the quantity must warn, got %v", evts)
		}
	})

	t.Run("rejects negative level", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 20, 5)
		if err := item.UpdateMinimumStockLevel(-1); !errors.Is(err, domain.ErrInvalidMinimumStockLevel) {
			t.Fatalf("expected ErrInvalidMinimumStockLevel, got %v", err)
		}
	})
}

func TestReserveStock(t *testing.T) {
	t.Run("reservation reduces available quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 10)
		item.PullEvents()

		if err := item.ReserveStock(30, "R1", futureExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := item.AvailableQuantity(); got != 70 {
			t.Fatalf("expected available 70, got %d", got)
		}
		if got := item.ReservedQuantity(); got != 30 {
			t.Fatalf("expected reserved 30, got %d", got)
		}
		if item.Quantity != 100 {
			t.Fatalf("reservation must not change on-hand quantity, got %d", item.Quantity)
		}

		evts := item.PullEvents()
		if len(evts) != 1 {
			t.Fatalf("expected one event, got %d", len(evts))
		}
		res, ok := evts[0].(events.InventoryReserved)
		if !ok {
			t.Fatalf("expected InventoryReserved, got %T", evts[0])
		}
		if res.ReservationID != "R1" || res.Quantity != 30 || res.AvailableQuantity != 70 {
			t.Fatalf("unexpected event payload: %+v", res)
		}
	})

	t.Run("fails when exceeding available quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(80, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		if err := item.ReserveStock(30, "R2", nil); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		if len(item.Reservations()) != 1 {
			t.Fatal("failed reservation must not be recorded")
		}
		if len(item.PullEvents()) != 0 {
			t.Fatal("failed reservation must not raise events")
		}
	})

	t.Run("reserving exactly the available quantity succeeds", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 50, 0)
		if err := item.ReserveStock(50, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := item.AvailableQuantity(); got != 0 {
			t.Fatalf("expected available 0, got %d", got)
		}
		if err := item.ReserveStock(1, "R2", nil); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock for one unit over, got %v", err)
		}
	})

	t.Run("rejects duplicate active reservation id", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(10, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.ReserveStock(10, "R1", nil); !errors.Is(err, domain.ErrDuplicateReservation) {
			t.Fatalf("expected ErrDuplicateReservation, got %v", err)
		}
	})

	t.Run("expired reservation does not block its id from reuse", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(10, "R1", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.ReserveStock(10, "R1", nil); err != nil {
			t.Fatalf("expected reuse of expired id to succeed, got %v", err)
		}
	})

	t.Run("rejects blank id and non-positive quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(10, "", nil); !errors.Is(err, domain.ErrInvalidReservationID) {
			t.Fatalf("expected ErrInvalidReservationID, got %v", err)
		}
		if err := item.ReserveStock(0, "R1", nil); !errors.Is(err, domain.ErrInvalidQuantity) {
			t.Fatalf("expected ErrInvalidQuantity, got %v", err)
		}
	})

	t.Run("expired reservations contribute zero to reserved quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(40, "R1", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := item.ReservedQuantity(); got != 0 {
			t.Fatalf("expected reserved 0, got %d", got)
		}
		if got := item.AvailableQuantity(); got != 100 {
			t.Fatalf("expected available 100, got %d", got)
		}
		if len(item.Reservations()) != 1 {
			t.Fatal("expired reservation must remain listed until purged")
		}
	})
}

func TestReleaseReservation(t *testing.T) {
	t.Run("removes the reservation without touching quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(30, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		if err := item.ReleaseReservation("R1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Quantity != 100 {
			t.Fatalf("release must not change on-hand quantity, got %d", item.Quantity)
		}
		if got := item.AvailableQuantity(); got != 100 {
			t.Fatalf("expected available 100, got %d", got)
		}

		evts := item.PullEvents()
		if len(evts) != 1 {
			t.Fatalf("expected one event, got %d", len(evts))
		}
		rel, ok := evts[0].(events.ReservationReleased)
		if !ok {
			t.Fatalf("expected ReservationReleased, got %T", evts[0])
		}
		if rel.QuantityReleased != 30 || rel.AvailableQuantity != 100 {
			t.Fatalf("unexpected event payload: %+v", rel)
		}
	})

	t.Run("fails for unknown id", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReleaseReservation("missing"); !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})

	t.Run("fails for expired reservation", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(10, "R1", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.ReleaseReservation("R1"); !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
	})
}

func TestConfirmReservation(t *testing.T) {
	t.Run("removes reservation and decrements quantity atomically", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(30, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		if err := item.ConfirmReservation("R1", "order confirmed"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.Quantity != 70 {
			t.Fatalf("expected quantity 70, got %d", item.Quantity)
		}
		if len(item.Reservations()) != 0 {
			t.Fatal("confirmed reservation must be removed")
		}

		evts := item.PullEvents()
		if countEvents[events.ReservationConfirmed](evts) != 1 {
			t.Fatalf("expected one confirmed event, got %v", evts)
		}
		if countEvents[events.StockDecreased](evts) != 1 {
			t.Fatalf("confirmation decrements like a decrease, got %v", evts)
		}
	})

	t.Run("fails on expired reservation with no partial effect", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(30, "R1", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		if err := item.ConfirmReservation("R1", ""); !errors.Is(err, domain.ErrReservationNotFound) {
			t.Fatalf("expected ErrReservationNotFound, got %v", err)
		}
		if item.Quantity != 100 {
			t.Fatalf("failed confirm must not decrement, got %d", item.Quantity)
		}
		if len(item.Reservations()) != 1 {
			t.Fatal("failed confirm must not remove the reservation")
		}
	})

	t.Run("fails when on-hand dropped below the reserved quantity", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(80, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.DecreaseStock(50, ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		if err := item.ConfirmReservation("R1", ""); !errors.Is(err, domain.ErrInsufficientStock) {
			t.Fatalf("expected ErrInsufficientStock, got %v", err)
		}
		if item.Quantity != 50 || len(item.Reservations()) != 1 {
			t.Fatal("failed confirm must leave the item unchanged")
		}
	})

	t.Run("confirming to zero raises out of stock", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 30, 0)
		if err := item.ReserveStock(30, "R1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		if err := item.ConfirmReservation("R1", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		evts := item.PullEvents()
		if countEvents[events.OutOfStock](evts) != 1 {
			t.Fatalf("expected one out of stock event, got %v", evts)
		}
	})
}

func TestRemoveExpiredReservations(t *testing.T) {
	t.Run("purges expired entries and raises one release each", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(10, "R1", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.ReserveStock(20, "R2", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := item.ReserveStock(30, "R3", futureExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		item.RemoveExpiredReservations()

		if got := len(item.Reservations()); got != 1 {
			t.Fatalf("expected one remaining reservation, got %d", got)
		}
		evts := item.PullEvents()
		if got := countEvents[events.ReservationReleased](evts); got != 2 {
			t.Fatalf("expected two release events, got %d", got)
		}
	})

	t.Run("idempotent when nothing is expired", func(t *testing.T) {
		item := mustItem(t, "SKU-1", 100, 0)
		if err := item.ReserveStock(10, "R1", pastExpiry()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		item.PullEvents()

		item.RemoveExpiredReservations()
		item.PullEvents()

		before := item.Quantity
		item.RemoveExpiredReservations()
		if len(item.PullEvents()) != 0 {
			t.Fatal("second purge must raise no events")
		}
		if item.Quantity != before || len(item.Reservations()) != 0 {
			t.Fatal("second purge must leave state unchanged")
		}
	})
}

func TestQuantityInvariant(t *testing.T) {
	// quantity >= 0 and reserved == sum of non-expired reservations
	// across a mixed sequence of operations.
	item := mustItem(t, "SKU-1", 50, 5)

	ops := []func() error{
		func() error { return item.IncreaseStock(25, "") },
		func() error { return item.ReserveStock(30, "A", futureExpiry()) },
		func() error { return item.DecreaseStock(20, "") },
		func() error { return item.ReserveStock(10, "B", nil) },
		func() error { return item.ReleaseReservation("A") },
		func() error { return item.ConfirmReservation("B", "") },
		func() error { return item.DecreaseStock(45, "") },
	}

	for n, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d failed: %v", n, err)
		}
		if item.Quantity < 0 {
			t.Fatalf("op %d: quantity went negative: %d", n, item.Quantity)
		}
		sum := 0
		for _, r := range item.Reservations() {
			if !r.Expired(time.Now().UTC()) {
				sum += r.Quantity
			}
		}
		if item.ReservedQuantity() != sum {
			t.Fatalf("op %d: reserved quantity %d != recomputed sum %d", n, item.ReservedQuantity(), sum)
		}
	}

	if item.Quantity != 0 {
		t.Fatalf("expected zero final quantity, got %d", item.Quantity)
	}
}
