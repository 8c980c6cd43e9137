package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	domain "github.com/ghuser/shopcore/services/order/domain"
	"github.com/ghuser/shopcore/services/order/domain/events"
)

func mustOrder(t *testing.T) *Order {
	t.Helper()
	o, err := NewOrder("Ada Lovelace", "ada@example.com", "12 Analytical Way")
	if err != nil {
		t.Fatalf("unexpected error creating order: %v", err)
	}
	return o
}

func mustOrderWithLine(t *testing.T) *Order {
	t.Helper()
	o := mustOrder(t)
	if err := o.AddItem("SKU-1", "Widget", decimal.NewFromInt(10), 2); err != nil {
		t.Fatalf("unexpected error adding item: %v", err)
	}
	return o
}

func TestNewOrder(t *testing.T) {
	t.Run("creates pending order and raises created event", func(t *testing.T) {
		o := mustOrder(t)
		if o.Status != StatusPending {
			t.Fatalf("expected pending, got %s", o.Status)
		}
		evts := o.PullEvents()
		if len(evts) != 1 {
			t.Fatalf("expected one event, got %d", len(evts))
		}
		if _, ok := evts[0].(events.OrderCreated); !ok {
			t.Fatalf("expected OrderCreated, got %T", evts[0])
		}
	})

	t.Run("rejects blank fields", func(t *testing.T) {
		cases := []struct{ name, email, address string }{
			{"", "ada@example.com", "addr"},
			{"  ", "ada@example.com", "addr"},
			{"Ada", "ada@example.com", ""},
			{"Ada", "", "addr"},
			{"Ada", "not-an-email", "addr"},
		}
		for _, c := range cases {
			if _, err := NewOrder(c.name, c.email, c.address); !errors.Is(err, domain.ErrInvalidCustomer) {
				t.Fatalf("expected ErrInvalidCustomer for %+v, got %v", c, err)
			}
		}
	})
}

func TestAddItem(t *testing.T) {
	t.Run("adds a line", func(t *testing.T) {
		o := mustOrderWithLine(t)
		lines := o.Lines()
		if len(lines) != 1 || lines[0].SKU != "SKU-1" || lines[0].Quantity != 2 {
			t.Fatalf("unexpected lines: %+v", lines)
		}
	})

	t.Run("merges quantities for an existing sku", func(t *testing.T) {
		o := mustOrderWithLine(t)
		if err := o.AddItem("SKU-1", "Widget", decimal.NewFromInt(10), 3); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		lines := o.Lines()
		if len(lines) != 1 {
			t.Fatalf("expected one merged line, got %d", len(lines))
		}
		if lines[0].Quantity != 5 {
			t.Fatalf("expected merged quantity 5, got %d", lines[0].Quantity)
		}
	})

	t.Run("rejects invalid lines", func(t *testing.T) {
		o := mustOrder(t)
		if err := o.AddItem("", "Widget", decimal.NewFromInt(10), 1); !errors.Is(err, domain.ErrInvalidOrderLine) {
			t.Fatalf("expected ErrInvalidOrderLine, got %v", err)
		}
		if err := o.AddItem("SKU-1", "", decimal.NewFromInt(10), 1); !errors.Is(err, domain.ErrInvalidOrderLine) {
			t.Fatalf("expected ErrInvalidOrderLine, got %v", err)
		}
		if err := o.AddItem("SKU-1", "Widget", decimal.Zero, 1); !errors.Is(err, domain.ErrInvalidOrderLine) {
			t.Fatalf("expected ErrInvalidOrderLine for zero price, got %v", err)
		}
		if err := o.AddItem("SKU-1", "Widget", decimal.NewFromInt(10), 0); !errors.Is(err, domain.ErrInvalidOrderLine) {
			t.Fatalf("expected ErrInvalidOrderLine for zero quantity, got %v", err)
		}
	})

	t.Run("rejected after confirmation", func(t *testing.T) {
		o := mustOrderWithLine(t)
		if err := o.Confirm(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := o.AddItem("SKU-2", "Gadget", decimal.NewFromInt(5), 1); !errors.Is(err, domain.ErrOrderNotPending) {
			t.Fatalf("expected ErrOrderNotPending, got %v", err)
		}
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("removes an existing line", func(t *testing.T) {
		o := mustOrderWithLine(t)
		if err := o.RemoveItem("SKU-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(o.Lines()) != 0 {
			t.Fatal("expected no lines")
		}
	})

	t.Run("fails for an absent sku", func(t *testing.T) {
		o := mustOrderWithLine(t)
		if err := o.RemoveItem("SKU-9"); !errors.Is(err, domain.ErrLineNotFound) {
			t.Fatalf("expected ErrLineNotFound, got %v", err)
		}
	})

	t.Run("rejected after confirmation", func(t *testing.T) {
		o := mustOrderWithLine(t)
		if err := o.Confirm(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := o.RemoveItem("SKU-1"); !errors.Is(err, domain.ErrOrderNotPending) {
			t.Fatalf("expected ErrOrderNotPending, got %v", err)
		}
	})
}

func TestTotalAmount(t *testing.T) {
	o := mustOrder(t)
	if err := o.AddItem("SKU-1", "Widget", decimal.RequireFromString("9.99"), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := o.AddItem("SKU-2", "Gadget", decimal.RequireFromString("2.50"), 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := decimal.RequireFromString("34.97")
	if got := o.TotalAmount(); !got.Equal(want) {
		t.Fatalf("expected total %s, got %s", want, got)
	}
}

func TestStatusTransitions(t *testing.T) {
	t.Run("happy path pending to delivered", func(t *testing.T) {
		o := mustOrderWithLine(t)
		o.PullEvents()

		steps := []struct {
			op     func() error
			status OrderStatus
		}{
			{o.Confirm, StatusConfirmed},
			{o.Ship, StatusShipped},
			{o.Deliver, StatusDelivered},
		}
		for _, s := range steps {
			if err := s.op(); err != nil {
				t.Fatalf("transition to %s failed: %v", s.status, err)
			}
			if o.Status != s.status {
				t.Fatalf("expected status %s, got %s", s.status, o.Status)
			}
			if n := len(o.PullEvents()); n != 1 {
				t.Fatalf("each transition raises exactly one event, got %d", n)
			}
		}
	})

	t.Run("confirm requires at least one line", func(t *testing.T) {
		o := mustOrder(t)
		if err := o.Confirm(); !errors.Is(err, domain.ErrEmptyOrder) {
			t.Fatalf("expected ErrEmptyOrder, got %v", err)
		}
		if o.Status != StatusPending {
			t.Fatalf("failed confirm must not transition, got %s", o.Status)
		}
	})

	t.Run("forward-only transitions", func(t *testing.T) {
		o := mustOrderWithLine(t)
		if err := o.Ship(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition shipping a pending order, got %v", err)
		}
		if err := o.Deliver(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition delivering a pending order, got %v", err)
		}
		if err := o.Confirm(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := o.Confirm(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition confirming twice, got %v", err)
		}
	})

	t.Run("cancel from pending and confirmed only", func(t *testing.T) {
		pending := mustOrderWithLine(t)
		if err := pending.Cancel(); err != nil {
			t.Fatalf("cancel from pending failed: %v", err)
		}

		confirmed := mustOrderWithLine(t)
		if err := confirmed.Confirm(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := confirmed.Cancel(); err != nil {
			t.Fatalf("cancel from confirmed failed: %v", err)
		}

		shipped := mustOrderWithLine(t)
		_ = shipped.Confirm()
		_ = shipped.Ship()
		if err := shipped.Cancel(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition cancelling shipped, got %v", err)
		}

		cancelled := mustOrderWithLine(t)
		_ = cancelled.Cancel()
		if err := cancelled.Cancel(); !errors.Is(err, domain.ErrInvalidStatusTransition) {
			t.Fatalf("expected ErrInvalidStatusTransition cancelling twice, got %v", err)
		}
	})

	t.Run("confirmed event carries line snapshot and total", func(t *testing.T) {
		o := mustOrderWithLine(t)
		o.PullEvents()
		if err := o.Confirm(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		evts := o.PullEvents()
		confirmed, ok := evts[0].(events.OrderConfirmed)
		if !ok {
			t.Fatalf("expected OrderConfirmed, got %T", evts[0])
		}
		if len(confirmed.Lines) != 1 || confirmed.Lines[0].SKU != "SKU-1" {
			t.Fatalf("unexpected snapshot: %+v", confirmed.Lines)
		}
		if !confirmed.TotalAmount.Equal(decimal.NewFromInt(20)) {
			t.Fatalf("expected total 20, got %s", confirmed.TotalAmount)
		}
	})
}
