package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgevents "github.com/ghuser/shopcore/pkg/events"
	"github.com/ghuser/shopcore/pkg/keylock"
	inventorymodels "github.com/ghuser/shopcore/services/inventory/domain/models"
	inventorymemory "github.com/ghuser/shopcore/services/inventory/infrastructure/persistence/memory"
	orderdomain "github.com/ghuser/shopcore/services/order/domain"
	orderevents "github.com/ghuser/shopcore/services/order/domain/events"
	"github.com/ghuser/shopcore/services/order/domain/models"
	ordermemory "github.com/ghuser/shopcore/services/order/infrastructure/persistence/memory"
)

type captureSink struct {
	published []pkgevents.DomainEvent
}

func (c *captureSink) PublishDomain(_ context.Context, ev pkgevents.DomainEvent) error {
	c.published = append(c.published, ev)
	return nil
}

type confirmationFixture struct {
	orders       *OrderService
	confirmation *ConfirmationService
	inventory    *inventorymemory.InventoryRepository
	sink         *captureSink
}

func newConfirmationFixture(t *testing.T) *confirmationFixture {
	t.Helper()
	sink := &captureSink{}
	orderRepo := ordermemory.NewOrderRepository()
	inventoryRepo := inventorymemory.NewInventoryRepository()
	return &confirmationFixture{
		orders:       NewOrderService(orderRepo, sink, nil),
		confirmation: NewConfirmationService(orderRepo, inventoryRepo, keylock.New(), sink, nil),
		inventory:    inventoryRepo,
		sink:         sink,
	}
}

func (f *confirmationFixture) stockItem(t *testing.T, sku string, quantity int) {
	t.Helper()
	skuVO, err := inventorymodels.NewSKU(sku)
	if err != nil {
		t.Fatalf("NewSKU: %v", err)
	}
	item, err := inventorymodels.NewInventoryItem(skuVO, quantity, 0)
	if err != nil {
		t.Fatalf("NewInventoryItem: %v", err)
	}
	item.PullEvents()
	if err := f.inventory.Save(context.Background(), item); err != nil {
		t.Fatalf("Save: %v", err)
	}
}

func (f *confirmationFixture) pendingOrder(t *testing.T, lines ...models.OrderLine) *models.Order {
	t.Helper()
	ctx := context.Background()
	order, err := f.orders.Create(ctx, "Ada Lovelace", "ada@example.com", "12 Analytical Way")
	if err != nil {
		t.Fatalf("Create order: %v", err)
	}
	for _, l := range lines {
		if _, err := f.orders.AddItem(ctx, order.ID, l.SKU, l.ProductName, l.UnitPrice, l.Quantity); err != nil {
			t.Fatalf("AddItem %s: %v", l.SKU, err)
		}
	}
	return order
}

func (f *confirmationFixture) quantityOf(t *testing.T, sku string) int {
	t.Helper()
	skuVO, err := inventorymodels.NewSKU(sku)
	if err != nil {
		t.Fatalf("NewSKU: %v", err)
	}
	item, err := f.inventory.GetBySKU(context.Background(), skuVO)
	if err != nil {
		t.Fatalf("GetBySKU %s: %v", sku, err)
	}
	return item.Quantity
}

func TestConfirmationService_ConfirmOrder(t *testing.T) {
	ctx := context.Background()
	price := decimal.NewFromFloat(9.99)

	t.Run("happy path decrements every line and confirms", func(t *testing.T) {
		f := newConfirmationFixture(t)
		f.stockItem(t, "WIDGET-1", 100)
		f.stockItem(t, "GADGET-1", 50)
		order := f.pendingOrder(t,
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 10},
			models.OrderLine{SKU: "GADGET-1", ProductName: "Gadget", UnitPrice: price, Quantity: 5},
		)

		confirmed, err := f.confirmation.ConfirmOrder(ctx, order.ID)
		if err != nil {
			t.Fatalf("ConfirmOrder: %v", err)
		}
		if confirmed.Status != models.StatusConfirmed {
			t.Fatalf("expected status confirmed, got %s", confirmed.Status)
		}
		if got := f.quantityOf(t, "WIDGET-1"); got != 90 {
			t.Fatalf("expected WIDGET-1 quantity 90, got %d", got)
		}
		if got := f.quantityOf(t, "GADGET-1"); got != 45 {
			t.Fatalf("expected GADGET-1 quantity 45, got %d", got)
		}

		confirmedSeen := false
		for _, ev := range f.sink.published {
			if ev.Topic() == orderevents.TopicOrderConfirmed {
				confirmedSeen = true
			}
		}
		if !confirmedSeen {
			t.Fatal("order confirmed event not published")
		}
	})

	t.Run("one short line rejects the whole order", func(t *testing.T) {
		f := newConfirmationFixture(t)
		f.stockItem(t, "WIDGET-1", 100)
		f.stockItem(t, "GADGET-1", 3)
		order := f.pendingOrder(t,
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 10},
			models.OrderLine{SKU: "GADGET-1", ProductName: "Gadget", UnitPrice: price, Quantity: 5},
		)

		_, err := f.confirmation.ConfirmOrder(ctx, order.ID)
		var stockErr *orderdomain.StockValidationError
		if !errors.As(err, &stockErr) {
			t.Fatalf("expected StockValidationError, got %v", err)
		}
		if len(stockErr.Lines) != 1 {
			t.Fatalf("expected 1 shortfall, got %d", len(stockErr.Lines))
		}
		short := stockErr.Lines[0]
		if short.SKU != "GADGET-1" || short.Requested != 5 || short.Available != 3 {
			t.Fatalf("unexpected shortfall: %+v", short)
		}

		// No partial effect: both items untouched, order still pending.
		if got := f.quantityOf(t, "WIDGET-1"); got != 100 {
			t.Fatalf("expected WIDGET-1 untouched at 100, got %d", got)
		}
		if got := f.quantityOf(t, "GADGET-1"); got != 3 {
			t.Fatalf("expected GADGET-1 untouched at 3, got %d", got)
		}
		reloaded, err := f.orders.GetByID(ctx, order.ID)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if reloaded.Status != models.StatusPending {
			t.Fatalf("expected order still pending, got %s", reloaded.Status)
		}
	})

	t.Run("reservations count against availability", func(t *testing.T) {
		f := newConfirmationFixture(t)
		f.stockItem(t, "WIDGET-1", 10)

		skuVO, _ := inventorymodels.NewSKU("WIDGET-1")
		item, err := f.inventory.GetBySKU(ctx, skuVO)
		if err != nil {
			t.Fatalf("GetBySKU: %v", err)
		}
		if err := item.ReserveStock(8, "held-elsewhere", nil); err != nil {
			t.Fatalf("ReserveStock: %v", err)
		}
		item.PullEvents()
		if err := f.inventory.Update(ctx, item); err != nil {
			t.Fatalf("Update: %v", err)
		}

		order := f.pendingOrder(t,
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 5},
		)

		_, err = f.confirmation.ConfirmOrder(ctx, order.ID)
		var stockErr *orderdomain.StockValidationError
		if !errors.As(err, &stockErr) {
			t.Fatalf("expected StockValidationError, got %v", err)
		}
		if stockErr.Lines[0].Available != 2 {
			t.Fatalf("expected available 2 after reservation, got %d", stockErr.Lines[0].Available)
		}
	})

	t.Run("missing SKU is product not found", func(t *testing.T) {
		f := newConfirmationFixture(t)
		f.stockItem(t, "WIDGET-1", 100)
		order := f.pendingOrder(t,
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 1},
			models.OrderLine{SKU: "GHOST-1", ProductName: "Ghost", UnitPrice: price, Quantity: 1},
		)

		_, err := f.confirmation.ConfirmOrder(ctx, order.ID)
		if !errors.Is(err, orderdomain.ErrProductNotFound) {
			t.Fatalf("expected ErrProductNotFound, got %v", err)
		}
		if got := f.quantityOf(t, "WIDGET-1"); got != 100 {
			t.Fatalf("expected WIDGET-1 untouched, got %d", got)
		}
	})

	t.Run("empty order rejected", func(t *testing.T) {
		f := newConfirmationFixture(t)
		order := f.pendingOrder(t)

		if _, err := f.confirmation.ConfirmOrder(ctx, order.ID); !errors.Is(err, orderdomain.ErrEmptyOrder) {
			t.Fatalf("expected ErrEmptyOrder, got %v", err)
		}
	})

	t.Run("non-pending order rejected", func(t *testing.T) {
		f := newConfirmationFixture(t)
		f.stockItem(t, "WIDGET-1", 100)
		order := f.pendingOrder(t,
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 1},
		)
		if _, err := f.confirmation.ConfirmOrder(ctx, order.ID); err != nil {
			t.Fatalf("first ConfirmOrder: %v", err)
		}

		if _, err := f.confirmation.ConfirmOrder(ctx, order.ID); !errors.Is(err, orderdomain.ErrOrderNotPending) {
			t.Fatalf("expected ErrOrderNotPending, got %v", err)
		}
		// Idempotence of the rejection: stock decremented exactly once.
		if got := f.quantityOf(t, "WIDGET-1"); got != 99 {
			t.Fatalf("expected WIDGET-1 at 99, got %d", got)
		}
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newConfirmationFixture(t)
		if _, err := f.confirmation.ConfirmOrder(ctx, uuid.New()); !errors.Is(err, orderdomain.ErrOrderNotFound) {
			t.Fatalf("expected ErrOrderNotFound, got %v", err)
		}
	})

	t.Run("duplicate SKUs on merged line lock once", func(t *testing.T) {
		f := newConfirmationFixture(t)
		f.stockItem(t, "WIDGET-1", 10)
		order := f.pendingOrder(t,
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 4},
			models.OrderLine{SKU: "WIDGET-1", ProductName: "Widget", UnitPrice: price, Quantity: 4},
		)

		confirmed, err := f.confirmation.ConfirmOrder(ctx, order.ID)
		if err != nil {
			t.Fatalf("ConfirmOrder: %v", err)
		}
		if confirmed.Status != models.StatusConfirmed {
			t.Fatalf("expected confirmed, got %s", confirmed.Status)
		}
		if got := f.quantityOf(t, "WIDGET-1"); got != 2 {
			t.Fatalf("expected WIDGET-1 at 2, got %d", got)
		}
	})
}
