package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/shopcore/pkg/keylock"
	"github.com/ghuser/shopcore/pkg/logger"
	inventorydomain "github.com/ghuser/shopcore/services/inventory/domain"
	inventorymodels "github.com/ghuser/shopcore/services/inventory/domain/models"
	inventoryrepos "github.com/ghuser/shopcore/services/inventory/domain/repositories"
	orderdomain "github.com/ghuser/shopcore/services/order/domain"
	"github.com/ghuser/shopcore/services/order/domain/models"
	"github.com/ghuser/shopcore/services/order/domain/repositories"
)

// ConfirmationService coordinates order confirmation across the order and
// inventory contexts. Confirmation is all-or-nothing: every line is
// validated against available stock before any stock is decremented, so a
// single short line rejects the whole order and no item is touched.
//
// All SKU locks are taken up front in sorted order, which makes
// concurrent confirmations over overlapping SKU sets deadlock-free and
// keeps validation and decrement atomic with respect to other in-process
// writers.
type ConfirmationService struct {
	orders    repositories.OrderRepository
	inventory inventoryrepos.InventoryRepository
	locks     *keylock.KeyedMutex
	sink      EventSink
	log       logger.Logger
}

// NewConfirmationService returns a ConfirmationService wired with both
// context repositories, the shared per-SKU lock set and the event sink.
// A nil log is replaced with a no-op logger.
func NewConfirmationService(
	orders repositories.OrderRepository,
	inventory inventoryrepos.InventoryRepository,
	locks *keylock.KeyedMutex,
	sink EventSink,
	log logger.Logger,
) *ConfirmationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &ConfirmationService{orders: orders, inventory: inventory, locks: locks, sink: sink, log: log}
}

// ConfirmOrder validates and confirms a Pending order:
//
//  1. Load the order; reject if missing, not Pending or empty.
//  2. Lock every line SKU (sorted, deduplicated).
//  3. Load every inventory item; a missing SKU is ErrProductNotFound.
//  4. Validate every line against available stock, collecting shortfalls.
//     Any shortfall aborts with *StockValidationError before any write.
//  5. Decrement stock for every line, transition the order to Confirmed,
//     persist items then the order, and publish the buffered events.
func (s *ConfirmationService) ConfirmOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.Status != models.StatusPending {
		return nil, orderdomain.ErrOrderNotPending
	}
	lines := order.Lines()
	if len(lines) == 0 {
		return nil, orderdomain.ErrEmptyOrder
	}

	skus := make([]string, len(lines))
	for i, l := range lines {
		skus[i] = l.SKU
	}
	unlock := s.locks.LockAll(skus...)
	defer unlock()

	items := make(map[string]*inventorymodels.InventoryItem, len(lines))
	for _, l := range lines {
		sku, err := inventorymodels.NewSKU(l.SKU)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", l.SKU, err)
		}
		item, err := s.inventory.GetBySKU(ctx, sku)
		if errors.Is(err, inventorydomain.ErrItemNotFound) {
			return nil, fmt.Errorf("sku %s: %w", l.SKU, orderdomain.ErrProductNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("get inventory item %s: %w", l.SKU, err)
		}
		items[l.SKU] = item
	}

	var shortfalls []orderdomain.LineShortfall
	for _, l := range lines {
		available := items[l.SKU].AvailableQuantity()
		if l.Quantity > available {
			shortfalls = append(shortfalls, orderdomain.LineShortfall{
				SKU:       l.SKU,
				Requested: l.Quantity,
				Available: available,
			})
		}
	}
	if len(shortfalls) > 0 {
		return nil, &orderdomain.StockValidationError{
			OrderID: order.ID.String(),
			Lines:   shortfalls,
		}
	}

	reason := fmt.Sprintf("order %s confirmed", order.ID)
	for _, l := range lines {
		if err := items[l.SKU].DecreaseStock(l.Quantity, reason); err != nil {
			// Unreachable after validation while the locks are held.
			return nil, fmt.Errorf("decrease %s: %w", l.SKU, err)
		}
	}
	if err := order.Confirm(); err != nil {
		return nil, err
	}

	for _, l := range lines {
		if err := s.inventory.Update(ctx, items[l.SKU]); err != nil {
			return nil, fmt.Errorf("update inventory item %s: %w", l.SKU, err)
		}
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}

	if s.sink != nil {
		for _, item := range items {
			for _, ev := range item.PullEvents() {
				if err := s.sink.PublishDomain(ctx, ev); err != nil {
					s.log.WarnContext(ctx, "event publish failed", "topic", ev.Topic(), "error", err)
				}
			}
		}
		for _, ev := range order.PullEvents() {
			if err := s.sink.PublishDomain(ctx, ev); err != nil {
				s.log.WarnContext(ctx, "event publish failed", "topic", ev.Topic(), "error", err)
			}
		}
	}
	return order, nil
}
