package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgevents "github.com/ghuser/shopcore/pkg/events"
	"github.com/ghuser/shopcore/pkg/logger"
	"github.com/ghuser/shopcore/services/order/domain/models"
	"github.com/ghuser/shopcore/services/order/domain/repositories"
)

// EventSink receives domain events after the aggregate state they describe
// has been persisted. *events.EventBus satisfies it.
type EventSink interface {
	PublishDomain(ctx context.Context, event pkgevents.DomainEvent) error
}

// OrderService orchestrates the order lifecycle except confirmation, which
// needs stock coordination and lives in ConfirmationService. Events are
// published best-effort after the save succeeds.
type OrderService struct {
	repo repositories.OrderRepository
	sink EventSink
	log  logger.Logger
}

// NewOrderService returns an OrderService wired with the given repository
// and event sink. sink and log may be nil in tests; a nil log is replaced
// with a no-op logger.
func NewOrderService(repo repositories.OrderRepository, sink EventSink, log logger.Logger) *OrderService {
	if log == nil {
		log = logger.NewNop()
	}
	return &OrderService{repo: repo, sink: sink, log: log}
}

// Create validates and persists a new Pending order with no lines.
func (s *OrderService) Create(ctx context.Context, customerName, customerEmail, shippingAddress string) (*models.Order, error) {
	order, err := models.NewOrder(customerName, customerEmail, shippingAddress)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}
	s.publish(ctx, order)
	return order, nil
}

// GetByID retrieves an order by ID.
func (s *OrderService) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// List returns a paginated slice of orders, newest first, plus total count.
func (s *OrderService) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	orders, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// AddItem appends or merges a line on a Pending order.
func (s *OrderService) AddItem(ctx context.Context, orderID uuid.UUID, sku, productName string, unitPrice decimal.Decimal, quantity int) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(o *models.Order) error {
		return o.AddItem(sku, productName, unitPrice, quantity)
	})
}

// RemoveItem deletes the line with the given SKU from a Pending order.
func (s *OrderService) RemoveItem(ctx context.Context, orderID uuid.UUID, sku string) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(o *models.Order) error {
		return o.RemoveItem(sku)
	})
}

// Ship transitions a Confirmed order to Shipped.
func (s *OrderService) Ship(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(o *models.Order) error {
		return o.Ship()
	})
}

// Deliver transitions a Shipped order to Delivered.
func (s *OrderService) Deliver(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(o *models.Order) error {
		return o.Deliver()
	})
}

// Cancel transitions a Pending or Confirmed order to Cancelled.
func (s *OrderService) Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.mutate(ctx, orderID, func(o *models.Order) error {
		return o.Cancel()
	})
}

// mutate runs the canonical write sequence for a single order.
func (s *OrderService) mutate(ctx context.Context, orderID uuid.UUID, fn func(*models.Order) error) (*models.Order, error) {
	order, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, order); err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	s.publish(ctx, order)
	return order, nil
}

// publish drains the aggregate's event buffer into the sink. Failures are
// logged but never rolled back: the state change is already durable.
func (s *OrderService) publish(ctx context.Context, order *models.Order) {
	if s.sink == nil {
		order.PullEvents()
		return
	}
	for _, ev := range order.PullEvents() {
		if err := s.sink.PublishDomain(ctx, ev); err != nil {
			s.log.WarnContext(ctx, "event publish failed", "topic", ev.Topic(), "error", err)
		}
	}
}
