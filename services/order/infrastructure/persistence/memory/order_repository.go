// Package memory provides a map-backed OrderRepository used in tests and
// local development, with the same copy-in/copy-out and optimistic
// version semantics as the Postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	orderdomain "github.com/ghuser/shopcore/services/order/domain"
	"github.com/ghuser/shopcore/services/order/domain/models"
	"github.com/ghuser/shopcore/services/order/domain/repositories"
)

// OrderRepository implements repositories.OrderRepository in memory.
type OrderRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*models.Order
}

// NewOrderRepository returns an empty in-memory repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byID: make(map[uuid.UUID]*models.Order)}
}

// Save stores a new order.
func (r *OrderRepository) Save(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[order.ID] = cloneOrder(order)
	return nil
}

// GetByID retrieves an order by ID. Returns ErrOrderNotFound if absent.
func (r *OrderRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.byID[id]
	if !ok {
		return nil, orderdomain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

// Update persists changes to an existing order under the optimistic
// version check.
func (r *OrderRepository) Update(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[order.ID]
	if !ok {
		return orderdomain.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return orderdomain.ErrConcurrentModification
	}
	order.Version++
	r.byID[order.ID] = cloneOrder(order)
	return nil
}

// List retrieves a paginated list of orders, newest first, plus the total count.
func (r *OrderRepository) List(_ context.Context, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.Order, 0, len(r.byID))
	for _, order := range r.byID {
		all = append(all, order)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	out := make([]*models.Order, 0, end-start)
	for _, order := range all[start:end] {
		out = append(out, cloneOrder(order))
	}
	return out, total, nil
}

func cloneOrder(order *models.Order) *models.Order {
	return models.RestoreOrder(
		order.ID,
		order.CustomerName,
		order.CustomerEmail,
		order.ShippingAddress,
		order.Status,
		order.Version,
		order.CreatedAt,
		copyTime(order.ModifiedAt),
		order.Lines(),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
