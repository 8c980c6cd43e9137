// Package memory provides a map-backed InventoryRepository used in tests
// and local development. State is copied on the way in and out so callers
// never share aggregate instances with the store, and Update enforces the
// same optimistic version check as the Postgres implementation.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	invdomain "github.com/ghuser/shopcore/services/inventory/domain"
	"github.com/ghuser/shopcore/services/inventory/domain/models"
	"github.com/ghuser/shopcore/services/inventory/domain/repositories"
)

// InventoryRepository implements repositories.InventoryRepository in memory.
type InventoryRepository struct {
	mu    sync.RWMutex
	byID  map[uuid.UUID]*models.InventoryItem
	bySKU map[models.SKU]uuid.UUID
}

// NewInventoryRepository returns an empty in-memory repository.
func NewInventoryRepository() *InventoryRepository {
	return &InventoryRepository{
		byID:  make(map[uuid.UUID]*models.InventoryItem),
		bySKU: make(map[models.SKU]uuid.UUID),
	}
}

// Save stores a new item. Returns ErrSKUAlreadyExists on a duplicate SKU.
func (r *InventoryRepository) Save(_ context.Context, item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.bySKU[item.SKU]; ok {
		return invdomain.ErrSKUAlreadyExists
	}
	r.byID[item.ID] = cloneItem(item)
	r.bySKU[item.SKU] = item.ID
	return nil
}

// GetByID retrieves an item by ID. Returns ErrItemNotFound if absent.
func (r *InventoryRepository) GetByID(_ context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.byID[id]
	if !ok {
		return nil, invdomain.ErrItemNotFound
	}
	return cloneItem(item), nil
}

// GetBySKU retrieves an item by SKU. Returns ErrItemNotFound if absent.
func (r *InventoryRepository) GetBySKU(_ context.Context, sku models.SKU) (*models.InventoryItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.bySKU[sku]
	if !ok {
		return nil, invdomain.ErrItemNotFound
	}
	return cloneItem(r.byID[id]), nil
}

// Update persists changes to an existing item. The caller's Version must
// match the stored one; on success the caller's aggregate receives the
// incremented stamp.
func (r *InventoryRepository) Update(_ context.Context, item *models.InventoryItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.byID[item.ID]
	if !ok {
		return invdomain.ErrItemNotFound
	}
	if stored.Version != item.Version {
		return invdomain.ErrConcurrentModification
	}
	item.Version++
	r.byID[item.ID] = cloneItem(item)
	return nil
}

// List retrieves a paginated list of items ordered by SKU plus the total count.
func (r *InventoryRepository) List(_ context.Context, opts repositories.QueryOpts) ([]*models.InventoryItem, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*models.InventoryItem, 0, len(r.byID))
	for _, item := range r.byID {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].SKU < all[j].SKU })

	total := len(all)
	start := opts.Offset
	if start > total {
		start = total
	}
	end := total
	if opts.Limit > 0 && start+opts.Limit < end {
		end = start + opts.Limit
	}

	out := make([]*models.InventoryItem, 0, end-start)
	for _, item := range all[start:end] {
		out = append(out, cloneItem(item))
	}
	return out, total, nil
}

// ExistsBySKU reports whether an item with the given SKU exists.
func (r *InventoryRepository) ExistsBySKU(_ context.Context, sku models.SKU) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.bySKU[sku]
	return ok, nil
}

// cloneItem deep-copies the persistent state of an aggregate, dropping
// any undrained events held by the source instance.
func cloneItem(item *models.InventoryItem) *models.InventoryItem {
	return models.RestoreInventoryItem(
		item.ID,
		item.SKU,
		item.Quantity,
		item.MinimumStockLevel,
		item.Version,
		item.CreatedAt,
		copyTime(item.ModifiedAt),
		item.Reservations(),
	)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
