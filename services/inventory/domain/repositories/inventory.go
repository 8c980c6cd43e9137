package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/shopcore/services/inventory/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// InventoryRepository is the persistence interface for the InventoryItem
// aggregate. The domain layer owns this interface; infrastructure
// implements it.
//
// SKU uniqueness across items is enforced here, not by the aggregate:
// Save returns ErrSKUAlreadyExists on a duplicate. Update must compare
// the aggregate's Version stamp against the stored one and return
// ErrConcurrentModification when they differ, so read-modify-write
// sequences never silently lose a concurrent update.
type InventoryRepository interface {
	Save(ctx context.Context, item *models.InventoryItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error)
	GetBySKU(ctx context.Context, sku models.SKU) (*models.InventoryItem, error)
	Update(ctx context.Context, item *models.InventoryItem) error

	// List retrieves a paginated list of items ordered by SKU.
	// Returns the items slice and the total count (ignoring pagination).
	List(ctx context.Context, opts QueryOpts) ([]*models.InventoryItem, int, error)

	// ExistsBySKU reports whether an item with the given SKU exists.
	ExistsBySKU(ctx context.Context, sku models.SKU) (bool, error)
}
