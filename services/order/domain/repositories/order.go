package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/shopcore/services/order/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// OrderRepository is the persistence interface for the Order aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Update must compare the aggregate's Version stamp against the stored
// one and return an error when they differ, so read-modify-write
// sequences never silently lose a concurrent update.
type OrderRepository interface {
	Save(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error

	// List retrieves a paginated list of orders, newest first.
	// Returns the orders slice and the total count (ignoring pagination).
	List(ctx context.Context, opts QueryOpts) ([]*models.Order, int, error)
}
