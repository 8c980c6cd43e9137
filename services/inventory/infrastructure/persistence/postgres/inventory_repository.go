package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/shopcore/pkg/database"
	invdomain "github.com/ghuser/shopcore/services/inventory/domain"
	"github.com/ghuser/shopcore/services/inventory/domain/models"
	"github.com/ghuser/shopcore/services/inventory/domain/repositories"
)

// InventoryRepository implements repositories.InventoryRepository against
// PostgreSQL. Reservations are stored in a child table and rewritten as a
// whole on every update, inside the same transaction as the item row.
// Update uses an optimistic version check so two read-modify-write
// sequences racing on the same SKU cannot silently lose one of the writes.
type InventoryRepository struct {
	db *database.Database
}

// NewInventoryRepository returns an InventoryRepository backed by the
// given connection pool.
func NewInventoryRepository(db *database.Database) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// Save persists a new inventory item and its reservations.
// Returns ErrSKUAlreadyExists on the sku unique constraint.
func (r *InventoryRepository) Save(ctx context.Context, item *models.InventoryItem) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_items (id, sku, quantity, minimum_stock_level, version, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			item.ID, item.SKU.String(), item.Quantity, item.MinimumStockLevel,
			item.Version, item.CreatedAt, item.ModifiedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return invdomain.ErrSKUAlreadyExists
			}
			return fmt.Errorf("insert inventory item: %w", err)
		}
		return insertReservations(ctx, tx, item.ID, item.Reservations())
	})
}

// GetByID retrieves an item by ID. Returns ErrItemNotFound if absent.
func (r *InventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.InventoryItem, error) {
	return r.getOne(ctx, `
		SELECT id, sku, quantity, minimum_stock_level, version, created_at, modified_at
		FROM inventory_items WHERE id = $1`, id)
}

// GetBySKU retrieves an item by SKU. Returns ErrItemNotFound if absent.
func (r *InventoryRepository) GetBySKU(ctx context.Context, sku models.SKU) (*models.InventoryItem, error) {
	return r.getOne(ctx, `
		SELECT id, sku, quantity, minimum_stock_level, version, created_at, modified_at
		FROM inventory_items WHERE sku = $1`, sku.String())
}

// Update persists changes to an existing item. The WHERE version clause
// is the optimistic check: zero affected rows means the item changed
// since it was loaded (or was deleted) and the caller must retry.
func (r *InventoryRepository) Update(ctx context.Context, item *models.InventoryItem) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET quantity = $1, minimum_stock_level = $2, version = version + 1, modified_at = $3
			WHERE id = $4 AND version = $5`,
			item.Quantity, item.MinimumStockLevel, item.ModifiedAt, item.ID, item.Version,
		)
		if err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update inventory item: %w", err)
		}
		if affected == 0 {
			return invdomain.ErrConcurrentModification
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM inventory_reservations WHERE item_id = $1`, item.ID,
		); err != nil {
			return fmt.Errorf("clear reservations: %w", err)
		}
		return insertReservations(ctx, tx, item.ID, item.Reservations())
	})
	if err != nil {
		return err
	}
	item.Version++
	return nil
}

// List retrieves a paginated list of items ordered by SKU plus the total count.
func (r *InventoryRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.InventoryItem, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, sku, quantity, minimum_stock_level, version, created_at, modified_at
		FROM inventory_items ORDER BY sku LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query inventory items: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var items []*models.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate inventory items: %w", err)
	}

	for _, item := range items {
		if err := r.loadReservations(ctx, item); err != nil {
			return nil, 0, err
		}
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM inventory_items`,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count inventory items: %w", err)
	}
	return items, total, nil
}

// ExistsBySKU reports whether an item with the given SKU exists.
func (r *InventoryRepository) ExistsBySKU(ctx context.Context, sku models.SKU) (bool, error) {
	var exists bool
	if err := r.db.DB().QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM inventory_items WHERE sku = $1)`, sku.String(),
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("check inventory item exists: %w", err)
	}
	return exists, nil
}

func (r *InventoryRepository) getOne(ctx context.Context, query string, arg any) (*models.InventoryItem, error) {
	item, err := scanItem(r.db.DB().QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invdomain.ErrItemNotFound
		}
		return nil, err
	}
	if err := r.loadReservations(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *InventoryRepository) loadReservations(ctx context.Context, item *models.InventoryItem) error {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT reservation_id, quantity, reserved_at, expires_at
		FROM inventory_reservations WHERE item_id = $1 ORDER BY reserved_at`,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var reservations []models.Reservation
	for rows.Next() {
		var res models.Reservation
		var expiresAt sql.NullTime
		if err := rows.Scan(&res.ID, &res.Quantity, &res.ReservedAt, &expiresAt); err != nil {
			return fmt.Errorf("scan reservation: %w", err)
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			res.ExpiresAt = &t
		}
		reservations = append(reservations, res)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate reservations: %w", err)
	}

	*item = *models.RestoreInventoryItem(
		item.ID, item.SKU, item.Quantity, item.MinimumStockLevel,
		item.Version, item.CreatedAt, item.ModifiedAt, reservations,
	)
	return nil
}

func insertReservations(ctx context.Context, tx *sql.Tx, itemID uuid.UUID, reservations []models.Reservation) error {
	for _, res := range reservations {
		var expiresAt any
		if res.ExpiresAt != nil {
			expiresAt = *res.ExpiresAt
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_reservations (item_id, reservation_id, quantity, reserved_at, expires_at)
			VALUES ($1, $2, $3, $4, $5)`,
			itemID, res.ID, res.Quantity, res.ReservedAt, expiresAt,
		); err != nil {
			return fmt.Errorf("insert reservation: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.InventoryItem, error) {
	var (
		id         uuid.UUID
		sku        string
		quantity   int
		minimum    int
		version    int
		createdAt  time.Time
		modifiedAt sql.NullTime
	)
	if err := row.Scan(&id, &sku, &quantity, &minimum, &version, &createdAt, &modifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan inventory item: %w", err)
	}

	var modified *time.Time
	if modifiedAt.Valid {
		t := modifiedAt.Time
		modified = &t
	}
	return models.RestoreInventoryItem(id, models.SKU(sku), quantity, minimum, version, createdAt, modified, nil), nil
}
