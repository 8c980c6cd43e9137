package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/shopcore/pkg/database"
	orderdomain "github.com/ghuser/shopcore/services/order/domain"
	"github.com/ghuser/shopcore/services/order/domain/models"
	"github.com/ghuser/shopcore/services/order/domain/repositories"
)

// OrderRepository implements repositories.OrderRepository against
// PostgreSQL. Lines live in a child table rewritten as a whole on every
// update, inside the same transaction as the order row. Update uses an
// optimistic version check.
type OrderRepository struct {
	db *database.Database
}

// NewOrderRepository returns an OrderRepository backed by the given
// connection pool.
func NewOrderRepository(db *database.Database) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save persists a new order and its lines.
func (r *OrderRepository) Save(ctx context.Context, order *models.Order) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO orders (id, customer_name, customer_email, shipping_address, status, version, created_at, modified_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			order.ID, order.CustomerName, order.CustomerEmail, order.ShippingAddress,
			string(order.Status), order.Version, order.CreatedAt, order.ModifiedAt,
		); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		return insertLines(ctx, tx, order.ID, order.Lines())
	})
}

// GetByID retrieves an order by ID. Returns ErrOrderNotFound if absent.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := scanOrder(r.db.DB().QueryRowContext(ctx, `
		SELECT id, customer_name, customer_email, shipping_address, status, version, created_at, modified_at
		FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, orderdomain.ErrOrderNotFound
		}
		return nil, err
	}
	if err := r.loadLines(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Update persists changes to an existing order under the optimistic
// version check. Zero affected rows means a concurrent writer won.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE orders
			SET status = $1, version = version + 1, modified_at = $2
			WHERE id = $3 AND version = $4`,
			string(order.Status), order.ModifiedAt, order.ID, order.Version,
		)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if affected == 0 {
			return orderdomain.ErrConcurrentModification
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM order_lines WHERE order_id = $1`, order.ID); err != nil {
			return fmt.Errorf("clear order lines: %w", err)
		}
		return insertLines(ctx, tx, order.ID, order.Lines())
	})
	if err != nil {
		return err
	}
	order.Version++
	return nil
}

// List retrieves a paginated list of orders, newest first, plus the total count.
func (r *OrderRepository) List(ctx context.Context, opts repositories.QueryOpts) ([]*models.Order, int, error) {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT id, customer_name, customer_email, shipping_address, status, version, created_at, modified_at
		FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		opts.Limit, opts.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate orders: %w", err)
	}

	for _, order := range orders {
		if err := r.loadLines(ctx, order); err != nil {
			return nil, 0, err
		}
	}

	var total int
	if err := r.db.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	return orders, total, nil
}

func (r *OrderRepository) loadLines(ctx context.Context, order *models.Order) error {
	rows, err := r.db.DB().QueryContext(ctx, `
		SELECT sku, product_name, unit_price, quantity
		FROM order_lines WHERE order_id = $1 ORDER BY sku`,
		order.ID,
	)
	if err != nil {
		return fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		var price string
		if err := rows.Scan(&line.SKU, &line.ProductName, &price, &line.Quantity); err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		line.UnitPrice, err = decimal.NewFromString(price)
		if err != nil {
			return fmt.Errorf("parse unit price: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate order lines: %w", err)
	}

	*order = *models.RestoreOrder(
		order.ID, order.CustomerName, order.CustomerEmail, order.ShippingAddress,
		order.Status, order.Version, order.CreatedAt, order.ModifiedAt, lines,
	)
	return nil
}

func insertLines(ctx context.Context, tx *sql.Tx, orderID uuid.UUID, lines []models.OrderLine) error {
	for _, line := range lines {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO order_lines (order_id, sku, product_name, unit_price, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			orderID, line.SKU, line.ProductName, line.UnitPrice.String(), line.Quantity,
		); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var (
		id         uuid.UUID
		name       string
		email      string
		address    string
		status     string
		version    int
		createdAt  time.Time
		modifiedAt sql.NullTime
	)
	if err := row.Scan(&id, &name, &email, &address, &status, &version, &createdAt, &modifiedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	var modified *time.Time
	if modifiedAt.Valid {
		t := modifiedAt.Time
		modified = &t
	}
	return models.RestoreOrder(id, name, email, address, models.OrderStatus(status), version, createdAt, modified, nil), nil
}
