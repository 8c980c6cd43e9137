// Package database wraps the PostgreSQL connection pool used by all
// repositories. Queries run through the stdlib database/sql interface
// backed by the pgx driver, which keeps repositories compatible with
// the Watermill SQL transport sharing the same database.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/shopcore/pkg/logger"
)

const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

// Database wraps *sql.DB with project-level pool configuration.
type Database struct {
	db  *sql.DB
	log logger.Logger
}

// NewPool opens a connection pool to dbURL and verifies connectivity.
func NewPool(ctx context.Context, dbURL string, log logger.Logger) (*Database, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("database: open: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return &Database{db: db, log: log}, nil
}

// DB returns the underlying *sql.DB for direct query execution.
func (d *Database) DB() *sql.DB {
	return d.db
}

// WithTx runs fn inside a transaction. The transaction is committed if fn
// returns nil and rolled back otherwise. A rollback failure is logged but
// fn's error is what the caller receives.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database: begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && d.log != nil {
			d.log.ErrorContext(ctx, "database: rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("database: commit tx: %w", err)
	}
	return nil
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping: %w", err)
	}
	return nil
}

// Close shuts down the connection pool.
func (d *Database) Close() {
	if err := d.db.Close(); err != nil && d.log != nil {
		d.log.Error("database: close failed", "error", err)
	}
}
