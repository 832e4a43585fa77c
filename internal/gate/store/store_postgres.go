package store

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresCounter keeps the counter in the single-row kyc_counter table.
type PostgresCounter struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresCounter {
	return &PostgresCounter{db: db}
}

func (c *PostgresCounter) Increment(ctx context.Context) (uint64, error) {
	var value int64
	err := c.db.QueryRowContext(ctx, `
		UPDATE kyc_counter SET value = value + 1
		WHERE id = 1
		RETURNING value
	`).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("increment kyc counter: %w", err)
	}
	return uint64(value), nil
}

func (c *PostgresCounter) Value(ctx context.Context) (uint64, error) {
	var value int64
	if err := c.db.QueryRowContext(ctx, `SELECT value FROM kyc_counter WHERE id = 1`).Scan(&value); err != nil {
		return 0, fmt.Errorf("read kyc counter: %w", err)
	}
	return uint64(value), nil
}
