// Package postgres implements the ledger and domain stores on PostgreSQL via pgx.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Open connects a pool and verifies it with a ping.
func Open(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the ledger tables. Order, consultation and profile tables belong
// to the application and are expected to exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS asaas_customers (
			user_id           TEXT PRIMARY KEY,
			asaas_customer_id TEXT NOT NULL,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS asaas_payments (
			asaas_payment_id  TEXT PRIMARY KEY,
			user_id           TEXT,
			asaas_customer_id TEXT,
			reference_type    TEXT,
			reference_id      TEXT,
			billing_type      TEXT,
			value             NUMERIC(12,2) NOT NULL,
			status            TEXT,
			due_date          DATE,
			invoice_url       TEXT,
			bank_slip_url     TEXT,
			created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS ix_asaas_payments_reference
			ON asaas_payments (reference_type, reference_id)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
