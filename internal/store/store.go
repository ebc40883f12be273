// Package store picks the persistence backend named by configuration.
package store

import (
	"context"
	"fmt"

	"github.com/example/asaas-gateway/internal/config"
	"github.com/example/asaas-gateway/internal/ledger"
	"github.com/example/asaas-gateway/internal/reference"
	"github.com/example/asaas-gateway/internal/store/postgres"
	"github.com/example/asaas-gateway/internal/store/sqlite"
)

type Stores struct {
	Ledger ledger.Store
	Domain reference.DomainStore
	close  func()
}

func (s *Stores) Close() {
	if s.close != nil {
		s.close()
	}
}

func Open(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Stores{
			Ledger: postgres.NewLedgerStore(pool),
			Domain: postgres.NewDomainStore(pool),
			close:  pool.Close,
		}, nil

	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &Stores{
			Ledger: sqlite.NewLedgerStore(db),
			Domain: sqlite.NewDomainStore(db),
			close: func() {
				if sqlDB, err := db.DB(); err == nil {
					_ = sqlDB.Close()
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
