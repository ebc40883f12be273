package sqlite

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens path (":memory:" works) and migrates every table, including the
// domain tables a standalone deployment has no other owner for.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection: sqlite serialises writers and :memory: is per-connection
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&PaymentRow{},
		&CustomerRow{},
		&ProfileRow{},
		&OrderRow{},
		&OrderHistoryRow{},
		&ConsultationRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}
	return db, nil
}
