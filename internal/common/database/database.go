package database

import (
	"context"
	"database/sql"
	"fmt"

	"egov-event-export/internal/common/config"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Open opens a single-connection handle for one extraction run and pings it.
// The caller owns the handle and must Close it.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn, err := cfg.GetDSN()
	if err != nil {
		return nil, err
	}

	driver := cfg.Driver
	if driver == "" {
		driver = config.DriverMySQL
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one query per run, no pooling
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Close closes the handle if it is non-nil
func Close(db *sql.DB) error {
	if db != nil {
		return db.Close()
	}
	return nil
}
