package db

import (
	"context"
	"database/sql"
	"fmt"
)

// DB is the user directory database. Drivers are registered by the
// caller (lib/pq as "postgres", modernc.org/sqlite as "sqlite").
type DB struct {
	*sql.DB
}

// Open connects, pings and migrates the directory schema.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// each sqlite connection to :memory: is its own database
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("db: ping: %w", err)
	}

	if err := Migrate(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return &DB{DB: sqlDB}, nil
}
