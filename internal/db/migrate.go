package db

import (
	"context"
	"database/sql"
	"fmt"
)

// Statements are kept to the subset of SQL shared by Postgres and SQLite.
// Ids are generated by the application.
var directoryMigration = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL DEFAULT '',
    email_verified BOOLEAN NOT NULL DEFAULT FALSE,
    nickname TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_login_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,

	`DROP INDEX IF EXISTS users_email_lower_unique`,

	// unverified addresses may repeat; only a verified one is claimed
	`CREATE UNIQUE INDEX IF NOT EXISTS users_verified_email_lower_unique
ON users (LOWER(email)) WHERE email <> '' AND email_verified`,

	`CREATE TABLE IF NOT EXISTS identities (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    provider TEXT NOT NULL,
    provider_user_id TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    CONSTRAINT identities_provider_unique
        UNIQUE (provider, provider_user_id)
)`,

	`CREATE INDEX IF NOT EXISTS identities_user_id_idx
ON identities (user_id)`,
}

// Migrate creates the directory schema. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range directoryMigration {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: migration step %d: %w", i, err)
		}
	}
	return nil
}
