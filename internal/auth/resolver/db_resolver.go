package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"session-gatekeeper/internal/auth"
	"session-gatekeeper/internal/db"

	"github.com/google/uuid"
)

// DBResolver resolves identities using the user directory.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (userID string, err error) {

	if identity == nil {
		return "", errors.New("identity is nil")
	}
	if identity.Provider == "" || identity.ProviderUserID == "" {
		return "", errors.New("identity missing provider or subject")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("resolver: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	userID, err = resolveTx(ctx, tx, identity)
	if err != nil {
		return "", err
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE users
		SET last_login_at = CURRENT_TIMESTAMP, nickname = $1
		WHERE id = $2
	`,
		identity.Nickname,
		userID,
	); err != nil {
		return "", err
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("resolver: commit: %w", err)
	}
	return userID, nil
}

func resolveTx(ctx context.Context, tx *sql.Tx, identity *auth.Identity) (string, error) {
	// 1. Try identity lookup (provider + provider_user_id)
	var userID string
	err := tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	if err == nil {
		return userID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	// 2. Try email-based linking (existing user, new provider).
	// Both sides must have a verified address.
	if identity.Email != "" && identity.EmailVerified {
		err = tx.QueryRowContext(ctx, `
			SELECT id
			FROM users
			WHERE LOWER(email) = LOWER($1)
			  AND email_verified
		`,
			identity.Email,
		).Scan(&userID)

		if err == nil {
			return userID, linkIdentity(ctx, tx, userID, identity)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
	}

	// 3. Create new user
	userID = uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, email, email_verified, nickname)
		VALUES ($1, $2, $3, $4)
	`,
		userID,
		identity.Email,
		identity.EmailVerified,
		identity.Nickname,
	)
	if err != nil {
		return "", err
	}

	// 4. Create identity mapping
	return userID, linkIdentity(ctx, tx, userID, identity)
}

func linkIdentity(ctx context.Context, tx *sql.Tx, userID string, identity *auth.Identity) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO identities (id, user_id, provider, provider_user_id)
		VALUES ($1, $2, $3, $4)
	`,
		uuid.NewString(),
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)
	return err
}
