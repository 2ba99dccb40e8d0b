package session

import (
	"context"
	"time"

	"session-gatekeeper/internal/auth"
)

// Session is the server-side state bound to a browser cookie.
// An anonymous browser has no Session at all; one is created by a
// successful callback and removed by logout.
type Session struct {
	SessionID string      `json:"session_id"`
	UserID    string      `json:"user_id,omitempty"` // users.id, empty when no directory is configured
	User      *auth.Token `json:"user,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"` // absolute expiry time
}

// Authenticated reports whether the session carries a non-empty user record.
func (s *Session) Authenticated() bool {
	return s != nil && s.User.Present()
}

// Store defines how sessions are stored and retrieved.
// Get returns (nil, nil) when the session does not exist.
type Store interface {
	Create(ctx context.Context, s Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}
