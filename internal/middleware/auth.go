package middleware

import (
	"context"
	"net/http"
	"time"

	"session-gatekeeper/internal/logger"
	"session-gatekeeper/internal/session"
)

// unexported, collision-proof context key
type sessionContextKeyType struct{}

var sessionKey = sessionContextKeyType{}

// SessionFromContext returns the authenticated session attached by RequireAuth.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessionKey).(*session.Session)
	return s, ok && s != nil
}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

type AuthMiddleware struct {
	Store    session.Store
	Cookies  *session.Cookies
	Fallback string // where anonymous browsers are sent

	// OnStoreError answers requests whose session could not be loaded.
	// The default is a plain 500.
	OnStoreError func(w http.ResponseWriter, r *http.Request, err error)
}

func NewAuthMiddleware(store session.Store, cookies *session.Cookies) *AuthMiddleware {
	return &AuthMiddleware{
		Store:        store,
		Cookies:      cookies,
		Fallback:     "/",
		OnStoreError: internalError,
	}
}

// RequireAuth lets the request through only when the cookie resolves to
// a session holding an authenticated user. Anything else is redirected
// to Fallback without invoking next. A failing store is a server error,
// not an anonymous visit.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := a.Cookies.Read(r)
		if !ok {
			a.reject(w, r)
			return
		}

		sess, err := a.Store.Get(r.Context(), sessionID)
		if err != nil {
			logger.Error("session lookup failed", map[string]any{
				"error": err.Error(),
			})
			a.storeError(w, r, err)
			return
		}

		if !sess.Authenticated() {
			a.reject(w, r)
			return
		}

		// the store TTL normally removes these first
		if time.Now().After(sess.ExpiresAt) {
			_ = a.Store.Delete(r.Context(), sessionID)
			a.reject(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func (a *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, a.Fallback, http.StatusFound)
}

func (a *AuthMiddleware) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if a.OnStoreError == nil {
		internalError(w, r, err)
		return
	}
	a.OnStoreError(w, r, err)
}

func internalError(w http.ResponseWriter, _ *http.Request, _ error) {
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
