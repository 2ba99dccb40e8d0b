package middleware

import (
	"net/http"

	"session-gatekeeper/internal/session"

	"github.com/gin-gonic/gin"
)

// GinRequireAuth adapts the net/http AuthMiddleware to Gin so the guard
// stays usable outside the router.
func GinRequireAuth(auth *AuthMiddleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed := false
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed = true
			c.Request = r
			c.Next()
		})

		auth.RequireAuth(next).ServeHTTP(c.Writer, c.Request)

		if !allowed {
			c.Abort()
		}
	}
}

// CurrentSession is a Gin-side accessor for SessionFromContext.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	return SessionFromContext(c.Request.Context())
}
