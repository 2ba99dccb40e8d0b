package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"session-gatekeeper/internal/auth"
	"session-gatekeeper/internal/middleware"
	"session-gatekeeper/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter mounts the pages with sess injected as if the access
// guard had admitted the request.
func newTestRouter(t *testing.T, sess *session.Session) *gin.Engine {
	t.Helper()

	tmpl, err := Templates()
	require.NoError(t, err)

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.Use(func(c *gin.Context) {
		if sess != nil {
			c.Request = c.Request.WithContext(middleware.WithSession(c.Request.Context(), sess))
		}
		c.Next()
	})
	RegisterPublic(r)
	RegisterProtected(r)
	r.GET("/boom", func(c *gin.Context) {
		RenderError(c, http.StatusUnauthorized, "nope")
	})
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func aliceSession() *session.Session {
	return &session.Session{
		SessionID: "sid",
		User: &auth.Token{
			AccessToken: "access-abc",
			TokenType:   "Bearer",
			Scope:       "openid profile email",
			UserInfo: map[string]any{
				"nickname": "alice",
				"email":    "alice@example.com",
			},
		},
	}
}

func TestHome(t *testing.T) {
	rec := get(newTestRouter(t, nil), "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/login"`)
}

func TestDashboardRendersToken(t *testing.T) {
	rec := get(newTestRouter(t, aliceSession()), "/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "access_token")
	assert.Contains(t, body, "access-abc")
	assert.Contains(t, body, "userinfo")
	assert.Contains(t, body, "alice@example.com")
	// four-space indentation of the JSON dump
	assert.Contains(t, body, "\n    &#34;access_token&#34;")
}

func TestSettingsShowsNickname(t *testing.T) {
	rec := get(newTestRouter(t, aliceSession()), "/settings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="nickname">alice</span>`)
}

func TestSettingsBlankNickname(t *testing.T) {
	sess := aliceSession()
	sess.User.UserInfo = map[string]any{"sub": "x"}

	rec := get(newTestRouter(t, sess), "/settings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="nickname"></span>`)

	rec = get(newTestRouter(t, nil), "/settings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="nickname"></span>`)
}

func TestRenderError(t *testing.T) {
	rec := get(newTestRouter(t, nil), "/boom")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Unauthorized")
	assert.Contains(t, rec.Body.String(), "nope")
}
