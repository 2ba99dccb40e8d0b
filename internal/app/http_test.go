package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"session-gatekeeper/internal/auth"
	"session-gatekeeper/internal/auth/resolver"
	"session-gatekeeper/internal/config"
	"session-gatekeeper/internal/db"
	"session-gatekeeper/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubProvider plays the identity provider: it approves every code.
type stubProvider struct {
	nickname string
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) AuthCodeURL(state, codeChallenge, nonce string) string {
	q := url.Values{"state": {state}, "code_challenge": {codeChallenge}, "nonce": {nonce}}
	return "https://tenant.example.com/authorize?" + q.Encode()
}

func (s *stubProvider) ExchangeCode(_ context.Context, _, _, _ string) (*auth.Token, error) {
	return &auth.Token{
		AccessToken: "access-abc",
		TokenType:   "Bearer",
		UserInfo: map[string]any{
			"sub":      "stub|" + s.nickname,
			"nickname": s.nickname,
		},
	}, nil
}

func (s *stubProvider) LogoutURL(returnTo string) string {
	q := url.Values{"returnTo": {returnTo}, "client_id": {"client-123"}}
	return "https://tenant.example.com/v2/logout?" + q.Encode()
}

func testConfig() config.Config {
	return config.Config{
		AppPort:           "3000",
		AppBaseURL:        "http://localhost:3000",
		SecretKey:         "test-secret",
		Auth0Domain:       "tenant.example.com",
		Auth0ClientID:     "client-123",
		Auth0ClientSecret: "shh",
		DatabaseDriver:    "sqlite",
		SessionTTL:        time.Hour,
	}
}

type client struct {
	t      *testing.T
	router http.Handler
	jar    map[string]*http.Cookie
}

func newClient(t *testing.T, deps Deps) *client {
	t.Helper()

	router, err := NewRouter(testConfig(), deps)
	require.NoError(t, err)

	return &client{t: t, router: router, jar: map[string]*http.Cookie{}}
}

func newDeps(t *testing.T) Deps {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	return Deps{
		Provider: &stubProvider{nickname: "alice"},
		Sessions: session.NewRedisStore(rc),
	}
}

// get performs a request carrying the client's cookies and records any
// cookies set or cleared by the response.
func (c *client) get(path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range c.jar {
		req.AddCookie(ck)
	}

	rec := httptest.NewRecorder()
	c.router.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.jar, ck.Name)
			continue
		}
		c.jar[ck.Name] = ck
	}
	return rec
}

func isRedirect(code int) bool { return code >= 300 && code < 400 }

func (c *client) loginAs() {
	c.t.Helper()

	rec := c.get("/login")
	require.True(c.t, isRedirect(rec.Code))

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(c.t, err)

	rec = c.get("/callback?code=the-code&state=" + loc.Query().Get("state"))
	require.Equal(c.t, http.StatusFound, rec.Code)
	require.Equal(c.t, "/dashboard", rec.Header().Get("Location"))
}

func TestHomeIsPublic(t *testing.T) {
	c := newClient(t, newDeps(t))

	rec := c.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth(t *testing.T) {
	c := newClient(t, newDeps(t))

	rec := c.get("/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestUnknownRouteRendersNotFound(t *testing.T) {
	c := newClient(t, newDeps(t))

	rec := c.get("/home")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginRedirectsToAuthorizationEndpoint(t *testing.T) {
	c := newClient(t, newDeps(t))

	rec := c.get("/login")
	require.True(t, isRedirect(rec.Code))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "https://tenant.example.com/authorize?"))
}

func TestProtectedPagesRedirectAnonymous(t *testing.T) {
	c := newClient(t, newDeps(t))

	for _, path := range []string{"/dashboard", "/settings"} {
		for i := 0; i < 2; i++ {
			rec := c.get(path)
			assert.Equal(t, http.StatusFound, rec.Code, path)
			assert.Equal(t, "/", rec.Header().Get("Location"), path)
		}
	}
}

func TestDashboardShowsStoredToken(t *testing.T) {
	c := newClient(t, newDeps(t))
	c.loginAs()

	rec := c.get("/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "access-abc")
	assert.Contains(t, rec.Body.String(), "&#34;userinfo&#34;")
}

func TestLoginCallbackSettingsFlow(t *testing.T) {
	c := newClient(t, newDeps(t))
	c.loginAs()

	rec := c.get("/settings")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<span id="nickname">alice</span>`)
}

func TestLogoutEndsSession(t *testing.T) {
	c := newClient(t, newDeps(t))
	c.loginAs()

	rec := c.get("/logout")
	require.True(t, isRedirect(rec.Code))

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", loc.Path)
	assert.Equal(t, "http://localhost:3000/", loc.Query().Get("returnTo"))
	assert.Equal(t, "client-123", loc.Query().Get("client_id"))

	rec = c.get("/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestLoggedOutCookieCannotBeReplayed(t *testing.T) {
	c := newClient(t, newDeps(t))
	c.loginAs()

	saved := map[string]*http.Cookie{}
	for k, v := range c.jar {
		saved[k] = v
	}

	c.get("/logout")
	c.jar = saved

	rec := c.get("/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestFlowWithUserDirectory(t *testing.T) {
	directory, err := db.Open(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = directory.Close() })

	deps := newDeps(t)
	deps.Resolver = resolver.NewDBResolver(directory)

	c := newClient(t, deps)
	c.loginAs()

	var nickname string
	require.NoError(t, directory.QueryRow(`SELECT nickname FROM users`).Scan(&nickname))
	assert.Equal(t, "alice", nickname)

	rec := c.get("/settings")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewFailsWithoutRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := testConfig()
	cfg.RedisAddr = addr

	_, err := New(context.Background(), cfg)
	require.Error(t, err)
}

func TestProtectedPageReportsStoreFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	c := newClient(t, Deps{
		Provider: &stubProvider{nickname: "alice"},
		Sessions: session.NewRedisStore(rc),
	})
	c.loginAs()

	mr.Close()

	rec := c.get("/dashboard")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Your session could not be loaded.")
}
