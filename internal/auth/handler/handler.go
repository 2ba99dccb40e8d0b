package handler

import (
	"net/http"
	"time"

	"session-gatekeeper/internal/auth"
	"session-gatekeeper/internal/auth/provider"
	"session-gatekeeper/internal/auth/resolver"
	"session-gatekeeper/internal/logger"
	"session-gatekeeper/internal/session"
	"session-gatekeeper/internal/web"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	provider     provider.OAuthProvider
	sessionStore session.Store
	cookies      *session.Cookies
	resolver     resolver.Resolver // nil when no user directory is configured
	homeURL      string
	sessionTTL   time.Duration
}

func NewHandler(
	p provider.OAuthProvider,
	sessionStore session.Store,
	cookies *session.Cookies,
	resolver resolver.Resolver,
	homeURL string,
	sessionTTL time.Duration,
) *Handler {
	return &Handler{
		provider:     p,
		sessionStore: sessionStore,
		cookies:      cookies,
		resolver:     resolver,
		homeURL:      homeURL,
		sessionTTL:   sessionTTL,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/login", h.login)
	r.GET("/callback", h.callback)
	r.POST("/callback", h.callback) // same-site form posts
	r.GET("/logout", h.logout)
}

func (h *Handler) login(c *gin.Context) {
	state, err := h.issueFlowCookie(c, stateCookieName)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "could not start login", err)
		return
	}

	nonce, err := h.issueFlowCookie(c, nonceCookieName)
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "could not start login", err)
		return
	}

	_, codeChallenge := h.generatePKCE(c)

	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state, codeChallenge, nonce))
}

func (h *Handler) callback(c *gin.Context) {
	ctx := c.Request.Context()

	// a callback that does not answer this browser's login leaves the
	// flow cookies alone
	if !validateState(c) {
		logger.Warn("oidc callback state mismatch", map[string]any{
			"provider": h.provider.Name(),
			"ip":       c.ClientIP(),
		})
		web.RenderError(c, http.StatusUnauthorized, "The login request is invalid or has expired.")
		return
	}

	// provider reported an error (user cancelled, consent denied, ...)
	if errParam := callbackParam(c, "error"); errParam != "" {
		logger.Warn("oidc callback returned error", map[string]any{
			"provider": h.provider.Name(),
			"error":    errParam,
			"desc":     callbackParam(c, "error_description"),
		})
		h.clearFlowCookies(c)
		web.RenderError(c, http.StatusUnauthorized, "The identity provider did not complete the login.")
		return
	}

	code := callbackParam(c, "code")
	if code == "" {
		logger.Error("oidc callback missing code and error", nil)
		h.clearFlowCookies(c)
		web.RenderError(c, http.StatusBadRequest, "The login response is incomplete.")
		return
	}

	codeVerifier := getPKCEVerifier(c)
	nonce := flowCookie(c, nonceCookieName)
	h.clearFlowCookies(c)

	if codeVerifier == "" || nonce == "" {
		web.RenderError(c, http.StatusUnauthorized, "The login request is invalid or has expired.")
		return
	}

	token, err := h.provider.ExchangeCode(ctx, code, codeVerifier, nonce)
	if err != nil {
		logger.Warn("token exchange rejected", map[string]any{
			"provider": h.provider.Name(),
			"error":    err.Error(),
		})
		web.RenderError(c, http.StatusUnauthorized, "Authentication failed.")
		return
	}

	var userID string
	if h.resolver != nil {
		identity, err := auth.IdentityFromToken(h.provider.Name(), token)
		if err != nil {
			h.fail(c, http.StatusUnauthorized, "Authentication failed.", err)
			return
		}

		userID, err = h.resolver.Resolve(ctx, identity)
		if err != nil {
			h.fail(c, http.StatusInternalServerError, "Failed to resolve user.", err)
			return
		}
	}

	// a login always gets a fresh session id
	if previous, ok := h.cookies.Read(c.Request); ok {
		_ = h.sessionStore.Delete(ctx, previous)
	}

	sessionID, err := session.GenerateID()
	if err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to create session.", err)
		return
	}

	now := time.Now()
	sess := session.Session{
		SessionID: sessionID,
		UserID:    userID,
		User:      token,
		CreatedAt: now,
		ExpiresAt: now.Add(h.sessionTTL),
	}

	if err := h.sessionStore.Create(ctx, sess); err != nil {
		h.fail(c, http.StatusInternalServerError, "Failed to persist session.", err)
		return
	}

	if err := h.cookies.Set(c.Writer, sessionID, sess.ExpiresAt); err != nil {
		_ = h.sessionStore.Delete(ctx, sessionID)
		h.fail(c, http.StatusInternalServerError, "Failed to persist session.", err)
		return
	}

	logger.Info("login success", map[string]any{
		"provider": h.provider.Name(),
		"user_id":  userID,
		"ip":       c.ClientIP(),
	})

	c.Redirect(http.StatusFound, "/dashboard")
}

func (h *Handler) logout(c *gin.Context) {
	if sessionID, ok := h.cookies.Read(c.Request); ok {
		// best-effort: the cookie is cleared either way
		if err := h.sessionStore.Delete(c.Request.Context(), sessionID); err != nil {
			logger.Error("session delete failed", map[string]any{
				"error": err.Error(),
			})
		}
		logger.Info("logout", map[string]any{
			"ip": c.ClientIP(),
		})
	}

	h.cookies.Clear(c.Writer)

	c.Redirect(http.StatusFound, h.provider.LogoutURL(h.homeURL))
}

func (h *Handler) fail(c *gin.Context, status int, message string, err error) {
	logger.Error(message, map[string]any{
		"path":  c.Request.URL.Path,
		"error": err.Error(),
	})
	web.RenderError(c, status, message)
}

// callbackParam reads a parameter from the query (GET) or the form body
// (POST).
func callbackParam(c *gin.Context, key string) string {
	if v := c.Query(key); v != "" {
		return v
	}
	return c.PostForm(key)
}
