package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"session-gatekeeper/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	stateCookieName = "__oauth_state"
	nonceCookieName = "__oauth_nonce"
	flowCookieTTL   = 5 * time.Minute
)

// issueFlowCookie stores a fresh random value in a short-lived cookie
// scoped to a single authorization round trip.
func (h *Handler) issueFlowCookie(c *gin.Context, name string) (string, error) {
	value, err := utils.RandomString(32)
	if err != nil {
		return "", err
	}
	h.setFlowCookie(c, name, value)
	return value, nil
}

func (h *Handler) setFlowCookie(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookies.Secure(),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(flowCookieTTL.Seconds()),
	})
}

func flowCookie(c *gin.Context, name string) string {
	cookie, err := c.Request.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) clearFlowCookies(c *gin.Context) {
	for _, name := range []string{stateCookieName, nonceCookieName, pkceCookieName} {
		http.SetCookie(c.Writer, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cookies.Secure(),
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func validateState(c *gin.Context) bool {
	stateParam := callbackParam(c, "state")
	if stateParam == "" {
		return false
	}

	expected := flowCookie(c, stateCookieName)
	if expected == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(stateParam)) == 1
}
