package handler

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const pkceCookieName = "__oauth_pkce"

func (h *Handler) generatePKCE(c *gin.Context) (verifier string, challenge string) {
	verifier = oauth2.GenerateVerifier()
	h.setFlowCookie(c, pkceCookieName, verifier)
	return verifier, oauth2.S256ChallengeFromVerifier(verifier)
}

func getPKCEVerifier(c *gin.Context) string {
	return flowCookie(c, pkceCookieName)
}
