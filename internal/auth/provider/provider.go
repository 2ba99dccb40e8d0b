package provider

import (
	"context"

	"session-gatekeeper/internal/auth"
)

// OAuthProvider defines the contract of the external authorization
// service. Implementations return token facts only and must not touch
// sessions or users.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "auth0").
	Name() string

	// AuthCodeURL returns the authorization URL the browser is sent to.
	// State, PKCE challenge and nonce are generated by the caller.
	AuthCodeURL(state, codeChallenge, nonce string) string

	// ExchangeCode exchanges the authorization code, verifies the ID
	// token against nonce and returns the token record.
	ExchangeCode(
		ctx context.Context,
		code string,
		codeVerifier string,
		nonce string,
	) (*auth.Token, error)

	// LogoutURL returns the provider logout URL that sends the browser
	// back to returnTo afterwards.
	LogoutURL(returnTo string) string
}
