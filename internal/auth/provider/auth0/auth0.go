package auth0

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"session-gatekeeper/internal/auth"
	"session-gatekeeper/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "auth0"

var (
	ErrMissingIDToken = errors.New("auth0: token response has no id_token")
	ErrNonceMismatch  = errors.New("auth0: id_token nonce mismatch")
)

// Provider implements the authorization code flow against an Auth0
// tenant (or any issuer exposing Auth0's /v2/logout endpoint).
type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	baseURL     string
	clientID    string
}

// New initializes the provider using OIDC discovery.
// domain is either a bare host (tenant.eu.auth0.com) or a full URL.
func New(
	ctx context.Context,
	domain string,
	clientID string,
	clientSecret string,
	redirectURL string,
	scopes []string,
) (*Provider, error) {

	if domain == "" || clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("auth0 oauth config missing required fields")
	}

	baseURL := BaseURL(domain)

	// Auth0 issuers carry a trailing slash and go-oidc compares exactly.
	oidcProvider, err := oidc.NewProvider(ctx, baseURL+"/")
	if err != nil {
		return nil, fmt.Errorf("failed to init auth0 oidc provider: %w", err)
	}

	verifier := oidcProvider.Verifier(&oidc.Config{
		ClientID: clientID,
	})

	if len(scopes) == 0 {
		scopes = []string{oidc.ScopeOpenID, "profile", "email"}
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     oidcProvider.Endpoint(),
		Scopes:       scopes,
	}

	return &Provider{
		oauthConfig: oauthCfg,
		verifier:    verifier,
		baseURL:     baseURL,
		clientID:    clientID,
	}, nil
}

// BaseURL normalizes a configured domain into a scheme-qualified URL
// without a trailing slash.
func BaseURL(domain string) string {
	domain = strings.TrimSuffix(domain, "/")
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the authorization URL with PKCE and nonce parameters.
func (p *Provider) AuthCodeURL(state, codeChallenge, nonce string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.AccessTypeOnline,
		oidc.Nonce(nonce),
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

// LogoutURL builds the Auth0 logout URL.
func (p *Provider) LogoutURL(returnTo string) string {
	q := url.Values{
		"returnTo":  {returnTo},
		"client_id": {p.clientID},
	}
	return p.baseURL + "/v2/logout?" + q.Encode()
}

// ExchangeCode exchanges the authorization code and returns the token
// record with verified claims as userinfo.
// This method MUST NOT create users or sessions.
func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
	nonce string,
) (*auth.Token, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.VerifierOption(codeVerifier),
	)
	if err != nil {
		logger.Error("auth0 token exchange failed", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("auth0 token exchange failed: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ErrMissingIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		logger.Error("auth0 id_token verification failed", map[string]any{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("auth0 id_token verification failed: %w", err)
	}

	if idToken.Nonce != nonce {
		return nil, ErrNonceMismatch
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("auth0 id_token claims parse failed: %w", err)
	}

	scope, _ := token.Extra("scope").(string)

	out := &auth.Token{
		AccessToken:  token.AccessToken,
		IDToken:      rawIDToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		Scope:        scope,
		UserInfo:     claims,
	}
	if !token.Expiry.IsZero() {
		out.ExpiresAt = token.Expiry.Unix()
	}

	logger.Info("auth0 oidc verified", map[string]any{
		"issuer":          idToken.Issuer,
		"subject_present": idToken.Subject != "",
		"audience":        idToken.Audience,
		"expiry_unix":     idToken.Expiry.Unix(),
	})

	return out, nil
}
