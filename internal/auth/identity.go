package auth

import "errors"

// Identity represents a normalized external authentication identity
// taken from the verified claims of a Token. It contains facts only.
type Identity struct {
	Provider       string // e.g. "auth0"
	ProviderUserID string // provider-scoped unique user identifier (sub)
	Email          string // may be empty when the email scope is not granted
	EmailVerified  bool
	Nickname       string
}

var ErrMissingSubject = errors.New("auth: token has no sub claim")

// IdentityFromToken extracts the identity facts carried by t.
func IdentityFromToken(provider string, t *Token) (*Identity, error) {
	sub := t.Claim("sub")
	if sub == "" {
		return nil, ErrMissingSubject
	}

	verified, _ := t.UserInfo["email_verified"].(bool)

	return &Identity{
		Provider:       provider,
		ProviderUserID: sub,
		Email:          t.Claim("email"),
		EmailVerified:  verified,
		Nickname:       t.Nickname(),
	}, nil
}
