package auth

// Token is the record stored on an authenticated session. It mirrors the
// token response of the provider plus the verified ID token claims.
// Handlers only check for its presence and read display fields.
type Token struct {
	AccessToken  string         `json:"access_token"`
	IDToken      string         `json:"id_token,omitempty"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	TokenType    string         `json:"token_type"`
	Scope        string         `json:"scope,omitempty"`
	ExpiresAt    int64          `json:"expires_at,omitempty"`
	UserInfo     map[string]any `json:"userinfo"`
}

// Present reports whether t holds an authenticated user.
func (t *Token) Present() bool {
	return t != nil && t.AccessToken != "" && len(t.UserInfo) > 0
}

// Claim returns a string claim from UserInfo, or "" when absent.
func (t *Token) Claim(name string) string {
	if t == nil || t.UserInfo == nil {
		return ""
	}
	s, _ := t.UserInfo[name].(string)
	return s
}

// Nickname returns userinfo.nickname, blank if any level is missing.
func (t *Token) Nickname() string {
	return t.Claim("nickname")
}
