package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
)

const (
	CookieName = "__Host-session"

	// browsers refuse __Host- cookies without Secure, so plain-http
	// development uses an unprefixed name
	insecureCookieName = "session"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true
	}
	if o.SameSite == 0 {
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Cookies issues and reads the signed session cookie. The cookie only
// carries the session id; the value is HMAC-signed with the app secret.
type Cookies struct {
	codec *securecookie.SecureCookie
	opts  CookieOptions
}

// NewCookies builds a cookie codec whose signed values stop decoding once
// they are older than maxAge. A zero maxAge disables the age check.
func NewCookies(secret string, maxAge time.Duration, opts CookieOptions) *Cookies {
	codec := securecookie.New([]byte(secret), nil)
	codec.MaxAge(int(maxAge.Seconds()))

	return &Cookies{
		codec: codec,
		opts:  opts.normalize(),
	}
}

// Name returns the cookie name for the configured security mode.
func (c *Cookies) Name() string {
	if c.opts.Secure {
		return CookieName
	}
	return insecureCookieName
}

// Secure reports whether cookies are issued with the Secure flag.
func (c *Cookies) Secure() bool {
	return c.opts.Secure
}

// Set issues the session cookie to the client.
func (c *Cookies) Set(
	w http.ResponseWriter,
	sessionID string,
	expiresAt time.Time,
) error {
	value, err := c.codec.Encode(c.Name(), sessionID)
	if err != nil {
		return fmt.Errorf("session: encode cookie: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     c.Name(),
		Value:    value,
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		Expires:  expiresAt,
		HttpOnly: c.opts.HttpOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
	return nil
}

// Read returns the session id carried by the request. Missing, tampered
// or expired cookies all read as absent.
func (c *Cookies) Read(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(c.Name())
	if err != nil || cookie.Value == "" {
		return "", false
	}

	var sessionID string
	if err := c.codec.Decode(c.Name(), cookie.Value, &sessionID); err != nil {
		return "", false
	}
	return sessionID, sessionID != ""
}

// Clear removes the session cookie from the client.
func (c *Cookies) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name(),
		Value:    "",
		Path:     c.opts.Path,
		Domain:   c.opts.Domain,
		MaxAge:   -1,
		HttpOnly: c.opts.HttpOnly,
		Secure:   c.opts.Secure,
		SameSite: c.opts.SameSite,
	})
}
