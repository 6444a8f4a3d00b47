package session

import (
	"net/http"
	"time"
)

// CookieTransport reads and writes the session token as an HTTP-only cookie.
type CookieTransport struct {
	name   string
	secure bool
}

// NewCookieTransport creates a cookie transport. secure should be true
// everywhere except plain-HTTP local development.
func NewCookieTransport(name string, secure bool) *CookieTransport {
	return &CookieTransport{name: name, secure: secure}
}

// Token extracts the session token from the request cookie.
func (t *CookieTransport) Token(r *http.Request) (string, error) {
	cookie, err := r.Cookie(t.name)
	if err != nil || cookie.Value == "" {
		return "", ErrNoSession
	}
	return cookie.Value, nil
}

// Set writes the session token cookie. SameSite=Lax keeps the cookie off
// cross-site POSTs while still sending it on the OAuth provider's redirect
// back to us.
func (t *CookieTransport) Set(w http.ResponseWriter, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie.
func (t *CookieTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
