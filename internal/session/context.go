package session

import "context"

type contextKey struct{ name string }

var claimsContextKey = &contextKey{name: "session_claims"}

// WithClaims stores verified session claims on the context.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext returns the verified session claims, if the request
// passed authentication.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*Claims)
	return claims, ok
}
