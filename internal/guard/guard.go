// Package guard intercepts every inbound request before any handler runs and
// decides public vs. protected access from the session token alone. Token
// verification is a pure local computation, so the guard never touches the
// store.
package guard

import (
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"venturevet/internal/logger"
	"venturevet/internal/redirect"
	"venturevet/internal/session"
)

// class is the access classification of a request path.
type class int

const (
	// classExempt bypasses the guard entirely: static assets, the auth API
	// surface itself, provider callbacks, health checks.
	classExempt class = iota
	// classOpen is reachable with or without a session; claims are attached
	// when present.
	classOpen
	// classPublicOnly is for signed-out users; authenticated requests are
	// redirected to the landing page.
	classPublicOnly
	// classProtected requires a valid session.
	classProtected
)

// TokenVerifier verifies a raw session token. Satisfied by *session.Issuer.
type TokenVerifier interface {
	Verify(token string) (*session.Claims, error)
}

// TokenSource extracts the raw token from a request. Satisfied by
// *session.CookieTransport.
type TokenSource interface {
	Token(r *http.Request) (string, error)
}

// Guard is the route-guarding middleware.
type Guard struct {
	verifier  TokenVerifier
	source    TokenSource
	resolver  *redirect.Resolver
	loginPath string

	exemptPrefixes  []string
	openPaths       map[string]struct{}
	publicOnlyPaths map[string]struct{}

	logger *slog.Logger
}

// Option configures a Guard during construction.
type Option func(*Guard)

// WithLogger sets a custom logger for the guard.
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = l
	}
}

// WithExemptPrefixes replaces the default exempt path prefixes.
func WithExemptPrefixes(prefixes ...string) Option {
	return func(g *Guard) {
		g.exemptPrefixes = prefixes
	}
}

// WithPublicOnlyPaths replaces the default public-only paths.
func WithPublicOnlyPaths(paths ...string) Option {
	return func(g *Guard) {
		g.publicOnlyPaths = toSet(paths)
	}
}

// WithOpenPaths replaces the default open paths.
func WithOpenPaths(paths ...string) Option {
	return func(g *Guard) {
		g.openPaths = toSet(paths)
	}
}

// New creates a route guard. Defaults match the application's route map:
// the auth API, static assets and health checks are exempt; "/" is open;
// "/login" and "/signup" are public-only; everything else is protected.
func New(verifier TokenVerifier, source TokenSource, resolver *redirect.Resolver, opts ...Option) *Guard {
	g := &Guard{
		verifier:        verifier,
		source:          source,
		resolver:        resolver,
		loginPath:       "/login",
		exemptPrefixes:  []string{"/api/auth/", "/static/", "/healthz", "/favicon.ico"},
		openPaths:       toSet([]string{"/"}),
		publicOnlyPaths: toSet([]string{"/login", "/signup"}),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Middleware evaluates the guard state machine once per request,
// synchronously, before the next handler.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Exemption is decided by pure string matching so the auth surface
		// stays reachable no matter what state verification is in.
		if g.classify(path) == classExempt {
			next.ServeHTTP(w, r)
			return
		}

		claims, authenticated := g.authenticate(r)

		switch g.classify(path) {
		case classOpen:
			if authenticated {
				next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
				return
			}
			next.ServeHTTP(w, r)

		case classPublicOnly:
			if authenticated {
				// Signed-in users are not shown login/signup again.
				http.Redirect(w, r, g.resolver.Default(), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)

		case classProtected:
			if !authenticated {
				g.deny(w, r, path)
				return
			}
			next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
		}
	})
}

// authenticate verifies the session token on the request. Every failure mode
// (missing, malformed, expired, bad signature) is treated as unauthenticated;
// there is no ambiguous outcome that grants access.
func (g *Guard) authenticate(r *http.Request) (*session.Claims, bool) {
	token, err := g.source.Token(r)
	if err != nil {
		return nil, false
	}
	claims, err := g.verifier.Verify(token)
	if err != nil {
		g.logger.Debug("session token rejected",
			logger.Path(r.URL.Path),
			logger.Error(err),
			logger.Component("guard"),
		)
		return nil, false
	}
	return claims, true
}

// deny turns away an unauthenticated request from a protected path. API
// routes get a 401; browser routes are redirected to the login page with the
// originally requested path as the callback so the redirect resolver can
// return the user there after authenticating.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request, path string) {
	if strings.HasPrefix(path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"authentication required"}`))
		return
	}

	v := url.Values{}
	v.Set("callbackUrl", path)
	http.Redirect(w, r, g.loginPath+"?"+v.Encode(), http.StatusFound)
}

func (g *Guard) classify(path string) class {
	for _, prefix := range g.exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return classExempt
		}
	}
	if _, ok := g.openPaths[path]; ok {
		return classOpen
	}
	if _, ok := g.publicOnlyPaths[path]; ok {
		return classPublicOnly
	}
	return classProtected
}

func toSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}
