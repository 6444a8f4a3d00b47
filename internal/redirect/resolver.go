// Package redirect decides where the client is sent after an authentication
// event. It is the single source of truth for base-URL and destination
// resolution, and it is an open-redirect defense: no caller input can send a
// user to an origin outside the application.
package redirect

import (
	"net/url"
	"strings"
)

// Resolver computes safe post-authentication destinations against a fixed
// base URL.
type Resolver struct {
	base        *url.URL
	defaultPath string
}

// New creates a resolver. baseURL must be absolute (e.g.
// "https://app.example"); defaultPath is the authenticated landing page
// (e.g. "/dashboard").
func New(baseURL, defaultPath string) (*Resolver, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, ErrBaseURLNotAbsolute
	}
	if defaultPath == "" {
		defaultPath = "/"
	}
	return &Resolver{base: base, defaultPath: defaultPath}, nil
}

// Default returns the absolute URL of the default authenticated landing page.
func (r *Resolver) Default() string {
	return r.base.ResolveReference(&url.URL{Path: r.defaultPath}).String()
}

// Resolve maps a requested destination, which is attacker-controllable, to a
// safe absolute URL:
//
//   - a path-relative reference ("/dashboard") resolves against the base URL
//   - an absolute URL on exactly the base origin passes through unchanged
//   - anything else, including unparsable input, falls back silently to the
//     default landing page
//
// Provider callback URLs are never user-intended destinations, so they also
// map to the default landing page.
func (r *Resolver) Resolve(requested string) string {
	if requested == "" {
		return r.Default()
	}

	// Callback URLs from the provider's own redirect step are not yet
	// validated against a user-intended destination.
	if strings.Contains(requested, "/callback") {
		return r.Default()
	}

	u, err := url.Parse(requested)
	if err != nil {
		return r.Default()
	}

	// Path-relative reference. Reject scheme-relative "//host" forms, which
	// url.Parse treats as host-only but browsers follow cross-origin.
	if !u.IsAbs() {
		if u.Host != "" || strings.HasPrefix(requested, "//") {
			return r.Default()
		}
		return r.base.ResolveReference(u).String()
	}

	if sameOrigin(u, r.base) {
		return requested
	}

	return r.Default()
}

func sameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) && strings.EqualFold(a.Host, b.Host)
}
