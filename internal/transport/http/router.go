// Package http wires the application's HTTP surface: routing, JSON
// responses, and the handlers for authentication and startup ideas.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"venturevet/internal/guard"
)

// RouterDeps bundles everything NewRouter needs.
type RouterDeps struct {
	Guard *guard.Guard
	Auth  *AuthHandler
	Ideas *IdeaHandler
}

// NewRouter assembles the full route map. The route guard wraps everything;
// it decides per request whether the path is exempt, public or protected.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(deps.Guard.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", deps.Auth.Register)
		r.Post("/login", deps.Auth.Login)
		r.Post("/logout", deps.Auth.Logout)
		r.Get("/me", deps.Auth.Me)
		r.Get("/google", deps.Auth.GoogleStart)
		r.Get("/google/callback", deps.Auth.GoogleCallback)
	})

	r.Route("/api/startup-ideas", func(r chi.Router) {
		r.Post("/", deps.Ideas.Create)
		r.Get("/", deps.Ideas.List)
		r.Get("/{id}", deps.Ideas.Get)
		r.Delete("/{id}", deps.Ideas.Delete)
	})

	return r
}
