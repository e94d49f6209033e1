package gateway

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter constructs the chi mux with all routes wired.
func (g *Gateway) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Public, no auth required.
	r.Get("/health", g.handleHealth())
	r.Handle("/metrics", g.metrics.Handler())

	// Chat and session API. Auth is optional: the gateway binds to
	// loopback by default, so unauthenticated local use stays simple.
	r.Route("/api", func(r chi.Router) {
		if g.config.Auth.IsConfigured() {
			r.Use(authMiddleware(g.config.Auth))
		}
		r.Post("/messages", g.handleSendMessage())
		r.Get("/sessions", g.handleListSessions())
		r.Get("/sessions/{name}", g.handleGetSession())
		r.Patch("/sessions/{name}", g.handleRenameSession())
		r.Post("/sessions/{name}/clear", g.handleClearSession())
		r.Delete("/sessions/{name}", g.handleDeleteSession())
	})

	return r
}
