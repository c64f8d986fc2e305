// Package preview renders the example views in the browser and drives the
// master-detail selection over SSE.
package preview

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/viewgen/internal/scaffold"
)

// SetupRoutes configures routes for the preview feature.
func SetupRoutes(
	router chi.Router,
	store *scaffold.Store,
	sessionStore sessions.Store,
	live bool,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(store, sessionStore, live, logger)

	router.Get("/", handlers.IndexPage)
	router.Get("/views/{id}", handlers.ViewPage)
	router.Post("/views/{id}/select/{row}", handlers.SelectRow)

	return nil
}
