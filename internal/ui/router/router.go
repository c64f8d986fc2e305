// Package router sets up HTTP routes for the preview server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/viewgen/internal/scaffold"
	previewFeature "github.com/leapstack-labs/viewgen/internal/ui/features/preview"
	"github.com/leapstack-labs/viewgen/internal/ui/notifier"
	"github.com/leapstack-labs/viewgen/internal/ui/resources"
)

// SetupRoutes configures all routes for the preview server. With live set,
// pages reload whenever notify broadcasts.
func SetupRoutes(
	router chi.Router,
	store *scaffold.Store,
	sessionStore sessions.Store,
	notify *notifier.Notifier,
	live bool,
	logger *slog.Logger,
) error {
	if live {
		setupReload(router, notify)
	}

	// Static assets
	router.Handle("/static/*", resources.Handler())

	// Feature routes
	if err := previewFeature.SetupRoutes(router, store, sessionStore, live, logger); err != nil {
		return err
	}

	return nil
}

func setupReload(router chi.Router, notify *notifier.Notifier) {
	// Long-lived SSE stream: one reload script per broadcast.
	router.Get("/reload", func(w http.ResponseWriter, r *http.Request) {
		updates, cancel := notify.Subscribe()
		defer cancel()

		sse := datastar.NewSSE(w, r)
		for {
			select {
			case <-r.Context().Done():
				return
			case <-updates:
				if err := sse.ExecuteScript("window.location.reload()"); err != nil {
					return
				}
			}
		}
	})

	// Lets external tooling trigger a reload.
	router.Post("/hotreload", func(w http.ResponseWriter, _ *http.Request) {
		notify.Broadcast()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
}
