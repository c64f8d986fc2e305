// Package features provides shared test utilities for UI feature tests.
package features

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/leapstack-labs/viewgen/internal/testutil"
	"github.com/leapstack-labs/viewgen/internal/ui/notifier"
)

// TestFixture holds all dependencies needed for UI handler tests.
type TestFixture struct {
	Store        *scaffold.Store
	Notifier     *notifier.Notifier
	SessionStore *sessions.CookieStore

	// OverlayDir is a templates directory layered over the embedded
	// templates. Files written here are picked up by Store.Reload.
	OverlayDir string
}

// SetupTestFixture creates a store with an empty overlay directory, a
// notifier and a session store.
func SetupTestFixture(t *testing.T) *TestFixture {
	t.Helper()

	overlay := t.TempDir()
	store, err := scaffold.NewStore(
		scaffold.WithOverlay(overlay),
		scaffold.WithLogger(testutil.NewTestLogger(t)),
	)
	require.NoError(t, err)

	return &TestFixture{
		Store:        store,
		Notifier:     notifier.New(),
		SessionStore: NewTestSessionStore(),
		OverlayDir:   overlay,
	}
}

// WriteOverlay writes content as the overlay file name and reloads the store.
func (f *TestFixture) WriteOverlay(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.OverlayDir, name), []byte(content), 0600))
	require.NoError(t, f.Store.Reload())
}

// RequestWithPathParams wraps a request with chi URL params given as
// key, value pairs.
func RequestWithPathParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// NewTestSessionStore creates a session store for testing.
func NewTestSessionStore() *sessions.CookieStore {
	return sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!"))
}
