// Package ui provides the local preview server for the example views.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/viewgen/internal/scaffold"
	"github.com/leapstack-labs/viewgen/internal/ui/notifier"
	"github.com/leapstack-labs/viewgen/internal/ui/router"
)

// debounceDelay coalesces bursts of file events (editors often write twice).
const debounceDelay = 100 * time.Millisecond

// Server is the preview server.
type Server struct {
	store           *scaffold.Store
	sessionStore    *sessions.CookieStore
	port            int
	watch           bool
	shutdownTimeout time.Duration
	logger          *slog.Logger
	notifier        *notifier.Notifier

	mu   sync.Mutex
	addr net.Addr
}

// Config holds configuration for the preview server.
type Config struct {
	Store           *scaffold.Store
	Port            int
	Watch           bool
	SessionSecret   string
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// NewServer creates a new preview server instance.
func NewServer(cfg Config) *Server {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.MaxAge(86400) // 1 day
	sessionStore.Options.Path = "/"
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.SameSite = http.SameSiteLaxMode

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Server{
		store:           cfg.Store,
		sessionStore:    sessionStore,
		port:            cfg.Port,
		watch:           cfg.Watch,
		shutdownTimeout: timeout,
		logger:          logger,
		notifier:        notifier.New(),
	}
}

// Handler builds the HTTP handler with all middleware and routes.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.Logger,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	if err := router.SetupRoutes(r, s.store, s.sessionStore, s.notifier, s.watch, s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve listens on the configured port and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", fmt.Sprintf("localhost:%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until the context is cancelled, then shuts
// down gracefully. It takes ownership of ln.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.mu.Unlock()
	s.logger.Info("starting preview server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start file watcher if enabled
	if s.watch {
		eg.Go(func() error {
			return s.watchFiles(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down preview server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Addr returns the address the server is listening on, or nil before it starts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Notifier returns the server's notifier for SSE updates.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// watchFiles reloads the store and notifies pages when a view file in the
// templates directory changes.
func (s *Server) watchFiles(ctx context.Context) error {
	dir := s.store.Overlay()
	if dir == "" {
		s.logger.Warn("watch enabled without a templates directory; nothing to watch")
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		s.logger.Error("failed to watch templates directory", "dir", dir, "error", err)
		// Don't fail - keep serving without reloads
		<-ctx.Done()
		return nil
	}

	// Reloads run on this goroutine so none can outlive Serve.
	var (
		debounce *time.Timer
		fire     <-chan time.Time
		changed  string
	)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Ext(event.Name) != ".tsx" {
				continue
			}

			changed = event.Name
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C

		case <-fire:
			fire = nil
			s.reloadTemplates(changed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}

func (s *Server) reloadTemplates(changed string) {
	s.logger.Debug("template changed, reloading", "file", changed)
	if err := s.store.Reload(); err != nil {
		s.logger.Error("reload failed", "error", err)
		return
	}
	s.notifier.Broadcast()
}
