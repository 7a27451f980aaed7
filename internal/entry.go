// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/tilog/internal/api"
	"github.com/starford/tilog/internal/index"
	"github.com/starford/tilog/internal/sse"
)

// Run starts the development server: JSON API, live reload events, a watcher
// on the notes directory and Prometheus metrics.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_path", cfg.Notes.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("cache_enabled", cfg.Cache.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure notes directory exists.
	if err := os.MkdirAll(cfg.Notes.Path, 0o755); err != nil {
		return fmt.Errorf("create notes dir: %w", err)
	}

	p, err := newPipeline(cfg, logger, true)
	if err != nil {
		return err
	}
	defer p.close()
	svc := p.svc

	// Run initial sync.
	if stats, err := svc.SyncIndex(ctx); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	} else {
		logger.Info("initial sync complete",
			slog.Int("indexed", stats.Indexed),
			slog.Int("unchanged", stats.Unchanged),
			slog.Int("removed", stats.Removed))
	}

	broker := sse.NewBroker(sse.DefaultReloadThrottle)
	defer broker.Close()

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(sigCtx)

	// Watch the notes directory; each batch drops the cache, resyncs the
	// index and tells connected browsers.
	g.Go(func() error {
		err := index.Watch(gCtx, cfg.Notes.Path, index.DefaultDebounce, logger, func(changes []index.Change) {
			if err := svc.InvalidateCache(); err != nil {
				logger.Warn("watcher: invalidate cache failed", slog.String("error", err.Error()))
			}
			if _, err := svc.SyncIndex(gCtx); err != nil {
				logger.Warn("watcher: sync failed", slog.String("error", err.Error()))
			}
			for _, c := range changes {
				broker.PublishNoteChange(c.Kind, c.Filename)
			}
		})
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shut down on signal or when another goroutine fails.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
