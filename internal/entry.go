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
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/notesift/internal/api"
	"github.com/starford/notesift/internal/ingest"
)

// Run starts the HTTP server, the store watcher and the rebuild scheduler.
func Run(ctx context.Context, opts ...Option) error {
	rt, err := setup(opts, os.Stdout)
	if err != nil {
		return err
	}
	defer rt.Close()

	cfg := rt.app.config
	logger := rt.logger
	svc := rt.svc

	// Bring the index in line with whatever snapshot is on disk.
	if _, err := svc.Reindex(ctx); err != nil {
		logger.Warn("initial reindex failed", slog.String("error", err.Error()))
	}

	r := newHTTPRouter(rt)
	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(ctx)

	refresh := func(ctx context.Context) {
		if _, err := svc.Refresh(ctx); err != nil && ctx.Err() == nil {
			logger.Error("ingest failed", slog.String("error", err.Error()))
		}
	}

	// Rebuild when the snapshot is missing or a day old.
	g.Go(func() error {
		if svc.Due(time.Now()) {
			refresh(gCtx)
		}
		ticker := time.NewTicker(cfg.Ingest.CheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gCtx.Done():
				return nil
			case now := <-ticker.C:
				if svc.Due(now) {
					refresh(gCtx)
				}
			}
		}
	})

	// Start file watcher on the store folder.
	g.Go(func() error {
		folder := filepath.Join(rt.store.Root(), filepath.FromSlash(cfg.Store.FolderID))
		if err := ingest.Watch(gCtx, folder, logger, refresh); err != nil {
			logger.Warn("watcher disabled", slog.String("error", err.Error()))
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

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		cancel()

		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
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

func newHTTPRouter(rt *runtime) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	// Ready once the oracle answers heartbeats.
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		w.Header().Set("Content-Type", "application/json")
		if err := rt.ollama.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"oracle unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", rt.metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(rt.svc, rt.broker, rt.metrics))
	return r
}
