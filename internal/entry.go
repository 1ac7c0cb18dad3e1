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
	"golang.org/x/sync/errgroup"

	"github.com/starford/depot/internal/api"
	"github.com/starford/depot/internal/catalog"
	"github.com/starford/depot/internal/probe"
	"github.com/starford/depot/internal/render"
	"github.com/starford/depot/internal/site"
	"github.com/starford/depot/internal/source"
	"github.com/starford/depot/internal/sse"
	"github.com/starford/depot/internal/view"
)

var errConfigRequired = errors.New("config is required")

// newLogger initializes the structured JSON logger.
func newLogger(cfg *Config) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// newLoader wires the resource client, prober and loader for baseURL.
func newLoader(cfg *Config, baseURL string, logger *slog.Logger) (*catalog.Loader, error) {
	src, err := source.New(source.Options{
		BaseURL:      baseURL,
		Manifest:     cfg.Catalog.Manifest,
		Rules:        cfg.Catalog.Rules,
		FetchTimeout: cfg.Catalog.FetchTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("init source: %w", err)
	}
	prober := probe.New(src.HTTPClient(), src, cfg.Catalog.ProbeTimeout, logger)
	return catalog.NewLoader(src, prober, logger), nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = newLogger(cfg)
	}
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("catalog_base_url", cfg.CatalogBaseURL()),
		slog.String("site_root", cfg.Site.Root),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Local site directory, if any.
	var siteFS *site.FS
	if cfg.Site.Root != "" {
		siteFS, err = site.NewFS(cfg.Site.Root)
		if err != nil {
			return fmt.Errorf("init site: %w", err)
		}
	}

	loader, err := newLoader(cfg, cfg.CatalogBaseURL(), logger)
	if err != nil {
		return err
	}

	html, err := render.NewHTML()
	if err != nil {
		return fmt.Errorf("init templates: %w", err)
	}

	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	views := view.NewRegistry(cfg.Views.TTL)
	h := api.NewHandler(loader, views, html, api.PageOptions{
		Title:    cfg.App.Title,
		Manifest: cfg.Catalog.Manifest,
		Watch:    cfg.Site.Watch,
	}, logger)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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

	r.Get("/", h.Page)
	r.Mount("/api", api.NewRouter(h, broker))
	if siteFS != nil {
		r.Handle(SitePrefix+"*", http.StripPrefix(SitePrefix[:len(SitePrefix)-1], siteFS))
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Publish catalog changes seen on disk.
	if siteFS != nil && cfg.Site.Watch {
		g.Go(func() error {
			resources := []string{cfg.Catalog.Manifest, cfg.Catalog.Rules}
			if err := site.Watch(gCtx, siteFS, resources, logger, broker.PublishChange); err != nil {
				logger.Warn("watcher unavailable", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		logger.Info("Shutting down server...")

		// Open event streams never finish on their own.
		broker.Close()

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
