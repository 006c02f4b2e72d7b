// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/metrics"
	"github.com/starford/folio/internal/siteservice"
	"github.com/starford/folio/internal/sitemap"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/watcher"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{
		version: "dev",
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// openSite opens the content root and creates the site service for it.
func openSite(cfg *SitemapConfig, logger *slog.Logger) (*storage.FS, *siteservice.Service, error) {
	store, err := storage.NewFS(cfg.Root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%w: %s", apperr.ErrMissingRoot, cfg.Root)
		}
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}
	builder := sitemap.New(store, cfg.BuilderOptions(logger)...)
	svc := siteservice.NewService(store, builder, cfg.Ignore, cfg.FooterIgnore, logger)
	return store, svc, nil
}

// Build builds the sitemap once and writes it to the configured output
// file, or to stdout when none is set.
func Build(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(app.stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	_, svc, err := openSite(&cfg.Sitemap, logger)
	if err != nil {
		return err
	}
	snap, err := svc.Rebuild(ctx)
	if err != nil {
		return err
	}

	payload := append(slices.Clip(snap.Payload), '\n')
	if cfg.Sitemap.Output == "" {
		if _, err := app.stdout.Write(payload); err != nil {
			return fmt.Errorf("write sitemap: %w", err)
		}
		return nil
	}
	if err := storage.WriteFile(cfg.Sitemap.Output, payload); err != nil {
		return err
	}
	logger.Info("sitemap written", slog.String("output", cfg.Sitemap.Output))
	return nil
}

// Serve builds the sitemap, serves it over HTTP and rebuilds it whenever
// the content tree changes, until ctx is cancelled or a signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(app.stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("root", cfg.Sitemap.Root),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, svc, err := openSite(&cfg.Sitemap, logger)
	if err != nil {
		return err
	}
	m := metrics.New(app.version)
	svc.SetObserver(m)

	// A failed first build is not fatal: the watcher retries on the next change.
	if _, err := svc.Rebuild(ctx); err != nil {
		logger.Error("initial build failed", slog.String("error", err.Error()))
	}

	broker := sse.NewBroker()

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if svc.Current() == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"building"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Handle("/metrics", m.Handler())

	r.Mount("/", api.NewRouter(svc, broker))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	// Footer changes trigger rebuilds too, so only the main tree's ignore
	// list minus the footer directory applies to the watcher.
	watchIgnore := slices.DeleteFunc(slices.Clone(cfg.Sitemap.Ignore), func(name string) bool {
		return name == sitemap.FooterDir
	})
	g.Go(func() error {
		return watcher.Watch(gCtx, watcher.Config{
			Root:     store.Root(),
			Ignore:   watchIgnore,
			Debounce: cfg.Watch.Debounce,
			Logger:   logger,
			OnChange: func(ctx context.Context, changed []string) {
				snap, err := svc.Rebuild(ctx)
				if err != nil {
					logger.Error("rebuild failed",
						slog.Any("changed", changed),
						slog.String("error", err.Error()))
					broker.PublishBuild("", err)
					return
				}
				broker.PublishBuild(snap.ETag, nil)
			},
		})
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		// Streaming clients hold their connections open until the broker closes.
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

// ServeMCP serves the sitemap over MCP on stdin/stdout.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(app.stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	_, svc, err := openSite(&cfg.Sitemap, logger)
	if err != nil {
		return err
	}
	if _, err := svc.Rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting", slog.String("root", cfg.Sitemap.Root))
	return mcpserver.New(svc, app.version).ServeStdio()
}
