// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/filebridge/internal/api"
	"github.com/starford/filebridge/internal/bridge"
	"github.com/starford/filebridge/internal/command"
	"github.com/starford/filebridge/internal/mcpserver"
	"github.com/starford/filebridge/internal/storage"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	app.level = new(slog.LevelVar)
	app.level.Set(app.config.App.LogLevel)
	return app, nil
}

// newLogger builds the structured JSON logger. out is used unless
// WithLogOutput overrides it.
func (a *application) newLogger(out io.Writer) *slog.Logger {
	if a.logOutput != nil {
		out = a.logOutput
	}
	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: a.level,
	}))
}

// newRegistry wires storage and the bridge into a command registry.
func (a *application) newRegistry(logger *slog.Logger) (*command.Registry, error) {
	store, err := storage.NewLocal(a.config.Files.Root)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	reg := command.NewRegistry(logger)
	if err := bridge.Register(reg, bridge.New(store)); err != nil {
		return nil, fmt.Errorf("register %s: %w", bridge.CommandReadFileBase64, err)
	}
	return reg, nil
}

// newHTTPHandler mounts the command API under /api next to the
// unauthenticated health endpoints.
func (a *application) newHTTPHandler(reg *command.Registry) http.Handler {
	cfg := a.config
	apiRouter := api.NewRouter(reg, cfg.Auth.AuthEnabled(), cfg.Auth.Token)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
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

	r.Mount("/api", apiRouter)
	return r
}

// Run starts the HTTP command server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := app.newLogger(os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("files_root", cfg.Files.Root),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	reg, err := app.newRegistry(logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           app.newHTTPHandler(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	if app.configPath != "" {
		if _, statErr := os.Stat(app.configPath); statErr == nil {
			g.Go(func() error {
				if err := WatchConfig(gCtx, app.configPath, app.level, logger); err != nil {
					logger.Warn("config watcher disabled", slog.String("error", err.Error()))
				}
				return nil
			})
		}
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the remaining goroutines (the
// config watcher) stop once the HTTP server is down.
var errShutdown = errors.New("shutdown")

// RunMCP serves the registered commands as MCP tools on stdin/stdout. Logs
// go to stderr so stdout carries protocol messages only.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	logger := app.newLogger(os.Stderr)
	slog.SetDefault(logger)

	reg, err := app.newRegistry(logger)
	if err != nil {
		return err
	}

	logger.Info("Starting MCP stdio server",
		slog.String("version", app.version),
		slog.String("files_root", app.config.Files.Root))

	if err := mcpserver.New(reg, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}

// ReadFile runs the bridge once for path, honouring the configured file
// root. The returned error carries the message meant for the caller.
func ReadFile(path string, opts ...Option) (string, error) {
	app, err := newApplication(opts)
	if err != nil {
		return "", err
	}
	store, err := storage.NewLocal(app.config.Files.Root)
	if err != nil {
		return "", fmt.Errorf("init storage: %w", err)
	}
	return bridge.New(store).ReadFileBase64(path)
}
