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

	"github.com/starford/jera/internal/api"
	"github.com/starford/jera/internal/autosave"
	"github.com/starford/jera/internal/mcpserver"
	"github.com/starford/jera/internal/noteservice"
	"github.com/starford/jera/internal/sse"
	"github.com/starford/jera/internal/storage"
)

// Session is a loaded note service and the resources behind it.
type Session struct {
	Service *noteservice.Service
	Logger  *slog.Logger
	persist storage.Provider
}

// Close releases the storage backend.
func (s *Session) Close() error {
	if c, ok := s.persist.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func build(opts []Option) (*application, error) {
	app := &application{logOut: os.Stdout, version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(app *application) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(app.logOut, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Open loads the configured note store. Extra service options are appended.
func Open(opts []Option, svcOpts ...noteservice.Option) (*Session, error) {
	app, err := build(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(app)
	cfg := app.config

	persist, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	store := noteservice.Load(persist, logger)
	logger.Debug("notes loaded",
		slog.String("driver", cfg.Storage.Driver),
		slog.String("path", cfg.Storage.Path),
		slog.Int("count", store.Len()))

	return &Session{
		Service: noteservice.NewService(store, persist, svcOpts...),
		Logger:  logger,
		persist: persist,
	}, nil
}

// Run serves the HTTP API with autosave until a signal arrives or ctx ends.
func Run(ctx context.Context, opts ...Option) error {
	app, err := build(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	broker := sse.NewBroker(cfg.Events.CategoryThrottle)
	defer broker.Close()

	sess, err := Open(opts, noteservice.WithChangeCallback(broker.PublishNoteChange))
	if err != nil {
		return err
	}
	defer sess.Close()
	logger := sess.Logger
	svc := sess.Service

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.Duration("autosave_interval", cfg.Autosave.Interval),
		slog.String("log_level", cfg.App.LogLevel.String()))

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		autosave.Run(gCtx, cfg.Autosave.Interval, svc.Save, logger)
		return nil
	})

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

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	err = g.Wait()
	if saveErr := svc.Save(context.Background()); saveErr != nil {
		logger.Error("final save failed", slog.String("error", saveErr.Error()))
	}
	if err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group once the server has been asked to stop.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdio. Logs go to stderr.
func RunMCP(_ context.Context, opts ...Option) error {
	opts = append(opts, WithLogOutput(os.Stderr))
	app, err := build(opts)
	if err != nil {
		return err
	}
	sess, err := Open(opts)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.Logger.Info("MCP server starting on stdio")
	return mcpserver.New(sess.Service, app.version).ServeStdio()
}
