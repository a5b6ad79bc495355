package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/study-buddy/internal/api"
	"github.com/phrazzld/study-buddy/internal/events"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/platform/metrics"
	"github.com/phrazzld/study-buddy/internal/service/auth"
	"github.com/phrazzld/study-buddy/internal/session"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func runServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs, configFile := newFlagSet("serve", stderr)
	cfg, err := parseConfig(fs, configFile, args)
	if err != nil {
		return err
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup()

	router, registry, err := app.buildRouter()
	if err != nil {
		return err
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go registry.RunSweeper(sweepCtx, sweepInterval, cfg.Server.SessionIdle())

	listener, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(cfg.Server.Port)))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", cfg.Server.Port, err)
	}
	return app.startHTTPServer(ctx, listener, router)
}

// buildRouter wires the session registry, token service and metrics into the
// HTTP API.
func (app *application) buildRouter() (http.Handler, *session.Registry, error) {
	var registry *session.Registry
	m := metrics.New(func() int {
		if registry == nil {
			return 0
		}
		return registry.Len()
	})
	app.events.RegisterHandler(events.HandlerFunc(m.HandleEvent))

	registry, err := session.NewRegistry(app.newController, app.store, app.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session registry: %w", err)
	}

	tokens, err := auth.NewTokenService(app.config.Auth)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create token service: %w", err)
	}
	if app.config.Auth.JWTSecret == "" {
		app.logger.Warn("auth.jwt_secret is not set, session tokens will not survive a restart")
	}

	router, err := api.NewRouter(api.RouterDeps{
		Registry:       registry,
		Tokens:         tokens,
		Metrics:        m,
		Backend:        app.backend,
		AllowedOrigins: app.config.Server.AllowedOrigins,
		Logger:         app.logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create router: %w", err)
	}
	return router, registry, nil
}

// startHTTPServer serves on listener until ctx is cancelled or the server
// fails, then shuts down gracefully.
func (app *application) startHTTPServer(ctx context.Context, listener net.Listener, router http.Handler) error {
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "addr", listener.Addr().String())
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("server failed", "error", err)
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	app.logger.Info("server shutdown completed")
	return nil
}
