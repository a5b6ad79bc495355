package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/study-buddy/internal/config"
	"github.com/phrazzld/study-buddy/internal/events"
	"github.com/phrazzld/study-buddy/internal/platform/backend"
	"github.com/phrazzld/study-buddy/internal/platform/gemini"
	"github.com/phrazzld/study-buddy/internal/platform/postgres"
	"github.com/phrazzld/study-buddy/internal/platform/sqlite"
	"github.com/phrazzld/study-buddy/internal/redact"
	"github.com/phrazzld/study-buddy/internal/session"
	"github.com/phrazzld/study-buddy/internal/store"
)

// application holds the components shared by every command.
type application struct {
	config    *config.Config
	logger    *slog.Logger
	backend   *backend.Client
	generator session.Generator
	store     store.SessionStore
	events    *events.InMemoryEventEmitter

	closers []func() error
}

// newApplication builds the backend client, generator, session store and
// event emitter from cfg.
func newApplication(ctx context.Context, cfg *config.Config, log *slog.Logger) (*application, error) {
	log.Info("configuration loaded",
		"backend_url", redact.String(cfg.Backend.BaseURL),
		"provider", cfg.Generation.Provider,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Server.LogLevel)

	app := &application{
		config: cfg,
		logger: log,
		events: events.NewInMemoryEventEmitter(log),
	}

	app.events.Subscribe(events.HandlerFunc(app.auditPayment),
		events.TypePaymentCompleted, events.TypePaymentFailed, events.TypeEntitlementExpired)

	var err error
	app.backend, err = backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	app.generator, err = app.buildGenerator(ctx)
	if err != nil {
		return nil, err
	}

	if err := app.openStore(ctx); err != nil {
		app.cleanup()
		return nil, err
	}
	return app, nil
}

func (app *application) buildGenerator(ctx context.Context) (session.Generator, error) {
	switch app.config.Generation.Provider {
	case "gemini":
		gen, err := gemini.NewGenerator(ctx, app.config.LLM, app.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini generator: %w", err)
		}
		app.logger.Info("using gemini generator", "model", app.config.LLM.ModelName)
		return gen, nil
	default:
		return app.backend, nil
	}
}

func (app *application) openStore(ctx context.Context) error {
	cfg := app.config.Storage
	switch cfg.Driver {
	case "sqlite":
		st, err := sqlite.Open(cfg.DSN, app.logger)
		if err != nil {
			return fmt.Errorf("failed to open sqlite store: %w", err)
		}
		app.store = st
		app.closers = append(app.closers, st.Close)
	case "postgres":
		db, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return err
		}
		app.closers = append(app.closers, db.Close)
		if err := postgres.Migrate(ctx, db, "up", app.logger); err != nil {
			return err
		}
		app.store = postgres.NewPostgresSessionStore(db, app.logger)
	default:
		app.store = store.NewMemoryStore()
	}
	app.logger.Debug("session store ready", "driver", cfg.Driver)
	return nil
}

// newController builds a controller for one session.
func (app *application) newController(sessionID string, storage session.Storage) (*session.Controller, error) {
	return session.NewController(session.Deps{
		Generator: app.generator,
		Library:   app.backend,
		Payments:  app.backend,
		Storage:   storage,
		Events:    app.events,
		Logger:    app.logger,
		SessionID: sessionID,
	}, app.sessionOptions())
}

func (app *application) sessionOptions() session.Options {
	return session.Options{
		MinNotesLength:    app.config.Generation.MinNotesLength,
		ChargeAmount:      app.config.Payment.Amount,
		EntitlementWindow: app.config.Payment.EntitlementWindow(),
		DateLayout:        app.config.Export.DateLayout,
	}
}

// auditPayment records payment and entitlement changes.
func (app *application) auditPayment(_ context.Context, event *events.SessionEvent) error {
	app.logger.Info("payment event",
		"event_type", event.Type,
		"event_id", event.ID,
		"session_id", event.SessionID)
	return nil
}

// cleanup closes every opened resource, in reverse order.
func (app *application) cleanup() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error("cleanup failed", "error", err)
		}
	}
	app.closers = nil
}
