package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/phrazzld/study-buddy/internal/cli"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/store"
)

// defaultStudyDB keeps terminal sessions resumable when no store is configured.
const defaultStudyDB = "studybuddy.db"

func runStudy(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs, configFile := newFlagSet("study", stderr)
	sessionID := fs.String("session", "", "resume the session with this id")
	notesFile := fs.String("notes", "", "generate cards from this notes file on start")
	cfg, err := parseConfig(fs, configFile, args)
	if err != nil {
		return err
	}

	// The terminal owns stdout, so logs go to stderr.
	log, err := logger.New(stderr, cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	if cfg.Storage.Driver == "memory" {
		cfg.Storage.Driver = "sqlite"
		cfg.Storage.DSN = defaultStudyDB
	}

	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.cleanup()

	id := *sessionID
	if id == "" {
		id = uuid.NewString()
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id %q: must be a UUID", id)
	}

	ctrl, err := app.newController(id, store.Scope(app.store, id))
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if err := ctrl.RestoreEntitlement(ctx); err != nil {
		log.Warn("could not restore payment entitlement", "error", err)
	}

	repl, err := cli.New(ctrl, app.backend, stdin, stdout, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Session %s (resume with --session %s)\n", id, id)
	if ctrl.View().ExportUnlocked {
		fmt.Fprintln(stdout, "Downloads are unlocked for this session.")
	}
	if *notesFile != "" {
		if err := repl.Execute(ctx, "generate "+*notesFile); err != nil {
			return err
		}
	}
	if err := repl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
