package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/phrazzld/study-buddy/internal/platform/logger"
	"github.com/phrazzld/study-buddy/internal/platform/postgres"
	"github.com/phrazzld/study-buddy/internal/redact"
)

// errPostgresRequired is returned when migrations run against another driver.
var errPostgresRequired = errors.New("migrations require storage.driver=postgres")

func runMigrate(ctx context.Context, args []string, stderr io.Writer) error {
	fs, configFile := newFlagSet("migrate", stderr)
	cfg, err := parseConfig(fs, configFile, args)
	if err != nil {
		return err
	}

	command := "up"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}
	if cfg.Storage.Driver != "postgres" {
		return errPostgresRequired
	}

	log, err := logger.New(stderr, cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	log.Info("running migrations", "command", command, "dsn", redact.String(cfg.Storage.DSN))

	db, err := postgres.Open(ctx, cfg.Storage.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	return postgres.Migrate(ctx, db, command, log)
}
