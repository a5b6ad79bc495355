package main

import (
	"context"
	"fmt"
	"io"

	"github.com/phrazzld/study-buddy/internal/platform/backend"
	"github.com/phrazzld/study-buddy/internal/platform/logger"
)

func runHealth(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, configFile := newFlagSet("health", stderr)
	cfg, err := parseConfig(fs, configFile, args)
	if err != nil {
		return err
	}

	log, err := logger.New(stderr, cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout(), log)
	if err != nil {
		return err
	}

	status, err := client.Health(ctx)
	if status != nil {
		fmt.Fprintf(stdout, "status: %s\ndatabase: %s\n", status.Status, status.Database)
		if status.Error != "" {
			fmt.Fprintf(stdout, "error: %s\n", status.Error)
		}
	}
	if err != nil {
		return fmt.Errorf("backend is unhealthy: %w", err)
	}
	return nil
}
