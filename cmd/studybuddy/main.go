// Package main implements the studybuddy command: an HTTP session API for
// the browser front end, an interactive terminal study session, database
// migrations and a backend health check.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/phrazzld/study-buddy/internal/config"
	"github.com/spf13/pflag"
)

const usage = `Usage: studybuddy <command> [flags]

Commands:
  serve     run the HTTP session API
  study     run an interactive study session in the terminal
  migrate   run database migrations (up, down, status, version, reset)
  health    check the flashcard backend

Run 'studybuddy <command> --help' for command flags.
`

// errUsage is returned when the command line cannot be parsed.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "studybuddy: %v\n", err)
		}
		os.Exit(1)
	}
}

// run dispatches to the named command.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve":
		return runServe(ctx, rest, stderr)
	case "study":
		return runStudy(ctx, rest, stdin, stdout, stderr)
	case "migrate":
		return runMigrate(ctx, rest, stderr)
	case "health":
		return runHealth(ctx, rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return errUsage
	}
}

// newFlagSet creates a flag set carrying the shared configuration flags.
func newFlagSet(name string, stderr io.Writer) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "path to a YAML config file")
	config.RegisterFlags(fs)
	return fs, configFile
}

// parseConfig parses args into fs and loads the configuration.
func parseConfig(fs *pflag.FlagSet, configFile *string, args []string) (*config.Config, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, errUsage
		}
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	cfg, err := config.Load(config.LoadOptions{ConfigFile: *configFile, Flags: fs})
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
