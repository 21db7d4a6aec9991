// Command pupilcheck validates LehrerOffice exports from the command line
// and moves correction rules between the rule store and JSON files.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/pupilbridge/internal/config"
	"github.com/JonMunkholm/pupilbridge/internal/core"
	"github.com/JonMunkholm/pupilbridge/internal/logging"
	"github.com/JonMunkholm/pupilbridge/internal/memory"
	"github.com/JonMunkholm/pupilbridge/internal/store"
)

// Exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitFindings = 2
)

// errFindings signals that validation completed but left open errors.
var errFindings = errors.New("validation found open errors")

type rootOptions struct {
	logLevel  string
	logFormat string
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errFindings):
		return exitFindings
	default:
		fmt.Fprintln(os.Stderr, "error:", core.FormatUserError(err))
		fmt.Fprintln(os.Stderr, "detail:", err)
		return exitFailure
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "pupilcheck",
		Short:         "Validate LehrerOffice exports before importing them into PUPIL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env is optional for the CLI
			_ = godotenv.Load()
			logging.SetupWriter(cmd.ErrOrStderr(), opts.logLevel, opts.logFormat)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format: text or json")

	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newRulesCmd())
	return cmd
}

// openStore opens the rule store configured through the environment.
func openStore(ctx context.Context) (memory.Store, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return store.Open(ctx, cfg.Database.URL, cfg.Database.SQLitePath,
		store.WithPoolLimits(cfg.Database.MaxConns, cfg.Database.MinConns,
			cfg.Database.MaxConnLifetime, cfg.Database.MaxConnIdleTime))
}
