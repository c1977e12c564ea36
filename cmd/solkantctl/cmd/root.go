package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/solkant/internal/infrastructure/logger"
	"github.com/aryan0dhankhar/solkant/pkg/config"
	"github.com/aryan0dhankhar/solkant/pkg/database"
)

var (
	logLevel string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "solkantctl",
	Short: "Solkant operations CLI",
	Long: `solkantctl runs maintenance tasks against a Solkant deployment: environment
checks, schema migrations, business backfill and user seeding. It reads the
same environment variables (and .env file) as the server.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override LOG_LEVEL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(businessCmd)
	rootCmd.AddCommand(userCmd)
}

// cliLogger writes JSON logs to stderr when verbose, and discards them otherwise.
func cliLogger(cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	var w io.Writer = io.Discard
	if verbose {
		w = os.Stderr
	}
	return logger.New(w, level, cfg.Environment)
}

// openDatabase loads the configuration and connects to Postgres.
func openDatabase(ctx context.Context) (*config.Config, *database.ConnectionPool, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := cliLogger(cfg)
	pool, err := database.NewConnectionPool(ctx, &database.Config{URL: cfg.DatabaseURL, ConnectAttempts: 3}, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, pool, log, nil
}
