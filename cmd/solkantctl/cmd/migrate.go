package cmd

import (
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/solkant/internal/migrations"
)

var downTarget int64

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *migrations.Runner) error { return r.Up(cmd.Context()) })
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *migrations.Runner) error { return r.Status(cmd.Context()) })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration, or down to --to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(r *migrations.Runner) error { return r.Down(cmd.Context(), downTarget) })
	},
}

func init() {
	migrateDownCmd.Flags().Int64Var(&downTarget, "to", 0, "Target schema version")
	migrateCmd.AddCommand(migrateUpCmd, migrateStatusCmd, migrateDownCmd)
}

func withRunner(cmd *cobra.Command, fn func(*migrations.Runner) error) error {
	_, pool, log, err := openDatabase(cmd.Context())
	if err != nil {
		return err
	}
	defer pool.Close()

	runner, err := migrations.New(pool.GetDB(), log)
	if err != nil {
		return err
	}
	return fn(runner)
}
