package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/solkant/internal/repository"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/internal/service"
)

var businessCmd = &cobra.Command{
	Use:   "business",
	Short: "Manage businesses",
}

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Create the missing business of every user without one",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, pool, log, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer pool.Close()

		db := pool.GetDB()
		provisioner := service.NewTenantProvisioner(
			repository.NewPostgresBusinessRepository(db, log),
			repository.NewPostgresUserRepository(db, log),
			audit.NewLogger(log),
			log,
		)
		report, err := provisioner.Backfill(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if report.Scanned == 0 {
			fmt.Fprint(out, pterm.Success.Sprintln("Tous les utilisateurs ont un business"))
			return nil
		}
		fmt.Fprint(out, pterm.Info.Sprintf("Utilisateurs sans business: %d\n", report.Scanned))
		fmt.Fprint(out, pterm.Success.Sprintf("Business créés: %d\n", report.Created))
		if report.Failed > 0 {
			fmt.Fprint(out, pterm.Warning.Sprintf("Échecs: %d\n", report.Failed))
			return fmt.Errorf("%d users could not be repaired", report.Failed)
		}
		return nil
	},
}

func init() {
	businessCmd.AddCommand(backfillCmd)
}
