package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/aryan0dhankhar/solkant/internal/repository"
	"github.com/aryan0dhankhar/solkant/internal/security/audit"
	"github.com/aryan0dhankhar/solkant/internal/service"
	"github.com/aryan0dhankhar/solkant/pkg/database"
)

var (
	userEmail        string
	userPassword     string
	userName         string
	userBusinessName string
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a credentials user together with its business",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, authService, err := openAuthService(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		in := service.RegisterInput{Email: userEmail, Password: userPassword}
		if userName != "" {
			in.Name = &userName
		}
		if userBusinessName != "" {
			in.BusinessName = &userBusinessName
		}
		identity, business, err := authService.Register(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintf("user %s (%s) created with business %q\n", identity.ID, identity.Email, business.Name))
		return nil
	},
}

var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Replace the password of an existing user",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, authService, err := openAuthService(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		if err := authService.SetPassword(cmd.Context(), userEmail, userPassword); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintf("password updated for %s\n", userEmail))
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "Password, at least 8 characters (required)")
	userCreateCmd.Flags().StringVar(&userName, "name", "", "Display name")
	userCreateCmd.Flags().StringVar(&userBusinessName, "business-name", "", "Business name, defaults to \"Institut de <name>\"")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userSetPasswordCmd.Flags().StringVar(&userEmail, "email", "", "Email address (required)")
	userSetPasswordCmd.Flags().StringVar(&userPassword, "password", "", "New password, at least 8 characters (required)")
	_ = userSetPasswordCmd.MarkFlagRequired("email")
	_ = userSetPasswordCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd, userSetPasswordCmd)
}

func openAuthService(cmd *cobra.Command) (*database.ConnectionPool, *service.AuthService, error) {
	_, pool, log, err := openDatabase(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	db := pool.GetDB()
	users := repository.NewPostgresUserRepository(db, log)
	provisioner := service.NewTenantProvisioner(repository.NewPostgresBusinessRepository(db, log), users, audit.NewLogger(log), log)
	return pool, service.NewAuthService(users, repository.NewPostgresAccountRepository(db, log), provisioner, log), nil
}
