package main

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command of the account service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account-service",
		Short: "Account registration, login and password reset over HTTP",
		Long: `account-service stores user accounts in PostgreSQL and serves
registration, login, password reset and the admin account listing.

Configuration is read from config/.env.<env> and the process environment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
