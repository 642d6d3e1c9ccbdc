package main

import (
	"github.com/IslamMhareeq/sha-256/config"
	"github.com/IslamMhareeq/sha-256/db"
	"github.com/IslamMhareeq/sha-256/internal/logging"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Run database migrations",
		Long:      `Apply, roll back or list the embedded schema migrations. Defaults to up.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{db.MigrateUp, db.MigrateDown, db.MigrateStatus},
		RunE:      runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, args []string) error {
	direction := db.MigrateUp
	if len(args) == 1 {
		direction = args[0]
	}

	cfg, err := config.LoadE()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "build logger").Wrap(err)
	}

	ctx := cmd.Context()

	cmd.Println("Connecting to database...")
	dbPool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer dbPool.Close()

	cmd.Printf("Running migrations (%s)...\n", direction)
	if err := db.Migrate(ctx, dbPool, direction, logger); err != nil {
		return oops.Code("MIGRATION_FAILED").With("direction", direction).Wrap(err)
	}

	cmd.Println("Migrations completed successfully")
	return nil
}
