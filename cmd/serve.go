package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IslamMhareeq/sha-256/config"
	"github.com/IslamMhareeq/sha-256/db"
	"github.com/IslamMhareeq/sha-256/internal/account/handler"
	repo "github.com/IslamMhareeq/sha-256/internal/account/repository/postgres"
	"github.com/IslamMhareeq/sha-256/internal/account/service"
	"github.com/IslamMhareeq/sha-256/internal/logging"
	"github.com/IslamMhareeq/sha-256/internal/metrics"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

type serveOptions struct {
	migrate bool
}

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "apply pending migrations before serving")

	return cmd
}

func runServe(ctx context.Context, opts *serveOptions) error {
	cfg, err := config.LoadE()
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "build logger").Wrap(err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher, err := service.NewPasswordHasher(cfg.PasswordHashScheme)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "build password hasher").Wrap(err)
	}
	tokenService, err := service.NewTokenService(cfg.JWTSecret, cfg.SessionTokenTTL, cfg.ResetTokenTTL)
	if err != nil {
		return oops.Code("CONFIG_INVALID").With("operation", "build token service").Wrap(err)
	}

	dbPool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer dbPool.Close()

	if opts.migrate {
		if err := db.Migrate(ctx, dbPool, db.MigrateUp, logger); err != nil {
			return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
		}
	}

	m := metrics.New()
	accountRepo := repo.NewPostgresRepository(dbPool)
	accountService := service.NewAccountService(accountRepo, tokenService, hasher, cfg,
		service.WithLogger(logger),
		service.WithRecorder(m),
	)
	accountHandler := handler.NewAccountHandler(accountService, tokenService, handler.WithHandlerLogger(logger))

	app := handler.NewApp(handler.AppConfig{
		CORSAllowOrigins: cfg.CORSAllowOrigins,
		Logger:           logger,
	})
	handler.RegisterRoutes(app, accountHandler)
	handler.RegisterOpsRoutes(app, dbPool, m.Handler())

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "env", cfg.Env, "hash_scheme", cfg.PasswordHashScheme)
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return oops.Code("SERVER_FAILED").With("port", cfg.Port).Wrap(err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	return <-errCh
}
