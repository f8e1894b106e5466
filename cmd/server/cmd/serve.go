package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"medsync/internal/app/server"
	"medsync/internal/app/server/config"
	"medsync/internal/infrastructure/migration"
	"medsync/internal/telemetry"
)

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Запустить HTTP сервер синхронизации",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
			OTLPEndpoint: cfg.Telemetry.Endpoint,
			Insecure:     cfg.Telemetry.Insecure,
			ServiceName:  cfg.Telemetry.ServiceName,
		})
		if err != nil {
			log.Warn("telemetry disabled", "error", err)
		}
		defer func() {
			if err := shutdownTelemetry(context.Background()); err != nil {
				log.Warn("telemetry shutdown", "error", err)
			}
		}()

		if migrateOnStart && cfg.DB.Driver == config.DriverPostgres {
			mg := migration.NewMigration(cfg.DB.Migrations, cfg.DB.DatabaseURI, migration.DefaultEngine, log)
			if err := mg.Up(); err != nil {
				return err
			}
		}

		app, err := server.New(ctx, cfg, log)
		if err != nil {
			return err
		}
		return app.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "применить миграции перед запуском")
}
