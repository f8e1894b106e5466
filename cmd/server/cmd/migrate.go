package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"medsync/internal/app/server/config"
	"medsync/internal/infrastructure/migration"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Применить миграции схемы PostgreSQL",
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.DB.Driver != config.DriverPostgres {
			return fmt.Errorf("migrations require storage driver %q, got %q", config.DriverPostgres, cfg.DB.Driver)
		}

		mg := migration.NewMigration(cfg.DB.Migrations, cfg.DB.DatabaseURI, migration.DefaultEngine, log)
		if migrateDown {
			return mg.Down()
		}
		return mg.Up()
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "откатить все миграции")
}
