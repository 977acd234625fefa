package cmd

import (
	"context"
	"fmt"

	"github.com/frahmantamala/hrms/internal"
	"github.com/frahmantamala/hrms/internal/core/datamodel"
	"github.com/frahmantamala/hrms/internal/core/mongodb"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "apply db/migrations on postgres; auto-migrate mysql and sqlite; build mongo indexes",
	}
	migrateRollback bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func runMigration(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg, lg, err := setup()
	if err != nil {
		return err
	}

	switch cfg.Database.Driver {
	case internal.DriverPostgres:
		db, err := goose.OpenDBWithDriver("pgx", cfg.Database.Source)
		if err != nil {
			return fmt.Errorf("goose: failed to open DB: %w", err)
		}
		defer db.Close()
		goose.SetTableName("schema_migrations")

		command := "up"
		if migrateRollback {
			command = "down"
		}
		if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
			return fmt.Errorf("goose %s: %w", command, err)
		}

	case internal.DriverMongo:
		client, db, err := mongodb.Connect(ctx, cfg.Mongo)
		if err != nil {
			return err
		}
		defer client.Disconnect(ctx)
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}

	default:
		if migrateRollback {
			return fmt.Errorf("rollback is only supported on %s", internal.DriverPostgres)
		}
		db, err := datamodel.Open(cfg.Database, lg)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		if err := datamodel.AutoMigrate(db); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	lg.Info("migration complete", "driver", cfg.Database.Driver, "rollback", migrateRollback)
	return nil
}
