package main

import (
	"fmt"

	"jobfair-live/config"
	"jobfair-live/internal/repository"
	"jobfair-live/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the postgres schema",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, l, err := loadConfig()
	if err != nil {
		return err
	}
	defer l.Sync()

	if cfg.StoreDriver != config.StoreDriverPostgres {
		return fmt.Errorf("migrate: STORE_DRIVER is %q, nothing to migrate", cfg.StoreDriver)
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := repository.InitSchema(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	l.Infof("schema is up to date")

	if seedDemo {
		if _, err := database.Seed(cmd.Context(), repository.NewUserRepository(db), nil); err != nil {
			return err
		}
	}
	return nil
}
