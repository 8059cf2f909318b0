package cmd

import (
	"github.com/vibast-solutions/ms-go-sleep/app/database"
	"github.com/vibast-solutions/ms-go-sleep/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database schema migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if err := database.RunMigrations(cfg.DSN()); err != nil {
			return err
		}

		logrus.Info("Migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		m, err := database.NewMigrator(cfg.DSN())
		if err != nil {
			return err
		}
		defer m.Close()

		if err := m.Steps(-1); err != nil {
			return err
		}

		logrus.Info("Rolled back one migration")
		return nil
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	rootCmd.AddCommand(migrateCmd)
}
