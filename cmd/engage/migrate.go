package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/profilejoteam/profilejo-website-sub000/internal/database"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the profile draft schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.DB.Enabled() {
				return errors.New("DB_HOST is not set")
			}

			dir, _ := cmd.Flags().GetString("dir")
			if down, _ := cmd.Flags().GetInt("down"); down > 0 {
				return database.RollbackMigrations(cfg.DB.DSN(), dir, down)
			}
			return database.RunMigrations(cfg.DB.DSN(), dir)
		},
	}
	cmd.Flags().String("dir", "migrations", "migrations directory")
	cmd.Flags().Int("down", 0, "roll back this many migrations instead of applying")
	return cmd
}
