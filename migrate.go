package main

import (
	"github.com/raseen-shahil/Med-App-sub000/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DSN())
		if err != nil {
			return err
		}
		defer database.Close(db)
		return database.Migrate(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Migrate, then insert the default medicine categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Open(cfg.DSN())
		if err != nil {
			return err
		}
		defer database.Close(db)
		if err := database.Migrate(db); err != nil {
			return err
		}
		_, err = database.Seed(db)
		return err
	},
}
