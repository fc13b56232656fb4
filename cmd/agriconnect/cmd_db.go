package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agriconnect-ug/agriconnect/config"
	"github.com/agriconnect-ug/agriconnect/database/seeders"
	"github.com/agriconnect-ug/agriconnect/pkg/database"
	"github.com/agriconnect-ug/agriconnect/pkg/migration"
)

// bootDB gets the database commands a live connection without starting
// anything else.
func bootDB() error {
	if err := config.Load(); err != nil {
		return err
	}
	return database.Connect()
}

// agriconnect migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Applying pending migrations…")
		return migration.New(database.DB).Run()
	},
}

// agriconnect migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Reverting the last batch…")
		return migration.New(database.DB).Rollback()
	},
}

// agriconnect migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		return migration.New(database.DB).Status()
	},
}

// agriconnect seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Run all database seeders",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := bootDB(); err != nil {
			return err
		}
		fmt.Println("Running seeders…")
		return seeders.RunAll(database.DB)
	},
}
