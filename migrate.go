package main

import (
	"streamdraw/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		// InitDB migrates on connect
		database.InitDB()
		return nil
	},
}
