package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"time-ledger/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema and seed the admin user",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := connect()
	if err != nil {
		return err
	}
	if err := database.Migrate(db); err != nil {
		return err
	}

	username := os.Getenv("ADMIN_USERNAME")
	if username == "" {
		username = "admin"
	}
	database.SeedAdmin(db, username, os.Getenv("ADMIN_PASSWORD"), log)

	fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
	return nil
}
