package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"time-ledger/internal/config"
	"time-ledger/internal/database"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
)

var (
	dsn string

	// openDB is swapped out by tests.
	openDB = database.Open

	// stdout carries CSV output
	log = logger.NewLoggerTo("ledgerctl", os.Stderr)
)

// operator acts with elevated rights on behalf of whoever runs the binary.
var operator = identity.Caller{Elevated: true}

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Administration tool for the time ledger",
	Long: `ledgerctl talks to the ledger database directly: it migrates the
schema, manages users and configuration, and exports time entries as CSV.`,
	SilenceUsage: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "Database DSN (default: $DB_DSN)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(userCmd)
}

func connect() (*gorm.DB, error) {
	if dsn == "" {
		dsn = config.DSN()
	}
	if dsn == "" {
		return nil, errors.New("no database: pass --dsn or set DB_DSN")
	}
	return openDB(dsn, log)
}
