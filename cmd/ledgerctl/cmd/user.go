package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"time-ledger/internal/database"
	"time-ledger/internal/models"
)

var userAdmin bool

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage ledger users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username> <password>",
	Short: "Create a user",
	Args:  cobra.ExactArgs(2),
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().BoolVar(&userAdmin, "admin", false, "Grant elevated rights")
	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	db, err := connect()
	if err != nil {
		return err
	}

	role := models.RoleEmployee
	if userAdmin {
		role = models.RoleAdmin
	}
	u, err := database.CreateUser(db, args[0], args[1], role)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s %q (id %d)\n", u.Role, u.Username, u.ID)
	return nil
}
