package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"time-ledger/internal/service/reference"
	"time-ledger/internal/timecalc"
)

var (
	configPartition uint8
	configFirstDay  string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the ledger configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the minutes partition and/or first day of week",
	Args:  cobra.NoArgs,
	RunE:  runConfigSet,
}

func init() {
	configSetCmd.Flags().Uint8Var(&configPartition, "partition", 0, "Minutes partition, must divide 60")
	configSetCmd.Flags().StringVar(&configFirstDay, "first-day", "", "First day of the week, e.g. Monday")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	db, err := connect()
	if err != nil {
		return err
	}
	cfg, err := reference.LoadConfiguration(db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "minutes_partition: %d\nfirst_day_of_week: %s\n",
		cfg.MinutesPartition, cfg.FirstDayOfWeek)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	db, err := connect()
	if err != nil {
		return err
	}
	svc := reference.NewService(db, log)

	ctx := context.Background()
	cfg, err := svc.Config(ctx)
	if err != nil {
		return err
	}

	partition, firstDay := cfg.MinutesPartition, cfg.FirstDayOfWeek
	if cmd.Flags().Changed("partition") {
		partition = configPartition
	}
	if configFirstDay != "" {
		d, ok := timecalc.ParseWeekday(configFirstDay)
		if !ok {
			return fmt.Errorf("unknown weekday %q", configFirstDay)
		}
		firstDay = d
	}

	if _, err := svc.UpdateConfig(ctx, operator, partition, firstDay); err != nil {
		return err
	}
	return runConfigShow(cmd, args)
}
