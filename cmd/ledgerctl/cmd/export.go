package cmd

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"time-ledger/internal/csvexport"
	"time-ledger/internal/models"
	"time-ledger/internal/query"
	"time-ledger/internal/service/reference"
	"time-ledger/internal/timecalc"
)

var (
	exportUsers    []string
	exportProjects []string
	exportFrom     string
	exportTo       string
	exportWeek     bool
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export time entries with cost as CSV",
	Long: `Export every entry matching the filters. Without --out the CSV goes to
stdout; with --out the file is replaced atomically.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringSliceVar(&exportUsers, "user", nil, "Usernames to include (repeatable)")
	exportCmd.Flags().StringSliceVar(&exportProjects, "project", nil, "Project names to include (repeatable)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "First day, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Last day, YYYY-MM-DD")
	exportCmd.Flags().BoolVar(&exportWeek, "week", false, "Limit to the current week")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := connect()
	if err != nil {
		return err
	}

	f, err := exportFilter(db, time.Now())
	if err != nil {
		return err
	}

	rows, err := query.NewEngine(db).Run(context.Background(), f)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := csvexport.Write(&buf, query.ExportRows(rows)); err != nil {
		return err
	}

	if exportOut == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}
	if err := atomic.WriteFile(exportOut, &buf); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}

	sum := query.Totals(rows)
	fmt.Fprintf(cmd.ErrOrStderr(), "%d entries, %s, cost %s -> %s\n",
		sum.Entries, timecalc.FormatDuration(sum.Hours, sum.Minutes), sum.Cost.StringFixed(2), exportOut)
	return nil
}

func exportFilter(db *gorm.DB, now time.Time) (query.Filter, error) {
	var f query.Filter
	var err error

	if exportWeek && (exportFrom != "" || exportTo != "") {
		return f, fmt.Errorf("--week cannot be combined with --from/--to")
	}
	if f.UserIDs, err = resolve(db, &models.User{}, "username", exportUsers); err != nil {
		return f, err
	}
	if f.ProjectIDs, err = resolve(db, &models.Project{}, "name", exportProjects); err != nil {
		return f, err
	}
	if f.From, err = timecalc.ParseOptionalDay(exportFrom); err != nil {
		return f, err
	}
	if f.To, err = timecalc.ParseOptionalDay(exportTo); err != nil {
		return f, err
	}

	if exportWeek {
		cfg, err := reference.LoadConfiguration(db)
		if err != nil {
			return f, err
		}
		start, end := timecalc.WeekRange(now, cfg.FirstDayOfWeek)
		f.From, f.To = &start, &end
	}
	return f, nil
}

// resolve maps names to ids and fails on the first unknown name.
func resolve(db *gorm.DB, model any, column string, names []string) ([]uint, error) {
	ids := make([]uint, 0, len(names))
	for _, name := range names {
		var id uint
		err := db.Model(model).Where(column+" = ?", name).Select("id").Scan(&id).Error
		if err != nil {
			return nil, err
		}
		if id == 0 {
			return nil, fmt.Errorf("unknown %s %q", column, name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
