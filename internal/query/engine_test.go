package query_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"time-ledger/internal/csvexport"
	"time-ledger/internal/models"
	"time-ledger/internal/query"
	"time-ledger/internal/testutil"
)

func insert(t *testing.T, db *gorm.DB, f models.EntryFields) models.TimeEntry {
	t.Helper()
	e := models.TimeEntry{EntryFields: f}
	require.NoError(t, db.Omit("User", "Project", "Task", "LaborCode").Create(&e).Error)
	return e
}

func TestRun(t *testing.T) {
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)
	ctx := context.Background()

	e1 := insert(t, db, models.EntryFields{
		Hours: 3, Minutes: 36, Date: testutil.Date(2026, 10, 5),
		UserID: fx.Alice.ID, ProjectID: fx.Web.ID,
		TaskID: &fx.Design.ID, LaborCodeID: &fx.Billable.ID,
		Description: "this one, too",
	})
	e2 := insert(t, db, models.EntryFields{
		Hours: 1, Date: testutil.Date(2026, 10, 6),
		UserID: fx.Bob.ID, ProjectID: fx.Ops.ID,
		Description: `test,trying "a"`,
	})
	e3 := insert(t, db, models.EntryFields{
		Minutes: 30, Date: testutil.Date(2026, 10, 12),
		UserID: fx.Alice.ID, ProjectID: fx.Ops.ID,
		Description: "Standup",
	})

	engine := query.NewEngine(db)

	ids := func(rows []query.Row) []uint {
		out := []uint{}
		for _, r := range rows {
			out = append(out, r.ID)
		}
		return out
	}

	all, err := engine.Run(ctx, query.Filter{})
	require.NoError(t, err)
	require.Equal(t, []uint{e1.ID, e2.ID, e3.ID}, ids(all))

	first := all[0]
	require.Equal(t, "alice", first.Username)
	require.Equal(t, "Web", first.ProjectName)
	require.Equal(t, "Design", first.TaskName)
	require.Equal(t, "Billable", first.LaborCodeName)
	require.True(t, first.Cost.Equal(decimal.RequireFromString("74.38")), "cost = %s", first.Cost)
	require.Empty(t, all[1].TaskName)

	alice, err := engine.Run(ctx, query.Filter{UserIDs: []uint{fx.Alice.ID}})
	require.NoError(t, err)
	require.Equal(t, []uint{e1.ID, e3.ID}, ids(alice))

	from, to := testutil.Date(2026, 10, 6), testutil.Date(2026, 10, 12)
	ranged, err := engine.Run(ctx, query.Filter{From: &from, To: &to})
	require.NoError(t, err)
	require.Equal(t, []uint{e2.ID, e3.ID}, ids(ranged))

	tasks, err := engine.Run(ctx, query.Filter{TaskIDs: []uint{fx.Design.ID}})
	require.NoError(t, err)
	require.Equal(t, []uint{e1.ID}, ids(tasks))

	upper, err := engine.Run(ctx, query.Filter{Description: "Standup"})
	require.NoError(t, err)
	require.Equal(t, []uint{e3.ID}, ids(upper))

	lower, err := engine.Run(ctx, query.Filter{Description: "standup"})
	require.NoError(t, err)
	require.Empty(t, lower)

	csv := csvexport.String(query.ExportRows(all))
	require.Equal(t, csvexport.Header+"\n"+
		`alice,Web,Design,Billable,"this one, too",2026-10-05,3,36,74.38`+"\n"+
		`bob,Ops,,,"test,trying ""a""",2026-10-06,1,0,50.00`+"\n"+
		`alice,Ops,,,Standup,2026-10-12,0,30,25.00`+"\n", csv)
}

func TestRunUsesCurrentRate(t *testing.T) {
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)

	insert(t, db, models.EntryFields{
		Hours: 2, Date: testutil.Date(2026, 10, 5),
		UserID: fx.Alice.ID, ProjectID: fx.Ops.ID,
	})

	require.NoError(t, db.Model(&fx.Ops).Update("rate", decimal.RequireFromString("75")).Error)

	rows, err := query.NewEngine(db).Run(context.Background(), query.Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.True(t, rows[0].Cost.Equal(decimal.NewFromInt(150)), "cost = %s", rows[0].Cost)
}

func TestTotals(t *testing.T) {
	rows := []query.Row{
		{EntryFields: models.EntryFields{Hours: 1, Minutes: 45}, Cost: decimal.RequireFromString("10.50")},
		{EntryFields: models.EntryFields{Hours: 0, Minutes: 30}, Cost: decimal.RequireFromString("4.25")},
	}
	s := query.Totals(rows)
	require.Equal(t, 2, s.Entries)
	require.Equal(t, 2, s.Hours)
	require.Equal(t, 15, s.Minutes)
	require.True(t, s.Cost.Equal(decimal.RequireFromString("14.75")))

	empty := query.Totals(nil)
	require.True(t, empty.Cost.IsZero())
}
