package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"time-ledger/internal/csvexport"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
	"time-ledger/internal/testutil"
)

func useDB(t *testing.T) (*gorm.DB, testutil.Fixture) {
	t.Helper()
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)

	prevOpen, prevDSN, prevLog := openDB, dsn, log
	openDB = func(string, *logger.Logger) (*gorm.DB, error) { return db, nil }
	log = logger.Nop()
	t.Cleanup(func() { openDB, dsn, log = prevOpen, prevDSN, prevLog })

	exportUsers, exportProjects = nil, nil
	exportFrom, exportTo, exportOut = "", "", ""
	exportWeek = false
	configPartition, configFirstDay = 0, ""
	userAdmin = false
	return db, fx
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--dsn", "test"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func seedEntries(t *testing.T, db *gorm.DB, fx testutil.Fixture) {
	t.Helper()
	for _, f := range []models.EntryFields{
		{Hours: 3, Minutes: 36, Date: testutil.Date(2026, 10, 5), UserID: fx.Alice.ID, ProjectID: fx.Web.ID, Description: "a"},
		{Hours: 1, Date: testutil.Date(2026, 10, 6), UserID: fx.Bob.ID, ProjectID: fx.Ops.ID, Description: "b"},
	} {
		te := models.TimeEntry{EntryFields: f}
		require.NoError(t, db.Omit("User", "Project", "Task", "LaborCode").Create(&te).Error)
	}
}

func TestExportStdout(t *testing.T) {
	db, fx := useDB(t)
	seedEntries(t, db, fx)

	out, err := run(t, "export", "--user", "alice")
	require.NoError(t, err)
	require.Equal(t, csvexport.Header+"\n"+"alice,Web,,,a,2026-10-05,3,36,74.38\n", out)
}

func TestExportToFile(t *testing.T) {
	db, fx := useDB(t)
	seedEntries(t, db, fx)

	path := filepath.Join(t.TempDir(), "report.csv")
	out, err := run(t, "export", "--project", "Ops", "--from", "2026-10-01", "--out", path)
	require.NoError(t, err)
	require.Contains(t, out, "1 entries, 1h 0m, cost 50.00")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{csvexport.Header, "bob,Ops,,,b,2026-10-06,1,0,50.00"}, lines)
}

func TestExportUnknownProject(t *testing.T) {
	useDB(t)
	_, err := run(t, "export", "--project", "Nope")
	require.ErrorContains(t, err, `unknown name "Nope"`)
}

func TestExportWeekWithRange(t *testing.T) {
	useDB(t)
	_, err := run(t, "export", "--week", "--from", "2026-10-01")
	require.ErrorContains(t, err, "--week cannot be combined")
}

func TestConfigSetAndShow(t *testing.T) {
	useDB(t)

	out, err := run(t, "config", "set", "--partition", "30", "--first-day", "sunday")
	require.NoError(t, err)
	require.Equal(t, "minutes_partition: 30\nfirst_day_of_week: Sunday\n", out)

	out, err = run(t, "config", "show")
	require.NoError(t, err)
	require.Contains(t, out, "first_day_of_week: Sunday")

	_, err = run(t, "config", "set", "--first-day", "someday")
	require.Error(t, err)
}

func TestUserAdd(t *testing.T) {
	db, _ := useDB(t)

	out, err := run(t, "user", "add", "erin", "long-password", "--admin")
	require.NoError(t, err)
	require.Contains(t, out, `created admin "erin"`)

	var u models.User
	require.NoError(t, db.Where("username = ?", "erin").First(&u).Error)
	require.True(t, u.Elevated())

	_, err = run(t, "user", "add", "erin", "other-password")
	require.Error(t, err)
}
