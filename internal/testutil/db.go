// Package testutil opens throwaway SQLite databases with the ledger schema
// and seeds reference data for service and handler tests.
package testutil

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"time-ledger/internal/database"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
)

// OpenDB returns a migrated in-memory database. A single connection keeps
// every statement on the same in-memory instance.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), database.Config(logger.Nop()))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Fixture is a small reference data set: two employees and an admin, two
// projects, tasks associated with the first project only, and a labor code.
type Fixture struct {
	Alice, Bob, Admin models.User
	Web, Ops          models.Project
	Design, Deploy    models.Task
	Orphan            models.Task
	Billable          models.LaborCode
}

func Seed(t testing.TB, db *gorm.DB) Fixture {
	t.Helper()

	var f Fixture
	f.Alice = mustUser(t, db, "alice", models.RoleEmployee)
	f.Bob = mustUser(t, db, "bob", models.RoleEmployee)
	f.Admin = mustUser(t, db, "root", models.RoleAdmin)

	f.Design = models.Task{Name: "Design"}
	f.Deploy = models.Task{Name: "Deploy"}
	f.Orphan = models.Task{Name: "Orphan"}
	mustCreate(t, db, &f.Design)
	mustCreate(t, db, &f.Deploy)
	mustCreate(t, db, &f.Orphan)

	f.Web = models.Project{Name: "Web", Rate: decimal.RequireFromString("20.66")}
	f.Ops = models.Project{Name: "Ops", Rate: decimal.RequireFromString("50")}
	mustCreate(t, db, &f.Web)
	mustCreate(t, db, &f.Ops)
	if err := db.Model(&f.Web).Association("Tasks").Append(&f.Design, &f.Deploy); err != nil {
		t.Fatalf("associate tasks: %v", err)
	}

	f.Billable = models.LaborCode{Name: "Billable"}
	mustCreate(t, db, &f.Billable)
	return f
}

func mustUser(t testing.TB, db *gorm.DB, name string, role models.UserRole) models.User {
	t.Helper()
	// not a bcrypt hash: fixture users cannot log in
	u := models.User{Username: name, PasswordHash: "x", Role: role}
	mustCreate(t, db, &u)
	return u
}

func mustCreate(t testing.TB, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}

// Date is a shorthand for a UTC calendar day.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ID(v uint) *uint { return &v }
