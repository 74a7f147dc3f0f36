package reference_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
	"time-ledger/internal/service/reference"
	"time-ledger/internal/testutil"
)

var (
	admin    = identity.Caller{UserID: 99, Elevated: true}
	employee = identity.Caller{UserID: 1}
)

func newService(t *testing.T) (*reference.Service, testutil.Fixture) {
	t.Helper()
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)
	return reference.NewService(db, logger.Nop()), fx
}

func TestCreateProject(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	lock := time.Date(2026, 9, 30, 15, 4, 0, 0, time.UTC)
	_, err := svc.CreateProject(ctx, admin, reference.ProjectInput{
		Name: "Mobile", Rate: decimal.RequireFromString("12.345"),
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	p, err := svc.CreateProject(ctx, admin, reference.ProjectInput{
		Name: "  Mobile ", Rate: decimal.RequireFromString("12.350"), LockDate: &lock,
	})
	require.NoError(t, err)
	require.Equal(t, "Mobile", p.Name)
	require.Equal(t, "12.35", p.Rate.StringFixed(2))
	require.Equal(t, testutil.Date(2026, 9, 30), *p.LockDate)

	_, err = svc.CreateProject(ctx, admin, reference.ProjectInput{Name: "Mobile"})
	require.ErrorIs(t, err, apperr.ErrNameConflict)

	_, err = svc.CreateProject(ctx, admin, reference.ProjectInput{Name: ""})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateProject(ctx, admin, reference.ProjectInput{Name: "Neg", Rate: decimal.NewFromInt(-1)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateProject(ctx, employee, reference.ProjectInput{Name: "Other"})
	require.ErrorIs(t, err, apperr.ErrInsufficientAccess)
}

func TestUpdateProject(t *testing.T) {
	svc, fx := newService(t)
	ctx := context.Background()

	lock := testutil.Date(2026, 10, 1)
	p, err := svc.UpdateProject(ctx, admin, fx.Web.ID, reference.ProjectInput{
		Rate: decimal.NewFromInt(30), LockDate: &lock,
	})
	require.NoError(t, err)
	require.True(t, p.Rate.Equal(decimal.NewFromInt(30)))

	got, err := svc.GetProject(ctx, fx.Web.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockDate)
	require.True(t, got.LockDate.Equal(lock))
	require.Len(t, got.Tasks, 2)

	_, err = svc.UpdateProject(ctx, admin, fx.Web.ID, reference.ProjectInput{Rate: decimal.NewFromInt(30)})
	require.NoError(t, err)
	got, err = svc.GetProject(ctx, fx.Web.ID)
	require.NoError(t, err)
	require.Nil(t, got.LockDate)

	_, err = svc.UpdateProject(ctx, admin, fx.Web.ID, reference.ProjectInput{Rate: decimal.RequireFromString("30.005")})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.UpdateProject(ctx, admin, 4242, reference.ProjectInput{})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.GetProject(ctx, 4242)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTaskAssociation(t *testing.T) {
	svc, fx := newService(t)
	ctx := context.Background()

	ok, err := reference.TaskAllowed(svc.DB, fx.Web.ID, fx.Design.ID)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = reference.TaskAllowed(svc.DB, fx.Ops.ID, fx.Design.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, svc.AssignTask(ctx, admin, fx.Ops.ID, fx.Design.ID))
	require.NoError(t, svc.AssignTask(ctx, admin, fx.Ops.ID, fx.Design.ID))
	ok, err = reference.TaskAllowed(svc.DB, fx.Ops.ID, fx.Design.ID)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, svc.UnassignTask(ctx, admin, fx.Web.ID, fx.Design.ID))
	ok, err = reference.TaskAllowed(svc.DB, fx.Web.ID, fx.Design.ID)
	require.NoError(t, err)
	require.False(t, ok)

	require.ErrorIs(t, svc.AssignTask(ctx, admin, fx.Web.ID, 4242), apperr.ErrNotFound)
	require.ErrorIs(t, svc.AssignTask(ctx, employee, fx.Web.ID, fx.Orphan.ID), apperr.ErrInsufficientAccess)
}

func TestTasksAndLaborCodes(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, admin, "Analysis")
	require.NoError(t, err)
	require.NotZero(t, task.ID)

	tasks, err := svc.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	require.Equal(t, "Analysis", tasks[0].Name)

	_, err = svc.CreateLaborCode(ctx, admin, "Billable")
	require.ErrorIs(t, err, apperr.ErrNameConflict)

	_, err = svc.CreateLaborCode(ctx, admin, "Internal")
	require.NoError(t, err)
	codes, err := svc.ListLaborCodes(ctx)
	require.NoError(t, err)
	require.Len(t, codes, 2)
}

func TestConfiguration(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cfg, err := svc.Config(ctx)
	require.NoError(t, err)
	require.EqualValues(t, models.DefaultMinutesPartition, cfg.MinutesPartition)
	require.Equal(t, time.Monday, cfg.FirstDayOfWeek)

	cfg, err = svc.UpdateConfig(ctx, admin, 30, time.Sunday)
	require.NoError(t, err)

	cfg, err = svc.Config(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 30, cfg.MinutesPartition)
	require.Equal(t, time.Sunday, cfg.FirstDayOfWeek)

	_, err = svc.UpdateConfig(ctx, admin, 7, time.Monday)
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpdateConfig(ctx, admin, 15, time.Weekday(9))
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = svc.UpdateConfig(ctx, employee, 15, time.Monday)
	require.ErrorIs(t, err, apperr.ErrInsufficientAccess)
}
