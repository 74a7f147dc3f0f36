package savedquery_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/query"
	"time-ledger/internal/service/savedquery"
	"time-ledger/internal/testutil"
)

func setup(t *testing.T) (*savedquery.Service, identity.Caller, identity.Caller) {
	t.Helper()
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)
	return savedquery.NewService(db, logger.Nop()), identity.FromUser(fx.Alice), identity.FromUser(fx.Bob)
}

func TestCreateNormalizes(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	from := testutil.Date(2026, 10, 1)
	q, err := svc.Create(ctx, alice, savedquery.Input{
		Name:   " October ",
		Filter: query.Filter{UserIDs: []uint{3, 1, 3}, From: &from, Description: "Fix"},
	})
	require.NoError(t, err)
	require.Equal(t, "October", q.Name)

	got, err := svc.Get(ctx, alice, q.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{1, 3}, got.UserIDs)
	require.Empty(t, got.ProjectIDs)
	require.True(t, got.FromDate.Equal(from))
	require.Nil(t, got.ToDate)

	f := query.FromSavedQuery(*got)
	require.Equal(t, "Fix", f.Description)
	require.Equal(t, []uint{1, 3}, f.UserIDs)
}

func TestNameUniquePerOwner(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, savedquery.Input{Name: "weekly"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, savedquery.Input{Name: "weekly"})
	require.ErrorIs(t, err, apperr.ErrNameConflict)

	_, err = svc.Create(ctx, bob, savedquery.Input{Name: "weekly"})
	require.NoError(t, err)

	other, err := svc.Create(ctx, alice, savedquery.Input{Name: "monthly"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, alice, other.ID, savedquery.Input{Name: "weekly"})
	require.ErrorIs(t, err, apperr.ErrNameConflict)

	renamed, err := svc.Update(ctx, alice, other.ID, savedquery.Input{
		Name:   "monthly",
		Filter: query.Filter{ProjectIDs: []uint{2}},
	})
	require.NoError(t, err)
	require.Equal(t, []uint{2}, renamed.ProjectIDs)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "monthly", list[0].Name)
}

func TestOwnerOnly(t *testing.T) {
	svc, alice, bob := setup(t)
	ctx := context.Background()

	q, err := svc.Create(ctx, alice, savedquery.Input{Name: "mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, bob, q.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = svc.Update(ctx, bob, q.ID, savedquery.Input{Name: "stolen"})
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, bob, q.ID), apperr.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, alice, q.ID))
	_, err = svc.Get(ctx, alice, q.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestInvalidInput(t *testing.T) {
	svc, alice, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, alice, savedquery.Input{Name: "  "})
	require.ErrorIs(t, err, apperr.ErrValidation)

	from, to := testutil.Date(2026, 10, 9), testutil.Date(2026, 10, 1)
	_, err = svc.Create(ctx, alice, savedquery.Input{
		Name:   "backwards",
		Filter: query.Filter{From: &from, To: &to},
	})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, identity.Caller{}, savedquery.Input{Name: "anon"})
	require.ErrorIs(t, err, apperr.ErrInsufficientAccess)
}
