package favorite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/service/favorite"
	"time-ledger/internal/testutil"
)

func setup(t *testing.T) (*favorite.Service, testutil.Fixture) {
	t.Helper()
	db := testutil.OpenDB(t)
	fx := testutil.Seed(t, db)
	return favorite.NewService(db, logger.Nop()), fx
}

func TestDuplicateName(t *testing.T) {
	svc, fx := setup(t)
	ctx := context.Background()
	alice, bob := identity.FromUser(fx.Alice), identity.FromUser(fx.Bob)

	in := favorite.Input{Name: "Daily", ProjectID: fx.Web.ID, TaskID: testutil.ID(fx.Design.ID)}
	_, err := svc.Create(ctx, alice, in)
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, in)
	require.ErrorIs(t, err, apperr.ErrDuplicateFavorite)

	_, err = svc.Create(ctx, bob, in)
	require.NoError(t, err)

	in.Name = "daily"
	second, err := svc.Create(ctx, alice, in)
	require.NoError(t, err)

	in.Name = "Daily"
	_, err = svc.Update(ctx, alice, second.ID, in)
	require.ErrorIs(t, err, apperr.ErrDuplicateFavorite)

	list, err := svc.List(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestReferences(t *testing.T) {
	svc, fx := setup(t)
	ctx := context.Background()
	alice := identity.FromUser(fx.Alice)

	_, err := svc.Create(ctx, alice, favorite.Input{Name: "x", ProjectID: 4242})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, alice, favorite.Input{Name: "x", ProjectID: fx.Ops.ID, TaskID: testutil.ID(fx.Design.ID)})
	require.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, alice, favorite.Input{Name: "x", ProjectID: fx.Ops.ID, LaborCodeID: testutil.ID(4242)})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Create(ctx, alice, favorite.Input{Name: "", ProjectID: fx.Ops.ID})
	require.ErrorIs(t, err, apperr.ErrValidation)

	fav, err := svc.Create(ctx, alice, favorite.Input{Name: "x", ProjectID: fx.Ops.ID, LaborCodeID: testutil.ID(fx.Billable.ID)})
	require.NoError(t, err)
	require.Nil(t, fav.TaskID)
}

func TestOwnership(t *testing.T) {
	svc, fx := setup(t)
	ctx := context.Background()
	alice, bob, admin := identity.FromUser(fx.Alice), identity.FromUser(fx.Bob), identity.FromUser(fx.Admin)

	fav, err := svc.Create(ctx, alice, favorite.Input{Name: "mine", ProjectID: fx.Web.ID})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(ctx, bob, fav.ID), apperr.ErrInsufficientAccess)
	require.ErrorIs(t, svc.Delete(ctx, bob, 4242), apperr.ErrNotFound)
	_, err = svc.Update(ctx, bob, fav.ID, favorite.Input{Name: "theirs", ProjectID: fx.Web.ID})
	require.ErrorIs(t, err, apperr.ErrInsufficientAccess)

	renamed, err := svc.Update(ctx, admin, fav.ID, favorite.Input{Name: "renamed", ProjectID: fx.Ops.ID})
	require.NoError(t, err)
	require.Equal(t, fx.Alice.ID, renamed.OwnerID)

	require.NoError(t, svc.Delete(ctx, alice, fav.ID))
	_, err = svc.Get(ctx, alice, fav.ID)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
