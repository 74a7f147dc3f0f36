package apperr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"time-ledger/internal/apperr"
)

func TestFromStore(t *testing.T) {
	err := apperr.FromStore("project", 7, gorm.ErrRecordNotFound)
	require.ErrorIs(t, err, apperr.ErrNotFound)
	require.EqualError(t, err, "not found: project 7")

	err = apperr.FromStore("project", 7, errors.New("connection reset"))
	require.ErrorIs(t, err, apperr.ErrPersistence)

	require.NoError(t, apperr.FromStore("project", 7, nil))
}

func TestClassify(t *testing.T) {
	known := apperr.Validation("minutes %d not aligned", 7)
	require.Same(t, known, apperr.Classify("update entry", known))

	raw := errors.New("disk full")
	got := apperr.Classify("update entry", raw)
	require.ErrorIs(t, got, apperr.ErrPersistence)
	require.ErrorIs(t, got, raw)
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("bad"), http.StatusBadRequest},
		{apperr.NotFound("entry", 1), http.StatusNotFound},
		{apperr.NameConflict("weekly"), http.StatusConflict},
		{apperr.DuplicateFavorite("dev"), http.StatusConflict},
		{apperr.InsufficientAccess("entry %d", 1), http.StatusForbidden},
		{apperr.Persistence("save", errors.New("x")), http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := apperr.HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
