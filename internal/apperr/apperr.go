// Package apperr defines the failure kinds surfaced by the ledger services.
// Callers match them with errors.Is; the wrapped message names the rule or
// record that failed.
package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrNameConflict       = errors.New("name already in use")
	ErrDuplicateFavorite  = errors.New("duplicate favorite")
	ErrInsufficientAccess = errors.New("insufficient access")
	ErrPersistence        = errors.New("persistence failure")
)

func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFound(what string, id uint) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, what, id)
}

func NameConflict(name string) error {
	return fmt.Errorf("%w: %q", ErrNameConflict, name)
}

func DuplicateFavorite(name string) error {
	return fmt.Errorf("%w: %q", ErrDuplicateFavorite, name)
}

func InsufficientAccess(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInsufficientAccess, fmt.Sprintf(format, args...))
}

func Persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// FromStore translates a gorm error for a lookup of what/id.
func FromStore(what string, id uint, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(what, id)
	}
	return Persistence("load "+what, err)
}

// Classify leaves known kinds untouched and wraps anything else as a
// persistence failure. Used on errors coming back from a transaction.
func Classify(op string, err error) error {
	if err == nil || Known(err) {
		return err
	}
	return Persistence(op, err)
}

func Known(err error) bool {
	for _, kind := range []error{
		ErrValidation, ErrNotFound, ErrNameConflict,
		ErrDuplicateFavorite, ErrInsufficientAccess, ErrPersistence,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// HTTPStatus maps a failure kind to the response code used by the API.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNameConflict), errors.Is(err, ErrDuplicateFavorite):
		return http.StatusConflict
	case errors.Is(err, ErrInsufficientAccess):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
