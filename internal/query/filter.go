package query

import (
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"

	"time-ledger/internal/models"
	"time-ledger/internal/timecalc"
)

// Filter selects time entries. An entry matches when it satisfies every
// populated dimension: id sets are membership tests (empty = any), dates are
// an inclusive day range with optional ends, and Description is a
// case-sensitive substring.
type Filter struct {
	UserIDs      []uint     `json:"user_ids,omitempty"`
	ProjectIDs   []uint     `json:"project_ids,omitempty"`
	TaskIDs      []uint     `json:"task_ids,omitempty"`
	LaborCodeIDs []uint     `json:"labor_code_ids,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
	Description  string     `json:"description,omitempty"`
}

// NormalizeIDs sorts ids and drops duplicates and zeros. The result is
// never nil.
func NormalizeIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Normalize returns f with normalized id sets and day-truncated bounds.
func (f Filter) Normalize() Filter {
	f.UserIDs = NormalizeIDs(f.UserIDs)
	f.ProjectIDs = NormalizeIDs(f.ProjectIDs)
	f.TaskIDs = NormalizeIDs(f.TaskIDs)
	f.LaborCodeIDs = NormalizeIDs(f.LaborCodeIDs)
	f.From = dayPtr(f.From)
	f.To = dayPtr(f.To)
	return f
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := timecalc.Day(*t)
	return &d
}

// Match is the pure predicate behind Run.
func (f Filter) Match(e models.EntryFields) bool {
	if !member(f.UserIDs, &e.UserID) ||
		!member(f.ProjectIDs, &e.ProjectID) ||
		!member(f.TaskIDs, e.TaskID) ||
		!member(f.LaborCodeIDs, e.LaborCodeID) {
		return false
	}
	day := timecalc.Day(e.Date)
	if f.From != nil && day.Before(timecalc.Day(*f.From)) {
		return false
	}
	if f.To != nil && day.After(timecalc.Day(*f.To)) {
		return false
	}
	return strings.Contains(e.Description, f.Description)
}

func member(set []uint, id *uint) bool {
	if len(set) == 0 {
		return true
	}
	return id != nil && slices.Contains(set, *id)
}

// Scope applies the id and date dimensions at store level. The description
// is left to Match so containment stays case-sensitive on every dialect.
func (f Filter) Scope(db *gorm.DB) *gorm.DB {
	if len(f.UserIDs) > 0 {
		db = db.Where("time_entries.user_id IN ?", f.UserIDs)
	}
	if len(f.ProjectIDs) > 0 {
		db = db.Where("time_entries.project_id IN ?", f.ProjectIDs)
	}
	if len(f.TaskIDs) > 0 {
		db = db.Where("time_entries.task_id IN ?", f.TaskIDs)
	}
	if len(f.LaborCodeIDs) > 0 {
		db = db.Where("time_entries.labor_code_id IN ?", f.LaborCodeIDs)
	}
	if f.From != nil {
		db = db.Where("time_entries.date >= ?", timecalc.Day(*f.From))
	}
	if f.To != nil {
		db = db.Where("time_entries.date <= ?", timecalc.Day(*f.To))
	}
	return db
}

// FromSavedQuery converts a stored query into a filter.
func FromSavedQuery(q models.SavedQuery) Filter {
	return Filter{
		UserIDs:      q.UserIDs,
		ProjectIDs:   q.ProjectIDs,
		TaskIDs:      q.TaskIDs,
		LaborCodeIDs: q.LaborCodeIDs,
		From:         q.FromDate,
		To:           q.ToDate,
		Description:  q.Description,
	}.Normalize()
}
