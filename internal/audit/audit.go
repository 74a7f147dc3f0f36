// Package audit writes and reads the change history of time entries.
//
// Every create, update and delete of a TimeEntry produces exactly one
// ChangeAuditRecord holding full snapshots of the entry before and after the
// operation. Record must run on the same transaction as the entry write so a
// failed audit insert rolls the mutation back.
package audit

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"time-ledger/internal/logger"
	"time-ledger/internal/models"
)

var (
	ErrNoChange  = errors.New("audit: update leaves every field unchanged")
	ErrNoEntry   = errors.New("audit: neither before nor after state given")
	ErrBadReplay = errors.New("audit: records do not form a valid history")
)

// NewRecord builds the record for a transition. A nil before means the entry
// is being created, a nil after means it is being deleted.
func NewRecord(entryID uint, before, after *models.EntryFields, actorID uint) (models.ChangeAuditRecord, error) {
	rec := models.ChangeAuditRecord{
		TimeEntryID: entryID,
		Old:         models.SnapshotOf(before),
		New:         models.SnapshotOf(after),
		ActorID:     actorID,
	}
	switch {
	case before == nil && after == nil:
		return models.ChangeAuditRecord{}, ErrNoEntry
	case before == nil:
		rec.Kind = models.KindCreated
	case after == nil:
		rec.Kind = models.KindDeleted
	default:
		if before.Equal(*after) {
			return models.ChangeAuditRecord{}, ErrNoChange
		}
		rec.Kind = models.KindUpdated
	}
	return rec, nil
}

type Recorder struct {
	Log *logger.Logger
}

func NewRecorder(log *logger.Logger) *Recorder {
	return &Recorder{Log: log.Named("audit")}
}

// Record inserts the audit record for a transition on tx.
func (r *Recorder) Record(tx *gorm.DB, entryID uint, before, after *models.EntryFields, actorID uint) (*models.ChangeAuditRecord, error) {
	rec, err := NewRecord(entryID, before, after, actorID)
	if err != nil {
		return nil, err
	}
	if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
		return nil, fmt.Errorf("write audit record: %w", err)
	}

	r.Log.WithContext(tx.Statement.Context).Audit("time entry changed",
		"entry_id", entryID,
		"kind", rec.Kind,
		"actor_id", actorID,
		"record_id", rec.ID,
	)
	return &rec, nil
}

// History returns all records for an entry in write order. It keeps working
// after the entry itself is deleted.
func History(db *gorm.DB, entryID uint) ([]models.ChangeAuditRecord, error) {
	var recs []models.ChangeAuditRecord
	err := db.Where("time_entry_id = ?", entryID).
		Order("id asc").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return recs, nil
}

// Replay folds the "new" groups forward and returns the state after the last
// record: nil if the entry ended up deleted or recs is empty.
func Replay(recs []models.ChangeAuditRecord) (*models.EntryFields, error) {
	var state *models.EntryFields
	for i, rec := range recs {
		if err := checkLink(state, rec, i); err != nil {
			return nil, err
		}
		state = rec.New.Fields()
	}
	return state, nil
}

// Rollback folds the "old" groups backward over the last steps records and
// returns the state before them. steps beyond len(recs) stop at the start.
func Rollback(recs []models.ChangeAuditRecord, steps int) (*models.EntryFields, error) {
	state, err := Replay(recs)
	if err != nil {
		return nil, err
	}
	for i := len(recs) - 1; i >= 0 && steps > 0; i, steps = i-1, steps-1 {
		state = recs[i].Old.Fields()
	}
	return state, nil
}

// checkLink verifies that rec continues from state.
func checkLink(state *models.EntryFields, rec models.ChangeAuditRecord, i int) error {
	old := rec.Old.Fields()
	switch {
	case state == nil && old != nil:
		return fmt.Errorf("%w: record %d (%s) has an old group but no prior state", ErrBadReplay, i, rec.Kind)
	case state != nil && old == nil:
		return fmt.Errorf("%w: record %d (%s) has no old group after state was set", ErrBadReplay, i, rec.Kind)
	case state != nil && !state.Equal(*old):
		return fmt.Errorf("%w: record %d old group does not match prior new group", ErrBadReplay, i)
	}
	return nil
}
