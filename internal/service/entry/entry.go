// Package entry owns time-entry mutations. Every create, update and delete
// writes its audit record on the same transaction as the entry itself.
package entry

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"time-ledger/internal/apperr"
	"time-ledger/internal/audit"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
	"time-ledger/internal/service/reference"
	"time-ledger/internal/timecalc"
)

type Service struct {
	DB    *gorm.DB
	Audit *audit.Recorder
	Log   *logger.Logger
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{
		DB:    db,
		Audit: audit.NewRecorder(log),
		Log:   log.Named("entry"),
	}
}

// Input is the caller-supplied state of an entry. A zero UserID means the
// caller's own entry.
type Input struct {
	UserID      uint
	ProjectID   uint
	TaskID      *uint
	LaborCodeID *uint
	Date        time.Time
	Hours       uint8
	Minutes     uint8
	Description string
}

func (in Input) fields(owner uint) models.EntryFields {
	return models.EntryFields{
		Hours:       in.Hours,
		Minutes:     in.Minutes,
		Date:        timecalc.Day(in.Date),
		UserID:      owner,
		ProjectID:   in.ProjectID,
		TaskID:      in.TaskID,
		LaborCodeID: in.LaborCodeID,
		Description: in.Description,
	}
}

func (s *Service) ownerFor(caller identity.Caller, requested uint) (uint, error) {
	if !caller.Valid() {
		return 0, apperr.InsufficientAccess("anonymous caller")
	}
	if requested == 0 || requested == caller.UserID {
		return caller.UserID, nil
	}
	if !caller.Elevated {
		return 0, apperr.InsufficientAccess("entries of user %d", requested)
	}
	return requested, nil
}

//
// СОЗДАНИЕ
//

func (s *Service) Create(ctx context.Context, caller identity.Caller, in Input) (*models.TimeEntry, error) {
	owner, err := s.ownerFor(caller, in.UserID)
	if err != nil {
		return nil, err
	}

	te := models.TimeEntry{EntryFields: in.fields(owner)}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validate(tx, te.EntryFields); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&te).Error; err != nil {
			return err
		}
		_, err := s.Audit.Record(tx, te.ID, nil, &te.EntryFields, caller.UserID)
		return err
	})
	if err != nil {
		return nil, apperr.Classify("create entry", err)
	}

	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("entry created",
		"entry_id", te.ID, "owner_id", owner, "project_id", te.ProjectID)
	return &te, nil
}

//
// ИЗМЕНЕНИЕ
//

// Update replaces every field of the entry with in. Concurrent updates are
// last-write-wins; each one still leaves its own audit record.
func (s *Service) Update(ctx context.Context, caller identity.Caller, id uint, in Input) (*models.TimeEntry, error) {
	var te models.TimeEntry
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := load(tx, caller, id, &te); err != nil {
			return err
		}
		before := te.EntryFields

		owner := before.UserID
		if in.UserID != 0 && in.UserID != owner {
			var err error
			if owner, err = s.ownerFor(caller, in.UserID); err != nil {
				return err
			}
		}
		after := in.fields(owner)
		if before.Equal(after) {
			return apperr.Validation("update of entry %d changes nothing", id)
		}
		if err := checkLock(tx, before); err != nil {
			return err
		}
		if err := validate(tx, after); err != nil {
			return err
		}

		te.EntryFields = after
		if err := tx.Omit(clause.Associations).Save(&te).Error; err != nil {
			return err
		}
		_, err := s.Audit.Record(tx, te.ID, &before, &after, caller.UserID)
		return err
	})
	if err != nil {
		return nil, apperr.Classify("update entry", err)
	}

	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("entry updated", "entry_id", te.ID)
	return &te, nil
}

//
// УДАЛЕНИЕ
//

func (s *Service) Delete(ctx context.Context, caller identity.Caller, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var te models.TimeEntry
		if err := load(tx, caller, id, &te); err != nil {
			return err
		}
		before := te.EntryFields
		if err := checkLock(tx, before); err != nil {
			return err
		}
		if err := tx.Delete(&models.TimeEntry{}, te.ID).Error; err != nil {
			return err
		}
		_, err := s.Audit.Record(tx, te.ID, &before, nil, caller.UserID)
		return err
	})
	if err != nil {
		return apperr.Classify("delete entry", err)
	}

	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("entry deleted", "entry_id", id)
	return nil
}

//
// ЧТЕНИЕ
//

func (s *Service) Get(ctx context.Context, caller identity.Caller, id uint) (*models.TimeEntry, error) {
	var te models.TimeEntry
	if err := load(s.DB.WithContext(ctx), caller, id, &te); err != nil {
		return nil, err
	}
	return &te, nil
}

// ListByOwner returns the entries of ownerID (the caller when zero), newest
// day first.
func (s *Service) ListByOwner(ctx context.Context, caller identity.Caller, ownerID uint) ([]models.TimeEntry, error) {
	owner, err := s.ownerFor(caller, ownerID)
	if err != nil {
		return nil, err
	}
	var out []models.TimeEntry
	err = s.DB.WithContext(ctx).
		Where("user_id = ?", owner).
		Order("date desc, id asc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("list entries", err)
	}
	return out, nil
}

// History returns the audit trail of an entry, including deleted ones.
// Non-elevated callers only see entries they owned at some point.
func (s *Service) History(ctx context.Context, caller identity.Caller, id uint) ([]models.ChangeAuditRecord, error) {
	recs, err := audit.History(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, apperr.Persistence("load history", err)
	}
	if len(recs) == 0 {
		return nil, apperr.NotFound("entry", id)
	}
	if !caller.Elevated && !ownedBy(recs, caller.UserID) {
		return nil, apperr.InsufficientAccess("history of entry %d", id)
	}
	return recs, nil
}

func ownedBy(recs []models.ChangeAuditRecord, userID uint) bool {
	for _, rec := range recs {
		for _, snap := range []models.EntrySnapshot{rec.Old, rec.New} {
			if snap.UserID != nil && *snap.UserID == userID {
				return true
			}
		}
	}
	return false
}

//
// ПРОВЕРКИ
//

func load(db *gorm.DB, caller identity.Caller, id uint, te *models.TimeEntry) error {
	if err := db.First(te, id).Error; err != nil {
		return apperr.FromStore("entry", id, err)
	}
	if !caller.CanModify(te.UserID) {
		return apperr.InsufficientAccess("entry %d belongs to another user", id)
	}
	return nil
}

// validate checks references, the minutes partition and the lock date of
// the state an entry is about to take.
func validate(tx *gorm.DB, f models.EntryFields) error {
	if f.Date.IsZero() {
		return apperr.Validation("date is required")
	}

	var user models.User
	if err := tx.Select("id").First(&user, f.UserID).Error; err != nil {
		return apperr.FromStore("user", f.UserID, err)
	}

	project, err := loadProject(tx, f.ProjectID)
	if err != nil {
		return err
	}
	if project.Locked(f.Date) {
		return lockedErr(project, f.Date)
	}

	if f.TaskID != nil {
		ok, err := reference.TaskAllowed(tx, f.ProjectID, *f.TaskID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Validation("task %d is not assigned to project %d", *f.TaskID, f.ProjectID)
		}
	}

	if f.LaborCodeID != nil {
		var lc models.LaborCode
		if err := tx.First(&lc, *f.LaborCodeID).Error; err != nil {
			return apperr.FromStore("labor code", *f.LaborCodeID, err)
		}
	}

	cfg, err := reference.LoadConfiguration(tx)
	if err != nil {
		return err
	}
	if !timecalc.AlignedMinutes(f.Minutes, cfg.MinutesPartition) {
		return apperr.Validation("minutes %d must be below 60 and a multiple of %d", f.Minutes, cfg.MinutesPartition)
	}
	return nil
}

// checkLock rejects changes to an entry whose current date is locked.
func checkLock(tx *gorm.DB, f models.EntryFields) error {
	project, err := loadProject(tx, f.ProjectID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if project.Locked(f.Date) {
		return lockedErr(project, f.Date)
	}
	return nil
}

func loadProject(tx *gorm.DB, id uint) (*models.Project, error) {
	var p models.Project
	if err := tx.First(&p, id).Error; err != nil {
		return nil, apperr.FromStore("project", id, err)
	}
	return &p, nil
}

func lockedErr(p *models.Project, day time.Time) error {
	return apperr.Validation("project %q is locked through %s, entry dated %s",
		p.Name, p.LockDate.Format(timecalc.DayLayout), day.Format(timecalc.DayLayout))
}
