// Package savedquery stores named filters per owner. A query is only ever
// visible to its owner; everyone else gets NotFound.
package savedquery

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
	"time-ledger/internal/query"
	"time-ledger/internal/timecalc"
)

type Service struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log.Named("savedquery")}
}

// Input is a name plus the filter to store under it.
type Input struct {
	Name   string
	Filter query.Filter
}

func (in Input) apply(q *models.SavedQuery) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return apperr.Validation("query name must not be empty")
	}
	f := in.Filter.Normalize()
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return apperr.Validation("from %s is after to %s",
			f.From.Format(timecalc.DayLayout), f.To.Format(timecalc.DayLayout))
	}

	q.Name = name
	q.UserIDs = f.UserIDs
	q.ProjectIDs = f.ProjectIDs
	q.TaskIDs = f.TaskIDs
	q.LaborCodeIDs = f.LaborCodeIDs
	q.FromDate = f.From
	q.ToDate = f.To
	q.Description = f.Description
	return nil
}

// nameTaken reports whether owner already has another query called name.
func nameTaken(tx *gorm.DB, ownerID uint, name string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.SavedQuery{}).
		Where("owner_id = ? AND name = ? AND id <> ?", ownerID, name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func conflict(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.NameConflict(name)
	}
	return err
}

func (s *Service) Create(ctx context.Context, caller identity.Caller, in Input) (*models.SavedQuery, error) {
	if !caller.Valid() {
		return nil, apperr.InsufficientAccess("anonymous caller")
	}
	q := models.SavedQuery{OwnerID: caller.UserID}
	if err := in.apply(&q); err != nil {
		return nil, err
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := nameTaken(tx, caller.UserID, q.Name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.NameConflict(q.Name)
		}
		return tx.Create(&q).Error
	})
	if err != nil {
		return nil, apperr.Classify("create saved query", conflict(err, q.Name))
	}

	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("saved query created", "query_id", q.ID, "name", q.Name)
	return &q, nil
}

func (s *Service) Update(ctx context.Context, caller identity.Caller, id uint, in Input) (*models.SavedQuery, error) {
	var q models.SavedQuery
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := load(tx, caller, id, &q); err != nil {
			return err
		}
		if err := in.apply(&q); err != nil {
			return err
		}
		taken, err := nameTaken(tx, caller.UserID, q.Name, q.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.NameConflict(q.Name)
		}
		return tx.Save(&q).Error
	})
	if err != nil {
		return nil, apperr.Classify("update saved query", conflict(err, q.Name))
	}
	return &q, nil
}

func (s *Service) Delete(ctx context.Context, caller identity.Caller, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var q models.SavedQuery
		if err := load(tx, caller, id, &q); err != nil {
			return err
		}
		return tx.Delete(&q).Error
	})
	if err != nil {
		return apperr.Classify("delete saved query", err)
	}
	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("saved query deleted", "query_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, caller identity.Caller, id uint) (*models.SavedQuery, error) {
	var q models.SavedQuery
	if err := load(s.DB.WithContext(ctx), caller, id, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns the caller's queries ordered by name.
func (s *Service) List(ctx context.Context, caller identity.Caller) ([]models.SavedQuery, error) {
	var out []models.SavedQuery
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", caller.UserID).
		Order("name asc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("list saved queries", err)
	}
	return out, nil
}

func load(db *gorm.DB, caller identity.Caller, id uint, q *models.SavedQuery) error {
	err := db.Where("id = ? AND owner_id = ?", id, caller.UserID).First(q).Error
	return apperr.FromStore("saved query", id, err)
}
