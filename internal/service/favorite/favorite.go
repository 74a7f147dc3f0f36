// Package favorite stores named (project, task, labor code) shortcuts.
package favorite

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
	"time-ledger/internal/service/reference"
)

type Service struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log.Named("favorite")}
}

type Input struct {
	Name        string
	ProjectID   uint
	TaskID      *uint
	LaborCodeID *uint
}

// validate checks the references a favorite points at. Names compare
// exactly, so "Daily" and "daily" are two favorites.
func (in Input) validate(tx *gorm.DB) (string, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return "", apperr.Validation("favorite name must not be empty")
	}

	var p models.Project
	if err := tx.First(&p, in.ProjectID).Error; err != nil {
		return "", apperr.FromStore("project", in.ProjectID, err)
	}
	if in.TaskID != nil {
		ok, err := reference.TaskAllowed(tx, in.ProjectID, *in.TaskID)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", apperr.Validation("task %d is not assigned to project %d", *in.TaskID, in.ProjectID)
		}
	}
	if in.LaborCodeID != nil {
		var lc models.LaborCode
		if err := tx.First(&lc, *in.LaborCodeID).Error; err != nil {
			return "", apperr.FromStore("labor code", *in.LaborCodeID, err)
		}
	}
	return name, nil
}

func nameTaken(tx *gorm.DB, ownerID uint, name string, exceptID uint) (bool, error) {
	var count int64
	err := tx.Model(&models.FavoriteTemplate{}).
		Where("owner_id = ? AND name = ? AND id <> ?", ownerID, name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func duplicate(err error, name string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperr.DuplicateFavorite(name)
	}
	return err
}

//
// CRUD
//

func (s *Service) Create(ctx context.Context, caller identity.Caller, in Input) (*models.FavoriteTemplate, error) {
	if !caller.Valid() {
		return nil, apperr.InsufficientAccess("anonymous caller")
	}

	var fav models.FavoriteTemplate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		name, err := in.validate(tx)
		if err != nil {
			return err
		}
		taken, err := nameTaken(tx, caller.UserID, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.DuplicateFavorite(name)
		}
		fav = models.FavoriteTemplate{
			OwnerID:     caller.UserID,
			Name:        name,
			ProjectID:   in.ProjectID,
			TaskID:      in.TaskID,
			LaborCodeID: in.LaborCodeID,
		}
		return tx.Create(&fav).Error
	})
	if err != nil {
		return nil, apperr.Classify("create favorite", duplicate(err, strings.TrimSpace(in.Name)))
	}

	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("favorite created", "favorite_id", fav.ID, "name", fav.Name)
	return &fav, nil
}

func (s *Service) Update(ctx context.Context, caller identity.Caller, id uint, in Input) (*models.FavoriteTemplate, error) {
	var fav models.FavoriteTemplate
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := load(tx, caller, id, &fav); err != nil {
			return err
		}
		name, err := in.validate(tx)
		if err != nil {
			return err
		}
		taken, err := nameTaken(tx, fav.OwnerID, name, fav.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.DuplicateFavorite(name)
		}
		fav.Name = name
		fav.ProjectID = in.ProjectID
		fav.TaskID = in.TaskID
		fav.LaborCodeID = in.LaborCodeID
		return tx.Save(&fav).Error
	})
	if err != nil {
		return nil, apperr.Classify("update favorite", duplicate(err, strings.TrimSpace(in.Name)))
	}
	return &fav, nil
}

func (s *Service) Delete(ctx context.Context, caller identity.Caller, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var fav models.FavoriteTemplate
		if err := load(tx, caller, id, &fav); err != nil {
			return err
		}
		return tx.Delete(&fav).Error
	})
	if err != nil {
		return apperr.Classify("delete favorite", err)
	}
	s.Log.WithContext(ctx).WithUser(caller.UserID).Info("favorite deleted", "favorite_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, caller identity.Caller, id uint) (*models.FavoriteTemplate, error) {
	var fav models.FavoriteTemplate
	if err := load(s.DB.WithContext(ctx), caller, id, &fav); err != nil {
		return nil, err
	}
	return &fav, nil
}

func (s *Service) List(ctx context.Context, caller identity.Caller) ([]models.FavoriteTemplate, error) {
	var out []models.FavoriteTemplate
	err := s.DB.WithContext(ctx).
		Where("owner_id = ?", caller.UserID).
		Order("name asc").
		Find(&out).Error
	if err != nil {
		return nil, apperr.Persistence("list favorites", err)
	}
	return out, nil
}

// load distinguishes a missing favorite (NotFound) from someone else's
// (InsufficientAccess). Elevated callers may touch any favorite.
func load(db *gorm.DB, caller identity.Caller, id uint, fav *models.FavoriteTemplate) error {
	if err := db.First(fav, id).Error; err != nil {
		return apperr.FromStore("favorite", id, err)
	}
	if !caller.CanModify(fav.OwnerID) {
		return apperr.InsufficientAccess("favorite %d belongs to another user", id)
	}
	return nil
}
