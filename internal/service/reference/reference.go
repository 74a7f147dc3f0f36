// Package reference manages projects, tasks, labor codes and the
// installation-wide configuration row.
package reference

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"time-ledger/internal/apperr"
	"time-ledger/internal/identity"
	"time-ledger/internal/logger"
	"time-ledger/internal/models"
	"time-ledger/internal/timecalc"
)

type Service struct {
	DB  *gorm.DB
	Log *logger.Logger
}

func NewService(db *gorm.DB, log *logger.Logger) *Service {
	return &Service{DB: db, Log: log.Named("reference")}
}

func requireElevated(caller identity.Caller, action string) error {
	if !caller.Elevated {
		return apperr.InsufficientAccess("%s requires elevated rights", action)
	}
	return nil
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("name must not be empty")
	}
	return name, nil
}

//
// ПРОЕКТЫ
//

// ProjectInput: поля проекта. LockDate == nil снимает блокировку.
type ProjectInput struct {
	Name     string
	Rate     decimal.Decimal
	LockDate *time.Time
}

func validRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return apperr.Validation("rate must not be negative")
	}
	if !rate.Equal(rate.Round(2)) {
		return apperr.Validation("rate %s: at most two decimal places", rate)
	}
	return nil
}

func (s *Service) CreateProject(ctx context.Context, caller identity.Caller, in ProjectInput) (*models.Project, error) {
	if err := requireElevated(caller, "create project"); err != nil {
		return nil, err
	}
	name, err := cleanName(in.Name)
	if err != nil {
		return nil, err
	}
	if err := validRate(in.Rate); err != nil {
		return nil, err
	}

	p := models.Project{Name: name, Rate: in.Rate}
	if in.LockDate != nil {
		d := timecalc.Day(*in.LockDate)
		p.LockDate = &d
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Project{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.NameConflict(name)
		}
		return tx.Create(&p).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.NameConflict(name)
	}
	if err != nil {
		return nil, apperr.Classify("create project", err)
	}

	s.Log.WithContext(ctx).Info("project created", "project_id", p.ID, "name", p.Name)
	return &p, nil
}

// UpdateProject меняет ставку и дату блокировки.
func (s *Service) UpdateProject(ctx context.Context, caller identity.Caller, id uint, in ProjectInput) (*models.Project, error) {
	if err := requireElevated(caller, "update project"); err != nil {
		return nil, err
	}
	if err := validRate(in.Rate); err != nil {
		return nil, err
	}

	var p models.Project
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&p, id).Error; err != nil {
			return apperr.FromStore("project", id, err)
		}
		p.Rate = in.Rate
		p.LockDate = nil
		if in.LockDate != nil {
			d := timecalc.Day(*in.LockDate)
			p.LockDate = &d
		}
		return tx.Model(&p).Select("rate", "lock_date").Updates(&p).Error
	})
	if err != nil {
		return nil, apperr.Classify("update project", err)
	}

	s.Log.WithContext(ctx).Info("project updated", "project_id", p.ID, "rate", p.Rate.String())
	return &p, nil
}

func (s *Service) GetProject(ctx context.Context, id uint) (*models.Project, error) {
	var p models.Project
	if err := s.DB.WithContext(ctx).Preload("Tasks").First(&p, id).Error; err != nil {
		return nil, apperr.FromStore("project", id, err)
	}
	return &p, nil
}

func (s *Service) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out []models.Project
	if err := s.DB.WithContext(ctx).Preload("Tasks").Order("name asc").Find(&out).Error; err != nil {
		return nil, apperr.Persistence("list projects", err)
	}
	return out, nil
}

//
// ЗАДАЧИ И СВЯЗИ С ПРОЕКТАМИ
//

func (s *Service) CreateTask(ctx context.Context, caller identity.Caller, name string) (*models.Task, error) {
	if err := requireElevated(caller, "create task"); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	t := models.Task{Name: name}
	if err := s.DB.WithContext(ctx).Create(&t).Error; err != nil {
		return nil, apperr.Persistence("create task", err)
	}
	return &t, nil
}

func (s *Service) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, apperr.Persistence("list tasks", err)
	}
	return out, nil
}

// AssignTask разрешает задачу для проекта. Повторное назначение ничего не меняет.
func (s *Service) AssignTask(ctx context.Context, caller identity.Caller, projectID, taskID uint) error {
	if err := requireElevated(caller, "assign task"); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, t, err := loadPair(tx, projectID, taskID)
		if err != nil {
			return err
		}
		ok, err := TaskAllowed(tx, projectID, taskID)
		if err != nil || ok {
			return err
		}
		return tx.Model(p).Association("Tasks").Append(t)
	})
	return apperr.Classify("assign task", err)
}

// UnassignTask снимает связь. Уже созданные записи времени не трогаются.
func (s *Service) UnassignTask(ctx context.Context, caller identity.Caller, projectID, taskID uint) error {
	if err := requireElevated(caller, "unassign task"); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, t, err := loadPair(tx, projectID, taskID)
		if err != nil {
			return err
		}
		return tx.Model(p).Association("Tasks").Delete(t)
	})
	return apperr.Classify("unassign task", err)
}

func loadPair(tx *gorm.DB, projectID, taskID uint) (*models.Project, *models.Task, error) {
	var p models.Project
	if err := tx.First(&p, projectID).Error; err != nil {
		return nil, nil, apperr.FromStore("project", projectID, err)
	}
	var t models.Task
	if err := tx.First(&t, taskID).Error; err != nil {
		return nil, nil, apperr.FromStore("task", taskID, err)
	}
	return &p, &t, nil
}

// TaskAllowed reports whether taskID is associated with projectID.
func TaskAllowed(db *gorm.DB, projectID, taskID uint) (bool, error) {
	var count int64
	err := db.Table("project_tasks").
		Where("project_id = ? AND task_id = ?", projectID, taskID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

//
// КОДЫ ТРУДОЗАТРАТ
//

func (s *Service) CreateLaborCode(ctx context.Context, caller identity.Caller, name string) (*models.LaborCode, error) {
	if err := requireElevated(caller, "create labor code"); err != nil {
		return nil, err
	}
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}

	lc := models.LaborCode{Name: name}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.LaborCode{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperr.NameConflict(name)
		}
		return tx.Create(&lc).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperr.NameConflict(name)
	}
	if err != nil {
		return nil, apperr.Classify("create labor code", err)
	}
	return &lc, nil
}

func (s *Service) ListLaborCodes(ctx context.Context) ([]models.LaborCode, error) {
	var out []models.LaborCode
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, apperr.Persistence("list labor codes", err)
	}
	return out, nil
}

//
// КОНФИГУРАЦИЯ
//

// LoadConfiguration reads the singleton row, falling back to defaults when
// it was never written.
func LoadConfiguration(db *gorm.DB) (models.Configuration, error) {
	var cfg models.Configuration
	err := db.First(&cfg, models.ConfigurationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultConfiguration(), nil
	}
	if err != nil {
		return models.Configuration{}, apperr.Persistence("load configuration", err)
	}
	return cfg, nil
}

func (s *Service) Config(ctx context.Context) (models.Configuration, error) {
	return LoadConfiguration(s.DB.WithContext(ctx))
}

func (s *Service) UpdateConfig(ctx context.Context, caller identity.Caller, partition uint8, firstDay time.Weekday) (models.Configuration, error) {
	if err := requireElevated(caller, "update configuration"); err != nil {
		return models.Configuration{}, err
	}
	if !timecalc.ValidPartition(partition) {
		return models.Configuration{}, apperr.Validation("minutes partition %d must divide 60", partition)
	}
	if firstDay < time.Sunday || firstDay > time.Saturday {
		return models.Configuration{}, apperr.Validation("first day of week %d out of range", firstDay)
	}

	cfg := models.Configuration{
		ID:               models.ConfigurationID,
		MinutesPartition: partition,
		FirstDayOfWeek:   firstDay,
	}
	if err := s.DB.WithContext(ctx).Save(&cfg).Error; err != nil {
		return models.Configuration{}, apperr.Persistence("update configuration", err)
	}

	s.Log.WithContext(ctx).Info("configuration updated",
		"minutes_partition", partition,
		"first_day_of_week", firstDay.String(),
	)
	return cfg, nil
}
