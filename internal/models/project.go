package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string          `gorm:"size:255;not null;uniqueIndex" json:"name"`
	Rate decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"rate"`

	// entries dated on or before LockDate can no longer change
	LockDate *time.Time `gorm:"type:date" json:"lock_date,omitempty"`

	Tasks []Task `gorm:"many2many:project_tasks;" json:"tasks,omitempty"`
}

// Locked reports whether an entry dated day falls inside the locked period.
func (p Project) Locked(day time.Time) bool {
	if p.LockDate == nil {
		return false
	}
	return !day.After(*p.LockDate)
}
