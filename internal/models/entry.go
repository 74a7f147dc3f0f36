package models

import "time"

// EntryFields: общие поля записи времени; встраивается в TimeEntry
// и в строку результата запроса.
type EntryFields struct {
	Hours       uint8     `gorm:"not null" json:"hours"`
	Minutes     uint8     `gorm:"not null" json:"minutes"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	ProjectID   uint      `gorm:"not null;index" json:"project_id"`
	TaskID      *uint     `gorm:"index" json:"task_id,omitempty"`
	LaborCodeID *uint     `gorm:"index" json:"labor_code_id,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
}

// Equal compares every tracked field. Dates compare by instant.
func (f EntryFields) Equal(o EntryFields) bool {
	return f.Hours == o.Hours &&
		f.Minutes == o.Minutes &&
		f.Date.Equal(o.Date) &&
		f.UserID == o.UserID &&
		f.ProjectID == o.ProjectID &&
		equalID(f.TaskID, o.TaskID) &&
		equalID(f.LaborCodeID, o.LaborCodeID) &&
		f.Description == o.Description
}

func equalID(a, b *uint) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

type TimeEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	EntryFields

	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Project   Project    `gorm:"foreignKey:ProjectID" json:"-"`
	Task      *Task      `gorm:"foreignKey:TaskID" json:"-"`
	LaborCode *LaborCode `gorm:"foreignKey:LaborCodeID" json:"-"`
}
