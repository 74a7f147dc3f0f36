package models

import "time"

type SavedQuery struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID uint   `gorm:"not null;uniqueIndex:idx_saved_query_owner_name,priority:1" json:"owner_id"`
	Name    string `gorm:"size:255;not null;uniqueIndex:idx_saved_query_owner_name,priority:2" json:"name"`

	// пустой набор = измерение не ограничено
	UserIDs      []uint `gorm:"serializer:json;type:text" json:"user_ids"`
	ProjectIDs   []uint `gorm:"serializer:json;type:text" json:"project_ids"`
	TaskIDs      []uint `gorm:"serializer:json;type:text" json:"task_ids"`
	LaborCodeIDs []uint `gorm:"serializer:json;type:text" json:"labor_code_ids"`

	FromDate    *time.Time `gorm:"type:date" json:"from_date,omitempty"`
	ToDate      *time.Time `gorm:"type:date" json:"to_date,omitempty"`
	Description string     `gorm:"type:text" json:"description"`
}
