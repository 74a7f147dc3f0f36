package models

import "time"

type FavoriteTemplate struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OwnerID uint   `gorm:"not null;uniqueIndex:idx_favorite_owner_name,priority:1" json:"owner_id"`
	Name    string `gorm:"size:255;not null;uniqueIndex:idx_favorite_owner_name,priority:2" json:"name"`

	ProjectID   uint  `gorm:"not null" json:"project_id"`
	TaskID      *uint `json:"task_id,omitempty"`
	LaborCodeID *uint `json:"labor_code_id,omitempty"`
}
