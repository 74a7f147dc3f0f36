package models

import "time"

type UpdateKind string

const (
	KindCreated UpdateKind = "created"
	KindUpdated UpdateKind = "updated"
	KindDeleted UpdateKind = "deleted"
)

// EntrySnapshot: одна группа значений (old или new) в журнале изменений.
// Все колонки nullable: пустая группа = записи не было (или она удалена).
type EntrySnapshot struct {
	Hours       *uint8     `json:"hours,omitempty"`
	Minutes     *uint8     `json:"minutes,omitempty"`
	Date        *time.Time `gorm:"type:date" json:"date,omitempty"`
	UserID      *uint      `json:"user_id,omitempty"`
	ProjectID   *uint      `json:"project_id,omitempty"`
	TaskID      *uint      `json:"task_id,omitempty"`
	LaborCodeID *uint      `json:"labor_code_id,omitempty"`
	Description *string    `gorm:"type:text" json:"description,omitempty"`
}

func SnapshotOf(f *EntryFields) EntrySnapshot {
	if f == nil {
		return EntrySnapshot{}
	}
	hours, minutes, date := f.Hours, f.Minutes, f.Date
	userID, projectID, desc := f.UserID, f.ProjectID, f.Description
	return EntrySnapshot{
		Hours:       &hours,
		Minutes:     &minutes,
		Date:        &date,
		UserID:      &userID,
		ProjectID:   &projectID,
		TaskID:      copyID(f.TaskID),
		LaborCodeID: copyID(f.LaborCodeID),
		Description: &desc,
	}
}

// Empty reports whether the group is absent. Hours, minutes, date, user and
// project are never null in a populated group.
func (s EntrySnapshot) Empty() bool {
	return s.Hours == nil && s.Minutes == nil && s.Date == nil &&
		s.UserID == nil && s.ProjectID == nil && s.TaskID == nil &&
		s.LaborCodeID == nil && s.Description == nil
}

// Fields returns nil for an empty group.
func (s EntrySnapshot) Fields() *EntryFields {
	if s.Empty() {
		return nil
	}
	f := &EntryFields{
		TaskID:      copyID(s.TaskID),
		LaborCodeID: copyID(s.LaborCodeID),
	}
	if s.Hours != nil {
		f.Hours = *s.Hours
	}
	if s.Minutes != nil {
		f.Minutes = *s.Minutes
	}
	if s.Date != nil {
		f.Date = *s.Date
	}
	if s.UserID != nil {
		f.UserID = *s.UserID
	}
	if s.ProjectID != nil {
		f.ProjectID = *s.ProjectID
	}
	if s.Description != nil {
		f.Description = *s.Description
	}
	return f
}

func copyID(id *uint) *uint {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// ChangeAuditRecord: неизменяемая пара снимков до/после для одной операции
// над TimeEntry. Запись переживает удаление самой TimeEntry.
type ChangeAuditRecord struct {
	ID          uint `gorm:"primaryKey" json:"id"`
	TimeEntryID uint `gorm:"not null;index" json:"time_entry_id"`

	Old EntrySnapshot `gorm:"embedded;embeddedPrefix:old_" json:"old"`
	New EntrySnapshot `gorm:"embedded;embeddedPrefix:new_" json:"new"`

	Kind      UpdateKind `gorm:"type:varchar(16);not null" json:"kind"`
	ChangedAt time.Time  `gorm:"autoCreateTime;not null;index" json:"changed_at"`

	ActorID uint `gorm:"not null;index" json:"actor_id"`
	Actor   User `gorm:"foreignKey:ActorID" json:"-"`
}

func (ChangeAuditRecord) TableName() string { return "change_audit_records" }
