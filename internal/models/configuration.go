package models

import "time"

const (
	ConfigurationID         = 1
	DefaultMinutesPartition = 15
	DefaultFirstDayOfWeek   = time.Monday
)

// Configuration: одна строка на инсталляцию (ID всегда ConfigurationID).
type Configuration struct {
	ID               uint         `gorm:"primaryKey" json:"-"`
	MinutesPartition uint8        `gorm:"not null" json:"minutes_partition"`
	FirstDayOfWeek   time.Weekday `gorm:"not null" json:"first_day_of_week"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		ID:               ConfigurationID,
		MinutesPartition: DefaultMinutesPartition,
		FirstDayOfWeek:   DefaultFirstDayOfWeek,
	}
}
