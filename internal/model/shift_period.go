package model

import "time"

// ShiftPeriod 已归档的排班窗口，对应 shift_periods
type ShiftPeriod struct {
	PeriodID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"period_id"`
	GroupID     string    `gorm:"type:uuid;not null"                             json:"group_id"`
	StartDate   Date      `gorm:"type:date;not null"                             json:"start_date"`
	Days        int       `gorm:"not null"                                       json:"days"`
	SnapshotKey string    `gorm:"type:varchar(255);not null;default:''"          json:"snapshot_key,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

func (ShiftPeriod) TableName() string { return "shift_periods" }
