package entities

import (
	"time"
)

type Setting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"uniqueIndex;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Setting) TableName() string {
	return "settings"
}

// Known setting keys
const (
	// Inventory reconciliation schedule
	SettingKeyReconcileEnabled     = "reconcile_enabled"
	SettingKeyReconcileSchedule    = "reconcile_schedule"
	SettingKeyReconcileLastAt      = "reconcile_last_at"
	SettingKeyReconcileLastStatus  = "reconcile_last_status"
	SettingKeyReconcileLastMessage = "reconcile_last_message"
)
