package models

import (
	"time"
)

// AuditLog represents a system audit entry
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	GymID     *uint     `gorm:"index" json:"gym_id"`
	Action    string    `gorm:"size:50;not null" json:"action"` // CREATE, RENEW, FREEZE, CANCEL, RECONCILE
	Entity    string    `gorm:"size:50;not null" json:"entity"`
	EntityID  uint      `json:"entity_id"`
	Details   string    `gorm:"type:text" json:"details"`
	IPAddress string    `gorm:"size:45" json:"ip_address"`
	UserAgent string    `gorm:"size:255" json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit action constants
const (
	AuditActionCreate    = "CREATE"
	AuditActionRenew     = "RENEW"
	AuditActionFreeze    = "FREEZE"
	AuditActionCancel    = "CANCEL"
	AuditActionReconcile = "RECONCILE"
)
