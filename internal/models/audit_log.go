package models

import "time"

type AuditAction string

const (
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
)

type AuditLog struct {
	ID       uint   `gorm:"primaryKey"`
	UserID   uint   `gorm:"index;not null"`
	UserName string `gorm:"size:100;not null"`

	EntityType  string      `gorm:"size:50;index;not null"` // "feedback" | "branch"
	EntityID    uint        `gorm:"index;not null"`
	Action      AuditAction `gorm:"size:20;not null"`
	Description string      `gorm:"size:255"`

	// Değişiklik öncesi/sonrası JSON
	BeforeData string `gorm:"type:text"`
	AfterData  string `gorm:"type:text"`

	CreatedAt time.Time
}
