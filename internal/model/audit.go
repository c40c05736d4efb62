package model

import (
	"time"

	"gorm.io/datatypes"
)

// AuditEvent is an append-only audit row written by the db audit sink.
type AuditEvent struct {
	EventID    string         `gorm:"primaryKey;size:36;not null"`
	Kind       string         `gorm:"size:64;index;not null"`
	OrderID    string         `gorm:"size:64;index"`
	ProductID  string         `gorm:"size:64"`
	Actor      string         `gorm:"size:256"`
	Metadata   datatypes.JSON `gorm:"type:json"`
	OccurredAt time.Time      `gorm:"index;not null"`
	CreatedAt  time.Time
}
