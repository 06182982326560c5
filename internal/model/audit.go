package model

import "time"

// AuditLog is an append-only trail entry. Meta holds a JSON document.
type AuditLog struct {
	ID int64 `gorm:"primaryKey"`

	At    time.Time `gorm:"index;not null"`
	Actor string    `gorm:"size:120"`

	Action     string `gorm:"size:50;not null"`
	EntityType string `gorm:"size:50"`
	EntityID   *int64

	Meta string `gorm:"type:text"`
}
