package model

import "time"

// TicketPrint stores the exact payload of a printed ticket so a reprint
// reproduces the original byte for byte.
type TicketPrint struct {
	ID         int64     `gorm:"primaryKey"`
	MovementID int64     `gorm:"index;not null"`
	PrintedAt  time.Time `gorm:"not null"`
	PrintedBy  string    `gorm:"size:120"`

	TicketPayload string `gorm:"type:text;not null"`

	// Associations
	Movement Movement `gorm:"foreignKey:MovementID"`
}
