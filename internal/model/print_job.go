package model

import "time"

// Print job statuses. Transitions are monotonic:
// PENDING -> CLAIMED -> DONE | FAILED. FAILED is terminal; a CLAIMED job
// whose lease expired may be claimed again (it never goes back to PENDING).
const (
	PrintStatusPending = "PENDING"
	PrintStatusClaimed = "CLAIMED"
	PrintStatusDone    = "DONE"
	PrintStatusFailed  = "FAILED"
)

// PrintJob is a durable work item for the remote print agent.
type PrintJob struct {
	ID        int64     `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index;not null"`

	Status string `gorm:"size:16;not null;default:PENDING;index"`

	TicketID *int64

	PayloadText string `gorm:"type:text;not null"`

	RequestedBy   string `gorm:"size:120"`
	RequestOrigin string `gorm:"size:120"`

	ClaimedBy string `gorm:"size:120"`
	ClaimedAt *time.Time

	PrintedAt *time.Time

	Attempts  int    `gorm:"not null;default:0"`
	LastError string `gorm:"type:text"`
}
