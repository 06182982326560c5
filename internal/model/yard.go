package model

import "time"

// YardBlock represents one lettered block of the yard (A..D).
type YardBlock struct {
	ID        int64     `gorm:"primaryKey"`
	Code      string    `gorm:"uniqueIndex;size:1;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Bays []YardBay `gorm:"foreignKey:BlockID"`
}

// YardBay represents a rectangular bank of slots inside a block.
// Capacity is max_depth_rows * max_tiers.
type YardBay struct {
	ID        int64  `gorm:"primaryKey"`
	BlockID   int64  `gorm:"index;not null"`
	BayNumber int    `gorm:"not null"`                    // 1..15 within the block
	Code      string `gorm:"uniqueIndex;size:3;not null"` // A01..D15

	MaxDepthRows int `gorm:"not null;default:20"`
	MaxTiers     int `gorm:"not null;default:4"`

	// Map layout rectangle for the frontend yard map.
	X int `gorm:"not null;default:0"`
	Y int `gorm:"not null;default:0"`
	W int `gorm:"not null;default:50"`
	H int `gorm:"not null;default:50"`

	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	// Associations
	Block YardBlock `gorm:"constraint:OnDelete:CASCADE"`
}

// Capacity returns the total number of slots in the bay.
func (b *YardBay) Capacity() int {
	return b.MaxDepthRows * b.MaxTiers
}
