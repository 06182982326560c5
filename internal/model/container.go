package model

import "time"

// Container sizes accepted at the gate.
var ContainerSizes = []string{"20ST", "40ST", "40HC", "45ST"}

// Container is the external container record. Code format: AAAA-000000-0.
type Container struct {
	ID          int64     `gorm:"primaryKey"`
	Code        string    `gorm:"uniqueIndex;size:13;not null"`
	Size        string    `gorm:"size:10;not null"`
	Year        *int
	StatusNotes string    `gorm:"type:text"`
	IsInYard    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`

	// Associations
	Position  *ContainerPosition `gorm:"foreignKey:ContainerID"`
	Movements []Movement         `gorm:"foreignKey:ContainerID"`
}

// ContainerPosition binds a container to its current slot. The container_id
// primary key keeps at most one position per container; the composite unique
// index keeps at most one container per slot, backing the in-lock occupancy
// check with a real constraint.
type ContainerPosition struct {
	ContainerID int64 `gorm:"primaryKey"`
	BayID       int64 `gorm:"not null;uniqueIndex:idx_slot"`
	DepthRow    int   `gorm:"not null;uniqueIndex:idx_slot"`
	Tier        int   `gorm:"not null;uniqueIndex:idx_slot"`

	PlacedAt time.Time `gorm:"not null"`
	PlacedBy string    `gorm:"size:120"`

	// Associations
	Bay YardBay `gorm:"foreignKey:BayID"`
}
