package model

import "time"

// Movement types.
const (
	MovementGateIn  = "GATE_IN"
	MovementGateOut = "GATE_OUT"
	MovementMove    = "MOVE"
)

// Photo types.
const (
	PhotoContainer   = "CONTAINER"
	PhotoDamage      = "DAMAGE"
	PhotoDriverID    = "DRIVER_ID"
	PhotoOther       = "OTHER"
	PhotoUploadError = "UPLOAD_ERROR"
)

// Movement is an immutable gate event. Location fields are a denormalized
// snapshot taken at event time; rows are never updated or deleted.
type Movement struct {
	ID           int64  `gorm:"primaryKey"`
	ContainerID  int64  `gorm:"index;not null"`
	MovementType string `gorm:"size:20;not null"`

	OccurredAt time.Time `gorm:"index;not null"`

	BayCode  string `gorm:"size:3"`
	DepthRow int
	Tier     int

	DriverName  string `gorm:"size:150"`
	DriverIDDoc string `gorm:"size:50"`
	TruckPlate  string `gorm:"size:20"`

	Notes string `gorm:"type:text"`

	CreatedBy string    `gorm:"size:120;not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Photos []MovementPhoto `gorm:"foreignKey:MovementID"`
}

// MovementPhoto references an uploaded photo, or records an upload failure
// (photo_type UPLOAD_ERROR with the error text in place of the URL).
type MovementPhoto struct {
	ID         int64     `gorm:"primaryKey"`
	MovementID int64     `gorm:"index;not null"`
	PhotoType  string    `gorm:"size:30;not null"`
	URL        string    `gorm:"type:text;not null"`
	UploadedAt time.Time `gorm:"not null"`
}
