package store

import "errors"

// Validation and lookup failures surfaced to API callers. Each maps to a
// distinct HTTP outcome in the handlers; none are coerced to a generic 500.
var (
	ErrInvalidBlock         = errors.New("invalid block")
	ErrInvalidBay           = errors.New("invalid bay")
	ErrOutOfRange           = errors.New("row/tier out of range")
	ErrSlotOccupied         = errors.New("slot occupied")
	ErrBayFull              = errors.New("bay full")
	ErrRowFull              = errors.New("row full")
	ErrInvalidContainerCode = errors.New("invalid container code")
	ErrInvalidSize          = errors.New("invalid container size")
	ErrInvalidYear          = errors.New("invalid container year")
	ErrContainerInYard      = errors.New("container already in yard")
	ErrContainerNotInYard   = errors.New("container not in yard")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrInvalidPayload       = errors.New("payload text required")
	ErrNotFound             = errors.New("not found")
)
