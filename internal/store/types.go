package store

import (
	"io"
	"time"

	"yardgate-backend/internal/model"
)

// Placement rules recorded in the audit trail.
const (
	RuleAutoLastAvailable = "AUTO_LAST_AVAILABLE"
	RuleManualExact       = "MANUAL_EXACT"
)

// PlacementOrigin distinguishes where a MOVE came from; it selects the audit
// action and the movement note.
type PlacementOrigin string

const (
	OriginBlockUI  PlacementOrigin = "BLOCK_UI"
	OriginDragDrop PlacementOrigin = "DRAG_DROP"
)

// SlotRequest is an explicit (depth_row, tier) chosen by the operator.
type SlotRequest struct {
	DepthRow int
	Tier     int
}

// PlacedSlot is where a container ended up.
type PlacedSlot struct {
	BayCode  string `json:"bay_code"`
	DepthRow int    `json:"depth_row"`
	Tier     int    `json:"tier"`
}

// PhotoUpload carries one photo from a multipart request into the store.
type PhotoUpload struct {
	Reader      io.Reader
	Size        int64
	Filename    string
	ContentType string
	PhotoType   string
}

// GateInRequest is the full arrival payload.
type GateInRequest struct {
	ContainerCode string
	Size          string
	Year          *int
	StatusNotes   string

	DriverName  string
	DriverIDDoc string
	TruckPlate  string

	BlockCode string
	BayNumber int
	Manual    *SlotRequest

	Photos []PhotoUpload
}

// GateInResult reports the arrival outcome.
type GateInResult struct {
	ContainerID int64
	MovementID  int64
	Slot        PlacedSlot
}

// GateOutRequest is the departure payload.
type GateOutRequest struct {
	ContainerID int64

	DriverName  string
	DriverIDDoc string
	TruckPlate  string
	Notes       string

	Photos []PhotoUpload
}

// GateOutResult reports the departure outcome, including the slot the
// container left (zero-valued when it had no recorded position).
type GateOutResult struct {
	ContainerCode string
	MovementID    int64
	From          PlacedSlot
}

// ContainerInYard is one row of the yard-map tray listing.
type ContainerInYard struct {
	ID          int64      `json:"id"`
	Code        string     `json:"code"`
	Size        string     `json:"size"`
	Year        *int       `json:"year"`
	StatusNotes string     `json:"status_notes"`
	Position    PlacedSlot `json:"position"`
}

// BaySummary is one bay in the block map / availability views.
type BaySummary struct {
	ID           int64  `json:"id"`
	Code         string `json:"code"`
	BayNumber    int    `json:"bay_number"`
	Used         int    `json:"used"`
	Capacity     int    `json:"capacity"`
	Free         int    `json:"free"`
	Available    bool   `json:"available"`
	MaxDepthRows int    `json:"max_depth_rows"`
	MaxTiers     int    `json:"max_tiers"`
	X            int    `json:"x"`
	Y            int    `json:"y"`
	W            int    `json:"w"`
	H            int    `json:"h"`
}

// RowAvailability describes one depth row of a bay.
type RowAvailability struct {
	Row           int  `json:"row"`
	LevelsUsed    int  `json:"levels_used"`
	MaxLevels     int  `json:"max_levels"`
	IsFull        bool `json:"is_full"`
	SuggestedTier *int `json:"suggested_tier"`
}

// StackedContainer is a container within a bay (or a single row of it).
type StackedContainer struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Size     string `json:"size"`
	DepthRow int    `json:"depth_row"`
	Tier     int    `json:"tier"`
}

// InventoryFilter narrows the inventory listing.
type InventoryFilter struct {
	InYard     *bool
	CodeSearch string
}

// InventoryRow is one container in the inventory listing, with its current
// position when it has one.
type InventoryRow struct {
	ID          int64       `json:"id"`
	Code        string      `json:"code"`
	Size        string      `json:"size"`
	Year        *int        `json:"year"`
	StatusNotes string      `json:"status_notes"`
	IsInYard    bool        `json:"is_in_yard"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Position    *PlacedSlot `json:"position"`
}

// ReportFilter selects movements for the reports views.
type ReportFilter struct {
	MovementType string
	From         time.Time
	To           time.Time
}

// ReportRow is one movement joined with its container.
type ReportRow struct {
	Movement      model.Movement `json:"movement"`
	ContainerCode string         `json:"container_code"`
}

// EnqueueRequest creates one print job.
type EnqueueRequest struct {
	PayloadText   string
	TicketID      *int64
	RequestedBy   string
	RequestOrigin string
}

// ClaimedJob is the minimal view handed to the print agent.
type ClaimedJob struct {
	ID          int64  `json:"id"`
	PayloadText string `json:"payload_text"`
}

// TicketResult is a rendered ticket plus its print bookkeeping.
type TicketResult struct {
	TicketPrintID int64  `json:"ticket_print_id"`
	PrintJobID    int64  `json:"print_job_id"`
	MovementID    int64  `json:"movement_id"`
	ContainerCode string `json:"container_code"`
	Payload       string `json:"payload"`
	IsReprint     bool   `json:"is_reprint"`
}
