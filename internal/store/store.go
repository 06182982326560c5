// Package store holds every database operation of the yard service. All
// multi-step writes run inside one gorm transaction; placement additionally
// holds a FOR UPDATE lock on the target bay row for the whole transaction,
// which is what serializes concurrent placements into the same bay.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yardgate-backend/internal/model"
	"yardgate-backend/internal/storage"
	"yardgate-backend/internal/yard"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Topology and occupancy queries.
	ContainersInYard(ctx context.Context) ([]ContainerInYard, error)
	BlockBays(ctx context.Context, blockCode string) ([]BaySummary, error)
	BlockMap(ctx context.Context, blockCode string) ([]BaySummary, error)
	BayDetail(ctx context.Context, bayCode string) ([]StackedContainer, error)
	BaySuggestion(ctx context.Context, bayCode string) (*PlacedSlot, error)
	BayRowsAvailability(ctx context.Context, bayCode string) ([]RowAvailability, error)
	RowSuggestTier(ctx context.Context, bayCode string, row int) (*PlacedSlot, error)
	RowContainers(ctx context.Context, bayCode string, row int) ([]StackedContainer, error)

	// Placement and gate operations.
	PlaceContainer(ctx context.Context, actor string, containerID int64, bayCode string, manual *SlotRequest, origin PlacementOrigin) (*PlacedSlot, error)
	GateIn(ctx context.Context, actor string, req GateInRequest) (*GateInResult, error)
	GateOut(ctx context.Context, actor string, req GateOutRequest) (*GateOutResult, error)

	// Inventory and reports.
	Inventory(ctx context.Context, filter InventoryFilter) ([]InventoryRow, error)
	MovementReport(ctx context.Context, actor string, filter ReportFilter, exported bool) ([]ReportRow, error)

	// Ticketing.
	PrintTicket(ctx context.Context, actor string, movementID int64, origin string) (*TicketResult, error)
	ReprintTicket(ctx context.Context, actor string, printID int64, origin string) (*TicketResult, error)

	// Print job queue.
	EnqueuePrintJob(ctx context.Context, req EnqueueRequest) (int64, error)
	ClaimNextPrintJob(ctx context.Context, deviceID string) (*ClaimedJob, error)
	CompletePrintJob(ctx context.Context, jobID int64, success bool, errText string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db         *gorm.DB
	photos     storage.Storage
	appName    string
	claimLease time.Duration
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, photos storage.Storage, appName string, claimLease time.Duration) Store {
	return &gormStore{
		db:         db,
		photos:     photos,
		appName:    appName,
		claimLease: claimLease,
	}
}

// DB exposes the underlying handle for read-only handler queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// supportsRowLocks reports whether the dialect honors FOR UPDATE clauses.
// sqlite (tests) serializes writers at the database level instead, and the
// claim path falls back to a guarded UPDATE, so correctness holds either way.
func (s *gormStore) supportsRowLocks() bool {
	return s.db.Dialector.Name() == "postgres"
}

// lockBay resolves an active bay by code and locks its row for the rest of
// the transaction.
func (s *gormStore) lockBay(tx *gorm.DB, bayCode string) (*model.YardBay, error) {
	q := tx.Where("code = ? AND is_active = ?", strings.ToUpper(bayCode), true)
	if s.supportsRowLocks() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var bay model.YardBay
	if err := q.First(&bay).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidBay
		}
		return nil, err
	}
	return &bay, nil
}

// lockBayByNumber is the gate-in variant: the operator picks block + bay
// number instead of a bay code.
func (s *gormStore) lockBayByNumber(tx *gorm.DB, blockCode string, bayNumber int) (*model.YardBay, error) {
	var block model.YardBlock
	err := tx.Where("code = ?", strings.ToUpper(blockCode)).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidBlock
	}
	if err != nil {
		return nil, err
	}

	q := tx.Where("block_id = ? AND bay_number = ? AND is_active = ?", block.ID, bayNumber, true)
	if s.supportsRowLocks() {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var bay model.YardBay
	if err := q.First(&bay).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidBay
		}
		return nil, err
	}
	return &bay, nil
}

// occupiedSlots reads the bay's occupancy fresh from current positions.
// Placement decisions always go through this, never through cached counts.
func occupiedSlots(tx *gorm.DB, bayID int64) (map[yard.Slot]bool, error) {
	var positions []model.ContainerPosition
	if err := tx.Select("depth_row", "tier").Where("bay_id = ?", bayID).Find(&positions).Error; err != nil {
		return nil, err
	}

	occupied := make(map[yard.Slot]bool, len(positions))
	for _, p := range positions {
		occupied[yard.Slot{DepthRow: p.DepthRow, Tier: p.Tier}] = true
	}
	return occupied, nil
}

// occupiedTiers reads the occupied tiers of one depth row.
func occupiedTiers(tx *gorm.DB, bayID int64, row int) (map[int]bool, error) {
	var positions []model.ContainerPosition
	if err := tx.Select("tier").Where("bay_id = ? AND depth_row = ?", bayID, row).Find(&positions).Error; err != nil {
		return nil, err
	}

	tiers := make(map[int]bool, len(positions))
	for _, p := range positions {
		tiers[p.Tier] = true
	}
	return tiers, nil
}

// resolveSlot validates a manual slot or computes an automatic one. Called
// with the bay lock held, so the occupancy it sees is the final state.
func (s *gormStore) resolveSlot(tx *gorm.DB, bay *model.YardBay, manual *SlotRequest) (yard.Slot, string, error) {
	if manual != nil {
		if manual.DepthRow < 1 || manual.DepthRow > bay.MaxDepthRows ||
			manual.Tier < 1 || manual.Tier > bay.MaxTiers {
			return yard.Slot{}, "", ErrOutOfRange
		}

		var count int64
		err := tx.Model(&model.ContainerPosition{}).
			Where("bay_id = ? AND depth_row = ? AND tier = ?", bay.ID, manual.DepthRow, manual.Tier).
			Count(&count).Error
		if err != nil {
			return yard.Slot{}, "", err
		}
		if count > 0 {
			return yard.Slot{}, "", ErrSlotOccupied
		}
		return yard.Slot{DepthRow: manual.DepthRow, Tier: manual.Tier}, RuleManualExact, nil
	}

	occupied, err := occupiedSlots(tx, bay.ID)
	if err != nil {
		return yard.Slot{}, "", err
	}
	slot, ok := yard.FirstFreeSlot(bay.MaxDepthRows, bay.MaxTiers, occupied)
	if !ok {
		return yard.Slot{}, "", ErrBayFull
	}
	return slot, RuleAutoLastAvailable, nil
}

// currentPosition returns the container's position with its bay code, or nil.
func currentPosition(tx *gorm.DB, containerID int64) (*PlacedSlot, error) {
	var pos model.ContainerPosition
	err := tx.Preload("Bay").Where("container_id = ?", containerID).First(&pos).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &PlacedSlot{BayCode: pos.Bay.Code, DepthRow: pos.DepthRow, Tier: pos.Tier}, nil
}
