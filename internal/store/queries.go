package store

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"yardgate-backend/internal/model"
	"yardgate-backend/internal/yard"
)

// ContainersInYard returns every in-yard container with its current position,
// ordered by bay code, then depth row, then tier.
func (s *gormStore) ContainersInYard(ctx context.Context) ([]ContainerInYard, error) {
	type row struct {
		ID          int64
		Code        string
		Size        string
		Year        *int
		StatusNotes string
		BayCode     string
		DepthRow    int
		Tier        int
	}

	var rows []row
	err := s.db.WithContext(ctx).
		Model(&model.Container{}).
		Select("containers.id, containers.code, containers.size, containers.year, containers.status_notes, yard_bays.code AS bay_code, container_positions.depth_row, container_positions.tier").
		Joins("JOIN container_positions ON container_positions.container_id = containers.id").
		Joins("JOIN yard_bays ON yard_bays.id = container_positions.bay_id").
		Where("containers.is_in_yard = ?", true).
		Order("yard_bays.code ASC, container_positions.depth_row ASC, container_positions.tier ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]ContainerInYard, 0, len(rows))
	for _, r := range rows {
		out = append(out, ContainerInYard{
			ID: r.ID, Code: r.Code, Size: r.Size, Year: r.Year, StatusNotes: r.StatusNotes,
			Position: PlacedSlot{BayCode: r.BayCode, DepthRow: r.DepthRow, Tier: r.Tier},
		})
	}
	return out, nil
}

func (s *gormStore) activeBlockBays(ctx context.Context, blockCode string) ([]model.YardBay, error) {
	var block model.YardBlock
	err := s.db.WithContext(ctx).Where("code = ?", strings.ToUpper(blockCode)).First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidBlock
	}
	if err != nil {
		return nil, err
	}

	var bays []model.YardBay
	err = s.db.WithContext(ctx).
		Where("block_id = ? AND is_active = ?", block.ID, true).
		Order("bay_number ASC").
		Find(&bays).Error
	return bays, err
}

// bayUsage aggregates position counts per bay. Display only; placement
// decisions never use these counts.
func (s *gormStore) bayUsage(ctx context.Context) (map[int64]int, error) {
	type agg struct {
		BayID int64
		Used  int
	}
	var aggs []agg
	err := s.db.WithContext(ctx).
		Model(&model.ContainerPosition{}).
		Select("bay_id AS bay_id, COUNT(*) AS used").
		Group("bay_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}

	usage := make(map[int64]int, len(aggs))
	for _, a := range aggs {
		usage[a.BayID] = a.Used
	}
	return usage, nil
}

// BlockBays lists a block's active bays without usage (bay picker).
func (s *gormStore) BlockBays(ctx context.Context, blockCode string) ([]BaySummary, error) {
	bays, err := s.activeBlockBays(ctx, blockCode)
	if err != nil {
		return nil, err
	}

	out := make([]BaySummary, 0, len(bays))
	for _, b := range bays {
		out = append(out, BaySummary{ID: b.ID, Code: b.Code, BayNumber: b.BayNumber})
	}
	return out, nil
}

// BlockMap returns the block's bays with used/capacity and the map layout
// rectangles.
func (s *gormStore) BlockMap(ctx context.Context, blockCode string) ([]BaySummary, error) {
	bays, err := s.activeBlockBays(ctx, blockCode)
	if err != nil {
		return nil, err
	}
	usage, err := s.bayUsage(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]BaySummary, 0, len(bays))
	for _, b := range bays {
		capacity := b.Capacity()
		used := usage[b.ID]
		out = append(out, BaySummary{
			ID:           b.ID,
			Code:         b.Code,
			BayNumber:    b.BayNumber,
			Used:         used,
			Capacity:     capacity,
			Free:         capacity - used,
			Available:    capacity-used > 0,
			MaxDepthRows: b.MaxDepthRows,
			MaxTiers:     b.MaxTiers,
			X:            b.X,
			Y:            b.Y,
			W:            b.W,
			H:            b.H,
		})
	}
	return out, nil
}

func (s *gormStore) activeBay(ctx context.Context, bayCode string) (*model.YardBay, error) {
	var bay model.YardBay
	err := s.db.WithContext(ctx).
		Where("code = ? AND is_active = ?", strings.ToUpper(bayCode), true).
		First(&bay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidBay
	}
	if err != nil {
		return nil, err
	}
	return &bay, nil
}

// BayDetail lists the bay's containers ordered by (depth_row, tier).
func (s *gormStore) BayDetail(ctx context.Context, bayCode string) ([]StackedContainer, error) {
	bay, err := s.activeBay(ctx, bayCode)
	if err != nil {
		return nil, err
	}

	var out []StackedContainer
	err = s.db.WithContext(ctx).
		Model(&model.Container{}).
		Select("containers.id, containers.code, containers.size, container_positions.depth_row, container_positions.tier").
		Joins("JOIN container_positions ON container_positions.container_id = containers.id").
		Where("container_positions.bay_id = ?", bay.ID).
		Order("container_positions.depth_row ASC, container_positions.tier ASC").
		Scan(&out).Error
	return out, err
}

// BaySuggestion computes the slot the next arrival would take. Advisory only:
// the placement transaction re-runs the allocation under the bay lock.
func (s *gormStore) BaySuggestion(ctx context.Context, bayCode string) (*PlacedSlot, error) {
	bay, err := s.activeBay(ctx, bayCode)
	if err != nil {
		return nil, err
	}

	occupied, err := occupiedSlots(s.db.WithContext(ctx), bay.ID)
	if err != nil {
		return nil, err
	}

	slot, ok := yard.FirstFreeSlot(bay.MaxDepthRows, bay.MaxTiers, occupied)
	if !ok {
		return nil, ErrBayFull
	}
	return &PlacedSlot{BayCode: bay.Code, DepthRow: slot.DepthRow, Tier: slot.Tier}, nil
}

// BayRowsAvailability reports per-row usage with a suggested tier for each
// row that still has room.
func (s *gormStore) BayRowsAvailability(ctx context.Context, bayCode string) ([]RowAvailability, error) {
	bay, err := s.activeBay(ctx, bayCode)
	if err != nil {
		return nil, err
	}

	var positions []model.ContainerPosition
	err = s.db.WithContext(ctx).
		Select("depth_row", "tier").
		Where("bay_id = ?", bay.ID).
		Find(&positions).Error
	if err != nil {
		return nil, err
	}

	tiersByRow := make(map[int]map[int]bool)
	for _, p := range positions {
		if tiersByRow[p.DepthRow] == nil {
			tiersByRow[p.DepthRow] = make(map[int]bool)
		}
		tiersByRow[p.DepthRow][p.Tier] = true
	}

	rows := make([]RowAvailability, 0, bay.MaxDepthRows)
	for row := 1; row <= bay.MaxDepthRows; row++ {
		used := len(tiersByRow[row])
		ra := RowAvailability{
			Row:        row,
			LevelsUsed: used,
			MaxLevels:  bay.MaxTiers,
			IsFull:     used >= bay.MaxTiers,
		}
		if !ra.IsFull {
			if tier, ok := yard.FirstFreeTier(bay.MaxTiers, tiersByRow[row]); ok {
				ra.SuggestedTier = &tier
			}
		}
		rows = append(rows, ra)
	}
	return rows, nil
}

// RowSuggestTier suggests the tier for one specific row.
func (s *gormStore) RowSuggestTier(ctx context.Context, bayCode string, row int) (*PlacedSlot, error) {
	bay, err := s.activeBay(ctx, bayCode)
	if err != nil {
		return nil, err
	}
	if row < 1 || row > bay.MaxDepthRows {
		return nil, ErrOutOfRange
	}

	tiers, err := occupiedTiers(s.db.WithContext(ctx), bay.ID, row)
	if err != nil {
		return nil, err
	}

	tier, ok := yard.FirstFreeTier(bay.MaxTiers, tiers)
	if !ok {
		return nil, ErrRowFull
	}
	return &PlacedSlot{BayCode: bay.Code, DepthRow: row, Tier: tier}, nil
}

// RowContainers lists one row's containers bottom-up.
func (s *gormStore) RowContainers(ctx context.Context, bayCode string, row int) ([]StackedContainer, error) {
	bay, err := s.activeBay(ctx, bayCode)
	if err != nil {
		return nil, err
	}
	if row < 1 || row > bay.MaxDepthRows {
		return nil, ErrOutOfRange
	}

	var out []StackedContainer
	err = s.db.WithContext(ctx).
		Model(&model.Container{}).
		Select("containers.id, containers.code, containers.size, container_positions.depth_row, container_positions.tier").
		Joins("JOIN container_positions ON container_positions.container_id = containers.id").
		Where("container_positions.bay_id = ? AND container_positions.depth_row = ?", bay.ID, row).
		Order("container_positions.tier ASC").
		Scan(&out).Error
	return out, err
}

// Inventory lists containers with optional in-yard filter and code search,
// newest changes first.
func (s *gormStore) Inventory(ctx context.Context, filter InventoryFilter) ([]InventoryRow, error) {
	q := s.db.WithContext(ctx).Model(&model.Container{}).Preload("Position").Preload("Position.Bay")

	if filter.InYard != nil {
		q = q.Where("is_in_yard = ?", *filter.InYard)
	}
	if filter.CodeSearch != "" {
		q = q.Where("UPPER(code) LIKE ?", "%"+strings.ToUpper(filter.CodeSearch)+"%")
	}

	var containers []model.Container
	if err := q.Order("updated_at DESC").Find(&containers).Error; err != nil {
		return nil, err
	}

	out := make([]InventoryRow, 0, len(containers))
	for _, c := range containers {
		row := InventoryRow{
			ID:          c.ID,
			Code:        c.Code,
			Size:        c.Size,
			Year:        c.Year,
			StatusNotes: c.StatusNotes,
			IsInYard:    c.IsInYard,
			UpdatedAt:   c.UpdatedAt,
		}
		if c.Position != nil {
			row.Position = &PlacedSlot{
				BayCode:  c.Position.Bay.Code,
				DepthRow: c.Position.DepthRow,
				Tier:     c.Position.Tier,
			}
		}
		out = append(out, row)
	}
	return out, nil
}
