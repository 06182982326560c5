package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"yardgate-backend/internal/audit"
	"yardgate-backend/internal/model"
)

// PlaceContainer moves an in-yard container into a bay, automatically when
// manual is nil or at the exact requested slot otherwise. The whole operation
// runs under the bay lock: validate, drop the old position, write the new
// one, append the MOVE movement, audit. Any failure rolls everything back.
func (s *gormStore) PlaceContainer(ctx context.Context, actor string, containerID int64, bayCode string, manual *SlotRequest, origin PlacementOrigin) (*PlacedSlot, error) {
	var result PlacedSlot

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Container
		if err := tx.First(&c, containerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContainerNotInYard
			}
			return err
		}
		if !c.IsInYard {
			return ErrContainerNotInYard
		}

		bay, err := s.lockBay(tx, bayCode)
		if err != nil {
			return err
		}

		slot, rule, err := s.resolveSlot(tx, bay, manual)
		if err != nil {
			return err
		}

		old, err := currentPosition(tx, c.ID)
		if err != nil {
			return err
		}

		if err := s.writePosition(tx, actor, c.ID, bay.ID, slot.DepthRow, slot.Tier); err != nil {
			return err
		}

		var notes string
		if origin == OriginBlockUI {
			notes = "PLACED_BY_BLOCK_UI"
		}

		mv := model.Movement{
			ContainerID:  c.ID,
			MovementType: model.MovementMove,
			OccurredAt:   time.Now().UTC(),
			BayCode:      bay.Code,
			DepthRow:     slot.DepthRow,
			Tier:         slot.Tier,
			Notes:        notes,
			CreatedBy:    actor,
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&mv).Error; err != nil {
			return err
		}

		action := audit.ActionContainerMoved
		if origin == OriginBlockUI {
			action = audit.ActionContainerPlaced
		}
		meta := map[string]any{
			"from": old,
			"to":   PlacedSlot{BayCode: bay.Code, DepthRow: slot.DepthRow, Tier: slot.Tier},
			"rule": rule,
		}
		if err := audit.Log(tx, actor, action, "container", &c.ID, meta); err != nil {
			return err
		}

		result = PlacedSlot{BayCode: bay.Code, DepthRow: slot.DepthRow, Tier: slot.Tier}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// writePosition enforces the one-position-per-container invariant:
// delete-then-insert in the same transaction as the bay lock.
func (s *gormStore) writePosition(tx *gorm.DB, actor string, containerID, bayID int64, depthRow, tier int) error {
	if err := tx.Where("container_id = ?", containerID).Delete(&model.ContainerPosition{}).Error; err != nil {
		return err
	}
	return tx.Create(&model.ContainerPosition{
		ContainerID: containerID,
		BayID:       bayID,
		DepthRow:    depthRow,
		Tier:        tier,
		PlacedAt:    time.Now().UTC(),
		PlacedBy:    actor,
	}).Error
}
