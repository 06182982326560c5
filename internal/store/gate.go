package store

import (
	"context"
	"errors"
	"regexp"
	"time"

	"gorm.io/gorm"

	"yardgate-backend/internal/audit"
	"yardgate-backend/internal/model"
	"yardgate-backend/internal/storage"
)

var containerCodeRE = regexp.MustCompile(`^[A-Z]{4}-\d{6}-\d$`)

func validSize(size string) bool {
	for _, s := range model.ContainerSizes {
		if s == size {
			return true
		}
	}
	return false
}

// validateGateIn rejects malformed input before any lock is taken or slot
// computed.
func validateGateIn(req *GateInRequest) error {
	if !containerCodeRE.MatchString(req.ContainerCode) {
		return ErrInvalidContainerCode
	}
	if !validSize(req.Size) {
		return ErrInvalidSize
	}
	if req.Year != nil {
		if *req.Year < 1950 || *req.Year > time.Now().UTC().Year()+1 {
			return ErrInvalidYear
		}
	}
	return nil
}

// GateIn registers a container arrival: creates or revives the container
// record, places it under the bay lock, appends the GATE_IN movement, stores
// photos (tolerating upload failures), and audits.
func (s *gormStore) GateIn(ctx context.Context, actor string, req GateInRequest) (*GateInResult, error) {
	if err := validateGateIn(&req); err != nil {
		return nil, err
	}

	var result GateInResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		bay, err := s.lockBayByNumber(tx, req.BlockCode, req.BayNumber)
		if err != nil {
			return err
		}

		var c model.Container
		err = tx.Where("code = ?", req.ContainerCode).First(&c).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = model.Container{
				Code:        req.ContainerCode,
				Size:        req.Size,
				Year:        req.Year,
				StatusNotes: req.StatusNotes,
				IsInYard:    true,
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		case c.IsInYard:
			return ErrContainerInYard
		default:
			c.Size = req.Size
			c.Year = req.Year
			c.StatusNotes = req.StatusNotes
			c.IsInYard = true
			if err := tx.Save(&c).Error; err != nil {
				return err
			}
		}

		slot, rule, err := s.resolveSlot(tx, bay, req.Manual)
		if err != nil {
			return err
		}

		if err := s.writePosition(tx, actor, c.ID, bay.ID, slot.DepthRow, slot.Tier); err != nil {
			return err
		}

		mv := model.Movement{
			ContainerID:  c.ID,
			MovementType: model.MovementGateIn,
			OccurredAt:   time.Now().UTC(),
			BayCode:      bay.Code,
			DepthRow:     slot.DepthRow,
			Tier:         slot.Tier,
			DriverName:   req.DriverName,
			DriverIDDoc:  req.DriverIDDoc,
			TruckPlate:   req.TruckPlate,
			Notes:        req.StatusNotes,
			CreatedBy:    actor,
			CreatedAt:    time.Now().UTC(),
		}
		if err := tx.Create(&mv).Error; err != nil {
			return err
		}

		if err := s.storePhotos(ctx, tx, c.Code, mv.ID, req.Photos, model.PhotoContainer); err != nil {
			return err
		}

		meta := map[string]any{
			"container_code": c.Code,
			"bay":            bay.Code,
			"depth_row":      slot.DepthRow,
			"tier":           slot.Tier,
			"rule":           rule,
		}
		if err := audit.Log(tx, actor, audit.ActionGateInCreated, "container", &c.ID, meta); err != nil {
			return err
		}

		result = GateInResult{
			ContainerID: c.ID,
			MovementID:  mv.ID,
			Slot:        PlacedSlot{BayCode: bay.Code, DepthRow: slot.DepthRow, Tier: slot.Tier},
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GateOut registers a departure: snapshots the current position into a
// GATE_OUT movement, removes the position, and flags the container as out of
// the yard.
func (s *gormStore) GateOut(ctx context.Context, actor string, req GateOutRequest) (*GateOutResult, error) {
	var result GateOutResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.Container
		if err := tx.First(&c, req.ContainerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrContainerNotInYard
			}
			return err
		}
		if !c.IsInYard {
			return ErrContainerNotInYard
		}

		from, err := currentPosition(tx, c.ID)
		if err != nil {
			return err
		}

		mv := model.Movement{
			ContainerID:  c.ID,
			MovementType: model.MovementGateOut,
			OccurredAt:   time.Now().UTC(),
			DriverName:   req.DriverName,
			DriverIDDoc:  req.DriverIDDoc,
			TruckPlate:   req.TruckPlate,
			Notes:        req.Notes,
			CreatedBy:    actor,
			CreatedAt:    time.Now().UTC(),
		}
		if from != nil {
			mv.BayCode = from.BayCode
			mv.DepthRow = from.DepthRow
			mv.Tier = from.Tier
		}
		if err := tx.Create(&mv).Error; err != nil {
			return err
		}

		if err := s.storePhotos(ctx, tx, c.Code, mv.ID, req.Photos, model.PhotoDriverID); err != nil {
			return err
		}

		if err := tx.Where("container_id = ?", c.ID).Delete(&model.ContainerPosition{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&c).Update("is_in_yard", false).Error; err != nil {
			return err
		}

		meta := map[string]any{
			"container_code": c.Code,
			"from":           from,
		}
		if err := audit.Log(tx, actor, audit.ActionGateOutCreated, "container", &c.ID, meta); err != nil {
			return err
		}

		result = GateOutResult{ContainerCode: c.Code, MovementID: mv.ID}
		if from != nil {
			result.From = *from
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// storePhotos uploads each photo and records its URL. An upload failure must
// not stall the gate: it is recorded as an UPLOAD_ERROR row carrying the
// error text and the movement still commits.
func (s *gormStore) storePhotos(ctx context.Context, tx *gorm.DB, containerCode string, movementID int64, photos []PhotoUpload, defaultType string) error {
	for _, p := range photos {
		if p.Reader == nil || p.Filename == "" {
			continue
		}

		photoType := p.PhotoType
		if photoType == "" {
			photoType = defaultType
		}
		contentType := p.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}

		key := storage.BuildPhotoKey(containerCode, movementID, p.Filename)
		url, err := s.photos.Store(ctx, p.Reader, p.Size, key, contentType)

		row := model.MovementPhoto{
			MovementID: movementID,
			PhotoType:  photoType,
			URL:        url,
			UploadedAt: time.Now().UTC(),
		}
		if err != nil {
			row.PhotoType = model.PhotoUploadError
			row.URL = err.Error()
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}
