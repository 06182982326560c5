package store

import (
	"context"

	"gorm.io/gorm"

	"yardgate-backend/internal/audit"
	"yardgate-backend/internal/model"
)

// MovementReport returns the movements in the filter window joined with
// their containers, oldest first, and audits the run. Movements are read
// only; the history table is append-only by contract.
func (s *gormStore) MovementReport(ctx context.Context, actor string, filter ReportFilter, exported bool) ([]ReportRow, error) {
	if filter.From.IsZero() || filter.To.IsZero() || filter.To.Before(filter.From) {
		return nil, ErrInvalidDateRange
	}

	q := s.db.WithContext(ctx).
		Model(&model.Movement{}).
		Select("movements.*, containers.code AS container_code").
		Joins("JOIN containers ON containers.id = movements.container_id").
		Where("movements.occurred_at >= ? AND movements.occurred_at <= ?", filter.From, filter.To)

	if filter.MovementType != "" {
		q = q.Where("movements.movement_type = ?", filter.MovementType)
	}

	type flatRow struct {
		model.Movement
		ContainerCode string
	}
	var flat []flatRow
	if err := q.Order("movements.occurred_at ASC").Scan(&flat).Error; err != nil {
		return nil, err
	}

	rows := make([]ReportRow, 0, len(flat))
	for _, f := range flat {
		rows = append(rows, ReportRow{Movement: f.Movement, ContainerCode: f.ContainerCode})
	}

	action := audit.ActionReportRun
	meta := map[string]any{
		"from":          filter.From,
		"to":            filter.To,
		"movement_type": orAll(filter.MovementType),
	}
	if exported {
		action = audit.ActionReportExported
		meta["rows"] = len(rows)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return audit.Log(tx, actor, action, "report", nil, meta)
	})
	if err != nil {
		return nil, err
	}

	return rows, nil
}

func orAll(movementType string) string {
	if movementType == "" {
		return "ALL"
	}
	return movementType
}
