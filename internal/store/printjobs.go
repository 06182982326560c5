package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"yardgate-backend/internal/model"
)

// Error messages longer than this are truncated before persisting.
const maxErrorLen = 4000

// EnqueuePrintJob creates a PENDING job. Append-only, no lock needed.
func (s *gormStore) EnqueuePrintJob(ctx context.Context, req EnqueueRequest) (int64, error) {
	payload := strings.TrimSpace(req.PayloadText)
	if payload == "" {
		return 0, ErrInvalidPayload
	}

	job := model.PrintJob{
		Status:        model.PrintStatusPending,
		TicketID:      req.TicketID,
		PayloadText:   payload,
		RequestedBy:   req.RequestedBy,
		RequestOrigin: req.RequestOrigin,
	}
	if err := s.db.WithContext(ctx).Create(&job).Error; err != nil {
		return 0, err
	}
	return job.ID, nil
}

// ClaimNextPrintJob hands the oldest claimable job to the agent, or nil when
// none is available. Claimable means PENDING, or CLAIMED with an expired
// lease (agent crashed mid-print).
//
// Two layers keep concurrent claimers from double-printing: on postgres the
// candidate select uses FOR UPDATE SKIP LOCKED, so pollers never block on
// each other; and on every dialect the transition itself is a status-guarded
// UPDATE whose rows-affected count decides the winner.
func (s *gormStore) ClaimNextPrintJob(ctx context.Context, deviceID string) (*ClaimedJob, error) {
	now := time.Now().UTC()
	leaseCutoff := now.Add(-s.claimLease)

	var claimed *ClaimedJob
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("status = ? OR (status = ? AND claimed_at < ?)",
			model.PrintStatusPending, model.PrintStatusClaimed, leaseCutoff).
			Order("created_at ASC")
		if s.supportsRowLocks() {
			q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
		}

		var job model.PrintJob
		if err := q.First(&job).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		res := tx.Model(&model.PrintJob{}).
			Where("id = ? AND status = ?", job.ID, job.Status).
			Updates(map[string]any{
				"status":     model.PrintStatusClaimed,
				"claimed_by": deviceID,
				"claimed_at": now,
				"attempts":   gorm.Expr("attempts + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race to a concurrent claimer; report empty rather
			// than retrying inside the transaction.
			return nil
		}

		claimed = &ClaimedJob{ID: job.ID, PayloadText: job.PayloadText}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// CompletePrintJob records the agent's outcome. Success moves the job to DONE
// and clears any prior error; anything else moves it to FAILED, which is
// terminal.
func (s *gormStore) CompletePrintJob(ctx context.Context, jobID int64, success bool, errText string) error {
	now := time.Now().UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job model.PrintJob
		if err := tx.First(&job, jobID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{}
		if success {
			updates["status"] = model.PrintStatusDone
			updates["printed_at"] = now
			updates["last_error"] = ""
		} else {
			if errText == "" {
				errText = "unknown error"
			}
			if len(errText) > maxErrorLen {
				errText = errText[:maxErrorLen]
			}
			updates["status"] = model.PrintStatusFailed
			updates["last_error"] = errText
		}

		return tx.Model(&job).Updates(updates).Error
	})
}
