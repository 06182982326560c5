package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"yardgate-backend/internal/audit"
	"yardgate-backend/internal/model"
	"yardgate-backend/internal/ticket"
)

// PrintTicket renders the ticket for a movement, records the print, and
// enqueues a job for the gate agent, all in one transaction so a queue
// failure never leaves a TicketPrint without its job.
func (s *gormStore) PrintTicket(ctx context.Context, actor string, movementID int64, origin string) (*TicketResult, error) {
	var result TicketResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mv model.Movement
		if err := tx.First(&mv, movementID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var c model.Container
		if err := tx.First(&c, mv.ContainerID).Error; err != nil {
			return err
		}

		payload := ticket.BuildPayload(s.appName, &mv, &c)

		tp := model.TicketPrint{
			MovementID:    mv.ID,
			PrintedAt:     time.Now().UTC(),
			PrintedBy:     actor,
			TicketPayload: payload,
		}
		if err := tx.Create(&tp).Error; err != nil {
			return err
		}

		job := model.PrintJob{
			Status:        model.PrintStatusPending,
			TicketID:      &tp.ID,
			PayloadText:   payload,
			RequestedBy:   actor,
			RequestOrigin: origin,
		}
		if err := tx.Create(&job).Error; err != nil {
			return err
		}

		meta := map[string]any{"container": c.Code, "print_job_id": job.ID}
		if err := audit.Log(tx, actor, audit.ActionTicketPrinted, "movement", &mv.ID, meta); err != nil {
			return err
		}

		result = TicketResult{
			TicketPrintID: tp.ID,
			PrintJobID:    job.ID,
			MovementID:    mv.ID,
			ContainerCode: c.Code,
			Payload:       payload,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ReprintTicket re-enqueues the stored payload of a previous print, byte for
// byte. The ticket body is never rebuilt from current data.
func (s *gormStore) ReprintTicket(ctx context.Context, actor string, printID int64, origin string) (*TicketResult, error) {
	var result TicketResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tp model.TicketPrint
		if err := tx.First(&tp, printID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		var mv model.Movement
		if err := tx.First(&mv, tp.MovementID).Error; err != nil {
			return err
		}
		var c model.Container
		if err := tx.First(&c, mv.ContainerID).Error; err != nil {
			return err
		}

		job := model.PrintJob{
			Status:        model.PrintStatusPending,
			TicketID:      &tp.ID,
			PayloadText:   tp.TicketPayload,
			RequestedBy:   actor,
			RequestOrigin: origin,
		}
		if err := tx.Create(&job).Error; err != nil {
			return err
		}

		meta := map[string]any{"movement_id": mv.ID, "container": c.Code, "print_job_id": job.ID}
		if err := audit.Log(tx, actor, audit.ActionTicketReprinted, "ticket_print", &tp.ID, meta); err != nil {
			return err
		}

		result = TicketResult{
			TicketPrintID: tp.ID,
			PrintJobID:    job.ID,
			MovementID:    mv.ID,
			ContainerCode: c.Code,
			Payload:       tp.TicketPayload,
			IsReprint:     true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}
