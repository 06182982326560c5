// Package audit is the append-only trail the yard operations report into.
package audit

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"yardgate-backend/internal/model"
)

// Actions recorded by the yard subsystem.
const (
	ActionContainerPlaced = "CONTAINER_PLACED"
	ActionContainerMoved  = "CONTAINER_MOVED"
	ActionGateInCreated   = "GATE_IN_CREATED"
	ActionGateOutCreated  = "GATE_OUT_CREATED"
	ActionReportRun       = "REPORT_RUN"
	ActionReportExported  = "REPORT_EXPORTED"
	ActionTicketPrinted   = "TICKET_PRINTED"
	ActionTicketReprinted = "TICKET_REPRINTED"
)

// Log appends one audit entry inside the caller's transaction. Meta is
// serialized to JSON; a meta that cannot be serialized is logged and dropped
// rather than failing the business operation.
func Log(tx *gorm.DB, actor, action, entityType string, entityID *int64, meta map[string]any) error {
	var metaJSON string
	if meta != nil {
		b, err := json.Marshal(meta)
		if err != nil {
			log.Printf("audit: dropping unserializable meta for %s: %v", action, err)
		} else {
			metaJSON = string(b)
		}
	}

	row := model.AuditLog{
		At:         time.Now().UTC(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Meta:       metaJSON,
	}
	return tx.Create(&row).Error
}
