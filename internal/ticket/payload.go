// Package ticket renders the plain-text gate tickets. The payload is stored
// verbatim with each print so reprints come out identical.
package ticket

import (
	"fmt"
	"strings"

	"yardgate-backend/internal/model"
)

const rule = "----------------------------"

// FormatLocation renders a slot as printed on tickets and reports, e.g.
// "A01 F07 N2". Row and tier are omitted when unset (gate-out of a container
// that had no recorded position).
func FormatLocation(bayCode string, depthRow, tier int) string {
	if bayCode == "" {
		return ""
	}
	parts := []string{bayCode}
	if depthRow > 0 {
		parts = append(parts, fmt.Sprintf("F%02d", depthRow))
	}
	if tier > 0 {
		parts = append(parts, fmt.Sprintf("N%d", tier))
	}
	return strings.Join(parts, " ")
}

// BuildPayload produces the ticket body for a movement.
func BuildPayload(appName string, mv *model.Movement, c *model.Container) string {
	lines := []string{
		appName,
		rule,
		fmt.Sprintf("Fecha/Hora: %s", mv.OccurredAt.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Mov: %s", mv.MovementType),
		fmt.Sprintf("Cont: %s", c.Code),
		fmt.Sprintf("Tam: %s", c.Size),
	}

	if loc := FormatLocation(mv.BayCode, mv.DepthRow, mv.Tier); loc != "" {
		lines = append(lines, fmt.Sprintf("Ubi: %s", loc))
	}
	if mv.DriverName != "" {
		lines = append(lines, fmt.Sprintf("Chofer: %s", mv.DriverName))
	}
	if mv.TruckPlate != "" {
		lines = append(lines, fmt.Sprintf("Placa: %s", mv.TruckPlate))
	}
	if mv.Notes != "" {
		notes := mv.Notes
		if len(notes) > 300 {
			notes = notes[:300]
		}
		lines = append(lines, rule, notes)
	}

	lines = append(lines, rule)
	return strings.Join(lines, "\n")
}
