package ticket

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"yardgate-backend/internal/model"
)

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "A01 F07 N2", FormatLocation("A01", 7, 2))
	assert.Equal(t, "B15", FormatLocation("B15", 0, 0))
	assert.Equal(t, "", FormatLocation("", 3, 1))
}

func TestBuildPayload(t *testing.T) {
	mv := &model.Movement{
		MovementType: model.MovementGateIn,
		OccurredAt:   time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
		BayCode:      "A07",
		DepthRow:     12,
		Tier:         1,
		DriverName:   "J. Rojas",
		TruckPlate:   "CL-123456",
	}
	c := &model.Container{Code: "MSKU-123456-7", Size: "40HC"}

	payload := BuildPayload("Yard Gate", mv, c)

	assert.Contains(t, payload, "Yard Gate")
	assert.Contains(t, payload, "Fecha/Hora: 2025-03-14 09:30:00")
	assert.Contains(t, payload, "Mov: GATE_IN")
	assert.Contains(t, payload, "Cont: MSKU-123456-7")
	assert.Contains(t, payload, "Tam: 40HC")
	assert.Contains(t, payload, "Ubi: A07 F12 N1")
	assert.Contains(t, payload, "Chofer: J. Rojas")
	assert.Contains(t, payload, "Placa: CL-123456")
}

func TestBuildPayload_OptionalFieldsOmitted(t *testing.T) {
	mv := &model.Movement{
		MovementType: model.MovementGateOut,
		OccurredAt:   time.Now(),
	}
	c := &model.Container{Code: "MSKU-123456-7", Size: "20ST"}

	payload := BuildPayload("Yard Gate", mv, c)

	assert.NotContains(t, payload, "Ubi:")
	assert.NotContains(t, payload, "Chofer:")
	assert.NotContains(t, payload, "Placa:")
}

func TestBuildPayload_TruncatesLongNotes(t *testing.T) {
	mv := &model.Movement{
		MovementType: model.MovementMove,
		OccurredAt:   time.Now(),
		Notes:        strings.Repeat("x", 500),
	}
	c := &model.Container{Code: "MSKU-123456-7", Size: "20ST"}

	payload := BuildPayload("Yard Gate", mv, c)
	assert.Contains(t, payload, strings.Repeat("x", 300))
	assert.NotContains(t, payload, strings.Repeat("x", 301))
}
