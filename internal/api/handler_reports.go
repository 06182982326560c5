package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"yardgate-backend/internal/model"
	"yardgate-backend/internal/mw"
	"yardgate-backend/internal/store"
	"yardgate-backend/internal/ticket"
)

var reportTypes = map[string]bool{
	model.MovementGateIn:  true,
	model.MovementGateOut: true,
	model.MovementMove:    true,
}

func parseReportFilter(c *gin.Context) (store.ReportFilter, error) {
	var filter store.ReportFilter

	movementType := strings.ToUpper(strings.TrimSpace(c.Query("movement_type")))
	if movementType != "" && !reportTypes[movementType] {
		movementType = ""
	}
	filter.MovementType = movementType

	from, err := time.Parse("2006-01-02", c.Query("date_from"))
	if err != nil {
		return filter, store.ErrInvalidDateRange
	}
	to, err := time.Parse("2006-01-02", c.Query("date_to"))
	if err != nil {
		return filter, store.ErrInvalidDateRange
	}

	filter.From = from
	filter.To = to.Add(24*time.Hour - time.Second)
	return filter, nil
}

// RunReport handles GET /api/reports/run?date_from=&date_to=&movement_type=.
func (h *Handler) RunReport(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	rows, err := h.store.MovementReport(c.Request.Context(), mw.ActorFrom(c), filter, false)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// ExportReport handles GET /api/reports/export with the same filters,
// returning an xlsx attachment.
func (h *Handler) ExportReport(c *gin.Context) {
	filter, err := parseReportFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}

	rows, err := h.store.MovementReport(c.Request.Context(), mw.ActorFrom(c), filter, true)
	if err != nil {
		abortWithError(c, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reportes"
	f.SetSheetName("Sheet1", sheet)

	headers := []any{"Fecha/Hora", "Movimiento", "Contenedor", "Ubicación", "Chofer", "Placa"}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		abortWithError(c, err)
		return
	}

	widths := make([]int, len(headers))
	for i, hcell := range headers {
		widths[i] = len(fmt.Sprint(hcell))
	}

	for i, row := range rows {
		mv := row.Movement
		loc := ticket.FormatLocation(mv.BayCode, mv.DepthRow, mv.Tier)
		if loc == "" {
			loc = "-"
		}

		values := []any{
			mv.OccurredAt.Format("2006-01-02 15:04:05"),
			mv.MovementType,
			row.ContainerCode,
			loc,
			mv.DriverName,
			mv.TruckPlate,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			abortWithError(c, err)
			return
		}

		for j, v := range values {
			if l := len(fmt.Sprint(v)); l > widths[j] {
				widths[j] = l
			}
		}
	}

	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			continue
		}
		if w > 38 {
			w = 38
		}
		f.SetColWidth(sheet, col, col, float64(w+2))
	}

	movementType := filter.MovementType
	if movementType == "" {
		movementType = "ALL"
	}
	fname := fmt.Sprintf("reportes_%s_%s_a_%s.xlsx", movementType, c.Query("date_from"), c.Query("date_to"))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fname))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		abortWithError(c, err)
	}
}
