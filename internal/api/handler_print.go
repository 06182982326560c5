package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"yardgate-backend/internal/store"
)

type enqueueJobRequest struct {
	PayloadText   string `json:"payload_text"`
	TicketID      *int64 `json:"ticket_id"`
	RequestedBy   string `json:"requested_by"`
	RequestOrigin string `json:"request_origin"`
}

// EnqueuePrintJob handles POST /api/print/jobs. Called by the web side when
// the operator taps "print"; the producer is the application itself, so no
// agent key is required here.
func (h *Handler) EnqueuePrintJob(c *gin.Context) {
	var req enqueueJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	jobID, err := h.store.EnqueuePrintJob(c.Request.Context(), store.EnqueueRequest{
		PayloadText:   req.PayloadText,
		TicketID:      req.TicketID,
		RequestedBy:   req.RequestedBy,
		RequestOrigin: req.RequestOrigin,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "job_id": jobID})
}

// ClaimNextPrintJob handles GET /api/print/pending?device_id=. Agent only.
// Responds {"job": null} when nothing is claimable; the agent keeps polling.
func (h *Handler) ClaimNextPrintJob(c *gin.Context) {
	deviceID := c.DefaultQuery("device_id", "GATE-PC")

	job, err := h.store.ClaimNextPrintJob(c.Request.Context(), deviceID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if job == nil {
		c.JSON(http.StatusOK, gin.H{"ok": true, "job": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "job": job})
}

type completeJobRequest struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// CompletePrintJob handles POST /api/print/jobs/:job_id/done. Agent only.
// Any status other than DONE marks the job FAILED.
func (h *Handler) CompletePrintJob(c *gin.Context) {
	jobID, err := strconv.ParseInt(c.Param("job_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid job id"})
		return
	}

	var req completeJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	success := strings.ToUpper(req.Status) == "DONE"
	if err := h.store.CompletePrintJob(c.Request.Context(), jobID, success, req.Error); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
