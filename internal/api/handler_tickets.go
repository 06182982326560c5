package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yardgate-backend/internal/mw"
)

// PrintTicket handles POST /api/tickets/:movement_id/print: renders the
// ticket, records the print, and queues it for the gate agent.
func (h *Handler) PrintTicket(c *gin.Context) {
	movementID, err := strconv.ParseInt(c.Param("movement_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid movement id"})
		return
	}

	result, err := h.store.PrintTicket(c.Request.Context(), mw.ActorFrom(c), movementID, c.ClientIP())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ReprintTicket handles POST /api/tickets/reprint/:print_id: queues the
// stored payload of a previous print verbatim.
func (h *Handler) ReprintTicket(c *gin.Context) {
	printID, err := strconv.ParseInt(c.Param("print_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid print id"})
		return
	}

	result, err := h.store.ReprintTicket(c.Request.Context(), mw.ActorFrom(c), printID, c.ClientIP())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
