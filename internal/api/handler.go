package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"yardgate-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store store.Store
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store) *Handler {
	return &Handler{store: s}
}

// abortWithError maps store errors to distinct HTTP outcomes. Unknown errors
// become a 500 with a generic body; the detail goes to the log only.
func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrSlotOccupied),
		errors.Is(err, store.ErrBayFull),
		errors.Is(err, store.ErrRowFull),
		errors.Is(err, store.ErrContainerInYard):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrInvalidBlock),
		errors.Is(err, store.ErrInvalidBay),
		errors.Is(err, store.ErrOutOfRange),
		errors.Is(err, store.ErrInvalidContainerCode),
		errors.Is(err, store.ErrInvalidSize),
		errors.Is(err, store.ErrInvalidYear),
		errors.Is(err, store.ErrContainerNotInYard),
		errors.Is(err, store.ErrInvalidDateRange),
		errors.Is(err, store.ErrInvalidPayload):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
