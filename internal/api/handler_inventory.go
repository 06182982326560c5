package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"yardgate-backend/internal/store"
)

// GetInventory handles GET /api/inventory.
// Query params: in_yard=1|0 (absent means all), q=<code substring>.
func (h *Handler) GetInventory(c *gin.Context) {
	var filter store.InventoryFilter

	switch c.Query("in_yard") {
	case "1":
		t := true
		filter.InYard = &t
	case "0":
		f := false
		filter.InYard = &f
	}
	filter.CodeSearch = c.Query("q")

	rows, err := h.store.Inventory(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
