package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"yardgate-backend/internal/mw"
	"yardgate-backend/internal/store"
)

// GetContainersInYard handles GET /api/yard/containers-in-yard (map tray).
func (h *Handler) GetContainersInYard(c *gin.Context) {
	rows, err := h.store.ContainersInYard(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// GetBlockBays handles GET /api/yard/bays?block=A (bay picker).
func (h *Handler) GetBlockBays(c *gin.Context) {
	bays, err := h.store.BlockBays(c.Request.Context(), c.Query("block"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bays": bays})
}

// GetBlockMap handles GET /api/yard/map?block=A.
func (h *Handler) GetBlockMap(c *gin.Context) {
	blockCode := strings.ToUpper(c.DefaultQuery("block", "A"))
	bays, err := h.store.BlockMap(c.Request.Context(), blockCode)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": blockCode, "bays": bays})
}

// GetBlockAvailability handles GET /api/yard/block/:block_code/availability.
func (h *Handler) GetBlockAvailability(c *gin.Context) {
	blockCode := strings.ToUpper(c.Param("block_code"))
	bays, err := h.store.BlockMap(c.Request.Context(), blockCode)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"block": blockCode, "bays": bays})
}

// GetBayDetail handles GET /api/yard/bays/:bay_code.
func (h *Handler) GetBayDetail(c *gin.Context) {
	items, err := h.store.BayDetail(c.Request.Context(), c.Param("bay_code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bay_code": strings.ToUpper(c.Param("bay_code")), "containers": items})
}

// GetBaySuggestion handles GET /api/yard/bays/:bay_code/last-available.
func (h *Handler) GetBaySuggestion(c *gin.Context) {
	slot, err := h.store.BaySuggestion(c.Request.Context(), c.Param("bay_code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bay_code": slot.BayCode, "depth_row": slot.DepthRow, "tier": slot.Tier})
}

// GetBayRowsAvailability handles GET /api/yard/bays/:bay_code/rows-availability.
func (h *Handler) GetBayRowsAvailability(c *gin.Context) {
	rows, err := h.store.BayRowsAvailability(c.Request.Context(), c.Param("bay_code"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bay_code": strings.ToUpper(c.Param("bay_code")), "rows": rows})
}

func rowParam(c *gin.Context) (int, bool) {
	row, err := strconv.Atoi(c.Param("row_number"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid row number"})
		return 0, false
	}
	return row, true
}

// GetRowSuggestTier handles GET /api/yard/bays/:bay_code/row/:row_number/suggest-tier.
func (h *Handler) GetRowSuggestTier(c *gin.Context) {
	row, ok := rowParam(c)
	if !ok {
		return
	}

	slot, err := h.store.RowSuggestTier(c.Request.Context(), c.Param("bay_code"), row)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bay_code": slot.BayCode, "depth_row": slot.DepthRow, "tier": slot.Tier})
}

// GetRowContainers handles GET /api/yard/bays/:bay_code/row/:row_number/containers.
func (h *Handler) GetRowContainers(c *gin.Context) {
	row, ok := rowParam(c)
	if !ok {
		return
	}

	items, err := h.store.RowContainers(c.Request.Context(), c.Param("bay_code"), row)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"bay_code":   strings.ToUpper(c.Param("bay_code")),
		"depth_row":  row,
		"containers": items,
	})
}

type placeRequest struct {
	ContainerID int64  `json:"container_id" binding:"required"`
	ToBayCode   string `json:"to_bay_code" binding:"required"`
	ToDepthRow  *int   `json:"to_depth_row"`
	ToTier      *int   `json:"to_tier"`
}

// PlaceContainer handles POST /api/yard/place (block UI). Automatic when no
// explicit slot is supplied, exact otherwise.
func (h *Handler) PlaceContainer(c *gin.Context) {
	var req placeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var manual *store.SlotRequest
	if req.ToDepthRow != nil && req.ToTier != nil {
		manual = &store.SlotRequest{DepthRow: *req.ToDepthRow, Tier: *req.ToTier}
	}

	slot, err := h.store.PlaceContainer(c.Request.Context(), mw.ActorFrom(c),
		req.ContainerID, req.ToBayCode, manual, store.OriginBlockUI)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bay_code": slot.BayCode, "depth_row": slot.DepthRow, "tier": slot.Tier})
}

type moveRequest struct {
	ContainerID int64  `json:"container_id" binding:"required"`
	ToBayCode   string `json:"to_bay_code" binding:"required"`
	Mode        string `json:"mode"`
	DepthRow    *int   `json:"depth_row"`
	ToTier      *int   `json:"tier"`
}

// MoveContainer handles POST /api/yard/move (drag & drop between bays).
func (h *Handler) MoveContainer(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var manual *store.SlotRequest
	if strings.ToLower(req.Mode) == "manual" {
		if req.DepthRow == nil || req.ToTier == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "manual mode requires depth_row and tier"})
			return
		}
		manual = &store.SlotRequest{DepthRow: *req.DepthRow, Tier: *req.ToTier}
	}

	slot, err := h.store.PlaceContainer(c.Request.Context(), mw.ActorFrom(c),
		req.ContainerID, req.ToBayCode, manual, store.OriginDragDrop)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "bay_code": slot.BayCode, "depth_row": slot.DepthRow, "tier": slot.Tier})
}
