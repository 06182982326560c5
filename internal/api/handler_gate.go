package api

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"yardgate-backend/internal/mw"
	"yardgate-backend/internal/store"
)

// collectPhotos opens every uploaded "photos" part. The returned closer must
// run after the store call has drained the readers.
func collectPhotos(c *gin.Context) ([]store.PhotoUpload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil && err != http.ErrNotMultipart {
		return nil, func() {}, err
	}

	var files []*multipart.FileHeader
	if form != nil {
		files = form.File["photos"]
	}

	var photos []store.PhotoUpload
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	for _, fh := range files {
		if fh == nil || fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		photos = append(photos, store.PhotoUpload{
			Reader:      f,
			Size:        fh.Size,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}
	return photos, closeAll, nil
}

// GateIn handles POST /api/yard/gate-in (multipart form: container data,
// driver data, target bay, optional explicit slot, photos).
func (h *Handler) GateIn(c *gin.Context) {
	req := store.GateInRequest{
		ContainerCode: strings.ToUpper(strings.TrimSpace(c.PostForm("container_code"))),
		Size:          strings.TrimSpace(c.PostForm("size")),
		StatusNotes:   strings.TrimSpace(c.PostForm("status_notes")),
		DriverName:    strings.TrimSpace(c.PostForm("driver_name")),
		DriverIDDoc:   strings.TrimSpace(c.PostForm("driver_id_doc")),
		TruckPlate:    strings.TrimSpace(c.PostForm("truck_plate")),
		BlockCode:     strings.ToUpper(strings.TrimSpace(c.PostForm("block"))),
	}

	if yearRaw := strings.TrimSpace(c.PostForm("year")); yearRaw != "" {
		year, err := strconv.Atoi(yearRaw)
		if err != nil {
			abortWithError(c, store.ErrInvalidYear)
			return
		}
		req.Year = &year
	}

	bayNumber, err := strconv.Atoi(strings.TrimSpace(c.PostForm("bay_number")))
	if err != nil {
		abortWithError(c, store.ErrInvalidBay)
		return
	}
	req.BayNumber = bayNumber

	if strings.ToLower(c.PostForm("placement_mode")) == "manual" {
		depthRow, err1 := strconv.Atoi(strings.TrimSpace(c.PostForm("depth_row")))
		tier, err2 := strconv.Atoi(strings.TrimSpace(c.PostForm("tier")))
		if err1 != nil || err2 != nil {
			abortWithError(c, store.ErrOutOfRange)
			return
		}
		req.Manual = &store.SlotRequest{DepthRow: depthRow, Tier: tier}
	}

	photos, closePhotos, err := collectPhotos(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePhotos()
	req.Photos = photos

	result, err := h.store.GateIn(c.Request.Context(), mw.ActorFrom(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":           true,
		"container_id": result.ContainerID,
		"movement_id":  result.MovementID,
		"bay_code":     result.Slot.BayCode,
		"depth_row":    result.Slot.DepthRow,
		"tier":         result.Slot.Tier,
	})
}

// GateOut handles POST /api/yard/gate-out (multipart form: container id,
// driver data, photos).
func (h *Handler) GateOut(c *gin.Context) {
	containerID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("container_id")), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid container id"})
		return
	}

	req := store.GateOutRequest{
		ContainerID: containerID,
		DriverName:  strings.TrimSpace(c.PostForm("driver_name")),
		DriverIDDoc: strings.TrimSpace(c.PostForm("driver_id_doc")),
		TruckPlate:  strings.TrimSpace(c.PostForm("truck_plate")),
		Notes:       strings.TrimSpace(c.PostForm("notes")),
	}

	photos, closePhotos, err := collectPhotos(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer closePhotos()
	req.Photos = photos

	result, err := h.store.GateOut(c.Request.Context(), mw.ActorFrom(c), req)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":             true,
		"container_code": result.ContainerCode,
		"movement_id":    result.MovementID,
		"from":           result.From,
	})
}
