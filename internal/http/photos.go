package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/divelog/internal/services"
)

type PhotosController struct {
	photos *services.PhotoService
}

func NewPhotosController(photos *services.PhotoService) *PhotosController {
	return &PhotosController{
		photos: photos,
	}
}

type PhotoScanRequest struct {
	Paths      []string `json:"paths" binding:"required"`
	TripID     uint     `json:"trip_id"`
	GapMinutes int      `json:"gap_minutes"`
}

// Scan walks the given directories, extracts photo metadata and returns
// the clustered groups with suggested dive assignments.
func (controller *PhotosController) Scan(c *gin.Context) {
	var req PhotoScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "paths list is required"})
		return
	}

	result, err := controller.photos.ScanAndGroup(req.Paths, req.TripID, req.GapMinutes)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}

type ThumbnailRequest struct {
	ThumbnailPath string `json:"thumbnail_path" binding:"required"`
}

// SetThumbnail records the path of a thumbnail generated outside this
// service for a stored photo.
func (controller *PhotosController) SetThumbnail(c *gin.Context) {
	photoID, err := pathID(c, "id")
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	var req ThumbnailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "thumbnail_path is required"})
		return
	}

	if err := controller.photos.SetThumbnail(photoID, req.ThumbnailPath); err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"updated": true})
}

// PhotoGroups re-clusters the photos already stored for a trip. The
// gap_minutes query parameter overrides the configured threshold.
func (controller *PhotosController) PhotoGroups(c *gin.Context) {
	tripID, err := pathID(c, "id")
	if err != nil {
		c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "invalid trip id"})
		return
	}

	gapMinutes := 0
	if raw := c.Query("gap_minutes"); raw != "" {
		gapMinutes, err = strconv.Atoi(raw)
		if err != nil || gapMinutes < 0 {
			c.IndentedJSON(http.StatusBadRequest, gin.H{"error": "gap_minutes must be a non-negative integer"})
			return
		}
	}

	result, err := controller.photos.GroupTrip(tripID, gapMinutes)
	if err != nil {
		c.IndentedJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.IndentedJSON(http.StatusOK, result)
}
