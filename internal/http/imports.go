package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mkarlsen/divelog/internal/importers"
	"github.com/mkarlsen/divelog/internal/services"
)

const (
	maxLogFileSize = 50 * 1024 * 1024 // 50 MB
)

type LogImportController struct {
	importer *services.ImportService
}

func NewLogImportController(importer *services.ImportService) *LogImportController {
	return &LogImportController{
		importer: importer,
	}
}

type LogImportResult struct {
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
	TripID        uint   `json:"trip_id,omitempty"`
	TripName      string `json:"trip_name,omitempty"`
	DivesImported int    `json:"dives_imported"`
	SamplesStored int    `json:"samples_stored"`
}

// Import accepts a dive log upload. The file arrives either as the
// "log_file" multipart field or as the raw request body with a
// "filename" query parameter carrying the original name. The extension
// of that name selects the parser.
func (c *LogImportController) Import(ctx *gin.Context) {
	tripID, err := parseTripID(ctx.Query("trip_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, &LogImportResult{
			Success: false,
			Error:   "trip_id must be a positive integer",
		})
		return
	}

	name, data, err := readLogUpload(ctx)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, &LogImportResult{
			Success: false,
			Error:   err.Error(),
		})
		return
	}

	summary, err := c.importer.ImportBytes(name, data, tripID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, importers.ErrUnsupportedFormat) {
			status = http.StatusUnsupportedMediaType
		}
		ctx.JSON(status, &LogImportResult{
			Success: false,
			Error:   fmt.Sprintf("Failed to import dive log: %v", err),
		})
		return
	}

	ctx.JSON(http.StatusOK, &LogImportResult{
		Success:       true,
		TripID:        summary.TripID,
		TripName:      summary.TripName,
		DivesImported: summary.DivesImported,
		SamplesStored: summary.Samples,
	})
}

func readLogUpload(ctx *gin.Context) (string, []byte, error) {
	file, header, err := ctx.Request.FormFile("log_file")
	if err == nil {
		defer file.Close()
		if header.Size > maxLogFileSize {
			return "", nil, fmt.Errorf("file too large (max %d MB)", maxLogFileSize/(1024*1024))
		}
		data, readErr := io.ReadAll(io.LimitReader(file, maxLogFileSize+1))
		if readErr != nil {
			return "", nil, fmt.Errorf("failed to read upload: %w", readErr)
		}
		return header.Filename, data, nil
	}

	name := ctx.Query("filename")
	if name == "" {
		return "", nil, errors.New("log_file form field or filename query parameter is required")
	}
	data, readErr := io.ReadAll(io.LimitReader(ctx.Request.Body, maxLogFileSize+1))
	if readErr != nil {
		return "", nil, fmt.Errorf("failed to read request body: %w", readErr)
	}
	if len(data) > maxLogFileSize {
		return "", nil, fmt.Errorf("file too large (max %d MB)", maxLogFileSize/(1024*1024))
	}
	return name, data, nil
}

func parseTripID(raw string) (uint, error) {
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
