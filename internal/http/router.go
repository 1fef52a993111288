package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	logImporter := NewLogImportController(cfg.ImportService)
	tripsController := NewTripsController(cfg.TripReader)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Import endpoints
	router.POST("/api/imports", logImporter.Import)

	// Trip and dive endpoints
	router.GET("/api/trips", tripsController.GetAllTrips)
	router.GET("/api/trips/:id/dives", tripsController.GetTripDives)
	router.GET("/api/dives/:id", tripsController.GetDive)

	// Photo endpoints
	if cfg.PhotoService != nil {
		photosController := NewPhotosController(cfg.PhotoService)
		router.POST("/api/photos/scan", photosController.Scan)
		router.PATCH("/api/photos/:id/thumbnail", photosController.SetThumbnail)
		router.GET("/api/trips/:id/photo-groups", photosController.PhotoGroups)
	}

	return router
}
