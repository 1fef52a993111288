package http

import (
	"github.com/mkarlsen/divelog/internal/database"
	"github.com/mkarlsen/divelog/internal/services"
)

// RouterConfig holds all dependencies for router construction.
type RouterConfig struct {
	Database      *database.Database
	TripReader    TripReader
	ImportService *services.ImportService
	PhotoService  *services.PhotoService
	Version       string
}
