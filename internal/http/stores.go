package http

import (
	"github.com/mkarlsen/divelog/internal/entities"
)

// TripReader is the read side of the dive store the API exposes.
type TripReader interface {
	ListTrips() ([]entities.Trip, error)
	GetTrip(id uint) (*entities.Trip, error)
	GetDivesForTrip(tripID uint) ([]entities.ImportedDive, error)
	GetDiveWithChildren(id uint) (*entities.ImportedDive, error)
}
