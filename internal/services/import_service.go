package services

import (
	"fmt"

	"github.com/mkarlsen/divelog/internal/entities"
	"github.com/mkarlsen/divelog/internal/importers"
)

// DiveStore is the persistence surface the import service needs.
type DiveStore interface {
	CreateTrip(name, startDate, endDate string) (*entities.Trip, error)
	GetTrip(id uint) (*entities.Trip, error)
	UpdateTripRange(id uint, startDate, endDate string) error
	InsertDive(dive *entities.ImportedDive) error
	InsertSamplesBatch(diveID uint, samples []entities.DiveSample) error
	InsertEventsBatch(diveID uint, events []entities.DiveEvent) error
	InsertTankPressuresBatch(diveID uint, pressures []entities.TankPressure) error
	InsertTanksBatch(diveID uint, tanks []entities.DiveTank) error
	GetDivesForTrip(tripID uint) ([]entities.ImportedDive, error)
}

// ImportSummary reports what one file import stored.
type ImportSummary struct {
	TripID        uint   `json:"trip_id"`
	TripName      string `json:"trip_name"`
	DivesImported int    `json:"dives_imported"`
	Samples       int    `json:"samples"`
	Events        int    `json:"events"`
	TankPressures int    `json:"tank_pressures"`
	Tanks         int    `json:"tanks"`
}

// ImportService routes a log file to its parser and persists the resulting
// dive tree.
type ImportService struct {
	store DiveStore
}

func NewImportService(store DiveStore) *ImportService {
	return &ImportService{store: store}
}

// ImportFile imports one log file. A tripID of 0 creates a new trip named
// after the parsed date range; otherwise dives are appended to the existing
// trip, continuing its dive numbering.
func (s *ImportService) ImportFile(path string, tripID uint) (*ImportSummary, error) {
	result, err := importers.ImportFile(path)
	if err != nil {
		return nil, err
	}
	return s.persist(result, tripID)
}

// ImportBytes imports a raw buffer under a declared file name
// (browser-driven imports).
func (s *ImportService) ImportBytes(name string, data []byte, tripID uint) (*ImportSummary, error) {
	result, err := importers.ImportBytes(name, data)
	if err != nil {
		return nil, err
	}
	return s.persist(result, tripID)
}

func (s *ImportService) persist(result *entities.ImportResult, tripID uint) (*ImportSummary, error) {
	var trip *entities.Trip
	var err error
	if tripID == 0 {
		name := result.TripName
		if name == "" {
			name = "Imported dives"
		}
		trip, err = s.store.CreateTrip(name, result.StartDate, result.EndDate)
		if err != nil {
			return nil, err
		}
	} else {
		trip, err = s.store.GetTrip(tripID)
		if err != nil {
			return nil, err
		}
		if err := s.store.UpdateTripRange(trip.ID, result.StartDate, result.EndDate); err != nil {
			return nil, err
		}
	}

	existing, err := s.store.GetDivesForTrip(trip.ID)
	if err != nil {
		return nil, err
	}
	next := 1
	for _, d := range existing {
		if d.Number >= next {
			next = d.Number + 1
		}
	}

	summary := &ImportSummary{TripID: trip.ID, TripName: trip.Name}
	for i := range result.Dives {
		dive := &result.Dives[i]
		dive.TripID = trip.ID
		// Files missing dive numbers continue the trip's numbering.
		if dive.Number == 0 {
			dive.Number = next
		}
		next = dive.Number + 1

		if err := s.store.InsertDive(dive); err != nil {
			return nil, err
		}
		if err := s.store.InsertSamplesBatch(dive.ID, dive.Samples); err != nil {
			return nil, err
		}
		if err := s.store.InsertEventsBatch(dive.ID, dive.Events); err != nil {
			return nil, err
		}
		if err := s.store.InsertTankPressuresBatch(dive.ID, dive.TankPressures); err != nil {
			return nil, err
		}
		if err := s.store.InsertTanksBatch(dive.ID, dive.Tanks); err != nil {
			return nil, err
		}

		summary.DivesImported++
		summary.Samples += len(dive.Samples)
		summary.Events += len(dive.Events)
		summary.TankPressures += len(dive.TankPressures)
		summary.Tanks += len(dive.Tanks)
	}

	if summary.DivesImported == 0 {
		return summary, fmt.Errorf("no dives found in file")
	}
	return summary, nil
}
