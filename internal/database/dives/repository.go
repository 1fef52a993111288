// Package dives persists trips and imported dives with their child
// collections.
package dives

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkarlsen/divelog/internal/entities"
)

const batchSize = 200

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateTrip(name, startDate, endDate string) (*entities.Trip, error) {
	trip := entities.Trip{Name: name, StartDate: startDate, EndDate: endDate}
	if err := r.db.Create(&trip).Error; err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}
	return &trip, nil
}

func (r *Repository) GetTrip(id uint) (*entities.Trip, error) {
	var trip entities.Trip
	if err := r.db.First(&trip, id).Error; err != nil {
		return nil, fmt.Errorf("failed to load trip %d: %w", id, err)
	}
	return &trip, nil
}

func (r *Repository) ListTrips() ([]entities.Trip, error) {
	var trips []entities.Trip
	if err := r.db.Order("start_date").Find(&trips).Error; err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

// UpdateTripRange widens a trip's date range to include the given dates.
func (r *Repository) UpdateTripRange(id uint, startDate, endDate string) error {
	trip, err := r.GetTrip(id)
	if err != nil {
		return err
	}
	if startDate != "" && (trip.StartDate == "" || startDate < trip.StartDate) {
		trip.StartDate = startDate
	}
	if endDate != "" && (trip.EndDate == "" || endDate > trip.EndDate) {
		trip.EndDate = endDate
	}
	return r.db.Save(trip).Error
}

// InsertDive stores the dive header only; child collections go through the
// batch inserts below once the dive id is known.
func (r *Repository) InsertDive(dive *entities.ImportedDive) error {
	if err := r.db.Omit(clause.Associations).Create(dive).Error; err != nil {
		return fmt.Errorf("failed to insert dive %d: %w", dive.Number, err)
	}
	return nil
}

func (r *Repository) InsertSamplesBatch(diveID uint, samples []entities.DiveSample) error {
	if len(samples) == 0 {
		return nil
	}
	for i := range samples {
		samples[i].DiveID = diveID
	}
	if err := r.db.CreateInBatches(samples, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert samples for dive %d: %w", diveID, err)
	}
	return nil
}

func (r *Repository) InsertEventsBatch(diveID uint, events []entities.DiveEvent) error {
	if len(events) == 0 {
		return nil
	}
	for i := range events {
		events[i].DiveID = diveID
	}
	if err := r.db.CreateInBatches(events, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert events for dive %d: %w", diveID, err)
	}
	return nil
}

func (r *Repository) InsertTankPressuresBatch(diveID uint, pressures []entities.TankPressure) error {
	if len(pressures) == 0 {
		return nil
	}
	for i := range pressures {
		pressures[i].DiveID = diveID
	}
	if err := r.db.CreateInBatches(pressures, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert tank pressures for dive %d: %w", diveID, err)
	}
	return nil
}

func (r *Repository) InsertTanksBatch(diveID uint, tanks []entities.DiveTank) error {
	if len(tanks) == 0 {
		return nil
	}
	for i := range tanks {
		tanks[i].DiveID = diveID
	}
	if err := r.db.CreateInBatches(tanks, batchSize).Error; err != nil {
		return fmt.Errorf("failed to insert tanks for dive %d: %w", diveID, err)
	}
	return nil
}

// GetDivesForTrip returns the trip's dive headers ordered by dive number.
func (r *Repository) GetDivesForTrip(tripID uint) ([]entities.ImportedDive, error) {
	var dives []entities.ImportedDive
	if err := r.db.Where("trip_id = ?", tripID).Order("number").Find(&dives).Error; err != nil {
		return nil, fmt.Errorf("failed to load dives for trip %d: %w", tripID, err)
	}
	return dives, nil
}

// GetDiveWithChildren loads one dive with all child collections.
func (r *Repository) GetDiveWithChildren(id uint) (*entities.ImportedDive, error) {
	var dive entities.ImportedDive
	err := r.db.
		Preload("Samples").
		Preload("Events").
		Preload("TankPressures").
		Preload("Tanks").
		First(&dive, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load dive %d: %w", id, err)
	}
	return &dive, nil
}
