package services

import (
	"github.com/mkarlsen/divelog/internal/entities"
	"github.com/mkarlsen/divelog/internal/photogroup"
)

// PhotoStore is the persistence surface the photo service needs.
type PhotoStore interface {
	InsertPhoto(photo *entities.ScannedPhoto) error
	UpdateThumbnail(id uint, thumbnailPath string) error
	ListByTrip(tripID uint) ([]entities.ScannedPhoto, error)
}

// PhotoScanner produces metadata records for the image files under a set of
// paths.
type PhotoScanner interface {
	ScanPaths(paths []string) ([]entities.ScannedPhoto, error)
}

// PhotoScanResult is the review payload: clustered groups with suggested
// dive assignments, plus photos that carried no usable capture time.
type PhotoScanResult struct {
	PhotosScanned int                    `json:"photos_scanned"`
	Groups        []entities.PhotoGroup  `json:"groups"`
	Untimed       []entities.ScannedPhoto `json:"untimed,omitempty"`
	Errors        []string               `json:"errors,omitempty"`
}

// PhotoService scans photo paths, persists the metadata and correlates the
// photos with a trip's dives.
type PhotoService struct {
	photos     PhotoStore
	dives      DiveStore
	scanner    PhotoScanner
	gapMinutes int
}

func NewPhotoService(photos PhotoStore, dives DiveStore, scanner PhotoScanner, gapMinutes int) *PhotoService {
	return &PhotoService{photos: photos, dives: dives, scanner: scanner, gapMinutes: gapMinutes}
}

// ScanAndGroup scans the given paths, stores every photo under the trip and
// returns the clustered groups with ordinal dive suggestions. Per-photo
// persistence failures are collected, not fatal.
func (s *PhotoService) ScanAndGroup(paths []string, tripID uint, gapMinutes int) (*PhotoScanResult, error) {
	scanned, err := s.scanner.ScanPaths(paths)
	if err != nil {
		return nil, err
	}

	result := &PhotoScanResult{PhotosScanned: len(scanned)}
	for i := range scanned {
		scanned[i].TripID = tripID
		if err := s.photos.InsertPhoto(&scanned[i]); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	groups, untimed := s.cluster(scanned, gapMinutes)
	if tripID != 0 {
		dives, err := s.dives.GetDivesForTrip(tripID)
		if err != nil {
			return nil, err
		}
		photogroup.MatchGroups(groups, dives)
	}

	result.Groups = groups
	result.Untimed = untimed
	return result, nil
}

// GroupTrip re-clusters the already persisted photos of a trip.
func (s *PhotoService) GroupTrip(tripID uint, gapMinutes int) (*PhotoScanResult, error) {
	stored, err := s.photos.ListByTrip(tripID)
	if err != nil {
		return nil, err
	}

	groups, untimed := s.cluster(stored, gapMinutes)
	dives, err := s.dives.GetDivesForTrip(tripID)
	if err != nil {
		return nil, err
	}
	photogroup.MatchGroups(groups, dives)

	return &PhotoScanResult{
		PhotosScanned: len(stored),
		Groups:        groups,
		Untimed:       untimed,
	}, nil
}

// SetThumbnail records the path of an externally generated thumbnail.
func (s *PhotoService) SetThumbnail(photoID uint, thumbnailPath string) error {
	return s.photos.UpdateThumbnail(photoID, thumbnailPath)
}

func (s *PhotoService) cluster(photos []entities.ScannedPhoto, gapMinutes int) ([]entities.PhotoGroup, []entities.ScannedPhoto) {
	if gapMinutes <= 0 {
		gapMinutes = s.gapMinutes
	}
	return photogroup.NewClusterer(gapMinutes).Group(photos)
}
