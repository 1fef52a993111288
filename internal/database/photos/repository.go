// Package photos persists scanned photo metadata.
package photos

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkarlsen/divelog/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// InsertPhoto stores the full metadata record. Re-scanning an already known
// file path replaces its metadata instead of failing the unique index.
func (r *Repository) InsertPhoto(photo *entities.ScannedPhoto) error {
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "file_path"}},
		UpdateAll: true,
	}).Create(photo).Error
	if err != nil {
		return fmt.Errorf("failed to insert photo %s: %w", photo.FilePath, err)
	}
	return nil
}

func (r *Repository) UpdateThumbnail(id uint, thumbnailPath string) error {
	err := r.db.Model(&entities.ScannedPhoto{}).
		Where("id = ?", id).
		Update("thumbnail_path", thumbnailPath).Error
	if err != nil {
		return fmt.Errorf("failed to update thumbnail for photo %d: %w", id, err)
	}
	return nil
}

func (r *Repository) ListByTrip(tripID uint) ([]entities.ScannedPhoto, error) {
	var photos []entities.ScannedPhoto
	if err := r.db.Where("trip_id = ?", tripID).Order("capture_time").Find(&photos).Error; err != nil {
		return nil, fmt.Errorf("failed to list photos for trip %d: %w", tripID, err)
	}
	return photos, nil
}

func (r *Repository) GetByPath(path string) (*entities.ScannedPhoto, error) {
	var photo entities.ScannedPhoto
	if err := r.db.Where("file_path = ?", path).First(&photo).Error; err != nil {
		return nil, fmt.Errorf("failed to load photo %s: %w", path, err)
	}
	return &photo, nil
}
