package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlsen/divelog/internal/entities"
)

type fakePhotoStore struct {
	inserted []entities.ScannedPhoto
}

func (f *fakePhotoStore) InsertPhoto(photo *entities.ScannedPhoto) error {
	f.inserted = append(f.inserted, *photo)
	return nil
}

func (f *fakePhotoStore) UpdateThumbnail(id uint, thumbnailPath string) error {
	for i := range f.inserted {
		if f.inserted[i].ID == id {
			f.inserted[i].ThumbnailPath = thumbnailPath
		}
	}
	return nil
}

func (f *fakePhotoStore) ListByTrip(tripID uint) ([]entities.ScannedPhoto, error) {
	var out []entities.ScannedPhoto
	for _, p := range f.inserted {
		if p.TripID == tripID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeScanner struct {
	photos []entities.ScannedPhoto
}

func (f *fakeScanner) ScanPaths([]string) ([]entities.ScannedPhoto, error) {
	return f.photos, nil
}

func TestPhotoService_ScanAndGroup(t *testing.T) {
	diveStore := newFakeDiveStore()
	trip, _ := diveStore.CreateTrip("trip", "2024-01-17", "2024-01-17")
	diveStore.dives = append(diveStore.dives,
		entities.ImportedDive{ID: 11, TripID: trip.ID, Number: 1},
		entities.ImportedDive{ID: 12, TripID: trip.ID, Number: 2},
		entities.ImportedDive{ID: 13, TripID: trip.ID, Number: 3},
	)

	scanner := &fakeScanner{photos: []entities.ScannedPhoto{
		{FilePath: "/p/a.jpg", CaptureTime: "2024-01-17T10:00:00"},
		{FilePath: "/p/b.jpg", CaptureTime: "2024-01-17T10:20:00"},
		{FilePath: "/p/c.jpg", CaptureTime: "2024-01-17T12:00:00"},
		{FilePath: "/p/d.jpg", CaptureTime: "2024-01-17T12:10:00"},
		{FilePath: "/p/scan.tif", CaptureTime: ""},
	}}
	photoStore := &fakePhotoStore{}
	service := NewPhotoService(photoStore, diveStore, scanner, 60)

	result, err := service.ScanAndGroup([]string{"/p"}, trip.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 5, result.PhotosScanned)
	assert.Len(t, photoStore.inserted, 5)
	assert.Equal(t, trip.ID, photoStore.inserted[0].TripID)

	require.Len(t, result.Groups, 2)
	require.NotNil(t, result.Groups[0].SuggestedDiveNumber)
	assert.Equal(t, 1, *result.Groups[0].SuggestedDiveNumber)
	assert.Equal(t, uint(11), *result.Groups[0].SuggestedDiveID)
	assert.Equal(t, 2, *result.Groups[1].SuggestedDiveNumber)

	require.Len(t, result.Untimed, 1)
	assert.Equal(t, "/p/scan.tif", result.Untimed[0].FilePath)
}

func TestPhotoService_GroupTrip_UsesStoredPhotos(t *testing.T) {
	diveStore := newFakeDiveStore()
	trip, _ := diveStore.CreateTrip("trip", "2024-01-17", "2024-01-17")
	diveStore.dives = append(diveStore.dives, entities.ImportedDive{ID: 5, TripID: trip.ID, Number: 1})

	photoStore := &fakePhotoStore{inserted: []entities.ScannedPhoto{
		{TripID: trip.ID, FilePath: "/p/a.jpg", CaptureTime: "2024-01-17T10:00:00"},
		{TripID: 99, FilePath: "/other/z.jpg", CaptureTime: "2024-01-17T10:00:00"},
	}}
	service := NewPhotoService(photoStore, diveStore, &fakeScanner{}, 60)

	result, err := service.GroupTrip(trip.ID, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.PhotosScanned)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, uint(5), *result.Groups[0].SuggestedDiveID)
}

func TestPhotoService_GapOverride(t *testing.T) {
	diveStore := newFakeDiveStore()
	scanner := &fakeScanner{photos: []entities.ScannedPhoto{
		{FilePath: "/p/a.jpg", CaptureTime: "2024-01-17T10:00:00"},
		{FilePath: "/p/b.jpg", CaptureTime: "2024-01-17T10:20:00"},
	}}
	service := NewPhotoService(&fakePhotoStore{}, diveStore, scanner, 60)

	result, err := service.ScanAndGroup(nil, 0, 10)
	require.NoError(t, err)
	assert.Len(t, result.Groups, 2, "10-minute override must split the 20-minute gap")
}
