package entities

import (
	"time"
)

// CaptureTimeLayout is the normalized capture-time representation stored on
// a ScannedPhoto. EXIF's colon-separated date is rewritten into this form.
const CaptureTimeLayout = "2006-01-02T15:04:05"

// ScannedPhoto is one image file's extracted metadata. A photo is produced
// fresh per scan and never mutated afterwards; CaptureTime is empty when no
// backend could recover a timestamp.
type ScannedPhoto struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TripID        uint      `gorm:"index" json:"trip_id"`
	FilePath      string    `gorm:"uniqueIndex;size:1024" json:"file_path"`
	FileName      string    `gorm:"size:256" json:"file_name"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	CaptureTime   string    `gorm:"index;size:19" json:"capture_time,omitempty"`
	CameraMake    string    `gorm:"size:128" json:"camera_make,omitempty"`
	CameraModel   string    `gorm:"size:128" json:"camera_model,omitempty"`
	LensModel     string    `gorm:"size:128" json:"lens_model,omitempty"`
	FocalLengthMM float64   `json:"focal_length_mm,omitempty"`
	Aperture      float64   `json:"aperture,omitempty"`
	ShutterSpeed  string    `gorm:"size:32" json:"shutter_speed,omitempty"`
	ISO           int       `json:"iso,omitempty"`
	ExposureComp  string    `gorm:"size:32" json:"exposure_comp,omitempty"`
	WhiteBalance  string    `gorm:"size:64" json:"white_balance,omitempty"`
	Flash         string    `gorm:"size:128" json:"flash,omitempty"`
	MeteringMode  string    `gorm:"size:64" json:"metering_mode,omitempty"`
	GPSLatitude   *float64  `json:"gps_latitude,omitempty"`
	GPSLongitude  *float64  `json:"gps_longitude,omitempty"`
	Processed     bool      `json:"processed"` // TIFF/PNG derivative, not a camera original
	ThumbnailPath string    `gorm:"size:1024" json:"thumbnail_path,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ParsedCaptureTime re-parses the normalized capture time. ok is false for
// an empty or malformed value.
func (p *ScannedPhoto) ParsedCaptureTime() (time.Time, bool) {
	if p.CaptureTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(CaptureTimeLayout, p.CaptureTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// PhotoGroup is a time-contiguous run of photos inferred to belong to one
// dive session. SuggestedDiveID/Number are filled in by the dive matcher.
type PhotoGroup struct {
	Photos              []ScannedPhoto `json:"photos"`
	StartTime           time.Time      `json:"start_time"`
	EndTime             time.Time      `json:"end_time"`
	SuggestedDiveID     *uint          `json:"suggested_dive_id,omitempty"`
	SuggestedDiveNumber *int           `json:"suggested_dive_number,omitempty"`
}

// Duration is the span between the first and last timestamped photo.
func (g *PhotoGroup) Duration() time.Duration {
	return g.EndTime.Sub(g.StartTime)
}
