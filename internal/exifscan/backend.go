// Package exifscan recovers photo metadata through two independent EXIF
// backends and fuses their answers into one record per file.
package exifscan

// Canonical field keys shared by all backends. Backends translate their
// library's naming into these before handing fields to the resolver.
const (
	FieldDateTimeOriginal  = "DateTimeOriginal"
	FieldDateTimeDigitized = "DateTimeDigitized"
	FieldDateTime          = "DateTime"
	FieldMake              = "Make"
	FieldModel             = "Model"
	FieldLensModel         = "LensModel"
	FieldFocalLength       = "FocalLength"
	FieldFocalLength35mm   = "FocalLengthIn35mmFormat"
	FieldFNumber           = "FNumber"
	FieldApertureValue     = "ApertureValue"
	FieldExposureTime      = "ExposureTime"
	FieldShutterSpeed      = "ShutterSpeedValue"
	FieldISO               = "ISO"
	FieldExposureComp      = "ExposureCompensation"
	FieldWhiteBalance      = "WhiteBalance"
	FieldFlash             = "Flash"
	FieldMeteringMode      = "MeteringMode"
	FieldGPSLatitude       = "GPSLatitude"
	FieldGPSLongitude      = "GPSLongitude"
	FieldGPSLatitudeRef    = "GPSLatitudeRef"
	FieldGPSLongitudeRef   = "GPSLongitudeRef"
)

// Fields is one backend's raw findings for a file, keyed by canonical field
// name. Values keep whatever representation the backend produced (string,
// number, rational text, list); the resolver normalizes them.
type Fields map[string]any

// Backend extracts photo metadata from one file. Implementations must treat
// per-file failures as errors, never panics; the resolver degrades a failed
// backend to an empty field set.
type Backend interface {
	Name() string
	Extract(path string) (Fields, error)
}
