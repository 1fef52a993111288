package exifscan

import (
	"fmt"

	"github.com/barasher/go-exiftool"
)

// exiftool's tag names translated to the canonical keys. The DateTime* tags
// go by different names in exiftool output than in the EXIF spec.
var exiftoolKeyMap = map[string]string{
	"DateTimeOriginal":        FieldDateTimeOriginal,
	"CreateDate":              FieldDateTimeDigitized,
	"ModifyDate":              FieldDateTime,
	"Make":                    FieldMake,
	"Model":                   FieldModel,
	"LensModel":               FieldLensModel,
	"FocalLength":             FieldFocalLength,
	"FocalLengthIn35mmFormat": FieldFocalLength35mm,
	"FNumber":                 FieldFNumber,
	"ApertureValue":           FieldApertureValue,
	"ExposureTime":            FieldExposureTime,
	"ShutterSpeedValue":       FieldShutterSpeed,
	"ISO":                     FieldISO,
	"ExposureCompensation":    FieldExposureComp,
	"WhiteBalance":            FieldWhiteBalance,
	"Flash":                   FieldFlash,
	"MeteringMode":            FieldMeteringMode,
	"GPSLatitude":             FieldGPSLatitude,
	"GPSLongitude":            FieldGPSLongitude,
	"GPSLatitudeRef":          FieldGPSLatitudeRef,
	"GPSLongitudeRef":         FieldGPSLongitudeRef,
}

// ExiftoolBackend is the permissive backend: exiftool reads nearly every
// RAW/TIFF container in the wild, at the cost of looser field semantics.
type ExiftoolBackend struct {
	et *exiftool.Exiftool
}

// NewExiftoolBackend starts a long-lived exiftool process. Callers own the
// Close.
func NewExiftoolBackend() (*ExiftoolBackend, error) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		return nil, fmt.Errorf("starting exiftool: %w", err)
	}
	return &ExiftoolBackend{et: et}, nil
}

func (b *ExiftoolBackend) Name() string { return "exiftool" }

func (b *ExiftoolBackend) Close() error {
	return b.et.Close()
}

func (b *ExiftoolBackend) Extract(path string) (Fields, error) {
	metas := b.et.ExtractMetadata(path)
	if len(metas) == 0 {
		return nil, fmt.Errorf("exiftool returned no metadata for %s", path)
	}
	meta := metas[0]
	if meta.Err != nil {
		return nil, meta.Err
	}

	fields := Fields{}
	for key, canonical := range exiftoolKeyMap {
		if v, ok := meta.Fields[key]; ok && v != nil {
			fields[canonical] = v
		}
	}
	return fields, nil
}
