package exifscan

import (
	"sort"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

// EXIF tag-table names translated to the canonical keys. Most already match;
// the aliases cover tags whose table name differs from the common one.
var ifdTagMap = map[string]string{
	FieldDateTimeOriginal:     FieldDateTimeOriginal,
	FieldDateTimeDigitized:    FieldDateTimeDigitized,
	FieldDateTime:             FieldDateTime,
	FieldMake:                 FieldMake,
	FieldModel:                FieldModel,
	FieldLensModel:            FieldLensModel,
	FieldFocalLength:          FieldFocalLength,
	"FocalLengthIn35mmFilm":   FieldFocalLength35mm,
	FieldFNumber:              FieldFNumber,
	FieldApertureValue:        FieldApertureValue,
	FieldExposureTime:         FieldExposureTime,
	FieldShutterSpeed:         FieldShutterSpeed,
	"ISOSpeedRatings":         FieldISO,
	"PhotographicSensitivity": FieldISO,
	"ExposureBiasValue":       FieldExposureComp,
	FieldWhiteBalance:         FieldWhiteBalance,
	FieldFlash:                FieldFlash,
	FieldMeteringMode:         FieldMeteringMode,
	FieldGPSLatitude:          FieldGPSLatitude,
	FieldGPSLongitude:         FieldGPSLongitude,
	FieldGPSLatitudeRef:       FieldGPSLatitudeRef,
	FieldGPSLongitudeRef:      FieldGPSLongitudeRef,
}

// IFDBackend is the strict backend: spec-compliant EXIF parsing with exact
// IFD positions. Many RAW/DNG files store their EXIF block in a sub-IFD
// rather than IFD0, so fields are taken from the primary IFD first, then
// the thumbnail IFD, then any remaining IFD, first match winning.
type IFDBackend struct{}

func NewIFDBackend() *IFDBackend {
	return &IFDBackend{}
}

func (b *IFDBackend) Name() string { return "ifd" }

func (b *IFDBackend) Extract(path string) (Fields, error) {
	rawExif, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		return nil, err
	}

	tags, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(tags, func(i, j int) bool {
		return ifdRank(tags[i].IfdPath) < ifdRank(tags[j].IfdPath)
	})

	fields := Fields{}
	for _, tag := range tags {
		canonical, ok := ifdTagMap[tag.TagName]
		if !ok {
			continue
		}
		if _, seen := fields[canonical]; seen {
			continue
		}
		if tag.FormattedFirst == "" {
			continue
		}
		fields[canonical] = tag.FormattedFirst
	}
	return fields, nil
}

// ifdRank orders IFDs for the first-match-wins search: the primary image
// directory, then the thumbnail directory, then everything else (EXIF
// sub-IFDs, GPS, maker-specific directories).
func ifdRank(path string) int {
	switch {
	case path == "IFD" || path == "IFD0":
		return 0
	case strings.HasPrefix(path, "IFD1"):
		return 1
	default:
		return 2
	}
}
