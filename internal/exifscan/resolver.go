package exifscan

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mkarlsen/divelog/internal/entities"
	"github.com/mkarlsen/divelog/internal/units"
)

// FusionResolver reconciles, per file, the findings of the permissive and
// strict backends into one metadata record. The permissive backend wins
// field by field; the strict backend fills absent fields. If the permissive
// backend recovers none of capture time, aperture and ISO its result is
// treated as empty and replaced wholesale by the strict backend's: a
// near-total failure must not be mixed with a few accidental matches.
type FusionResolver struct {
	permissive Backend
	strict     Backend
}

func NewFusionResolver(permissive, strict Backend) *FusionResolver {
	return &FusionResolver{permissive: permissive, strict: strict}
}

// Resolve produces the best-effort metadata for one file. Backend errors
// are non-fatal: a failed backend contributes an empty field set.
func (r *FusionResolver) Resolve(path string) entities.ScannedPhoto {
	fields := r.fuse(path)

	photo := entities.ScannedPhoto{
		CaptureTime:   captureTime(fields),
		CameraMake:    stringField(fields, FieldMake),
		CameraModel:   stringField(fields, FieldModel),
		LensModel:     stringField(fields, FieldLensModel),
		FocalLengthMM: focalLength(fields),
		Aperture:      aperture(fields),
		ShutterSpeed:  shutterSpeed(fields),
		ISO:           iso(fields),
		ExposureComp:  stringField(fields, FieldExposureComp),
		WhiteBalance:  stringField(fields, FieldWhiteBalance),
		Flash:         stringField(fields, FieldFlash),
		MeteringMode:  stringField(fields, FieldMeteringMode),
	}
	photo.GPSLatitude = gpsCoordinate(fields, FieldGPSLatitude, FieldGPSLatitudeRef)
	photo.GPSLongitude = gpsCoordinate(fields, FieldGPSLongitude, FieldGPSLongitudeRef)

	return photo
}

func (r *FusionResolver) fuse(path string) Fields {
	primary := r.extract(r.permissive, path)

	if isEmptyResult(primary) {
		// All-or-nothing second pass.
		if fallback := r.extract(r.strict, path); len(fallback) > 0 {
			return fallback
		}
		return primary
	}

	secondary := r.extract(r.strict, path)
	for key, value := range secondary {
		if _, ok := primary[key]; !ok {
			primary[key] = value
		}
	}
	return primary
}

func (r *FusionResolver) extract(b Backend, path string) Fields {
	if b == nil {
		return Fields{}
	}
	fields, err := b.Extract(path)
	if err != nil || fields == nil {
		return Fields{}
	}
	return fields
}

// isEmptyResult reports whether a backend recovered none of the three
// anchor fields: capture time, aperture, ISO.
func isEmptyResult(f Fields) bool {
	for _, key := range []string{
		FieldDateTimeOriginal, FieldDateTimeDigitized, FieldDateTime,
		FieldFNumber, FieldApertureValue,
		FieldISO,
	} {
		if _, ok := f[key]; ok {
			return false
		}
	}
	return true
}

var captureTimeLayouts = []string{
	"2006:01:02 15:04:05", // EXIF's colon-separated date
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// captureTime takes the first populated of DateTimeOriginal,
// DateTimeDigitized, DateTime and normalizes it. Unparseable text yields an
// absent capture time, not an error.
func captureTime(f Fields) string {
	for _, key := range []string{FieldDateTimeOriginal, FieldDateTimeDigitized, FieldDateTime} {
		raw := stringField(f, key)
		if raw == "" {
			continue
		}
		// Trailing sub-seconds or timezone offsets are not part of the
		// normalized form.
		if len(raw) > 19 {
			raw = raw[:19]
		}
		for _, layout := range captureTimeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format(entities.CaptureTimeLayout)
			}
		}
	}
	return ""
}

// focalLength prefers the 35mm-equivalent field over the physical focal
// length.
func focalLength(f Fields) float64 {
	if v, ok := numericField(f, FieldFocalLength35mm, "mm"); ok {
		return v
	}
	if v, ok := numericField(f, FieldFocalLength, "mm"); ok {
		return v
	}
	return 0
}

// aperture prefers the direct f-number; absent that, the APEX aperture
// value is converted via f = 2^(apex/2) and rounded to one decimal.
func aperture(f Fields) float64 {
	if v, ok := numericField(f, FieldFNumber, ""); ok {
		return v
	}
	if apex, ok := numericField(f, FieldApertureValue, ""); ok {
		return math.Round(math.Pow(2, apex/2)*10) / 10
	}
	return 0
}

// shutterSpeed prefers the direct exposure time; absent that, the APEX
// shutter value is converted, rendered "N.Ns" at or above one second and
// "1/D" below it.
func shutterSpeed(f Fields) string {
	if raw, ok := f[FieldExposureTime]; ok {
		s := strings.TrimSpace(valueToString(raw))
		s = strings.TrimSuffix(s, "s")
		s = strings.TrimSpace(s)
		if s != "" {
			return s
		}
	}
	if apex, ok := numericField(f, FieldShutterSpeed, ""); ok {
		seconds := math.Pow(2, -apex)
		return renderSeconds(seconds)
	}
	return ""
}

func renderSeconds(seconds float64) string {
	if seconds >= 1 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("1/%d", int(math.Round(1/seconds)))
}

// iso accepts a plain integer or a list-typed sensitivity field, taking the
// first element.
func iso(f Fields) int {
	raw, ok := f[FieldISO]
	if !ok {
		return 0
	}
	if list, isList := raw.([]any); isList {
		if len(list) == 0 {
			return 0
		}
		raw = list[0]
	}
	v, ok := toFloat(raw, "")
	if !ok {
		return 0
	}
	return int(v)
}

var dmsPattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*(?:°|deg)\s*(?:(\d+(?:\.\d+)?)\s*')?\s*(?:(\d+(?:\.\d+)?)\s*")?\s*([NSEW])?\s*$`)

// gpsCoordinate accepts a plain decimal or degrees/minutes/seconds text. A
// trailing hemisphere letter of S or W negates the result, as does the
// separate Ref field.
func gpsCoordinate(f Fields, key, refKey string) *float64 {
	raw, ok := f[key]
	if !ok {
		return nil
	}

	var value float64
	if v, isNumeric := toFloat(raw, ""); isNumeric {
		value = v
	} else {
		text := valueToString(raw)
		m := dmsPattern.FindStringSubmatch(text)
		if m == nil {
			return nil
		}
		deg, _ := strconv.ParseFloat(m[1], 64)
		var minutes, seconds float64
		if m[2] != "" {
			minutes, _ = strconv.ParseFloat(m[2], 64)
		}
		if m[3] != "" {
			seconds, _ = strconv.ParseFloat(m[3], 64)
		}
		value = deg + minutes/60 + seconds/3600
		if m[4] == "S" || m[4] == "W" {
			value = -value
		}
	}

	ref := strings.TrimSpace(stringField(f, refKey))
	if ref == "S" || ref == "W" {
		value = -math.Abs(value)
	}
	return &value
}

func stringField(f Fields, key string) string {
	raw, ok := f[key]
	if !ok {
		return ""
	}
	return strings.TrimSpace(valueToString(raw))
}

func valueToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []any:
		if len(t) == 0 {
			return ""
		}
		return valueToString(t[0])
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// numericField reads a field that may arrive as a number, a plain numeric
// string, a unit-suffixed string or a rational ("28/10").
func numericField(f Fields, key, unit string) (float64, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}
	return toFloat(raw, unit)
}

func toFloat(raw any, unit string) (float64, bool) {
	switch t := raw.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	case []any:
		if len(t) == 0 {
			return 0, false
		}
		return toFloat(t[0], unit)
	case string:
		s := strings.TrimSpace(t)
		if strings.Contains(s, "/") {
			if v := units.ParseRational(s); v != 0 {
				return v, true
			}
			return 0, false
		}
		if unit != "" {
			s = strings.TrimSpace(strings.TrimSuffix(s, unit))
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
