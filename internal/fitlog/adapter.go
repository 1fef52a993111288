// Package fitlog adapts FIT binary activity files into the unified dive
// record model. Decoding the container itself is delegated to
// github.com/tormoder/fit; this package only maps the decoded messages.
package fitlog

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"github.com/mkarlsen/divelog/internal/entities"
)

// Record fields whose names contain one of these substrings are treated as
// tank-pressure readings. The FIT schema is not self-describing for this
// purpose, so the match is heuristic.
var tankFieldHints = []string{"pressure", "tank", "air", "gas"}

// Parse decodes a FIT file and maps its sessions and records into dives.
// A file without session messages yields a single dive spanning all records.
func Parse(data []byte) (*entities.ImportResult, error) {
	f, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("malformed fit file: %w", err)
	}
	activity, err := f.Activity()
	if err != nil {
		return nil, fmt.Errorf("unsupported fit file: %w", err)
	}

	if len(activity.Records) == 0 {
		return entities.NewImportResult(nil), nil
	}

	var dives []entities.ImportedDive
	if len(activity.Sessions) == 0 {
		dives = append(dives, buildDive(activity.Records, activity.Events, activity.Records[0].Timestamp, 0))
	} else {
		for i, session := range activity.Sessions {
			start := session.StartTime
			duration := scaledField(reflect.ValueOf(session).Elem(), "TotalElapsedTime", 1000)
			records := recordsForSession(activity.Records, activity.Sessions, i)
			if len(records) == 0 {
				continue
			}
			dives = append(dives, buildDive(records, activity.Events, start, int(duration)))
		}
	}

	return entities.NewImportResult(dives), nil
}

// recordsForSession assigns each record to the last session started at or
// before its timestamp.
func recordsForSession(records []*fit.RecordMsg, sessions []*fit.SessionMsg, idx int) []*fit.RecordMsg {
	var out []*fit.RecordMsg
	for _, rec := range records {
		owner := 0
		for j, s := range sessions {
			if !s.StartTime.After(rec.Timestamp) {
				owner = j
			}
		}
		if owner == idx {
			out = append(out, rec)
		}
	}
	return out
}

func buildDive(records []*fit.RecordMsg, events []*fit.EventMsg, start time.Time, durationSeconds int) entities.ImportedDive {
	dive := entities.ImportedDive{
		Date: start.UTC().Format("2006-01-02"),
		Time: start.UTC().Format("15:04:05"),
	}

	var (
		maxDepth  float64
		depthSum  float64
		sensorIDs = map[string]int{}
	)

	for _, rec := range records {
		v := reflect.ValueOf(rec).Elem()
		elapsed := int(rec.Timestamp.Sub(start).Seconds())
		if elapsed < 0 {
			elapsed = 0
		}

		sample := entities.DiveSample{TimeSeconds: elapsed}
		if depth, ok := scaledFieldOK(v, "Depth", 1000); ok {
			sample.DepthM = depth
		}
		if temp, ok := scaledFieldOK(v, "Temperature", 1); ok {
			t := temp
			sample.TempC = &t
		}

		if sample.DepthM > maxDepth {
			maxDepth = sample.DepthM
		}
		depthSum += sample.DepthM

		dive.TankPressures = append(dive.TankPressures, tankPressures(v, elapsed, sensorIDs)...)
		dive.Samples = append(dive.Samples, sample)
	}

	for _, ev := range events {
		if ev.Timestamp.Before(start) {
			continue
		}
		if durationSeconds > 0 && ev.Timestamp.After(start.Add(time.Duration(durationSeconds)*time.Second)) {
			continue
		}
		dive.Events = append(dive.Events, entities.DiveEvent{
			TimeSeconds: int(ev.Timestamp.Sub(start).Seconds()),
			Name:        fmt.Sprintf("%v", ev.Event),
		})
	}

	dive.MaxDepthM = maxDepth
	if len(dive.Samples) > 0 {
		dive.MeanDepthM = math.Round(depthSum/float64(len(dive.Samples))*1000) / 1000
	}
	if durationSeconds > 0 {
		dive.DurationSeconds = durationSeconds
	} else if len(dive.Samples) > 0 {
		dive.DurationSeconds = dive.Samples[len(dive.Samples)-1].TimeSeconds
	}

	return dive
}

// tankPressures scans a record message's fields for tank-pressure readings
// by field-name heuristics. Sensor ids follow field encounter order; zero
// and negative readings are dropped, matching the XML path.
func tankPressures(v reflect.Value, elapsed int, sensorIDs map[string]int) []entities.TankPressure {
	var out []entities.TankPressure
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Name
		if !matchesTankHint(name) {
			continue
		}
		value, ok := numericFieldValue(v.Field(i))
		if !ok {
			continue
		}
		if name == "AbsolutePressure" {
			value /= 100000 // Pa to bar
		}
		if value <= 0 {
			continue
		}
		id, seen := sensorIDs[name]
		if !seen {
			id = len(sensorIDs)
			sensorIDs[name] = id
		}
		out = append(out, entities.TankPressure{
			SensorID:    id,
			TimeSeconds: elapsed,
			PressureBar: value,
		})
	}
	return out
}

func matchesTankHint(name string) bool {
	lower := strings.ToLower(name)
	for _, hint := range tankFieldHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

func scaledField(v reflect.Value, name string, scale float64) float64 {
	value, _ := scaledFieldOK(v, name, scale)
	return value
}

func scaledFieldOK(v reflect.Value, name string, scale float64) (float64, bool) {
	f := v.FieldByName(name)
	if !f.IsValid() {
		return 0, false
	}
	value, ok := numericFieldValue(f)
	if !ok {
		return 0, false
	}
	return value / scale, true
}

// numericFieldValue converts a numeric struct field to float64, rejecting
// the FIT invalid-value sentinels (all-ones for unsigned, max for signed).
func numericFieldValue(f reflect.Value) (float64, bool) {
	switch f.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		u := f.Uint()
		switch f.Kind() {
		case reflect.Uint8:
			if u == math.MaxUint8 {
				return 0, false
			}
		case reflect.Uint16:
			if u == math.MaxUint16 {
				return 0, false
			}
		default:
			if u == math.MaxUint32 || u == math.MaxUint64 {
				return 0, false
			}
		}
		return float64(u), true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		n := f.Int()
		switch f.Kind() {
		case reflect.Int8:
			if n == math.MaxInt8 {
				return 0, false
			}
		case reflect.Int16:
			if n == math.MaxInt16 {
				return 0, false
			}
		default:
			if n == math.MaxInt32 || n == math.MaxInt64 {
				return 0, false
			}
		}
		return float64(n), true
	case reflect.Float32, reflect.Float64:
		value := f.Float()
		if math.IsNaN(value) {
			return 0, false
		}
		return value, true
	default:
		return 0, false
	}
}
