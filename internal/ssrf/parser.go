// Package ssrf parses the Subsurface-style XML dive-log dialect into the
// unified dive record model.
package ssrf

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"

	"github.com/mkarlsen/divelog/internal/entities"
	"github.com/mkarlsen/divelog/internal/units"
)

// Parser is a streaming tag-driven state machine over the element stream.
// Depth, temperature, sample and event elements appear both inside and
// outside <divecomputer>; only the inner occurrences are authoritative,
// which is what the InDiveComputer state tracks.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

type parseState int

const (
	stateIdle parseState = iota
	stateInDive
	stateInDiveComputer
)

// Sensor-tagged pressure attributes on <sample>: pressure0, pressure1, ...
var pressureAttrPattern = regexp.MustCompile(`^pressure(\d+)$`)

// diveAccumulator owns the in-progress dive and its child buffers while the
// matching <dive> element is open. finalize moves the buffers into the dive.
type diveAccumulator struct {
	dive          entities.ImportedDive
	samples       []entities.DiveSample
	events        []entities.DiveEvent
	pressures     []entities.TankPressure
	tanks         []entities.DiveTank
	cylinderIndex int
}

// Parse consumes the full stream and returns the dives in source order plus
// the derived trip name and date range. Malformed XML is fatal for the whole
// file: no partial result is returned.
func (p *Parser) Parse(r io.Reader) (*entities.ImportResult, error) {
	decoder := xml.NewDecoder(r)

	var (
		dives []entities.ImportedDive
		state = stateIdle
		cur   *diveAccumulator
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("malformed dive log: %w", err)
		}

		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "dive":
				cur = newDiveAccumulator(t.Attr)
				state = stateInDive

			case "cylinder":
				// Cylinders are dive-level, valid inside or outside the
				// divecomputer element.
				if cur != nil {
					cur.addCylinder(t.Attr)
				}

			case "divecomputer":
				if cur != nil {
					state = stateInDiveComputer
					cur.dive.ComputerModel = attrValue(t.Attr, "model")
				}

			case "depth":
				if state == stateInDiveComputer {
					cur.dive.MaxDepthM = units.ParseFloatWithUnit(attrValue(t.Attr, "max"), "m")
					cur.dive.MeanDepthM = units.ParseFloatWithUnit(attrValue(t.Attr, "mean"), "m")
				}

			case "temperature":
				if state == stateInDiveComputer {
					if v, ok := optionalAttr(t.Attr, "water"); ok {
						cur.dive.WaterTempC = floatPtr(units.ParseFloatWithUnit(v, "C"))
					}
					if v, ok := optionalAttr(t.Attr, "air"); ok {
						cur.dive.AirTempC = floatPtr(units.ParseFloatWithUnit(v, "C"))
					}
				}

			case "surface":
				if state == stateInDiveComputer {
					if v, ok := optionalAttr(t.Attr, "pressure"); ok {
						cur.dive.SurfacePressureBar = floatPtr(units.ParseFloatWithUnit(v, "bar"))
					}
				}

			case "extradata":
				if state == stateInDiveComputer && attrValue(t.Attr, "key") == "Serial" {
					cur.dive.ComputerSerial = attrValue(t.Attr, "value")
				}

			case "sample":
				if state == stateInDiveComputer {
					cur.addSample(t.Attr)
				}

			case "event":
				if state == stateInDiveComputer {
					cur.addEvent(t.Attr)
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "divecomputer":
				if state == stateInDiveComputer {
					state = stateInDive
				}
			case "dive":
				if cur != nil {
					dives = append(dives, cur.finalize())
					cur = nil
				}
				state = stateIdle
			}
		}
	}

	return entities.NewImportResult(dives), nil
}

func newDiveAccumulator(attrs []xml.Attr) *diveAccumulator {
	acc := &diveAccumulator{}
	acc.dive.Number = parseIntAttr(attrValue(attrs, "number"))
	acc.dive.Date = attrValue(attrs, "date")
	acc.dive.Time = attrValue(attrs, "time")
	acc.dive.DurationSeconds = units.ParseDurationSeconds(attrValue(attrs, "duration"))
	if v, ok := optionalAttr(attrs, "otu"); ok {
		acc.dive.OTU = intPtr(parseIntAttr(v))
	}
	if v, ok := optionalAttr(attrs, "cns"); ok {
		acc.dive.CNSPercent = floatPtr(units.ParsePercent(v))
	}
	return acc
}

func (a *diveAccumulator) addCylinder(attrs []xml.Attr) {
	tank := entities.DiveTank{GasIndex: a.cylinderIndex}
	if v, ok := optionalAttr(attrs, "o2"); ok {
		tank.O2Percent = floatPtr(units.ParsePercent(v))
	}
	if v, ok := optionalAttr(attrs, "he"); ok {
		tank.HePercent = floatPtr(units.ParsePercent(v))
	}
	if v, ok := optionalAttr(attrs, "start"); ok {
		tank.StartBar = floatPtr(units.ParseFloatWithUnit(v, "bar"))
	}
	if v, ok := optionalAttr(attrs, "end"); ok {
		tank.EndBar = floatPtr(units.ParseFloatWithUnit(v, "bar"))
	}
	a.tanks = append(a.tanks, tank)
	a.cylinderIndex++
}

func (a *diveAccumulator) addSample(attrs []xml.Attr) {
	sample := entities.DiveSample{
		TimeSeconds: units.ParseTimeSeconds(attrValue(attrs, "time")),
		DepthM:      units.ParseFloatWithUnit(attrValue(attrs, "depth"), "m"),
	}

	for _, attr := range attrs {
		name := attr.Name.Local
		switch name {
		case "time", "depth":
			// handled above
		case "temp":
			sample.TempC = floatPtr(units.ParseFloatWithUnit(attr.Value, "C"))
		case "ndl":
			sample.NDLSeconds = intPtr(units.ParseTimeSeconds(attr.Value))
		case "rbt":
			sample.RBTSeconds = intPtr(units.ParseTimeSeconds(attr.Value))
		case "pressure":
			sample.PressureBar = floatPtr(units.ParseFloatWithUnit(attr.Value, "bar"))
		default:
			m := pressureAttrPattern.FindStringSubmatch(name)
			if m == nil {
				continue
			}
			sensor, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			pressure := units.ParseFloatWithUnit(attr.Value, "bar")
			// Zero and negative readings are sensor noise/absence, not data.
			if pressure > 0 {
				a.pressures = append(a.pressures, entities.TankPressure{
					SensorID:    sensor,
					TimeSeconds: sample.TimeSeconds,
					PressureBar: pressure,
				})
			}
		}
	}

	a.samples = append(a.samples, sample)
}

func (a *diveAccumulator) addEvent(attrs []xml.Attr) {
	event := entities.DiveEvent{
		TimeSeconds: units.ParseTimeSeconds(attrValue(attrs, "time")),
		Type:        parseIntAttr(attrValue(attrs, "type")),
		Name:        attrValue(attrs, "name"),
	}
	if v, ok := optionalAttr(attrs, "flags"); ok {
		event.Flags = intPtr(parseIntAttr(v))
	}
	if v, ok := optionalAttr(attrs, "value"); ok {
		event.Value = intPtr(parseIntAttr(v))
	}
	a.events = append(a.events, event)
}

func (a *diveAccumulator) finalize() entities.ImportedDive {
	dive := a.dive
	dive.Samples = a.samples
	dive.Events = a.events
	dive.TankPressures = a.pressures
	dive.Tanks = a.tanks
	return dive
}

func attrValue(attrs []xml.Attr, name string) string {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value
		}
	}
	return ""
}

func optionalAttr(attrs []xml.Attr, name string) (string, bool) {
	for _, attr := range attrs {
		if attr.Name.Local == name {
			return attr.Value, true
		}
	}
	return "", false
}

// parseIntAttr is the permissive integer fallback: unparseable attribute
// values become 0 rather than aborting the parse.
func parseIntAttr(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
