// Package divejson parses the vendor JSON dive export into the unified dive
// record model. The export carries metric units directly (seconds, meters,
// celsius, bar), so no unit-string normalization is needed here.
package divejson

import (
	"encoding/json"
	"fmt"

	"github.com/mkarlsen/divelog/internal/entities"
)

type vendorLog struct {
	Dives []vendorDive `json:"dives"`
}

type vendorDive struct {
	Number             int            `json:"number"`
	Date               string         `json:"date"`
	Time               string         `json:"time"`
	DurationSeconds    int            `json:"duration"`
	MaxDepthM          float64        `json:"max_depth"`
	MeanDepthM         float64        `json:"mean_depth"`
	WaterTempC         *float64       `json:"water_temp"`
	AirTempC           *float64       `json:"air_temp"`
	SurfacePressureBar *float64       `json:"surface_pressure"`
	OTU                *int           `json:"otu"`
	CNSPercent         *float64       `json:"cns"`
	Computer           vendorComputer `json:"computer"`
	Samples            []vendorSample `json:"samples"`
	Events             []vendorEvent  `json:"events"`
	Cylinders          []vendorTank   `json:"cylinders"`
}

type vendorComputer struct {
	Model  string `json:"model"`
	Serial string `json:"serial"`
}

type vendorSample struct {
	TimeSeconds int              `json:"t"`
	DepthM      float64          `json:"depth"`
	TempC       *float64         `json:"temp"`
	PressureBar *float64         `json:"pressure"`
	NDLSeconds  *int             `json:"ndl"`
	RBTSeconds  *int             `json:"rbt"`
	Tanks       []vendorPressure `json:"tanks"`
}

type vendorPressure struct {
	Sensor      int     `json:"sensor"`
	PressureBar float64 `json:"pressure"`
}

type vendorEvent struct {
	TimeSeconds int    `json:"t"`
	Type        int    `json:"type"`
	Name        string `json:"name"`
	Flags       *int   `json:"flags"`
	Value       *int   `json:"value"`
}

type vendorTank struct {
	O2Percent *float64 `json:"o2"`
	HePercent *float64 `json:"he"`
	StartBar  *float64 `json:"start"`
	EndBar    *float64 `json:"end"`
}

// Parse decodes a vendor JSON export. Malformed JSON is fatal for the whole
// file; no partial dive list is returned.
func Parse(data []byte) (*entities.ImportResult, error) {
	var log vendorLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("malformed dive log: %w", err)
	}

	dives := make([]entities.ImportedDive, 0, len(log.Dives))
	for _, vd := range log.Dives {
		dives = append(dives, convertDive(vd))
	}

	return entities.NewImportResult(dives), nil
}

func convertDive(vd vendorDive) entities.ImportedDive {
	dive := entities.ImportedDive{
		Number:             vd.Number,
		Date:               vd.Date,
		Time:               vd.Time,
		DurationSeconds:    vd.DurationSeconds,
		MaxDepthM:          vd.MaxDepthM,
		MeanDepthM:         vd.MeanDepthM,
		WaterTempC:         vd.WaterTempC,
		AirTempC:           vd.AirTempC,
		SurfacePressureBar: vd.SurfacePressureBar,
		OTU:                vd.OTU,
		CNSPercent:         vd.CNSPercent,
		ComputerModel:      vd.Computer.Model,
		ComputerSerial:     vd.Computer.Serial,
	}

	for _, vs := range vd.Samples {
		dive.Samples = append(dive.Samples, entities.DiveSample{
			TimeSeconds: vs.TimeSeconds,
			DepthM:      vs.DepthM,
			TempC:       vs.TempC,
			PressureBar: vs.PressureBar,
			NDLSeconds:  vs.NDLSeconds,
			RBTSeconds:  vs.RBTSeconds,
		})
		for _, vp := range vs.Tanks {
			// Same filter as the XML path: zero and negative readings are
			// sensor noise, not data.
			if vp.PressureBar > 0 {
				dive.TankPressures = append(dive.TankPressures, entities.TankPressure{
					SensorID:    vp.Sensor,
					TimeSeconds: vs.TimeSeconds,
					PressureBar: vp.PressureBar,
				})
			}
		}
	}

	for _, ve := range vd.Events {
		dive.Events = append(dive.Events, entities.DiveEvent{
			TimeSeconds: ve.TimeSeconds,
			Type:        ve.Type,
			Name:        ve.Name,
			Flags:       ve.Flags,
			Value:       ve.Value,
		})
	}

	for i, vt := range vd.Cylinders {
		dive.Tanks = append(dive.Tanks, entities.DiveTank{
			GasIndex:  i,
			O2Percent: vt.O2Percent,
			HePercent: vt.HePercent,
			StartBar:  vt.StartBar,
			EndBar:    vt.EndBar,
		})
	}

	return dive
}
