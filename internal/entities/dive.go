package entities

import (
	"time"
)

// TripNamePrefix is prepended to the trip start date when a log file is
// imported without a target trip.
const TripNamePrefix = "Imported dives "

// Trip groups the dives imported from one or more log files.
type Trip struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:256" json:"name"`
	StartDate string    `gorm:"size:10" json:"start_date"` // YYYY-MM-DD
	EndDate   string    `gorm:"size:10" json:"end_date"`   // YYYY-MM-DD
	CreatedAt time.Time `json:"created_at"`

	Dives []ImportedDive `gorm:"foreignKey:TripID" json:"dives,omitempty"`
}

// ImportedDive is one logged dive as recovered from a dive-computer export.
// Date and Time keep the source's textual representation; optional header
// fields are nil when the source omits them.
type ImportedDive struct {
	ID                 uint     `gorm:"primaryKey" json:"id"`
	TripID             uint     `gorm:"index" json:"trip_id"`
	Number             int      `gorm:"index" json:"number"`
	Date               string   `gorm:"size:20" json:"date"`
	Time               string   `gorm:"size:20" json:"time"`
	DurationSeconds    int      `json:"duration_seconds"`
	MaxDepthM          float64  `json:"max_depth_m"`
	MeanDepthM         float64  `json:"mean_depth_m"`
	WaterTempC         *float64 `json:"water_temp_c,omitempty"`
	AirTempC           *float64 `json:"air_temp_c,omitempty"`
	SurfacePressureBar *float64 `json:"surface_pressure_bar,omitempty"`
	OTU                *int     `json:"otu,omitempty"`
	CNSPercent         *float64 `json:"cns_percent,omitempty"`
	ComputerModel      string   `gorm:"size:128" json:"computer_model,omitempty"`
	ComputerSerial     string   `gorm:"size:64" json:"computer_serial,omitempty"`

	Samples       []DiveSample   `gorm:"foreignKey:DiveID" json:"samples,omitempty"`
	Events        []DiveEvent    `gorm:"foreignKey:DiveID" json:"events,omitempty"`
	TankPressures []TankPressure `gorm:"foreignKey:DiveID" json:"tank_pressures,omitempty"`
	Tanks         []DiveTank     `gorm:"foreignKey:DiveID" json:"tanks,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// DiveSample is one timestamped telemetry point. Depth is the only field
// defaulted to zero; every other field is nil when the source omits it.
type DiveSample struct {
	ID          uint     `gorm:"primaryKey" json:"id"`
	DiveID      uint     `gorm:"index" json:"dive_id"`
	TimeSeconds int      `json:"time_seconds"`
	DepthM      float64  `json:"depth_m"`
	TempC       *float64 `json:"temp_c,omitempty"`
	PressureBar *float64 `json:"pressure_bar,omitempty"` // primary-sensor convenience field
	NDLSeconds  *int     `json:"ndl_seconds,omitempty"`
	RBTSeconds  *int     `json:"rbt_seconds,omitempty"`
}

// DiveEvent is a discrete event recorded by the dive computer (gas change,
// deco violation, bookmark, ...).
type DiveEvent struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	DiveID      uint   `gorm:"index" json:"dive_id"`
	TimeSeconds int    `json:"time_seconds"`
	Type        int    `json:"type"`
	Name        string `gorm:"size:128" json:"name"`
	Flags       *int   `json:"flags,omitempty"`
	Value       *int   `json:"value,omitempty"`
}

// TankPressure is one timestamped pressure reading from a specific gas
// sensor. Distinct from DiveSample.PressureBar: a dive with multiple
// transmitters yields one of these per sensor per sample.
type TankPressure struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	DiveID      uint    `gorm:"index" json:"dive_id"`
	SensorID    int     `json:"sensor_id"`
	TimeSeconds int     `json:"time_seconds"`
	PressureBar float64 `json:"pressure_bar"`
}

// DiveTank is one cylinder's static gas mix and pressure summary. GasIndex
// follows encounter order within the dive, starting at 0.
type DiveTank struct {
	ID        uint     `gorm:"primaryKey" json:"id"`
	DiveID    uint     `gorm:"index" json:"dive_id"`
	GasIndex  int      `json:"gas_index"`
	O2Percent *float64 `json:"o2_percent,omitempty"`
	HePercent *float64 `json:"he_percent,omitempty"`
	StartBar  *float64 `json:"start_bar,omitempty"`
	EndBar    *float64 `json:"end_bar,omitempty"`
}

// ImportResult is the outcome of parsing one log file: the dives in source
// order plus the derived trip name and date range.
type ImportResult struct {
	Dives     []ImportedDive `json:"dives"`
	TripName  string         `json:"trip_name"`
	StartDate string         `json:"start_date"`
	EndDate   string         `json:"end_date"`
}

// NewImportResult computes the trip date range as the textual min/max over
// the parsed dive dates. Lexicographic comparison is correct for the
// zero-padded YYYY-MM-DD dates the formats carry.
func NewImportResult(dives []ImportedDive) *ImportResult {
	result := &ImportResult{Dives: dives}
	for _, d := range dives {
		if d.Date == "" {
			continue
		}
		if result.StartDate == "" || d.Date < result.StartDate {
			result.StartDate = d.Date
		}
		if result.EndDate == "" || d.Date > result.EndDate {
			result.EndDate = d.Date
		}
	}
	if result.StartDate != "" {
		result.TripName = TripNamePrefix + result.StartDate
	}
	return result
}
