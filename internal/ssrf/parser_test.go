package ssrf

import (
	"reflect"
	"strings"
	"testing"
)

const twoDiveLog = `<divelog program="subsurface" version="3">
<dives>
<dive number="1" date="2024-01-17" time="09:41:02" duration="66:40 min" otu="12" cns="8%">
  <cylinder o2="32.0%" start="210.0 bar" end="62.0 bar" />
  <divecomputer model="Shearwater Perdix">
    <depth max="22.893 m" mean="14.2 m" />
    <temperature water="28.7 C" air="31.0 C" />
    <surface pressure="1.012 bar" />
    <extradata key="Serial" value="20ab4711" />
    <sample time="0:10 min" depth="2.3 m" pressure0="209.5 bar" />
    <sample time="0:20 min" depth="4.1 m" temp="28.9 C" ndl="99:00 min" />
    <event time="1:40 min" type="25" flags="1" name="gaschange" value="32" />
  </divecomputer>
</dive>
<dive number="2" date="2024-01-15" time="14:02:11" duration="45:00 min">
  <divecomputer model="Shearwater Perdix">
    <depth max="18.1 m" mean="11.0 m" />
    <sample time="0:10 min" depth="1.9 m" />
  </divecomputer>
</dive>
</dives>
</divelog>
`

func TestParser_Parse_TwoDives(t *testing.T) {
	parser := NewParser()
	result, err := parser.Parse(strings.NewReader(twoDiveLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Dives) != 2 {
		t.Fatalf("expected 2 dives, got %d", len(result.Dives))
	}

	dive := result.Dives[0]
	if dive.Number != 1 {
		t.Errorf("expected number 1, got %d", dive.Number)
	}
	if dive.Date != "2024-01-17" {
		t.Errorf("expected date 2024-01-17, got %q", dive.Date)
	}
	if dive.Time != "09:41:02" {
		t.Errorf("expected time 09:41:02, got %q", dive.Time)
	}
	if dive.DurationSeconds != 4000 {
		t.Errorf("expected duration 4000s, got %d", dive.DurationSeconds)
	}
	if dive.OTU == nil || *dive.OTU != 12 {
		t.Errorf("expected otu 12, got %v", dive.OTU)
	}
	if dive.CNSPercent == nil || *dive.CNSPercent != 8.0 {
		t.Errorf("expected cns 8.0, got %v", dive.CNSPercent)
	}
	if dive.MaxDepthM != 22.893 {
		t.Errorf("expected max depth 22.893, got %v", dive.MaxDepthM)
	}
	if dive.MeanDepthM != 14.2 {
		t.Errorf("expected mean depth 14.2, got %v", dive.MeanDepthM)
	}
	if dive.WaterTempC == nil || *dive.WaterTempC != 28.7 {
		t.Errorf("expected water temp 28.7, got %v", dive.WaterTempC)
	}
	if dive.SurfacePressureBar == nil || *dive.SurfacePressureBar != 1.012 {
		t.Errorf("expected surface pressure 1.012, got %v", dive.SurfacePressureBar)
	}
	if dive.ComputerModel != "Shearwater Perdix" {
		t.Errorf("expected computer model, got %q", dive.ComputerModel)
	}
	if dive.ComputerSerial != "20ab4711" {
		t.Errorf("expected serial 20ab4711, got %q", dive.ComputerSerial)
	}

	if len(dive.Samples) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(dive.Samples))
	}
	if dive.Samples[0].TimeSeconds != 10 || dive.Samples[0].DepthM != 2.3 {
		t.Errorf("unexpected first sample: %+v", dive.Samples[0])
	}
	if dive.Samples[0].TempC != nil {
		t.Errorf("first sample should have no temperature")
	}
	if dive.Samples[1].TempC == nil || *dive.Samples[1].TempC != 28.9 {
		t.Errorf("expected second sample temp 28.9, got %v", dive.Samples[1].TempC)
	}
	if dive.Samples[1].NDLSeconds == nil || *dive.Samples[1].NDLSeconds != 5940 {
		t.Errorf("expected ndl 5940s, got %v", dive.Samples[1].NDLSeconds)
	}

	if len(dive.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(dive.Events))
	}
	event := dive.Events[0]
	if event.TimeSeconds != 100 || event.Type != 25 || event.Name != "gaschange" {
		t.Errorf("unexpected event: %+v", event)
	}
	if event.Flags == nil || *event.Flags != 1 || event.Value == nil || *event.Value != 32 {
		t.Errorf("unexpected event flags/value: %+v", event)
	}

	if len(dive.Tanks) != 1 {
		t.Fatalf("expected 1 tank, got %d", len(dive.Tanks))
	}
	tank := dive.Tanks[0]
	if tank.GasIndex != 0 {
		t.Errorf("expected gas index 0, got %d", tank.GasIndex)
	}
	if tank.O2Percent == nil || *tank.O2Percent != 32.0 {
		t.Errorf("expected o2 32.0, got %v", tank.O2Percent)
	}
	if tank.StartBar == nil || *tank.StartBar != 210.0 {
		t.Errorf("expected start 210.0, got %v", tank.StartBar)
	}
	if tank.HePercent != nil {
		t.Errorf("tank should have no helium")
	}

	if len(dive.TankPressures) != 1 {
		t.Fatalf("expected 1 tank pressure, got %d", len(dive.TankPressures))
	}
	tp := dive.TankPressures[0]
	if tp.SensorID != 0 || tp.TimeSeconds != 10 || tp.PressureBar != 209.5 {
		t.Errorf("unexpected tank pressure: %+v", tp)
	}

	second := result.Dives[1]
	if second.Number != 2 || len(second.Samples) != 1 {
		t.Errorf("unexpected second dive: number=%d samples=%d", second.Number, len(second.Samples))
	}
	if second.WaterTempC != nil || second.OTU != nil {
		t.Errorf("second dive optional fields should be absent")
	}
}

func TestParser_Parse_TripDateRange(t *testing.T) {
	// Dive dates arrive out of order; the range is still min/max.
	parser := NewParser()
	result, err := parser.Parse(strings.NewReader(twoDiveLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.StartDate != "2024-01-15" {
		t.Errorf("expected start date 2024-01-15, got %q", result.StartDate)
	}
	if result.EndDate != "2024-01-17" {
		t.Errorf("expected end date 2024-01-17, got %q", result.EndDate)
	}
	if result.TripName != "Imported dives 2024-01-15" {
		t.Errorf("unexpected trip name %q", result.TripName)
	}
}

func TestParser_Parse_PressureSensors(t *testing.T) {
	input := `<dives>
<dive number="1" date="2024-02-01" time="08:00:00" duration="30:00 min">
  <divecomputer model="test">
    <sample time="10" depth="5.0 m" pressure3="5.2 bar" />
    <sample time="20" depth="5.5 m" pressure3="0 bar" pressure1="180.4 bar" />
  </divecomputer>
</dive>
</dives>`

	result, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dive := result.Dives[0]
	if len(dive.TankPressures) != 2 {
		t.Fatalf("expected 2 tank pressures (zero reading filtered), got %d", len(dive.TankPressures))
	}
	first := dive.TankPressures[0]
	if first.SensorID != 3 || first.TimeSeconds != 10 || first.PressureBar != 5.2 {
		t.Errorf("unexpected first pressure: %+v", first)
	}
	second := dive.TankPressures[1]
	if second.SensorID != 1 || second.TimeSeconds != 20 || second.PressureBar != 180.4 {
		t.Errorf("unexpected second pressure: %+v", second)
	}
}

func TestParser_Parse_OuterSamplesIgnored(t *testing.T) {
	// Depth/sample elements outside <divecomputer> are not authoritative.
	input := `<dives>
<dive number="1" date="2024-02-01" time="08:00:00" duration="30:00 min">
  <depth max="99.0 m" mean="50.0 m" />
  <sample time="10" depth="99.0 m" />
  <divecomputer model="test">
    <depth max="18.0 m" mean="9.0 m" />
    <sample time="10" depth="3.0 m" />
  </divecomputer>
</dive>
</dives>`

	result, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dive := result.Dives[0]
	if dive.MaxDepthM != 18.0 {
		t.Errorf("expected inner max depth 18.0, got %v", dive.MaxDepthM)
	}
	if len(dive.Samples) != 1 || dive.Samples[0].DepthM != 3.0 {
		t.Errorf("expected only the inner sample, got %+v", dive.Samples)
	}
}

func TestParser_Parse_MalformedAttributesDegrade(t *testing.T) {
	input := `<dives>
<dive number="x" date="2024-02-01" time="08:00:00" duration="junk">
  <divecomputer model="test">
    <sample time="10" depth="not-a-depth" />
  </divecomputer>
</dive>
</dives>`

	result, err := NewParser().Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("field-level failures must not abort the parse: %v", err)
	}

	dive := result.Dives[0]
	if dive.Number != 0 || dive.DurationSeconds != 0 {
		t.Errorf("expected zero fallbacks, got number=%d duration=%d", dive.Number, dive.DurationSeconds)
	}
	if dive.Samples[0].DepthM != 0 {
		t.Errorf("expected depth fallback 0, got %v", dive.Samples[0].DepthM)
	}
}

func TestParser_Parse_MalformedXMLIsFatal(t *testing.T) {
	input := `<dives><dive number="1" date="2024-02-01"`

	result, err := NewParser().Parse(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected error for malformed XML")
	}
	if result != nil {
		t.Errorf("no partial result on fatal error, got %+v", result)
	}
}

func TestParser_Parse_Idempotent(t *testing.T) {
	first, err := NewParser().Parse(strings.NewReader(twoDiveLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := NewParser().Parse(strings.NewReader(twoDiveLog))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("re-parsing the same input must yield identical results")
	}
}
