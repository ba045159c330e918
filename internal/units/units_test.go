package units

import (
	"math"
	"testing"
)

func TestConvertVolume(t *testing.T) {
	tests := []struct {
		name     string
		mcm      float64
		units    string
		expected float64
	}{
		{"12.8 MCM to mcm", 12.8, MCM, 12.8},
		{"28.3168 MCM is one TMC", 28.3168, TMC, 1.0},
		{"1 MCM to acre-ft", 1.0, AcreFt, 810.713},
		{"1000 MCM to km3", 1000.0, CubicKM, 1.0},
		{"unknown units default to mcm", 4.52, "unknown", 4.52},
		{"zero volume", 0.0, TMC, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertVolume(tt.mcm, tt.units)
			if math.Abs(result-tt.expected) > 0.01 {
				t.Errorf("ConvertVolume(%f, %s) = %f, want %f", tt.mcm, tt.units, result, tt.expected)
			}
		})
	}
}

func TestConvertArea(t *testing.T) {
	tests := []struct {
		name     string
		km2      float64
		units    string
		expected float64
	}{
		{"km2 passthrough", 3.2, KM2, 3.2},
		{"km2 to hectares", 3.2, Hectare, 320.0},
		{"km2 to square miles", 2.58999, SqMile, 1.0},
		{"unknown units default to km2", 1.5, "acres", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ConvertArea(tt.km2, tt.units)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("ConvertArea(%f, %s) = %f, want %f", tt.km2, tt.units, result, tt.expected)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name   string
		unit   string
		volume bool
		area   bool
	}{
		{"mcm", MCM, true, false},
		{"tmc", TMC, true, false},
		{"acre-ft", AcreFt, true, false},
		{"km2", KM2, false, true},
		{"ha", Hectare, false, true},
		{"empty string", "", false, false},
		{"case sensitive", "MCM", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidVolume(tt.unit); got != tt.volume {
				t.Errorf("IsValidVolume(%q) = %v, want %v", tt.unit, got, tt.volume)
			}
			if got := IsValidArea(tt.unit); got != tt.area {
				t.Errorf("IsValidArea(%q) = %v, want %v", tt.unit, got, tt.area)
			}
		})
	}
}

func TestSymbol(t *testing.T) {
	if got := Symbol(MCM); got != "MCM" {
		t.Errorf("Symbol(mcm) = %q", got)
	}
	if got := Symbol(KM2); got != "km²" {
		t.Errorf("Symbol(km2) = %q", got)
	}
	if got := Symbol("furlongs"); got != "furlongs" {
		t.Errorf("Symbol(furlongs) = %q", got)
	}
}

func TestGetValidUnitsString(t *testing.T) {
	if got := GetValidVolumeUnitsString(); got != "mcm, tmc, acre-ft, km3" {
		t.Errorf("GetValidVolumeUnitsString() = %q", got)
	}
	if got := GetValidAreaUnitsString(); got != "km2, ha, mi2" {
		t.Errorf("GetValidAreaUnitsString() = %q", got)
	}
}
