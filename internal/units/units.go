// Package units provides shared constants and validation for volume and area
// display units. The analysis service reports volume in million cubic metres
// and area in square kilometres.
package units

import "strings"

// Volume unit constants
const (
	MCM     = "mcm"     // million cubic metres
	TMC     = "tmc"     // thousand million cubic feet
	AcreFt  = "acre-ft" // acre-feet
	CubicKM = "km3"
)

// Area unit constants
const (
	KM2     = "km2"
	Hectare = "ha"
	SqMile  = "mi2"
)

// ValidVolumeUnits contains all valid volume unit values
var ValidVolumeUnits = []string{MCM, TMC, AcreFt, CubicKM}

// ValidAreaUnits contains all valid area unit values
var ValidAreaUnits = []string{KM2, Hectare, SqMile}

// IsValidVolume checks if the given unit is a known volume unit
func IsValidVolume(unit string) bool {
	return contains(ValidVolumeUnits, unit)
}

// IsValidArea checks if the given unit is a known area unit
func IsValidArea(unit string) bool {
	return contains(ValidAreaUnits, unit)
}

func contains(list []string, unit string) bool {
	for _, u := range list {
		if unit == u {
			return true
		}
	}
	return false
}

// GetValidVolumeUnitsString returns a comma-separated string of volume units for error messages
func GetValidVolumeUnitsString() string {
	return strings.Join(ValidVolumeUnits, ", ")
}

// GetValidAreaUnitsString returns a comma-separated string of area units for error messages
func GetValidAreaUnitsString() string {
	return strings.Join(ValidAreaUnits, ", ")
}

// ConvertVolume converts a volume from million cubic metres to the target units.
// Unknown units leave the value in MCM.
func ConvertVolume(mcm float64, targetUnits string) float64 {
	switch targetUnits {
	case TMC:
		return mcm * 0.0353146667
	case AcreFt:
		return mcm * 810.71318
	case CubicKM:
		return mcm / 1000
	default:
		return mcm
	}
}

// ConvertArea converts an area from square kilometres to the target units.
// Unknown units leave the value in km².
func ConvertArea(km2 float64, targetUnits string) float64 {
	switch targetUnits {
	case Hectare:
		return km2 * 100
	case SqMile:
		return km2 * 0.386102159
	default:
		return km2
	}
}

// Symbol returns the display suffix for a unit.
func Symbol(unit string) string {
	switch unit {
	case MCM:
		return "MCM"
	case TMC:
		return "TMC"
	case AcreFt:
		return "acre-ft"
	case CubicKM:
		return "km³"
	case KM2:
		return "km²"
	case Hectare:
		return "ha"
	case SqMile:
		return "mi²"
	default:
		return unit
	}
}
