package item

import "fmt"

// Units is the measurement system an item's local coordinates are in.
type Units int

const (
	UnitPixels Units = iota
	UnitMillimeters
	UnitInches
	UnitPoints
)

var unitNames = map[Units]string{
	UnitPixels:      "px",
	UnitMillimeters: "mm",
	UnitInches:      "in",
	UnitPoints:      "pt",
}

func (u Units) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("units(%d)", int(u))
}

// Valid reports whether u is a known measurement system.
func (u Units) Valid() bool {
	_, ok := unitNames[u]
	return ok
}

// ParseUnits parses a name produced by Units.String.
func ParseUnits(s string) (Units, error) {
	for u, name := range unitNames {
		if name == s {
			return u, nil
		}
	}
	return UnitPixels, fmt.Errorf("unknown units %q", s)
}

func inchesPer(u Units) float64 {
	switch u {
	case UnitMillimeters:
		return 1 / 25.4
	case UnitInches:
		return 1
	case UnitPoints:
		return 1.0 / 72
	default:
		return 1.0 / 96
	}
}

// UnitsScale returns the factor that converts a length in from into to.
func UnitsScale(from, to Units) float64 {
	if from == to {
		return 1
	}
	return inchesPer(from) / inchesPer(to)
}
