package entity

import "strings"

// MeasurementUnit is the unit an ingredient is bought and measured in.
type MeasurementUnit string

const (
	UnitKilogram   MeasurementUnit = "kg"
	UnitGram       MeasurementUnit = "g"
	UnitLiter      MeasurementUnit = "l"
	UnitMilliliter MeasurementUnit = "ml"
	UnitPiece      MeasurementUnit = "unit"
	UnitTablespoon MeasurementUnit = "tbsp"
	UnitTeaspoon   MeasurementUnit = "tsp"
	UnitCup        MeasurementUnit = "cup"
)

var measurementUnits = []MeasurementUnit{
	UnitKilogram, UnitGram, UnitLiter, UnitMilliliter,
	UnitPiece, UnitTablespoon, UnitTeaspoon, UnitCup,
}

// MeasurementUnits lists every supported unit.
func MeasurementUnits() []MeasurementUnit {
	out := make([]MeasurementUnit, len(measurementUnits))
	copy(out, measurementUnits)
	return out
}

func (u MeasurementUnit) IsValid() bool {
	for _, v := range measurementUnits {
		if u == v {
			return true
		}
	}
	return false
}

func ParseMeasurementUnit(s string) (MeasurementUnit, error) {
	u := MeasurementUnit(strings.ToLower(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", invalid("unit", "must be one of kg, g, l, ml, unit, tbsp, tsp, cup")
	}
	return u, nil
}
