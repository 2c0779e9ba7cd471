package constants

// SizeUnit is the unit a listing sheet quotes plot/flat sizes in.
type SizeUnit string

// Stable values (store these exact strings in DB).
const (
	UnitGaj  SizeUnit = "gaj"
	UnitSqft SizeUnit = "sqft"
	UnitYard SizeUnit = "yd"
)

// GajToSqft is the conversion used across Indian listing sheets; a yard is
// treated the same as a gaj.
const GajToSqft = 9

// ToSqft converts a size value into square feet, the canonical unit for
// search comparisons.
func ToSqft(value float64, unit SizeUnit) float64 {
	switch unit {
	case UnitGaj, UnitYard:
		return value * GajToSqft
	default:
		return value
	}
}
