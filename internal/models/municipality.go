package models

// Municipality holds the metadata row for one IBGE municipality code.
type Municipality struct {
	Code       string
	State      string
	Name       string
	Population int64
	Fleet      int64
}

// MunicipalityStat is the per-municipality aggregate shown in the ranking
// views. It is derived on every filter change and never persisted.
type MunicipalityStat struct {
	Code      string
	Name      string
	State     string
	Accidents int

	// Population and Fleet are only meaningful when HasInfo is true.
	Population int64
	Fleet      int64
	HasInfo    bool

	PerThousandPopulation float64
	PerThousandVehicles   float64
}

// Field names a numeric column of a MunicipalityStat.
type Field string

// Numeric fields usable for rates, ranking and correlation.
const (
	FieldAccidents             Field = "accidents"
	FieldPopulation            Field = "population"
	FieldFleet                 Field = "fleet"
	FieldPerThousandPopulation Field = "accidents_per_1000_population"
	FieldPerThousandVehicles   Field = "accidents_per_1000_vehicles"
)

// NumericFields lists every field in display order.
var NumericFields = []Field{
	FieldAccidents,
	FieldPopulation,
	FieldFleet,
	FieldPerThousandPopulation,
	FieldPerThousandVehicles,
}

// Label returns a short column header for the field.
func (f Field) Label() string {
	switch f {
	case FieldAccidents:
		return "Accidents"
	case FieldPopulation:
		return "Population"
	case FieldFleet:
		return "Fleet"
	case FieldPerThousandPopulation:
		return "Per 1k pop"
	case FieldPerThousandVehicles:
		return "Per 1k veh"
	default:
		return string(f)
	}
}

// Valid reports whether f is one of the known numeric fields.
func (f Field) Valid() bool {
	for _, known := range NumericFields {
		if f == known {
			return true
		}
	}
	return false
}

// Value returns the numeric value of a field. The second result is false
// when the field is unknown or its source metadata is missing.
func (s *MunicipalityStat) Value(f Field) (float64, bool) {
	switch f {
	case FieldAccidents:
		return float64(s.Accidents), true
	case FieldPopulation:
		return float64(s.Population), s.HasInfo
	case FieldFleet:
		return float64(s.Fleet), s.HasInfo
	case FieldPerThousandPopulation:
		return s.PerThousandPopulation, s.HasInfo && s.Population > 0
	case FieldPerThousandVehicles:
		return s.PerThousandVehicles, s.HasInfo && s.Fleet > 0
	default:
		return 0, false
	}
}
