package aggregator

import (
	"cmp"
	"slices"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// DefaultScale expresses rates per thousand.
const DefaultScale = 1000

// RateResult holds the rows that received a rate and the number that were
// skipped for lacking a positive denominator.
type RateResult struct {
	Stats   []models.MunicipalityStat
	Skipped int
}

// ComputeRate sets numerator * scale / denominator on every row whose
// denominator is present and positive. The rate is stored in
// PerThousandPopulation or PerThousandVehicles depending on the denominator.
// Rows without a usable denominator are left out and counted in Skipped.
func ComputeRate(stats []models.MunicipalityStat, numerator, denominator models.Field, scale float64) (RateResult, error) {
	if !numerator.Valid() {
		return RateResult{}, &SchemaError{Field: string(numerator), Reason: "unknown numerator"}
	}
	if denominator != models.FieldPopulation && denominator != models.FieldFleet {
		return RateResult{}, &SchemaError{Field: string(denominator), Reason: "denominator must be population or fleet"}
	}
	if scale <= 0 {
		scale = DefaultScale
	}

	result := RateResult{Stats: make([]models.MunicipalityStat, 0, len(stats))}
	for i := range stats {
		den, ok := stats[i].Value(denominator)
		if !ok || den <= 0 {
			result.Skipped++
			continue
		}
		num, ok := stats[i].Value(numerator)
		if !ok {
			result.Skipped++
			continue
		}

		row := stats[i]
		rate := num * scale / den
		if denominator == models.FieldPopulation {
			row.PerThousandPopulation = rate
		} else {
			row.PerThousandVehicles = rate
		}
		result.Stats = append(result.Stats, row)
	}

	return result, nil
}

// TopN returns the first n rows ordered by field. Rows where the field is
// unavailable are not eligible. Equal values keep their input order.
func TopN(stats []models.MunicipalityStat, field models.Field, n int, descending bool) ([]models.MunicipalityStat, error) {
	if !field.Valid() {
		return nil, &SchemaError{Field: string(field), Reason: "unknown sort field"}
	}
	if n <= 0 {
		return []models.MunicipalityStat{}, nil
	}

	type ranked struct {
		stat  models.MunicipalityStat
		value float64
	}
	eligible := make([]ranked, 0, len(stats))
	for i := range stats {
		if v, ok := stats[i].Value(field); ok {
			eligible = append(eligible, ranked{stat: stats[i], value: v})
		}
	}

	slices.SortStableFunc(eligible, func(a, b ranked) int {
		if descending {
			return cmp.Compare(b.value, a.value)
		}
		return cmp.Compare(a.value, b.value)
	})

	if n > len(eligible) {
		n = len(eligible)
	}
	out := make([]models.MunicipalityStat, n)
	for i := range out {
		out[i] = eligible[i].stat
	}
	return out, nil
}
