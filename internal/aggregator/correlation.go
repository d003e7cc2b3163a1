package aggregator

import (
	"math"

	"github.com/j-veylop/accidents-dashboard-tui/internal/models"
)

// CorrelationMatrix computes pairwise Pearson coefficients between fields.
// Only rows where every field is available take part. A field with zero
// variance yields NaN against every field, itself included.
func CorrelationMatrix(stats []models.MunicipalityStat, fields []models.Field) (models.CorrelationMatrix, error) {
	for _, f := range fields {
		if !f.Valid() {
			return models.CorrelationMatrix{}, &SchemaError{Field: string(f), Reason: "not a numeric field"}
		}
	}

	columns := make([][]float64, len(fields))
	rows := 0
	for i := range stats {
		values := make([]float64, len(fields))
		complete := true
		for j, f := range fields {
			v, ok := stats[i].Value(f)
			if !ok {
				complete = false
				break
			}
			values[j] = v
		}
		if !complete {
			continue
		}
		for j, v := range values {
			columns[j] = append(columns[j], v)
		}
		rows++
	}

	matrix := models.CorrelationMatrix{
		Fields: append([]models.Field(nil), fields...),
		Values: make([][]float64, len(fields)),
		Rows:   rows,
	}
	for i := range matrix.Values {
		matrix.Values[i] = make([]float64, len(fields))
	}

	for i := range fields {
		for j := i; j < len(fields); j++ {
			r := pearson(columns[i], columns[j])
			if i == j && !math.IsNaN(r) {
				r = 1
			}
			matrix.Values[i][j] = r
			matrix.Values[j][i] = r
		}
	}

	return matrix, nil
}

func pearson(x, y []float64) float64 {
	n := len(x)
	if n < 2 || n != len(y) {
		return math.NaN()
	}

	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += x[i]
		meanY += y[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	r := cov / math.Sqrt(varX*varY)
	return math.Max(-1, math.Min(1, r))
}
