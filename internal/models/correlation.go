package models

import "math"

// CorrelationMatrix holds pairwise Pearson coefficients between fields.
// Values[i][j] is the coefficient between Fields[i] and Fields[j]. A NaN
// cell means the correlation is undefined (a field had zero variance or
// fewer than two rows were available).
type CorrelationMatrix struct {
	Fields []Field
	Values [][]float64
	Rows   int
}

// At returns the coefficient between two fields and whether both are part
// of the matrix.
func (c *CorrelationMatrix) At(a, b Field) (float64, bool) {
	i, j := c.index(a), c.index(b)
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return c.Values[i][j], true
}

// Empty reports whether the matrix has no fields.
func (c *CorrelationMatrix) Empty() bool {
	return c == nil || len(c.Fields) == 0
}

func (c *CorrelationMatrix) index(f Field) int {
	for i, field := range c.Fields {
		if field == f {
			return i
		}
	}
	return -1
}
