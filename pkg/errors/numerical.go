package errors

import (
	"math"
)

// maxReportedValues caps the values copied into a NumericalInstabilityError.
const maxReportedValues = 10

// CheckMatrix checks the first cols columns of a matrix for NaN or Inf.
// Pass the full width to check every column; a narrower width skips trailing
// columns such as an appended target.
func CheckMatrix(operation string, matrix interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		first := -1
		var unstable []float64
		for j := 0; j < cols; j++ {
			v := matrix.At(i, j)
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				continue
			}
			if first < 0 {
				first = j
			}
			unstable = append(unstable, v)
			if len(unstable) >= maxReportedValues {
				break
			}
		}
		if first >= 0 {
			return NewNumericalInstabilityError(operation, unstable, i, first)
		}
	}
	return nil
}
