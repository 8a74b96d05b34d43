package sweep

import (
	"gonum.org/v1/gonum/stat"
)

// Mean returns the arithmetic mean of scores, or 0 for an empty slice.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil)
}

// StdDev returns the population standard deviation of scores, or 0 for
// slices shorter than two elements.
func StdDev(scores []float64) float64 {
	if len(scores) < 2 {
		return 0
	}
	return stat.PopStdDev(scores, nil)
}
