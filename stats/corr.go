package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Correlation is the Pearson correlation of x and y; NaN if either is constant
// or the lengths differ.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) || flat(x) || flat(y) {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// Autocorr is the Pearson correlation between x and x shifted by lag.
func Autocorr(x []float64, lag int) float64 {
	if lag < 1 || lag >= len(x)-1 {
		return math.NaN()
	}
	return Correlation(x[lag:], x[:len(x)-lag])
}
