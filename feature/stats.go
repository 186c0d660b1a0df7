// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// finite returns the non-NaN values of x.
func finite(x []float64) []float64 {
	out := make([]float64, 0, len(x))
	for _, v := range x {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// NaNMean is the mean of the non-NaN values, NaN when there are none.
func NaNMean(x []float64) float64 {
	v := finite(x)
	if len(v) == 0 {
		return math.NaN()
	}
	return stat.Mean(v, nil)
}

// NaNStd is the population standard deviation of the non-NaN values, NaN
// when there are none.
func NaNStd(x []float64) float64 {
	v := finite(x)
	if len(v) == 0 {
		return math.NaN()
	}
	_, std := stat.PopMeanStdDev(v, nil)
	return std
}

// orZero replaces NaN with the neutral fallback 0.
func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
