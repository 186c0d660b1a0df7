// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"math"
)

// gradient computes the per-axis finite differences of a row-major grid
// with unit spacing: central differences inside, one-sided at the edges.
// Both dimensions must be at least 2.
func gradient(z []float64, width, height int) (drow, dcol []float64) {
	drow = make([]float64, len(z))
	dcol = make([]float64, len(z))

	for r := range height {
		for c := range width {
			i := r*width + c

			switch r {
			case 0:
				drow[i] = z[i+width] - z[i]
			case height - 1:
				drow[i] = z[i] - z[i-width]
			default:
				drow[i] = (z[i+width] - z[i-width]) / 2
			}

			switch c {
			case 0:
				dcol[i] = z[i+1] - z[i]
			case width - 1:
				dcol[i] = z[i] - z[i-1]
			default:
				dcol[i] = (z[i+1] - z[i-1]) / 2
			}
		}
	}

	return drow, dcol
}

// Slope is the mean terrain slope in degrees of a width x height
// elevation window at the given pixel size. Windows smaller than 2x2, an
// all-NaN window or a zero resolution give 0.
func Slope(z []float64, width, height int, res float64) float64 {
	if width < 2 || height < 2 || res == 0 || len(z) != width*height {
		return 0
	}

	drow, dcol := gradient(z, width, height)
	deg := make([]float64, len(z))
	for i := range deg {
		deg[i] = math.Atan(math.Hypot(drow[i], dcol[i])/res) * 180 / math.Pi
	}

	return orZero(NaNMean(deg))
}

// RoughnessWindow is the side of the moving-average kernel.
const RoughnessWindow = 3

// Roughness is the standard deviation of the residual between the
// elevation window and its 3x3 moving average (edges reflected). Windows
// smaller than the kernel give 0.
func Roughness(z []float64, width, height int) float64 {
	const k = RoughnessWindow
	if width < k || height < k || len(z) != width*height {
		return 0
	}

	reflect := func(i, n int) int {
		switch {
		case i < 0:
			return -i - 1
		case i >= n:
			return 2*n - i - 1
		}
		return i
	}

	half := k / 2
	diff := make([]float64, len(z))
	for r := range height {
		for c := range width {
			var sum float64
			for dr := -half; dr <= half; dr++ {
				for dc := -half; dc <= half; dc++ {
					sum += z[reflect(r+dr, height)*width+reflect(c+dc, width)]
				}
			}
			i := r*width + c
			diff[i] = z[i] - sum/float64(k*k)
		}
	}

	return orZero(NaNStd(diff))
}
