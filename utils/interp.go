// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
)

// Interp maps x linearly from [x0, x1] onto [y0, y1], clamping to the end
// values outside the range. NaN input yields NaN. A degenerate range
// returns y0.
func Interp(x, x0, x1, y0, y1 float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if x1 == x0 {
		return y0
	}
	if x0 > x1 {
		x0, x1 = x1, x0
		y0, y1 = y1, y0
	}
	if x <= x0 {
		return y0
	}
	if x >= x1 {
		return y1
	}

	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// Clip limits x to [lo, hi]. NaN passes through.
func Clip(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return x
	}
	return core.Clamp(x, lo, hi)
}

// CubicInterpolate evaluates a Catmull-Rom spline through y0..y3 at the
// fractional position x between y1 (x=0) and y2 (x=1).
func CubicInterpolate(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}
