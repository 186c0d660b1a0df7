// SPDX-License-Identifier: EPL-2.0

package mix

import (
	"math"

	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/utils"
)

var panTable = map[int]float64{
	feature.FlowEast:      1.0,
	feature.FlowNorthEast: 0.7,
	feature.FlowNorth:     0,
	feature.FlowNorthWest: -0.7,
	feature.FlowWest:      -1.0,
	feature.FlowSouthWest: -0.7,
	feature.FlowSouth:     0,
	feature.FlowSouthEast: 0.7,
}

// PanFor maps a D8 flow direction code to a pan position in [-1, 1].
// Unknown codes pan center.
func PanFor(code int) float64 {
	return panTable[code]
}

// PanGains returns the left and right channel gains for pan p: the
// favoured side is boosted by up to 3 dB, the other attenuated down to
// silence at the extremes.
func PanGains(p float64) (left, right float64) {
	a := math.Min(math.Abs(p), 1)
	boost := math.Pow(2, a/2)
	reduce := 2 - math.Pow(2, a)
	if p < 0 {
		return boost, reduce
	}
	return reduce, boost
}

// PanFold pans a mono segment into a stereo pair, clipping each channel
// to 16 bits, and folds the pair back to mono by averaging. A hard pan to
// either side (east or west flow) is never muted: it plays at half the
// boosted channel, about 0.71 of the input level.
func PanFold(x []int16, p float64) []int16 {
	out := make([]int16, len(x))
	if p == 0 {
		copy(out, x)
		return out
	}

	gl, gr := PanGains(p)
	for i, v := range x {
		l := int32(utils.ScaleInt16(v, gl))
		r := int32(utils.ScaleInt16(v, gr))
		out[i] = int16((l + r) / 2)
	}
	return out
}
