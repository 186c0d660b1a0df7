// SPDX-License-Identifier: EPL-2.0

package feature

import "math"

// D8 flow direction codes.
const (
	FlowEast      = 1
	FlowNorthEast = 2
	FlowNorth     = 4
	FlowNorthWest = 8
	FlowWest      = 16
	FlowSouthWest = 32
	FlowSouth     = 64
	FlowSouthEast = 128
)

// IsD8 reports whether code is one of the eight D8 directions.
func IsD8(code int) bool {
	return code > 0 && code <= FlowSouthEast && code&(code-1) == 0
}

// ModalFlowDir returns the most frequent valid D8 code of a flow
// direction window. Ties go to the smaller code; 0 when no pixel holds a
// valid code.
func ModalFlowDir(x []float64) int {
	var counts [8]int
	for _, v := range x {
		if math.IsNaN(v) || v != math.Trunc(v) || !IsD8(int(v)) {
			continue
		}
		counts[bitIndex(int(v))]++
	}

	best, code := 0, 0
	for i, n := range counts {
		if n > best {
			best, code = n, 1<<i
		}
	}

	return code
}

func bitIndex(code int) int {
	i := 0
	for code > 1 {
		code >>= 1
		i++
	}
	return i
}
