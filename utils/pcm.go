// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// PCM16Scale is the divisor used when decoding 16-bit PCM to float.
const PCM16Scale = 32768.0

// Float64ToInt16 clamps x to [-1, 1] and truncates x*32767 toward zero.
// This is the quantizer used for rendered cell segments.
func Float64ToInt16(x float64) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	} else if math.IsNaN(x) {
		return 0
	}

	return int16(x * math.MaxInt16)
}

// RoundToInt16 clamps x to [-1, 1] and rounds x*32767 to the nearest
// integer. The normalizer uses it so scaled peaks land on the ceiling.
func RoundToInt16(x float64) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	} else if math.IsNaN(x) {
		return 0
	}

	return int16(math.Round(x * math.MaxInt16))
}

// Int16ToFloat64 converts a 16-bit PCM sample to [-1, 1).
func Int16ToFloat64(v int16) float64 {
	return float64(v) / PCM16Scale
}

// SaturatingAdd16 adds two PCM samples and clips the result to the int16
// range instead of wrapping.
func SaturatingAdd16(a, b int16) int16 {
	s := int32(a) + int32(b)
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}

// ScaleInt16 multiplies a PCM sample by factor, clipping and flooring.
func ScaleInt16(v int16, factor float64) int16 {
	s := math.Floor(float64(v) * factor)
	if s > math.MaxInt16 {
		return math.MaxInt16
	}
	if s < math.MinInt16 {
		return math.MinInt16
	}
	return int16(s)
}
