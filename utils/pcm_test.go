// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat64ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float64
		want  int16
	}{
		{name: "zero", input: 0, want: 0},
		{name: "full scale", input: 1, want: math.MaxInt16},
		{name: "negative full scale", input: -1, want: -math.MaxInt16},
		{name: "half truncates", input: 0.5, want: 16383},
		{name: "small negative", input: -0.001, want: -32},
		{name: "clamp over", input: 3, want: math.MaxInt16},
		{name: "clamp under", input: -3, want: -math.MaxInt16},
		{name: "nan", input: math.NaN(), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float64ToInt16(tt.input); got != tt.want {
				t.Errorf("Float64ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundToInt16(t *testing.T) {
	t.Parallel()

	if got := RoundToInt16(0.5); got != 16384 {
		t.Errorf("RoundToInt16(0.5) = %d, want 16384", got)
	}
	if got := RoundToInt16(0.95); got != 31129 {
		t.Errorf("RoundToInt16(0.95) = %d, want 31129", got)
	}
}

func TestInt16ToFloat64(t *testing.T) {
	t.Parallel()

	if got := Int16ToFloat64(math.MinInt16); got != -1 {
		t.Errorf("Int16ToFloat64(MinInt16) = %v, want -1", got)
	}
	if got := Int16ToFloat64(16384); got != 0.5 {
		t.Errorf("Int16ToFloat64(16384) = %v, want 0.5", got)
	}
}

func TestSaturatingAdd16(t *testing.T) {
	t.Parallel()

	if got := SaturatingAdd16(30000, 30000); got != math.MaxInt16 {
		t.Errorf("SaturatingAdd16 overflow = %d, want %d", got, math.MaxInt16)
	}
	if got := SaturatingAdd16(-30000, -30000); got != math.MinInt16 {
		t.Errorf("SaturatingAdd16 underflow = %d, want %d", got, math.MinInt16)
	}
	if got := SaturatingAdd16(100, -40); got != 60 {
		t.Errorf("SaturatingAdd16(100, -40) = %d, want 60", got)
	}
}

func TestScaleInt16(t *testing.T) {
	t.Parallel()

	if got := ScaleInt16(1000, 0.5); got != 500 {
		t.Errorf("ScaleInt16(1000, 0.5) = %d, want 500", got)
	}
	if got := ScaleInt16(20000, 2); got != math.MaxInt16 {
		t.Errorf("ScaleInt16 clip = %d, want %d", got, math.MaxInt16)
	}
}
