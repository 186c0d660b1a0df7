// SPDX-License-Identifier: EPL-2.0

package mix

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/site"
	"github.com/ik5/geosonify/synth"
)

func TestPanFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code int
		want float64
	}{
		{feature.FlowEast, 1}, {feature.FlowNorthEast, 0.7}, {feature.FlowNorth, 0},
		{feature.FlowNorthWest, -0.7}, {feature.FlowWest, -1}, {feature.FlowSouthWest, -0.7},
		{feature.FlowSouth, 0}, {feature.FlowSouthEast, 0.7}, {0, 0}, {3, 0}, {255, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PanFor(tt.code), "code %d", tt.code)
	}
}

func TestPanGains(t *testing.T) {
	t.Parallel()

	l, r := PanGains(0)
	assert.InDelta(t, 1.0, l, 1e-12)
	assert.InDelta(t, 1.0, r, 1e-12)

	l, r = PanGains(1)
	assert.InDelta(t, 0.0, l, 1e-12)
	assert.InDelta(t, math.Sqrt2, r, 1e-12)

	l, r = PanGains(-0.7)
	assert.InDelta(t, math.Pow(2, 0.35), l, 1e-12)
	assert.InDelta(t, 2-math.Pow(2, 0.7), r, 1e-12)
}

func TestPanFold(t *testing.T) {
	t.Parallel()

	x := []int16{1000, -1000, 30000}
	assert.Equal(t, x, PanFold(x, 0))

	// Hard right: left silent, right sqrt(2) louder and clipped.
	got := PanFold(x, 1)
	assert.Equal(t, int16(707), got[0])
	assert.Equal(t, int16(-707), got[1], "averaging truncates toward zero")
	assert.Equal(t, int16(16383), got[2])

	// Hard left mirrors hard right; neither mutes the segment.
	assert.Equal(t, got, PanFold(x, -1))
	assert.Equal(t, PanFold(x, PanFor(feature.FlowEast)), PanFold(x, PanFor(feature.FlowWest)))
}

func TestMixer_Gains(t *testing.T) {
	t.Parallel()

	m := New(config.Default().Mix)

	dry := m.Gains(feature.Features{})
	assert.InDelta(t, math.Pow(10, -6.0/20), dry[synth.Topography], 1e-12)
	assert.InDelta(t, math.Pow(10, -5.0/20), dry[synth.Hydro], 1e-12)

	wet := feature.Features{Spectral: feature.Spectral{NDWI: 0.35, NDWIDefined: true}}
	require.True(t, m.Water(wet))
	g := m.Gains(wet)
	assert.InDelta(t, math.Pow(10, -15.0/20), g[synth.Melody], 1e-12)
	assert.InDelta(t, math.Pow(10, 5.0/20), g[synth.Hydro], 1e-12)

	assert.False(t, m.Water(feature.Features{Spectral: feature.Spectral{NDWI: 0.35}}), "undefined NDWI")
	assert.False(t, m.Water(feature.Features{Spectral: feature.Spectral{NDWI: 0.2, NDWIDefined: true}}), "threshold is exclusive")
}

func TestMixer_Sum(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Mix
	cfg.Default = config.Gains{}
	m := New(cfg)

	var l synth.Layers
	for i := range l {
		l[i] = []float64{0.1, 0.3, -0.1}
	}
	got := m.Sum(l, feature.Features{})
	assert.Equal(t, []int16{int16(0.5 * 32767), 32767, int16(-0.5 * 32767)}, got)
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	base := []int16{10000, -10000, 20000, 5}
	over := []int16{100, 100, 30000}

	got := Overlay(base, over, -6)
	g := math.Pow(10, -6.0/20)
	assert.Equal(t, int16(math.Floor(10000*g))+100, got[0])
	assert.Equal(t, int16(math.Floor(-10000*g))+100, got[1])
	assert.Equal(t, int16(32767), got[2], "saturates")
	assert.Equal(t, int16(5), got[3], "past the overlay")
	assert.Len(t, got, len(base))
}

func TestMixer_Apply(t *testing.T) {
	t.Parallel()

	m := New(config.Default().Mix)
	base := []int16{1000, 1000}
	over := []int16{1, 1}

	assert.Equal(t, base, m.Apply(base, over, site.Plain))
	assert.Equal(t, base, m.Apply(base, nil, site.Archaeological))

	arch := m.Apply(base, over, site.Archaeological)
	jungle := m.Apply(base, over, site.Jungle)
	assert.Greater(t, arch[0], jungle[0], "archaeological attenuates less")
}
