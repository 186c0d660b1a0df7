// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/site"
)

func sampleFeatures() feature.Features {
	return feature.Features{
		ElevationMean: 240,
		ElevationStd:  6,
		Slope:         12,
		Roughness:     2.5,
		Spectral:      feature.Spectral{NDVI: 0.55, EVI: 0.7, NDVIDefined: true},
		FlowAccMean:   850,
		HydroDEMMean:  90,
		FlowDir:       feature.FlowEast,
		Valid:         true,
	}
}

func TestADSR_Envelope(t *testing.T) {
	t.Parallel()

	env := ADSR{Attack: 0.1, Decay: 0.1, Sustain: 0.5, Release: 0.2}.Envelope(100, 100)
	require.Len(t, env, 100)

	assert.Zero(t, env[0])
	assert.InDelta(t, 1.0, env[9], 1e-12)
	assert.InDelta(t, 1.0, env[10], 1e-12)
	assert.InDelta(t, 0.5, env[19], 1e-12)
	assert.InDelta(t, 0.5, env[50], 1e-12)
	assert.InDelta(t, 0.5, env[80], 1e-12)
	assert.Zero(t, env[99])
}

func TestADSR_EnvelopeOverflow(t *testing.T) {
	t.Parallel()

	// Attack and decay overflow: split half and half, no release.
	env := ADSR{Attack: 1, Decay: 1, Sustain: 0.3, Release: 1}.Envelope(10, 10)
	assert.InDelta(t, 1.0, env[4], 1e-12)
	assert.InDelta(t, 0.475, env[8], 1e-12)
	assert.Zero(t, env[9])

	// Sustain dropped, release shortened to the remainder.
	env = ADSR{Attack: 0.2, Decay: 0.2, Sustain: 0.6, Release: 0.9}.Envelope(10, 10)
	assert.InDelta(t, 1.0, env[1], 1e-12)
	assert.InDelta(t, 0.6, env[3], 1e-12)
	assert.InDelta(t, 0.6, env[4], 1e-12)
	assert.Zero(t, env[9])

	// No attack starts at full level.
	env = ADSR{Sustain: 0.7, Release: 0.5}.Envelope(10, 10)
	assert.InDelta(t, 0.7, env[0], 1e-12)

	assert.Empty(t, ADSR{}.Envelope(0, 10))
}

func TestFitLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []float64{1, 2, 0, 0}, FitLength([]float64{1, 2}, 4))
	assert.Equal(t, []float64{1, 2}, FitLength([]float64{1, 2, 3}, 2))
	assert.Len(t, FitLength(nil, 3), 3)
}

func TestFilteredNoise(t *testing.T) {
	t.Parallel()

	x := FilteredNoise(1, 0.3, 800, 4, 8000, 7)
	require.Len(t, x, 8000)
	assert.InDelta(t, 0.3, peak(x), 1e-9)

	assert.Equal(t, x, FilteredNoise(1, 0.3, 800, 4, 8000, 7), "same seed")
	assert.NotEqual(t, x, FilteredNoise(1, 0.3, 800, 4, 8000, 8))

	raw := FilteredNoise(0.1, 0.2, 5000, 4, 8000, 1)
	assert.LessOrEqual(t, peak(raw), 0.2, "above Nyquist stays unfiltered")
}

func TestGlissando(t *testing.T) {
	t.Parallel()

	g := Glissando(48, 60, 1, 0.5, 1000, 0.1, 0.1)
	require.Len(t, g, 1000)
	assert.Zero(t, g[0])
	assert.Zero(t, g[999])
	assert.LessOrEqual(t, peak(g), 0.5)
}

func TestRichPulse(t *testing.T) {
	t.Parallel()

	assert.Equal(t, make([]float64, 600), RichPulse(0, 6, 0.3, 500, 100, 3))

	// 120 bpm over 2 s at 1 kHz: clicks at 0, 500, 1000, 1500.
	x := RichPulse(120, 2, 0.3, 100, 1000, 3)
	require.Len(t, x, 2000)
	for _, start := range []int{0, 500, 1000, 1500} {
		assert.Zero(t, x[start], "sine starts at zero phase")
		assert.NotZero(t, x[start+3])
	}
	assert.Zero(t, x[100])
	assert.Zero(t, x[1999])
}

func TestSnapToScale(t *testing.T) {
	t.Parallel()

	major := config.Default().Mapping.MajorScale
	minor := config.Default().Mapping.MinorScale

	tests := []struct {
		midi  float64
		scale []int
		want  int
	}{
		{60.8, major, 60},
		{61.6, major, 62},
		{78.2, major, 79},
		{77.4, major, 77},
		{37, minor, 36},
		{44.2, minor, 43},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.midi), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SnapToScale(tt.midi, tt.scale))
		})
	}
}

func TestChordIntervals(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{0}, ChordIntervals(0.3, true))
	assert.Equal(t, []int{0, 4}, ChordIntervals(0.5, true))
	assert.Equal(t, []int{0, 3, 7}, ChordIntervals(0.7, false))
	assert.Equal(t, []int{0, 4, 7, 10}, ChordIntervals(0.9, true))
}

func TestMap_InvertedBand(t *testing.T) {
	t.Parallel()

	m := config.Default().Mapping

	bare := Map(feature.Features{Spectral: feature.Spectral{NDVI: -0.2}}, m)
	dense := Map(feature.Features{Spectral: feature.Spectral{NDVI: 0.8}}, m)

	assert.InDelta(t, 1.0, bare.PitchFactor, 1e-12)
	assert.InDelta(t, 70.0, bare.MinMIDI, 1e-12)
	assert.True(t, bare.Major)
	assert.InDelta(t, 0.0, dense.PitchFactor, 1e-12)
	assert.InDelta(t, 45.0, dense.MaxMIDI, 1e-12)
	assert.False(t, dense.Major)
	assert.Greater(t, bare.TopoHz, dense.TopoHz)

	p := Map(sampleFeatures(), m)
	assert.InDelta(t, 0.6*math.Log1p(850)/math.Log1p(1e5), p.HydroAmp, 1e-12)
	assert.Equal(t, []int{0, 3, 7, 10}, p.ChordIntervals)
}

func TestRender_LengthAndDeterminism(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		sr  int
		dur float64
	}{
		{11025, 6}, {8000, 1.25}, {22050, 0.3}, {4000, 0.01},
	} {
		t.Run(fmt.Sprintf("%d/%v", tc.sr, tc.dur), func(t *testing.T) {
			t.Parallel()

			cfg := config.Default()
			cfg.Audio.SampleRate, cfg.Audio.CellDurationS = tc.sr, tc.dur
			s := New(cfg.Audio, cfg.Mapping)

			a, _ := s.Render(sampleFeatures(), CellRand("BR_AC_10", 3, 4, 42))
			b, _ := s.Render(sampleFeatures(), CellRand("BR_AC_10", 3, 4, 42))

			for l := range a {
				assert.Len(t, a[l], cfg.Audio.CellSamples(), Layer(l).String())
				assert.Equal(t, a[l], b[l], Layer(l).String())
			}
			for _, cat := range []site.Category{site.Archaeological, site.Jungle} {
				assert.Len(t, s.Overlay(cat, CellRand("x", 0, 0, 1)), cfg.Audio.CellSamples())
			}
		})
	}
}

func TestOverlay(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	s := New(cfg.Audio, cfg.Mapping)

	assert.Nil(t, s.Overlay(site.Plain, CellRand("x", 0, 0, 1)))
	assert.Nil(t, s.Overlay(site.City, CellRand("x", 0, 0, 1)))

	arch := s.Overlay(site.Archaeological, CellRand("x", 0, 0, 1))
	var loud bool
	for _, v := range arch[:cfg.Audio.SampleRate/2] {
		if v > 20000 || v < -20000 {
			loud = true
			break
		}
	}
	assert.True(t, loud, "ping and siren are loud at the start")
}

func TestOverlay_Voicing(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	base := New(cfg.Audio, cfg.Mapping).Overlay(site.Jungle, nil)

	quiet := cfg.Mapping
	quiet.Overlay.JungleGlissAmp = 0
	silent := New(cfg.Audio, quiet).Overlay(site.Jungle, nil)
	require.Len(t, silent, len(base))
	for _, v := range silent {
		require.Zero(t, v)
	}

	higher := cfg.Mapping
	higher.Overlay.JungleGlissMIDI = config.Range{Lo: 60, Hi: 72}
	assert.NotEqual(t, base, New(cfg.Audio, higher).Overlay(site.Jungle, nil))

	noPing := cfg.Mapping
	noPing.Overlay.PingAmp = 0
	rng := func() *rand.Rand { return CellRand("x", 0, 0, 1) }
	assert.NotEqual(t,
		New(cfg.Audio, cfg.Mapping).Overlay(site.Archaeological, rng()),
		New(cfg.Audio, noPing).Overlay(site.Archaeological, rng()),
	)
}

func TestCellRand(t *testing.T) {
	t.Parallel()

	a := CellRand("BR_AC_10", 1, 2, 42).Uint64()
	assert.Equal(t, a, CellRand("BR_AC_10", 1, 2, 42).Uint64())
	assert.NotEqual(t, a, CellRand("BR_AC_10", 2, 1, 42).Uint64())
	assert.NotEqual(t, a, CellRand("BR_AC_09", 1, 2, 42).Uint64())
	assert.NotEqual(t, a, CellRand("BR_AC_10", 1, 2, 43).Uint64())
}

func TestMIDIToHz(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 440.0, MIDIToHz(69), 1e-9)
	assert.InDelta(t, 261.6255653, MIDIToHz(60), 1e-6)
}
