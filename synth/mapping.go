// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/utils"
)

// Params are the synthesis controls derived from one cell's features.
type Params struct {
	// PitchFactor is 1 for bare ground and 0 for dense vegetation; it
	// slides every frequency band between its low and high variant.
	PitchFactor float64
	NDVINorm    float64

	MinMIDI, MaxMIDI         float64
	FilterMinHz, FilterMaxHz float64
	HydroMinHz, HydroMaxHz   float64

	Major bool
	Scale []int

	TopoHz   float64
	LFODepth float64

	PulseBPM, PulseAmp float64
	ClickHz            float64

	NoiseCutoffHz float64
	NoiseAmp      float64

	MelodyRoot     int
	ChordIntervals []int
	ChordAmp       float64

	HydroHz  float64
	HydroAmp float64
}

func lerp(f float64, r config.Range) float64 {
	return utils.Interp(f, 0, 1, r.Lo, r.Hi)
}

func curve(x float64, from, to config.Range) float64 {
	return utils.Interp(x, from.Lo, from.Hi, to.Lo, to.Hi)
}

// Map applies the mapping curves to f. NaN features map as 0.
func Map(f feature.Features, m config.Mapping) Params {
	var p Params

	ndvi := utils.Clip(f.NDVI, m.NDVIClip.Lo, m.NDVIClip.Hi)
	p.NDVINorm = utils.Interp(ndvi, m.NDVIClip.Lo, m.NDVIClip.Hi, 0, 1)
	p.PitchFactor = 1 - p.NDVINorm

	p.MinMIDI = lerp(p.PitchFactor, config.Range{Lo: m.PitchLowMIDI.Lo, Hi: m.PitchHighMIDI.Lo})
	p.MaxMIDI = lerp(p.PitchFactor, config.Range{Lo: m.PitchLowMIDI.Hi, Hi: m.PitchHighMIDI.Hi})
	p.FilterMinHz = lerp(p.PitchFactor, config.Range{Lo: m.FilterLowHz.Lo, Hi: m.FilterHighHz.Lo})
	p.FilterMaxHz = lerp(p.PitchFactor, config.Range{Lo: m.FilterLowHz.Hi, Hi: m.FilterHighHz.Hi})
	p.HydroMinHz = lerp(p.PitchFactor, config.Range{Lo: m.HydroLowHz.Lo, Hi: m.HydroHighHz.Lo})
	p.HydroMaxHz = lerp(p.PitchFactor, config.Range{Lo: m.HydroLowHz.Hi, Hi: m.HydroHighHz.Hi})

	p.Major = p.PitchFactor > m.ScaleThreshold
	p.Scale = m.MinorScale
	if p.Major {
		p.Scale = m.MajorScale
	}

	hz := config.Range{Lo: MIDIToHz(p.MinMIDI), Hi: MIDIToHz(p.MaxMIDI)}
	p.TopoHz = curve(f.ElevationMean, m.ElevationM, hz)
	p.LFODepth = curve(f.ElevationStd, m.ElevStdM, m.LFODepth)

	p.PulseBPM = curve(f.Slope, m.SlopeDeg, m.PulseBPM)
	p.PulseAmp = curve(f.Slope, m.SlopeDeg, m.PulseAmp)
	filter := config.Range{Lo: p.FilterMinHz, Hi: p.FilterMaxHz}
	p.ClickHz = curve(f.Roughness, m.Roughness, filter)

	p.NoiseCutoffHz = curve(f.Roughness, m.Roughness, filter)
	p.NoiseAmp = curve(f.ElevationStd, m.ElevStdM, m.NoiseAmp)

	p.MelodyRoot = SnapToScale(lerp(p.NDVINorm, config.Range{Lo: p.MinMIDI, Hi: p.MaxMIDI}), p.Scale)
	p.ChordIntervals = ChordIntervals(curve(f.EVI, m.EVIDensity, config.Range{Lo: 0, Hi: 1}), p.Major)
	p.ChordAmp = curve(f.NDVI, m.ChordNDVI, m.ChordAmp)

	p.HydroHz = curve(f.HydroDEMMean, m.HydroDEMM, config.Range{Lo: p.HydroMinHz, Hi: p.HydroMaxHz})
	p.HydroAmp = utils.Interp(f.LogFlow(), 0, m.LogFlowMax(), 0, 1) * m.HydroAmp

	for _, v := range []*float64{&p.TopoHz, &p.LFODepth, &p.PulseBPM, &p.PulseAmp, &p.ClickHz, &p.NoiseCutoffHz, &p.NoiseAmp, &p.ChordAmp, &p.HydroHz, &p.HydroAmp} {
		if math.IsNaN(*v) {
			*v = 0
		}
	}

	return p
}

// SnapToScale picks the scale degree whose pitch class is closest to the
// pitch class of midi (first match on ties) and places it in midi's
// octave.
func SnapToScale(midi float64, scale []int) int {
	octave := int(math.Floor(midi / 12))
	if len(scale) == 0 {
		return int(math.Round(midi))
	}

	pc := math.Mod(midi, 12)
	if pc < 0 {
		pc += 12
	}

	best, dist := scale[0], math.Inf(1)
	for _, s := range scale {
		d := math.Abs(float64(((s%12)+12)%12) - pc)
		if d < dist {
			best, dist = s, d
		}
	}

	return ((best%12)+12)%12 + octave*12
}

// ChordIntervals builds the chord above the root: a third past density
// 0.3 (major or minor by scale), a fifth past 0.6, a minor seventh past
// 0.8.
func ChordIntervals(density float64, major bool) []int {
	iv := []int{0}
	if density > 0.3 {
		if major {
			iv = append(iv, 4)
		} else {
			iv = append(iv, 3)
		}
	}
	if density > 0.6 {
		iv = append(iv, 7)
	}
	if density > 0.8 {
		iv = append(iv, 10)
	}
	return iv
}
