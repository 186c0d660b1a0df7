// SPDX-License-Identifier: EPL-2.0

// Package synth renders the procedural audio layers of one grid cell.
//
// Every layer is exactly config.Audio.CellSamples long. Randomness comes
// from a caller-supplied generator, normally CellRand, so renders are
// reproducible.
package synth

import (
	"math"
	"math/rand/v2"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/feature"
)

// Layer identifies one rendered layer.
type Layer int

const (
	Topography Layer = iota
	Percussion
	Texture
	Melody
	Hydro

	NumLayers
)

var layerNames = [...]string{"topography", "percussion", "texture", "melody", "hydro"}

func (l Layer) String() string {
	if l < 0 || l >= NumLayers {
		return "unknown"
	}
	return layerNames[l]
}

// Layers holds one cell's rendered layers, indexed by Layer.
type Layers [NumLayers][]float64

var (
	topoEnvelope  = ADSR{Attack: 0.8, Decay: 1.0, Sustain: 0.7, Release: 1.0}
	hydroEnvelope = ADSR{Attack: 1.5, Decay: 1.5, Sustain: 0.7, Release: 1.5}
)

const (
	topoAmp        = 0.4
	pulseHarmonics = 3
	textureVoices  = 3
	textureOrder   = 4
	chordStrikes   = 2
)

// Synthesizer renders cell layers for a fixed audio format and mapping.
type Synthesizer struct {
	audio   config.Audio
	mapping config.Mapping
}

func New(audio config.Audio, mapping config.Mapping) *Synthesizer {
	return &Synthesizer{audio: audio, mapping: mapping}
}

// CellSamples is the length of every layer.
func (s *Synthesizer) CellSamples() int {
	return s.audio.CellSamples()
}

// Render maps f and renders all layers.
func (s *Synthesizer) Render(f feature.Features, rng *rand.Rand) (Layers, Params) {
	p := Map(f, s.mapping)

	var l Layers
	l[Topography] = s.topography(p, rng)
	l[Percussion] = s.percussion(p)
	l[Texture] = s.texture(p, rng)
	l[Melody] = s.melody(p, rng)
	l[Hydro] = s.hydro(p, rng)

	n := s.CellSamples()
	for i := range l {
		l[i] = FitLength(l[i], n)
	}

	return l, p
}

func (s *Synthesizer) topography(p Params, rng *rand.Rand) []float64 {
	sr, dur := s.audio.SampleRate, s.audio.CellDurationS

	out := make([]float64, Samples(dur, sr))
	harmonics := []float64{p.TopoHz / 2, p.TopoHz, p.TopoHz * 1.5}
	for _, hz := range harmonics {
		for i, v := range Tone(hz, dur, topoAmp/float64(len(harmonics)), sr, topoEnvelope) {
			out[i] += v
		}
	}

	rate := 0.5 + rng.Float64()*1.5
	for i := range out {
		t := float64(i) / float64(sr)
		out[i] *= 1 + p.LFODepth*math.Sin(2*math.Pi*rate*t)
	}

	return out
}

func (s *Synthesizer) percussion(p Params) []float64 {
	return RichPulse(p.PulseBPM, s.audio.CellDurationS, p.PulseAmp, p.ClickHz, s.audio.SampleRate, pulseHarmonics)
}

func (s *Synthesizer) texture(p Params, rng *rand.Rand) []float64 {
	sr, dur := s.audio.SampleRate, s.audio.CellDurationS

	out := make([]float64, Samples(dur, sr))
	for range textureVoices {
		cutoff := p.NoiseCutoffHz * jitter(rng, 0.1)
		for i, v := range FilteredNoise(dur, p.NoiseAmp/textureVoices, cutoff, textureOrder, sr, rng.Int64()) {
			out[i] += v
		}
	}

	return out
}

func (s *Synthesizer) melody(p Params, rng *rand.Rand) []float64 {
	sr, dur := s.audio.SampleRate, s.audio.CellDurationS

	out := make([]float64, Samples(dur, sr))
	hit := dur / chordStrikes
	detune := func() float64 { return jitter(rng, 0.005) }
	for i := range chordStrikes {
		start := int(float64(i) * hit * float64(sr))
		chord := Chord(p.MelodyRoot, p.ChordIntervals, hit, p.ChordAmp, sr, detune)
		for j, v := range chord {
			if start+j >= len(out) {
				break
			}
			out[start+j] += v
		}
	}

	return out
}

func (s *Synthesizer) hydro(p Params, rng *rand.Rand) []float64 {
	return Tone(p.HydroHz*jitter(rng, 0.02), s.audio.CellDurationS, p.HydroAmp, s.audio.SampleRate, hydroEnvelope)
}
