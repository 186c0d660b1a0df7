// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math/rand/v2"

	"github.com/ik5/geosonify/site"
	"github.com/ik5/geosonify/utils"
)

var (
	subEnvelope  = ADSR{Attack: 0.05, Decay: 0.8, Sustain: 0.1, Release: 0.2}
	pingEnvelope = ADSR{Attack: 0.01, Decay: 0.05, Sustain: 0, Release: 0.1}
)

// Overlay renders the anomaly overlay for a site category as 16-bit PCM
// of the cell length. Categories without a treatment return nil.
func (s *Synthesizer) Overlay(cat site.Category, rng *rand.Rand) []int16 {
	switch cat {
	case site.Archaeological:
		return s.archaeological(rng)
	case site.Jungle:
		return s.jungle()
	}
	return nil
}

// archaeological is a rising siren over broadband noise and a sub-bass
// drop, with a high ping struck at the start.
func (s *Synthesizer) archaeological(rng *rand.Rand) []int16 {
	sr, dur, n := s.audio.SampleRate, s.audio.CellDurationS, s.CellSamples()
	v := s.mapping.Overlay

	gliss := FitLength(Glissando(v.ArchGlissMIDI.Lo, v.ArchGlissMIDI.Hi, dur, v.ArchGlissAmp, sr, 0.1, 0.5), n)
	noise := FitLength(FilteredNoise(dur, v.ArchNoiseAmp, v.ArchNoiseHz, 1, sr, rng.Int64()), n)
	sub := FitLength(Tone(v.ArchSubHz, dur, v.ArchSubAmp, sr, subEnvelope), n)

	core := make([]float64, n)
	for i := range core {
		core[i] = gliss[i] + 0.5*noise[i] + 0.7*sub[i]
	}

	ping := FitLength(Tone(MIDIToHz(v.PingMIDI), v.PingDurationS, v.PingAmp, sr, pingEnvelope), n)

	out := Quantize(core)
	for i, v := range Quantize(ping) {
		out[i] = utils.SaturatingAdd16(out[i], v)
	}
	return out
}

// jungle is a slow low sweep.
func (s *Synthesizer) jungle() []int16 {
	v := s.mapping.Overlay
	g := Glissando(v.JungleGlissMIDI.Lo, v.JungleGlissMIDI.Hi, s.audio.CellDurationS, v.JungleGlissAmp, s.audio.SampleRate, 0.2, 0.2)
	return Quantize(FitLength(g, s.CellSamples()))
}

// Quantize converts float samples to 16-bit PCM, clipping to [-1, 1].
func Quantize(x []float64) []int16 {
	out := make([]int16, len(x))
	for i, v := range x {
		out[i] = utils.Float64ToInt16(v)
	}
	return out
}
