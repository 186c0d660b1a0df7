// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math"

	"github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"
	"github.com/cwbudde/algo-dsp/dsp/signal"
)

// MIDIToHz converts a (fractional) MIDI note number to Hz, A4 = 69 = 440 Hz.
func MIDIToHz(note float64) float64 {
	return 440 * math.Pow(2, (note-69)/12)
}

// Samples is the sample count of dur seconds at rate sr, truncated.
func Samples(dur float64, sr int) int {
	n := int(float64(sr) * dur)
	return max(n, 0)
}

// linspace fills dst with len(dst) evenly spaced values from a to b
// inclusive.
func linspace(dst []float64, a, b float64) {
	switch len(dst) {
	case 0:
		return
	case 1:
		dst[0] = a
		return
	}
	step := (b - a) / float64(len(dst)-1)
	for i := range dst {
		dst[i] = a + step*float64(i)
	}
	dst[len(dst)-1] = b
}

// ADSR is an attack/decay/sustain/release envelope. Times are in
// seconds, Sustain is a level.
type ADSR struct {
	Attack, Decay, Sustain, Release float64
}

// Envelope renders the envelope over n samples. When the phases do not fit
// the sustain phase is dropped first, then the release is shortened to the
// remainder; if attack and decay alone overflow, the attack takes half of
// the samples, the decay the rest, and there is no release.
func (e ADSR) Envelope(n, sr int) []float64 {
	env := make([]float64, n)
	if n == 0 {
		return env
	}

	a := int(e.Attack * float64(sr))
	d := int(e.Decay * float64(sr))
	r := int(e.Release * float64(sr))
	s := n - a - d - r
	if s < 0 {
		s = 0
		r = max(0, n-a-d)
		if a+d > n {
			a = n / 2
			d = n - a
			r = 0
		}
	}

	if a > 0 {
		linspace(env[:a], 0, 1)
	} else {
		env[0] = 1
	}

	if d > 0 {
		linspace(env[a:a+d], 1, e.Sustain)
	} else if a < n {
		env[a] = e.Sustain
	}

	for i := a + d; i < a+d+s && i < n; i++ {
		env[i] = e.Sustain
	}

	if r > 0 {
		linspace(env[n-r:], e.Sustain, 0)
	} else {
		env[n-1] = 0
	}

	return env
}

// Tone renders a sine of freq Hz shaped by env.
func Tone(freq, dur, amp float64, sr int, env ADSR) []float64 {
	n := Samples(dur, sr)
	out := env.Envelope(n, sr)
	w := 2 * math.Pi * freq / float64(sr)
	for i := range out {
		out[i] *= amp * math.Sin(w*float64(i))
	}
	return out
}

// Noise is uniform white noise in [-amp, amp].
func Noise(n int, amp float64, seed int64) []float64 {
	if n <= 0 {
		return []float64{}
	}
	g := signal.NewGeneratorWithOptions(nil, signal.WithSeed(seed))
	out, err := g.WhiteNoise(math.Abs(amp), n)
	if err != nil {
		return make([]float64, n)
	}
	return out
}

// peakFloor is the smallest filtered peak that is rescaled to amp.
const peakFloor = 1e-6

// FilteredNoise is white noise through an order-n Butterworth low-pass at
// cutoff Hz, rescaled so its peak equals amp. A cutoff outside (0, sr/2)
// leaves the noise unfiltered.
func FilteredNoise(dur, amp, cutoff float64, order, sr int, seed int64) []float64 {
	noise := Noise(Samples(dur, sr), amp, seed)
	if cutoff <= 0 || cutoff >= float64(sr)/2 || len(noise) == 0 {
		return noise
	}

	chain := biquad.NewChain(pass.ButterworthLP(cutoff, order, float64(sr)))
	chain.ProcessBlock(noise)

	if peak(noise) > peakFloor {
		if scaled, err := signal.Normalize(noise, math.Abs(amp)); err == nil {
			return scaled
		}
	}
	return noise
}

func peak(x []float64) float64 {
	var p float64
	for _, v := range x {
		p = math.Max(p, math.Abs(v))
	}
	return p
}

// Glissando sweeps exponentially from startMIDI to endMIDI over dur with
// linear fade-in and fade-out ramps. Phase is integrated so the sweep is
// free of discontinuities.
func Glissando(startMIDI, endMIDI, dur, amp float64, sr int, attack, release float64) []float64 {
	n := Samples(dur, sr)
	out := make([]float64, n)
	if n == 0 {
		return out
	}

	f0, f1 := math.Log(MIDIToHz(startMIDI)), math.Log(MIDIToHz(endMIDI))
	var phase float64
	for i := range out {
		frac := 0.0
		if n > 1 {
			frac = float64(i) / float64(n-1)
		}
		out[i] = amp * math.Sin(phase)
		phase += 2 * math.Pi * math.Exp(f0+(f1-f0)*frac) / float64(sr)
	}

	ramp := make([]float64, min(Samples(attack, sr), n))
	linspace(ramp, 0, 1)
	for i, g := range ramp {
		out[i] *= g
	}
	ramp = make([]float64, min(Samples(release, sr), n))
	linspace(ramp, 1, 0)
	for i, g := range ramp {
		out[n-len(ramp)+i] *= g
	}

	return out
}

// ClickLength is the maximum duration of one percussion click.
const ClickLength = 0.05

// RichPulse is a train of clicks at bpm, each a sum of harmonics
// harmonics of baseFreq decaying as exp(-15 t/d). A non-positive bpm
// renders silence.
func RichPulse(bpm, dur, amp, baseFreq float64, sr, harmonics int) []float64 {
	n := Samples(dur, sr)
	out := make([]float64, n)
	if bpm <= 0 || harmonics <= 0 {
		return out
	}

	bps := bpm / 60
	clicks := max(int(dur*bps), 1)

	for i := range clicks {
		start := float64(i) / bps
		if start >= dur {
			break
		}
		cd := math.Min(ClickLength, dur-start)
		m := Samples(cd, sr)
		offset := int(start * float64(sr))

		for j := 0; j < m && offset+j < n; j++ {
			t := cd * float64(j) / float64(m)
			env := math.Exp(-15 * t / cd)
			var v float64
			for h := 1; h <= harmonics; h++ {
				v += math.Sin(2 * math.Pi * baseFreq * float64(h) * t)
			}
			out[offset+j] += amp / float64(harmonics) * v * env
		}
	}

	return out
}

// ChordEnvelope shapes every chord note.
var ChordEnvelope = ADSR{Attack: 0.5, Decay: 0.8, Sustain: 0.4, Release: 0.5}

// Chord stacks intervals above rootMIDI, each note slightly detuned and
// carrying amp/len(intervals).
func Chord(rootMIDI int, intervals []int, dur, amp float64, sr int, detune func() float64) []float64 {
	out := make([]float64, Samples(dur, sr))
	if len(intervals) == 0 {
		return out
	}
	for _, iv := range intervals {
		tone := Tone(MIDIToHz(float64(rootMIDI+iv))*detune(), dur, amp/float64(len(intervals)), sr, ChordEnvelope)
		for i, v := range tone {
			out[i] += v
		}
	}
	return out
}

// FitLength zero-pads or truncates x to exactly n samples.
func FitLength(x []float64, n int) []float64 {
	switch {
	case len(x) == n:
		return x
	case len(x) > n:
		return x[:n]
	}
	out := make([]float64, n)
	copy(out, x)
	return out
}

// Clip limits every sample to [-1, 1].
func Clip(x []float64) {
	for i, v := range x {
		x[i] = core.Clamp(v, -1, 1)
	}
}
