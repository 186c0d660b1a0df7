// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design/pass"

	"github.com/ik5/geosonify/utils"
)

const (
	// AntiAliasOrder is the Butterworth order of the pre-filter applied
	// when downsampling.
	AntiAliasOrder = 8
	// antiAliasCutoff is the pre-filter cutoff as a fraction of the target
	// rate.
	antiAliasCutoff = 0.45
)

// Resampler streams src at another sample rate using cubic interpolation
// over a four-frame window. Channel layout is preserved. When downsampling,
// source frames pass through a Butterworth low-pass below the target
// Nyquist frequency first.
type Resampler struct {
	src      Source
	dstRate  int
	step     float64 // source frames per output frame
	channels int

	// frames[1] and frames[2] bracket the current position.
	frames [4][]float32
	have   [4]bool
	pos    float64
	primed bool
	eof    bool

	frame   []float32
	filters []*biquad.Chain
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		channels: channels,
		frame:    make([]float32, channels),
	}
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}

	if r.step > 1 {
		coeffs := pass.ButterworthLP(antiAliasCutoff*float64(dstRate), AntiAliasOrder, float64(src.SampleRate()))
		r.filters = make([]*biquad.Chain, channels)
		for c := range r.filters {
			r.filters[c] = biquad.NewChain(coeffs)
		}
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: close: %w", err)
	}
	return nil
}

// next reads one source frame into r.frame, filtered when downsampling.
func (r *Resampler) next() (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.frame)
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return false, fmt.Errorf("resampler: read: %w", err)
	}
	if n < r.channels {
		r.eof = true
		return false, nil
	}

	for c, ch := range r.filters {
		r.frame[c] = float32(ch.ProcessSample(float64(r.frame[c])))
	}

	return true, nil
}

// shift drops the oldest frame and appends the next source frame.
func (r *Resampler) shift() error {
	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.have[0], r.have[1], r.have[2] = r.have[1], r.have[2], r.have[3]

	ok, err := r.next()
	if err != nil {
		return err
	}
	if ok {
		copy(r.frames[3], r.frame)
	}
	r.have[3] = ok

	return nil
}

// prime fills frames[1..3]; frames[0] mirrors frames[1] at the start.
func (r *Resampler) prime() error {
	r.primed = true
	for i := 1; i < 4; i++ {
		ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		copy(r.frames[i], r.frame)
		r.have[i] = true
	}
	if r.have[1] {
		copy(r.frames[0], r.frames[1])
		r.have[0] = true
	}

	return nil
}

// ReadSamples produces interleaved samples at the target rate. len(dst)
// must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	for written < len(dst)/r.channels {
		for r.pos >= 1 {
			r.pos--
			if err := r.shift(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.have[1] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y1 := r.frames[1][c]
			y0 := y1
			if r.have[0] {
				y0 = r.frames[0][c]
			}
			y2 := y1
			if r.have[2] {
				y2 = r.frames[2][c]
			}
			y3 := y2
			if r.have[3] {
				y3 = r.frames[3][c]
			}
			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.pos += r.step
	}

	return written * r.channels, nil
}

// ResampleToMono chains a Resampler and a MonoMixer and drains them.
func ResampleToMono(src Source, rate, bufSize int) ([]float32, error) {
	var s Source = src
	if src.SampleRate() != rate {
		s = NewResampler(src, rate)
	}
	return ReadAll(NewMonoMixer(s), bufSize)
}
