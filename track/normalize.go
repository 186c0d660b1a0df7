// SPDX-License-Identifier: EPL-2.0

package track

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/formats/wav"
	"github.com/ik5/geosonify/utils"
)

// Normalizer rescales a mono track so its peak reaches Ceiling. Tracks
// whose peak is at or below Epsilon are copied unchanged.
type Normalizer struct {
	BlockSize int
	Ceiling   float64
	Epsilon   float64
}

// NewNormalizer takes its settings from the audio section.
func NewNormalizer(cfg config.Audio) Normalizer {
	return Normalizer{
		BlockSize: cfg.BlockSize,
		Ceiling:   cfg.Ceiling,
		Epsilon:   cfg.SilenceEpsilon,
	}
}

func (n Normalizer) blocks(r *wav.Reader, fn func([]int16) error) error {
	buf := make([]int16, max(n.BlockSize, 1))
	for {
		k, err := r.ReadInt16(buf)
		if k > 0 {
			if ferr := fn(buf[:k]); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// Peak scans path block by block and returns the largest absolute sample
// as a fraction of full scale.
func (n Normalizer) Peak(path string) (float64, error) {
	const op = "track.peak"

	r, err := wav.Open(path)
	if err != nil {
		return 0, errs.E(errs.IO, op, err)
	}
	defer r.Close()

	var peak float64
	err = n.blocks(r, func(b []int16) error {
		for _, s := range b {
			peak = max(peak, math.Abs(utils.Int16ToFloat64(s)))
		}
		return nil
	})
	if err != nil {
		return 0, errs.E(errs.IO, op, err)
	}

	return peak, nil
}

// Factor maps peak to the scale applied in the second pass.
func (n Normalizer) Factor(peak float64) float64 {
	if peak <= n.Epsilon || peak == 0 {
		return 1
	}
	return n.Ceiling / peak
}

// Normalize writes a rescaled copy of src to dst and returns the measured
// peak and the applied factor.
func (n Normalizer) Normalize(src, dst string) (peak, factor float64, err error) {
	const op = "track.normalize"

	peak, err = n.Peak(src)
	if err != nil {
		return 0, 0, err
	}
	factor = n.Factor(peak)

	r, err := wav.Open(src)
	if err != nil {
		return 0, 0, errs.E(errs.IO, op, err)
	}
	defer r.Close()

	if r.Channels() != 1 {
		return 0, 0, errs.Ef(errs.IO, op, "%s: %d channels: %w", src, r.Channels(), ErrNotMono)
	}

	w, err := wav.Create(dst, r.SampleRate(), 1)
	if err != nil {
		return 0, 0, errs.E(errs.IO, op, err)
	}

	err = n.blocks(r, func(b []int16) error {
		for i, s := range b {
			b[i] = utils.RoundToInt16(utils.Int16ToFloat64(s) * factor)
		}
		return w.WriteInt16(b)
	})
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, 0, errs.E(errs.IO, op, fmt.Errorf("%s: %w", dst, err))
	}

	return peak, factor, nil
}

// WriteSilence writes a mono track of the given length in zero samples,
// one block at a time.
func WriteSilence(path string, sampleRate int, samples int64, blockSize int) error {
	const op = "track.silence"

	w, err := wav.Create(path, sampleRate, 1)
	if err != nil {
		return errs.E(errs.IO, op, err)
	}

	block := make([]int16, max(blockSize, 1))
	for left := samples; left > 0; {
		k := min(left, int64(len(block)))
		if err := w.WriteInt16(block[:k]); err != nil {
			_ = w.Close()
			return errs.E(errs.IO, op, err)
		}
		left -= k
	}

	if err := w.Close(); err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}
