// SPDX-License-Identifier: EPL-2.0

package embedding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/ik5/geosonify/audio"
	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/errs"
)

// Embedder turns one analysis frame of mono samples at the framer's rate
// into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, frame []float32) ([]float64, error)
}

// EmbedderFunc adapts a function to Embedder.
type EmbedderFunc func(ctx context.Context, frame []float32) ([]float64, error)

// Embed calls f(ctx, frame).
func (f EmbedderFunc) Embed(ctx context.Context, frame []float32) ([]float64, error) {
	return f(ctx, frame)
}

// Framer decodes a track, brings it to mono at the model rate and cuts it
// into overlapping analysis frames.
type Framer struct {
	reg     *audio.Registry
	rate    int
	frame   int // samples per frame
	hop     int // samples between frame starts
	bufSize int
	logger  *slog.Logger
}

// FramerOption configures a Framer.
type FramerOption func(*Framer)

// WithFramerLogger sets the logger. A nil logger keeps slog.Default.
func WithFramerLogger(l *slog.Logger) FramerOption {
	return func(f *Framer) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithBufferSize sets the number of samples pulled from the decoder at once.
func WithBufferSize(n int) FramerOption {
	return func(f *Framer) {
		if n > 0 {
			f.bufSize = n
		}
	}
}

// NewFramer returns a Framer cutting frames of cfg.FrameS seconds every
// cfg.HopS seconds at cfg.SampleRate. Tracks are opened through reg.
func NewFramer(reg *audio.Registry, cfg config.Embedding, opts ...FramerOption) *Framer {
	f := &Framer{
		reg:     reg,
		rate:    cfg.SampleRate,
		frame:   int(math.Round(cfg.FrameS * float64(cfg.SampleRate))),
		hop:     int(math.Round(cfg.HopS * float64(cfg.SampleRate))),
		bufSize: 4096,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = f.logger.With("component", "framer")

	return f
}

// FrameLen is the frame length in samples.
func (f *Framer) FrameLen() int { return f.frame }

// Frames calls fn for every complete frame of src in order. The frame
// slice is reused between calls. It returns the number of frames emitted.
// Frame starts are exactly hop samples apart whatever the read size.
func (f *Framer) Frames(ctx context.Context, src audio.Source, fn func(i int, frame []float32) error) (int, error) {
	var s audio.Source = src
	if src.SampleRate() != f.rate {
		s = audio.NewResampler(s, f.rate)
	}
	mono := audio.NewMonoMixer(s)

	const op = "embedding.frames"

	pending := make([]float32, 0, f.frame+f.bufSize)
	buf := make([]float32, f.bufSize)
	count := 0
	// skip is the part of a hop not yet read when the frame was emitted.
	skip := 0

	for {
		if err := ctx.Err(); err != nil {
			return count, err
		}

		n, err := mono.ReadSamples(buf)
		in := buf[:n]
		if skip > 0 {
			d := min(skip, len(in))
			in = in[d:]
			skip -= d
		}
		pending = append(pending, in...)

		for len(pending) >= f.frame {
			if ferr := fn(count, pending[:f.frame]); ferr != nil {
				return count, ferr
			}
			count++
			d := min(f.hop, len(pending))
			skip = f.hop - d
			pending = pending[:copy(pending, pending[d:])]
		}

		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			return count, nil
		}
		if err != nil {
			return count, errs.E(errs.IO, op, err)
		}
	}
}

// EmbedFile runs e over every frame of the track at path.
func (f *Framer) EmbedFile(ctx context.Context, path string, e Embedder) ([][]float64, error) {
	src, err := f.reg.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	var out [][]float64
	n, err := f.Frames(ctx, src, func(i int, frame []float32) error {
		v, err := e.Embed(ctx, frame)
		if err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		if len(out) > 0 && len(v) != len(out[0]) {
			return fmt.Errorf("frame %d: %d dims, want %d: %w", i, len(v), len(out[0]), ErrEmbedderDims)
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	f.logger.Debug("embedded track", "path", path, "frames", n)

	return out, nil
}
