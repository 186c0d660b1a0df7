// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/geosonify/audio"
	"github.com/ik5/geosonify/utils"
)

// pcmReader is the subset of wav.Decoder the Reader needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// Reader reads 16-bit PCM from a WAV stream in blocks.
type Reader struct {
	dec        pcmReader
	sampleRate int
	channels   int
	buf        *goaudio.IntBuffer
	closer     io.Closer
}

// NewReader parses the WAV header of rs.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	d := wav.NewDecoder(rs)
	if !d.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if err := d.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}
	if d.WavAudioFormat != formatPCM || d.BitDepth != bitDepth {
		return nil, ErrOnlyPCM16bitSupported
	}
	if err := d.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("wav: seek to data: %w", err)
	}

	return &Reader{
		dec:        d,
		sampleRate: int(d.SampleRate),
		channels:   int(d.NumChans),
		buf:        &goaudio.IntBuffer{Format: d.Format()},
	}, nil
}

// Open opens a WAV file for block reading.
func Open(path string) (*Reader, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("wav: open %s: %w", path, err)
	}

	r, err := NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	r.closer = f

	return r, nil
}

func (r *Reader) SampleRate() int { return r.sampleRate }
func (r *Reader) Channels() int   { return r.channels }

// ReadInt16 fills dst with interleaved samples. It returns io.EOF once the
// data chunk is exhausted.
func (r *Reader) ReadInt16(dst []int16) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	if cap(r.buf.Data) < len(dst) {
		r.buf.Data = make([]int, len(dst))
	}
	r.buf.Data = r.buf.Data[:len(dst)]

	n, err := r.dec.PCMBuffer(r.buf)
	for i := range n {
		dst[i] = int16(r.buf.Data[i])
	}
	if n == 0 {
		if err != nil && err != io.EOF {
			return 0, fmt.Errorf("wav: read: %w", err)
		}
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("wav: read: %w", err)
	}

	return n, nil
}

func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return fmt.Errorf("wav: close: %w", err)
	}
	return nil
}

// source adapts a Reader to audio.Source.
type source struct {
	r   *Reader
	tmp []int16
}

func (s *source) SampleRate() int { return s.r.SampleRate() }
func (s *source) Channels() int   { return s.r.Channels() }
func (s *source) BufSize() int    { return 4096 }
func (s *source) Close() error    { return s.r.Close() }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if cap(s.tmp) < len(dst) {
		s.tmp = make([]int16, len(dst))
	}
	n, err := s.r.ReadInt16(s.tmp[:len(dst)])
	for i := range n {
		dst[i] = float32(utils.Int16ToFloat64(s.tmp[i]))
	}
	return n, err
}

// Decoder decodes 16-bit PCM WAV streams into audio.Source.
type Decoder struct{}

// Decode reads the WAV header from r. Readers that cannot seek are
// buffered in memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("wav: buffer input: %w", err)
		}
		rs = bytes.NewReader(b)
	}

	rd, err := NewReader(rs)
	if err != nil {
		return nil, err
	}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}

	return &source{r: rd}, nil
}
