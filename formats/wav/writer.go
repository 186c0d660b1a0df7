// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	formatPCM = 1
)

// Writer streams 16-bit PCM into a WAV container. The header sizes are
// patched on Close, so the target must be seekable.
type Writer struct {
	enc    *wav.Encoder
	buf    *goaudio.IntBuffer
	closer io.Closer

	channels int
	samples  int64
	closed   bool
}

// NewWriter starts a WAV stream on ws. The header is written immediately
// so that a stream closed without samples is still a valid empty file.
func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	w := &Writer{
		enc: wav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
	}

	if err := w.enc.Write(w.buf); err != nil {
		return nil, fmt.Errorf("wav header: %w", err)
	}

	return w, nil
}

// Create opens path for writing and starts a WAV stream on it. Close
// finalizes the stream and closes the file.
func Create(path string, sampleRate, channels int) (*Writer, error) {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("wav: create %s: %w", path, err)
	}

	w, err := NewWriter(f, sampleRate, channels)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f

	return w, nil
}

// WriteInt16 appends interleaved samples.
func (w *Writer) WriteInt16(samples []int16) error {
	if w.closed {
		return ErrClosed
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, s := range samples {
		w.buf.Data[i] = int(s)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: write: %w", err)
	}
	w.samples += int64(len(samples))

	return nil
}

// Samples is the number of interleaved samples written so far.
func (w *Writer) Samples() int64 {
	return w.samples
}

// Close patches the header and, for writers from Create, closes the file.
// Calling Close twice is a no-op.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	err := w.enc.Close()
	if w.closer != nil {
		if cerr := w.closer.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return fmt.Errorf("wav: close: %w", err)
	}

	return nil
}

// WriteFile writes a complete WAV file holding samples.
func WriteFile(path string, sampleRate, channels int, samples []int16) error {
	w, err := Create(path, sampleRate, channels)
	if err != nil {
		return err
	}
	if err := w.WriteInt16(samples); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
