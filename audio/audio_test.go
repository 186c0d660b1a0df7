// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/geosonify/audio"
	"github.com/ik5/geosonify/internal/audiotest"
)

type stubDecoder struct {
	src audio.Source
	err error
}

func (d stubDecoder) Decode(io.Reader) (audio.Source, error) {
	return d.src, d.err
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	reg := audio.NewRegistry()
	wav := stubDecoder{}
	reg.Register("WAV", wav)
	reg.Register("mp3", stubDecoder{})

	got, ok := reg.Get("wav")
	if !ok || got != wav {
		t.Fatalf("Get(wav) = %v, %v", got, ok)
	}
	if _, ok := reg.Get("flac"); ok {
		t.Error("Get(flac) found a decoder")
	}
	if got := reg.Formats(); !slices.Equal(got, []string{"mp3", "wav"}) {
		t.Errorf("Formats() = %v", got)
	}
}

func TestRegistryOpen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "clip.raw")
	if err := os.WriteFile(path, []byte{0}, 0o644); err != nil {
		t.Fatal(err)
	}

	src := audiotest.NewSilentSource(8000, 1, 10)
	reg := audio.NewRegistry()
	reg.Register("raw", stubDecoder{src: src})

	got, err := reg.Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if got != src {
		t.Error("Open() returned a different source")
	}

	if _, err := reg.Open(filepath.Join(dir, "clip.flac")); !errors.Is(err, audio.ErrUnknownFormat) {
		t.Errorf("Open(flac) error = %v, want ErrUnknownFormat", err)
	}

	boom := errors.New("boom")
	reg.Register("bad", stubDecoder{err: boom})
	bad := filepath.Join(dir, "clip.bad")
	if err := os.WriteFile(bad, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Open(bad); !errors.Is(err, boom) {
		t.Errorf("Open(bad) error = %v, want boom", err)
	}
}

func TestMonoMixer(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSliceSource(8000, 2, []float32{1, 0, 0.5, 0.5, -1, 0.2})
	mono := audio.NewMonoMixer(src)
	if mono.Channels() != 1 || mono.SampleRate() != 8000 {
		t.Fatalf("metadata = %d ch %d Hz", mono.Channels(), mono.SampleRate())
	}

	got, err := audio.ReadAll(mono, 2)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	want := []float32{0.5, 0.5, -0.4}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("got[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if err := mono.Close(); err != nil || !src.Closed() {
		t.Errorf("Close() = %v, closed = %v", err, src.Closed())
	}
}

func TestMonoMixerPassthrough(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(16000, 1, 100, 0.25)
	got, err := audio.ReadAll(audio.NewMonoMixer(src), 64)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
	for i, v := range got {
		if v != 0.25 {
			t.Fatalf("got[%d] = %v", i, v)
		}
	}
}

func TestResamplerInvalidDst(t *testing.T) {
	t.Parallel()

	r := audio.NewResampler(audiotest.NewSilentSource(8000, 2, 10), 4000)
	if _, err := r.ReadSamples(make([]float32, 3)); !errors.Is(err, audio.ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v", err)
	}
}

func TestResamplerLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		channels int
	}{
		{"down 44100->16000", 44100, 16000, 1},
		{"down 11025->8000", 11025, 8000, 2},
		{"up 8000->16000", 8000, 16000, 1},
		{"same rate", 16000, 16000, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tc.from, tc.channels, tc.from, 220)
			r := audio.NewResampler(src, tc.to)
			if r.SampleRate() != tc.to || r.Channels() != tc.channels {
				t.Fatalf("metadata = %d Hz %d ch", r.SampleRate(), r.Channels())
			}

			got, err := audio.ReadAll(r, 1024)
			if err != nil {
				t.Fatal(err)
			}
			frames := len(got) / tc.channels
			if frames < tc.to-2 || frames > tc.to+2 {
				t.Errorf("frames = %d, want about %d", frames, tc.to)
			}
		})
	}
}

func TestResamplerPreservesLevel(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 1, 800, 0.5)
	got, err := audio.ReadAll(audio.NewResampler(src, 16000), 256)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if math.Abs(float64(v)-0.5) > 1e-6 {
			t.Fatalf("got[%d] = %v, want 0.5", i, v)
		}
	}
}

func TestResamplerAntiAlias(t *testing.T) {
	t.Parallel()

	// 7 kHz is above the 8 kHz Nyquist limit of a 16 kHz target.
	rms := func(freq float64) float64 {
		src := audiotest.NewSineSource(44100, 1, 44100, freq)
		got, err := audio.ReadAll(audio.NewResampler(src, 16000), 1024)
		if err != nil {
			t.Fatal(err)
		}
		var sum float64
		tail := got[len(got)/2:]
		for _, v := range tail {
			sum += float64(v) * float64(v)
		}
		return math.Sqrt(sum / float64(len(tail)))
	}

	pass, stop := rms(440), rms(12000)
	if pass < 0.6 {
		t.Errorf("passband rms = %v, want about 0.707", pass)
	}
	if stop > 0.05 {
		t.Errorf("stopband rms = %v, want near 0", stop)
	}
}

func TestResampleToMono(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(8000, 2, 8000, 0.25)
	got, err := audio.ResampleToMono(src, 16000, 4096)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 15998 || len(got) > 16002 {
		t.Errorf("len = %d, want about 16000", len(got))
	}
}
