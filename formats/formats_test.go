// SPDX-License-Identifier: EPL-2.0

package formats_test

import (
	"io"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ik5/geosonify/audio"
	"github.com/ik5/geosonify/formats"
	"github.com/ik5/geosonify/formats/wav"
)

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	got := formats.NewRegistry().Formats()
	want := []string{"aif", "aiff", "mp3", "oga", "ogg", "wav"}
	if !slices.Equal(got, want) {
		t.Errorf("Formats() = %v, want %v", got, want)
	}
}

func TestRegistryOpenWav(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.WAV")
	if err := wav.WriteFile(path, 11025, 1, []int16{0, 8192, -8192}); err != nil {
		t.Fatal(err)
	}

	src, err := formats.NewRegistry().Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer src.Close()

	got, err := audio.ReadAll(src, 16)
	if err != nil && err != io.EOF {
		t.Fatal(err)
	}
	if !slices.Equal(got, []float32{0, 0.25, -0.25}) {
		t.Errorf("samples = %v", got)
	}
}
