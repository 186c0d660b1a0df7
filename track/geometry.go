// SPDX-License-Identifier: EPL-2.0

package track

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ctessum/geom"

	"github.com/ik5/geosonify/errs"
)

// Geometry ties one grid cell's ground extent to its time range in the
// track.
type Geometry struct {
	MinX         float64 `json:"minx"`
	MinY         float64 `json:"miny"`
	MaxX         float64 `json:"maxx"`
	MaxY         float64 `json:"maxy"`
	AudioStartMs float64 `json:"audio_start_ms"`
	AudioEndMs   float64 `json:"audio_end_ms"`
}

// NewGeometry builds a record from cell bounds and a time range.
func NewGeometry(b geom.Bounds, startMs, endMs float64) Geometry {
	return Geometry{
		MinX:         b.Min.X,
		MinY:         b.Min.Y,
		MaxX:         b.Max.X,
		MaxY:         b.Max.Y,
		AudioStartMs: startMs,
		AudioEndMs:   endMs,
	}
}

// Bounds returns the record's extent.
func (g Geometry) Bounds() geom.Bounds {
	return geom.Bounds{
		Min: geom.Point{X: g.MinX, Y: g.MinY},
		Max: geom.Point{X: g.MaxX, Y: g.MaxY},
	}
}

// DurationMs is the length of the record's time range.
func (g Geometry) DurationMs() float64 {
	return g.AudioEndMs - g.AudioStartMs
}

// EncodeGeometry writes gs as an indented JSON array. A nil slice is
// written as an empty array.
func EncodeGeometry(w io.Writer, gs []Geometry) error {
	if gs == nil {
		gs = []Geometry{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(gs); err != nil {
		return fmt.Errorf("encode geometry: %w", err)
	}

	return nil
}

// DecodeGeometry reads a JSON array written by EncodeGeometry.
func DecodeGeometry(r io.Reader) ([]Geometry, error) {
	var gs []Geometry
	if err := json.NewDecoder(r).Decode(&gs); err != nil {
		return nil, fmt.Errorf("decode geometry: %w", err)
	}

	return gs, nil
}

// WriteGeometry writes gs to path. Failures are of kind errs.IO.
func WriteGeometry(path string, gs []Geometry) error {
	const op = "track.geometry"

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return errs.E(errs.IO, op, err)
	}

	if err := EncodeGeometry(f, gs); err != nil {
		_ = f.Close()
		return errs.E(errs.IO, op, err)
	}

	if err := f.Close(); err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}

// ReadGeometry reads the geometry file at path. Failures are of kind
// errs.IO.
func ReadGeometry(path string) ([]Geometry, error) {
	const op = "track.geometry"

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}
	defer f.Close()

	gs, err := DecodeGeometry(f)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	return gs, nil
}
