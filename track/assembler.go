// SPDX-License-Identifier: EPL-2.0

package track

import (
	"github.com/ctessum/geom"

	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/formats/wav"
)

// Assembler appends cell segments to a mono track and keeps the geometry
// index in step with the written audio.
//
// Once a write fails the Assembler stops touching the file but keeps
// recording geometry, so the accumulated duration stays correct for a
// silent fallback track.
type Assembler struct {
	w          *wav.Writer
	sampleRate int

	geometry []Geometry
	samples  int64
	err      error
}

// NewAssembler creates the raw track at path.
func NewAssembler(path string, sampleRate int) (*Assembler, error) {
	const op = "track.assemble"

	w, err := wav.Create(path, sampleRate, 1)
	if err != nil {
		return nil, errs.E(errs.IO, op, err)
	}

	return &Assembler{w: w, sampleRate: sampleRate}, nil
}

func (a *Assembler) ms(samples int64) float64 {
	return float64(samples) * 1000 / float64(a.sampleRate)
}

// Append writes seg and records its geometry. The record starts where the
// previous one ended and lasts exactly len(seg) samples.
func (a *Assembler) Append(bounds geom.Bounds, seg []int16) error {
	const op = "track.append"

	start := a.samples
	a.samples += int64(len(seg))
	a.geometry = append(a.geometry, NewGeometry(bounds, a.ms(start), a.ms(a.samples)))

	if a.err != nil {
		return a.err
	}
	if err := a.w.WriteInt16(seg); err != nil {
		a.err = errs.E(errs.IO, op, err)
		return a.err
	}

	return nil
}

// Geometry returns the records appended so far, in traversal order.
func (a *Assembler) Geometry() []Geometry {
	return a.geometry
}

// Samples is the total appended length in samples, written or not.
func (a *Assembler) Samples() int64 {
	return a.samples
}

// DurationMs is the total appended length in milliseconds.
func (a *Assembler) DurationMs() float64 {
	return a.ms(a.samples)
}

// Err reports the first write failure.
func (a *Assembler) Err() error {
	return a.err
}

// Close finalizes the raw track. It returns the first write failure if
// there was one.
func (a *Assembler) Close() error {
	const op = "track.assemble"

	if err := a.w.Close(); err != nil && a.err == nil {
		a.err = errs.E(errs.IO, op, err)
	}

	return a.err
}
