// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"math"

	"github.com/ctessum/geom"
)

// Transform is an affine geotransform in row/column order:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Transform struct {
	A, B, C float64
	D, E, F float64
}

// Identity is used for rasters without georeferencing.
var Identity = Transform{A: 1, E: 1}

// Apply maps a (col, row) pixel position to model coordinates.
func (t Transform) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// Invert returns the inverse mapping, from model to pixel space.
func (t Transform) Invert() (Transform, bool) {
	det := t.A*t.E - t.B*t.D
	if det == 0 || math.IsNaN(det) {
		return Transform{}, false
	}

	ia := t.E / det
	ib := -t.B / det
	id := -t.D / det
	ie := t.A / det

	return Transform{
		A: ia, B: ib, C: -t.C*ia - t.F*ib,
		D: id, E: ie, F: -t.C*id - t.F*ie,
	}, true
}

// NorthUp reports whether the transform has no rotation terms.
func (t Transform) NorthUp() bool {
	return t.B == 0 && t.D == 0
}

// Res is the pixel size along x and y, both positive for north-up rasters.
func (t Transform) Res() (float64, float64) {
	return math.Abs(t.A), math.Abs(t.E)
}

// Bounds returns the model-space extent of a width x height raster.
func (t Transform) Bounds(width, height int) *geom.Bounds {
	b := geom.NewBounds()
	for _, p := range [][2]float64{{0, 0}, {float64(width), 0}, {0, float64(height)}, {float64(width), float64(height)}} {
		x, y := t.Apply(p[0], p[1])
		b.Extend(geom.Point{X: x, Y: y}.Bounds())
	}
	return b
}

// Window is an integer pixel window.
type Window struct {
	ColOff, RowOff int
	Width, Height  int
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

// Clamp intersects w with a width x height extent.
func (w Window) Clamp(width, height int) Window {
	c0 := max(0, w.ColOff)
	r0 := max(0, w.RowOff)
	c1 := min(width, w.ColOff+w.Width)
	r1 := min(height, w.RowOff+w.Height)
	if c1 <= c0 || r1 <= r0 {
		return Window{}
	}

	return Window{ColOff: c0, RowOff: r0, Width: c1 - c0, Height: r1 - r0}
}

// FloatWindow is a fractional window as computed from model bounds.
type FloatWindow struct {
	ColOff, RowOff float64
	Width, Height  float64
}

// offsetTolerance absorbs floating-point noise when flooring offsets that
// sit on a pixel edge.
const offsetTolerance = 1e-3

// Round floors the offsets and rounds the lengths to the nearest pixel.
func (w FloatWindow) Round() Window {
	return Window{
		ColOff: int(math.Floor(w.ColOff + offsetTolerance)),
		RowOff: int(math.Floor(w.RowOff + offsetTolerance)),
		Width:  int(math.Floor(w.Width + 0.5)),
		Height: int(math.Floor(w.Height + 0.5)),
	}
}

// WindowFromBounds maps model-space bounds onto the pixel grid of t.
func WindowFromBounds(b *geom.Bounds, t Transform) (FloatWindow, bool) {
	inv, ok := t.Invert()
	if !ok || b == nil {
		return FloatWindow{}, false
	}

	minC, minR := math.Inf(1), math.Inf(1)
	maxC, maxR := math.Inf(-1), math.Inf(-1)
	for _, p := range []geom.Point{b.Min, {X: b.Max.X, Y: b.Min.Y}, b.Max, {X: b.Min.X, Y: b.Max.Y}} {
		c, r := inv.Apply(p.X, p.Y)
		minC, maxC = math.Min(minC, c), math.Max(maxC, c)
		minR, maxR = math.Min(minR, r), math.Max(maxR, r)
	}
	if math.IsNaN(minC+minR+maxC+maxR) || math.IsInf(minC+minR+maxC+maxR, 0) {
		return FloatWindow{}, false
	}

	return FloatWindow{ColOff: minC, RowOff: minR, Width: maxC - minC, Height: maxR - minR}, true
}
