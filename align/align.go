// SPDX-License-Identifier: EPL-2.0

// Package align locates a master-grid cell inside auxiliary raster layers
// that may use another CRS, origin or resolution.
package align

import (
	"log/slog"

	"github.com/ctessum/geom"

	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/raster"
)

// DensifyPoints is the number of points sampled along each bounds edge
// before reprojection, so curved edges in the target CRS are covered.
const DensifyPoints = 21

// Aligner extracts per-cell windows from auxiliary layers.
type Aligner struct {
	cache     *TransformerCache
	masterCRS string
	logger    *slog.Logger
}

type Option func(*Aligner)

func WithLogger(l *slog.Logger) Option {
	return func(a *Aligner) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Aligner for a master grid in masterCRS. The cache is
// shared; passing nil allocates a private one.
func New(masterCRS string, cache *TransformerCache, opts ...Option) *Aligner {
	if cache == nil {
		cache = NewTransformerCache()
	}
	a := &Aligner{cache: cache, masterCRS: masterCRS, logger: slog.Default()}
	for _, o := range opts {
		o(a)
	}
	a.logger = a.logger.With("component", "align")

	return a
}

// Window computes the clamped pixel window of bounds (in master CRS)
// within layer. The returned window is empty when the cell misses the
// layer. A non-nil error is always errs.Alignment.
func (a *Aligner) Window(bounds geom.Bounds, layer *raster.Raster) (raster.Window, error) {
	const op = "align.window"

	if layer == nil {
		return raster.Window{}, nil
	}
	if bounds.Max.X <= bounds.Min.X || bounds.Max.Y <= bounds.Min.Y {
		return raster.Window{}, errs.E(errs.Alignment, op, ErrEmptyBounds)
	}

	t, err := a.cache.Transformer(a.masterCRS, layer.CRS)
	if err != nil {
		return raster.Window{}, errs.E(errs.Alignment, op, err)
	}

	g, err := densePolygon(&bounds).Transform(t)
	if err != nil {
		return raster.Window{}, errs.E(errs.Alignment, op, err)
	}

	fw, ok := raster.WindowFromBounds(g.Bounds(), layer.Transform)
	if !ok {
		return raster.Window{}, errs.E(errs.Alignment, op, ErrNotInvertible)
	}

	return fw.Round().Clamp(layer.Width, layer.Height), nil
}

// Extract reads the cell's pixels from layer. A nil layer, a window
// outside the layer, or all-NaN data give the empty Block. A failed
// transform also gives the empty Block, together with an errs.Alignment
// error the caller may log; it never needs to abort the cell.
func (a *Aligner) Extract(bounds geom.Bounds, layer *raster.Raster) (raster.Block, error) {
	w, err := a.Window(bounds, layer)
	if err != nil {
		a.logger.Debug("alignment failed", "layer_crs", layer.CRS, "error", err)
		return raster.Block{}, err
	}
	if w.Empty() {
		return raster.Block{}, nil
	}

	blk := layer.Read(w)
	if blk.AllNaN() {
		return raster.Block{}, nil
	}

	return blk, nil
}

// densePolygon samples DensifyPoints points per edge of b.
func densePolygon(b *geom.Bounds) geom.Polygon {
	dx := b.Max.X - b.Min.X
	dy := b.Max.Y - b.Min.Y
	step := float64(DensifyPoints - 1)

	ring := make([]geom.Point, 0, 4*(DensifyPoints-1)+1)
	for i := range DensifyPoints - 1 {
		ring = append(ring, geom.Point{X: b.Min.X + dx*float64(i)/step, Y: b.Min.Y})
	}
	for i := range DensifyPoints - 1 {
		ring = append(ring, geom.Point{X: b.Max.X, Y: b.Min.Y + dy*float64(i)/step})
	}
	for i := range DensifyPoints - 1 {
		ring = append(ring, geom.Point{X: b.Max.X - dx*float64(i)/step, Y: b.Max.Y})
	}
	for i := range DensifyPoints - 1 {
		ring = append(ring, geom.Point{X: b.Min.X, Y: b.Max.Y - dy*float64(i)/step})
	}
	ring = append(ring, b.Min)

	return geom.Polygon{ring}
}
