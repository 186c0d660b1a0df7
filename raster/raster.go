// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"math"

	"github.com/ctessum/geom"
)

// Raster is a loaded multi-band raster. Bands are row-major and no-data
// pixels are NaN.
type Raster struct {
	Width, Height int
	Bands         [][]float64

	// CRS is "EPSG:<code>", a proj4 definition, or empty when the file
	// carries no georeferencing.
	CRS       string
	Transform Transform

	NoData    float64
	HasNoData bool
}

// Count is the number of bands.
func (r *Raster) Count() int {
	return len(r.Bands)
}

func (r *Raster) At(band, row, col int) float64 {
	return r.Bands[band][row*r.Width+col]
}

// Bounds is the model-space extent.
func (r *Raster) Bounds() *geom.Bounds {
	return r.Transform.Bounds(r.Width, r.Height)
}

// Read copies the pixels of w, clamped to the raster extent.
func (r *Raster) Read(w Window) Block {
	w = w.Clamp(r.Width, r.Height)
	if w.Empty() {
		return Block{}
	}

	out := Block{Width: w.Width, Height: w.Height, Bands: make([][]float64, len(r.Bands))}
	for b, src := range r.Bands {
		dst := make([]float64, w.Width*w.Height)
		for row := range w.Height {
			start := (w.RowOff+row)*r.Width + w.ColOff
			copy(dst[row*w.Width:(row+1)*w.Width], src[start:start+w.Width])
		}
		out.Bands[b] = dst
	}

	return out
}

// Block is a copied window of a raster. The zero Block is the empty result.
type Block struct {
	Width, Height int
	Bands         [][]float64
}

func (b Block) Empty() bool {
	return b.Width <= 0 || b.Height <= 0 || len(b.Bands) == 0
}

func (b Block) Count() int {
	return len(b.Bands)
}

// Band returns band i, or nil when absent.
func (b Block) Band(i int) []float64 {
	if i < 0 || i >= len(b.Bands) {
		return nil
	}
	return b.Bands[i]
}

func (b Block) At(band, row, col int) float64 {
	return b.Bands[band][row*b.Width+col]
}

// AllNaN reports whether every pixel of every band is NaN. Empty blocks
// count as all-NaN.
func (b Block) AllNaN() bool {
	for _, band := range b.Bands {
		for _, v := range band {
			if !math.IsNaN(v) {
				return false
			}
		}
	}
	return true
}

// Valid is shorthand for a non-empty block with at least one value.
func (b Block) Valid() bool {
	return !b.Empty() && !b.AllNaN()
}
