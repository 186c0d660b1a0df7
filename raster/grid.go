// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"iter"

	"github.com/ctessum/geom"

	"github.com/ik5/geosonify/errs"
)

// MasterGrid is the mosaicked elevation raster cut into square cells of
// PixelsPerCell pixels.
type MasterGrid struct {
	*Raster

	PixelsPerCell int
}

// NewMasterGrid derives the cell size in pixels from the raster's x
// resolution. A cell smaller than one pixel is errs.Configuration.
func NewMasterGrid(r *Raster, cellSizeM float64) (*MasterGrid, error) {
	const op = "raster.grid"

	resX, _ := r.Transform.Res()
	if resX == 0 {
		return nil, errs.E(errs.Configuration, op, ErrCellBelowPixel)
	}
	ppc := int(cellSizeM / resX)
	if ppc <= 0 {
		return nil, errs.Ef(errs.Configuration, op, "%v m at %v m/px: %v", cellSizeM, resX, ErrCellBelowPixel)
	}

	return &MasterGrid{Raster: r, PixelsPerCell: ppc}, nil
}

// Rows is the number of cell rows, counting a partial last row.
func (g *MasterGrid) Rows() int {
	return (g.Height + g.PixelsPerCell - 1) / g.PixelsPerCell
}

// Cols is the number of cell columns, counting a partial last column.
func (g *MasterGrid) Cols() int {
	return (g.Width + g.PixelsPerCell - 1) / g.PixelsPerCell
}

// Len is the number of cells visited by a full traversal.
func (g *MasterGrid) Len() int {
	return g.Rows() * g.Cols()
}

// GridCell is one cell of the master grid.
type GridCell struct {
	Index    int // row-major position in the traversal
	Row, Col int // cell indices

	// Window is the cell's pixel window, clamped to the raster.
	Window Window
	// Bounds is the full nominal cell extent in master CRS, also for
	// partial edge cells.
	Bounds geom.Bounds
}

// Cell returns the cell at (row, col) in cell units.
func (g *MasterGrid) Cell(row, col int) GridCell {
	ppc := g.PixelsPerCell
	pr, pc := row*ppc, col*ppc

	minX, maxY := g.Transform.Apply(float64(pc), float64(pr))
	maxX, minY := g.Transform.Apply(float64(pc+ppc), float64(pr+ppc))

	return GridCell{
		Index:  row*g.Cols() + col,
		Row:    row,
		Col:    col,
		Window: Window{ColOff: pc, RowOff: pr, Width: ppc, Height: ppc}.Clamp(g.Width, g.Height),
		Bounds: geom.Bounds{
			Min: geom.Point{X: minX, Y: minY},
			Max: geom.Point{X: maxX, Y: maxY},
		},
	}
}

// Cells yields every cell in row-major order: rows outer, columns inner.
func (g *MasterGrid) Cells() iter.Seq[GridCell] {
	return func(yield func(GridCell) bool) {
		for row := range g.Rows() {
			for col := range g.Cols() {
				if !yield(g.Cell(row, col)) {
					return
				}
			}
		}
	}
}
