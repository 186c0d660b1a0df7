// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/internal/rastertest"
)

func TestTransform_Invert(t *testing.T) {
	t.Parallel()

	tr := Transform{A: 2, C: 1000, E: -2, F: 5000}
	inv, ok := tr.Invert()
	require.True(t, ok)

	x, y := tr.Apply(3, 4)
	c, r := inv.Apply(x, y)
	assert.InDelta(t, 3.0, c, 1e-12)
	assert.InDelta(t, 4.0, r, 1e-12)

	_, ok = Transform{}.Invert()
	assert.False(t, ok)
}

func TestWindow_Clamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Window{ColOff: 0, RowOff: 2, Width: 3, Height: 4}, Window{ColOff: -2, RowOff: 2, Width: 5, Height: 10}.Clamp(10, 6))
	assert.True(t, Window{ColOff: 11, Width: 3, Height: 3}.Clamp(10, 10).Empty())
}

func TestWindowFromBounds(t *testing.T) {
	t.Parallel()

	tr := Transform{A: 10, C: 0, E: -10, F: 1000}
	b := &geom.Bounds{Min: geom.Point{X: 50, Y: 850}, Max: geom.Point{X: 100, Y: 900}}

	fw, ok := WindowFromBounds(b, tr)
	require.True(t, ok)
	assert.Equal(t, Window{ColOff: 5, RowOff: 10, Width: 5, Height: 5}, fw.Round())

	// Offsets a hair below a pixel edge still floor onto that edge.
	assert.Equal(t, 5, FloatWindow{ColOff: 4.99999}.Round().ColOff)
}

func TestNewMasterGrid(t *testing.T) {
	t.Parallel()

	r := &Raster{Width: 120, Height: 75, Transform: Transform{A: 1, E: -1, F: 75}, Bands: [][]float64{make([]float64, 120*75)}}

	g, err := NewMasterGrid(r, 50)
	require.NoError(t, err)
	assert.Equal(t, 50, g.PixelsPerCell)
	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 3, g.Cols())
	assert.Equal(t, 6, g.Len())

	_, err = NewMasterGrid(&Raster{Transform: Transform{A: 100, E: -100}}, 50)
	require.Error(t, err)
	assert.Equal(t, errs.Configuration, errs.KindOf(err))
}

func TestMasterGrid_CellsRowMajor(t *testing.T) {
	t.Parallel()

	r := &Raster{Width: 120, Height: 75, Transform: Transform{A: 1, C: 1000, E: -1, F: 2075}, Bands: [][]float64{make([]float64, 120*75)}}
	g, err := NewMasterGrid(r, 50)
	require.NoError(t, err)

	var got [][2]int
	for c := range g.Cells() {
		assert.Equal(t, len(got), c.Index)
		got = append(got, [2]int{c.Row, c.Col})
	}
	assert.Equal(t, [][2]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, got)

	edge := g.Cell(1, 2)
	assert.Equal(t, Window{ColOff: 100, RowOff: 50, Width: 20, Height: 25}, edge.Window)
	assert.InDelta(t, 1100.0, edge.Bounds.Min.X, 1e-9)
	assert.InDelta(t, 1150.0, edge.Bounds.Max.X, 1e-9)
	assert.InDelta(t, 2025.0, edge.Bounds.Max.Y, 1e-9)
	assert.InDelta(t, 1975.0, edge.Bounds.Min.Y, 1e-9)
}

func TestMosaic_Overlap(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	// Tile A covers x [0,100), tile B x [60,160); both 10 m, 5 rows.
	a := rastertest.WriteFile(t, dir, "a.tif", rastertest.Image{
		Width: 10, Height: 5, PixelSize: 10, OriginX: 0, OriginY: 50, EPSG: 32719,
		Bands: rastertest.Fill(10, 5, func(r, c int) float64 { return 1000 + float64(c) }),
	})
	b := rastertest.WriteFile(t, dir, "b.tif", rastertest.Image{
		Width: 10, Height: 5, PixelSize: 10, OriginX: 60, OriginY: 50, EPSG: 32719,
		Bands: rastertest.Fill(10, 5, func(r, c int) float64 { return 2000 + float64(c) }),
	})

	m, err := Mosaic([]string{a, b})
	require.NoError(t, err)
	assert.Equal(t, 16, m.Width)
	assert.Equal(t, 5, m.Height)
	assert.Equal(t, "EPSG:32719", m.CRS)

	// Overlap column 7 (x=70..80): tile A col 7, tile B col 1. First wins.
	assert.InDelta(t, 1007.0, m.At(0, 2, 7), 1e-9)
	// Only B covers column 12.
	assert.InDelta(t, 2006.0, m.At(0, 2, 12), 1e-9)

	rev, err := Mosaic([]string{b, a})
	require.NoError(t, err)
	assert.InDelta(t, 2001.0, rev.At(0, 2, 7), 1e-9)
	assert.InDelta(t, 1002.0, rev.At(0, 2, 2), 1e-9)
}

func TestMosaic_FirstValidWins(t *testing.T) {
	t.Parallel()

	nan := math.NaN()
	a := &Raster{Width: 2, Height: 1, CRS: "EPSG:32719", Transform: Transform{A: 1, E: -1, F: 1}, Bands: [][]float64{{nan, 5}}}
	b := &Raster{Width: 2, Height: 1, CRS: "EPSG:32719", Transform: Transform{A: 1, E: -1, F: 1}, Bands: [][]float64{{7, 8}}}

	m, err := Merge([]*Raster{a, b})
	require.NoError(t, err)
	assert.Equal(t, []float64{7, 5}, m.Bands[0])
}

func TestMosaic_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := rastertest.WriteFile(t, dir, "a.tif", rastertest.Image{Width: 2, Height: 2, PixelSize: 1, EPSG: 32719, Bands: ramp(2, 2)})
	b := rastertest.WriteFile(t, dir, "b.tif", rastertest.Image{Width: 2, Height: 2, PixelSize: 1, EPSG: 31979, Bands: ramp(2, 2)})

	_, err := Mosaic([]string{a, filepath.Join(dir, "gone.tif")})
	assert.Equal(t, errs.MissingInput, errs.KindOf(err))

	_, err = Mosaic(nil)
	assert.Equal(t, errs.MissingInput, errs.KindOf(err))

	_, err = Mosaic([]string{a, b})
	require.ErrorIs(t, err, ErrCRSMismatch)
	assert.Equal(t, errs.Configuration, errs.KindOf(err))
}

func TestRaster_Read(t *testing.T) {
	t.Parallel()

	r := &Raster{Width: 4, Height: 3, Bands: ramp(4, 3)}

	blk := r.Read(Window{ColOff: 2, RowOff: 1, Width: 5, Height: 5})
	assert.Equal(t, 2, blk.Width)
	assert.Equal(t, 2, blk.Height)
	assert.Equal(t, []float64{102, 103, 202, 203}, blk.Band(0))
	assert.True(t, blk.Valid())

	assert.True(t, r.Read(Window{ColOff: 9, Width: 1, Height: 1}).Empty())
	assert.True(t, Block{Width: 1, Height: 1, Bands: [][]float64{{math.NaN()}}}.AllNaN())
	assert.Nil(t, blk.Band(3))
}
