// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ctessum/geom"

	"github.com/ik5/geosonify/errs"
)

// Mosaic merges same-series elevation tiles into one single-band raster.
//
// Every path must exist; otherwise nothing is read and the error is
// errs.MissingInput. The output covers the union of the tile extents at
// the first tile's resolution and CRS. Pixels are placed by nearest
// neighbour and, where tiles overlap, the first tile in input order with a
// valid pixel wins. Uncovered pixels are NaN.
func Mosaic(paths []string) (*Raster, error) {
	const op = "raster.mosaic"

	if len(paths) == 0 {
		return nil, errs.E(errs.MissingInput, op, ErrNoTiles)
	}

	var missing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		return nil, errs.Ef(errs.MissingInput, op, "%d of %d tiles missing: %s", len(missing), len(paths), strings.Join(missing, ", "))
	}

	tiles := make([]*Raster, 0, len(paths))
	for _, p := range paths {
		t, err := Open(p)
		if err != nil {
			return nil, err
		}
		tiles = append(tiles, t)
	}

	return Merge(tiles)
}

// Merge mosaics already loaded tiles. See Mosaic for the overlap policy.
func Merge(tiles []*Raster) (*Raster, error) {
	const op = "raster.merge"

	if len(tiles) == 0 {
		return nil, errs.E(errs.MissingInput, op, ErrNoTiles)
	}

	first := tiles[0]
	if !first.Transform.NorthUp() {
		return nil, errs.E(errs.Configuration, op, ErrNonNorthUp)
	}

	union := geom.NewBounds()
	for i, t := range tiles {
		if t.CRS != first.CRS {
			return nil, errs.E(errs.Configuration, op, fmt.Errorf("%w: tile %d is %q, tile 0 is %q", ErrCRSMismatch, i, t.CRS, first.CRS))
		}
		if !t.Transform.NorthUp() {
			return nil, errs.E(errs.Configuration, op, ErrNonNorthUp)
		}
		if t.Count() == 0 {
			return nil, errs.E(errs.IO, op, fmt.Errorf("tile %d has no bands", i))
		}
		union.Extend(t.Bounds())
	}

	resX, resY := first.Transform.Res()
	if resX == 0 || resY == 0 {
		return nil, errs.E(errs.Configuration, op, errors.New("zero pixel size"))
	}

	out := &Raster{
		Width:  int(math.Round((union.Max.X - union.Min.X) / resX)),
		Height: int(math.Round((union.Max.Y - union.Min.Y) / resY)),
		CRS:    first.CRS,
		Transform: Transform{
			A: resX, C: union.Min.X,
			E: -resY, F: union.Max.Y,
		},
		NoData:    first.NoData,
		HasNoData: first.HasNoData,
	}
	dst := make([]float64, out.Width*out.Height)
	for i := range dst {
		dst[i] = math.NaN()
	}
	out.Bands = [][]float64{dst}

	for _, t := range tiles {
		inv, ok := t.Transform.Invert()
		if !ok {
			continue
		}
		fw, ok := WindowFromBounds(t.Bounds(), out.Transform)
		if !ok {
			continue
		}
		w := Window{
			ColOff: int(math.Floor(fw.ColOff)),
			RowOff: int(math.Floor(fw.RowOff)),
			Width:  int(math.Ceil(fw.Width)) + 1,
			Height: int(math.Ceil(fw.Height)) + 1,
		}.Clamp(out.Width, out.Height)

		src := t.Bands[0]
		for row := w.RowOff; row < w.RowOff+w.Height; row++ {
			for col := w.ColOff; col < w.ColOff+w.Width; col++ {
				i := row*out.Width + col
				if !math.IsNaN(dst[i]) {
					continue
				}
				x, y := out.Transform.Apply(float64(col)+0.5, float64(row)+0.5)
				sc, sr := inv.Apply(x, y)
				c, r := int(math.Floor(sc)), int(math.Floor(sr))
				if c < 0 || r < 0 || c >= t.Width || r >= t.Height {
					continue
				}
				dst[i] = src[r*t.Width+c]
			}
		}
	}

	return out, nil
}
