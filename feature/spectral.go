// SPDX-License-Identifier: EPL-2.0

package feature

import (
	"math"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/raster"
)

// ratio evaluates f per pixel; a zero denominator marks the pixel
// undefined (NaN) so it is left out of the mean.
func ratio(n int, f func(i int) (num, den float64)) []float64 {
	out := make([]float64, n)
	for i := range out {
		num, den := f(i)
		if den == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = num / den
	}
	return out
}

// Spectral holds the per-cell vegetation, bareness and water indices.
// Each *Defined flag is false when no pixel produced a value; the index
// itself is then 0.
type Spectral struct {
	NDVI, EVI, BSI float64
	Brightness     float64
	NDWI           float64

	NDVIDefined bool
	NDWIDefined bool
}

// Indices computes the spectral indices of a satellite window. A window
// with at least bands.MinBands bands is read as Sentinel-2 style
// reflectances; a single-band window is taken as precomputed NDVI.
func Indices(blk raster.Block, bands config.Bands) Spectral {
	var s Spectral
	if blk.Empty() {
		return s
	}

	n := blk.Width * blk.Height

	switch {
	case blk.Count() >= bands.MinBands:
		blue, red := blk.Band(bands.Blue), blk.Band(bands.Red)
		nir, swir := blk.Band(bands.NIR), blk.Band(bands.SWIR1)

		ndvi := NaNMean(ratio(n, func(i int) (float64, float64) {
			return nir[i] - red[i], nir[i] + red[i]
		}))
		evi := NaNMean(ratio(n, func(i int) (float64, float64) {
			return 2.5 * (nir[i] - red[i]), nir[i] + 6*red[i] - 7.5*blue[i] + 1
		}))
		bsi := NaNMean(ratio(n, func(i int) (float64, float64) {
			return (swir[i] + red[i]) - (nir[i] + blue[i]), (swir[i] + red[i]) + (nir[i] + blue[i])
		}))

		s.NDVIDefined = !math.IsNaN(ndvi)
		s.NDVI, s.EVI, s.BSI = orZero(ndvi), orZero(evi), orZero(bsi)
		s.Brightness = orZero(NaNMean(swir))
	case blk.Count() == 1:
		ndvi := NaNMean(blk.Band(0))
		s.NDVIDefined = !math.IsNaN(ndvi)
		s.NDVI = orZero(ndvi)
		s.Brightness = s.NDVI
	}

	if blk.Count() >= bands.NDWIMinBands {
		green, nir := blk.Band(bands.NDWIGreen), blk.Band(bands.NDWINIR)
		ndwi := NaNMean(ratio(n, func(i int) (float64, float64) {
			return green[i] - nir[i], green[i] + nir[i]
		}))
		s.NDWIDefined = !math.IsNaN(ndwi)
		s.NDWI = orZero(ndwi)
	}

	return s
}
