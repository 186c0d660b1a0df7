// SPDX-License-Identifier: EPL-2.0

// Package feature reduces the aligned raster windows of one grid cell to
// the scalar statistics that drive synthesis.
package feature

import (
	"errors"
	"math"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/raster"
)

var (
	ErrNoElevation = errors.New("elevation window empty or all no-data")
	ErrNoNDVI      = errors.New("vegetation index undefined")
	ErrNoFlowAcc   = errors.New("flow accumulation window empty or all no-data")
)

// Inputs are the windows of one cell. Any auxiliary block may be empty.
type Inputs struct {
	DTM        raster.Block
	Resolution float64 // master pixel size in CRS units

	Satellite raster.Block
	HydroDEM  raster.Block
	FlowDir   raster.Block
	FlowAcc   raster.Block
}

// Features are the per-cell statistics. Every value falls back to 0 when
// its source window is empty.
type Features struct {
	ElevationMean float64
	ElevationStd  float64
	Slope         float64 // degrees
	Roughness     float64

	Spectral

	FlowAccMean  float64
	HydroDEMMean float64
	FlowDir      int // modal D8 code, 0 when absent

	Valid bool
}

// Extractor computes Features using a fixed band layout.
type Extractor struct {
	bands config.Bands
}

func NewExtractor(bands config.Bands) *Extractor {
	return &Extractor{bands: bands}
}

// Extract always returns usable Features. When the cell is invalid the
// error is errs.InvalidCell and names every failed requirement.
func (e *Extractor) Extract(in Inputs) (Features, error) {
	const op = "feature.extract"

	f := Features{
		Spectral: Indices(in.Satellite, e.bands),
	}

	var problems []error
	if in.DTM.Valid() {
		z := in.DTM.Band(0)
		f.ElevationMean = orZero(NaNMean(z))
		f.ElevationStd = orZero(NaNStd(z))
		f.Slope = Slope(z, in.DTM.Width, in.DTM.Height, in.Resolution)
		f.Roughness = Roughness(z, in.DTM.Width, in.DTM.Height)
	} else {
		problems = append(problems, ErrNoElevation)
	}
	if !f.NDVIDefined {
		problems = append(problems, ErrNoNDVI)
	}
	if in.FlowAcc.Valid() {
		f.FlowAccMean = orZero(NaNMean(in.FlowAcc.Band(0)))
	} else {
		problems = append(problems, ErrNoFlowAcc)
	}

	if !in.HydroDEM.Empty() {
		f.HydroDEMMean = orZero(NaNMean(in.HydroDEM.Band(0)))
	}
	if !in.FlowDir.Empty() {
		f.FlowDir = ModalFlowDir(in.FlowDir.Band(0))
	}

	if len(problems) > 0 {
		return f, errs.E(errs.InvalidCell, op, errors.Join(problems...))
	}
	f.Valid = true

	return f, nil
}

// LogFlow is log1p of the mean flow accumulation, clamped at 0.
func (f Features) LogFlow() float64 {
	return math.Log1p(math.Max(0, f.FlowAccMean))
}
