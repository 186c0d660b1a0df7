// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"log/slog"
	"time"

	"github.com/ik5/geosonify/align"
	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/metrics"
	"github.com/ik5/geosonify/raster"
	"github.com/ik5/geosonify/site"
	"github.com/ik5/geosonify/synth"
)

// segment is one rendered cell waiting for ordered assembly.
type segment struct {
	cell    raster.GridCell
	samples []int16
	valid   bool
	overlay bool
	// err is set when the cell could not be rendered for a reason other
	// than invalid data.
	err error
}

// cellRenderer holds everything one transect's cells share. It is safe
// for concurrent use.
type cellRenderer struct {
	proc    *Processor
	site    site.Site
	grid    *raster.MasterGrid
	aligner *align.Aligner
	layers  layers
	logger  *slog.Logger
}

// extract aligns one auxiliary layer. Alignment failures are logged,
// counted and treated as an absent layer.
func (r *cellRenderer) extract(c raster.GridCell, name string, layer *raster.Raster) raster.Block {
	blk, err := r.aligner.Extract(c.Bounds, layer)
	if err != nil {
		r.logger.Debug("layer absent for cell", "layer", name, "row", c.Row, "col", c.Col, "error", err)
		r.proc.metrics.AlignmentMiss(name)
	}
	return blk
}

// render produces exactly CellSamples samples for c. An invalid cell is
// silent, as is a cell whose extraction failed; the latter carries the
// error.
func (r *cellRenderer) render(c raster.GridCell) segment {
	start := time.Now()
	defer func() { r.proc.metrics.ObserveCellRender(time.Since(start)) }()

	p := r.proc
	resX, _ := r.grid.Transform.Res()

	in := feature.Inputs{
		DTM:        r.grid.Read(c.Window),
		Resolution: resX,
		Satellite:  r.extract(c, LayerSatDry, r.layers.satDry),
		HydroDEM:   r.extract(c, LayerHydroDEM, r.layers.hydroDEM),
		FlowDir:    r.extract(c, LayerFlowDir, r.layers.flowDir),
		FlowAcc:    r.extract(c, LayerFlowAcc, r.layers.flowAcc),
	}

	f, err := p.extractor.Extract(in)
	if err != nil {
		silent := segment{cell: c, samples: make([]int16, p.synth.CellSamples())}
		if !errs.Is(err, errs.InvalidCell) {
			r.logger.Error("feature extraction failed", "row", c.Row, "col", c.Col, "kind", errs.KindOf(err), "error", err)
			silent.err = err
			return silent
		}
		r.logger.Debug("invalid cell", "row", c.Row, "col", c.Col, "error", err)
		p.metrics.Cell(metrics.CellInvalid)
		return silent
	}

	rng := synth.CellRand(r.site.ID, c.Row, c.Col, p.cfg.Audio.Seed)
	l, _ := p.synth.Render(f, rng)
	out := p.mixer.Mix(l, f)

	seg := segment{cell: c, valid: true}
	if r.site.Category.HasOverlay() && p.trigger.Triggered(r.site.ID, c.Row, c.Col) {
		out = p.mixer.Apply(out, p.synth.Overlay(r.site.Category, rng), r.site.Category)
		seg.overlay = true
	}
	seg.samples = out

	p.metrics.Cell(metrics.CellValid)
	return seg
}
