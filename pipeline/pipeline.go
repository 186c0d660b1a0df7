// SPDX-License-Identifier: EPL-2.0

// Package pipeline turns transects into tracks.
//
// A Processor renders one transect: it mosaics the elevation tiles into the
// master grid, renders every cell, assembles the segments in row-major
// order into a raw track, normalizes it and writes the geometry index.
// Failures stay inside the transect: an unusable grid writes empty
// outputs, an IO or extraction failure writes a silent track of the
// accumulated duration. Batch runs many transects in parallel and reports
// an Outcome for each.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ik5/geosonify/align"
	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/metrics"
	"github.com/ik5/geosonify/mix"
	"github.com/ik5/geosonify/raster"
	"github.com/ik5/geosonify/site"
	"github.com/ik5/geosonify/synth"
	"github.com/ik5/geosonify/track"
)

// rawTrack is the un-normalized track inside the transect temp directory.
const rawTrack = "raw.wav"

// flushWindow is the number of cells rendered ahead per worker before the
// finished segments are flushed in order.
const flushWindow = 4

// Processor renders transects. It is safe for concurrent use; transects
// share only the transformer cache.
type Processor struct {
	cfg config.Config
	reg *site.Registry

	cache      *align.TransformerCache
	trigger    site.AnyTrigger
	extractor  Extractor
	synth      *synth.Synthesizer
	mixer      *mix.Mixer
	normalizer track.Normalizer

	metrics *metrics.Collectors
	logger  *slog.Logger
}

// Extractor computes the features of one cell. It must be safe for
// concurrent use. Errors of kind errs.InvalidCell silence the cell; any
// other error degrades the transect.
type Extractor interface {
	Extract(in feature.Inputs) (feature.Features, error)
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. A nil logger keeps slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records pipeline metrics on c.
func WithMetrics(c *metrics.Collectors) Option {
	return func(p *Processor) {
		p.metrics = c
	}
}

// WithTrigger adds t to the declared regions as an overlay trigger.
func WithTrigger(t site.Trigger) Option {
	return func(p *Processor) {
		if t != nil {
			p.trigger = append(p.trigger, t)
		}
	}
}

// WithExtractor replaces the band-threshold feature extractor.
func WithExtractor(e Extractor) Option {
	return func(p *Processor) {
		if e != nil {
			p.extractor = e
		}
	}
}

// WithTransformerCache shares c instead of a private cache.
func WithTransformerCache(c *align.TransformerCache) Option {
	return func(p *Processor) {
		if c != nil {
			p.cache = c
		}
	}
}

// New returns a Processor for the sites in reg. Overlays fire inside the
// sites' declared regions and wherever an added trigger fires.
func New(cfg config.Config, reg *site.Registry, opts ...Option) *Processor {
	p := &Processor{
		cfg:        cfg,
		reg:        reg,
		cache:      align.NewTransformerCache(),
		trigger:    site.AnyTrigger{site.NewRegionTrigger(reg)},
		extractor:  feature.NewExtractor(cfg.Bands),
		synth:      synth.New(cfg.Audio, cfg.Mapping),
		mixer:      mix.New(cfg.Mix),
		normalizer: track.NewNormalizer(cfg.Audio),
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	p.logger = p.logger.With("component", "pipeline")

	return p
}

// Process renders one transect and always returns its Outcome. Unless
// ctx is already done, the audio and geometry files exist afterwards.
func (p *Processor) Process(ctx context.Context, s site.Site) (out Outcome) {
	const op = "pipeline.process"

	start := time.Now()
	logger := p.logger.With("site", s.ID, "category", s.Category.String())
	paths := track.OutputPaths(p.cfg.Run.OutputDir, s.ID, s.Category)

	out = Outcome{
		Site:     s.ID,
		Category: s.Category,
		Status:   StatusOK,
		Audio:    paths.Audio,
		Geometry: paths.Geometry,
	}
	defer func() {
		out.Elapsed = time.Since(start)
		p.metrics.Transect(string(out.Status))
		p.metrics.ObserveTransect(out.Elapsed)
		logger.Info("transect finished",
			"status", out.Status,
			"cells", out.Cells,
			"invalid_cells", out.InvalidCells,
			"duration_ms", out.DurationMs,
			"elapsed", out.Elapsed,
		)
	}()

	if err := ctx.Err(); err != nil {
		out.fail(StatusSkipped, errs.WithSite(s.ID, err))
		out.Audio, out.Geometry = "", ""
		return out
	}

	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		logger.Error("cannot create output directory", "dir", paths.Dir, "error", err)
		out.fail(StatusSkipped, errs.WithSite(s.ID, errs.E(errs.IO, op, err)))
		out.Audio, out.Geometry = "", ""
		return out
	}

	grid, err := p.masterGrid(s)
	if err != nil {
		logger.Error("transect skipped", "kind", errs.KindOf(err), "error", err)
		out.fail(StatusSkipped, errs.WithSite(s.ID, err))
		p.writeEmpty(paths, logger)
		return out
	}

	lay, missing := loadLayers(s.Files, logger)
	out.MissingLayers = missing

	r := &cellRenderer{
		proc:    p,
		site:    s,
		grid:    grid,
		aligner: align.New(grid.CRS, p.cache, align.WithLogger(logger)),
		layers:  lay,
		logger:  logger,
	}

	logger.Info("rendering transect",
		"rows", grid.Rows(),
		"cols", grid.Cols(),
		"pixels_per_cell", grid.PixelsPerCell,
		"missing_layers", missing,
	)

	asm, raw, cleanup, err := p.openRaw(paths.Dir)
	defer cleanup()

	var (
		geometry []track.Geometry
		samples  int64
		failure  error
	)
	if err != nil {
		failure = err
		geometry, samples = p.silentIndex(grid, &out)
	} else {
		failure = p.renderCells(ctx, r, asm, &out)
		if err := asm.Close(); err != nil && failure == nil {
			failure = err
		}
		geometry, samples = asm.Geometry(), asm.Samples()
	}
	out.DurationMs = float64(samples) * 1000 / float64(p.cfg.Audio.SampleRate)

	if failure == nil {
		peak, factor, err := p.normalizer.Normalize(raw, paths.Audio)
		if err != nil {
			failure = err
		} else {
			out.Peak, out.Factor = peak, factor
			logger.Debug("normalized", "peak", peak, "factor", factor)
		}
	}

	if failure != nil {
		failure = errs.WithSite(s.ID, failure)
		logger.Error("writing silent track", "kind", errs.KindOf(failure), "samples", samples, "error", failure)
		out.fail(StatusDegraded, failure)
		if err := track.WriteSilence(paths.Audio, p.cfg.Audio.SampleRate, samples, p.cfg.Audio.BlockSize); err != nil {
			logger.Error("silent track failed", "path", paths.Audio, "error", err)
		}
	}

	if err := track.WriteGeometry(paths.Geometry, geometry); err != nil {
		logger.Error("geometry write failed", "path", paths.Geometry, "error", err)
		if out.Status == StatusOK {
			out.fail(StatusDegraded, errs.WithSite(s.ID, err))
		}
	}

	return out
}

// masterGrid mosaics the elevation tiles and cuts them into cells.
func (p *Processor) masterGrid(s site.Site) (*raster.MasterGrid, error) {
	dtm, err := raster.Mosaic(s.Files.DTM)
	if err != nil {
		return nil, err
	}
	return raster.NewMasterGrid(dtm, p.cfg.Grid.CellSizeM)
}

// openRaw creates the transect temp directory and the raw track in it.
// cleanup is always safe to call.
func (p *Processor) openRaw(dir string) (asm *track.Assembler, raw string, cleanup func(), err error) {
	const op = "pipeline.temp"

	cleanup = func() {}

	tmp, err := os.MkdirTemp(dir, ".tmp-*")
	if err != nil {
		return nil, "", cleanup, errs.E(errs.IO, op, err)
	}
	if !p.cfg.Run.KeepTemp {
		cleanup = func() {
			if err := os.RemoveAll(tmp); err != nil {
				p.logger.Warn("temp cleanup failed", "dir", tmp, "error", err)
			}
		}
	}

	raw = filepath.Join(tmp, rawTrack)
	asm, err = track.NewAssembler(raw, p.cfg.Audio.SampleRate)
	if err != nil {
		return nil, "", cleanup, err
	}

	return asm, raw, cleanup, nil
}

// renderCells renders the grid with up to CellWorkers goroutines and
// appends the segments to asm in traversal order. Write failures are kept
// by asm; only cancellation stops the loop early. A cell that failed for
// any reason other than being invalid still gets its silent segment, and
// the first such failure is returned once the grid is done.
func (p *Processor) renderCells(ctx context.Context, r *cellRenderer, asm *track.Assembler, out *Outcome) error {
	workers := p.cfg.Run.CellWorkers
	batch := make([]raster.GridCell, 0, workers*flushWindow)

	var failure error

	flush := func() error {
		segs := make([]segment, len(batch))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, c := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				segs[i] = r.render(c)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for _, s := range segs {
			out.Cells++
			switch {
			case s.err != nil:
				if failure == nil {
					failure = s.err
				}
			case s.valid:
				out.ValidCells++
			default:
				out.InvalidCells++
			}
			// Append keeps the geometry in step even after a failed write.
			_ = asm.Append(s.cell.Bounds, s.samples)
		}
		batch = batch[:0]

		return nil
	}

	for c := range r.grid.Cells() {
		batch = append(batch, c)
		if len(batch) == cap(batch) {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	if failure != nil {
		return failure
	}

	return asm.Err()
}

// silentIndex builds the geometry of a grid whose cells could not be
// written, one full cell duration each.
func (p *Processor) silentIndex(grid *raster.MasterGrid, out *Outcome) ([]track.Geometry, int64) {
	n := int64(p.cfg.Audio.CellSamples())
	ms := func(s int64) float64 { return float64(s) * 1000 / float64(p.cfg.Audio.SampleRate) }

	var (
		gs      []track.Geometry
		samples int64
	)
	for c := range grid.Cells() {
		gs = append(gs, track.NewGeometry(c.Bounds, ms(samples), ms(samples+n)))
		samples += n
		out.Cells++
		p.metrics.Cell(metrics.CellSkippedIO)
	}

	return gs, samples
}

// writeEmpty writes the zero-length track and empty geometry of a skipped
// transect.
func (p *Processor) writeEmpty(paths track.Paths, logger *slog.Logger) {
	if err := track.WriteSilence(paths.Audio, p.cfg.Audio.SampleRate, 0, p.cfg.Audio.BlockSize); err != nil {
		logger.Error("empty track failed", "path", paths.Audio, "error", err)
	}
	if err := track.WriteGeometry(paths.Geometry, nil); err != nil {
		logger.Error("empty geometry failed", "path", paths.Geometry, "error", err)
	}
}
