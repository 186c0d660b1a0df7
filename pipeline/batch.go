// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/site"
)

// ErrUnknownSite is reported for requested ids missing from the registry.
var ErrUnknownSite = errors.New("unknown site")

// Run processes the sites named by ids, or every registered site when ids
// is empty, with up to TransectWorkers transects in flight. Outcomes keep
// the order of ids. The report is written to the output directory; only
// that write can fail the batch.
func (p *Processor) Run(ctx context.Context, ids []string) (Report, error) {
	const op = "pipeline.batch"

	if len(ids) == 0 {
		ids = p.reg.IDs()
	}

	rep := Report{
		RunID:    uuid.New().String(),
		Started:  time.Now().UTC(),
		Outcomes: make([]Outcome, len(ids)),
	}
	logger := p.logger.With("run_id", rep.RunID)
	logger.Info("batch started", "transects", len(ids), "workers", p.cfg.Run.TransectWorkers)

	var g errgroup.Group
	g.SetLimit(p.cfg.Run.TransectWorkers)
	for i, id := range ids {
		g.Go(func() error {
			s, ok := p.reg.Lookup(id)
			if !ok {
				err := errs.WithSite(id, errs.E(errs.Configuration, op, fmt.Errorf("%w: %q", ErrUnknownSite, id)))
				logger.Error("transect skipped", "site", id, "error", err)
				o := Outcome{Site: id}
				o.fail(StatusSkipped, err)
				p.metrics.Transect(string(o.Status))
				rep.Outcomes[i] = o
				return nil
			}
			rep.Outcomes[i] = p.Process(ctx, s)
			return nil
		})
	}
	_ = g.Wait()

	rep.Finished = time.Now().UTC()
	logger.Info("batch finished",
		"ok", rep.Count(StatusOK),
		"degraded", rep.Count(StatusDegraded),
		"skipped", rep.Count(StatusSkipped),
		"elapsed", rep.Finished.Sub(rep.Started),
	)

	if err := WriteReport(filepath.Join(p.cfg.Run.OutputDir, ReportFile), rep); err != nil {
		return rep, err
	}

	return rep, nil
}

// Batch builds a Processor for cfg and reg and runs it over ids.
func Batch(ctx context.Context, cfg config.Config, reg *site.Registry, ids []string, opts ...Option) (Report, error) {
	return New(cfg, reg, opts...).Run(ctx, ids)
}
