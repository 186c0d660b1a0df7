// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes Prometheus collectors for the sonification
// pipeline. A nil *Collectors is valid and records nothing.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "geosonify"

// Cell outcomes.
const (
	CellValid     = "valid"
	CellInvalid   = "invalid"
	CellSkippedIO = "skipped_io"
)

// Transect statuses.
const (
	TransectOK       = "ok"
	TransectDegraded = "degraded"
	TransectSkipped  = "skipped"
)

type Collectors struct {
	cells            *prometheus.CounterVec
	transects        *prometheus.CounterVec
	alignmentMisses  *prometheus.CounterVec
	cellRender       prometheus.Histogram
	transectDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg
// returns nil.
func New(reg prometheus.Registerer) (*Collectors, error) {
	if reg == nil {
		return nil, nil
	}

	c := &Collectors{
		cells: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cells_total",
			Help:      "Grid cells rendered, by outcome.",
		}, []string{"outcome"}),
		transects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transects_total",
			Help:      "Transects processed, by final status.",
		}, []string{"status"}),
		alignmentMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alignment_misses_total",
			Help:      "Cells for which an auxiliary layer could not be aligned.",
		}, []string{"layer"}),
		cellRender: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cell_render_seconds",
			Help:      "Time to extract, synthesize and mix one cell.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		transectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "transect_seconds",
			Help:      "Wall time to process one transect.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}

	for _, col := range []prometheus.Collector{c.cells, c.transects, c.alignmentMisses, c.cellRender, c.transectDuration} {
		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	return c, nil
}

func (c *Collectors) Cell(outcome string) {
	if c == nil {
		return
	}
	c.cells.WithLabelValues(outcome).Inc()
}

func (c *Collectors) Transect(status string) {
	if c == nil {
		return
	}
	c.transects.WithLabelValues(status).Inc()
}

func (c *Collectors) AlignmentMiss(layer string) {
	if c == nil {
		return
	}
	c.alignmentMisses.WithLabelValues(layer).Inc()
}

func (c *Collectors) ObserveCellRender(d time.Duration) {
	if c == nil {
		return
	}
	c.cellRender.Observe(d.Seconds())
}

func (c *Collectors) ObserveTransect(d time.Duration) {
	if c == nil {
		return
	}
	c.transectDuration.Observe(d.Seconds())
}
