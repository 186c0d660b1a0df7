// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/metrics"
	"github.com/ik5/geosonify/site"
)

// Status is the end state of one transect.
type Status string

const (
	// StatusOK means the track was rendered and normalized.
	StatusOK Status = metrics.TransectOK
	// StatusDegraded means a failure after the grid was built replaced
	// the track with silence.
	StatusDegraded Status = metrics.TransectDegraded
	// StatusSkipped means the grid could not be built; empty outputs were
	// written.
	StatusSkipped Status = metrics.TransectSkipped
)

// Outcome reports what happened to one transect.
type Outcome struct {
	Site     string        `json:"site"`
	Category site.Category `json:"category"`
	Status   Status        `json:"status"`
	Kind     errs.Kind     `json:"error_kind"`
	Reason   string        `json:"reason,omitempty"`

	Cells         int      `json:"cells"`
	ValidCells    int      `json:"valid_cells"`
	InvalidCells  int      `json:"invalid_cells"`
	MissingLayers []string `json:"missing_layers,omitempty"`

	DurationMs float64 `json:"duration_ms"`
	Peak       float64 `json:"peak"`
	Factor     float64 `json:"gain_factor"`

	Audio    string `json:"audio,omitempty"`
	Geometry string `json:"geometry,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`

	// Err is the failure behind a degraded or skipped outcome.
	Err error `json:"-"`
}

// fail records err as the reason for status.
func (o *Outcome) fail(status Status, err error) {
	o.Status = status
	o.Kind = errs.KindOf(err)
	o.Reason = err.Error()
	o.Err = err
}

// Report is the result of one batch run.
type Report struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Outcomes []Outcome `json:"outcomes"`
}

// Count returns the number of outcomes with status s.
func (r Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// ReportFile is the name of the batch report inside the output directory.
const ReportFile = "outcomes.json"

// WriteReport writes r as indented JSON to path.
func WriteReport(path string, r Report) error {
	const op = "pipeline.report"

	b, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return errs.E(errs.IO, op, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errs.E(errs.IO, op, err)
	}
	if err := os.WriteFile(path, append(b, '\n'), 0o644); err != nil {
		return errs.E(errs.IO, op, err)
	}

	return nil
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (Report, error) {
	const op = "pipeline.report"

	b, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Report{}, errs.E(errs.IO, op, err)
	}

	var r Report
	if err := json.Unmarshal(b, &r); err != nil {
		return Report{}, errs.E(errs.IO, op, err)
	}
	return r, nil
}
