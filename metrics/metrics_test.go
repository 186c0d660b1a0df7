// SPDX-License-Identifier: EPL-2.0

package metrics_test

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/geosonify/metrics"
)

func TestCollectors(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c, err := metrics.New(reg)
	require.NoError(t, err)
	require.NotNil(t, c)

	c.Cell(metrics.CellValid)
	c.Cell(metrics.CellValid)
	c.Cell(metrics.CellInvalid)
	c.Transect(metrics.TransectDegraded)
	c.AlignmentMiss("hydro_dem")
	c.ObserveCellRender(20 * time.Millisecond)
	c.ObserveTransect(3 * time.Second)

	expected := `
# HELP geosonify_cells_total Grid cells rendered, by outcome.
# TYPE geosonify_cells_total counter
geosonify_cells_total{outcome="invalid"} 1
geosonify_cells_total{outcome="valid"} 2
# HELP geosonify_transects_total Transects processed, by final status.
# TYPE geosonify_transects_total counter
geosonify_transects_total{status="degraded"} 1
# HELP geosonify_alignment_misses_total Cells for which an auxiliary layer could not be aligned.
# TYPE geosonify_alignment_misses_total counter
geosonify_alignment_misses_total{layer="hydro_dem"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"geosonify_cells_total", "geosonify_transects_total", "geosonify_alignment_misses_total"))

	n, err := testutil.GatherAndCount(reg, "geosonify_cell_render_seconds", "geosonify_transect_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNewTwice(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_, err := metrics.New(reg)
	require.NoError(t, err)

	_, err = metrics.New(reg)
	assert.Error(t, err)
}

func TestNilCollectors(t *testing.T) {
	t.Parallel()

	c, err := metrics.New(nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	assert.NotPanics(t, func() {
		c.Cell(metrics.CellValid)
		c.Transect(metrics.TransectOK)
		c.AlignmentMiss("sat_dry")
		c.ObserveCellRender(time.Millisecond)
		c.ObserveTransect(time.Second)
	})
}
