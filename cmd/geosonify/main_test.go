// SPDX-License-Identifier: EPL-2.0

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/geosonify/internal/rastertest"
	"github.com/ik5/geosonify/pipeline"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	o, err := parseFlags([]string{"-site", "A", "-site", "B, C", "-metrics-addr", ":0", "-out", "/tmp/x"})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, o.sites)
	assert.Equal(t, ":0", o.metricsAddr)
	assert.Equal(t, "/tmp/x", o.outputDir)

	_, err = parseFlags([]string{"stray"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dtm := rastertest.WriteFile(t, dir, "dtm.tif", rastertest.Image{
		Width: 10, Height: 10,
		Bands:     rastertest.Fill(10, 10, func(r, c int) float64 { return float64(r + c) }),
		OriginX:   500000,
		OriginY:   8900000,
		PixelSize: 10,
		EPSG:      32719,
	})

	cfgPath := filepath.Join(dir, "sonify.yaml")
	require.NoError(t, os.WriteFile(cfgPath, fmt.Appendf(nil, `
audio:
  sample_rate: 4000
  cell_duration_s: 0.1
default_sites: false
sites:
  - id: CLI_TEST
    category: jungle
    files:
      dtm: [%q]
`, dtm), 0o644))

	out := filepath.Join(dir, "out")
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", cfgPath, "-out", out, "-log-level", "error"}, &stdout, &stderr)
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "CLI_TEST")
	assert.Contains(t, stdout.String(), "1 ok, 0 degraded, 0 skipped")
	assert.FileExists(t, filepath.Join(out, "CLI_TEST", "CLI_TEST_full_sonification_Jungle.wav"))
	assert.FileExists(t, filepath.Join(out, pipeline.ReportFile))
}

func TestRunBadConfig(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &stdout, &stderr)
	assert.Error(t, err)
	assert.Empty(t, stdout.String())
}
