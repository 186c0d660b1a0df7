// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"log/slog"

	"github.com/ik5/geosonify/raster"
	"github.com/ik5/geosonify/site"
)

// Auxiliary layer names, used in logs, metrics and outcome reports.
const (
	LayerSatDry   = "sat_dry"
	LayerSatWet   = "sat_wet"
	LayerHydroDEM = "hydro_dem"
	LayerFlowDir  = "hydro_flow_dir"
	LayerFlowAcc  = "hydro_flow_acc"
)

// layers are the optional rasters of one transect. A nil field is an
// absent layer.
type layers struct {
	satDry   *raster.Raster
	satWet   *raster.Raster
	hydroDEM *raster.Raster
	flowDir  *raster.Raster
	flowAcc  *raster.Raster
}

// loadLayers opens every configured auxiliary layer. Failures are logged
// and leave the layer absent; the names of absent layers are returned.
func loadLayers(files site.Files, logger *slog.Logger) (layers, []string) {
	var (
		l       layers
		missing []string
	)

	load := func(name, path string, dst **raster.Raster) {
		if path == "" {
			missing = append(missing, name)
			return
		}
		r, err := raster.Open(path)
		if err != nil {
			logger.Warn("layer unavailable", "layer", name, "path", path, "error", err)
			missing = append(missing, name)
			return
		}
		*dst = r
	}

	load(LayerSatDry, files.SatDry, &l.satDry)
	load(LayerSatWet, files.SatWet, &l.satWet)
	load(LayerHydroDEM, files.HydroDEM, &l.hydroDEM)
	load(LayerFlowDir, files.HydroFlowDir, &l.flowDir)
	load(LayerFlowAcc, files.HydroFlowAcc, &l.flowAcc)

	return l, missing
}
