// SPDX-License-Identifier: EPL-2.0

// Package mix combines a cell's synthesized layers into one 16-bit
// segment: per-layer gains, flow-direction panning and anomaly overlays.
package mix

import (
	"github.com/cwbudde/algo-dsp/dsp/core"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/feature"
	"github.com/ik5/geosonify/site"
	"github.com/ik5/geosonify/synth"
	"github.com/ik5/geosonify/utils"
)

// Mixer holds the gain tables and overlay attenuations.
type Mixer struct {
	cfg config.Mix
}

func New(cfg config.Mix) *Mixer {
	return &Mixer{cfg: cfg}
}

// Water reports whether f selects the water gain table.
func (m *Mixer) Water(f feature.Features) bool {
	return f.NDWIDefined && f.NDWI > m.cfg.WaterThreshold
}

// Gains returns the linear gain of every layer for f.
func (m *Mixer) Gains(f feature.Features) [synth.NumLayers]float64 {
	g := m.cfg.Default
	if m.Water(f) {
		g = m.cfg.Water
	}

	var lin [synth.NumLayers]float64
	lin[synth.Topography] = core.DBToLinear(g.Topography)
	lin[synth.Percussion] = core.DBToLinear(g.Percussion)
	lin[synth.Texture] = core.DBToLinear(g.Texture)
	lin[synth.Melody] = core.DBToLinear(g.Melody)
	lin[synth.Hydro] = core.DBToLinear(g.Hydro)

	return lin
}

// Sum weights and sums the layers, then clips and quantizes. All layers
// must have the same length.
func (m *Mixer) Sum(l synth.Layers, f feature.Features) []int16 {
	gains := m.Gains(f)

	n := len(l[synth.Topography])
	acc := make([]float64, n)
	for layer, x := range l {
		g := gains[layer]
		for i := 0; i < n && i < len(x); i++ {
			acc[i] += x[i] * g
		}
	}

	return synth.Quantize(acc)
}

// Mix sums the layers and pans the result by the cell's flow direction.
func (m *Mixer) Mix(l synth.Layers, f feature.Features) []int16 {
	return PanFold(m.Sum(l, f), PanFor(f.FlowDir))
}

// OverlayGain is the attenuation in dB applied under a category's
// overlay. ok is false for categories without one.
func (m *Mixer) OverlayGain(cat site.Category) (db float64, ok bool) {
	switch cat {
	case site.Archaeological:
		return m.cfg.ArchaeologicalOverlay, true
	case site.Jungle:
		return m.cfg.JungleOverlay, true
	}
	return 0, false
}

// Apply overlays over onto base for the given category. Categories
// without a treatment, or a nil overlay, return base unchanged.
func (m *Mixer) Apply(base, over []int16, cat site.Category) []int16 {
	db, ok := m.OverlayGain(cat)
	if !ok || over == nil {
		return base
	}
	return Overlay(base, over, db)
}

// Overlay attenuates base by gainDB for the span covered by over and adds
// over with saturation. The result has base's length.
func Overlay(base, over []int16, gainDB float64) []int16 {
	out := make([]int16, len(base))
	copy(out, base)

	g := core.DBToLinear(gainDB)
	for i := 0; i < len(out) && i < len(over); i++ {
		out[i] = utils.SaturatingAdd16(utils.ScaleInt16(out[i], g), over[i])
	}
	return out
}
