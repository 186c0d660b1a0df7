// SPDX-License-Identifier: EPL-2.0

// Package config builds the immutable run configuration: defaults, an
// optional YAML overlay, then validation. The resulting Config is passed by
// value to every component.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/site"
)

// Range is a closed interval used by the mapping curves.
type Range struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

type Audio struct {
	SampleRate     int     `yaml:"sample_rate"`
	CellDurationS  float64 `yaml:"cell_duration_s"`
	BlockSize      int     `yaml:"block_size"`
	Ceiling        float64 `yaml:"ceiling"`
	SilenceEpsilon float64 `yaml:"silence_epsilon"`
	Seed           uint64  `yaml:"seed"`
}

// CellSamples is the exact sample count of one rendered cell.
func (a Audio) CellSamples() int {
	return int(float64(a.SampleRate) * a.CellDurationS)
}

// CellDurationMs is the nominal cell duration in milliseconds.
func (a Audio) CellDurationMs() float64 {
	return a.CellDurationS * 1000
}

type Grid struct {
	CellSizeM float64 `yaml:"cell_size_m"`
}

// Mapping holds the feature-to-parameter curves. Each *Low/*High pair is
// the band used at pitch factor 0 (dense vegetation) and 1 (bare ground).
type Mapping struct {
	PitchLowMIDI   Range   `yaml:"pitch_low_midi"`
	PitchHighMIDI  Range   `yaml:"pitch_high_midi"`
	FilterLowHz    Range   `yaml:"filter_low_hz"`
	FilterHighHz   Range   `yaml:"filter_high_hz"`
	HydroLowHz     Range   `yaml:"hydro_low_hz"`
	HydroHighHz    Range   `yaml:"hydro_high_hz"`
	MajorScale     []int   `yaml:"major_scale"`
	MinorScale     []int   `yaml:"minor_scale"`
	NDVIClip       Range   `yaml:"ndvi_clip"`
	ScaleThreshold float64 `yaml:"scale_threshold"`

	ElevationM Range   `yaml:"elevation_m"`
	SlopeDeg   Range   `yaml:"slope_deg"`
	PulseBPM   Range   `yaml:"pulse_bpm"`
	PulseAmp   Range   `yaml:"pulse_amp"`
	Roughness  Range   `yaml:"roughness"`
	ElevStdM   Range   `yaml:"elev_std_m"`
	LFODepth   Range   `yaml:"lfo_depth"`
	NoiseAmp   Range   `yaml:"noise_amp"`
	EVIDensity Range   `yaml:"evi_density"`
	ChordNDVI  Range   `yaml:"chord_ndvi"`
	ChordAmp   Range   `yaml:"chord_amp"`
	FlowMax    float64 `yaml:"flow_max"`
	HydroDEMM  Range   `yaml:"hydro_dem_m"`
	HydroAmp   float64 `yaml:"hydro_amp"`

	Overlay OverlayVoicing `yaml:"overlay"`
}

// OverlayVoicing shapes the anomaly overlays. Glissando ranges are MIDI
// notes swept from Lo to Hi over the cell. A noise cutoff at or above the
// Nyquist rate leaves the noise unfiltered.
type OverlayVoicing struct {
	ArchGlissMIDI   Range   `yaml:"arch_gliss_midi"`
	ArchGlissAmp    float64 `yaml:"arch_gliss_amp"`
	ArchNoiseAmp    float64 `yaml:"arch_noise_amp"`
	ArchNoiseHz     float64 `yaml:"arch_noise_cutoff_hz"`
	ArchSubHz       float64 `yaml:"arch_sub_hz"`
	ArchSubAmp      float64 `yaml:"arch_sub_amp"`
	PingMIDI        float64 `yaml:"ping_midi"`
	PingDurationS   float64 `yaml:"ping_duration_s"`
	PingAmp         float64 `yaml:"ping_amp"`
	JungleGlissMIDI Range   `yaml:"jungle_gliss_midi"`
	JungleGlissAmp  float64 `yaml:"jungle_gliss_amp"`
}

// Gains are per-layer gains in dB.
type Gains struct {
	Topography float64 `yaml:"topography"`
	Percussion float64 `yaml:"percussion"`
	Texture    float64 `yaml:"texture"`
	Melody     float64 `yaml:"melody"`
	Hydro      float64 `yaml:"hydro"`
}

type Mix struct {
	Default               Gains   `yaml:"default"`
	Water                 Gains   `yaml:"water"`
	WaterThreshold        float64 `yaml:"water_threshold"`
	ArchaeologicalOverlay float64 `yaml:"archaeological_overlay_db"`
	JungleOverlay         float64 `yaml:"jungle_overlay_db"`
}

// Bands are zero-based band indices into the multi-band satellite raster.
type Bands struct {
	Blue         int `yaml:"blue"`
	Green        int `yaml:"green"`
	Red          int `yaml:"red"`
	NIR          int `yaml:"nir"`
	SWIR1        int `yaml:"swir1"`
	MinBands     int `yaml:"min_bands"`
	NDWIGreen    int `yaml:"ndwi_green"`
	NDWINIR      int `yaml:"ndwi_nir"`
	NDWIMinBands int `yaml:"ndwi_min_bands"`
}

type Embedding struct {
	SampleRate int     `yaml:"sample_rate"`
	FrameS     float64 `yaml:"frame_s"`
	HopS       float64 `yaml:"hop_s"`
}

type Run struct {
	OutputDir       string `yaml:"output_dir"`
	TransectWorkers int    `yaml:"transect_workers"`
	CellWorkers     int    `yaml:"cell_workers"`
	KeepTemp        bool   `yaml:"keep_temp"`
}

// SiteEntry overlays one site. Fields left empty keep the built-in value
// when the id matches a default site.
type SiteEntry struct {
	ID       string         `yaml:"id"`
	Category *site.Category `yaml:"category"`
	Files    site.Files     `yaml:"files"`
	Regions  []site.Region  `yaml:"regions"`
}

type Config struct {
	Audio     Audio     `yaml:"audio"`
	Grid      Grid      `yaml:"grid"`
	Mapping   Mapping   `yaml:"mapping"`
	Mix       Mix       `yaml:"mix"`
	Bands     Bands     `yaml:"bands"`
	Embedding Embedding `yaml:"embedding"`
	Run       Run       `yaml:"run"`

	DefaultSites bool        `yaml:"default_sites"`
	Sites        []SiteEntry `yaml:"sites"`
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	const op = "config.load"

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return Config{}, errs.E(errs.Configuration, op, err)
	}
	defer f.Close()

	return Parse(f)
}

// Parse decodes YAML from r over the defaults. Unknown keys are rejected.
func Parse(r io.Reader) (Config, error) {
	const op = "config.parse"

	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errs.E(errs.Configuration, op, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks ranges and sizes.
func (c Config) Validate() error {
	const op = "config.validate"

	var problems []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Errorf(format, args...))
		}
	}

	check(c.Audio.SampleRate > 0, "audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	check(c.Audio.CellDurationS > 0, "audio.cell_duration_s must be positive, got %v", c.Audio.CellDurationS)
	check(c.Audio.BlockSize > 0, "audio.block_size must be positive, got %d", c.Audio.BlockSize)
	check(c.Audio.Ceiling > 0 && c.Audio.Ceiling <= 1, "audio.ceiling must be in (0, 1], got %v", c.Audio.Ceiling)
	check(c.Audio.SilenceEpsilon >= 0, "audio.silence_epsilon must not be negative")
	check(c.Grid.CellSizeM > 0, "grid.cell_size_m must be positive, got %v", c.Grid.CellSizeM)
	check(len(c.Mapping.MajorScale) > 0, "mapping.major_scale is empty")
	check(len(c.Mapping.MinorScale) > 0, "mapping.minor_scale is empty")
	check(c.Mapping.FlowMax > 0, "mapping.flow_max must be positive")
	ov := c.Mapping.Overlay
	check(ov.ArchNoiseHz >= 0, "mapping.overlay.arch_noise_cutoff_hz must not be negative")
	check(ov.ArchSubHz > 0, "mapping.overlay.arch_sub_hz must be positive")
	check(ov.PingDurationS > 0, "mapping.overlay.ping_duration_s must be positive")
	for _, a := range []float64{ov.ArchGlissAmp, ov.ArchNoiseAmp, ov.ArchSubAmp, ov.PingAmp, ov.JungleGlissAmp} {
		check(a >= 0 && a <= 1, "mapping.overlay amplitude %v outside [0, 1]", a)
	}
	check(c.Embedding.FrameS > 0 && c.Embedding.HopS > 0, "embedding frame_s and hop_s must be positive")
	check(c.Embedding.SampleRate > 0, "embedding.sample_rate must be positive")
	check(c.Run.TransectWorkers > 0, "run.transect_workers must be positive")
	check(c.Run.CellWorkers > 0, "run.cell_workers must be positive")
	check(c.Run.OutputDir != "", "run.output_dir is empty")

	for _, idx := range []int{c.Bands.Blue, c.Bands.Green, c.Bands.Red, c.Bands.NIR, c.Bands.SWIR1} {
		check(idx >= 0 && idx < c.Bands.MinBands, "band index %d outside min_bands %d", idx, c.Bands.MinBands)
	}
	for _, idx := range []int{c.Bands.NDWIGreen, c.Bands.NDWINIR} {
		check(idx >= 0 && idx < c.Bands.NDWIMinBands, "ndwi band index %d outside ndwi_min_bands %d", idx, c.Bands.NDWIMinBands)
	}

	if len(problems) > 0 {
		return errs.E(errs.Configuration, op, errors.Join(problems...))
	}

	return nil
}

// Registry builds the site registry: the built-in sites (when enabled)
// overlaid by the configured entries, then any new ids in file order.
func (c Config) Registry() (*site.Registry, error) {
	const op = "config.registry"

	var sites []site.Site
	index := make(map[string]int)

	if c.DefaultSites {
		for _, s := range site.Defaults() {
			index[s.ID] = len(sites)
			sites = append(sites, s)
		}
	}

	for _, e := range c.Sites {
		i, ok := index[e.ID]
		if !ok {
			index[e.ID] = len(sites)
			sites = append(sites, site.Site{ID: e.ID})
			i = len(sites) - 1
		}

		s := &sites[i]
		if e.Category != nil {
			s.Category = *e.Category
		}
		if e.Regions != nil {
			s.Regions = e.Regions
		}
		s.Files = e.Files
	}

	reg, err := site.NewRegistry(sites...)
	if err != nil {
		return nil, errs.E(errs.Configuration, op, err)
	}

	return reg, nil
}
