// SPDX-License-Identifier: EPL-2.0

// Package geosonify renders geospatial transects as audio.
//
// A transect is a set of co-registered rasters: elevation tiles, an
// optional multispectral image and optional hydrology layers. The
// elevation mosaic is cut into square cells; every cell is reduced to a
// handful of terrain, vegetation and water statistics, which drive a
// small procedural synthesizer. Cells are rendered in row-major order
// into one mono 16-bit track per transect, peak-normalized, and indexed
// by a JSON file mapping every cell's bounds to its time span.
//
// # Packages
//
//   - config: defaults, YAML overlay and validation
//   - site: transect registry, categories and overlay triggers
//   - raster, align: GeoTIFF decoding, mosaics, master grid, CRS alignment
//   - feature: per-cell statistics
//   - synth, mix: layer synthesis, gains, panning and overlays
//   - track: assembly, geometry index and normalization
//   - pipeline: transect processing and the parallel batch driver
//   - embedding: windowing helpers for downstream audio-embedding models
//   - audio, formats: decoding, resampling and mono folding of tracks
//   - metrics: Prometheus collectors
//
// # Quick Start
//
//	cfg, _ := config.Load("sonify.yaml")
//	reg, _ := cfg.Registry()
//	rep, _ := pipeline.Batch(ctx, cfg, reg, nil)
//	for _, o := range rep.Outcomes {
//		fmt.Println(o.Site, o.Status, o.DurationMs)
//	}
//
// The geosonify command wraps the same calls.
package geosonify
