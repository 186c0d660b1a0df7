// SPDX-License-Identifier: EPL-2.0

// Package site holds the transect registry: which category a surveyed site
// belongs to, which raster files feed it, and which grid cells receive an
// anomaly overlay.
//
// Categories drive every category-dependent behaviour from one place:
//
//	reg, _ := site.NewRegistry(site.Defaults()...)
//	s, _ := reg.Lookup("BR_AC_10")
//	name := s.ID + "_full_sonification" + s.Category.Suffix() + ".wav"
//
// # Triggers
//
// A Trigger decides whether a cell carries an overlay. RegionTrigger reads
// the declarative row/column rectangles of each site, CellSet holds cells
// flagged by an external stage, and AnyTrigger combines several of them.
package site
