// SPDX-License-Identifier: EPL-2.0

package track

import (
	"path/filepath"

	"github.com/ik5/geosonify/site"
)

// Paths are the per-transect output files.
type Paths struct {
	Dir      string
	Audio    string
	Geometry string
}

// OutputPaths lays out <dir>/<site>/<site>_full_sonification<suffix>.wav
// and <dir>/<site>/<site>_geospatial_metadata.json.
func OutputPaths(outDir, siteID string, cat site.Category) Paths {
	dir := filepath.Join(outDir, siteID)
	return Paths{
		Dir:      dir,
		Audio:    filepath.Join(dir, siteID+"_full_sonification"+cat.Suffix()+".wav"),
		Geometry: filepath.Join(dir, siteID+"_geospatial_metadata.json"),
	}
}
