// SPDX-License-Identifier: EPL-2.0

// Package raster loads georeferenced rasters and builds the master grid.
//
// GeoTIFF files are decoded in pure Go: strips or tiles, uncompressed,
// LZW or Deflate, integer or floating point samples. No-data pixels become
// NaN at load time so later statistics can skip them.
//
// Elevation tiles of one series are merged by Mosaic into a single raster
// that defines the master grid:
//
//	dtm, err := raster.Mosaic(paths)
//	if err != nil {
//	    return err // errs.MissingInput, errs.IO or errs.Configuration
//	}
//	grid, err := raster.NewMasterGrid(dtm, 50)
//	for cell := range grid.Cells() {
//	    block := dtm.Read(cell.Window)
//	    ...
//	}
package raster
