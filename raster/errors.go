// SPDX-License-Identifier: EPL-2.0

package raster

import "errors"

var (
	ErrNotTIFF        = errors.New("not a TIFF file")
	ErrBigTIFF        = errors.New("BigTIFF is not supported")
	ErrTruncated      = errors.New("truncated TIFF data")
	ErrMissingTag     = errors.New("missing required TIFF tag")
	ErrUnsupported    = errors.New("unsupported TIFF layout")
	ErrUnknownCRS     = errors.New("unknown CRS")
	ErrNoTiles        = errors.New("no tiles to mosaic")
	ErrCRSMismatch    = errors.New("tiles do not share a CRS")
	ErrCellBelowPixel = errors.New("cell size is smaller than one pixel")
	ErrNonNorthUp     = errors.New("rotated rasters are not supported")
)
