// SPDX-License-Identifier: EPL-2.0

package align

import "errors"

var (
	ErrNoCRS         = errors.New("raster has no CRS")
	ErrEmptyBounds   = errors.New("empty bounds")
	ErrNotInvertible = errors.New("layer transform is not invertible")
)
