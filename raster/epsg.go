// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	projWGS84   = "+proj=longlat +datum=WGS84 +no_defs"
	projSIRGAS  = "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs"
	projWebMerc = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"
)

// ProjDef resolves a CRS identifier to a proj4 definition. Proj4 strings
// pass through unchanged; EPSG codes are looked up in a table covering
// WGS84, SIRGAS 2000, Web Mercator and the UTM zones of both datums.
func ProjDef(crs string) (string, error) {
	crs = strings.TrimSpace(crs)
	if strings.HasPrefix(crs, "+") {
		return crs, nil
	}

	code, ok := strings.CutPrefix(strings.ToUpper(crs), "EPSG:")
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCRS, crs)
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCRS, crs)
	}

	switch {
	case n == 4326:
		return projWGS84, nil
	case n == 4674:
		return projSIRGAS, nil
	case n == 3857 || n == 900913:
		return projWebMerc, nil
	case n >= 32601 && n <= 32660:
		return fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", n-32600), nil
	case n >= 32701 && n <= 32760:
		return fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", n-32700), nil
	case n >= 31965 && n <= 31976:
		return fmt.Sprintf("+proj=utm +zone=%d +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", n-31965+11), nil
	case n >= 31977 && n <= 31985:
		return fmt.Sprintf("+proj=utm +zone=%d +south +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", n-31977+17), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownCRS, crs)
}
