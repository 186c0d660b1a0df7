// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"hash/fnv"
	"math/rand/v2"
)

// CellRand returns the generator for one cell. The stream depends only on
// the site, the cell position and the configured seed, so a cell renders
// the same bytes regardless of scheduling.
func CellRand(siteID string, row, col int, seed uint64) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(siteID))

	return rand.New(rand.NewPCG(h.Sum64()^seed, uint64(uint32(row))<<32|uint64(uint32(col))))
}

// jitter returns 1 + (u-0.5)*width for a uniform u in [0, 1).
func jitter(rng *rand.Rand, width float64) float64 {
	return 1 + (rng.Float64()-0.5)*width
}
