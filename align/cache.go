// SPDX-License-Identifier: EPL-2.0

package align

import (
	"fmt"
	"sync"

	"github.com/ctessum/geom/proj"

	"github.com/ik5/geosonify/raster"
)

type pair struct {
	src, dst string
}

type cached struct {
	t   proj.Transformer
	err error
}

// TransformerCache memoizes coordinate transformers by (source, target)
// CRS. It is safe for concurrent use and holds no per-cell state, so one
// cache can serve every transect of a batch.
type TransformerCache struct {
	mu sync.RWMutex
	m  map[pair]cached
}

func NewTransformerCache() *TransformerCache {
	return &TransformerCache{m: make(map[pair]cached)}
}

// Transformer returns the transformer from src to dst. Identical CRS
// strings yield the identity. Failures are memoized as well.
func (c *TransformerCache) Transformer(src, dst string) (proj.Transformer, error) {
	key := pair{src: src, dst: dst}

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return e.t, e.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.m[key]; ok {
		return e.t, e.err
	}
	t, err := newTransformer(src, dst)
	c.m[key] = cached{t: t, err: err}

	return t, err
}

// Len is the number of memoized pairs.
func (c *TransformerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

func identity(x, y float64) (float64, float64, error) {
	return x, y, nil
}

func newTransformer(src, dst string) (proj.Transformer, error) {
	if src == "" || dst == "" {
		return nil, ErrNoCRS
	}
	if src == dst {
		return identity, nil
	}

	srcDef, err := raster.ProjDef(src)
	if err != nil {
		return nil, err
	}
	dstDef, err := raster.ProjDef(dst)
	if err != nil {
		return nil, err
	}
	if srcDef == dstDef {
		return identity, nil
	}

	srcSR, err := proj.Parse(srcDef)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}
	dstSR, err := proj.Parse(dstDef)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", dst, err)
	}

	t, err := srcSR.NewTransform(dstSR)
	if err != nil {
		return nil, fmt.Errorf("%s -> %s: %w", src, dst, err)
	}

	return t, nil
}
