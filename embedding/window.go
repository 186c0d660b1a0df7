// SPDX-License-Identifier: EPL-2.0

package embedding

import (
	"math"

	"github.com/ik5/geosonify/config"
	"github.com/ik5/geosonify/track"
)

// Range is a half-open interval [Start, End) of embedding indices.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (r Range) Len() int { return r.End - r.Start }

// Windowing describes the analysis windows of the embedding model.
type Windowing struct {
	FrameS float64
	HopS   float64
}

// NewWindowing takes the frame and hop from cfg.
func NewWindowing(cfg config.Embedding) Windowing {
	return Windowing{FrameS: cfg.FrameS, HopS: cfg.HopS}
}

// PerCell is the number of windows attributed to a cell of durS seconds,
// never negative.
func (w Windowing) PerCell(durS float64) int {
	return max(0, int(math.Floor((durS-w.FrameS)/w.HopS))+1)
}

// WindowsPerCell is PerCell for an explicit frame and hop.
func WindowsPerCell(durS, frameS, hopS float64) int {
	return Windowing{FrameS: frameS, HopS: hopS}.PerCell(durS)
}

// Assign walks the geometry in order and hands each cell the next PerCell
// windows. Ranges are clamped to n, so trailing cells of a short
// embedding sequence get empty ranges.
func (w Windowing) Assign(gs []track.Geometry, n int) []Range {
	out := make([]Range, len(gs))
	cur := 0
	for i, g := range gs {
		end := min(cur+w.PerCell(g.DurationMs()/1000), n)
		out[i] = Range{Start: cur, End: end}
		cur = end
	}
	return out
}

// TimeRange picks the windows overlapping [startMs, endMs] by assuming
// window i is centred at i*HopS + FrameS/2. The estimate is not exact at
// segment edges: a non-empty range is widened to at least one window, and
// a range starting past the last window is empty. totalMs of zero means
// there is no track.
func (w Windowing) TimeRange(startMs, endMs, totalMs float64, n int) Range {
	if n == 0 || totalMs == 0 {
		return Range{}
	}

	half := w.FrameS / 2
	start := max(0, int((startMs/1000-half)/w.HopS))
	end := min(n, int((endMs/1000-half)/w.HopS)+1)

	if start >= n {
		return Range{Start: n, End: n}
	}
	if end <= start {
		end = start + 1
	}

	return Range{Start: start, End: end}
}
