// SPDX-License-Identifier: EPL-2.0

package embedding

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregate averages the embeddings of each range. Empty ranges yield nil.
func Aggregate(ranges []Range, emb [][]float64) [][]float64 {
	out := make([][]float64, len(ranges))
	for i, r := range ranges {
		if r.Len() <= 0 {
			continue
		}
		mean := make([]float64, len(emb[r.Start]))
		for _, v := range emb[r.Start:r.End] {
			floats.Add(mean, v)
		}
		floats.Scale(1/float64(r.Len()), mean)
		out[i] = mean
	}
	return out
}

// Slice returns the embeddings of r.
func Slice(emb [][]float64, r Range) [][]float64 {
	if r.Len() <= 0 {
		return nil
	}
	return emb[r.Start:r.End]
}

// meanScore is the mean of scores in r, or 0 when r is empty.
func meanScore(scores []float64, r Range) float64 {
	if r.Len() <= 0 {
		return 0
	}
	return stat.Mean(scores[r.Start:r.End], nil)
}
