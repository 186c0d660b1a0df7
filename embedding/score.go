// SPDX-License-Identifier: EPL-2.0

package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/ik5/geosonify/site"
	"github.com/ik5/geosonify/track"
)

// Scorer rates each embedding window. A flagged window is anomalous; lower
// scores are more anomalous.
type Scorer interface {
	Score(ctx context.Context, emb [][]float64) (scores []float64, flags []bool, err error)
}

// CellScore is the per-cell result keyed by the geometry record index.
type CellScore struct {
	CellID int `json:"cell_id"`
	track.Geometry
	Anomalous bool    `json:"is_anomalous_flag"`
	MeanScore float64 `json:"mean_anomaly_score"`
}

// ScoreCells folds window scores into cells. A cell is anomalous when any
// of its windows is flagged.
func ScoreCells(gs []track.Geometry, ranges []Range, scores []float64, flags []bool) []CellScore {
	out := make([]CellScore, len(gs))
	for i, g := range gs {
		r := ranges[i]
		out[i] = CellScore{
			CellID:    i,
			Geometry:  g,
			Anomalous: r.Len() > 0 && slices.Contains(flags[r.Start:r.End], true),
			MeanScore: meanScore(scores, r),
		}
	}
	return out
}

// Score runs s over emb and scores every cell of gs.
func (w Windowing) Score(ctx context.Context, s Scorer, gs []track.Geometry, emb [][]float64) ([]CellScore, error) {
	scores, flags, err := s.Score(ctx, emb)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	if len(scores) != len(emb) || len(flags) != len(emb) {
		return nil, fmt.Errorf("score: %d scores and %d flags for %d embeddings: %w",
			len(scores), len(flags), len(emb), ErrScoreLength)
	}

	return ScoreCells(gs, w.Assign(gs, len(emb)), scores, flags), nil
}

// FlaggedCells converts anomalous cells back to grid coordinates of a
// grid with cols columns.
func FlaggedCells(siteID string, cells []CellScore, cols int) *site.CellSet {
	set := site.NewCellSet()
	for _, c := range cells {
		if c.Anomalous {
			set.Add(siteID, c.CellID/cols, c.CellID%cols)
		}
	}
	return set
}

// WriteCellScores writes cells as an indented JSON array.
func WriteCellScores(w io.Writer, cells []CellScore) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(cells); err != nil {
		return fmt.Errorf("encode cell scores: %w", err)
	}
	return nil
}

// ReadCellScores decodes scores written by WriteCellScores.
func ReadCellScores(r io.Reader) ([]CellScore, error) {
	var cells []CellScore
	if err := json.NewDecoder(r).Decode(&cells); err != nil {
		return nil, fmt.Errorf("decode cell scores: %w", err)
	}
	return cells, nil
}
