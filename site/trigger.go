// SPDX-License-Identifier: EPL-2.0

package site

import "sync"

// Trigger reports whether the cell at (row, col) of a site gets an overlay.
// Row and col are cell indices, not pixel offsets.
type Trigger interface {
	Triggered(siteID string, row, col int) bool
}

// TriggerFunc adapts a function to Trigger.
type TriggerFunc func(siteID string, row, col int) bool

func (f TriggerFunc) Triggered(siteID string, row, col int) bool {
	return f(siteID, row, col)
}

// RegionTrigger fires inside any declared region of the site.
type RegionTrigger struct {
	reg *Registry
}

// NewRegionTrigger returns a trigger over the regions declared in reg.
// A nil reg never fires.
func NewRegionTrigger(reg *Registry) RegionTrigger {
	return RegionTrigger{reg: reg}
}

func (t RegionTrigger) Triggered(siteID string, row, col int) bool {
	if t.reg == nil {
		return false
	}
	s, ok := t.reg.Lookup(siteID)
	if !ok {
		return false
	}
	for _, r := range s.Regions {
		if r.Contains(row, col) {
			return true
		}
	}
	return false
}

// Cell addresses one grid cell of a site.
type Cell struct {
	Site string
	Row  int
	Col  int
}

// CellSet is a set of externally flagged cells. Safe for concurrent use.
type CellSet struct {
	cells map[Cell]struct{}

	mtx *sync.RWMutex
}

// NewCellSet returns a set holding cells.
func NewCellSet(cells ...Cell) *CellSet {
	s := &CellSet{
		cells: make(map[Cell]struct{}, len(cells)),
		mtx:   &sync.RWMutex{},
	}
	for _, c := range cells {
		s.cells[c] = struct{}{}
	}
	return s
}

// Add flags a cell.
func (s *CellSet) Add(siteID string, row, col int) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.cells[Cell{Site: siteID, Row: row, Col: col}] = struct{}{}
}

// Len is the number of flagged cells.
func (s *CellSet) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return len(s.cells)
}

// Triggered reports whether the cell was flagged.
func (s *CellSet) Triggered(siteID string, row, col int) bool {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	_, ok := s.cells[Cell{Site: siteID, Row: row, Col: col}]
	return ok
}

// AnyTrigger fires when any of its members fires. Nil members are skipped.
type AnyTrigger []Trigger

func (a AnyTrigger) Triggered(siteID string, row, col int) bool {
	for _, t := range a {
		if t != nil && t.Triggered(siteID, row, col) {
			return true
		}
	}
	return false
}
