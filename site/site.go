// SPDX-License-Identifier: EPL-2.0

package site

import (
	"fmt"
	"slices"
	"sync"
)

// Files lists the rasters of one transect. Only DTM is mandatory.
type Files struct {
	DTM          []string `yaml:"dtm"`
	SatDry       string   `yaml:"sat_dry"`
	SatWet       string   `yaml:"sat_wet"`
	HydroDEM     string   `yaml:"hydro_dem"`
	HydroFlowDir string   `yaml:"hydro_flow_dir"`
	HydroFlowAcc string   `yaml:"hydro_flow_acc"`
}

// Region is a half-open rectangle of cell indices: rows [RowStart, RowEnd)
// and columns [ColStart, ColEnd).
type Region struct {
	RowStart int `yaml:"row_start" json:"row_start"`
	RowEnd   int `yaml:"row_end" json:"row_end"`
	ColStart int `yaml:"col_start" json:"col_start"`
	ColEnd   int `yaml:"col_end" json:"col_end"`
}

// Contains reports whether the cell lies in the half-open region.
func (r Region) Contains(row, col int) bool {
	return row >= r.RowStart && row < r.RowEnd && col >= r.ColStart && col < r.ColEnd
}

func (r Region) validate() error {
	if r.RowStart < 0 || r.ColStart < 0 || r.RowEnd <= r.RowStart || r.ColEnd <= r.ColStart {
		return fmt.Errorf("%w: %+v", ErrBadRegion, r)
	}
	return nil
}

// Site is one surveyed transect.
type Site struct {
	ID       string   `yaml:"id"`
	Category Category `yaml:"category"`
	Files    Files    `yaml:"files"`
	Regions  []Region `yaml:"regions"`
}

// Registry maps site ids to sites. Iteration order is registration order.
type Registry struct {
	sites map[string]Site
	order []string

	mtx *sync.RWMutex
}

// NewRegistry builds a registry. Ids must be unique and non-empty.
func NewRegistry(sites ...Site) (*Registry, error) {
	r := &Registry{
		sites: make(map[string]Site, len(sites)),
		mtx:   &sync.RWMutex{},
	}

	for _, s := range sites {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Register adds s. Registering an existing id fails.
func (r *Registry) Register(s Site) error {
	if s.ID == "" {
		return ErrEmptyID
	}
	for _, reg := range s.Regions {
		if err := reg.validate(); err != nil {
			return fmt.Errorf("site %s: %w", s.ID, err)
		}
	}

	r.mtx.Lock()
	defer r.mtx.Unlock()

	if _, ok := r.sites[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID)
	}
	s.Regions = slices.Clone(s.Regions)
	s.Files.DTM = slices.Clone(s.Files.DTM)
	r.sites[s.ID] = s
	r.order = append(r.order, s.ID)

	return nil
}

// Lookup returns the site registered under id.
func (r *Registry) Lookup(id string) (Site, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	s, ok := r.sites[id]
	return s, ok
}

// Category returns the category of id, Plain when unknown.
func (r *Registry) Category(id string) Category {
	s, _ := r.Lookup(id)
	return s.Category
}

// IDs returns the registered ids in registration order.
func (r *Registry) IDs() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return slices.Clone(r.order)
}

// Sites returns all sites in registration order.
func (r *Registry) Sites() []Site {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	out := make([]Site, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.sites[id])
	}
	return out
}

// Len is the number of registered sites.
func (r *Registry) Len() int {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	return len(r.order)
}
