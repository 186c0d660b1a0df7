// SPDX-License-Identifier: EPL-2.0

package site

import (
	"fmt"
	"strings"
)

// Category selects the overlay treatment and output file suffix of a site.
type Category int

const (
	// Plain sites get no overlay and no suffix.
	Plain Category = iota
	Archaeological
	Jungle
	City
)

func (c Category) String() string {
	switch c {
	case Archaeological:
		return "archaeological"
	case Jungle:
		return "jungle"
	case City:
		return "city"
	default:
		return "plain"
	}
}

// Suffix is appended to the track file name.
func (c Category) Suffix() string {
	switch c {
	case Archaeological:
		return "_Archaeological"
	case Jungle:
		return "_Jungle"
	default:
		return ""
	}
}

// HasOverlay reports whether triggered cells of this category get an
// overlay layer.
func (c Category) HasOverlay() bool {
	return c == Archaeological || c == Jungle
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(b))) {
	case "", "plain", "none":
		*c = Plain
	case "archaeological":
		*c = Archaeological
	case "jungle":
		*c = Jungle
	case "city":
		*c = City
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, string(b))
	}

	return nil
}
