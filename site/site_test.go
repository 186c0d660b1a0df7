// SPDX-License-Identifier: EPL-2.0

package site

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaults_Registry(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Defaults()...)
	require.NoError(t, err)
	assert.Equal(t, 10, reg.Len())

	assert.Equal(t, Archaeological, reg.Category("BR_AC_10"))
	assert.Equal(t, Jungle, reg.Category("BR_MT_01"))
	assert.Equal(t, City, reg.Category("BR_AM_03"))
	assert.Equal(t, Plain, reg.Category("XX_00"))

	assert.Equal(t, "BR_AC_10", reg.IDs()[0])
}

func TestRegistry_Duplicate(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Site{ID: "A"}, Site{ID: "A"})
	require.ErrorIs(t, err, ErrDuplicateID)

	_, err = NewRegistry(Site{})
	require.ErrorIs(t, err, ErrEmptyID)
}

func TestRegistry_BadRegion(t *testing.T) {
	t.Parallel()

	_, err := NewRegistry(Site{ID: "A", Regions: []Region{{RowStart: 3, RowEnd: 3, ColStart: 0, ColEnd: 1}}})
	require.ErrorIs(t, err, ErrBadRegion)
}

func TestCategory_Suffix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cat     Category
		suffix  string
		overlay bool
	}{
		{Archaeological, "_Archaeological", true},
		{Jungle, "_Jungle", true},
		{City, "", false},
		{Plain, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.cat.String(), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.suffix, tt.cat.Suffix())
			assert.Equal(t, tt.overlay, tt.cat.HasOverlay())
		})
	}
}

func TestSite_YAML(t *testing.T) {
	t.Parallel()

	doc := `
id: BR_XX_01
category: jungle
files:
  dtm: [a.tif, b.tif]
  hydro_flow_acc: acc.tif
regions:
  - {row_start: 1, row_end: 2, col_start: 3, col_end: 5}
`
	var s Site
	require.NoError(t, yaml.Unmarshal([]byte(doc), &s))

	assert.Equal(t, "BR_XX_01", s.ID)
	assert.Equal(t, Jungle, s.Category)
	assert.Equal(t, []string{"a.tif", "b.tif"}, s.Files.DTM)
	assert.Equal(t, "acc.tif", s.Files.HydroFlowAcc)
	require.Len(t, s.Regions, 1)
	assert.True(t, s.Regions[0].Contains(1, 4))

	var c Category
	require.ErrorIs(t, c.UnmarshalText([]byte("volcano")), ErrUnknownCategory)
}

func TestRegionTrigger(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Defaults()...)
	require.NoError(t, err)
	trig := NewRegionTrigger(reg)

	tests := []struct {
		name     string
		site     string
		row, col int
		want     bool
	}{
		{"inside", "BR_AC_10", 4, 6, true},
		{"last inside", "BR_AC_10", 8, 10, true},
		{"row end exclusive", "BR_AC_10", 9, 6, false},
		{"col end exclusive", "BR_AC_10", 4, 11, false},
		{"other site region", "BR_RO_05", 12, 14, true},
		{"site without regions", "BR_AM_04", 5, 5, false},
		{"unknown site", "NOPE", 5, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, trig.Triggered(tt.site, tt.row, tt.col))
		})
	}
}

func TestAnyTrigger(t *testing.T) {
	t.Parallel()

	reg, err := NewRegistry(Defaults()...)
	require.NoError(t, err)

	flagged := NewCellSet(Cell{Site: "BR_AM_04", Row: 2, Col: 3})
	flagged.Add("BR_AM_04", 2, 4)

	combined := AnyTrigger{NewRegionTrigger(reg), flagged, nil}

	assert.True(t, combined.Triggered("BR_AC_10", 5, 7))
	assert.True(t, combined.Triggered("BR_AM_04", 2, 4))
	assert.False(t, combined.Triggered("BR_AM_04", 3, 3))
	assert.Equal(t, 2, flagged.Len())
	assert.False(t, AnyTrigger(nil).Triggered("BR_AC_10", 5, 7))
}
