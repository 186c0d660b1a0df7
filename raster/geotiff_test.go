// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/geosonify/errs"
	"github.com/ik5/geosonify/internal/rastertest"
)

func ramp(width, height int) [][]float64 {
	return rastertest.Fill(width, height, func(r, c int) float64 { return float64(r*100 + c) })
}

func TestDecode_Variants(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		img  rastertest.Image
	}{
		{"float32 single strip", rastertest.Image{}},
		{"float32 multi strip", rastertest.Image{RowsPerStrip: 3}},
		{"deflate", rastertest.Image{Deflate: true, RowsPerStrip: 4}},
		{"int16 predictor", rastertest.Image{Int16: true, Predictor: true, RowsPerStrip: 2}},
		{"int16 deflate predictor", rastertest.Image{Int16: true, Predictor: true, Deflate: true}},
		{"model transformation", rastertest.Image{Matrix: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			img := tt.img
			img.Width, img.Height = 7, 9
			img.Bands = ramp(7, 9)
			img.OriginX, img.OriginY, img.PixelSize = 500000, 8900000, 10
			img.EPSG = 32719

			var buf bytes.Buffer
			require.NoError(t, rastertest.Encode(&buf, img))

			r, err := Decode(buf.Bytes())
			require.NoError(t, err)

			assert.Equal(t, 7, r.Width)
			assert.Equal(t, 9, r.Height)
			assert.Equal(t, 1, r.Count())
			assert.Equal(t, "EPSG:32719", r.CRS)
			assert.Equal(t, Transform{A: 10, C: 500000, E: -10, F: 8900000}, r.Transform)
			assert.InDelta(t, 806.0, r.At(0, 8, 6), 1e-9)
			assert.InDelta(t, 0.0, r.At(0, 0, 0), 1e-9)
			assert.InDelta(t, 304.0, r.At(0, 3, 4), 1e-9)
		})
	}
}

func TestDecode_MultiBandNoData(t *testing.T) {
	t.Parallel()

	b0 := []float64{1, 2, -9999, 4}
	b1 := []float64{10, -9999, 30, 40}
	img := rastertest.Image{
		Width: 2, Height: 2, Bands: [][]float64{b0, b1},
		OriginX: -60, OriginY: -9, PixelSize: 0.5, EPSG: 4326,
		NoData: -9999, HasNoData: true,
	}

	var buf bytes.Buffer
	require.NoError(t, rastertest.Encode(&buf, img))

	r, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, 2, r.Count())
	assert.Equal(t, "EPSG:4326", r.CRS)
	assert.True(t, r.HasNoData)
	assert.True(t, math.IsNaN(r.At(0, 1, 0)))
	assert.True(t, math.IsNaN(r.At(1, 0, 1)))
	assert.InDelta(t, 40.0, r.At(1, 1, 1), 1e-9)
}

func TestDecode_PixelIsPoint(t *testing.T) {
	t.Parallel()

	img := rastertest.Image{
		Width: 2, Height: 2, Bands: ramp(2, 2),
		OriginX: 100, OriginY: 200, PixelSize: 2, EPSG: 32719, PixelIsPoint: true,
	}

	var buf bytes.Buffer
	require.NoError(t, rastertest.Encode(&buf, img))

	r, err := Decode(buf.Bytes())
	require.NoError(t, err)

	assert.InDelta(t, 99.0, r.Transform.C, 1e-12)
	assert.InDelta(t, 201.0, r.Transform.F, 1e-12)
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("GIF89a.."))
	require.ErrorIs(t, err, ErrNotTIFF)

	_, err = Decode([]byte{'I', 'I', 43, 0, 8, 0, 0, 0})
	require.ErrorIs(t, err, ErrBigTIFF)

	_, err = Decode([]byte{'I', 'I', 42, 0, 0xff, 0xff, 0, 0})
	require.ErrorIs(t, err, ErrTruncated)
}

func TestOpen_Kinds(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "absent.tif"))
	assert.Equal(t, errs.MissingInput, errs.KindOf(err))

	bad := filepath.Join(dir, "bad.tif")
	require.NoError(t, os.WriteFile(bad, []byte("not a tiff"), 0o644))
	_, err = Open(bad)
	assert.Equal(t, errs.IO, errs.KindOf(err))
}

func TestProjDef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		crs     string
		want    string
		wantErr bool
	}{
		{"EPSG:4326", projWGS84, false},
		{"epsg:3857", projWebMerc, false},
		{"EPSG:32719", "+proj=utm +zone=19 +south +datum=WGS84 +units=m +no_defs", false},
		{"EPSG:32621", "+proj=utm +zone=21 +datum=WGS84 +units=m +no_defs", false},
		{"EPSG:31979", "+proj=utm +zone=19 +south +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", false},
		{"EPSG:31972", "+proj=utm +zone=18 +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs", false},
		{"+proj=longlat +datum=WGS84", "+proj=longlat +datum=WGS84", false},
		{"EPSG:2193", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.crs, func(t *testing.T) {
			t.Parallel()

			got, err := ProjDef(tt.crs)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCRS)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
