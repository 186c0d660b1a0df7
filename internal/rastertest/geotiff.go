// SPDX-License-Identifier: EPL-2.0

// Package rastertest writes small GeoTIFF fixtures for tests.
package rastertest

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// Image describes a north-up fixture. Bands are row-major.
type Image struct {
	Width, Height int
	Bands         [][]float64

	OriginX, OriginY float64 // upper-left corner
	PixelSize        float64
	EPSG             int

	NoData    float64
	HasNoData bool

	Deflate      bool
	Int16        bool // signed 16-bit samples instead of float32
	Predictor    bool // horizontal differencing, Int16 only
	RowsPerStrip int
	PixelIsPoint bool
	Matrix       bool // ModelTransformation instead of tiepoint and scale
}

// Fill builds a single-band image whose pixel (row, col) is f(row, col).
func Fill(width, height int, f func(row, col int) float64) [][]float64 {
	band := make([]float64, width*height)
	for r := range height {
		for c := range width {
			band[r*width+c] = f(r, c)
		}
	}
	return [][]float64{band}
}

// WriteFile encodes img into dir/name and returns the path.
func WriteFile(t testing.TB, dir, name string, img Image) string {
	t.Helper()

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("encode %s: %v", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

type entry struct {
	tag, typ uint16
	count    uint32
	data     []byte
}

var bo = binary.LittleEndian

func shorts(v ...uint16) []byte {
	b := make([]byte, 2*len(v))
	for i, x := range v {
		bo.PutUint16(b[i*2:], x)
	}
	return b
}

func longs(v ...uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, x := range v {
		bo.PutUint32(b[i*4:], x)
	}
	return b
}

func doubles(v ...float64) []byte {
	b := make([]byte, 8*len(v))
	for i, x := range v {
		bo.PutUint64(b[i*8:], math.Float64bits(x))
	}
	return b
}

// Encode writes img as a little-endian classic TIFF with GeoTIFF tags.
func Encode(w io.Writer, img Image) error {
	spp := len(img.Bands)
	bytesPer := 4
	if img.Int16 {
		bytesPer = 2
	}
	rps := img.RowsPerStrip
	if rps <= 0 || rps > img.Height {
		rps = img.Height
	}

	var strips [][]byte
	for y0 := 0; y0 < img.Height; y0 += rps {
		rows := min(rps, img.Height-y0)
		raw := make([]byte, rows*img.Width*spp*bytesPer)
		for r := range rows {
			line := raw[r*img.Width*spp*bytesPer : (r+1)*img.Width*spp*bytesPer]
			vals := make([]int16, img.Width*spp)
			for c := range img.Width {
				for s := range spp {
					v := img.Bands[s][(y0+r)*img.Width+c]
					i := c*spp + s
					if img.Int16 {
						vals[i] = int16(v)
					} else {
						bo.PutUint32(line[i*4:], math.Float32bits(float32(v)))
					}
				}
			}
			if img.Int16 {
				if img.Predictor {
					for i := len(vals) - 1; i >= spp; i-- {
						vals[i] -= vals[i-spp]
					}
				}
				for i, v := range vals {
					bo.PutUint16(line[i*2:], uint16(v))
				}
			}
		}

		if img.Deflate {
			var zb bytes.Buffer
			zw := zlib.NewWriter(&zb)
			if _, err := zw.Write(raw); err != nil {
				return err
			}
			if err := zw.Close(); err != nil {
				return err
			}
			raw = zb.Bytes()
		}
		strips = append(strips, raw)
	}

	offsets := make([]uint32, len(strips))
	counts := make([]uint32, len(strips))
	pos := uint32(8)
	for i, s := range strips {
		offsets[i] = pos
		counts[i] = uint32(len(s))
		pos += uint32(len(s))
	}

	bps := make([]uint16, spp)
	formats := make([]uint16, spp)
	for i := range spp {
		bps[i] = uint16(bytesPer * 8)
		formats[i] = 3
		if img.Int16 {
			formats[i] = 2
		}
	}

	compression := uint16(1)
	if img.Deflate {
		compression = 8
	}

	entries := []entry{
		{256, 4, 1, longs(uint32(img.Width))},
		{257, 4, 1, longs(uint32(img.Height))},
		{258, 3, uint32(spp), shorts(bps...)},
		{259, 3, 1, shorts(compression)},
		{262, 3, 1, shorts(1)},
		{273, 4, uint32(len(offsets)), longs(offsets...)},
		{277, 3, 1, shorts(uint16(spp))},
		{278, 4, 1, longs(uint32(rps))},
		{279, 4, uint32(len(counts)), longs(counts...)},
		{284, 3, 1, shorts(1)},
		{339, 3, uint32(spp), shorts(formats...)},
	}
	if img.Predictor && img.Int16 {
		entries = append(entries, entry{317, 3, 1, shorts(2)})
	}

	if img.Matrix {
		entries = append(entries, entry{34264, 12, 16, doubles(
			img.PixelSize, 0, 0, img.OriginX,
			0, -img.PixelSize, 0, img.OriginY,
			0, 0, 0, 0,
			0, 0, 0, 1,
		)})
	} else {
		entries = append(entries,
			entry{33550, 12, 3, doubles(img.PixelSize, img.PixelSize, 0)},
			entry{33922, 12, 6, doubles(0, 0, 0, img.OriginX, img.OriginY, 0)},
		)
	}

	if img.EPSG != 0 {
		model, key := uint16(1), uint16(3072)
		if img.EPSG == 4326 || img.EPSG == 4674 {
			model, key = 2, 2048
		}
		raster := uint16(1)
		if img.PixelIsPoint {
			raster = 2
		}
		entries = append(entries, entry{34735, 3, 16, shorts(
			1, 1, 0, 3,
			1024, 0, 1, model,
			1025, 0, 1, raster,
			key, 0, 1, uint16(img.EPSG),
		)})
	}

	if img.HasNoData {
		s := strconv.FormatFloat(img.NoData, 'g', -1, 64) + "\x00"
		entries = append(entries, entry{42113, 2, uint32(len(s)), []byte(s)})
	}

	slices.SortFunc(entries, func(a, b entry) int { return int(a.tag) - int(b.tag) })

	// Out-of-line values follow the strips, then the IFD.
	var extra bytes.Buffer
	valueAt := make([]uint32, len(entries))
	for i, e := range entries {
		if len(e.data) <= 4 {
			continue
		}
		if (pos+uint32(extra.Len()))%2 != 0 {
			extra.WriteByte(0)
		}
		valueAt[i] = pos + uint32(extra.Len())
		extra.Write(e.data)
	}
	ifd := pos + uint32(extra.Len())
	if ifd%2 != 0 {
		extra.WriteByte(0)
		ifd++
	}

	var out bytes.Buffer
	out.WriteString("II")
	out.Write(shorts(42))
	out.Write(longs(ifd))
	for _, s := range strips {
		out.Write(s)
	}
	out.Write(extra.Bytes())

	out.Write(shorts(uint16(len(entries))))
	for i, e := range entries {
		out.Write(shorts(e.tag, e.typ))
		out.Write(longs(e.count))
		if len(e.data) <= 4 {
			v := make([]byte, 4)
			copy(v, e.data)
			out.Write(v)
		} else {
			out.Write(longs(valueAt[i]))
		}
	}
	out.Write(longs(0))

	_, err := w.Write(out.Bytes())
	return err
}
