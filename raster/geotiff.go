// SPDX-License-Identifier: EPL-2.0

package raster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zlib"
	"golang.org/x/image/tiff/lzw"

	"github.com/ik5/geosonify/errs"
)

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagBitsPerSample   = 258
	tagCompression     = 259
	tagStripOffsets    = 273
	tagSamplesPerPixel = 277
	tagRowsPerStrip    = 278
	tagStripByteCounts = 279
	tagPlanarConfig    = 284
	tagPredictor       = 317
	tagTileWidth       = 322
	tagTileLength      = 323
	tagTileOffsets     = 324
	tagTileByteCounts  = 325
	tagSampleFormat    = 339
	tagModelPixelScale = 33550
	tagModelTiepoint   = 33922
	tagModelTransform  = 34264
	tagGeoKeyDirectory = 34735
	tagGDALNoData      = 42113
)

const (
	compressionNone    = 1
	compressionLZW     = 5
	compressionDeflate = 8
	compressionAdobe   = 32946

	predictorNone       = 1
	predictorHorizontal = 2
	predictorFloat      = 3

	sampleUint  = 1
	sampleInt   = 2
	sampleFloat = 3
)

const (
	keyRasterType     = 1025
	keyGeographicType = 2048
	keyProjectedType  = 3072

	rasterPixelIsPoint = 2
	userDefined        = 32767
)

// typeSize is the byte width of each TIFF field type.
var typeSize = map[uint16]int{
	1: 1, 2: 1, 3: 2, 4: 4, 5: 8, 6: 1, 7: 1, 8: 2, 9: 4, 10: 8, 11: 4, 12: 8,
}

type ifdEntry struct {
	typ   uint16
	count int
	data  []byte
}

type tiffDecoder struct {
	buf     []byte
	bo      binary.ByteOrder
	entries map[uint16]ifdEntry
}

// Open reads a GeoTIFF file. A missing file is errs.MissingInput, any
// other failure errs.IO.
func Open(path string) (*Raster, error) {
	const op = "raster.open"

	buf, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.E(errs.MissingInput, op, err)
		}
		return nil, errs.E(errs.IO, op, err)
	}

	r, err := Decode(buf)
	if err != nil {
		return nil, errs.E(errs.IO, op, fmt.Errorf("%s: %w", path, err))
	}

	return r, nil
}

// Decode parses the first image of a classic TIFF held in buf.
func Decode(buf []byte) (*Raster, error) {
	d, err := newTIFFDecoder(buf)
	if err != nil {
		return nil, err
	}

	r, err := d.pixels()
	if err != nil {
		return nil, err
	}

	d.georef(r)
	d.noData(r)

	return r, nil
}

func newTIFFDecoder(buf []byte) (*tiffDecoder, error) {
	if len(buf) < 8 {
		return nil, ErrNotTIFF
	}

	d := &tiffDecoder{buf: buf, entries: make(map[uint16]ifdEntry)}
	switch string(buf[:2]) {
	case "II":
		d.bo = binary.LittleEndian
	case "MM":
		d.bo = binary.BigEndian
	default:
		return nil, ErrNotTIFF
	}

	switch d.bo.Uint16(buf[2:4]) {
	case 42:
	case 43:
		return nil, ErrBigTIFF
	default:
		return nil, ErrNotTIFF
	}

	off := int(d.bo.Uint32(buf[4:8]))
	if off+2 > len(buf) {
		return nil, ErrTruncated
	}
	n := int(d.bo.Uint16(buf[off : off+2]))
	if off+2+n*12 > len(buf) {
		return nil, ErrTruncated
	}

	for i := range n {
		e := buf[off+2+i*12 : off+2+(i+1)*12]
		tag := d.bo.Uint16(e[0:2])
		typ := d.bo.Uint16(e[2:4])
		count := int(d.bo.Uint32(e[4:8]))

		size, ok := typeSize[typ]
		if !ok {
			continue
		}
		total := size * count
		var data []byte
		if total <= 4 {
			data = e[8 : 8+total]
		} else {
			vo := int(d.bo.Uint32(e[8:12]))
			if vo < 0 || vo+total > len(buf) {
				return nil, fmt.Errorf("%w: tag %d", ErrTruncated, tag)
			}
			data = buf[vo : vo+total]
		}
		d.entries[tag] = ifdEntry{typ: typ, count: count, data: data}
	}

	return d, nil
}

func (d *tiffDecoder) has(tag uint16) bool {
	_, ok := d.entries[tag]
	return ok
}

func (d *tiffDecoder) uints(tag uint16) []uint64 {
	e, ok := d.entries[tag]
	if !ok {
		return nil
	}

	out := make([]uint64, 0, e.count)
	for i := range e.count {
		switch e.typ {
		case 1, 7:
			out = append(out, uint64(e.data[i]))
		case 3:
			out = append(out, uint64(d.bo.Uint16(e.data[i*2:])))
		case 4:
			out = append(out, uint64(d.bo.Uint32(e.data[i*4:])))
		default:
			return nil
		}
	}
	return out
}

func (d *tiffDecoder) uint1(tag uint16, def uint64) uint64 {
	v := d.uints(tag)
	if len(v) == 0 {
		return def
	}
	return v[0]
}

func (d *tiffDecoder) floats(tag uint16) []float64 {
	e, ok := d.entries[tag]
	if !ok {
		return nil
	}

	switch e.typ {
	case 11:
		out := make([]float64, e.count)
		for i := range out {
			out[i] = float64(math.Float32frombits(d.bo.Uint32(e.data[i*4:])))
		}
		return out
	case 12:
		out := make([]float64, e.count)
		for i := range out {
			out[i] = math.Float64frombits(d.bo.Uint64(e.data[i*8:]))
		}
		return out
	}

	u := d.uints(tag)
	out := make([]float64, len(u))
	for i, v := range u {
		out[i] = float64(v)
	}
	return out
}

func (d *tiffDecoder) ascii(tag uint16) string {
	e, ok := d.entries[tag]
	if !ok || e.typ != 2 {
		return ""
	}
	return strings.TrimRight(string(e.data), "\x00 ")
}

// layout describes how pixel data is chunked.
type layout struct {
	width, height int
	spp           int
	bytesPer      int
	format        int
	predictor     int
	compression   int
	planar        bool

	tiled          bool
	chunkW, chunkH int
	offsets        []uint64
	counts         []uint64
}

func (d *tiffDecoder) layout() (layout, error) {
	l := layout{
		width:       int(d.uint1(tagImageWidth, 0)),
		height:      int(d.uint1(tagImageLength, 0)),
		spp:         int(d.uint1(tagSamplesPerPixel, 1)),
		format:      int(d.uint1(tagSampleFormat, sampleUint)),
		predictor:   int(d.uint1(tagPredictor, predictorNone)),
		compression: int(d.uint1(tagCompression, compressionNone)),
		planar:      d.uint1(tagPlanarConfig, 1) == 2,
	}
	if l.width <= 0 || l.height <= 0 {
		return l, fmt.Errorf("%w: image dimensions", ErrMissingTag)
	}
	if l.spp <= 0 {
		return l, fmt.Errorf("%w: samples per pixel %d", ErrUnsupported, l.spp)
	}

	bps := d.uints(tagBitsPerSample)
	if len(bps) == 0 {
		bps = []uint64{1}
	}
	for _, b := range bps {
		if b != bps[0] {
			return l, fmt.Errorf("%w: mixed bits per sample", ErrUnsupported)
		}
	}
	switch bps[0] {
	case 8, 16, 32, 64:
		l.bytesPer = int(bps[0] / 8)
	default:
		return l, fmt.Errorf("%w: %d bits per sample", ErrUnsupported, bps[0])
	}
	if l.format == sampleFloat && l.bytesPer < 4 {
		return l, fmt.Errorf("%w: %d-bit float", ErrUnsupported, bps[0])
	}

	if d.has(tagTileWidth) {
		l.tiled = true
		l.chunkW = int(d.uint1(tagTileWidth, 0))
		l.chunkH = int(d.uint1(tagTileLength, 0))
		l.offsets = d.uints(tagTileOffsets)
		l.counts = d.uints(tagTileByteCounts)
	} else {
		l.chunkW = l.width
		l.chunkH = min(int(d.uint1(tagRowsPerStrip, uint64(l.height))), l.height)
		l.offsets = d.uints(tagStripOffsets)
		l.counts = d.uints(tagStripByteCounts)
	}
	if l.chunkW <= 0 || l.chunkH <= 0 {
		return l, fmt.Errorf("%w: chunk size", ErrMissingTag)
	}

	want := l.across() * l.down() * l.planes()
	if len(l.offsets) < want || len(l.counts) < want {
		return l, fmt.Errorf("%w: expected %d chunks, have %d", ErrMissingTag, want, len(l.offsets))
	}

	return l, nil
}

func (l layout) across() int { return (l.width + l.chunkW - 1) / l.chunkW }
func (l layout) down() int   { return (l.height + l.chunkH - 1) / l.chunkH }

func (l layout) planes() int {
	if l.planar {
		return l.spp
	}
	return 1
}

// chunkSamples is the sample count per pixel inside one chunk.
func (l layout) chunkSamples() int {
	if l.planar {
		return 1
	}
	return l.spp
}

func (d *tiffDecoder) pixels() (*Raster, error) {
	l, err := d.layout()
	if err != nil {
		return nil, err
	}

	r := &Raster{Width: l.width, Height: l.height, Bands: make([][]float64, l.spp), Transform: Identity}
	for b := range r.Bands {
		r.Bands[b] = make([]float64, l.width*l.height)
	}

	sppc := l.chunkSamples()
	for p := range l.planes() {
		for ty := range l.down() {
			for tx := range l.across() {
				idx := (p*l.down()+ty)*l.across() + tx
				start, n := int(l.offsets[idx]), int(l.counts[idx])
				if start < 0 || start+n > len(d.buf) {
					return nil, fmt.Errorf("%w: chunk %d", ErrTruncated, idx)
				}

				rows := l.chunkH
				if !l.tiled {
					rows = min(l.chunkH, l.height-ty*l.chunkH)
				}
				rowBytes := l.chunkW * sppc * l.bytesPer

				data, err := decompress(d.buf[start:start+n], l.compression, rows*rowBytes)
				if err != nil {
					return nil, fmt.Errorf("chunk %d: %w", idx, err)
				}
				if len(data) < rows*rowBytes {
					return nil, fmt.Errorf("%w: chunk %d has %d bytes, need %d", ErrTruncated, idx, len(data), rows*rowBytes)
				}

				for row := range rows {
					line := data[row*rowBytes : (row+1)*rowBytes]
					if err := d.unpredict(line, l, sppc); err != nil {
						return nil, err
					}

					y := ty*l.chunkH + row
					if y >= l.height {
						break
					}
					for c := range l.chunkW {
						x := tx*l.chunkW + c
						if x >= l.width {
							break
						}
						for s := range sppc {
							band := s
							if l.planar {
								band = p
							}
							r.Bands[band][y*l.width+x] = d.sample(line, (c*sppc+s)*l.bytesPer, l)
						}
					}
				}
			}
		}
	}

	return r, nil
}

// decompress inflates one chunk, reading exactly want bytes when the codec
// is not raw.
func decompress(raw []byte, compression, want int) ([]byte, error) {
	var rc io.ReadCloser
	switch compression {
	case compressionNone:
		return bytes.Clone(raw), nil
	case compressionLZW:
		rc = lzw.NewReader(bytes.NewReader(raw), lzw.MSB, 8)
	case compressionDeflate, compressionAdobe:
		zr, err := zlib.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		rc = zr
	default:
		return nil, fmt.Errorf("%w: compression %d", ErrUnsupported, compression)
	}
	defer rc.Close()

	out := make([]byte, want)
	if _, err := io.ReadFull(rc, out); err != nil {
		return nil, err
	}
	return out, nil
}

// unpredict reverses the TIFF predictor on one row in place.
func (d *tiffDecoder) unpredict(line []byte, l layout, sppc int) error {
	switch l.predictor {
	case predictorNone:
		return nil

	case predictorHorizontal:
		if l.format == sampleFloat {
			return fmt.Errorf("%w: horizontal predictor on float samples", ErrUnsupported)
		}
		n := len(line) / l.bytesPer
		for i := sppc; i < n; i++ {
			cur, prev := i*l.bytesPer, (i-sppc)*l.bytesPer
			switch l.bytesPer {
			case 1:
				line[cur] += line[prev]
			case 2:
				d.bo.PutUint16(line[cur:], d.bo.Uint16(line[cur:])+d.bo.Uint16(line[prev:]))
			case 4:
				d.bo.PutUint32(line[cur:], d.bo.Uint32(line[cur:])+d.bo.Uint32(line[prev:]))
			case 8:
				d.bo.PutUint64(line[cur:], d.bo.Uint64(line[cur:])+d.bo.Uint64(line[prev:]))
			}
		}
		return nil

	case predictorFloat:
		for i := sppc; i < len(line); i++ {
			line[i] += line[i-sppc]
		}
		n := len(line) / l.bytesPer
		shuffled := bytes.Clone(line)
		little := d.bo == binary.ByteOrder(binary.LittleEndian)
		for j := range n {
			for k := range l.bytesPer {
				v := shuffled[k*n+j]
				if little {
					line[j*l.bytesPer+(l.bytesPer-1-k)] = v
				} else {
					line[j*l.bytesPer+k] = v
				}
			}
		}
		return nil

	default:
		return fmt.Errorf("%w: predictor %d", ErrUnsupported, l.predictor)
	}
}

func (d *tiffDecoder) sample(line []byte, off int, l layout) float64 {
	b := line[off:]
	switch l.format {
	case sampleInt:
		switch l.bytesPer {
		case 1:
			return float64(int8(b[0]))
		case 2:
			return float64(int16(d.bo.Uint16(b)))
		case 4:
			return float64(int32(d.bo.Uint32(b)))
		default:
			return float64(int64(d.bo.Uint64(b)))
		}
	case sampleFloat:
		if l.bytesPer == 4 {
			return float64(math.Float32frombits(d.bo.Uint32(b)))
		}
		return math.Float64frombits(d.bo.Uint64(b))
	default:
		switch l.bytesPer {
		case 1:
			return float64(b[0])
		case 2:
			return float64(d.bo.Uint16(b))
		case 4:
			return float64(d.bo.Uint32(b))
		default:
			return float64(d.bo.Uint64(b))
		}
	}
}

// georef fills the CRS and transform from the GeoTIFF tags.
func (d *tiffDecoder) georef(r *Raster) {
	keys := make(map[uint64]uint64)
	if dir := d.uints(tagGeoKeyDirectory); len(dir) >= 4 {
		n := int(dir[3])
		for i := range n {
			base := 4 + i*4
			if base+3 >= len(dir) {
				break
			}
			if dir[base+1] == 0 {
				keys[dir[base]] = dir[base+3]
			}
		}
	}

	if code, ok := keys[keyProjectedType]; ok && code != 0 && code != userDefined {
		r.CRS = "EPSG:" + strconv.FormatUint(code, 10)
	} else if code, ok := keys[keyGeographicType]; ok && code != 0 && code != userDefined {
		r.CRS = "EPSG:" + strconv.FormatUint(code, 10)
	}

	if m := d.floats(tagModelTransform); len(m) >= 16 {
		r.Transform = Transform{A: m[0], B: m[1], C: m[3], D: m[4], E: m[5], F: m[7]}
	} else if tp, sc := d.floats(tagModelTiepoint), d.floats(tagModelPixelScale); len(tp) >= 6 && len(sc) >= 2 {
		t := Transform{A: sc[0], E: -sc[1]}
		t.C = tp[3] - tp[0]*t.A
		t.F = tp[4] - tp[1]*t.E
		r.Transform = t
	} else {
		return
	}

	if keys[keyRasterType] == rasterPixelIsPoint {
		t := r.Transform
		r.Transform.C -= (t.A + t.B) / 2
		r.Transform.F -= (t.D + t.E) / 2
	}
}

// noData replaces the GDAL no-data value with NaN.
func (d *tiffDecoder) noData(r *Raster) {
	s := d.ascii(tagGDALNoData)
	if s == "" {
		return
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return
	}

	r.NoData, r.HasNoData = v, true
	if math.IsNaN(v) {
		return
	}
	for _, band := range r.Bands {
		for i, x := range band {
			if x == v {
				band[i] = math.NaN()
			}
		}
	}
}
