package parser

import (
	"encoding/binary"
)

// standardRecordSizes maps a point data record format to its fixed record
// size in bytes, excluding extra bytes.
var standardRecordSizes = map[uint8]int{
	0: 20, 1: 28, 2: 26, 3: 34, 6: 30, 7: 36, 8: 38,
}

// supportedFormats are the formats the decompressor can decode.
var supportedFormats = map[uint8]bool{0: true, 6: true, 7: true, 8: true}

// colorSampleCount bounds how many points the color bit-depth heuristic
// inspects per chunk.
const colorSampleCount = 64

// LazDecompressor turns a node's compressed chunk into decoded points.
//
// The chunk decoder it drives is not reentrant, so decompression is
// strictly sequential; the facade serializes all calls through one
// instance.
//
// Color depth is decided per chunk: the first colorSampleCount records are
// sampled and the largest R/G/B component selects an 8-, 12- or 16-bit
// divisor. Two chunks of the same file can normalize differently when the
// producer mixed depths; callers compositing across chunks see that as-is.
type LazDecompressor struct {
	header     *LasHeader
	extraDims  []ExtraDimension
	newDecoder ChunkDecoderFactory
}

// NewLazDecompressor builds a decompressor for the file described by
// header. factory supplies a fresh chunk decoder per chunk.
func NewLazDecompressor(header *LasHeader, extraDims []ExtraDimension, factory ChunkDecoderFactory) (*LazDecompressor, error) {
	if factory == nil {
		return nil, &ErrInvalidArgument{Name: "chunk decoder factory", Reason: "must not be nil"}
	}
	format := header.PointFormat()
	if !supportedFormats[format] {
		return nil, &ErrUnsupportedFormat{Format: format}
	}
	return &LazDecompressor{
		header:     header,
		extraDims:  extraDims,
		newDecoder: factory,
	}, nil
}

// Decompress decodes pointCount records from the compressed chunk of the
// node identified by key. A zero point count or empty chunk yields an
// empty slice without touching the decoder. On any decode failure no
// partial result is returned.
func (d *LazDecompressor) Decompress(key VoxelKey, compressed []byte, pointCount int) ([]Point, error) {
	if pointCount == 0 || len(compressed) == 0 {
		return []Point{}, nil
	}

	format := d.header.PointFormat()
	standard := standardRecordSizes[format]
	recordLength := int(d.header.PointRecordLength)
	if recordLength < standard {
		return nil, &ErrDecode{
			Key:    key,
			Reason: "point record length below the standard format size",
		}
	}
	extraLen := recordLength - standard

	dec := d.newDecoder()
	if err := dec.Open(format, recordLength, compressed); err != nil {
		return nil, &ErrDecode{Key: key, Reason: "open chunk", Err: err}
	}
	defer dec.Close()

	points := make([]Point, 0, pointCount)

	// Formats with color sample ahead to pick the normalization divisor;
	// the sampled records are decoded from memory, not re-read.
	divisor := 0.0
	sampled := 0
	var samples [][]byte
	if format == 7 || format == 8 {
		sampled = min(colorSampleCount, pointCount)
		samples = make([][]byte, 0, sampled)
		maxComponent := uint16(0)
		for i := 0; i < sampled; i++ {
			rec, err := dec.GetPoint()
			if err != nil {
				return nil, &ErrDecode{Key: key, Reason: "truncated chunk", Err: err}
			}
			if len(rec) < standard {
				return nil, &ErrDecode{Key: key, Reason: "short point record"}
			}
			for _, off := range [3]int{30, 32, 34} {
				if c := binary.LittleEndian.Uint16(rec[off:]); c > maxComponent {
					maxComponent = c
				}
			}
			samples = append(samples, append([]byte(nil), rec...))
		}
		divisor = colorDivisor(maxComponent)
		for _, rec := range samples {
			points = append(points, d.decodeRecord(format, rec, divisor, extraLen))
		}
	}

	for i := sampled; i < pointCount; i++ {
		rec, err := dec.GetPoint()
		if err != nil {
			return nil, &ErrDecode{Key: key, Reason: "truncated chunk", Err: err}
		}
		if len(rec) < standard {
			return nil, &ErrDecode{Key: key, Reason: "short point record"}
		}
		points = append(points, d.decodeRecord(format, rec, divisor, extraLen))
	}

	return points, nil
}

// colorDivisor picks the normalization for sampled color components:
// producers pack 8-bit data into the low byte, a few use 12-bit, the rest
// use the nominal 16-bit range.
func colorDivisor(maxComponent uint16) float64 {
	switch {
	case maxComponent <= 255:
		return 255
	case maxComponent <= 4095:
		return 4095
	default:
		return 65535
	}
}

func (d *LazDecompressor) decodeRecord(format uint8, rec []byte, divisor float64, extraLen int) Point {
	var p Point
	switch format {
	case 0:
		p = d.decodeFormat0(rec)
	default:
		p = d.decodeFormat6(rec)
		if format == 7 || format == 8 {
			r := float64(binary.LittleEndian.Uint16(rec[30:])) / divisor
			g := float64(binary.LittleEndian.Uint16(rec[32:])) / divisor
			b := float64(binary.LittleEndian.Uint16(rec[34:])) / divisor
			p.Red, p.Green, p.Blue = &r, &g, &b
		}
		if format == 8 {
			nir := binary.LittleEndian.Uint16(rec[36:])
			p.Nir = &nir
		}
	}
	if extraLen > 0 {
		standard := len(rec) - extraLen
		p.ExtraBytes = append([]byte(nil), rec[standard:]...)
	}
	return p
}

// decodeFormat0 parses the pre-LAS-1.4 20-byte layout.
func (d *LazDecompressor) decodeFormat0(rec []byte) Point {
	h := d.header
	bits := rec[14]
	return Point{
		X:                 float64(int32(binary.LittleEndian.Uint32(rec[0:4])))*h.XScale + h.XOffset,
		Y:                 float64(int32(binary.LittleEndian.Uint32(rec[4:8])))*h.YScale + h.YOffset,
		Z:                 float64(int32(binary.LittleEndian.Uint32(rec[8:12])))*h.ZScale + h.ZOffset,
		Intensity:         binary.LittleEndian.Uint16(rec[12:14]),
		ReturnNumber:      bits & 0x07,
		NumberOfReturns:   bits >> 3 & 0x07,
		ScanDirectionFlag: bits&0x40 != 0,
		EdgeOfFlightLine:  bits&0x80 != 0,
		Classification:    rec[15],
		ScanAngle:         float64(int8(rec[16])),
		UserData:          rec[17],
		PointSourceID:     binary.LittleEndian.Uint16(rec[18:20]),
	}
}

// decodeFormat6 parses the LAS 1.4 extended 30-byte layout shared by
// formats 6, 7 and 8. Scan angle is stored in 0.006 degree increments.
func (d *LazDecompressor) decodeFormat6(rec []byte) Point {
	h := d.header
	returns := rec[14]
	flags := rec[15]
	gps := readF64(rec[22:])
	return Point{
		X:                 float64(int32(binary.LittleEndian.Uint32(rec[0:4])))*h.XScale + h.XOffset,
		Y:                 float64(int32(binary.LittleEndian.Uint32(rec[4:8])))*h.YScale + h.YOffset,
		Z:                 float64(int32(binary.LittleEndian.Uint32(rec[8:12])))*h.ZScale + h.ZOffset,
		Intensity:         binary.LittleEndian.Uint16(rec[12:14]),
		ReturnNumber:      returns & 0x0f,
		NumberOfReturns:   returns >> 4 & 0x0f,
		ScanDirectionFlag: flags&0x40 != 0,
		EdgeOfFlightLine:  flags&0x80 != 0,
		Classification:    rec[16],
		UserData:          rec[17],
		ScanAngle:         float64(int16(binary.LittleEndian.Uint16(rec[18:20]))) * 0.006,
		PointSourceID:     binary.LittleEndian.Uint16(rec[20:22]),
		GpsTime:           &gps,
	}
}

// ExtraDimensionArrays decodes the declared extra dimensions of every
// point into per-dimension float32 arrays keyed by dimension name, with
// ComponentCount values per point. Points missing bytes for a dimension
// contribute zeros.
func ExtraDimensionArrays(dims []ExtraDimension, points []Point) map[string][]float32 {
	if len(dims) == 0 {
		return nil
	}
	out := make(map[string][]float32, len(dims))
	offset := 0
	for _, dim := range dims {
		count := dim.ComponentCount()
		if count == 0 {
			offset += dim.ByteSize()
			continue
		}
		arr := make([]float32, 0, len(points)*count)
		for i := range points {
			extra := points[i].ExtraBytes
			var comps []float32
			if offset < len(extra) {
				comps = dim.DecodeComponents(extra[offset:])
			} else {
				comps = make([]float32, count)
			}
			arr = append(arr, comps...)
		}
		out[dim.Name] = arr
		offset += dim.ByteSize()
	}
	return out
}
