package parser

import (
	"encoding/binary"
	"math"
)

// ExtraDimensionSize is the size of one LASF_Spec/4 descriptor record.
const ExtraDimensionSize = 192

// ExtraDimension describes one custom per-point attribute declared in the
// extra-bytes VLR (LASF_Spec record 4).
//
// DataType encodes the base type and component count: for t in [1,30] the
// base type is ((t-1) mod 10)+1 and the component count is ceil(t/10).
type ExtraDimension struct {
	DataType uint8
	Options  uint8
	Name     string

	NoData [3]float64
	Min    [3]float64
	Max    [3]float64
	Scale  [3]float64
	Offset [3]float64

	Description string
}

// baseTypeSizes indexes the byte width of base types 1..10
// (u8, i8, u16, i16, u32, i32, u64, i64, f32, f64).
var baseTypeSizes = [11]int{0, 1, 1, 2, 2, 4, 4, 8, 8, 4, 8}

// BaseType returns the scalar base type code in [1,10], or 0 for
// undocumented/raw descriptors.
func (d ExtraDimension) BaseType() uint8 {
	if d.DataType < 1 || d.DataType > 30 {
		return 0
	}
	return (d.DataType-1)%10 + 1
}

// ComponentCount returns how many base-type components one value carries.
func (d ExtraDimension) ComponentCount() int {
	if d.DataType < 1 || d.DataType > 30 {
		return 0
	}
	return int(d.DataType-1)/10 + 1
}

// ByteSize returns the total width of this dimension within a point's
// extra bytes. Raw descriptors (DataType 0) use Options as their size.
func (d ExtraDimension) ByteSize() int {
	if d.DataType == 0 {
		return int(d.Options)
	}
	base := d.BaseType()
	if base == 0 {
		return 0
	}
	return baseTypeSizes[base] * d.ComponentCount()
}

// ParseExtraDimensions decodes an extra-bytes VLR payload into its
// dimension descriptors. The payload must be a whole number of 192-byte
// records.
func ParseExtraDimensions(data []byte) ([]ExtraDimension, error) {
	if len(data)%ExtraDimensionSize != 0 {
		return nil, &ErrBadVlrLength{
			UserID:   "LASF_Spec",
			RecordID: 4,
			Got:      len(data),
			Want:     (len(data)/ExtraDimensionSize + 1) * ExtraDimensionSize,
		}
	}
	dims := make([]ExtraDimension, 0, len(data)/ExtraDimensionSize)
	for off := 0; off < len(data); off += ExtraDimensionSize {
		dims = append(dims, parseExtraDimension(data[off:off+ExtraDimensionSize]))
	}
	return dims, nil
}

func parseExtraDimension(rec []byte) ExtraDimension {
	d := ExtraDimension{
		DataType:    rec[2],
		Options:     rec[3],
		Name:        trimFixedString(rec[4:36]),
		Description: trimFixedString(rec[160:192]),
	}
	for i := 0; i < 3; i++ {
		d.NoData[i] = readF64(rec[40+8*i:])
		d.Min[i] = readF64(rec[64+8*i:])
		d.Max[i] = readF64(rec[88+8*i:])
		d.Scale[i] = readF64(rec[112+8*i:])
		d.Offset[i] = readF64(rec[136+8*i:])
	}
	return d
}

// DecodeComponents reads this dimension's components from data, which must
// start at the dimension's offset within a point's extra bytes. Values are
// widened to float32 with value*scale + offset applied per component when
// that component's scale is non-zero (the descriptor carries one
// scale/offset triplet entry per component). Missing trailing bytes yield
// zero components.
func (d ExtraDimension) DecodeComponents(data []byte) []float32 {
	count := d.ComponentCount()
	if count == 0 {
		return nil
	}
	base := d.BaseType()
	width := baseTypeSizes[base]
	out := make([]float32, count)
	for i := 0; i < count; i++ {
		off := i * width
		if off+width > len(data) {
			break
		}
		raw := decodeScalar(base, data[off:])
		if i < 3 && d.Scale[i] != 0 {
			raw = raw*d.Scale[i] + d.Offset[i]
		}
		out[i] = float32(raw)
	}
	return out
}

func decodeScalar(base uint8, b []byte) float64 {
	switch base {
	case 1:
		return float64(b[0])
	case 2:
		return float64(int8(b[0]))
	case 3:
		return float64(binary.LittleEndian.Uint16(b))
	case 4:
		return float64(int16(binary.LittleEndian.Uint16(b)))
	case 5:
		return float64(binary.LittleEndian.Uint32(b))
	case 6:
		return float64(int32(binary.LittleEndian.Uint32(b)))
	case 7:
		return float64(binary.LittleEndian.Uint64(b))
	case 8:
		return float64(int64(binary.LittleEndian.Uint64(b)))
	case 9:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case 10:
		return readF64(b)
	}
	return 0
}
