package parser

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHeader(format uint8, recordLength uint16) *LasHeader {
	return &LasHeader{
		VersionMajor:      1,
		VersionMinor:      4,
		PointFormatID:     format | 0x80,
		PointRecordLength: recordLength,
		XScale:            0.01, YScale: 0.01, ZScale: 0.01,
	}
}

func TestNewLazDecompressorRejectsUnsupportedFormat(t *testing.T) {
	for _, format := range []uint8{1, 2, 3, 5, 9} {
		_, err := NewLazDecompressor(testHeader(format, 28), nil, NewStoredChunkDecoder)
		var unsupported *ErrUnsupportedFormat
		require.ErrorAs(t, err, &unsupported, "format %d", format)
		assert.Equal(t, format, unsupported.Format)
	}
}

func TestDecompressEmptyChunk(t *testing.T) {
	d, err := NewLazDecompressor(testHeader(6, 30), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, pts)

	pts, err = d.Decompress(RootKey(), []byte{}, 5)
	require.NoError(t, err)
	assert.Empty(t, pts)
}

func TestDecompressFormat0(t *testing.T) {
	rec := make([]byte, 20)
	binary.LittleEndian.PutUint32(rec[0:4], uint32(int32(1500)))
	negY := int32(-2500)
	binary.LittleEndian.PutUint32(rec[4:8], uint32(negY))
	binary.LittleEndian.PutUint32(rec[8:12], uint32(int32(300)))
	binary.LittleEndian.PutUint16(rec[12:14], 800)
	rec[14] = 0x52 // return 2 of 2, scan direction set
	rec[15] = 5    // classification
	scanAngle := int8(-15)
	rec[16] = byte(scanAngle)
	rec[17] = 42
	binary.LittleEndian.PutUint16(rec[18:20], 77)

	d, err := NewLazDecompressor(testHeader(0, 20), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), rec, 1)
	require.NoError(t, err)
	require.Len(t, pts, 1)

	p := pts[0]
	assert.InDelta(t, 15.0, p.X, 1e-9)
	assert.InDelta(t, -25.0, p.Y, 1e-9)
	assert.InDelta(t, 3.0, p.Z, 1e-9)
	assert.Equal(t, uint16(800), p.Intensity)
	assert.Equal(t, uint8(2), p.ReturnNumber)
	assert.Equal(t, uint8(2), p.NumberOfReturns)
	assert.True(t, p.ScanDirectionFlag)
	assert.False(t, p.EdgeOfFlightLine)
	assert.Equal(t, uint8(5), p.Classification)
	assert.InDelta(t, -15.0, p.ScanAngle, 1e-9)
	assert.Equal(t, uint8(42), p.UserData)
	assert.Equal(t, uint16(77), p.PointSourceID)

	assert.Nil(t, p.GpsTime)
	assert.False(t, p.HasColor())
	assert.Nil(t, p.Nir)
	assert.Nil(t, p.ExtraBytes)
}

func TestDecompressFormat6(t *testing.T) {
	rec := record6(1000, 2000, 3000, 123, 6)
	binary.LittleEndian.PutUint16(rec[18:20], uint16(int16(2500))) // 15 degrees
	binary.LittleEndian.PutUint64(rec[22:30], math.Float64bits(123456.5))

	d, err := NewLazDecompressor(testHeader(6, 30), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), rec, 1)
	require.NoError(t, err)
	require.Len(t, pts, 1)

	p := pts[0]
	assert.InDelta(t, 10.0, p.X, 1e-9)
	assert.Equal(t, uint8(1), p.ReturnNumber)
	assert.Equal(t, uint8(2), p.NumberOfReturns)
	assert.Equal(t, uint8(6), p.Classification)
	assert.InDelta(t, 15.0, p.ScanAngle, 1e-9)
	require.NotNil(t, p.GpsTime)
	assert.Equal(t, 123456.5, *p.GpsTime)
	assert.False(t, p.HasColor())
}

func TestDecompressFormat7ColorHeuristic8Bit(t *testing.T) {
	// All components fit in 8 bits, so the divisor must be 255.
	var chunk []byte
	raws := []uint16{0, 100, 200, 180, 240, 17}
	for i, c := range raws {
		chunk = append(chunk, record7(int32(i), 0, 0, c, c/2, c/3)...)
	}

	d, err := NewLazDecompressor(testHeader(7, 36), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), chunk, len(raws))
	require.NoError(t, err)
	require.Len(t, pts, len(raws))

	for i, p := range pts {
		require.True(t, p.HasColor())
		assert.InDelta(t, float64(raws[i])/255.0, *p.Red, 1e-12, "point %d", i)
		assert.GreaterOrEqual(t, *p.Red, 0.0)
		assert.LessOrEqual(t, *p.Red, 1.0)
	}
}

func TestDecompressColorHeuristic12And16Bit(t *testing.T) {
	cases := []struct {
		name    string
		maxComp uint16
		divisor float64
	}{
		{"12-bit", 4000, 4095},
		{"16-bit", 60000, 65535},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			chunk := append(record7(0, 0, 0, tc.maxComp, 10, 10), record7(1, 0, 0, 5, 5, 5)...)

			d, err := NewLazDecompressor(testHeader(7, 36), nil, NewStoredChunkDecoder)
			require.NoError(t, err)

			pts, err := d.Decompress(RootKey(), chunk, 2)
			require.NoError(t, err)
			assert.InDelta(t, float64(tc.maxComp)/tc.divisor, *pts[0].Red, 1e-12)
			assert.InDelta(t, 5.0/tc.divisor, *pts[1].Red, 1e-12)
		})
	}
}

func TestDecompressHeuristicSamplesAtMost64Points(t *testing.T) {
	// Point 65 carries a 16-bit component, but only the first 64 are
	// sampled; the divisor stays 255.
	var chunk []byte
	for i := 0; i < 64; i++ {
		chunk = append(chunk, record7(int32(i), 0, 0, 200, 200, 200)...)
	}
	chunk = append(chunk, record7(64, 0, 0, 60000, 0, 0)...)

	d, err := NewLazDecompressor(testHeader(7, 36), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), chunk, 65)
	require.NoError(t, err)
	require.Len(t, pts, 65)
	assert.InDelta(t, 200.0/255.0, *pts[0].Red, 1e-12)
	assert.InDelta(t, 60000.0/255.0, *pts[64].Red, 1e-12)
}

func TestDecompressFormat8Nir(t *testing.T) {
	rec := make([]byte, 38)
	copy(rec, record7(10, 20, 30, 100, 100, 100))
	binary.LittleEndian.PutUint16(rec[36:38], 999)

	d, err := NewLazDecompressor(testHeader(8, 38), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), rec, 1)
	require.NoError(t, err)
	require.NotNil(t, pts[0].Nir)
	assert.Equal(t, uint16(999), *pts[0].Nir)
}

func TestDecompressExtraBytes(t *testing.T) {
	// Record length 34 on format 6: four extra bytes per point.
	rec := make([]byte, 34)
	copy(rec, record6(1, 2, 3, 0, 0))
	copy(rec[30:], []byte{0xde, 0xad, 0xbe, 0xef})

	d, err := NewLazDecompressor(testHeader(6, 34), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	pts, err := d.Decompress(RootKey(), rec, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, pts[0].ExtraBytes)
}

func TestDecompressTruncatedChunk(t *testing.T) {
	d, err := NewLazDecompressor(testHeader(6, 30), nil, NewStoredChunkDecoder)
	require.NoError(t, err)

	// Two records present, three promised.
	chunk := append(record6(0, 0, 0, 0, 0), record6(1, 1, 1, 0, 0)...)
	_, err = d.Decompress(VoxelKey{Depth: 1, X: 1}, chunk, 3)
	var decode *ErrDecode
	require.ErrorAs(t, err, &decode)
	assert.Equal(t, VoxelKey{Depth: 1, X: 1}, decode.Key)
}

func TestExtraDimensionArrays(t *testing.T) {
	dims := []ExtraDimension{
		{DataType: 9},                 // f32 "confidence"
		{DataType: 3, Scale: [3]float64{2, 0, 0}, Offset: [3]float64{1, 0, 0}}, // u16 scaled
	}
	dims[0].Name = "confidence"
	dims[1].Name = "range"

	extra := func(conf float32, rng uint16) []byte {
		b := make([]byte, 6)
		binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(conf))
		binary.LittleEndian.PutUint16(b[4:6], rng)
		return b
	}
	points := []Point{
		{ExtraBytes: extra(0.5, 10)},
		{ExtraBytes: extra(0.25, 20)},
		{}, // no extra bytes: zero-filled
	}

	arrays := ExtraDimensionArrays(dims, points)
	require.Len(t, arrays, 2)
	assert.Equal(t, []float32{0.5, 0.25, 0}, arrays["confidence"])
	assert.Equal(t, []float32{21, 41, 0}, arrays["range"])
}
