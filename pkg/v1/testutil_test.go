package copc

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/beetlebugorg/copc/internal/parser"
)

func vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

// testChunk is one node with stored (uncompressed) format-6 records.
type testChunk struct {
	key    VoxelKey
	points []r3.Vec // world coordinates, scale 0.01
}

// buildTestFile serializes a synthetic COPC file holding the given chunks
// in a single root hierarchy page. The cube spans [0,128]^3 with root
// spacing 10.
func buildTestFile(t *testing.T, chunks []testChunk) []byte {
	t.Helper()

	const recordLength = 30
	const headerAndVlr = parser.LasHeaderSize + 54 + parser.CopcInfoSize

	// LAS header.
	buf := make([]byte, parser.LasHeaderSize)
	copy(buf[0:4], "LASF")
	buf[24], buf[25] = 1, 4
	binary.LittleEndian.PutUint16(buf[94:96], parser.LasHeaderSize)
	binary.LittleEndian.PutUint32(buf[96:100], headerAndVlr)
	binary.LittleEndian.PutUint32(buf[100:104], 1)
	buf[104] = 6 | 0x80
	binary.LittleEndian.PutUint16(buf[105:107], recordLength)
	putF64 := func(off int, v float64) {
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
	}
	putF64(131, 0.01)
	putF64(139, 0.01)
	putF64(147, 0.01)
	putF64(179, 128) // max x
	putF64(195, 128)
	putF64(211, 128)

	// Chunk layout after header + VLR.
	chunkStart := uint64(headerAndVlr)
	offsets := make([]uint64, len(chunks))
	offset := chunkStart
	for i, c := range chunks {
		offsets[i] = offset
		offset += uint64(len(c.points) * recordLength)
	}
	rootOffset := offset
	rootSize := uint64(len(chunks) * parser.EntrySize)

	info := CopcInfo{
		CenterX: 64, CenterY: 64, CenterZ: 64,
		HalfSize:            64,
		Spacing:             10,
		RootHierarchyOffset: rootOffset,
		RootHierarchySize:   rootSize,
	}

	vlrHead := make([]byte, 54)
	copy(vlrHead[2:18], "copc")
	binary.LittleEndian.PutUint16(vlrHead[18:20], 1)
	binary.LittleEndian.PutUint16(vlrHead[20:22], parser.CopcInfoSize)
	buf = append(buf, vlrHead...)
	buf = append(buf, info.ToBytes()...)

	for _, c := range chunks {
		for _, p := range c.points {
			rec := make([]byte, recordLength)
			binary.LittleEndian.PutUint32(rec[0:4], uint32(int32(p.X*100)))
			binary.LittleEndian.PutUint32(rec[4:8], uint32(int32(p.Y*100)))
			binary.LittleEndian.PutUint32(rec[8:12], uint32(int32(p.Z*100)))
			rec[14] = 0x11 // return 1 of 1
			buf = append(buf, rec...)
		}
	}

	for i, c := range chunks {
		e := parser.Entry{
			Key:        c.key,
			Offset:     offsets[i],
			ByteSize:   int32(len(c.points) * recordLength),
			PointCount: int32(len(c.points)),
		}
		packed := e.Pack()
		buf = append(buf, packed[:]...)
	}

	return buf
}

// defaultTestChunks is a root node spanning the cube plus two depth-1
// children in opposite octants.
func defaultTestChunks() []testChunk {
	return []testChunk{
		{key: RootKey(), points: []r3.Vec{vec(10, 10, 10), vec(100, 100, 100)}},
		{key: VoxelKey{Depth: 1, X: 0, Y: 0, Z: 0}, points: []r3.Vec{vec(20, 20, 20)}},
		{key: VoxelKey{Depth: 1, X: 1, Y: 1, Z: 1}, points: []r3.Vec{vec(110, 110, 110)}},
	}
}

func newTestReader(t *testing.T) *Reader {
	t.Helper()
	data := buildTestFile(t, defaultTestChunks())
	reader, err := NewReader(bytes.NewReader(data), DefaultReaderOptions())
	require.NoError(t, err)
	return reader
}
