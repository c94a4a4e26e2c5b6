package parser

import (
	"encoding/binary"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func vec(x, y, z float64) r3.Vec {
	return r3.Vec{X: x, Y: y, Z: z}
}

// testTree describes a hierarchy page and its content for synthetic files.
type testTree struct {
	key      VoxelKey
	nodes    []testNode
	subpages []testTree
}

type testNode struct {
	key     VoxelKey
	records [][]byte // raw point records, stored uncompressed
}

// testFileConfig drives buildCopcFile.
type testFileConfig struct {
	pointFormat  uint8
	recordLength uint16

	scale  [3]float64
	offset [3]float64
	minB   [3]float64
	maxB   [3]float64

	center   [3]float64
	halfSize float64
	spacing  float64

	wkt       string
	extraDims []byte // raw LASF_Spec/4 payload

	root testTree
}

func defaultConfig() testFileConfig {
	return testFileConfig{
		pointFormat:  6,
		recordLength: 30,
		scale:        [3]float64{0.01, 0.01, 0.01},
		minB:         [3]float64{0, 0, 0},
		maxB:         [3]float64{128, 128, 128},
		center:       [3]float64{64, 64, 64},
		halfSize:     64,
		spacing:      10,
	}
}

// buildCopcFile serializes a complete synthetic COPC file: LAS 1.4 header,
// copc/1 VLR first at offset 375, optional WKT and extra-bytes VLRs,
// stored point chunks, then hierarchy pages.
func buildCopcFile(t *testing.T, cfg testFileConfig) []byte {
	t.Helper()

	type vlrSpec struct {
		userID   string
		recordID uint16
		data     []byte
	}
	vlrs := []vlrSpec{{userID: "copc", recordID: 1, data: make([]byte, CopcInfoSize)}}
	if cfg.wkt != "" {
		vlrs = append(vlrs, vlrSpec{userID: "LASF_Projection", recordID: 2112, data: append([]byte(cfg.wkt), 0)})
	}
	if cfg.extraDims != nil {
		vlrs = append(vlrs, vlrSpec{userID: "LASF_Spec", recordID: 4, data: cfg.extraDims})
	}

	vlrTotal := 0
	for _, v := range vlrs {
		vlrTotal += 54 + len(v.data)
	}
	chunkStart := uint64(LasHeaderSize + vlrTotal)

	// First pass: assign chunk offsets per node, then page offsets.
	type nodeLayout struct {
		node   *testNode
		offset uint64
	}
	var chunks []nodeLayout
	offset := chunkStart
	var walkChunks func(p *testTree)
	walkChunks = func(p *testTree) {
		for i := range p.nodes {
			n := &p.nodes[i]
			chunks = append(chunks, nodeLayout{node: n, offset: offset})
			for _, rec := range n.records {
				offset += uint64(len(rec))
			}
		}
		for i := range p.subpages {
			walkChunks(&p.subpages[i])
		}
	}
	walkChunks(&cfg.root)

	pageSize := func(p *testTree) uint64 {
		return uint64(EntrySize * (len(p.nodes) + len(p.subpages)))
	}
	pageOffsets := map[string]uint64{}
	var walkPages func(p *testTree)
	walkPages = func(p *testTree) {
		pageOffsets[p.key.String()] = offset
		offset += pageSize(p)
		for i := range p.subpages {
			walkPages(&p.subpages[i])
		}
	}
	walkPages(&cfg.root)

	nodeOffsets := map[string]uint64{}
	nodeSizes := map[string]int{}
	for _, c := range chunks {
		total := 0
		for _, rec := range c.node.records {
			total += len(rec)
		}
		nodeOffsets[c.node.key.String()] = c.offset
		nodeSizes[c.node.key.String()] = total
	}

	// Second pass: serialize.
	buf := make([]byte, 0, offset)
	buf = append(buf, buildLasHeader(cfg, len(vlrs), uint32(chunkStart))...)

	info := CopcInfo{
		CenterX:             cfg.center[0],
		CenterY:             cfg.center[1],
		CenterZ:             cfg.center[2],
		HalfSize:            cfg.halfSize,
		Spacing:             cfg.spacing,
		RootHierarchyOffset: pageOffsets[cfg.root.key.String()],
		RootHierarchySize:   pageSize(&cfg.root),
	}
	vlrs[0].data = info.ToBytes()

	for _, v := range vlrs {
		head := make([]byte, 54)
		copy(head[2:18], v.userID)
		binary.LittleEndian.PutUint16(head[18:20], v.recordID)
		binary.LittleEndian.PutUint16(head[20:22], uint16(len(v.data)))
		buf = append(buf, head...)
		buf = append(buf, v.data...)
	}

	for _, c := range chunks {
		for _, rec := range c.node.records {
			buf = append(buf, rec...)
		}
	}

	var writePages func(p *testTree)
	writePages = func(p *testTree) {
		for _, n := range p.nodes {
			e := Entry{
				Key:        n.key,
				Offset:     nodeOffsets[n.key.String()],
				ByteSize:   int32(nodeSizes[n.key.String()]),
				PointCount: int32(len(n.records)),
			}
			packed := e.Pack()
			buf = append(buf, packed[:]...)
		}
		for i := range p.subpages {
			sub := &p.subpages[i]
			e := Entry{
				Key:        sub.key,
				Offset:     pageOffsets[sub.key.String()],
				ByteSize:   int32(pageSize(sub)),
				PointCount: pagePointCount,
			}
			packed := e.Pack()
			buf = append(buf, packed[:]...)
		}
		for i := range p.subpages {
			writePages(&p.subpages[i])
		}
	}
	writePages(&cfg.root)

	return buf
}

func buildLasHeader(cfg testFileConfig, vlrCount int, offsetToPoints uint32) []byte {
	buf := make([]byte, LasHeaderSize)
	copy(buf[0:4], "LASF")
	buf[24] = 1
	buf[25] = 4
	binary.LittleEndian.PutUint16(buf[94:96], LasHeaderSize)
	binary.LittleEndian.PutUint32(buf[96:100], offsetToPoints)
	binary.LittleEndian.PutUint32(buf[100:104], uint32(vlrCount))
	buf[104] = cfg.pointFormat | 0x80 // compression bit as written by LAZ producers
	binary.LittleEndian.PutUint16(buf[105:107], cfg.recordLength)

	put := func(off int, v float64) {
		binary.LittleEndian.PutUint64(buf[off:off+8], math.Float64bits(v))
	}
	put(131, cfg.scale[0])
	put(139, cfg.scale[1])
	put(147, cfg.scale[2])
	put(155, cfg.offset[0])
	put(163, cfg.offset[1])
	put(171, cfg.offset[2])
	put(179, cfg.maxB[0])
	put(187, cfg.minB[0])
	put(195, cfg.maxB[1])
	put(203, cfg.minB[1])
	put(211, cfg.maxB[2])
	put(219, cfg.minB[2])
	return buf
}

// record6 builds one raw format-6 record at raw integer coordinates.
func record6(x, y, z int32, intensity uint16, classification uint8) []byte {
	rec := make([]byte, 30)
	binary.LittleEndian.PutUint32(rec[0:4], uint32(x))
	binary.LittleEndian.PutUint32(rec[4:8], uint32(y))
	binary.LittleEndian.PutUint32(rec[8:12], uint32(z))
	binary.LittleEndian.PutUint16(rec[12:14], intensity)
	rec[14] = 0x21 // return 1 of 2
	rec[16] = classification
	return rec
}

// record7 is record6 plus RGB.
func record7(x, y, z int32, r, g, b uint16) []byte {
	rec := make([]byte, 36)
	copy(rec, record6(x, y, z, 0, 0))
	binary.LittleEndian.PutUint16(rec[30:32], r)
	binary.LittleEndian.PutUint16(rec[32:34], g)
	binary.LittleEndian.PutUint16(rec[34:36], b)
	return rec
}
