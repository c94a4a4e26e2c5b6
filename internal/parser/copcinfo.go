package parser

import (
	"encoding/binary"
	"math"
)

// CopcInfoSize is the fixed payload size of the copc/1 info VLR.
const CopcInfoSize = 160

// CopcInfo is the payload of the COPC info VLR: the octree cube, the root
// point spacing, the location of the root hierarchy page, and the GPS time
// range of the file.
type CopcInfo struct {
	CenterX  float64
	CenterY  float64
	CenterZ  float64
	HalfSize float64
	Spacing  float64

	RootHierarchyOffset uint64
	RootHierarchySize   uint64

	GpsTimeMin float64
	GpsTimeMax float64
}

// ParseCopcInfo decodes the 160-byte copc/1 VLR payload.
func ParseCopcInfo(data []byte) (CopcInfo, error) {
	if len(data) != CopcInfoSize {
		return CopcInfo{}, &ErrBadVlrLength{
			UserID:   "copc",
			RecordID: 1,
			Got:      len(data),
			Want:     CopcInfoSize,
		}
	}
	return CopcInfo{
		CenterX:             readF64(data[0:]),
		CenterY:             readF64(data[8:]),
		CenterZ:             readF64(data[16:]),
		HalfSize:            readF64(data[24:]),
		Spacing:             readF64(data[32:]),
		RootHierarchyOffset: binary.LittleEndian.Uint64(data[40:48]),
		RootHierarchySize:   binary.LittleEndian.Uint64(data[48:56]),
		GpsTimeMin:          readF64(data[56:]),
		GpsTimeMax:          readF64(data[64:]),
	}, nil
}

// ToBytes re-encodes the info into a 160-byte payload. The trailing 88
// reserved bytes are zero.
func (c CopcInfo) ToBytes() []byte {
	buf := make([]byte, CopcInfoSize)
	putF64(buf[0:], c.CenterX)
	putF64(buf[8:], c.CenterY)
	putF64(buf[16:], c.CenterZ)
	putF64(buf[24:], c.HalfSize)
	putF64(buf[32:], c.Spacing)
	binary.LittleEndian.PutUint64(buf[40:48], c.RootHierarchyOffset)
	binary.LittleEndian.PutUint64(buf[48:56], c.RootHierarchySize)
	putF64(buf[56:], c.GpsTimeMin)
	putF64(buf[64:], c.GpsTimeMax)
	return buf
}

func putF64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b[:8], math.Float64bits(v))
}
