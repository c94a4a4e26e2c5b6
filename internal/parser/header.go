package parser

import (
	"encoding/binary"
	"io"
	"math"
	"strings"
)

// LasHeaderSize is the fixed size of a LAS 1.4 public header block.
const LasHeaderSize = 375

// vlrHeaderSize is the fixed size of a VLR header preceding its payload.
const vlrHeaderSize = 54

// LasHeader is the LAS 1.4 public header block.
//
// Only the fields the reader consumes are decoded; the layout follows the
// LAS 1.4 specification with all integers little-endian.
type LasHeader struct {
	FileSourceID       uint16
	GlobalEncoding     uint16
	VersionMajor       uint8
	VersionMinor       uint8
	SystemID           string
	GeneratingSoftware string
	CreationDay        uint16
	CreationYear       uint16
	HeaderSize         uint16
	OffsetToPoints     uint32
	NumberOfVLRs       uint32
	PointFormatID      uint8
	PointRecordLength  uint16
	NumberOfPoints     uint64

	XScale, YScale, ZScale    float64
	XOffset, YOffset, ZOffset float64
	MaxX, MinX                float64
	MaxY, MinY                float64
	MaxZ, MinZ                float64

	EvlrOffset uint64
	EvlrCount  uint32
}

// VLR is one Variable Length Record from the LAS header area.
type VLR struct {
	Reserved    uint16
	UserID      string
	RecordID    uint16
	Description string
	Data        []byte
}

// FileHeader bundles everything parsed from the header area of a COPC file:
// the LAS header, the COPC info VLR, and the optional WKT and extra-bytes
// VLRs.
type FileHeader struct {
	Las       LasHeader
	Copc      CopcInfo
	Wkt       string
	ExtraDims []ExtraDimension
	Vlrs      []VLR
}

// PointFormat returns the point data record format with the LAZ
// compression bit stripped.
func (h *LasHeader) PointFormat() uint8 {
	return h.PointFormatID & 0x3f
}

// ReadFileHeader reads the LAS header and all VLRs from the start of src
// and locates the COPC info, WKT and extra-bytes records.
//
// The COPC info VLR must be the first VLR, beginning at file offset 375.
func ReadFileHeader(src io.ReadSeeker) (*FileHeader, error) {
	header, err := readLasHeader(src)
	if err != nil {
		return nil, err
	}

	vlrs, err := readVlrs(src, header)
	if err != nil {
		return nil, err
	}

	fh := &FileHeader{Las: *header, Vlrs: vlrs}

	if len(vlrs) == 0 || !isCopcInfoVlr(vlrs[0]) {
		return nil, &ErrMissingCopcVlr{VlrCount: len(vlrs)}
	}
	info, err := ParseCopcInfo(vlrs[0].Data)
	if err != nil {
		return nil, err
	}
	fh.Copc = info

	for _, vlr := range vlrs[1:] {
		switch {
		case vlr.UserID == "LASF_Projection" && vlr.RecordID == 2112:
			fh.Wkt = strings.TrimRight(string(vlr.Data), "\x00")
		case vlr.UserID == "LASF_Spec" && vlr.RecordID == 4:
			dims, err := ParseExtraDimensions(vlr.Data)
			if err != nil {
				return nil, err
			}
			fh.ExtraDims = dims
		}
	}

	return fh, nil
}

func isCopcInfoVlr(vlr VLR) bool {
	return vlr.UserID == "copc" && vlr.RecordID == 1
}

// readLasHeader decodes the fixed 375-byte LAS 1.4 header block.
func readLasHeader(src io.ReadSeeker) (*LasHeader, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, &ErrRead{Offset: 0, Err: err}
	}
	buf := make([]byte, LasHeaderSize)
	if _, err := io.ReadFull(src, buf); err != nil {
		return nil, &ErrRead{Offset: 0, Err: err}
	}

	if string(buf[0:4]) != "LASF" {
		var got [4]byte
		copy(got[:], buf[0:4])
		return nil, &ErrInvalidSignature{Got: got}
	}

	h := &LasHeader{
		FileSourceID:       binary.LittleEndian.Uint16(buf[4:6]),
		GlobalEncoding:     binary.LittleEndian.Uint16(buf[6:8]),
		VersionMajor:       buf[24],
		VersionMinor:       buf[25],
		SystemID:           trimFixedString(buf[26:58]),
		GeneratingSoftware: trimFixedString(buf[58:90]),
		CreationDay:        binary.LittleEndian.Uint16(buf[90:92]),
		CreationYear:       binary.LittleEndian.Uint16(buf[92:94]),
		HeaderSize:         binary.LittleEndian.Uint16(buf[94:96]),
		OffsetToPoints:     binary.LittleEndian.Uint32(buf[96:100]),
		NumberOfVLRs:       binary.LittleEndian.Uint32(buf[100:104]),
		PointFormatID:      buf[104],
		PointRecordLength:  binary.LittleEndian.Uint16(buf[105:107]),

		XScale:  readF64(buf[131:]),
		YScale:  readF64(buf[139:]),
		ZScale:  readF64(buf[147:]),
		XOffset: readF64(buf[155:]),
		YOffset: readF64(buf[163:]),
		ZOffset: readF64(buf[171:]),
		MaxX:    readF64(buf[179:]),
		MinX:    readF64(buf[187:]),
		MaxY:    readF64(buf[195:]),
		MinY:    readF64(buf[203:]),
		MaxZ:    readF64(buf[211:]),
		MinZ:    readF64(buf[219:]),

		EvlrOffset: binary.LittleEndian.Uint64(buf[235:243]),
		EvlrCount:  binary.LittleEndian.Uint32(buf[243:247]),
	}

	if h.VersionMajor != 1 || h.VersionMinor != 4 {
		return nil, &ErrUnsupportedVersion{Major: h.VersionMajor, Minor: h.VersionMinor}
	}

	// LAS 1.4 keeps the legacy 32-bit point count for back compatibility;
	// the authoritative count is the 64-bit field.
	h.NumberOfPoints = binary.LittleEndian.Uint64(buf[247:255])
	if h.NumberOfPoints == 0 {
		h.NumberOfPoints = uint64(binary.LittleEndian.Uint32(buf[107:111]))
	}

	return h, nil
}

// readVlrs reads NumberOfVLRs records starting at HeaderSize.
func readVlrs(src io.ReadSeeker, h *LasHeader) ([]VLR, error) {
	offset := int64(h.HeaderSize)
	if _, err := src.Seek(offset, io.SeekStart); err != nil {
		return nil, &ErrRead{Offset: offset, Err: err}
	}

	vlrs := make([]VLR, 0, h.NumberOfVLRs)
	head := make([]byte, vlrHeaderSize)
	for i := uint32(0); i < h.NumberOfVLRs; i++ {
		if _, err := io.ReadFull(src, head); err != nil {
			return nil, &ErrRead{Offset: offset, Err: err}
		}
		vlr := VLR{
			Reserved:    binary.LittleEndian.Uint16(head[0:2]),
			UserID:      trimFixedString(head[2:18]),
			RecordID:    binary.LittleEndian.Uint16(head[18:20]),
			Description: trimFixedString(head[22:54]),
		}
		length := int(binary.LittleEndian.Uint16(head[20:22]))
		vlr.Data = make([]byte, length)
		if _, err := io.ReadFull(src, vlr.Data); err != nil {
			return nil, &ErrRead{Offset: offset + vlrHeaderSize, Err: err}
		}
		offset += vlrHeaderSize + int64(length)
		vlrs = append(vlrs, vlr)
	}
	return vlrs, nil
}

func trimFixedString(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

func readF64(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b[:8]))
}
