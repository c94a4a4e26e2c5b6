package parser

import (
	"fmt"
	"io"
)

// ChunkDecoder turns one compressed point chunk into a sequence of raw
// point records. It is the seam between the reader and a LASzip
// implementation; a cgo binding over the laszip C API satisfies it, as
// does any pure decoder.
//
// Decoders hold private decode state and are not reentrant: one chunk at a
// time, GetPoint called exactly once per record, Close before reuse.
type ChunkDecoder interface {
	// Open prepares the decoder for one chunk of pointSize-byte records.
	Open(pointFormat uint8, pointSize int, compressed []byte) error

	// GetPoint returns the next raw record. The returned slice may be
	// reused by the following call.
	GetPoint() ([]byte, error)

	// Close releases per-chunk state. The decoder may be reopened.
	Close() error
}

// ChunkDecoderFactory produces a fresh decoder for one chunk.
type ChunkDecoderFactory func() ChunkDecoder

// StoredChunkDecoder reads chunks whose records are stored uncompressed,
// back to back. It serves tooling and tests, and stands in wherever the
// producing pipeline wrote raw records.
type StoredChunkDecoder struct {
	data      []byte
	pointSize int
	next      int
	open      bool
}

// NewStoredChunkDecoder returns a fresh stored-chunk decoder; its
// signature satisfies ChunkDecoderFactory.
func NewStoredChunkDecoder() ChunkDecoder {
	return &StoredChunkDecoder{}
}

// Open implements ChunkDecoder.
func (d *StoredChunkDecoder) Open(pointFormat uint8, pointSize int, compressed []byte) error {
	if d.open {
		return fmt.Errorf("chunk decoder already open")
	}
	if pointSize <= 0 {
		return fmt.Errorf("non-positive point size %d", pointSize)
	}
	if len(compressed)%pointSize != 0 {
		return fmt.Errorf("chunk length %d is not a multiple of point size %d",
			len(compressed), pointSize)
	}
	d.data = compressed
	d.pointSize = pointSize
	d.next = 0
	d.open = true
	return nil
}

// GetPoint implements ChunkDecoder.
func (d *StoredChunkDecoder) GetPoint() ([]byte, error) {
	if !d.open {
		return nil, fmt.Errorf("chunk decoder not open")
	}
	if d.next+d.pointSize > len(d.data) {
		return nil, io.EOF
	}
	rec := d.data[d.next : d.next+d.pointSize]
	d.next += d.pointSize
	return rec, nil
}

// Close implements ChunkDecoder.
func (d *StoredChunkDecoder) Close() error {
	d.data = nil
	d.open = false
	return nil
}
