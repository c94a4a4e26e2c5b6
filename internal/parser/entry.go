package parser

import (
	"encoding/binary"
)

// EntrySize is the on-disk size of one hierarchy entry record.
const EntrySize = 32

// pagePointCount marks an entry that points at another hierarchy page.
const pagePointCount = -1

// Entry is one 32-byte record of a hierarchy page. PointCount == -1 tags a
// sub-page entry; PointCount >= 0 tags a node entry pointing at a
// LAZ-compressed point chunk.
type Entry struct {
	Key        VoxelKey
	Offset     uint64
	ByteSize   int32
	PointCount int32
}

// IsPage reports whether the entry points at another hierarchy page.
func (e Entry) IsPage() bool {
	return e.PointCount == pagePointCount
}

// ParseEntry decodes one little-endian hierarchy entry.
func ParseEntry(b []byte) (Entry, error) {
	if len(b) < EntrySize {
		return Entry{}, &ErrBadHierarchyPage{
			Reason: "entry record shorter than 32 bytes",
		}
	}
	e := Entry{
		Key: VoxelKey{
			Depth: int32(binary.LittleEndian.Uint32(b[0:4])),
			X:     int32(binary.LittleEndian.Uint32(b[4:8])),
			Y:     int32(binary.LittleEndian.Uint32(b[8:12])),
			Z:     int32(binary.LittleEndian.Uint32(b[12:16])),
		},
		Offset:     binary.LittleEndian.Uint64(b[16:24]),
		ByteSize:   int32(binary.LittleEndian.Uint32(b[24:28])),
		PointCount: int32(binary.LittleEndian.Uint32(b[28:32])),
	}
	if e.PointCount < pagePointCount {
		return Entry{}, &ErrBadHierarchyPage{
			Key:    e.Key,
			Reason: "entry point count below -1",
		}
	}
	return e, nil
}

// Pack encodes the entry back into its 32-byte wire form.
func (e Entry) Pack() [EntrySize]byte {
	var b [EntrySize]byte
	binary.LittleEndian.PutUint32(b[0:4], uint32(e.Key.Depth))
	binary.LittleEndian.PutUint32(b[4:8], uint32(e.Key.X))
	binary.LittleEndian.PutUint32(b[8:12], uint32(e.Key.Y))
	binary.LittleEndian.PutUint32(b[12:16], uint32(e.Key.Z))
	binary.LittleEndian.PutUint64(b[16:24], e.Offset)
	binary.LittleEndian.PutUint32(b[24:28], uint32(e.ByteSize))
	binary.LittleEndian.PutUint32(b[28:32], uint32(e.PointCount))
	return b
}

// Node is a materialized node entry: a voxel whose point chunk lives at
// [Offset, Offset+ByteSize) in the file. PageKey records which hierarchy
// page declared it. Immutable once created.
type Node struct {
	Key        VoxelKey
	Offset     uint64
	ByteSize   int32
	PointCount int32
	PageKey    VoxelKey
}

// Page is one hierarchy page: a block of entries at [Offset,
// Offset+ByteSize). Entries are kept in file order with a key index for
// lookups; Loaded flips once and stays set.
type Page struct {
	Key      VoxelKey
	Offset   uint64
	ByteSize int32

	Loaded  bool
	entries []Entry
	index   map[VoxelKey]int
}

// Entries returns the page's records in file order. Empty until loaded.
func (p *Page) Entries() []Entry {
	return p.entries
}

// Lookup finds the entry for key within this page.
func (p *Page) Lookup(key VoxelKey) (Entry, bool) {
	i, ok := p.index[key]
	if !ok {
		return Entry{}, false
	}
	return p.entries[i], true
}

func (p *Page) setEntries(entries []Entry) {
	p.entries = entries
	p.index = make(map[VoxelKey]int, len(entries))
	for i, e := range entries {
		p.index[e.Key] = i
	}
	p.Loaded = true
}
