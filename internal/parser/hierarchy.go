package parser

import (
	"io"
)

// HierarchyStore resolves voxel keys to hierarchy nodes, loading hierarchy
// pages from the file on demand and caching both pages and nodes.
//
// The store shares the file's seekable byte source with the rest of the
// reader; all methods must run from a single goroutine at a time.
type HierarchyStore struct {
	src    io.ReadSeeker
	header *FileHeader

	pages map[VoxelKey]*Page
	nodes map[VoxelKey]*Node
	root  *Page
}

// NewHierarchyStore creates a store over src for the given file header.
func NewHierarchyStore(src io.ReadSeeker, header *FileHeader) *HierarchyStore {
	return &HierarchyStore{
		src:    src,
		header: header,
		pages:  make(map[VoxelKey]*Page),
		nodes:  make(map[VoxelKey]*Node),
	}
}

// Header returns the file header the store was built from.
func (s *HierarchyStore) Header() *FileHeader {
	return s.header
}

// LoadRootPage loads (once) and returns the root hierarchy page at the
// offset recorded in the COPC info VLR.
func (s *HierarchyStore) LoadRootPage() (*Page, error) {
	if s.root == nil {
		root := &Page{
			Key:      RootKey(),
			Offset:   s.header.Copc.RootHierarchyOffset,
			ByteSize: int32(s.header.Copc.RootHierarchySize),
		}
		if err := s.LoadPage(root); err != nil {
			return nil, err
		}
		s.root = root
		s.pages[root.Key] = root
	}
	return s.root, nil
}

// LoadPage reads and parses the page's entries. Idempotent: a loaded page
// is returned as-is. On any error the store is left untouched.
func (s *HierarchyStore) LoadPage(page *Page) error {
	if page.Loaded {
		return nil
	}
	if page.ByteSize%EntrySize != 0 {
		return &ErrBadHierarchyPage{
			Key:    page.Key,
			Reason: "byte size is not a multiple of 32",
		}
	}

	buf := make([]byte, page.ByteSize)
	if _, err := s.src.Seek(int64(page.Offset), io.SeekStart); err != nil {
		return &ErrRead{Offset: int64(page.Offset), Err: err}
	}
	if _, err := io.ReadFull(s.src, buf); err != nil {
		return &ErrRead{Offset: int64(page.Offset), Err: err}
	}

	// Parse everything before touching the caches so a bad entry cannot
	// leave a half-inserted page behind.
	entries := make([]Entry, 0, len(buf)/EntrySize)
	for off := 0; off < len(buf); off += EntrySize {
		e, err := ParseEntry(buf[off : off+EntrySize])
		if err != nil {
			return err
		}
		entries = append(entries, e)
	}

	page.setEntries(entries)
	for _, e := range entries {
		if e.IsPage() {
			if _, ok := s.pages[e.Key]; !ok {
				s.pages[e.Key] = &Page{Key: e.Key, Offset: e.Offset, ByteSize: e.ByteSize}
			}
			continue
		}
		s.nodes[e.Key] = &Node{
			Key:        e.Key,
			Offset:     e.Offset,
			ByteSize:   e.ByteSize,
			PointCount: e.PointCount,
			PageKey:    page.Key,
		}
	}
	return nil
}

// GetNode resolves key to its node, descending from the root page and
// loading sub-pages along the way. Returns (nil, nil) when the key is not
// present in the hierarchy.
func (s *HierarchyStore) GetNode(key VoxelKey) (*Node, error) {
	if !key.Valid() {
		return nil, nil
	}
	if n, ok := s.nodes[key]; ok {
		return n, nil
	}

	page, err := s.LoadRootPage()
	if err != nil {
		return nil, err
	}
	for page != nil {
		if err := s.LoadPage(page); err != nil {
			return nil, err
		}
		if n, ok := s.nodes[key]; ok {
			return n, nil
		}

		// Not declared directly in this page: descend into the sub-page
		// whose subtree contains the key.
		var next *Page
		for _, e := range page.Entries() {
			if !e.IsPage() {
				continue
			}
			if key == e.Key || key.ChildOf(e.Key) {
				next = s.pages[e.Key]
				break
			}
		}
		page = next
	}
	return nil, nil
}

// GetAllNodes loads every hierarchy page depth-first and returns all nodes.
// The order of the result is an implementation detail.
func (s *HierarchyStore) GetAllNodes() ([]*Node, error) {
	root, err := s.LoadRootPage()
	if err != nil {
		return nil, err
	}
	var nodes []*Node
	if err := s.collectNodes(root, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func (s *HierarchyStore) collectNodes(page *Page, nodes *[]*Node) error {
	if err := s.LoadPage(page); err != nil {
		return err
	}
	for _, e := range page.Entries() {
		if e.IsPage() {
			if err := s.collectNodes(s.pages[e.Key], nodes); err != nil {
				return err
			}
			continue
		}
		*nodes = append(*nodes, s.nodes[e.Key])
	}
	return nil
}

// PageCount returns how many hierarchy pages are known to the store,
// loaded or not.
func (s *HierarchyStore) PageCount() int {
	return len(s.pages)
}

// LoadedPageCount returns how many hierarchy pages have been read from the
// file.
func (s *HierarchyStore) LoadedPageCount() int {
	n := 0
	for _, p := range s.pages {
		if p.Loaded {
			n++
		}
	}
	return n
}
