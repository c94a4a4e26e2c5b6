package copc

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/beetlebugorg/copc/internal/parser"
)

// Reader is the client API over one COPC file: it combines the hierarchy
// store, the chunk decompressor and the point cache, and answers spatial
// queries.
//
// The underlying byte source is a stateful seeker and the chunk decoder is
// not reentrant, so a Reader must be driven from one goroutine at a time.
type Reader struct {
	src    io.ReadSeeker
	closer io.Closer

	header *parser.FileHeader
	store  *parser.HierarchyStore
	decomp *parser.LazDecompressor
	cache  *PointCache
	logger *zap.Logger
}

// OpenFile opens a COPC file from disk.
func OpenFile(path string, opts ReaderOptions) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open COPC file: %w", err)
	}
	reader, err := NewReader(f, opts)
	if err != nil {
		f.Close()
		return nil, err
	}
	reader.closer = f
	return reader, nil
}

// NewReader builds a reader over any seekable byte source. The source must
// remain valid for the reader's lifetime.
func NewReader(src io.ReadSeeker, opts ReaderOptions) (*Reader, error) {
	if opts.CacheSizeMB <= 0 {
		return nil, &parser.ErrInvalidArgument{Name: "cache size", Reason: "must be positive"}
	}
	if opts.EstimatedBytesPerPoint <= 0 {
		return nil, &parser.ErrInvalidArgument{Name: "estimated bytes per point", Reason: "must be positive"}
	}
	factory := opts.ChunkDecoderFactory
	if factory == nil {
		factory = parser.NewStoredChunkDecoder
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	header, err := parser.ReadFileHeader(src)
	if err != nil {
		return nil, err
	}

	decomp, err := parser.NewLazDecompressor(&header.Las, header.ExtraDims, factory)
	if err != nil {
		return nil, err
	}

	cache, err := NewPointCacheMB(opts.CacheSizeMB, int64(opts.EstimatedBytesPerPoint))
	if err != nil {
		return nil, err
	}
	cache.SetLogger(logger)

	return &Reader{
		src:    src,
		header: header,
		store:  parser.NewHierarchyStore(src, header),
		decomp: decomp,
		cache:  cache,
		logger: logger,
	}, nil
}

// Close releases the underlying file when the reader owns one.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Header returns the LAS header.
func (r *Reader) Header() LasHeader {
	return r.header.Las
}

// CopcInfo returns the COPC info VLR payload.
func (r *Reader) CopcInfo() CopcInfo {
	return r.header.Copc
}

// Wkt returns the coordinate system WKT string, empty when the file
// carries no LASF_Projection VLR.
func (r *Reader) Wkt() string {
	return r.header.Wkt
}

// ExtraDimensions returns the declared extra-bytes dimensions.
func (r *Reader) ExtraDimensions() []ExtraDimension {
	return r.header.ExtraDims
}

// Vlrs returns all VLRs read from the header area.
func (r *Reader) Vlrs() []VLR {
	return r.header.Vlrs
}

// Cache returns the reader's point cache for statistics and the stride
// view.
func (r *Reader) Cache() *PointCache {
	return r.cache
}

// GetNode resolves a voxel key, loading hierarchy pages as needed.
// Returns (nil, nil) when the key has no node.
func (r *Reader) GetNode(key VoxelKey) (*Node, error) {
	return r.store.GetNode(key)
}

// GetAllNodes loads the whole hierarchy and returns every node.
func (r *Reader) GetAllNodes() ([]*Node, error) {
	return r.store.GetAllNodes()
}

// Traverse walks the octree with the supplied predicate and returns the
// approved (cached) and displayed (viewed) node sets in visit order.
func (r *Reader) Traverse(fn TraversalFunc) (cached, viewed []*Node, err error) {
	res, err := r.store.Traverse(fn)
	if err != nil {
		return nil, nil, err
	}
	return res.CachedNodes, res.ViewedNodes, nil
}

// GetPointDataCompressed reads a node's raw compressed chunk from the
// file. Nodes with no bytes yield an empty slice without touching the
// source.
func (r *Reader) GetPointDataCompressed(node *Node) ([]byte, error) {
	if node.ByteSize == 0 {
		return []byte{}, nil
	}
	if _, err := r.src.Seek(int64(node.Offset), io.SeekStart); err != nil {
		return nil, &parser.ErrRead{Offset: int64(node.Offset), Err: err}
	}
	buf := make([]byte, node.ByteSize)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		return nil, &parser.ErrRead{Offset: int64(node.Offset), Err: err}
	}
	return buf, nil
}

// GetNodePoints returns a node's decoded points through the cache,
// reading and decompressing the chunk on a miss.
func (r *Reader) GetNodePoints(node *Node) ([]Point, error) {
	return r.cache.GetOrLoad(node.Key, func() ([]Point, error) {
		return r.loadNode(node)
	})
}

// loadNode reads and decodes one node's chunk, bypassing the cache.
func (r *Reader) loadNode(node *Node) ([]Point, error) {
	if node.PointCount == 0 || node.ByteSize == 0 {
		return []Point{}, nil
	}
	compressed, err := r.GetPointDataCompressed(node)
	if err != nil {
		return nil, err
	}
	return r.decomp.Decompress(node.Key, compressed, int(node.PointCount))
}

// loadNodes runs the cache's batch load over nodes.
func (r *Reader) loadNodes(nodes []*Node) []Point {
	return r.cache.GetOrLoadNodes(nodes, r.loadNode)
}

// QueryBox returns all points of the nodes intersecting box, subject to
// the resolution cutoff (<= 0 disables it).
func (r *Reader) QueryBox(box Box, resolution float64) ([]Point, error) {
	return r.query(BoxPredicate(box, resolution))
}

// QuerySphere returns all points of the nodes intersecting the sphere.
func (r *Reader) QuerySphere(sphere Sphere, resolution float64) ([]Point, error) {
	return r.query(SpherePredicate(sphere, resolution))
}

// QueryWithinDistance returns all points of the nodes within distance of
// the given center point.
func (r *Reader) QueryWithinDistance(center r3.Vec, distance float64, resolution float64) ([]Point, error) {
	return r.QuerySphere(Sphere{Center: center, Radius: distance}, resolution)
}

// QueryFrustum returns all points of the nodes intersecting the frustum.
func (r *Reader) QueryFrustum(frustum Frustum, resolution float64) ([]Point, error) {
	return r.query(FrustumPredicate(frustum, resolution))
}

// QueryFrustumMatrix is QueryFrustum with the frustum extracted from a
// column-major 4x4 view-projection matrix.
func (r *Reader) QueryFrustumMatrix(m [16]float64, resolution float64) ([]Point, error) {
	return r.QueryFrustum(FrustumFromMatrix(m), resolution)
}

// query runs a traversal and loads the viewed nodes through the cache.
func (r *Reader) query(fn TraversalFunc) ([]Point, error) {
	res, err := r.store.Traverse(fn)
	if err != nil {
		return nil, err
	}
	return r.loadNodes(res.ViewedNodes), nil
}

// Update warms the cache with the given nodes without materializing a
// concatenated point array. degreeOfParallelism is accepted for API
// stability and ignored: the chunk decoder is not reentrant, so nodes are
// read and decoded sequentially. Per-node failures are logged and
// skipped.
func (r *Reader) Update(nodes []*Node, degreeOfParallelism int) {
	r.UpdateWithOptions(nodes, UpdateOptions{DegreeOfParallelism: degreeOfParallelism})
}

// UpdateWithOptions is Update with progress reporting and an optional
// error log.
func (r *Reader) UpdateWithOptions(nodes []*Node, opts UpdateOptions) {
	var missing []*Node
	for _, node := range nodes {
		if !r.cache.Contains(node.Key) {
			missing = append(missing, node)
		}
	}

	for i, node := range missing {
		points, err := r.loadNode(node)
		if err != nil {
			r.logger.Warn("skipping node during cache warm-up",
				zap.String("key", node.Key.String()),
				zap.Error(err))
			if opts.ErrorLog != nil {
				fmt.Fprintf(opts.ErrorLog, "Error warming node %s: %v\n", node.Key, err)
			}
		} else {
			r.cache.Put(node.Key, points)
		}
		if opts.Progress != nil {
			opts.Progress(i+1, len(missing))
		}
	}
}
