package copc

import (
	"container/list"
	"time"

	"go.uber.org/zap"

	"github.com/beetlebugorg/copc/internal/parser"
)

// arrayOverheadBytes is the fixed per-entry slice overhead added to the
// memory estimate of every cached node.
const arrayOverheadBytes = 24

// PointCache keeps decoded point chunks in memory under an LRU policy,
// keyed by voxel key and bounded by an estimated byte budget.
//
// Entries live in a doubly-linked list ordered most-recent-first; the map
// holds non-owning handles into that list, so every entry has exactly one
// owner. Reads splice the hit entry to the head, which makes the cache
// single-threaded by contract (see the package documentation).
//
// Memory accounting is an estimate fixed at insertion:
// arrayOverheadBytes + pointCount * bytesPerPoint.
//
// Example:
//
//	cache, err := copc.NewPointCacheMB(512, 100)
//	points, err := cache.GetOrLoad(node.Key, func() ([]copc.Point, error) {
//	    return decompress(node)
//	})
type PointCache struct {
	maxMemory     int64
	usedMemory    int64
	bytesPerPoint int64

	entries map[VoxelKey]*cacheEntry
	lru     *list.List // most recent at front

	hits      int64
	misses    int64
	evictions int64

	strideDirty bool
	stride      *StrideData

	logger *zap.Logger
}

// cacheEntry tracks one cached chunk and its LRU position.
type cacheEntry struct {
	key          VoxelKey
	points       []Point
	memorySize   int64
	element      *list.Element
	lastAccessed time.Time
	accessCount  int
}

// NewPointCache creates a cache capped at maxMemoryBytes, accounting
// bytesPerPoint per cached point. Both must be positive.
func NewPointCache(maxMemoryBytes, bytesPerPoint int64) (*PointCache, error) {
	if maxMemoryBytes <= 0 {
		return nil, &parser.ErrInvalidArgument{Name: "cache size", Reason: "must be positive"}
	}
	if bytesPerPoint <= 0 {
		return nil, &parser.ErrInvalidArgument{Name: "bytes per point", Reason: "must be positive"}
	}
	return &PointCache{
		maxMemory:     maxMemoryBytes,
		bytesPerPoint: bytesPerPoint,
		entries:       make(map[VoxelKey]*cacheEntry),
		lru:           list.New(),
		strideDirty:   true,
		logger:        zap.NewNop(),
	}, nil
}

// NewPointCacheMB is NewPointCache with the cap given in megabytes.
func NewPointCacheMB(megabytes int, bytesPerPoint int64) (*PointCache, error) {
	return NewPointCache(int64(megabytes)*1024*1024, bytesPerPoint)
}

// SetLogger replaces the cache's logger for batch-load warnings.
func (c *PointCache) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// TryGet returns the cached points for key, promoting the entry to
// most-recently-used. The returned slice is shared with the cache and must
// be treated as immutable. Hits do not allocate.
func (c *PointCache) TryGet(key VoxelKey) ([]Point, bool) {
	entry, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	entry.accessCount++
	entry.lastAccessed = time.Now()
	c.lru.MoveToFront(entry.element)
	return entry.points, true
}

// Put inserts points under key. An entry larger than the whole cache is
// silently dropped. An existing entry for the key is replaced; tail
// entries are evicted until the new entry fits.
func (c *PointCache) Put(key VoxelKey, points []Point) {
	size := arrayOverheadBytes + int64(len(points))*c.bytesPerPoint
	if size > c.maxMemory {
		return
	}

	if old, ok := c.entries[key]; ok {
		c.removeEntry(old)
	}
	for c.usedMemory+size > c.maxMemory && c.lru.Len() > 0 {
		c.evictLRU()
	}

	entry := &cacheEntry{
		key:          key,
		points:       points,
		memorySize:   size,
		lastAccessed: time.Now(),
		accessCount:  1,
	}
	entry.element = c.lru.PushFront(entry)
	c.entries[key] = entry
	c.usedMemory += size
	c.strideDirty = true
}

// Remove drops the entry for key, if present.
func (c *PointCache) Remove(key VoxelKey) {
	if entry, ok := c.entries[key]; ok {
		c.removeEntry(entry)
		c.strideDirty = true
	}
}

// Clear drops every entry.
func (c *PointCache) Clear() {
	c.entries = make(map[VoxelKey]*cacheEntry)
	c.lru.Init()
	c.usedMemory = 0
	c.strideDirty = true
}

// removeEntry unlinks an entry from both the list and the map.
func (c *PointCache) removeEntry(entry *cacheEntry) {
	c.lru.Remove(entry.element)
	delete(c.entries, entry.key)
	c.usedMemory -= entry.memorySize
}

// evictLRU removes the least recently used entry.
func (c *PointCache) evictLRU() {
	elem := c.lru.Back()
	if elem == nil {
		return
	}
	c.removeEntry(elem.Value.(*cacheEntry))
	c.evictions++
	c.strideDirty = true
}

// GetOrLoad returns cached points for key or loads, caches and returns
// them. The loader typically decompresses the node's chunk.
func (c *PointCache) GetOrLoad(key VoxelKey, loader func() ([]Point, error)) ([]Point, error) {
	if points, ok := c.TryGet(key); ok {
		return points, nil
	}
	points, err := loader()
	if err != nil {
		return nil, err
	}
	c.Put(key, points)
	return points, nil
}

// GetOrLoadNodes returns the concatenated points of all nodes, serving
// hits first and then loading misses sequentially. A loader failure on one
// node is logged and skipped; a single bad chunk must not poison a frame.
func (c *PointCache) GetOrLoadNodes(nodes []*Node, loader func(*Node) ([]Point, error)) []Point {
	var out []Point
	var missing []*Node
	for _, node := range nodes {
		if points, ok := c.TryGet(node.Key); ok {
			out = append(out, points...)
		} else {
			missing = append(missing, node)
		}
	}
	for _, node := range missing {
		points, err := loader(node)
		if err != nil {
			c.logger.Warn("skipping node after load failure",
				zap.String("key", node.Key.String()),
				zap.Error(err))
			continue
		}
		c.Put(node.Key, points)
		out = append(out, points...)
	}
	return out
}

// Contains reports whether key is cached, without touching LRU order or
// statistics.
func (c *PointCache) Contains(key VoxelKey) bool {
	_, ok := c.entries[key]
	return ok
}

// Stats returns a snapshot of cache statistics.
func (c *PointCache) Stats() CacheStats {
	stats := CacheStats{
		Count:              len(c.entries),
		CurrentMemoryBytes: c.usedMemory,
		MaxMemoryBytes:     c.maxMemory,
		TotalHits:          c.hits,
		TotalMisses:        c.misses,
		TotalEvictions:     c.evictions,
	}
	if c.maxMemory > 0 {
		stats.MemoryUsagePercent = float64(c.usedMemory) / float64(c.maxMemory) * 100
	}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// CacheStats holds point cache metrics.
type CacheStats struct {
	Count              int
	CurrentMemoryBytes int64
	MaxMemoryBytes     int64
	MemoryUsagePercent float64
	TotalHits          int64
	TotalMisses        int64
	TotalEvictions     int64
	HitRate            float64
}
