package copc

import (
	"github.com/dhconnelly/rtreego"
)

// NodeIndex is a 3-D R-tree over the bounds of materialized hierarchy
// nodes. Hosts that fire many repeated box queries against a fully
// discovered hierarchy avoid re-walking pages by querying the index
// instead.
//
// Build it once via Reader.BuildNodeIndex; the index holds node handles,
// not points, so it stays cheap next to the point cache.
type NodeIndex struct {
	rtree *rtreego.Rtree
	count int
}

// indexedNode wraps a node for R-tree storage.
type indexedNode struct {
	node   *Node
	bounds Box
}

// Bounds implements rtreego.Spatial.
func (n *indexedNode) Bounds() rtreego.Rect {
	return rectFromBox(n.bounds)
}

// rectFromBox converts a Box, padding degenerate extents: the R-tree
// requires non-zero dimensions.
func rectFromBox(b Box) rtreego.Rect {
	const epsilon = 1e-9
	lengths := []float64{
		b.Max.X - b.Min.X,
		b.Max.Y - b.Min.Y,
		b.Max.Z - b.Min.Z,
	}
	for i := range lengths {
		if lengths[i] < epsilon {
			lengths[i] = epsilon
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{b.Min.X, b.Min.Y, b.Min.Z}, lengths)
	return rect
}

// BuildNodeIndex loads the whole hierarchy and indexes every node's
// bounds.
func (r *Reader) BuildNodeIndex() (*NodeIndex, error) {
	nodes, err := r.GetAllNodes()
	if err != nil {
		return nil, err
	}

	rtree := rtreego.NewTree(3, 25, 50)
	for _, node := range nodes {
		rtree.Insert(&indexedNode{
			node:   node,
			bounds: node.Key.Bounds(&r.header.Las, &r.header.Copc),
		})
	}
	return &NodeIndex{rtree: rtree, count: len(nodes)}, nil
}

// Query returns all indexed nodes whose bounds intersect the box.
func (idx *NodeIndex) Query(box Box) []*Node {
	spatials := idx.rtree.SearchIntersect(rectFromBox(box))
	nodes := make([]*Node, 0, len(spatials))
	for _, s := range spatials {
		nodes = append(nodes, s.(*indexedNode).node)
	}
	return nodes
}

// Count returns how many nodes the index holds.
func (idx *NodeIndex) Count() int {
	return idx.count
}
