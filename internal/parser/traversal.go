package parser

// TraversalContext describes the entry a traversal predicate is being
// consulted about.
type TraversalContext struct {
	Key        VoxelKey
	Bounds     Box
	IsPage     bool
	PointCount int32
	Header     *LasHeader
	Info       *CopcInfo
}

// NodeResolution returns spacing / 2^depth for the entry's key.
func (c *TraversalContext) NodeResolution() float64 {
	return c.Key.Resolution(c.Info)
}

// TraversalDecision is the predicate's verdict for one entry.
//
// For a node entry, Approve adds the node to the cached set and Display to
// the viewed set; Descend continues into the node's children. For a page
// entry only Descend is consulted: true loads the page and walks into it,
// false prunes the whole subtree without reading it.
type TraversalDecision struct {
	Approve bool
	Display bool
	Descend bool
}

// TraversalFunc decides, per entry, how the octree walk proceeds. Callers
// curry query state (box, frustum, resolution cutoff) into the closure.
type TraversalFunc func(ctx *TraversalContext) TraversalDecision

// TraversalResult carries the two result sets of a traversal in visit
// order.
type TraversalResult struct {
	CachedNodes []*Node
	ViewedNodes []*Node
}

// Traverse walks the octree from the root, consulting fn at every entry.
// Hierarchy pages are loaded only when the walk descends into them.
func (s *HierarchyStore) Traverse(fn TraversalFunc) (*TraversalResult, error) {
	root, err := s.LoadRootPage()
	if err != nil {
		return nil, err
	}
	res := &TraversalResult{}
	if err := s.visit(root, RootKey(), fn, res); err != nil {
		return nil, err
	}
	return res, nil
}

// visit resolves key within page and applies the predicate. Children of a
// node are visited in bisect direction order; a page entry for the same
// key redirects the walk into the sub-page.
func (s *HierarchyStore) visit(page *Page, key VoxelKey, fn TraversalFunc, res *TraversalResult) error {
	entry, ok := page.Lookup(key)
	if !ok {
		return nil
	}

	if entry.IsPage() {
		ctx := s.entryContext(entry, true)
		if !fn(&ctx).Descend {
			return nil
		}
		sub := s.pages[entry.Key]
		if err := s.LoadPage(sub); err != nil {
			return err
		}
		return s.visit(sub, key, fn, res)
	}

	ctx := s.entryContext(entry, false)
	decision := fn(&ctx)
	node := s.nodes[key]
	if decision.Approve {
		res.CachedNodes = append(res.CachedNodes, node)
	}
	if decision.Display {
		res.ViewedNodes = append(res.ViewedNodes, node)
	}
	if !decision.Descend {
		return nil
	}
	for _, child := range key.Children() {
		if err := s.visit(page, child, fn, res); err != nil {
			return err
		}
	}
	return nil
}

func (s *HierarchyStore) entryContext(e Entry, isPage bool) TraversalContext {
	return TraversalContext{
		Key:        e.Key,
		Bounds:     e.Key.Bounds(&s.header.Las, &s.header.Copc),
		IsPage:     isPage,
		PointCount: e.PointCount,
		Header:     &s.header.Las,
		Info:       &s.header.Copc,
	}
}
