package copc

// Preset traversal predicates for the common spatial queries. Each
// combines an intersection test on the entry's bounds with the resolution
// cutoff: a node is taken when spacing / 2^depth <= resolution; a
// non-positive resolution disables the cutoff.
//
// Pages are descended into whenever their bounds pass the spatial test;
// subtrees that fail it are pruned without loading their pages.

// BoxPredicate selects nodes whose bounds intersect the query box.
func BoxPredicate(box Box, resolution float64) TraversalFunc {
	return spatialPredicate(func(b Box) bool { return b.Intersects(box) }, resolution)
}

// SpherePredicate selects nodes whose bounds intersect the sphere.
func SpherePredicate(sphere Sphere, resolution float64) TraversalFunc {
	return spatialPredicate(sphere.IntersectsBox, resolution)
}

// FrustumPredicate selects nodes whose bounds intersect the frustum.
func FrustumPredicate(frustum Frustum, resolution float64) TraversalFunc {
	return spatialPredicate(frustum.IntersectsBox, resolution)
}

// ResolutionPredicate selects every node passing only the resolution
// cutoff, regardless of position.
func ResolutionPredicate(resolution float64) TraversalFunc {
	return spatialPredicate(func(Box) bool { return true }, resolution)
}

func spatialPredicate(intersects func(Box) bool, resolution float64) TraversalFunc {
	return func(ctx *TraversalContext) TraversalDecision {
		if !intersects(ctx.Bounds) {
			return TraversalDecision{}
		}
		if ctx.IsPage {
			return TraversalDecision{Descend: true}
		}
		take := resolution <= 0 || ctx.NodeResolution() <= resolution
		return TraversalDecision{Approve: take, Display: take, Descend: true}
	}
}
