// Package copc reads Cloud Optimized Point Cloud (COPC) files.
//
// A COPC file is a LAS 1.4 / LAZ file whose VLRs embed a sparse octree
// index over the point data. This package discovers that octree lazily,
// answers spatial queries (box, sphere, frustum) with a level-of-detail
// cutoff, decompresses point chunks on demand, and keeps decoded points in
// a memory-bounded LRU cache shaped for an interactive renderer.
//
// # Basic Usage
//
//	reader, err := copc.OpenFile("lidar.copc.laz", copc.DefaultReaderOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reader.Close()
//
//	fmt.Printf("%d points, spacing %.2f\n",
//	    reader.Header().NumberOfPoints, reader.CopcInfo().Spacing)
//
// # Rendering Workflow
//
// A frame asks for the nodes visible in the camera frustum at the desired
// resolution, then uploads the cache's flattened stride view:
//
//	frustum := copc.FrustumFromMatrix(viewProjection)
//	points, err := reader.QueryFrustum(frustum, 0.5)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	stride := reader.Cache().StrideData(reader.ExtraDimensions())
//	uploadVertexBuffers(stride.Positions, stride.Colors, stride.Intensities)
//
// # Custom Traversal
//
// Queries are predicate-driven; any walk of the octree can be expressed by
// currying state into a TraversalFunc:
//
//	cached, viewed, err := reader.Traverse(func(ctx *copc.TraversalContext) copc.TraversalDecision {
//	    near := ctx.Bounds.Intersects(region)
//	    return copc.TraversalDecision{Approve: near, Display: near, Descend: near}
//	})
//
// # Concurrency
//
// A Reader and everything it owns (hierarchy store, cache, decompressor)
// is single-threaded by design: the byte source is a stateful seeker, the
// chunk decoder is not reentrant, and every cache read splices the LRU
// list. Callers drive one Reader from one goroutine at a time.
package copc
