package parser

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// VoxelKey addresses one voxel of the COPC octree as (depth, x, y, z).
//
// The root of the octree is (0,0,0,0). At depth d the cube is split into
// 2^d cells per axis, so 0 <= x,y,z < 2^d for a valid key. Keys are
// comparable and used directly as map keys throughout the reader.
type VoxelKey struct {
	Depth int32
	X     int32
	Y     int32
	Z     int32
}

// RootKey returns the octree root (0,0,0,0).
func RootKey() VoxelKey {
	return VoxelKey{}
}

// InvalidKey returns the sentinel key (-1,-1,-1,-1) used where an
// operation has no defined result (e.g. the parent of the root).
func InvalidKey() VoxelKey {
	return VoxelKey{Depth: -1, X: -1, Y: -1, Z: -1}
}

// Valid reports whether all four components are non-negative.
func (k VoxelKey) Valid() bool {
	return k.Depth >= 0 && k.X >= 0 && k.Y >= 0 && k.Z >= 0
}

// String returns the "d-x-y-z" form used in log messages and tooling.
func (k VoxelKey) String() string {
	return fmt.Sprintf("%d-%d-%d-%d", k.Depth, k.X, k.Y, k.Z)
}

// Bisect returns the child of k in the given direction.
//
// Direction must be in [0,7]; its bits select the child octant as
// (xBit<<2)|(yBit<<1)|zBit. Out-of-range directions return the invalid key.
func (k VoxelKey) Bisect(direction int) VoxelKey {
	if direction < 0 || direction > 7 {
		return InvalidKey()
	}
	return VoxelKey{
		Depth: k.Depth + 1,
		X:     2*k.X + int32(direction>>2&1),
		Y:     2*k.Y + int32(direction>>1&1),
		Z:     2*k.Z + int32(direction&1),
	}
}

// Children returns the eight children of k in bisect direction order.
func (k VoxelKey) Children() [8]VoxelKey {
	var children [8]VoxelKey
	for dir := 0; dir < 8; dir++ {
		children[dir] = k.Bisect(dir)
	}
	return children
}

// Parent returns the key one level up, or the invalid key for the root.
func (k VoxelKey) Parent() VoxelKey {
	if k.Depth <= 0 {
		return InvalidKey()
	}
	return VoxelKey{Depth: k.Depth - 1, X: k.X / 2, Y: k.Y / 2, Z: k.Z / 2}
}

// ParentAtDepth returns the ancestor of k at the target depth.
//
// target must be in [0, k.Depth]; anything else returns the invalid key.
// ParentAtDepth(k.Depth) is the identity.
func (k VoxelKey) ParentAtDepth(target int32) VoxelKey {
	if target < 0 || target > k.Depth {
		return InvalidKey()
	}
	shift := k.Depth - target
	return VoxelKey{Depth: target, X: k.X >> shift, Y: k.Y >> shift, Z: k.Z >> shift}
}

// ChildOf reports whether k lies strictly inside the subtree of ancestor.
func (k VoxelKey) ChildOf(ancestor VoxelKey) bool {
	if k.Depth <= ancestor.Depth {
		return false
	}
	return k.ParentAtDepth(ancestor.Depth) == ancestor
}

// Bounds returns the axis-aligned box this voxel covers in world units.
//
// The octree cube is centered on the COPC center with edge 2*halfSize; the
// span at depth d is cubeSize / 2^d where cubeSize is the largest extent of
// the LAS header bounding box.
func (k VoxelKey) Bounds(header *LasHeader, info *CopcInfo) Box {
	cube := header.MaxX - header.MinX
	if dy := header.MaxY - header.MinY; dy > cube {
		cube = dy
	}
	if dz := header.MaxZ - header.MinZ; dz > cube {
		cube = dz
	}
	span := cube / float64(int64(1)<<k.Depth)
	min := r3.Vec{
		X: info.CenterX - info.HalfSize + float64(k.X)*span,
		Y: info.CenterY - info.HalfSize + float64(k.Y)*span,
		Z: info.CenterZ - info.HalfSize + float64(k.Z)*span,
	}
	return Box{
		Min: min,
		Max: r3.Vec{X: min.X + span, Y: min.Y + span, Z: min.Z + span},
	}
}

// Resolution returns the nominal point spacing of this voxel's node,
// spacing / 2^depth. Lower values mean finer detail.
func (k VoxelKey) Resolution(info *CopcInfo) float64 {
	return info.Spacing / float64(int64(1)<<k.Depth)
}

// Box is an axis-aligned bounding box in world coordinates.
type Box struct {
	Min r3.Vec
	Max r3.Vec
}

// Intersects reports whether b and other overlap (touching counts).
func (b Box) Intersects(other Box) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Within reports whether b lies entirely inside other.
func (b Box) Within(other Box) bool {
	return b.Min.X >= other.Min.X && b.Max.X <= other.Max.X &&
		b.Min.Y >= other.Min.Y && b.Max.Y <= other.Max.Y &&
		b.Min.Z >= other.Min.Z && b.Max.Z <= other.Max.Z
}

// Contains reports whether the point p is inside b.
func (b Box) Contains(p r3.Vec) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Center returns the midpoint of b.
func (b Box) Center() r3.Vec {
	return r3.Vec{
		X: (b.Min.X + b.Max.X) / 2,
		Y: (b.Min.Y + b.Max.Y) / 2,
		Z: (b.Min.Z + b.Max.Z) / 2,
	}
}
