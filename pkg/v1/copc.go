package copc

import (
	"github.com/beetlebugorg/copc/internal/parser"
)

// The value types of the hot path are declared in the internal parsing
// package and aliased here: decoded chunks hold millions of points per
// frame, so the facade re-exports rather than copies at the boundary.

// VoxelKey addresses one voxel of the octree as (depth, x, y, z).
type VoxelKey = parser.VoxelKey

// Box is an axis-aligned bounding box in world coordinates.
type Box = parser.Box

// Node is a hierarchy entry pointing at a compressed point chunk.
type Node = parser.Node

// Point is one decoded point record.
type Point = parser.Point

// LasHeader is the LAS 1.4 public header block.
type LasHeader = parser.LasHeader

// CopcInfo is the payload of the copc/1 info VLR.
type CopcInfo = parser.CopcInfo

// VLR is one Variable Length Record from the LAS header area.
type VLR = parser.VLR

// ExtraDimension describes one custom per-point attribute.
type ExtraDimension = parser.ExtraDimension

// TraversalContext describes the entry a predicate is consulted about.
type TraversalContext = parser.TraversalContext

// TraversalDecision is the predicate's verdict for one entry.
type TraversalDecision = parser.TraversalDecision

// TraversalFunc decides, per entry, how an octree walk proceeds.
type TraversalFunc = parser.TraversalFunc

// ChunkDecoder is the LASzip-compatible chunk decoding contract.
type ChunkDecoder = parser.ChunkDecoder

// ChunkDecoderFactory produces a fresh decoder for one chunk.
type ChunkDecoderFactory = parser.ChunkDecoderFactory

// RootKey returns the octree root (0,0,0,0).
func RootKey() VoxelKey {
	return parser.RootKey()
}

// InvalidKey returns the sentinel key (-1,-1,-1,-1).
func InvalidKey() VoxelKey {
	return parser.InvalidKey()
}
