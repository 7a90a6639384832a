// Package bsp builds a binary space partition tree over a level's lines,
// the structure the renderer (and, for this pipeline, the blockmap and
// visibility-adjacent stages) use to order and clip map geometry.
package bsp

import "github.com/zdray-go/zdray/internal/mathutil"

// NoLine marks a Seg as a synthetic GL miniseg running along a BSP
// partition rather than an actual linedef side.
const NoLine = ^uint32(0)

// Seg is one directed fragment of a linedef's side, bounded by two
// vertex indices into the tree's combined original+extra vertex table.
// A miniseg (Line == NoLine) instead runs along the partition line that
// split its subtree, closing off the subsector's boundary for the GL
// node variant; Side then records which half of the split it bounds
// (0 = front, 1 = back) rather than a linedef side.
type Seg struct {
	V1, V2      uint32
	Line        uint32
	Side        uint8 // 0 = front, 1 = back
	Partner     int32 // index of the seg on the opposite side of a partition, -1 if none
	Angle       float64
	Offset      float64
	MinisegPair int32 // groups a miniseg with its counterpart on the other side of the split, -1 for ordinary segs
}

// SubSector is a convex leaf: a contiguous run of segs in Tree.Segs,
// plus the parallel (longer, miniseg-inclusive) run in Tree.GLSegs.
type SubSector struct {
	FirstSeg   uint32
	NumSegs    uint32
	FirstGLSeg uint32
	NumGLSeg   uint32
}

// Node is one interior BSP node: a partition line plus two children,
// each either a node index or, with the high bit set, a subsector index.
type Node struct {
	X, Y, DX, DY float64
	BBox         [2]mathutil.AABB // [front, back]
	Children     [2]int32
}

// SubSectorFlag marks a Node.Children entry as a subsector index rather
// than a node index, mirroring the classic/GL node format's convention.
const SubSectorFlag = int32(1) << 31

// Tree is the complete built BSP: nodes, leaf subsectors, the classic
// segs, the GL variant's miniseg-inclusive segs, and the extra vertices
// introduced by partition splits and miniseg endpoints (appended after
// the level's own Vertexes in a combined addressing space starting at
// len(Vertexes)).
type Tree struct {
	Nodes         []Node
	SubSectors    []SubSector
	Segs          []Seg
	GLSegs        []Seg
	ExtraVertices []mathutil.Vec2
}

// VertexCount is how many vertices (original + extra) this tree addresses.
func (t *Tree) VertexCount(originalVertexCount int) int {
	return originalVertexCount + len(t.ExtraVertices)
}
