// Package bvh builds a bounding volume hierarchy over a triangle mesh
// and answers ray/sphere/sweep queries against it, used both by the
// path tracers for visibility and by the level mesh builder for
// portal/3D-floor clipping.
package bvh

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/zdray-go/zdray/internal/mathutil"
)

// parallelSplitThreshold is the minimum triangle count a node must hold
// before its two child subtrees are built on separate goroutines. Below
// this, goroutine setup cost dominates any benefit.
const parallelSplitThreshold = 4096

// parallelDepthLimit bounds how many levels of the split recurse in
// parallel, keeping the goroutine count bounded to roughly 2^depth
// rather than one per node.
const parallelDepthLimit = 4

// Triangle is one BVH leaf primitive: three world-space vertices plus
// an opaque payload index (into the level mesh's surface/triangle list)
// the caller uses to resolve material and light-list data on a hit.
type Triangle struct {
	V0, V1, V2 mathutil.Vec3
	Payload    uint32
}

func (t Triangle) bounds() mathutil.AABB {
	b := mathutil.AABBFromPoint(t.V0)
	b = b.AddPoint(t.V1)
	b = b.AddPoint(t.V2)
	return b
}

func (t Triangle) centroid() mathutil.Vec3 {
	return t.V0.Add(t.V1).Add(t.V2).Scale(1.0 / 3.0)
}

// node is an internal BVH node (leaf when Count > 0).
type node struct {
	Bounds      mathutil.AABB
	Left, Right int32 // node indices; unused on a leaf
	Start       int32 // index into BVH.order
	Count       int32 // 0 on an interior node
}

const leafSize = 4

// BVH is a flattened binary tree over Triangles, addressed through
// order (a permutation of triangle indices) so leaves stay contiguous.
type BVH struct {
	Triangles []Triangle
	nodes     []node
	order     []int32
}

// Build constructs a BVH over tris using a longest-axis median split,
// recursing until a node holds leafSize or fewer triangles.
func Build(tris []Triangle) *BVH {
	b := &BVH{Triangles: tris}
	b.order = make([]int32, len(tris))
	for i := range b.order {
		b.order[i] = int32(i)
	}
	if len(tris) > 0 {
		b.build(0, int32(len(tris)))
	}
	return b
}

// build recursively partitions order[start:start+count] and returns the
// index of the node it created.
func (b *BVH) build(start, count int32) int32 {
	return b.buildDepth(start, count, 0)
}

func (b *BVH) buildDepth(start, count, depth int32) int32 {
	bounds := mathutil.EmptyAABB()
	for i := start; i < start+count; i++ {
		bounds = bounds.Union(b.Triangles[b.order[i]].bounds())
	}

	idx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node{Bounds: bounds})

	if count <= leafSize {
		b.nodes[idx].Start = start
		b.nodes[idx].Count = count
		return idx
	}

	axis := bounds.LongestAxis()
	slice := b.order[start : start+count]
	sort.Slice(slice, func(i, j int) bool {
		ci := b.Triangles[slice[i]].centroid()
		cj := b.Triangles[slice[j]].centroid()
		return axisValue(ci, axis) < axisValue(cj, axis)
	})

	mid := count / 2

	var left, right int32
	if count >= parallelSplitThreshold && depth < parallelDepthLimit {
		left, right = b.buildChildrenParallel(start, mid, start+mid, count-mid, depth+1)
	} else {
		left = b.buildDepth(start, mid, depth+1)
		right = b.buildDepth(start+mid, count-mid, depth+1)
	}

	b.nodes[idx].Left = left
	b.nodes[idx].Right = right
	b.nodes[idx].Count = 0
	return idx
}

// buildChildrenParallel builds the left and right subtrees concurrently
// via errgroup. Each side is built into its own scratch BVH (so the two
// goroutines never append to the shared b.nodes slice at once), then
// spliced into b.nodes with its node indices rebased by the splice
// offset.
func (b *BVH) buildChildrenParallel(leftStart, leftCount, rightStart, rightCount, depth int32) (int32, int32) {
	var leftSub, rightSub *BVH
	var g errgroup.Group

	g.Go(func() error {
		leftSub = &BVH{Triangles: b.Triangles, order: append([]int32(nil), b.order[leftStart:leftStart+leftCount]...)}
		leftSub.buildDepth(0, leftCount, depth)
		return nil
	})
	g.Go(func() error {
		rightSub = &BVH{Triangles: b.Triangles, order: append([]int32(nil), b.order[rightStart:rightStart+rightCount]...)}
		rightSub.buildDepth(0, rightCount, depth)
		return nil
	})
	_ = g.Wait()

	copy(b.order[leftStart:leftStart+leftCount], leftSub.order)
	copy(b.order[rightStart:rightStart+rightCount], rightSub.order)

	leftRoot := b.spliceSubtree(leftSub, leftStart)
	rightRoot := b.spliceSubtree(rightSub, rightStart)
	return leftRoot, rightRoot
}

// spliceSubtree appends sub's nodes into b.nodes, rebasing every Start
// (by startOffset, since sub was built against a zero-based order
// slice) and every Left/Right child index (by the splice point).
func (b *BVH) spliceSubtree(sub *BVH, startOffset int32) int32 {
	base := int32(len(b.nodes))
	for _, n := range sub.nodes {
		rebased := n
		rebased.Start += startOffset
		if rebased.Count == 0 {
			rebased.Left += base
			rebased.Right += base
		}
		b.nodes = append(b.nodes, rebased)
	}
	return base
}

func axisValue(v mathutil.Vec3, axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}
