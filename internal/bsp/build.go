package bsp

import (
	"errors"
	"math/rand"

	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

// ErrNodeBuildFailed is returned when the recursion exceeds maxDepth
// without converging on a leaf, which only happens on self-referencing
// or otherwise degenerate line geometry.
var ErrNodeBuildFailed = errors.New("bsp: node build exceeded max depth")

const maxDepth = 32

type builder struct {
	lvl      *level.Level
	cfg      config.NodesConfig
	extra    []mathutil.Vec2
	nodes    []Node
	subs     []SubSector
	segs     []Seg // classic segs: one per linedef side, never a miniseg
	glSegs   []Seg // GL segs: segs plus the minisegs closing each partition split
	rng      *rand.Rand
	nextPair int32
}

// Build partitions lvl's linedefs into a BSP tree using cfg's splitter
// heuristics. Node/bbox structure is shared by the classic and GL
// variants; the GL variant's seg list additionally carries the
// minisegs that close off each subsector along its partition splits,
// ready for internal/output's ZNODES and GL_* encoders.
func Build(lvl *level.Level, cfg config.NodesConfig) (*Tree, error) {
	b := &builder{lvl: lvl, cfg: cfg, rng: rand.New(rand.NewSource(1))}

	initial := b.initialSegs()
	_, _, err := b.recurse(initial, initial, 0)
	if err != nil {
		return nil, err
	}

	b.resolveMinisegPartners()

	return &Tree{
		Nodes:         b.nodes,
		SubSectors:    b.subs,
		Segs:          b.segs,
		GLSegs:        b.glSegs,
		ExtraVertices: b.extra,
	}, nil
}

// resolveMinisegPartners pairs up the synthetic GL minisegs emitted
// along each partition split: every pair shares a MinisegPair id, one
// bounding the front subtree (Side 0) and one the back (Side 1). A
// split may have been cut again by a deeper partition, leaving more
// than one fragment per side; fragments are paired off in emission
// order, which is the best correspondence available without carrying
// per-fragment ancestry through the recursion.
func (b *builder) resolveMinisegPartners() {
	groups := map[int32][2][]int{}
	for i, s := range b.glSegs {
		if s.MinisegPair < 0 {
			continue
		}
		g := groups[s.MinisegPair]
		g[s.Side] = append(g[s.Side], i)
		groups[s.MinisegPair] = g
	}
	for _, g := range groups {
		front, back := g[0], g[1]
		n := len(front)
		if len(back) < n {
			n = len(back)
		}
		for i := 0; i < n; i++ {
			b.glSegs[front[i]].Partner = int32(back[i])
			b.glSegs[back[i]].Partner = int32(front[i])
		}
	}
}

// initialSegs emits one seg per existing side of every linedef: one for
// a one-sided line's single side, two (opposite direction) for a
// two-sided line.
func (b *builder) initialSegs() []Seg {
	var out []Seg
	for lineIdx := range b.lvl.Lines {
		l := &b.lvl.Lines[lineIdx]
		if l.SideNum[0] != level.NoIndex {
			out = append(out, Seg{V1: l.V1, V2: l.V2, Line: uint32(lineIdx), Side: 0, Partner: -1, MinisegPair: -1})
		}
		if l.SideNum[1] != level.NoIndex {
			out = append(out, Seg{V1: l.V2, V2: l.V1, Line: uint32(lineIdx), Side: 1, Partner: -1, MinisegPair: -1})
		}
	}
	return out
}

// recurse returns the child slot value (a node index, or a subsector
// index with SubSectorFlag set) plus that subtree's bounding box.
// segs drives every partitioning decision; glSegs mirrors the same
// splits plus whatever minisegs earlier splits added, and is only ever
// carried along and cut in parallel.
func (b *builder) recurse(segs, glSegs []Seg, depth int) (int32, mathutil.AABB, error) {
	if depth > maxDepth {
		return 0, mathutil.AABB{}, ErrNodeBuildFailed
	}

	bbox := b.segBounds(segs)

	if len(segs) == 0 {
		idx := b.emitSubSector(nil, glSegs)
		return idx, bbox, nil
	}

	part, ok := b.choosePartition(segs)
	if !ok {
		idx := b.emitSubSector(segs, glSegs)
		return idx, bbox, nil
	}

	front, back := b.partitionSegs(segs, part)
	if len(front) == 0 || len(back) == 0 {
		idx := b.emitSubSector(segs, glSegs)
		return idx, bbox, nil
	}

	glFront, glBack := b.partitionSegs(glSegs, part)
	if p1, p2, ok := clipPartitionToBBox(part, bbox); ok {
		pairID := b.nextPair
		b.nextPair++
		v1, v2 := b.addExtraVertex(p1), b.addExtraVertex(p2)
		glFront = append(glFront, Seg{V1: v1, V2: v2, Line: NoLine, Side: 0, Partner: -1, MinisegPair: pairID})
		glBack = append(glBack, Seg{V1: v2, V2: v1, Line: NoLine, Side: 1, Partner: -1, MinisegPair: pairID})
	}

	frontChild, frontBBox, err := b.recurse(front, glFront, depth+1)
	if err != nil {
		return 0, mathutil.AABB{}, err
	}
	backChild, backBBox, err := b.recurse(back, glBack, depth+1)
	if err != nil {
		return 0, mathutil.AABB{}, err
	}

	node := Node{
		X: part.x1, Y: part.y1, DX: part.x2 - part.x1, DY: part.y2 - part.y1,
		BBox:     [2]mathutil.AABB{frontBBox, backBBox},
		Children: [2]int32{frontChild, backChild},
	}
	nodeIdx := int32(len(b.nodes))
	b.nodes = append(b.nodes, node)

	return nodeIdx, bbox, nil
}

func (b *builder) emitSubSector(segs, glSegs []Seg) int32 {
	first := uint32(len(b.segs))
	b.segs = append(b.segs, segs...)
	firstGL := uint32(len(b.glSegs))
	b.glSegs = append(b.glSegs, glSegs...)
	idx := uint32(len(b.subs))
	b.subs = append(b.subs, SubSector{
		FirstSeg: first, NumSegs: uint32(len(segs)),
		FirstGLSeg: firstGL, NumGLSeg: uint32(len(glSegs)),
	})
	return int32(idx) | SubSectorFlag
}

func (b *builder) vertexAt(idx uint32) mathutil.Vec2 {
	n := uint32(len(b.lvl.Vertexes))
	if idx < n {
		return b.lvl.Vertexes[idx].Vec2()
	}
	return b.extra[idx-n]
}

func (b *builder) segBounds(segs []Seg) mathutil.AABB {
	bbox := mathutil.EmptyAABB()
	for _, s := range segs {
		v1, v2 := b.vertexAt(s.V1), b.vertexAt(s.V2)
		bbox = bbox.AddPoint(mathutil.Vec3{X: v1.X, Y: v1.Y})
		bbox = bbox.AddPoint(mathutil.Vec3{X: v2.X, Y: v2.Y})
	}
	if bbox.Min.X > bbox.Max.X {
		return mathutil.AABB{}
	}
	return bbox
}
