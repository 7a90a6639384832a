package bsp

import (
	"math"

	"github.com/zdray-go/zdray/internal/mathutil"
)

// partitionLine is a candidate splitter, carried as two points rather
// than point+direction so intersection math stays in world space.
type partitionLine struct {
	x1, y1, x2, y2 float64
}

// choosePartition scores every candidate seg as a splitter (lower is
// better: fewer splits, a more even left/right balance, with an
// axis-aligned bonus) and returns the best one. Using every seg as a
// splitter candidate (rather than only one-sided walls) matches the
// node builder's general-purpose behavior when a sector is built
// entirely from two-sided lines (a glass atrium, a pillar ring).
func (b *builder) choosePartition(segs []Seg) (partitionLine, bool) {
	if len(segs) == 0 {
		return partitionLine{}, false
	}

	type candidate struct {
		part partitionLine
		cost int
	}

	best := candidate{cost: -1}
	step := 1
	if len(segs) > 4*b.cfg.MaxSegs {
		// Large seg sets only sample a subset of candidates, the way
		// production node builders bound worst-case build time.
		step = len(segs) / (4 * b.cfg.MaxSegs)
		if step < 1 {
			step = 1
		}
	}

	for i := 0; i < len(segs); i += step {
		s := segs[i]
		v1, v2 := b.vertexAt(s.V1), b.vertexAt(s.V2)
		part := partitionLine{x1: float64(v1.X), y1: float64(v1.Y), x2: float64(v2.X), y2: float64(v2.Y)}

		cost, ok := b.scorePartition(segs, part)
		if !ok {
			continue
		}
		if best.cost < 0 || cost < best.cost {
			best = candidate{part: part, cost: cost}
		}
	}

	if best.cost < 0 {
		return partitionLine{}, false
	}
	return best.part, true
}

// scorePartition counts front/back/split segs against part and returns
// a cost favoring balance, penalizing splits by SplitCost, and
// rewarding axis-aligned partitions by subtracting AAPreference.
// Returns ok=false if the partition would put every seg on one side.
func (b *builder) scorePartition(segs []Seg, part partitionLine) (int, bool) {
	var front, back, split int
	for _, s := range segs {
		side1, side2 := b.classify(s, part)
		switch {
		case side1 >= 0 && side2 >= 0:
			front++
		case side1 <= 0 && side2 <= 0:
			back++
		default:
			split++
		}
	}
	if front == 0 || back == 0 {
		return 0, false
	}

	diff := front - back
	if diff < 0 {
		diff = -diff
	}
	cost := diff + split*b.cfg.SplitCost

	dx, dy := part.x2-part.x1, part.y2-part.y1
	if dx == 0 || dy == 0 {
		cost -= b.cfg.AAPreference
	}

	return cost, true
}

// classify returns the signed side (positive=front, negative=back, 0=on
// the line) of each endpoint of s against part.
func (b *builder) classify(s Seg, part partitionLine) (float64, float64) {
	v1, v2 := b.vertexAt(s.V1), b.vertexAt(s.V2)
	return sideOf(part, float64(v1.X), float64(v1.Y)), sideOf(part, float64(v2.X), float64(v2.Y))
}

func sideOf(part partitionLine, x, y float64) float64 {
	dx, dy := part.x2-part.x1, part.y2-part.y1
	return dx*(y-part.y1) - dy*(x-part.x1)
}

// partitionSegs splits segs into front/back lists against part,
// cutting any seg whose endpoints straddle the line and introducing a
// new vertex at the intersection.
func (b *builder) partitionSegs(segs []Seg, part partitionLine) ([]Seg, []Seg) {
	var front, back []Seg
	for _, s := range segs {
		side1, side2 := b.classify(s, part)

		switch {
		case side1 >= 0 && side2 >= 0:
			front = append(front, s)
		case side1 <= 0 && side2 <= 0:
			back = append(back, s)
		default:
			segFront, segBack := b.splitSeg(s, part, side1)
			front = append(front, segFront)
			back = append(back, segBack)
		}
	}
	return front, back
}

// splitSeg cuts s at its intersection with part, returning the two
// halves in front/back order. side1 is the signed side of s.V1.
func (b *builder) splitSeg(s Seg, part partitionLine, side1 float64) (Seg, Seg) {
	v1, v2 := b.vertexAt(s.V1), b.vertexAt(s.V2)

	dx, dy := part.x2-part.x1, part.y2-part.y1
	segDX, segDY := v2.X-v1.X, v2.Y-v1.Y

	denom := dx*float64(segDY) - dy*float64(segDX)
	var t float64
	if denom != 0 {
		t = (dx*(part.y1-float64(v1.Y)) - dy*(part.x1-float64(v1.X))) / denom
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	mid := mathutil.Vec2{
		X: v1.X + segDX*float32(t),
		Y: v1.Y + segDY*float32(t),
	}
	midIdx := b.addExtraVertex(mid)

	a := Seg{V1: s.V1, V2: midIdx, Line: s.Line, Side: s.Side, Partner: -1, MinisegPair: s.MinisegPair}
	c := Seg{V1: midIdx, V2: s.V2, Line: s.Line, Side: s.Side, Partner: -1, MinisegPair: s.MinisegPair}

	if side1 >= 0 {
		return a, c
	}
	return c, a
}

func (b *builder) addExtraVertex(v mathutil.Vec2) uint32 {
	idx := uint32(len(b.lvl.Vertexes) + len(b.extra))
	b.extra = append(b.extra, v)
	return idx
}

// clipPartitionToBBox restricts the infinite line through part to the
// span that lies within bbox, the region the current recursion step is
// carving up. The result becomes a GL miniseg closing off both
// children along the split.
func clipPartitionToBBox(part partitionLine, bbox mathutil.AABB) (mathutil.Vec2, mathutil.Vec2, bool) {
	dx, dy := part.x2-part.x1, part.y2-part.y1
	if dx == 0 && dy == 0 {
		return mathutil.Vec2{}, mathutil.Vec2{}, false
	}

	tmin, tmax := math.Inf(-1), math.Inf(1)
	clipAxis := func(p, d, lo, hi float64) bool {
		if d == 0 {
			return p >= lo && p <= hi
		}
		t1, t2 := (lo-p)/d, (hi-p)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		return tmin <= tmax
	}

	if !clipAxis(part.x1, dx, float64(bbox.Min.X), float64(bbox.Max.X)) {
		return mathutil.Vec2{}, mathutil.Vec2{}, false
	}
	if !clipAxis(part.y1, dy, float64(bbox.Min.Y), float64(bbox.Max.Y)) {
		return mathutil.Vec2{}, mathutil.Vec2{}, false
	}
	if math.IsInf(tmin, 0) || math.IsInf(tmax, 0) || tmin >= tmax {
		return mathutil.Vec2{}, mathutil.Vec2{}, false
	}

	p1 := mathutil.Vec2{X: float32(part.x1 + tmin*dx), Y: float32(part.y1 + tmin*dy)}
	p2 := mathutil.Vec2{X: float32(part.x1 + tmax*dx), Y: float32(part.y1 + tmax*dy)}
	return p1, p2, true
}
