package bvh

import (
	"math"

	"github.com/zdray-go/zdray/internal/mathutil"
)

// Hit is a single ray/triangle intersection result.
type Hit struct {
	T          float32
	Point      mathutil.Vec3
	Normal     mathutil.Vec3
	Payload    uint32
	TriangleID int32
}

// FindFirstHit returns the closest intersection of the ray
// origin+t*dir (unnormalized dir is fine) with t in [tMin,tMax], or
// false if nothing is hit.
func (b *BVH) FindFirstHit(origin, dir mathutil.Vec3, tMin, tMax float32) (Hit, bool) {
	if len(b.nodes) == 0 {
		return Hit{}, false
	}
	invDir := mathutil.Vec3{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}

	best := Hit{T: tMax}
	found := false

	var visit func(idx int32)
	visit = func(idx int32) {
		n := &b.nodes[idx]
		if ok, _ := n.Bounds.IntersectRay(origin, invDir, tMin, best.T); !ok {
			return
		}
		if n.Count > 0 {
			for i := n.Start; i < n.Start+n.Count; i++ {
				triIdx := b.order[i]
				tri := b.Triangles[triIdx]
				if t, hitPoint, normal, ok := intersectTriangle(origin, dir, tri, tMin, best.T); ok {
					best = Hit{T: t, Point: hitPoint, Normal: normal, Payload: tri.Payload, TriangleID: triIdx}
					found = true
				}
			}
			return
		}
		visit(n.Left)
		visit(n.Right)
	}
	visit(0)

	return best, found
}

// FindAnyHit is a cheaper shadow-ray query: it stops at the first
// intersection found rather than the closest one, which is all a
// binary occlusion test needs.
func (b *BVH) FindAnyHit(origin, dir mathutil.Vec3, tMin, tMax float32) bool {
	if len(b.nodes) == 0 {
		return false
	}
	invDir := mathutil.Vec3{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}

	var visit func(idx int32) bool
	visit = func(idx int32) bool {
		n := &b.nodes[idx]
		if ok, _ := n.Bounds.IntersectRay(origin, invDir, tMin, tMax); !ok {
			return false
		}
		if n.Count > 0 {
			for i := n.Start; i < n.Start+n.Count; i++ {
				tri := b.Triangles[b.order[i]]
				if _, _, _, ok := intersectTriangle(origin, dir, tri, tMin, tMax); ok {
					return true
				}
			}
			return false
		}
		return visit(n.Left) || visit(n.Right)
	}
	return visit(0)
}

// FindAllHits collects every intersection along the ray, unordered,
// used by translucent-surface accumulation in the tracers.
func (b *BVH) FindAllHits(origin, dir mathutil.Vec3, tMin, tMax float32) []Hit {
	if len(b.nodes) == 0 {
		return nil
	}
	invDir := mathutil.Vec3{X: safeInv(dir.X), Y: safeInv(dir.Y), Z: safeInv(dir.Z)}

	var out []Hit
	var visit func(idx int32)
	visit = func(idx int32) {
		n := &b.nodes[idx]
		if ok, _ := n.Bounds.IntersectRay(origin, invDir, tMin, tMax); !ok {
			return
		}
		if n.Count > 0 {
			for i := n.Start; i < n.Start+n.Count; i++ {
				triIdx := b.order[i]
				tri := b.Triangles[triIdx]
				if t, p, nrm, ok := intersectTriangle(origin, dir, tri, tMin, tMax); ok {
					out = append(out, Hit{T: t, Point: p, Normal: nrm, Payload: tri.Payload, TriangleID: triIdx})
				}
			}
			return
		}
		visit(n.Left)
		visit(n.Right)
	}
	visit(0)
	return out
}

// Sweep moves a sphere of radius r from a to b and returns the smallest
// fraction t in [0,1] at which it first touches the mesh, or 1 if it
// never does. Each candidate triangle is tested in the three stages of
// Kasper Fauerby's swept-sphere algorithm: the sphere-vs-plane contact
// point first, falling back to sphere-vs-edge and finally sphere-vs-
// vertex when the plane contact point lands outside the triangle.
func (b *BVH) Sweep(a, bPos mathutil.Vec3, r float32) float32 {
	if len(b.nodes) == 0 {
		return 1
	}
	d := bPos.Sub(a)
	segBounds := mathutil.AABBFromPoint(a).Union(mathutil.AABBFromPoint(bPos)).Expand(r)

	best := float32(1)

	var visit func(idx int32)
	visit = func(idx int32) {
		n := &b.nodes[idx]
		if !n.Bounds.Expand(r).Overlaps(segBounds) {
			return
		}
		if n.Count > 0 {
			for i := n.Start; i < n.Start+n.Count; i++ {
				tri := b.Triangles[b.order[i]]
				if !tri.bounds().Expand(r).Overlaps(segBounds) {
					continue
				}
				if t, ok := sweepSphereTriangle(a, d, r, tri); ok && t < best {
					best = t
				}
			}
			return
		}
		visit(n.Left)
		visit(n.Right)
	}
	visit(0)

	return best
}

// sweepSphereTriangle finds the smallest t in [0,1] at which a sphere
// of radius r centered at a+t*d first touches tri.
func sweepSphereTriangle(a, d mathutil.Vec3, r float32, tri Triangle) (float32, bool) {
	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)
	n := edge1.Cross(edge2)
	if n.LengthSquared() < 1e-12 {
		return 0, false
	}
	n = n.Normalize()

	if t, ok := sweepPlaneStage(a, d, r, tri, n); ok {
		return t, true
	}

	best := float32(2)
	found := false
	edges := [3][2]mathutil.Vec3{{tri.V0, tri.V1}, {tri.V1, tri.V2}, {tri.V2, tri.V0}}
	for _, e := range edges {
		if t, ok := sweepEdgeStage(a, d, r, e[0], e[1]); ok && t < best {
			best, found = t, true
		}
	}
	for _, v := range [3]mathutil.Vec3{tri.V0, tri.V1, tri.V2} {
		if t, ok := sweepVertexStage(a, d, r, v); ok && t < best {
			best, found = t, true
		}
	}
	return best, found
}

// sweepPlaneStage finds where the sphere's surface first touches tri's
// supporting plane and, if that contact point lies inside the
// triangle, returns it directly; the edge/vertex stages only run when
// this stage can't settle the test.
func sweepPlaneStage(a, d mathutil.Vec3, r float32, tri Triangle, n mathutil.Vec3) (float32, bool) {
	da := n.Dot(a.Sub(tri.V0))
	ddN := n.Dot(d)

	var t0 float32
	embedded := false
	switch {
	case ddN > -1e-9 && ddN < 1e-9:
		if absF(da) > r {
			return 0, false
		}
		embedded = true
		t0 = 0
	default:
		ta := (r - da) / ddN
		tb := (-r - da) / ddN
		if ta > tb {
			ta, tb = tb, ta
		}
		if ta > 1 || tb < 0 {
			return 0, false
		}
		if ta < 0 {
			ta = 0
		}
		t0 = ta
	}

	center := a.Add(d.Scale(t0))
	sign := float32(1)
	if da < 0 {
		sign = -1
	}
	contact := center.Sub(n.Scale(r * sign))
	if !embedded && !pointInTriangle(contact, tri) {
		return 0, false
	}
	if embedded {
		proj := center.Sub(n.Scale(n.Dot(center.Sub(tri.V0))))
		if !pointInTriangle(proj, tri) {
			return 0, false
		}
	}
	return t0, true
}

// pointInTriangle assumes p already lies in tri's plane.
func pointInTriangle(p mathutil.Vec3, tri Triangle) bool {
	e0 := tri.V1.Sub(tri.V0)
	e1 := tri.V2.Sub(tri.V1)
	e2 := tri.V0.Sub(tri.V2)
	n := e0.Cross(tri.V2.Sub(tri.V0))

	c0 := e0.Cross(p.Sub(tri.V0))
	c1 := e1.Cross(p.Sub(tri.V1))
	c2 := e2.Cross(p.Sub(tri.V2))
	return n.Dot(c0) >= -1e-4 && n.Dot(c1) >= -1e-4 && n.Dot(c2) >= -1e-4
}

// sweepVertexStage solves the quadratic for when a moving sphere's
// surface reaches a stationary point v.
func sweepVertexStage(a, d mathutil.Vec3, r float32, v mathutil.Vec3) (float32, bool) {
	e := a.Sub(v)
	qa := d.Dot(d)
	qb := 2 * e.Dot(d)
	qc := e.Dot(e) - r*r
	return smallestRoot(qa, qb, qc)
}

// sweepEdgeStage solves for when a moving sphere's surface first
// touches the line segment p0-p1, rejecting roots whose contact point
// falls outside the segment.
func sweepEdgeStage(a, d mathutil.Vec3, r float32, p0, p1 mathutil.Vec3) (float32, bool) {
	edge := p1.Sub(p0)
	base := p0.Sub(a)
	edgeLenSq := edge.Dot(edge)
	if edgeLenSq < 1e-12 {
		return 0, false
	}
	edgeDotD := edge.Dot(d)
	edgeDotBase := edge.Dot(base)

	qa := edgeLenSq*(-d.Dot(d)) + edgeDotD*edgeDotD
	qb := edgeLenSq*2*base.Dot(d) - 2*edgeDotD*edgeDotBase
	qc := edgeLenSq*(r*r-base.Dot(base)) + edgeDotBase*edgeDotBase

	t, ok := smallestRoot(qa, qb, qc)
	if !ok {
		return 0, false
	}
	f := (edgeDotD*t - edgeDotBase) / edgeLenSq
	if f < 0 || f > 1 {
		return 0, false
	}
	return t, true
}

// smallestRoot returns the smaller root of qa*t^2+qb*t+qc=0 that lies
// in [0,1], falling back to the larger one if only it qualifies.
func smallestRoot(qa, qb, qc float32) (float32, bool) {
	if qa > -1e-9 && qa < 1e-9 {
		if qb > -1e-9 && qb < 1e-9 {
			return 0, false
		}
		t := -qc / qb
		if t < 0 || t > 1 {
			return 0, false
		}
		return t, true
	}
	disc := qb*qb - 4*qa*qc
	if disc < 0 {
		return 0, false
	}
	sq := sqrtf32(disc)
	t0 := (-qb - sq) / (2 * qa)
	t1 := (-qb + sq) / (2 * qa)
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	if t0 >= 0 && t0 <= 1 {
		return t0, true
	}
	if t1 >= 0 && t1 <= 1 {
		return t1, true
	}
	return 0, false
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sqrtf32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 1e30
	}
	return 1 / v
}

// intersectTriangle implements the Möller-Trumbore ray/triangle test.
func intersectTriangle(origin, dir mathutil.Vec3, tri Triangle, tMin, tMax float32) (float32, mathutil.Vec3, mathutil.Vec3, bool) {
	const eps = 1e-7

	edge1 := tri.V1.Sub(tri.V0)
	edge2 := tri.V2.Sub(tri.V0)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -eps && a < eps {
		return 0, mathutil.Vec3{}, mathutil.Vec3{}, false
	}

	f := 1 / a
	s := origin.Sub(tri.V0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, mathutil.Vec3{}, mathutil.Vec3{}, false
	}

	q := s.Cross(edge1)
	v := f * dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, mathutil.Vec3{}, mathutil.Vec3{}, false
	}

	t := f * edge2.Dot(q)
	if t < tMin || t > tMax {
		return 0, mathutil.Vec3{}, mathutil.Vec3{}, false
	}

	point := origin.Add(dir.Scale(t))
	normal := edge1.Cross(edge2).Normalize()
	return t, point, normal, true
}
