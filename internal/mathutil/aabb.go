package mathutil

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max Vec3
}

// EmptyAABB returns a degenerate AABB suitable as the identity element of
// Union (Min above Max on every axis).
func EmptyAABB() AABB {
	const inf = float32(1e30)
	return AABB{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// AABBFromPoint returns the zero-volume box containing a single point.
func AABBFromPoint(p Vec3) AABB {
	return AABB{Min: p, Max: p}
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	return AABB{Min: a.Min.Min(b.Min), Max: a.Max.Max(b.Max)}
}

// AddPoint grows the box to include p.
func (a AABB) AddPoint(p Vec3) AABB {
	return AABB{Min: a.Min.Min(p), Max: a.Max.Max(p)}
}

// Expand grows the box by r on every axis, used to Minkowski-sum a sphere
// radius into a ray query.
func (a AABB) Expand(r float32) AABB {
	d := Vec3{r, r, r}
	return AABB{Min: a.Min.Sub(d), Max: a.Max.Add(d)}
}

// Contains reports whether p lies within the box (inclusive).
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// ContainsBox reports whether a contains b entirely.
func (a AABB) ContainsBox(b AABB) bool {
	return a.Contains(b.Min) && a.Contains(b.Max)
}

// Overlaps reports whether a and b intersect.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Center returns the box's midpoint.
func (a AABB) Center() Vec3 {
	return a.Min.Add(a.Max).Scale(0.5)
}

// Extents returns the box's half-size along each axis.
func (a AABB) Extents() Vec3 {
	return a.Max.Sub(a.Min).Scale(0.5)
}

// LongestAxis returns the axis (0=X,1=Y,2=Z) along which the box is
// largest, used by the BVH builder's median split.
func (a AABB) LongestAxis() int {
	d := a.Max.Sub(a.Min)
	axis := 0
	best := d.X
	if d.Y > best {
		axis, best = 1, d.Y
	}
	if d.Z > best {
		axis = 2
	}
	return axis
}

// OverlapsSphere reports whether the box intersects a sphere centered at
// c with radius r, using the closest-point distance test.
func (a AABB) OverlapsSphere(c Vec3, r float32) bool {
	clamp := func(v, lo, hi float32) float32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	closest := Vec3{
		clamp(c.X, a.Min.X, a.Max.X),
		clamp(c.Y, a.Min.Y, a.Max.Y),
		clamp(c.Z, a.Min.Z, a.Max.Z),
	}
	return closest.Distance(c) <= r
}

// IntersectRay performs a slab test against the box for the ray
// origin+t*dir, t in [tmin,tmax]. Returns whether it hit and the entry t.
func (a AABB) IntersectRay(origin, invDir Vec3, tmin, tmax float32) (bool, float32) {
	t0 := tmin
	t1 := tmax

	for axis := 0; axis < 3; axis++ {
		var o, id, lo, hi float32
		switch axis {
		case 0:
			o, id, lo, hi = origin.X, invDir.X, a.Min.X, a.Max.X
		case 1:
			o, id, lo, hi = origin.Y, invDir.Y, a.Min.Y, a.Max.Y
		default:
			o, id, lo, hi = origin.Z, invDir.Z, a.Min.Z, a.Max.Z
		}
		tNear := (lo - o) * id
		tFar := (hi - o) * id
		if tNear > tFar {
			tNear, tFar = tFar, tNear
		}
		if tNear > t0 {
			t0 = tNear
		}
		if tFar < t1 {
			t1 = tFar
		}
		if t0 > t1 {
			return false, 0
		}
	}
	return true, t0
}
