package mathutil

import "math"

// Axis identifies the dominant coordinate axis of a plane normal.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Plane is a·x + b·y + c·z = d, evaluated in float64 so that near-horizontal
// sector planes stay numerically stable (see the slope resolver).
type Plane struct {
	A, B, C, D float64
}

// PlaneFromHeight builds a horizontal plane at the given Z height. Floors
// and ceilings default to this before any slope special is applied.
// up indicates whether the plane's normal should point toward +Z (floor)
// or -Z (ceiling); Doom conventionally stores both with C>0 and instead
// negates D, but keeping an explicit normal avoids sign confusion in
// zAt and in the BestAxis-driven lightmap projection.
func PlaneFromHeight(z float64, up bool) Plane {
	if up {
		return Plane{A: 0, B: 0, C: 1, D: z}
	}
	return Plane{A: 0, B: 0, C: -1, D: -z}
}

// PlaneFromPoints fits a plane through three points, oriented so the
// normal's Z component is non-negative when wantUp is true and
// non-positive when it is false.
func PlaneFromPoints(p1, p2, p3 Vec3, wantUp bool) Plane {
	v1 := DVec3FromVec3(p2).Sub(DVec3FromVec3(p3))
	v2 := DVec3FromVec3(p1).Sub(DVec3FromVec3(p3))
	n := v1.Cross(v2)
	if wantUp && n.Z < 0 {
		n = n.Scale(-1)
	}
	if !wantUp && n.Z > 0 {
		n = n.Scale(-1)
	}
	n = n.Normalize()
	p3d := DVec3FromVec3(p3)
	d := n.Dot(p3d)
	return Plane{A: n.X, B: n.Y, C: n.Z, D: d}
}

// Normal returns the plane's (not necessarily unit) normal vector.
func (p Plane) Normal() Vec3 {
	return Vec3{float32(p.A), float32(p.B), float32(p.C)}
}

// NormalD returns the plane's normal as a double-precision vector.
func (p Plane) NormalD() DVec3 {
	return DVec3{p.A, p.B, p.C}
}

// BestAxis returns the dominant coordinate axis of the plane's normal,
// used to choose the lightmap tile's projection axes.
func (p Plane) BestAxis() Axis {
	nx, ny, nz := math.Abs(p.A), math.Abs(p.B), math.Abs(p.C)
	switch {
	case nz >= nx && nz >= ny:
		return AxisZ
	case ny >= nx:
		return AxisY
	default:
		return AxisX
	}
}

// ZAt evaluates the plane's height at (x, y): z = (d - a*x - b*y) / c.
// Computed in double precision per the slope resolver's robustness
// requirement on near-horizontal planes.
func (p Plane) ZAt(x, y float64) float64 {
	if p.C == 0 {
		return 0
	}
	return (p.D - p.A*x - p.B*y) / p.C
}

// ZAtVec2 is a float32 convenience wrapper over ZAt.
func (p Plane) ZAtVec2(v Vec2) float32 {
	return float32(p.ZAt(float64(v.X), float64(v.Y)))
}

// Dist returns the signed distance from pt to the plane.
func (p Plane) Dist(pt Vec3) float64 {
	n := p.NormalD()
	length := n.Length()
	if length == 0 {
		return 0
	}
	return (n.Dot(DVec3FromVec3(pt)) - p.D) / length
}

// Flip reverses the plane's normal (and therefore which half-space is
// "above" it).
func (p Plane) Flip() Plane {
	return Plane{A: -p.A, B: -p.B, C: -p.C, D: -p.D}
}
