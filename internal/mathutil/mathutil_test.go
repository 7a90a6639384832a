package mathutil

import "testing"

func TestVec3CrossAndDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec3
		wantCross Vec3
		wantDot  float32
	}{
		{"unit axes", Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, 0},
		{"parallel", Vec3{2, 0, 0}, Vec3{4, 0, 0}, Vec3{0, 0, 0}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cross(tt.b); got != tt.wantCross {
				t.Errorf("Cross() = %v, want %v", got, tt.wantCross)
			}
			if got := tt.a.Dot(tt.b); got != tt.wantDot {
				t.Errorf("Dot() = %v, want %v", got, tt.wantDot)
			}
		})
	}
}

func TestPlaneZAtHorizontal(t *testing.T) {
	p := PlaneFromHeight(64, true)
	if z := p.ZAt(10, 20); z != 64 {
		t.Errorf("ZAt() = %v, want 64", z)
	}
}

func TestPlaneFromPointsOrientation(t *testing.T) {
	p := PlaneFromPoints(
		Vec3{0, 0, 0},
		Vec3{64, 0, 32},
		Vec3{0, 64, 0},
		true,
	)
	if p.BestAxis() == AxisZ && p.C <= 0 {
		t.Errorf("expected upward-facing floor normal, got C=%v", p.C)
	}
	// The plane must actually pass through all three source points.
	for _, v := range []Vec3{{0, 0, 0}, {64, 0, 32}, {0, 64, 0}} {
		got := p.ZAt(float64(v.X), float64(v.Y))
		if diff := got - float64(v.Z); diff > 1e-3 || diff < -1e-3 {
			t.Errorf("ZAt(%v) = %v, want %v", v, got, v.Z)
		}
	}
}

func TestAABBUnionAndOverlap(t *testing.T) {
	a := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	b := AABB{Min: Vec3{2, 2, 2}, Max: Vec3{3, 3, 3}}
	u := a.Union(b)
	if u.Min != (Vec3{0, 0, 0}) || u.Max != (Vec3{3, 3, 3}) {
		t.Errorf("Union() = %+v, want min=0 max=3", u)
	}
	if a.Overlaps(b) {
		t.Error("disjoint boxes reported as overlapping")
	}
}

func TestAABBIntersectRay(t *testing.T) {
	box := AABB{Min: Vec3{-1, -1, -1}, Max: Vec3{1, 1, 1}}
	origin := Vec3{-5, 0, 0}
	dir := Vec3{1, 0, 0}
	inv := Vec3{1 / dir.X, 1e30, 1e30}
	hit, t0 := box.IntersectRay(origin, inv, 0, 100)
	if !hit {
		t.Fatal("expected ray to hit box")
	}
	if t0 != 4 {
		t.Errorf("IntersectRay() t = %v, want 4", t0)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 4}, {5, 8}, {16, 16}, {17, 32},
	}
	for _, tt := range tests {
		if got := NextPowerOfTwo(tt.in); got != tt.want {
			t.Errorf("NextPowerOfTwo(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
