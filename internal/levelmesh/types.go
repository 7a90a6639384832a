// Package levelmesh turns a resolved level.Level into the triangulated
// surfaces the path tracers bake against: walls, floors, ceilings, and
// 3D-floor inner surfaces, each bound to a lightmap atlas tile and
// tagged with the sector group it belongs to for portal-aware light
// propagation.
package levelmesh

import (
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

// SurfaceKind identifies which part of the level a Surface represents.
type SurfaceKind int

const (
	SurfaceFloor SurfaceKind = iota
	SurfaceCeiling
	SurfaceWallTop
	SurfaceWallMiddle
	SurfaceWallBottom
)

// Surface is one planar, convex, lightmapped patch of level geometry.
type Surface struct {
	Kind   SurfaceKind
	Sector uint32
	Line   uint32 // valid for wall kinds; level.NoIndex for floor/ceiling
	Group  uint32 // sector-group id

	// ControlSector is the 3D-floor control sector this surface belongs
	// to (level.NoIndex for ordinary floor/ceiling/wall surfaces). Two
	// inner-quad surfaces sharing a control sector are the two faces of
	// the same slab and can share a single atlas tile.
	ControlSector uint32

	Verts []mathutil.Vec3 // triangle fan winding, len >= 3
	Plane mathutil.Plane

	Sky            bool
	SmoothingGroup int32
	SampleDistance int32

	TileID int32 // index into Mesh.Tiles, assigned by Build's atlas pass (0 before it runs)

	// LightList holds the indices into Mesh.Lights visible from this
	// surface, resolved by propagateLights via recursive portal-graph
	// traversal and BVH occlusion rays instead of the coarser
	// per-sector-group GroupLights map.
	LightList []int
}

// bindingKey identifies surfaces eligible to share one atlas tile: same
// kind, same owning sector/line, same 3D-floor control sector.
func (s Surface) bindingKey() (SurfaceKind, uint32, uint32) {
	typeIndex := s.Sector
	if s.Kind == SurfaceWallTop || s.Kind == SurfaceWallMiddle || s.Kind == SurfaceWallBottom {
		typeIndex = s.Line
	}
	return s.Kind, typeIndex, s.ControlSector
}

// noControlSector marks a surface as not belonging to any 3D floor.
const noControlSector = level.NoIndex

// AtlasTile is one shelf-packed rectangle inside the lightmap atlas and
// the affine transform from a surface's local (s,t) plane coordinates
// to atlas texel coordinates.
type AtlasTile struct {
	X, Y, W, H int32
	Origin     mathutil.Vec3 // surface-local (s,t) origin in world space
	AxisS      mathutil.Vec3
	AxisT      mathutil.Vec3
}

// Light is a point light gathered from a thing for the tracers' direct
// lighting pass.
type Light struct {
	Pos        mathutil.Vec3
	Color      mathutil.Vec3
	Intensity  float32
	Radius     float32
	SectorIdx  uint32
}

// Mesh is the fully built level mesh: surfaces, their flattened
// triangles (for BVH construction), the packed atlas, and the
// portal-propagated light list per sector group.
type Mesh struct {
	Surfaces  []Surface
	Tiles     []AtlasTile
	AtlasSize int32

	Lights []Light
	// GroupLights maps sector-group id to the indices into Lights visible
	// from that group, after propagation across two-sided portal lines.
	GroupLights map[uint32][]int
}
