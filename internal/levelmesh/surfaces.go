package levelmesh

import (
	"github.com/zdray-go/zdray/internal/bsp"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

// Line specials buildWalls needs to special-case. Sector_Set3dFloor is
// handled earlier, by level.ResolveX3DFloors.
const (
	specialLineHorizon = 9
	specialSetPortal   = 156
)

// buildFloorCeiling emits one floor and one ceiling Surface per BSP
// subsector, plus a pair of inner slab surfaces for every 3D floor
// layered onto that subsector's sector. Splitting on subsectors rather
// than whole sectors keeps concave or self-intersecting sector outlines
// from producing a degenerate triangle fan; tree may be nil (node
// building disabled), in which case the whole-sector boundary loop is
// used instead.
func buildFloorCeiling(lvl *level.Level, tree *bsp.Tree) []Surface {
	if tree == nil {
		return buildFloorCeilingWholeSector(lvl)
	}

	var out []Surface
	for _, ss := range tree.SubSectors {
		segs := tree.Segs[ss.FirstSeg : ss.FirstSeg+ss.NumSegs]
		if len(segs) == 0 {
			continue
		}
		sector, ok := subsectorSector(lvl, segs)
		if !ok {
			continue
		}
		loop := make([]mathutil.Vec2, len(segs))
		for i, sg := range segs {
			loop[i] = vertexAt(lvl, tree, sg.V1)
		}
		out = append(out, flatSurfaces(lvl, sector, loop)...)
	}
	return out
}

// subsectorSector reports the single sector every seg in a convex
// subsector borders, taken from the first seg's resolved line side.
func subsectorSector(lvl *level.Level, segs []bsp.Seg) (uint32, bool) {
	sg := segs[0]
	l := &lvl.Lines[sg.Line]
	if sg.Side == 0 {
		if !l.HasFrontSector() {
			return 0, false
		}
		return l.FrontSector, true
	}
	if !l.HasBackSector() {
		return 0, false
	}
	return l.BackSector, true
}

// vertexAt resolves a combined vertex index (original level vertices
// followed by the BSP tree's partition-split extras) to a position.
func vertexAt(lvl *level.Level, tree *bsp.Tree, idx uint32) mathutil.Vec2 {
	n := uint32(len(lvl.Vertexes))
	if idx < n {
		return lvl.Vertexes[idx].Vec2()
	}
	return tree.ExtraVertices[idx-n]
}

// buildFloorCeilingWholeSector is the tree-less fallback: one floor and
// ceiling surface (plus 3D-floor slabs) per whole sector boundary.
func buildFloorCeilingWholeSector(lvl *level.Level) []Surface {
	var out []Surface
	for secIdx := range lvl.Sectors {
		loop := sectorBoundaryLoop(lvl, uint32(secIdx))
		if len(loop) < 3 {
			continue
		}
		verts := make([]mathutil.Vec2, len(loop))
		for i, vi := range loop {
			verts[i] = lvl.Vertexes[vi].Vec2()
		}
		out = append(out, flatSurfaces(lvl, uint32(secIdx), verts)...)
	}
	return out
}

// flatSurfaces builds the floor, ceiling, and any 3D-floor slab
// surfaces for one convex (sub)sector footprint.
func flatSurfaces(lvl *level.Level, secIdx uint32, loop []mathutil.Vec2) []Surface {
	if len(loop) < 3 {
		return nil
	}
	s := &lvl.Sectors[secIdx]
	var out []Surface

	if !s.SkyFloor {
		out = append(out, planeSurface(SurfaceFloor, secIdx, loop, s.FloorPlane, level.NoIndex, nonZero(s.SampleDistance[0], 16)))
	}
	if !s.SkyCeiling {
		out = append(out, planeSurface(SurfaceCeiling, secIdx, reverseLoop(loop), s.CeilingPlane, level.NoIndex, nonZero(s.SampleDistance[1], 16)))
	}

	for _, cs := range s.X3DFloors {
		control := &lvl.Sectors[cs.Sector]
		// Top of the slab: walked on from above, using the control
		// sector's ceiling height and facing up like an ordinary floor.
		out = append(out, planeSurface(SurfaceFloor, secIdx, loop, control.CeilingPlane, cs.Sector, nonZero(control.SampleDistance[1], 16)))
		// Underside of the slab: seen from below, using the control
		// sector's floor height and facing down like an ordinary ceiling.
		out = append(out, planeSurface(SurfaceCeiling, secIdx, reverseLoop(loop), control.FloorPlane, cs.Sector, nonZero(control.SampleDistance[0], 16)))
	}

	return out
}

func planeSurface(kind SurfaceKind, secIdx uint32, loop []mathutil.Vec2, plane mathutil.Plane, control uint32, sampleDist int32) Surface {
	verts := make([]mathutil.Vec3, len(loop))
	for i, v := range loop {
		verts[i] = mathutil.Vec3{X: v.X, Y: v.Y, Z: plane.ZAtVec2(v)}
	}
	return Surface{
		Kind: kind, Sector: secIdx, Line: level.NoIndex, ControlSector: control,
		Verts: verts, Plane: plane, SampleDistance: sampleDist,
	}
}

// reverseLoop winds a loop the opposite way, used so ceilings (and slab
// undersides) face outward from their volume the same way floors do.
func reverseLoop(loop []mathutil.Vec2) []mathutil.Vec2 {
	out := make([]mathutil.Vec2, len(loop))
	for i, v := range loop {
		out[len(loop)-1-i] = v
	}
	return out
}

// sectorBoundaryLoop returns the sector's bordering vertices in the
// order its lines were wound at load time. It does not attempt to
// re-sort disjoint line fragments into a single ring.
func sectorBoundaryLoop(lvl *level.Level, secIdx uint32) []uint32 {
	seen := map[uint32]bool{}
	var out []uint32
	for _, lineIdx := range lvl.Sectors[secIdx].Lines {
		l := lvl.Lines[lineIdx]
		v1, v2 := l.V1, l.V2
		if l.BackSector == secIdx && l.FrontSector != secIdx {
			v1, v2 = v2, v1 // walk the sector's own side of the line
		}
		if !seen[v1] {
			seen[v1] = true
			out = append(out, v1)
		}
		if !seen[v2] {
			seen[v2] = true
			out = append(out, v2)
		}
	}
	return out
}

// buildWalls emits top/middle/bottom wall surfaces for every line,
// skipping parts hidden behind sky or a matching neighbor height.
// Line_Horizon lines never get a wall quad (they render the sky/void
// horizon instead); Line_SetPortal lines skip the middle quad since a
// portal, not a solid wall, fills the gap, but still get top/bottom
// quads like an ordinary two-sided line.
func buildWalls(lvl *level.Level) []Surface {
	var out []Surface
	for lineIdx := range lvl.Lines {
		l := &lvl.Lines[lineIdx]
		if !l.HasFrontSector() || l.Special == specialLineHorizon {
			continue
		}
		front := &lvl.Sectors[l.FrontSector]
		frontSide := lineSide(lvl, l, 0)
		v1, v2 := lvl.Vertexes[l.V1].Vec2(), lvl.Vertexes[l.V2].Vec2()

		if !l.HasBackSector() {
			out = append(out, wallQuad(lineIdx, l.FrontSector, SurfaceWallMiddle, v1, v2,
				front.FloorPlane, front.CeilingPlane, front.SkyCeiling, front.SampleDistance[0]))
			continue
		}

		back := &lvl.Sectors[l.BackSector]

		if back.CeilingHeight < front.CeilingHeight && !front.SkyCeiling {
			out = append(out, wallQuad(lineIdx, l.FrontSector, SurfaceWallTop, v1, v2,
				back.CeilingPlane, front.CeilingPlane, false, front.SampleDistance[0]))
		}
		if back.FloorHeight > front.FloorHeight {
			out = append(out, wallQuad(lineIdx, l.FrontSector, SurfaceWallBottom, v1, v2,
				front.FloorPlane, back.FloorPlane, false, front.SampleDistance[0]))
		}

		if l.Special != specialSetPortal && frontSide != nil && frontSide.MidTexture != "-" && frontSide.MidTexture != "" {
			lo, hi := front.FloorHeight, front.CeilingHeight
			if back.FloorHeight > lo {
				lo = back.FloorHeight
			}
			if back.CeilingHeight < hi {
				hi = back.CeilingHeight
			}
			if hi > lo {
				out = append(out, midTextureQuad(lineIdx, l.FrontSector, v1, v2, lo, hi, front.SampleDistance[0]))
			}
		}
	}
	return out
}

func lineSide(lvl *level.Level, l *level.LineDef, side int) *level.SideDef {
	idx := l.SideNum[side]
	if idx == level.NoIndex || int(idx) >= len(lvl.Sides) {
		return nil
	}
	return &lvl.Sides[idx]
}

// wallQuad builds the two-triangle fan for a vertical wall patch
// bounded below by lowPlane and above by highPlane along (v1,v2).
func wallQuad(lineIdx int, sector uint32, kind SurfaceKind, v1, v2 mathutil.Vec2, lowPlane, highPlane mathutil.Plane, sky bool, sampleDist int32) Surface {
	verts := []mathutil.Vec3{
		{X: v1.X, Y: v1.Y, Z: lowPlane.ZAtVec2(v1)},
		{X: v2.X, Y: v2.Y, Z: lowPlane.ZAtVec2(v2)},
		{X: v2.X, Y: v2.Y, Z: highPlane.ZAtVec2(v2)},
		{X: v1.X, Y: v1.Y, Z: highPlane.ZAtVec2(v1)},
	}
	plane := mathutil.PlaneFromPoints(verts[0], verts[1], verts[2], true)
	return Surface{
		Kind: kind, Sector: sector, Line: uint32(lineIdx), ControlSector: noControlSector,
		Verts: verts, Plane: plane, Sky: sky,
		SampleDistance: nonZero(sampleDist, 16),
	}
}

// midTextureQuad builds a two-sided line's mid-texture ("fence"/gate)
// quad: a flat-bottomed, flat-topped patch clipped to the narrower of
// the two sectors' floor/ceiling gap, unlike the top/bottom quads
// which follow each sector's own sloped plane.
//
// TODO: size mid-texture quads from the TEXTURE1/TEXTURE2 lump height
// once a texture catalog exists, instead of clamping to the opening.
func midTextureQuad(lineIdx int, sector uint32, v1, v2 mathutil.Vec2, lo, hi int32, sampleDist int32) Surface {
	verts := []mathutil.Vec3{
		{X: v1.X, Y: v1.Y, Z: float32(lo)},
		{X: v2.X, Y: v2.Y, Z: float32(lo)},
		{X: v2.X, Y: v2.Y, Z: float32(hi)},
		{X: v1.X, Y: v1.Y, Z: float32(hi)},
	}
	plane := mathutil.PlaneFromPoints(verts[0], verts[1], verts[2], true)
	return Surface{
		Kind: SurfaceWallMiddle, Sector: sector, Line: uint32(lineIdx), ControlSector: noControlSector,
		Verts: verts, Plane: plane,
		SampleDistance: nonZero(sampleDist, 16),
	}
}

func nonZero(v, def int32) int32 {
	if v == 0 {
		return def
	}
	return v
}

// Triangulate fans a surface's convex vertex loop into world-space
// triangles (three vertices each), the form internal/bvh and the
// tracers consume.
func (s Surface) Triangulate() [][3]mathutil.Vec3 {
	if len(s.Verts) < 3 {
		return nil
	}
	out := make([][3]mathutil.Vec3, 0, len(s.Verts)-2)
	for i := 1; i < len(s.Verts)-1; i++ {
		out = append(out, [3]mathutil.Vec3{s.Verts[0], s.Verts[i], s.Verts[i+1]})
	}
	return out
}
