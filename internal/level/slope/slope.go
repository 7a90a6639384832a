// Package slope resolves sloped sector floor/ceiling planes from vertex
// height things, UDMF zfloor/zceiling keys, and the Plane_Align (181) and
// Plane_Copy (118) line specials. Sectors that aren't touched by any of
// these stay the flat planes internal/level.Load already assigned them.
package slope

import (
	"go.uber.org/zap"

	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

const (
	thingVertexFloorHeight   = 1504
	thingVertexCeilingHeight = 1505
	thingVavoofFloorSlope    = 1500
	thingVavoofCeilingSlope  = 1501
	thingPointLineFloor      = 9500
	thingPointLineCeiling    = 9501

	specialPlaneAlign = 181
	specialPlaneCopy  = 118
)

// Resolve walks lvl's things and line specials, overwriting each
// affected sector's FloorPlane/CeilingPlane in place. Sectors with no
// slope input are left untouched.
func Resolve(lvl *level.Level, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	applyVertexHeights(lvl, log)

	for i := range lvl.Sectors {
		resolveVertexSlopedSector(lvl, uint32(i))
	}

	for i := range lvl.Lines {
		l := &lvl.Lines[i]
		switch l.Special {
		case specialPlaneAlign:
			applyPlaneAlign(lvl, l)
		case specialPlaneCopy:
			applyPlaneCopy(lvl, l)
		}
	}

	warnUnsupportedSlopeThings(lvl, log)

	return nil
}

// applyVertexHeights stamps IntVertex.ZFloor/ZCeiling from 1504/1505
// things placed exactly on (or within half a map unit of) a vertex, the
// way ZDoom's vertex-height things work: the thing's Z argument
// (its Height field after the loader resolves Hexen "height" as an
// absolute z) becomes that vertex's override.
func applyVertexHeights(lvl *level.Level, log *zap.Logger) {
	const snap = 0.5

	for _, t := range lvl.Things {
		var isFloor bool
		switch t.Type {
		case thingVertexFloorHeight:
			isFloor = true
		case thingVertexCeilingHeight:
			isFloor = false
		default:
			continue
		}

		tv := mathutil.Vec2{X: t.X.ToFloat(), Y: t.Y.ToFloat()}
		idx, ok := nearestVertex(lvl, tv, snap)
		if !ok {
			log.Warn("vertex height thing has no vertex within snap distance",
				zap.Int("type", int(t.Type)))
			continue
		}

		if isFloor {
			lvl.IntVertexes[idx].ZFloor = float64(t.Height)
		} else {
			lvl.IntVertexes[idx].ZCeiling = float64(t.Height)
		}
	}
}

func nearestVertex(lvl *level.Level, p mathutil.Vec2, maxDist float32) (uint32, bool) {
	best := uint32(0)
	bestDist := float32(-1)
	found := false
	for i, v := range lvl.Vertexes {
		d := v.Vec2().Distance(p)
		if d <= maxDist && (!found || d < bestDist) {
			best, bestDist, found = uint32(i), d, true
		}
	}
	return best, found
}

// resolveVertexSlopedSector fits floor/ceiling planes through a
// triangular sector's three vertices, matching level_slopes.cpp's
// SetSlopesFromVertexHeights: this only applies to sectors bordered by
// exactly three lines (ZDoom's sec.lines.Size()!=3 skip), never to
// ordinary quad/n-gon sectors that merely happen to have >=3 vertices.
func resolveVertexSlopedSector(lvl *level.Level, sectorIdx uint32) {
	s := &lvl.Sectors[sectorIdx]
	if len(s.Lines) != 3 {
		return
	}
	vi1, vi2, vi3 := triangleVertices(lvl, sectorIdx)

	if plane, ok := fitVertexPlane(lvl, sectorIdx, vi1, vi2, vi3, true); ok {
		s.FloorPlane = plane
	}
	if plane, ok := fitVertexPlane(lvl, sectorIdx, vi1, vi2, vi3, false); ok {
		s.CeilingPlane = plane
	}
}

// triangleVertices picks the sector's three distinct vertices the way
// SetSlopesFromVertexHeights does: both ends of the first bordering
// line, then whichever end of the second line isn't shared with it.
func triangleVertices(lvl *level.Level, sectorIdx uint32) (vi1, vi2, vi3 uint32) {
	lines := lvl.Sectors[sectorIdx].Lines
	l0 := lvl.Lines[lines[0]]
	l1 := lvl.Lines[lines[1]]

	vi1, vi2 = l0.V1, l0.V2
	if l1.V1 == l0.V1 || l1.V1 == l0.V2 {
		vi3 = l1.V2
	} else {
		vi3 = l1.V1
	}
	return vi1, vi2, vi3
}

// fitVertexPlane fits a plane through vi1/vi2/vi3, each at its own
// ZFloor/ZCeiling override or, lacking one, the sector's flat height,
// matching SetSlopesFromVertexHeights. It reports false when none of
// the three vertices carry an override, leaving the sector flat.
func fitVertexPlane(lvl *level.Level, sectorIdx, vi1, vi2, vi3 uint32, floor bool) (mathutil.Plane, bool) {
	s := &lvl.Sectors[sectorIdx]
	flat := float64(s.FloorHeight)
	if !floor {
		flat = float64(s.CeilingHeight)
	}

	h1, has1 := vertexOverride(lvl, vi1, floor)
	h2, has2 := vertexOverride(lvl, vi2, floor)
	h3, has3 := vertexOverride(lvl, vi3, floor)
	if !has1 && !has2 && !has3 {
		return mathutil.Plane{}, false
	}
	if !has1 {
		h1 = flat
	}
	if !has2 {
		h2 = flat
	}
	if !has3 {
		h3 = flat
	}

	v1, v2, v3 := lvl.Vertexes[vi1].Vec2(), lvl.Vertexes[vi2].Vec2(), lvl.Vertexes[vi3].Vec2()
	p1 := mathutil.DVec3{X: float64(v1.X), Y: float64(v1.Y), Z: h1}
	p2 := mathutil.DVec3{X: float64(v2.X), Y: float64(v2.Y), Z: h2}
	p3 := mathutil.DVec3{X: float64(v3.X), Y: float64(v3.Y), Z: h3}

	// Winding depends on which side of line (v1,v2) p3 falls on,
	// matching P_PointOnLineSidePrecise in SetSlopesFromVertexHeights.
	var e1, e2 mathutil.DVec3
	if pointOnLineSide(v3, v1, v2) == 0 {
		e1, e2 = p2.Sub(p3), p1.Sub(p3)
	} else {
		e1, e2 = p1.Sub(p3), p2.Sub(p3)
	}

	cross := e1.Cross(e2)
	if cross.Length() == 0 {
		// All three vertices are collinear; there's no plane to fit.
		return mathutil.Plane{}, false
	}
	cross = cross.Normalize()
	if (cross.Z < 0 && floor) || (cross.Z > 0 && !floor) {
		cross = cross.Scale(-1)
	}

	return mathutil.Plane{A: cross.X, B: cross.Y, C: cross.Z, D: cross.Dot(p3)}, true
}

func vertexOverride(lvl *level.Level, vi uint32, floor bool) (float64, bool) {
	iv := lvl.IntVertexes[vi]
	z := iv.ZFloor
	if !floor {
		z = iv.ZCeiling
	}
	if z == level.UnsetZ {
		return 0, false
	}
	return z, true
}

// pointOnLineSide matches P_PointOnLineSidePrecise.
func pointOnLineSide(p, v1, v2 mathutil.Vec2) int {
	const epsilon = 1.0 / 65536.0
	d := float64(p.Y-v1.Y)*float64(v2.X-v1.X) + float64(v1.X-p.X)*float64(v2.Y-v1.Y)
	if d > epsilon {
		return 1
	}
	return 0
}

// applyPlaneAlign tilts the front and/or back sector's floor/ceiling
// plane so it passes through the line at the opposite sector's height,
// per args[0]/args[1] (bit 1=floor, bit 2=ceiling, for front and back
// respectively), matching ZDoom's Plane_Align.
func applyPlaneAlign(lvl *level.Level, l *level.LineDef) {
	if !l.HasFrontSector() || !l.HasBackSector() {
		return
	}

	if l.Args[0]&1 != 0 {
		alignPlane(lvl, l.FrontSector, l.BackSector, l, true)
	}
	if l.Args[0]&2 != 0 {
		alignPlane(lvl, l.FrontSector, l.BackSector, l, false)
	}
	if l.Args[1]&1 != 0 {
		alignPlane(lvl, l.BackSector, l.FrontSector, l, true)
	}
	if l.Args[1]&2 != 0 {
		alignPlane(lvl, l.BackSector, l.FrontSector, l, false)
	}
}

// alignPlane tilts alignSector's floor (or ceiling) plane so it passes
// through the line at refSector's height and through alignSector's own
// vertex farthest from the line at alignSector's own height, matching
// level_slopes.cpp's AlignPlane.
func alignPlane(lvl *level.Level, alignSector, refSector uint32, l *level.LineDef, floor bool) {
	sec := &lvl.Sectors[alignSector]
	ref := &lvl.Sectors[refSector]

	lv1, lv2 := lvl.Vertexes[l.V1].Vec2(), lvl.Vertexes[l.V2].Vec2()
	refVert := farthestVertexFromLine(lvl, alignSector, lv1, lv2)

	srcHeight, destHeight := float64(sec.FloorHeight), float64(ref.FloorHeight)
	if !floor {
		srcHeight, destHeight = float64(sec.CeilingHeight), float64(ref.CeilingHeight)
	}

	p := mathutil.DVec3{X: float64(lv1.X), Y: float64(lv1.Y), Z: destHeight}
	e1 := mathutil.DVec3{X: float64(lv2.X - lv1.X), Y: float64(lv2.Y - lv1.Y), Z: 0}
	e2 := mathutil.DVec3{X: float64(refVert.X - lv1.X), Y: float64(refVert.Y - lv1.Y), Z: srcHeight - destHeight}

	cross := e1.Cross(e2)
	if cross.Length() == 0 {
		return
	}
	cross = cross.Normalize()
	if (cross.Z < 0 && floor) || (cross.Z > 0 && !floor) {
		cross = cross.Scale(-1)
	}

	plane := mathutil.Plane{A: cross.X, B: cross.Y, C: cross.Z, D: cross.Dot(p)}
	if floor {
		sec.FloorPlane = plane
	} else {
		sec.CeilingPlane = plane
	}
}

// farthestVertexFromLine returns sectorIdx's boundary vertex with the
// largest perpendicular distance from line (v1,v2); together with the
// line's own endpoints it defines the aligned plane.
func farthestVertexFromLine(lvl *level.Level, sectorIdx uint32, v1, v2 mathutil.Vec2) mathutil.Vec2 {
	edge := v2.Sub(v1)
	best := lvl.Vertexes[lvl.Lines[lvl.Sectors[sectorIdx].Lines[0]].V1].Vec2()
	bestDist := float32(-1)
	for _, lineIdx := range lvl.Sectors[sectorIdx].Lines {
		ln := lvl.Lines[lineIdx]
		for _, vi := range [2]uint32{ln.V1, ln.V2} {
			vert := lvl.Vertexes[vi].Vec2()
			dist := edge.Cross(vert.Sub(v1))
			if dist < 0 {
				dist = -dist
			}
			if dist > bestDist {
				bestDist = dist
				best = vert
			}
		}
	}
	return best
}

// applyPlaneCopy copies floor and/or ceiling planes wholesale from the
// sector tagged by args[0..3] into the line's front/back sector,
// matching ZDoom's Plane_Copy special.
func applyPlaneCopy(lvl *level.Level, l *level.LineDef) {
	if !l.HasFrontSector() {
		return
	}
	front := &lvl.Sectors[l.FrontSector]

	if srcTag := l.Args[0]; srcTag != 0 {
		if src, ok := findSectorByTag(lvl, srcTag); ok {
			front.FloorPlane = lvl.Sectors[src].FloorPlane
		}
	}
	if srcTag := l.Args[1]; srcTag != 0 {
		if src, ok := findSectorByTag(lvl, srcTag); ok {
			front.CeilingPlane = lvl.Sectors[src].CeilingPlane
		}
	}

	if !l.HasBackSector() {
		return
	}
	back := &lvl.Sectors[l.BackSector]
	if srcTag := l.Args[2]; srcTag != 0 {
		if src, ok := findSectorByTag(lvl, srcTag); ok {
			back.FloorPlane = lvl.Sectors[src].FloorPlane
		}
	}
	if srcTag := l.Args[3]; srcTag != 0 {
		if src, ok := findSectorByTag(lvl, srcTag); ok {
			back.CeilingPlane = lvl.Sectors[src].CeilingPlane
		}
	}
}

func findSectorByTag(lvl *level.Level, tag int32) (uint32, bool) {
	for i, s := range lvl.Sectors {
		for _, t := range s.Tags {
			if t == tag {
				return uint32(i), true
			}
		}
	}
	return 0, false
}

// warnUnsupportedSlopeThings logs the Vavoom and point-line slope thing
// types this port recognizes but leaves flat.
func warnUnsupportedSlopeThings(lvl *level.Level, log *zap.Logger) {
	for _, t := range lvl.Things {
		switch t.Type {
		case thingVavoofFloorSlope, thingVavoofCeilingSlope, thingPointLineFloor, thingPointLineCeiling:
			log.Warn("slope thing type recognized but not implemented; sector left flat",
				zap.Int("type", int(t.Type)))
		}
	}
}
