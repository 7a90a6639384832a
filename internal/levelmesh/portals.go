package levelmesh

import (
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

// maxPortalDepth bounds how many portal hops a light's propagation
// recurses through, the same backstop a real engine's portal renderer
// uses to keep a loop of portals from recursing forever.
const maxPortalDepth = 6

// portal is one directed hop from one sector group to another across a
// two-sided line. displacement is the world-space offset a teleporting
// Line_SetPortal applies to anything crossing it; zero for an ordinary
// archway, where both sides already share one coordinate space.
type portal struct {
	toGroup      uint32
	midpoint     mathutil.Vec3
	displacement mathutil.Vec3
}

// buildPortalGraph indexes every sector-group boundary line as a pair
// of directed portal hops, one per direction.
func buildPortalGraph(lvl *level.Level) map[uint32][]portal {
	graph := map[uint32][]portal{}
	for i := range lvl.Lines {
		l := &lvl.Lines[i]
		if !l.TwoSided() || !l.HasFrontSector() || !l.HasBackSector() {
			continue
		}
		gf := lvl.Sectors[l.FrontSector].Group
		gb := lvl.Sectors[l.BackSector].Group
		if gf == gb {
			continue
		}
		v1, v2 := lvl.Vertexes[l.V1].Vec2(), lvl.Vertexes[l.V2].Vec2()
		mid := mathutil.Vec3{X: (v1.X + v2.X) / 2, Y: (v1.Y + v2.Y) / 2}

		disp := mathutil.Vec3{}
		if l.Special == specialSetPortal {
			if destLine, ok := findPortalPartner(lvl, i); ok {
				dv1 := lvl.Vertexes[lvl.Lines[destLine].V1].Vec2()
				disp = mathutil.Vec3{X: dv1.X - v1.X, Y: dv1.Y - v1.Y}
			}
		}

		graph[gf] = append(graph[gf], portal{toGroup: gb, midpoint: mid, displacement: disp})
		graph[gb] = append(graph[gb], portal{toGroup: gf, midpoint: mid, displacement: disp.Scale(-1)})
	}
	return graph
}

// findPortalPartner locates the other Line_SetPortal sharing lineIdx's
// tag, the conventional way a pair of linked portal lines is matched.
func findPortalPartner(lvl *level.Level, lineIdx int) (int, bool) {
	tag := lvl.Lines[lineIdx].Tag
	for i := range lvl.Lines {
		if i == lineIdx {
			continue
		}
		if l := &lvl.Lines[i]; l.Special == specialSetPortal && l.Tag == tag {
			return i, true
		}
	}
	return 0, false
}
