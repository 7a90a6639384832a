package levelmesh

import (
	"strconv"
	"strings"

	"github.com/zdray-go/zdray/internal/bvh"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

const (
	thingPointLight = 9876
	thingSpotLight  = 9881
)

// gatherLights converts pointlight/spotlight things into Lights, each
// located in the sector whose boundary polygon contains it. A
// spotlight is baked as an omnidirectional point light: Light carries
// no cone axis or angle, so its direction is ignored rather than
// approximated.
func gatherLights(lvl *level.Level) []Light {
	var out []Light
	for _, t := range lvl.Things {
		switch t.Type {
		case thingPointLight, thingSpotLight:
		default:
			continue
		}

		pos2 := mathutil.Vec2{X: t.X.ToFloat(), Y: t.Y.ToFloat()}
		secIdx, ok := findContainingSector(lvl, pos2)
		if !ok {
			continue
		}

		z := float64(lvl.Sectors[secIdx].FloorHeight) + float64(t.Height)

		out = append(out, Light{
			Pos:       mathutil.Vec3{X: pos2.X, Y: pos2.Y, Z: float32(z)},
			Color:     lightColor(t),
			Intensity: lightIntensity(t),
			Radius:    lightRadius(t),
			SectorIdx: secIdx,
		})
	}
	return out
}

// lightIntensity reads the UDMF lightintensity property, falling back
// to the Hexen arg0/255 scale for binary-format things, then 1.
func lightIntensity(t level.Thing) float32 {
	if v, ok := t.Props["lightintensity"]; ok {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	if t.Args[0] != 0 {
		return float32(t.Args[0]) / 255.0
	}
	return 1.0
}

// lightRadius reads the UDMF lightdistance property, falling back to
// the Hexen arg1 raw map unit value, then 128.
func lightRadius(t level.Thing) float32 {
	if v, ok := t.Props["lightdistance"]; ok {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	if t.Args[1] != 0 {
		return float32(t.Args[1])
	}
	return 128
}

// lightColor reads the UDMF lightcolor property (a 0xRRGGBB packed
// integer) and falls back to white when absent.
func lightColor(t level.Thing) mathutil.Vec3 {
	v, ok := t.Props["lightcolor"]
	if !ok {
		return mathutil.Vec3{X: 1, Y: 1, Z: 1}
	}
	packed, err := strconv.ParseUint(strings.TrimPrefix(v, "0x"), 16, 32)
	if err != nil {
		return mathutil.Vec3{X: 1, Y: 1, Z: 1}
	}
	r := float32((packed>>16)&0xff) / 255.0
	g := float32((packed>>8)&0xff) / 255.0
	b := float32(packed&0xff) / 255.0
	return mathutil.Vec3{X: r, Y: g, Z: b}
}

// findContainingSector does a brute-force point-in-polygon test against
// every sector's boundary loop; acceptable for an offline batch tool
// where light counts are in the hundreds, not per-frame.
func findContainingSector(lvl *level.Level, p mathutil.Vec2) (uint32, bool) {
	for secIdx := range lvl.Sectors {
		loop := sectorBoundaryLoop(lvl, uint32(secIdx))
		if len(loop) < 3 {
			continue
		}
		if pointInPolygon(lvl, loop, p) {
			return uint32(secIdx), true
		}
	}
	return 0, false
}

func pointInPolygon(lvl *level.Level, loop []uint32, p mathutil.Vec2) bool {
	inside := false
	n := len(loop)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		vi := lvl.Vertexes[loop[i]].Vec2()
		vj := lvl.Vertexes[loop[j]].Vec2()
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			xIntersect := vj.X + (p.Y-vj.Y)/(vi.Y-vj.Y)*(vi.X-vj.X)
			if p.X < xIntersect {
				inside = !inside
			}
		}
	}
	return inside
}

// propagateLights recursively pushes each light's visibility across
// every portal reachable from its home sector group, instead of the
// single flat hop a plain adjacency table would give. At each portal
// it casts a shadow ray from the light's current (portal-transformed)
// position to the portal's midpoint through tree, the mesh's own
// triangle BVH: an occluded portal stops that branch of the recursion,
// the same way a real engine's portal renderer culls behind a closed
// door. A teleporting Line_SetPortal carries the light's effective
// position through its displacement before the recursion continues on
// the other side, so lighting stays correct across linked portals that
// don't share one coordinate space.
func propagateLights(lvl *level.Level, lights []Light, tree *bvh.BVH) map[uint32][]int {
	graph := buildPortalGraph(lvl)

	out := map[uint32][]int{}
	seen := map[[2]uint32]bool{}
	addLight := func(group uint32, lightIdx int) {
		key := [2]uint32{group, uint32(lightIdx)}
		if seen[key] {
			return
		}
		seen[key] = true
		out[group] = append(out[group], lightIdx)
	}

	for i, lt := range lights {
		origin := lvl.Sectors[lt.SectorIdx].Group
		addLight(origin, i)
		visited := map[uint32]bool{origin: true}
		propagateFromGroup(tree, graph, origin, lt.Pos, 0, visited, func(g uint32) { addLight(g, i) })
	}
	return out
}

func propagateFromGroup(tree *bvh.BVH, graph map[uint32][]portal, group uint32, lightPos mathutil.Vec3, depth int, visited map[uint32]bool, visit func(uint32)) {
	if depth >= maxPortalDepth {
		return
	}
	for _, p := range graph[group] {
		if visited[p.toGroup] {
			continue
		}
		if tree != nil && tree.FindAnyHit(lightPos, p.midpoint.Sub(lightPos), 1e-3, 1) {
			continue
		}
		visited[p.toGroup] = true
		visit(p.toGroup)
		propagateFromGroup(tree, graph, p.toGroup, lightPos.Add(p.displacement), depth+1, visited, visit)
	}
}
