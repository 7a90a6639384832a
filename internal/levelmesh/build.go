package levelmesh

import (
	"github.com/zdray-go/zdray/internal/bsp"
	"github.com/zdray-go/zdray/internal/bvh"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
)

// Build assembles the full lightmapped mesh for lvl: sector groups,
// wall/floor/ceiling surfaces, smoothing groups, a packed lightmap
// atlas, and the portal-propagated light list. tree may be nil when
// node building is disabled; floor/ceiling emission then falls back to
// whole-sector boundaries instead of per-subsector footprints.
func Build(lvl *level.Level, tree *bsp.Tree, cfg config.LightmapConfig) (*Mesh, error) {
	assignSectorGroups(lvl)

	surfaces := buildFloorCeiling(lvl, tree)
	surfaces = append(surfaces, buildWalls(lvl)...)
	for i := range surfaces {
		surfaces[i].Group = lvl.Sectors[surfaces[i].Sector].Group
	}

	assignSmoothingGroups(surfaces)

	atlasSize := int32(cfg.AtlasSize)
	if atlasSize <= 0 {
		atlasSize = 2048
	}
	tiles := buildAtlas(surfaces, atlasSize)

	mesh := &Mesh{Surfaces: surfaces, Tiles: tiles, AtlasSize: atlasSize}
	occlusion := bvh.Build(mesh.Triangles())

	lights := gatherLights(lvl)
	groupLights := propagateLights(lvl, lights, occlusion)
	mesh.Lights = lights
	mesh.GroupLights = groupLights
	for i := range mesh.Surfaces {
		mesh.Surfaces[i].LightList = groupLights[mesh.Surfaces[i].Group]
	}

	return mesh, nil
}

// Triangles flattens every non-sky surface into BVH-ready triangles,
// tagging each with its surface index as the payload so a hit can be
// traced back to its Surface (and from there, its TileID) during bake.
func (m *Mesh) Triangles() []bvh.Triangle {
	var out []bvh.Triangle
	for i, s := range m.Surfaces {
		if s.Sky {
			continue
		}
		for _, tri := range s.Triangulate() {
			out = append(out, bvh.Triangle{V0: tri[0], V1: tri[1], V2: tri[2], Payload: uint32(i)})
		}
	}
	return out
}
