package levelmesh

import (
	"testing"

	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

func boxRoom() *level.Level {
	fi := mathutil.FixedFromInt
	lvl := &level.Level{
		Vertexes: []level.Vertex{
			{X: fi(0), Y: fi(0)},
			{X: fi(256), Y: fi(0)},
			{X: fi(256), Y: fi(256)},
			{X: fi(0), Y: fi(256)},
		},
		Lines: []level.LineDef{
			{V1: 0, V2: 1, SideNum: [2]uint32{0, level.NoIndex}},
			{V1: 1, V2: 2, SideNum: [2]uint32{1, level.NoIndex}},
			{V1: 2, V2: 3, SideNum: [2]uint32{2, level.NoIndex}},
			{V1: 3, V2: 0, SideNum: [2]uint32{3, level.NoIndex}},
		},
		Sides: []level.SideDef{
			{Sector: 0}, {Sector: 0}, {Sector: 0}, {Sector: 0},
		},
		Sectors: []level.Sector{
			{FloorHeight: 0, CeilingHeight: 128},
		},
	}
	if err := lvl.FixupBackPointers(nil); err != nil {
		panic(err)
	}
	for i := range lvl.Sectors {
		lvl.Sectors[i].FloorPlane = mathutil.PlaneFromHeight(float64(lvl.Sectors[i].FloorHeight), true)
		lvl.Sectors[i].CeilingPlane = mathutil.PlaneFromHeight(float64(lvl.Sectors[i].CeilingHeight), false)
	}
	return lvl
}

func TestBuildProducesFloorCeilingAndWalls(t *testing.T) {
	lvl := boxRoom()
	mesh, err := Build(lvl, nil, config.LightmapConfig{AtlasSize: 512})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	var floors, ceilings, walls int
	for _, s := range mesh.Surfaces {
		switch s.Kind {
		case SurfaceFloor:
			floors++
		case SurfaceCeiling:
			ceilings++
		default:
			walls++
		}
	}
	if floors != 1 {
		t.Errorf("expected 1 floor surface, got %d", floors)
	}
	if ceilings != 1 {
		t.Errorf("expected 1 ceiling surface, got %d", ceilings)
	}
	if walls != 4 {
		t.Errorf("expected 4 wall surfaces, got %d", walls)
	}

	for i, s := range mesh.Surfaces {
		if int(s.TileID) < 0 || int(s.TileID) >= len(mesh.Tiles) {
			t.Errorf("surface %d has unassigned tile id %d", i, s.TileID)
		}
	}
}

func TestTrianglesNonEmpty(t *testing.T) {
	lvl := boxRoom()
	mesh, err := Build(lvl, nil, config.LightmapConfig{AtlasSize: 512})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tris := mesh.Triangles()
	if len(tris) == 0 {
		t.Fatal("expected at least one triangle")
	}
}
