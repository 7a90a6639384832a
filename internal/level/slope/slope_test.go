package slope

import (
	"testing"

	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

func triangleSector() *level.Level {
	lvl := &level.Level{
		Vertexes: []level.Vertex{
			{X: mathutil.FixedFromInt(0), Y: mathutil.FixedFromInt(0)},
			{X: mathutil.FixedFromInt(64), Y: mathutil.FixedFromInt(0)},
			{X: mathutil.FixedFromInt(0), Y: mathutil.FixedFromInt(64)},
		},
		IntVertexes: []level.IntVertex{
			level.NewIntVertex(),
			level.NewIntVertex(),
			level.NewIntVertex(),
		},
		Lines: []level.LineDef{
			{V1: 0, V2: 1},
			{V1: 1, V2: 2},
			{V1: 2, V2: 0},
		},
		Sectors: []level.Sector{
			{FloorHeight: 0, CeilingHeight: 128, Lines: []uint32{0, 1, 2}},
		},
	}
	return lvl
}

func TestResolveVertexFloorHeights(t *testing.T) {
	lvl := triangleSector()
	lvl.IntVertexes[0].ZFloor = 0
	lvl.IntVertexes[1].ZFloor = 0
	lvl.IntVertexes[2].ZFloor = 64

	if err := Resolve(lvl, nil); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	plane := lvl.Sectors[0].FloorPlane
	if got := plane.ZAt(0, 0); got != 0 {
		t.Errorf("expected z=0 at (0,0), got %v", got)
	}
	if got := plane.ZAt(0, 64); got < 63.9 || got > 64.1 {
		t.Errorf("expected z~=64 at (0,64), got %v", got)
	}
}

func TestApplyVertexHeightThing(t *testing.T) {
	lvl := triangleSector()
	lvl.Things = []level.Thing{
		{X: mathutil.FixedFromInt(0), Y: mathutil.FixedFromInt(64), Height: 96, Type: thingVertexFloorHeight},
	}
	lvl.IntVertexes[0].ZFloor = 0
	lvl.IntVertexes[1].ZFloor = 0

	if err := Resolve(lvl, nil); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if lvl.IntVertexes[2].ZFloor != 96 {
		t.Errorf("expected vertex 2 ZFloor=96, got %v", lvl.IntVertexes[2].ZFloor)
	}
}

func TestPlaneCopy(t *testing.T) {
	lvl := triangleSector()
	lvl.Sectors = append(lvl.Sectors, level.Sector{FloorHeight: 32, CeilingHeight: 128, Tags: []int32{5}})
	lvl.Sectors[1].FloorPlane = mathutil.PlaneFromHeight(32, true)

	lvl.Lines[0].Special = specialPlaneCopy
	lvl.Lines[0].Args = [5]int32{5, 0, 0, 0, 0}
	lvl.Lines[0].SetFrontSector(0)

	if err := Resolve(lvl, nil); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got := lvl.Sectors[0].FloorPlane.ZAt(0, 0); got != 32 {
		t.Errorf("expected copied floor height 32, got %v", got)
	}
}
