package bsp

import (
	"testing"

	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

func squareLevel() *level.Level {
	fi := mathutil.FixedFromInt
	return &level.Level{
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
	}
}

func TestBuildSimpleSquareProducesOneSubsector(t *testing.T) {
	lvl := squareLevel()
	cfg := config.Default().Nodes

	tree, err := Build(lvl, cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(tree.SubSectors) == 0 {
		t.Fatal("expected at least one subsector")
	}
	total := 0
	for _, ss := range tree.SubSectors {
		total += int(ss.NumSegs)
	}
	if total != len(tree.Segs) {
		t.Errorf("subsector seg counts (%d) don't cover all segs (%d)", total, len(tree.Segs))
	}
	if total < 4 {
		t.Errorf("expected at least 4 segs total (splits may add more), got %d", total)
	}
}

func twoSquaresLevel() *level.Level {
	fi := mathutil.FixedFromInt
	return &level.Level{
		Vertexes: []level.Vertex{
			{X: fi(0), Y: fi(0)},
			{X: fi(256), Y: fi(0)},
			{X: fi(256), Y: fi(256)},
			{X: fi(0), Y: fi(256)},
			{X: fi(1000), Y: fi(0)},
			{X: fi(1256), Y: fi(0)},
			{X: fi(1256), Y: fi(256)},
			{X: fi(1000), Y: fi(256)},
		},
		Lines: []level.LineDef{
			{V1: 0, V2: 1, SideNum: [2]uint32{0, level.NoIndex}},
			{V1: 1, V2: 2, SideNum: [2]uint32{1, level.NoIndex}},
			{V1: 2, V2: 3, SideNum: [2]uint32{2, level.NoIndex}},
			{V1: 3, V2: 0, SideNum: [2]uint32{3, level.NoIndex}},
			{V1: 4, V2: 5, SideNum: [2]uint32{4, level.NoIndex}},
			{V1: 5, V2: 6, SideNum: [2]uint32{5, level.NoIndex}},
			{V1: 6, V2: 7, SideNum: [2]uint32{6, level.NoIndex}},
			{V1: 7, V2: 4, SideNum: [2]uint32{7, level.NoIndex}},
		},
	}
}

// Two spatially separate rooms give the builder a real splitting
// candidate (one room's wall cleanly separates the other's segs),
// unlike a single convex room which can never be split further.
func TestBuildSplitsTwoDisjointRooms(t *testing.T) {
	lvl := twoSquaresLevel()
	cfg := config.Default().Nodes
	cfg.MaxSegs = 1

	tree, err := Build(lvl, cfg)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(tree.Nodes) == 0 {
		t.Error("expected at least one node splitting the two rooms apart")
	}
	if len(tree.SubSectors) < 2 {
		t.Errorf("expected at least 2 subsectors, got %d", len(tree.SubSectors))
	}
}
