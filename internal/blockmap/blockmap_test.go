package blockmap

import (
	"testing"

	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/mathutil"
)

func twoLineLevel() *level.Level {
	fi := mathutil.FixedFromInt
	lvl := &level.Level{
		Vertexes: []level.Vertex{
			{X: fi(0), Y: fi(0)},
			{X: fi(300), Y: fi(0)},
			{X: fi(0), Y: fi(300)},
		},
		Lines: []level.LineDef{
			{V1: 0, V2: 1},
			{V1: 0, V2: 2},
		},
	}
	lvl.MinX, lvl.MinY = fi(0), fi(0)
	lvl.MaxX, lvl.MaxY = fi(300), fi(300)
	return lvl
}

func TestBuildCoversLineEndpoints(t *testing.T) {
	lvl := twoLineLevel()
	bm, err := Build(lvl, false)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if bm.Width < 3 || bm.Height < 3 {
		t.Fatalf("expected a grid spanning ~300 units (3 cells), got %dx%d", bm.Width, bm.Height)
	}

	origin := bm.cellIndex(0, 0)
	if origin < 0 || len(bm.Cells[origin]) == 0 {
		t.Fatal("expected the origin cell to contain at least one line")
	}

	farX := bm.cellIndex(2, 0)
	found := false
	for _, li := range bm.Cells[farX] {
		if li == 0 {
			found = true
		}
	}
	if !found {
		t.Error("expected line 0 to reach the cell at its far endpoint")
	}
}

func TestBuildPackedDeduplicatesIdenticalCells(t *testing.T) {
	lvl := twoLineLevel()
	bm, err := Build(lvl, true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a, b := bm.cellIndex(1, 0), bm.cellIndex(2, 0)
	if len(bm.Cells[a]) == 0 || len(bm.Cells[b]) == 0 || &bm.Cells[a][0] != &bm.Cells[b][0] {
		t.Error("expected cells (1,0) and (2,0), which both list only line 0, to share one list")
	}
	emptyCount := 0
	for _, c := range bm.Cells {
		if len(c) == 0 {
			emptyCount++
		}
	}
	if emptyCount == 0 {
		t.Skip("grid too small to exercise dedupe meaningfully")
	}
}

func TestBuildRejectsOversizedGrid(t *testing.T) {
	// 32767 is close to the largest coordinate a 16.16 fixed-point value
	// can hold; at the 128-unit cell size that's enough to push the
	// grid's cell count past the 16-bit offset table limit.
	fi := mathutil.FixedFromInt
	lvl := &level.Level{
		Vertexes: []level.Vertex{{X: fi(0), Y: fi(0)}, {X: fi(32767), Y: fi(32767)}},
		Lines:    []level.LineDef{{V1: 0, V2: 1}},
		MinX:     fi(0), MinY: fi(0),
		MaxX: fi(32767), MaxY: fi(32767),
	}
	_, err := Build(lvl, false)
	if err == nil {
		t.Fatal("expected ErrTooLarge for a map near the coordinate limit")
	}
}
