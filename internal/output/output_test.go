package output

import (
	"testing"

	"github.com/zdray-go/zdray/internal/blockmap"
	"github.com/zdray-go/zdray/internal/bsp"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/mathutil"
)

// fakeWriter is a minimal in-memory wad.Writer for exercising Write
// without touching internal/wad or the filesystem.
type fakeWriter struct {
	names []string
	data  [][]byte
}

func (w *fakeWriter) AddLump(name string, data []byte) {
	w.names = append(w.names, name)
	w.data = append(w.data, data)
}
func (w *fakeWriter) Save(path string) error { return nil }

func (w *fakeWriter) has(name string) bool {
	for _, n := range w.names {
		if n == name {
			return true
		}
	}
	return false
}

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
			{FloorHeight: 0, CeilingHeight: 128, Tags: []int32{0}},
		},
		OldToNewSector: []uint32{0},
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

func TestWriteProducesCoreLumps(t *testing.T) {
	lvl := boxRoom()

	tree, err := bsp.Build(lvl, config.NodesConfig{MaxSegs: 64, SplitCost: 8, AAPreference: 16})
	if err != nil {
		t.Fatalf("bsp.Build() error = %v", err)
	}
	bm, err := blockmap.Build(lvl, false)
	if err != nil {
		t.Fatalf("blockmap.Build() error = %v", err)
	}
	mesh, err := levelmesh.Build(lvl, tree, config.LightmapConfig{AtlasSize: 512})
	if err != nil {
		t.Fatalf("levelmesh.Build() error = %v", err)
	}

	w := &fakeWriter{}
	opts := Options{Tree: tree, Blockmap: bm, Mesh: mesh}
	if err := Write(lvl, opts, w, *config.Default()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	for _, name := range []string{"THINGS", "LINEDEFS", "SIDEDEFS", "VERTEXES", "SECTORS", "NODES", "SSECTORS", "SEGS", "BLOCKMAP", "REJECT", "LIGHTMAP"} {
		if !w.has(name) {
			t.Errorf("expected lump %s to be written", name)
		}
	}
}

func TestEncodeRejectZeroAndFullModes(t *testing.T) {
	lvl := boxRoom()
	lvl.Sectors = append(lvl.Sectors, level.Sector{})

	zero := encodeReject(lvl, nil, config.RejectConfig{Zero: true})
	for _, b := range zero {
		if b != 0 {
			t.Fatal("expected an all-zero reject table")
		}
	}

	full := encodeReject(lvl, nil, config.RejectConfig{Full: true})
	for _, b := range full {
		if b != 0xff {
			t.Fatal("expected an all-one reject table")
		}
	}
}

func TestEncodeMapLumpsRoundTripsVertexCoordinates(t *testing.T) {
	lvl := boxRoom()
	lumps := encodeMapLumps(lvl)
	for _, l := range lumps {
		if l.Name == "VERTEXES" {
			if len(l.Data) != len(lvl.Vertexes)*4 {
				t.Fatalf("expected %d bytes, got %d", len(lvl.Vertexes)*4, len(l.Data))
			}
		}
	}
}
