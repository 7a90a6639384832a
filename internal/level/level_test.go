package level

import (
	"encoding/binary"
	"testing"
)

// fakeReader is a minimal in-memory wad.Reader for exercising Load
// without touching internal/wad or the filesystem.
type fakeReader struct {
	names []string
	data  [][]byte
}

func (f *fakeReader) NumLumps() int      { return len(f.names) }
func (f *fakeReader) LumpName(i int) string { return f.names[i] }
func (f *fakeReader) IndexOf(name string, from int) int {
	for i := from; i < len(f.names); i++ {
		if f.names[i] == name {
			return i
		}
	}
	return -1
}
func (f *fakeReader) ReadLump(i int) ([]byte, error) { return f.data[i], nil }

func (f *fakeReader) add(name string, data []byte) {
	f.names = append(f.names, name)
	f.data = append(f.data, data)
}

func le16(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func buildSimpleSquareMap() *fakeReader {
	r := &fakeReader{}
	r.add("MAP01", nil)

	// Four vertexes forming a unit square at 0..64.
	verts := concat(
		le16(0), le16(0),
		le16(64), le16(0),
		le16(64), le16(64),
		le16(0), le16(64),
	)
	r.add("THINGS", nil)
	r.add("LINEDEFS", concat(
		// v1,v2,flags,special,tag,side0,side1
		le16(0), le16(1), le16(0), le16(0), le16(0), le16(0), le16(0xffff),
		le16(1), le16(2), le16(0), le16(0), le16(0), le16(1), le16(0xffff),
		le16(2), le16(3), le16(0), le16(0), le16(0), le16(2), le16(0xffff),
		le16(3), le16(0), le16(0), le16(0), le16(0), le16(3), le16(0xffff),
	))
	side := func(sector uint16) []byte {
		b := make([]byte, 30)
		binary.LittleEndian.PutUint16(b[28:30], sector)
		copy(b[4:12], "-")
		copy(b[12:20], "-")
		copy(b[20:28], "MIDTEX")
		return b
	}
	r.add("SIDEDEFS", concat(side(0), side(0), side(0), side(0)))
	r.add("VERTEXES", verts)
	sector := make([]byte, 26)
	binary.LittleEndian.PutUint16(sector[0:2], 0)
	binary.LittleEndian.PutUint16(sector[2:4], 128)
	copy(sector[4:12], "FLOOR")
	copy(sector[12:20], "CEIL")
	binary.LittleEndian.PutUint16(sector[20:22], 200)
	r.add("SECTORS", sector)

	return r
}

func TestLoadBinarySimpleSquare(t *testing.T) {
	r := buildSimpleSquareMap()
	lvl, err := Load(r, "MAP01", LoadConfig{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(lvl.Vertexes) != 4 {
		t.Fatalf("expected 4 vertexes, got %d", len(lvl.Vertexes))
	}
	if len(lvl.Lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lvl.Lines))
	}
	if len(lvl.Sectors) != 1 {
		t.Fatalf("expected 1 surviving sector, got %d", len(lvl.Sectors))
	}
	for i, l := range lvl.Lines {
		if !l.HasFrontSector() {
			t.Errorf("line %d: expected resolved front sector", i)
		}
		if l.HasBackSector() {
			t.Errorf("line %d: expected one-sided line", i)
		}
	}
	if got := lvl.Sectors[0].FloorHeight; got != 0 {
		t.Errorf("expected floor height 0, got %d", got)
	}
	if got := lvl.Sectors[0].CeilingHeight; got != 128 {
		t.Errorf("expected ceiling height 128, got %d", got)
	}
	if len(lvl.Sectors[0].Lines) != 4 {
		t.Errorf("expected sector to list all 4 lines, got %d", len(lvl.Sectors[0].Lines))
	}
}

func TestLoadUDMF(t *testing.T) {
	r := &fakeReader{}
	r.add("MAP01", nil)
	src := `namespace = "ZDoom";
vertex { x = 0.0; y = 0.0; }
vertex { x = 64.0; y = 0.0; }
sector { heightfloor = 0; heightceiling = 128; texturefloor = "FLOOR"; textureceiling = "CEIL"; }
sidedef { sector = 0; texturemiddle = "MID"; }
linedef { v1 = 0; v2 = 1; sidefront = 0; }
`
	r.add("TEXTMAP", []byte(src))
	r.add("ENDMAP", nil)

	lvl, err := Load(r, "MAP01", LoadConfig{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !lvl.UDMF {
		t.Error("expected UDMF flag set")
	}
	if len(lvl.Vertexes) != 2 {
		t.Fatalf("expected 2 vertexes, got %d", len(lvl.Vertexes))
	}
	if len(lvl.Sectors) != 1 {
		t.Fatalf("expected 1 sector, got %d", len(lvl.Sectors))
	}
	if !lvl.Lines[0].HasFrontSector() {
		t.Error("expected resolved front sector on the only line")
	}
}

func TestPruneRemovesZeroLengthLineAndUnusedSector(t *testing.T) {
	lvl := &Level{
		Vertexes: []Vertex{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 64, Y: 0}},
		Lines: []LineDef{
			{V1: 0, V2: 1, SideNum: [2]uint32{0, NoIndex}},
			{V1: 0, V2: 2, SideNum: [2]uint32{1, NoIndex}},
		},
		Sides: []SideDef{
			{Sector: 0},
			{Sector: 1},
		},
		Sectors: []Sector{{FloorHeight: 0}, {FloorHeight: 64}},
	}

	if err := lvl.Prune(); err != nil {
		t.Fatalf("Prune() returned unexpected error: %v", err)
	}

	if len(lvl.Lines) != 1 {
		t.Fatalf("expected zero-length line removed, got %d lines", len(lvl.Lines))
	}
	if len(lvl.Sectors) != 1 {
		t.Fatalf("expected unused sector removed, got %d sectors", len(lvl.Sectors))
	}
	if lvl.OldToNewSector[0] != NoIndex {
		t.Errorf("expected sector 0 remapped to NoIndex, got %d", lvl.OldToNewSector[0])
	}
	if lvl.OldToNewSector[1] != 0 {
		t.Errorf("expected sector 1 remapped to 0, got %d", lvl.OldToNewSector[1])
	}
}
