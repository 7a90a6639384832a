package pipeline

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/zdray-go/zdray/internal/config"
)

// fakeReader is a minimal in-memory wad.Reader, the same shape
// internal/level's own tests use, built directly here to avoid
// depending on an unexported test helper from another package.
type fakeReader struct {
	names []string
	data  [][]byte
}

func (f *fakeReader) NumLumps() int         { return len(f.names) }
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

type fakeWriter struct {
	names []string
	data  [][]byte
}

func (w *fakeWriter) AddLump(name string, data []byte) {
	w.names = append(w.names, name)
	w.data = append(w.data, data)
}
func (w *fakeWriter) Save(string) error { return nil }

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

// emptySquareMap builds spec scenario 1: a single 64x64 square sector
// bounded by four one-sided lines, no things.
func emptySquareMap() *fakeReader {
	r := &fakeReader{}
	r.add("MAP01", nil)
	r.add("THINGS", nil)
	r.add("LINEDEFS", concat(
		le16(0), le16(1), le16(0), le16(0), le16(0), le16(0), le16(0xffff),
		le16(1), le16(2), le16(0), le16(0), le16(0), le16(1), le16(0xffff),
		le16(2), le16(3), le16(0), le16(0), le16(0), le16(2), le16(0xffff),
		le16(3), le16(0), le16(0), le16(0), le16(0), le16(3), le16(0xffff),
	))
	r.add("SIDEDEFS", concat(
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
	))
	r.add("VERTEXES", concat(
		le16(0), le16(0),
		le16(64), le16(0),
		le16(64), le16(64),
		le16(0), le16(64),
	))
	r.add("SECTORS", concat(
		le16(0), le16(128), pad8("FLOOR"), pad8("CEIL"), le16(160), le16(0), le16(0),
	))
	return r
}

func pad8(s string) []byte {
	b := make([]byte, 8)
	copy(b, s)
	return b
}

func TestRunEmptySquareMapProducesExpectedSurfaceCounts(t *testing.T) {
	reader := emptySquareMap()
	writer := &fakeWriter{}

	result, err := Run(context.Background(), reader, "MAP01", *config.Default(), writer, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Level.Lines) != 4 {
		t.Errorf("expected 4 lines to survive pruning, got %d", len(result.Level.Lines))
	}

	var floors, ceilings, walls int
	for _, s := range result.Mesh.Surfaces {
		switch int(s.Kind) {
		case 0:
			floors++
		case 1:
			ceilings++
		default:
			walls++
		}
	}
	if floors != 1 || ceilings != 1 || walls != 4 {
		t.Errorf("expected 1 floor, 1 ceiling, 4 walls; got %d floors, %d ceilings, %d walls", floors, ceilings, walls)
	}

	for _, c := range result.Bake {
		if c.Color.X != 0 || c.Color.Y != 0 || c.Color.Z != 0 {
			t.Error("expected every texel to bake to black with no lights in the map")
		}
	}

	expectLump := func(name string) {
		for _, n := range writer.names {
			if n == name {
				return
			}
		}
		t.Errorf("expected output lump %s", name)
	}
	for _, name := range []string{"VERTEXES", "LINEDEFS", "SIDEDEFS", "SECTORS", "THINGS", "NODES", "BLOCKMAP", "REJECT"} {
		expectLump(name)
	}
}

func le16s(v int16) []byte { return le16(uint16(v)) }

// hexenLine builds one 16-byte Hexen LINEDEFS record with no special
// and a single-sided front sidedef index.
func hexenLine(v1, v2 uint16, sideNum uint16) []byte {
	return concat(
		le16(v1), le16(v2),
		[]byte{0},          // special
		[]byte{0, 0, 0, 0, 0}, // args
		le16(0),            // flags
		le16(sideNum),      // front sidedef
		le16(0xffff),       // back sidedef (none)
	)
}

// hexenSquareMapWithLight builds the same 64x64 square room as
// emptySquareMap but in Hexen format, with one 9876 point-light thing
// sitting in the middle of the floor.
func hexenSquareMapWithLight() *fakeReader {
	r := &fakeReader{}
	r.add("MAP01", nil)
	r.add("THINGS", concat(
		le16(0),         // TID
		le16s(32),       // x
		le16s(32),       // y
		le16s(40),       // z (height above floor)
		le16(0),         // angle
		le16(9876),      // type: point light
		le16(0),         // flags
		[]byte{0},       // special
		[]byte{255, 0, 0, 0, 0}, // args: intensity=255 -> 1.0
	))
	r.add("BEHAVIOR", []byte{0})
	r.add("LINEDEFS", concat(
		hexenLine(0, 1, 0),
		hexenLine(1, 2, 1),
		hexenLine(2, 3, 2),
		hexenLine(3, 0, 3),
	))
	r.add("SIDEDEFS", concat(
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
		le16(0), le16(0), pad8("-"), pad8("-"), pad8("-"), le16(0),
	))
	r.add("VERTEXES", concat(
		le16(0), le16(0),
		le16(64), le16(0),
		le16(64), le16(64),
		le16(0), le16(64),
	))
	r.add("SECTORS", concat(
		le16(0), le16(128), pad8("FLOOR"), pad8("CEIL"), le16(160), le16(0), le16(0),
	))
	return r
}

func TestRunBakesNonZeroNearPointLight(t *testing.T) {
	reader := hexenSquareMapWithLight()
	writer := &fakeWriter{}

	result, err := Run(context.Background(), reader, "MAP01", *config.Default(), writer, nil)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(result.Mesh.Lights) != 1 {
		t.Fatalf("expected 1 light gathered from the 9876 thing, got %d", len(result.Mesh.Lights))
	}

	var lit bool
	for _, c := range result.Bake {
		if c.Color.X > 0 || c.Color.Y > 0 || c.Color.Z > 0 {
			lit = true
			break
		}
	}
	if !lit {
		t.Error("expected at least one texel to receive non-zero radiance from the point light")
	}
}

func TestRunReturnsIOFailureForMissingMap(t *testing.T) {
	reader := &fakeReader{}
	writer := &fakeWriter{}

	_, err := Run(context.Background(), reader, "MAP01", *config.Default(), writer, nil)
	if err == nil {
		t.Fatal("expected an error for a missing map")
	}
	var pipelineErr *Error
	if !asError(err, &pipelineErr) {
		t.Fatalf("expected a *pipeline.Error, got %T: %v", err, err)
	}
	if pipelineErr.Kind != KindIOFailure {
		t.Errorf("expected KindIOFailure, got %s", pipelineErr.Kind)
	}
}

func asError(err error, target **Error) bool {
	if pe, ok := err.(*Error); ok {
		*target = pe
		return true
	}
	return false
}
