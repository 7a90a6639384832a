package wad

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeRaw(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func TestBuilderSaveAndOpenRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.AddLump("THINGS", []byte{1, 2, 3, 4})
	b.AddLump("LINEDEFS", []byte{5, 6, 7, 8, 9, 10})
	b.AddLump("SECTORS", nil)

	path := filepath.Join(t.TempDir(), "test.wad")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if a.NumLumps() != 3 {
		t.Fatalf("NumLumps() = %d, want 3", a.NumLumps())
	}
	if a.IsIWAD() {
		t.Error("expected PWAD, got IWAD")
	}

	idx := a.IndexOf("LINEDEFS", 0)
	if idx != 1 {
		t.Fatalf("IndexOf(LINEDEFS) = %d, want 1", idx)
	}
	data, err := a.ReadLump(idx)
	if err != nil {
		t.Fatalf("ReadLump() error = %v", err)
	}
	if !bytes.Equal(data, []byte{5, 6, 7, 8, 9, 10}) {
		t.Errorf("ReadLump() = %v, want original bytes", data)
	}
}

func TestIndexOfMissing(t *testing.T) {
	b := NewBuilder()
	b.AddLump("VERTEXES", []byte{0})
	path := filepath.Join(t.TempDir(), "missing.wad")
	if err := b.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer a.Close()

	if idx := a.IndexOf("NOSUCHLUMP", 0); idx != -1 {
		t.Errorf("IndexOf() = %d, want -1", idx)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wad")
	data := append([]byte("JUNK"), make([]byte, 8)...)
	if err := writeRaw(path, data); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err == nil {
		t.Error("expected error opening wad with bad magic")
	}
}
