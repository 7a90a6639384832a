package wad

import (
	"encoding/binary"
	"fmt"
	"os"
)

// Builder accumulates named lumps in memory and writes them out as a
// single PWAD, computing the directory offset and entries itself.
type Builder struct {
	IsIWAD bool
	lumps  []Lump
}

// NewBuilder returns an empty Builder. Output is always a PWAD unless
// IsIWAD is set true, matching the reference tool's default.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddLump appends a named lump. Names longer than 8 bytes are truncated,
// matching the on-disk directory entry width.
func (b *Builder) AddLump(name string, data []byte) {
	if len(name) > 8 {
		name = name[:8]
	}
	b.lumps = append(b.lumps, Lump{Name: name, Data: data})
}

// NumLumps returns the number of lumps staged so far.
func (b *Builder) NumLumps() int { return len(b.lumps) }

// Save writes the header, lump data, and directory to path, in that order
// (the conventional WAD layout: header, then lumps back-to-back, then the
// directory at the offset recorded in the header).
func (b *Builder) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating wad: %w", err)
	}
	defer f.Close()

	magic := magicPWAD
	if b.IsIWAD {
		magic = magicIWAD
	}

	h := header{NumLumps: int32(len(b.lumps))}
	copy(h.Magic[:], magic)

	// Header is fixed-size; reserve it, then write lumps, then backpatch.
	if err := binary.Write(f, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	entries := make([]dirEntry, len(b.lumps))
	pos := int32(12)
	for i, lump := range b.lumps {
		entries[i] = dirEntry{FilePos: pos, Size: int32(len(lump.Data))}
		copy(entries[i].Name[:], lump.Name)
		if len(lump.Data) > 0 {
			if _, err := f.Write(lump.Data); err != nil {
				return fmt.Errorf("writing lump %s: %w", lump.Name, err)
			}
		}
		pos += int32(len(lump.Data))
	}

	dirOffset := pos
	if err := binary.Write(f, binary.LittleEndian, entries); err != nil {
		return fmt.Errorf("writing directory: %w", err)
	}

	if _, err := f.Seek(8, 0); err != nil {
		return err
	}
	if err := binary.Write(f, binary.LittleEndian, dirOffset); err != nil {
		return fmt.Errorf("backpatching directory offset: %w", err)
	}
	return nil
}
