package level

import "fmt"

// Prune removes zero-length lines, drops every side no surviving line
// references, and removes any sector no surviving side references.
// OldToNewSector records the sector remap so a pass-through REJECT
// lump (built against the original sector count) can be projected onto
// the pruned set. It returns ErrMalformedMap if nothing survives: a map
// with zero lines has no geometry left for any later stage to build on.
func (lvl *Level) Prune() error {
	lvl.pruneZeroLengthLines()
	lvl.pruneUnusedSectors()

	if len(lvl.Lines) == 0 {
		return fmt.Errorf("%w: no lines survived pruning", ErrMalformedMap)
	}
	return nil
}

func (lvl *Level) pruneZeroLengthLines() {
	oldToNewSide := make([]uint32, len(lvl.Sides))
	for i := range oldToNewSide {
		oldToNewSide[i] = NoIndex
	}
	sideReferenced := make([]bool, len(lvl.Sides))

	kept := lvl.Lines[:0]
	for _, l := range lvl.Lines {
		if int(l.V1) >= len(lvl.Vertexes) || int(l.V2) >= len(lvl.Vertexes) {
			continue
		}
		v1, v2 := lvl.Vertexes[l.V1], lvl.Vertexes[l.V2]
		if v1.X == v2.X && v1.Y == v2.Y {
			continue
		}
		for _, s := range l.SideNum {
			if s != NoIndex && int(s) < len(sideReferenced) {
				sideReferenced[s] = true
			}
		}
		kept = append(kept, l)
	}
	lvl.Lines = kept

	newSides := make([]SideDef, 0, len(lvl.Sides))
	for old, ref := range sideReferenced {
		if !ref {
			continue
		}
		oldToNewSide[old] = uint32(len(newSides))
		newSides = append(newSides, lvl.Sides[old])
	}
	lvl.Sides = newSides

	for i := range lvl.Lines {
		for s := range lvl.Lines[i].SideNum {
			if old := lvl.Lines[i].SideNum[s]; old != NoIndex {
				lvl.Lines[i].SideNum[s] = oldToNewSide[old]
			}
		}
	}
}

func (lvl *Level) pruneUnusedSectors() {
	used := make([]bool, len(lvl.Sectors))
	for _, s := range lvl.Sides {
		if int(s.Sector) < len(used) {
			used[s.Sector] = true
		}
	}

	lvl.OldToNewSector = make([]uint32, len(lvl.Sectors))
	newSectors := make([]Sector, 0, len(lvl.Sectors))
	for old, keep := range used {
		if keep {
			lvl.OldToNewSector[old] = uint32(len(newSectors))
			newSectors = append(newSectors, lvl.Sectors[old])
		} else {
			lvl.OldToNewSector[old] = NoIndex
		}
	}

	for i := range lvl.Sides {
		if int(lvl.Sides[i].Sector) < len(lvl.OldToNewSector) {
			lvl.Sides[i].Sector = lvl.OldToNewSector[lvl.Sides[i].Sector]
		}
	}

	lvl.Sectors = newSectors
}
