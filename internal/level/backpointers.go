package level

import "go.uber.org/zap"

// FixupBackPointers resolves every line's front/back sector from its
// side indices, stamps each side with the line that owns it, and
// appends each line index to the Lines list of every sector it touches.
// Must run after Prune, since pruning renumbers sectors and sides. A
// side index that doesn't resolve to an actual side is logged as a
// warning and that side is simply left unresolved; the line itself is
// always retained.
func (lvl *Level) FixupBackPointers(log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	for i := range lvl.Sectors {
		lvl.Sectors[i].Lines = lvl.Sectors[i].Lines[:0]
	}

	for lineIdx := range lvl.Lines {
		l := &lvl.Lines[lineIdx]

		if front := l.SideNum[0]; front != NoIndex {
			if int(front) >= len(lvl.Sides) {
				log.Warn("line references out-of-range front side; leaving unresolved",
					zap.Int("line", lineIdx), zap.Uint32("side", front))
			} else {
				lvl.Sides[front].Line = uint32(lineIdx)
				sector := lvl.Sides[front].Sector
				if sector != NoIndex {
					l.SetFrontSector(sector)
					lvl.addSectorLine(sector, uint32(lineIdx))
				}
			}
		}

		if back := l.SideNum[1]; back != NoIndex {
			if int(back) >= len(lvl.Sides) {
				log.Warn("line references out-of-range back side; leaving unresolved",
					zap.Int("line", lineIdx), zap.Uint32("side", back))
			} else {
				lvl.Sides[back].Line = uint32(lineIdx)
				sector := lvl.Sides[back].Sector
				if sector != NoIndex {
					l.SetBackSector(sector)
					lvl.addSectorLine(sector, uint32(lineIdx))
				}
			}
		}
	}

	return nil
}

func (lvl *Level) addSectorLine(sector, line uint32) {
	if int(sector) >= len(lvl.Sectors) {
		return
	}
	s := &lvl.Sectors[sector]
	for _, existing := range s.Lines {
		if existing == line {
			return
		}
	}
	s.Lines = append(s.Lines, line)
}
