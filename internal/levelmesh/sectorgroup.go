package levelmesh

import "github.com/zdray-go/zdray/internal/level"

// assignSectorGroups flood-fills sector connectivity through two-sided
// lines, the way a portal-aware renderer partitions a map into
// independently-lit zones (an outdoor courtyard and the building next
// to it get different groups only if no line joins them).
func assignSectorGroups(lvl *level.Level) {
	group := make([]int32, len(lvl.Sectors))
	for i := range group {
		group[i] = -1
	}

	next := int32(0)
	for start := range lvl.Sectors {
		if group[start] >= 0 {
			continue
		}
		stack := []int{start}
		group[start] = next
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, lineIdx := range lvl.Sectors[cur].Lines {
				l := lvl.Lines[lineIdx]
				if !l.TwoSided() {
					continue
				}
				for _, nb := range [2]uint32{l.FrontSector, l.BackSector} {
					if int(nb) < len(group) && group[nb] < 0 {
						group[nb] = next
						stack = append(stack, int(nb))
					}
				}
			}
		}
		next++
	}

	for i := range lvl.Sectors {
		if group[i] < 0 {
			group[i] = next
			next++
		}
		lvl.Sectors[i].Group = uint32(group[i])
	}
}
