package output

import (
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
)

// encodeReject builds the REJECT lump per cfg.Reject: an all-zero
// (visible) table, an all-one (blind) table, a pass-through of the
// original REJECT remapped through lvl.OldToNewSector, or nothing at
// all when NoTouch is set and the source had no REJECT lump to carry
// forward.
func encodeReject(lvl *level.Level, original []byte, cfg config.RejectConfig) []byte {
	n := len(lvl.Sectors)
	size := (n*n + 7) / 8

	switch {
	case cfg.Zero:
		return make([]byte, size)
	case cfg.Full:
		out := make([]byte, size)
		for i := range out {
			out[i] = 0xff
		}
		return out
	case cfg.NoTouch:
		return original
	case cfg.Empty:
		return nil
	default:
		if len(original) == 0 {
			return make([]byte, size)
		}
		return remapReject(lvl, original, size)
	}
}

// remapReject re-buckets an original REJECT table's bits through
// lvl.OldToNewSector, so pruning sectors out of the level doesn't leave
// a REJECT table addressed against a sector count that no longer
// matches SECTORS.
func remapReject(lvl *level.Level, original []byte, newSize int) []byte {
	oldCount := len(lvl.OldToNewSector)
	if oldCount == 0 {
		return original
	}
	newCount := len(lvl.Sectors)

	readBit := func(idx int) bool {
		byteIdx := idx / 8
		if byteIdx >= len(original) {
			return false
		}
		return original[byteIdx]&(1<<uint(idx%8)) != 0
	}

	out := make([]byte, newSize)
	setBit := func(idx int) {
		out[idx/8] |= 1 << uint(idx%8)
	}

	for a := 0; a < oldCount; a++ {
		na := lvl.OldToNewSector[a]
		if na == level.NoIndex {
			continue
		}
		for b := 0; b < oldCount; b++ {
			nb := lvl.OldToNewSector[b]
			if nb == level.NoIndex {
				continue
			}
			if readBit(a*oldCount + b) {
				setBit(int(na)*newCount + int(nb))
			}
		}
	}
	return out
}
