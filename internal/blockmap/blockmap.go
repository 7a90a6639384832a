// Package blockmap builds the uniform 128-unit grid index of linedefs
// the engine uses for fast collision/movement queries.
package blockmap

import (
	"errors"
	"fmt"

	"github.com/zdray-go/zdray/internal/level"
)

// BlockSize is the fixed grid cell size in map units.
const BlockSize = 128

// ErrTooLarge is returned when the blockmap's encoded offset table
// would overflow the classic lump's 16-bit offset field.
var ErrTooLarge = errors.New("blockmap: grid too large for 16-bit offsets")

// Blockmap is the built grid: origin, dimensions, and one line-index
// list per cell.
type Blockmap struct {
	OriginX, OriginY int32
	Width, Height    int32
	Cells            [][]uint32 // len == Width*Height, row-major
}

// Build buckets every line of lvl into the 128-unit cells it crosses,
// using a digital-differential-analyzer line walk the same way the
// original engine's generator does. When packed is true, cells whose
// line list is identical to an already-emitted cell are deduplicated
// (internal/output re-uses the earlier cell's offset), which keeps the
// encoded lump smaller for levels with long straight corridors.
func Build(lvl *level.Level, packed bool) (*Blockmap, error) {
	if len(lvl.Vertexes) == 0 {
		return &Blockmap{Width: 1, Height: 1, Cells: make([][]uint32, 1)}, nil
	}

	minX, minY := int32(lvl.MinX.ToFloat()), int32(lvl.MinY.ToFloat())
	maxX, maxY := int32(lvl.MaxX.ToFloat()), int32(lvl.MaxY.ToFloat())

	originX := minX - (minX % BlockSize)
	if minX < 0 {
		originX -= BlockSize
	}
	originY := minY - (minY % BlockSize)
	if minY < 0 {
		originY -= BlockSize
	}

	width := (maxX-originX)/BlockSize + 1
	height := (maxY-originY)/BlockSize + 1
	if width <= 0 {
		width = 1
	}
	if height <= 0 {
		height = 1
	}

	// The 4-word header plus one offset word per cell must leave the
	// first cell list at a word offset that still fits in 16 bits.
	const maxCells = 0xffff - 4
	if int64(width)*int64(height) > maxCells {
		return nil, fmt.Errorf("%w: %dx%d cells", ErrTooLarge, width, height)
	}

	bm := &Blockmap{
		OriginX: originX, OriginY: originY,
		Width: width, Height: height,
		Cells: make([][]uint32, width*height),
	}

	for lineIdx := range lvl.Lines {
		l := &lvl.Lines[lineIdx]
		v1, v2 := lvl.Vertexes[l.V1].Vec2(), lvl.Vertexes[l.V2].Vec2()
		for _, cell := range walkCells(bm, float64(v1.X), float64(v1.Y), float64(v2.X), float64(v2.Y)) {
			bm.Cells[cell] = append(bm.Cells[cell], uint32(lineIdx))
		}
	}

	if packed {
		dedupe(bm)
	}

	return bm, nil
}

// cellIndex converts grid coordinates to the flat Cells index, or -1 if
// out of range.
func (bm *Blockmap) cellIndex(cx, cy int32) int {
	if cx < 0 || cy < 0 || cx >= bm.Width || cy >= bm.Height {
		return -1
	}
	return int(cy*bm.Width + cx)
}

// walkCells returns every cell index a line from (x1,y1) to (x2,y2)
// crosses, using a supercover DDA so near-diagonal lines don't skip
// cells they graze the corner of.
func walkCells(bm *Blockmap, x1, y1, x2, y2 float64) []int {
	toCell := func(x, y float64) (int32, int32) {
		return int32((x - float64(bm.OriginX)) / BlockSize), int32((y - float64(bm.OriginY)) / BlockSize)
	}

	cx, cy := toCell(x1, y1)
	ex, ey := toCell(x2, y2)

	var out []int
	seen := map[[2]int32]bool{}
	add := func(x, y int32) {
		key := [2]int32{x, y}
		if seen[key] {
			return
		}
		seen[key] = true
		if idx := bm.cellIndex(x, y); idx >= 0 {
			out = append(out, idx)
		}
	}

	stepX := int32(0)
	if ex > cx {
		stepX = 1
	} else if ex < cx {
		stepX = -1
	}
	stepY := int32(0)
	if ey > cy {
		stepY = 1
	} else if ey < cy {
		stepY = -1
	}

	add(cx, cy)
	for cx != ex || cy != ey {
		// Fraction of the segment at which it crosses the next vertical
		// and horizontal cell boundary; 2 means no further crossing.
		tx, ty := 2.0, 2.0
		if cx != ex {
			tx = (float64(bm.OriginX) + float64(cx+(stepX+1)/2)*BlockSize - x1) / (x2 - x1)
		}
		if cy != ey {
			ty = (float64(bm.OriginY) + float64(cy+(stepY+1)/2)*BlockSize - y1) / (y2 - y1)
		}
		if tx <= ty {
			cx += stepX
			add(cx, cy)
		}
		if ty <= tx {
			cy += stepY
			add(cx, cy)
		}
		if len(out) > 1<<20 {
			break // pathological input guard
		}
	}

	return out
}

// dedupe replaces cells whose line list equals an earlier cell's with
// an alias to that earlier cell's slice, so output's offset table can
// emit the same bytes once for both.
func dedupe(bm *Blockmap) {
	seen := map[string]int{}
	for i, cell := range bm.Cells {
		key := cellKey(cell)
		if j, ok := seen[key]; ok {
			bm.Cells[i] = bm.Cells[j]
			continue
		}
		seen[key] = i
	}
}

func cellKey(cell []uint32) string {
	b := make([]byte, len(cell)*4)
	for i, v := range cell {
		b[i*4] = byte(v)
		b[i*4+1] = byte(v >> 8)
		b[i*4+2] = byte(v >> 16)
		b[i*4+3] = byte(v >> 24)
	}
	return string(b)
}
