package output

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zdray-go/zdray/internal/blockmap"
)

// encodeBlockmap lays out bm in the classic BLOCKMAP format: a header
// (origin, dimensions), an offset table (one uint16 per cell, as a word
// offset from the start of the lump), then each cell's line list as
// 0x0000-prefixed, 0xffff-terminated uint16 runs.
//
// Cells whose line list is byte-identical to an earlier cell reuse that
// cell's offset instead of re-emitting the list, the dedup bm.Build's
// packed mode was built to make worthwhile.
func encodeBlockmap(bm *blockmap.Blockmap) ([]byte, error) {
	header := &bytes.Buffer{}
	binary.Write(header, binary.LittleEndian, int16(bm.OriginX))
	binary.Write(header, binary.LittleEndian, int16(bm.OriginY))
	binary.Write(header, binary.LittleEndian, uint16(bm.Width))
	binary.Write(header, binary.LittleEndian, uint16(bm.Height))

	numCells := len(bm.Cells)
	offsets := make([]uint16, numCells)
	body := &bytes.Buffer{}

	// wordOffset counts from the start of the lump: header is 4 words,
	// then the offset table is numCells words.
	wordOffset := 4 + numCells

	seen := map[string]uint16{}
	for i, cell := range bm.Cells {
		key := cellKey(cell)
		if off, ok := seen[key]; ok {
			offsets[i] = off
			continue
		}

		if wordOffset > 0xffff {
			return nil, fmt.Errorf("%w: cell list at word offset %d", blockmap.ErrTooLarge, wordOffset)
		}
		cellOffset := uint16(wordOffset)
		offsets[i] = cellOffset
		seen[key] = cellOffset

		binary.Write(body, binary.LittleEndian, uint16(0))
		for _, line := range cell {
			binary.Write(body, binary.LittleEndian, uint16(line))
		}
		binary.Write(body, binary.LittleEndian, uint16(sentinel16))
		wordOffset += 2 + len(cell)
	}

	out := &bytes.Buffer{}
	out.Write(header.Bytes())
	binary.Write(out, binary.LittleEndian, offsets)
	out.Write(body.Bytes())
	return out.Bytes(), nil
}

func cellKey(cell []uint32) string {
	buf := make([]byte, len(cell)*4)
	for i, v := range cell {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return string(buf)
}
