package level

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/wad"
)

const (
	sentinel16 = 0xffff
)

// loadBinary decodes the classic VERTEXES/LINEDEFS/SIDEDEFS/SECTORS/THINGS
// lumps starting at mapIndex (the map marker lump itself). A BEHAVIOR
// lump between THINGS and the next map marker selects the Hexen line/
// thing record formats.
func loadBinary(r wad.Reader, mapIndex int) (*Level, error) {
	lvl := &Level{Name: r.LumpName(mapIndex)}

	thingsIdx := r.IndexOf("THINGS", mapIndex)
	linesIdx := r.IndexOf("LINEDEFS", mapIndex)
	sidesIdx := r.IndexOf("SIDEDEFS", mapIndex)
	vertsIdx := r.IndexOf("VERTEXES", mapIndex)
	sectorsIdx := r.IndexOf("SECTORS", mapIndex)
	if thingsIdx < 0 || linesIdx < 0 || sidesIdx < 0 || vertsIdx < 0 || sectorsIdx < 0 {
		return nil, fmt.Errorf("%w: map %s is missing a mandatory lump", ErrMalformedMap, lvl.Name)
	}

	behaviorIdx := r.IndexOf("BEHAVIOR", mapIndex)
	lvl.Hexen = behaviorIdx > thingsIdx && isBeforeNextMap(r, mapIndex, behaviorIdx)

	var err error
	if lvl.Vertexes, err = decodeVertexes(r, vertsIdx); err != nil {
		return nil, err
	}
	lvl.IntVertexes = make([]IntVertex, len(lvl.Vertexes))
	for i := range lvl.IntVertexes {
		lvl.IntVertexes[i] = NewIntVertex()
	}

	if lvl.Sectors, err = decodeSectors(r, sectorsIdx); err != nil {
		return nil, err
	}
	if lvl.Sides, err = decodeSides(r, sidesIdx); err != nil {
		return nil, err
	}
	if lvl.Hexen {
		if lvl.Lines, err = decodeLinesHexen(r, linesIdx); err != nil {
			return nil, err
		}
		if lvl.Things, err = decodeThingsHexen(r, thingsIdx); err != nil {
			return nil, err
		}
	} else {
		if lvl.Lines, err = decodeLinesDoom(r, linesIdx); err != nil {
			return nil, err
		}
		if lvl.Things, err = decodeThingsDoom(r, thingsIdx); err != nil {
			return nil, err
		}
	}

	return lvl, nil
}

// isBeforeNextMap reports whether idx lies before the next map marker
// lump, approximated by checking it appears before the VERTEXES lump
// that follows this map's own VERTEXES (map markers are the lump
// immediately preceding THINGS).
func isBeforeNextMap(r wad.Reader, mapIndex, idx int) bool {
	nextVerts := r.IndexOf("VERTEXES", r.IndexOf("VERTEXES", mapIndex)+1)
	return nextVerts < 0 || idx < nextVerts
}

func decodeVertexes(r wad.Reader, idx int) ([]Vertex, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 4
	n := len(data) / recSize
	out := make([]Vertex, n)
	br := bytes.NewReader(data)
	for i := 0; i < n; i++ {
		var x, y int16
		binary.Read(br, binary.LittleEndian, &x)
		binary.Read(br, binary.LittleEndian, &y)
		out[i] = Vertex{X: mathutil.FixedFromInt(int32(x)), Y: mathutil.FixedFromInt(int32(y))}
	}
	return out, nil
}

func decodeSectors(r wad.Reader, idx int) ([]Sector, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 26
	n := len(data) / recSize
	out := make([]Sector, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		floor := int16(binary.LittleEndian.Uint16(rec[0:2]))
		ceil := int16(binary.LittleEndian.Uint16(rec[2:4]))
		floorFlat := cleanString8(rec[4:12])
		ceilFlat := cleanString8(rec[12:20])
		light := int16(binary.LittleEndian.Uint16(rec[20:22]))
		special := int16(binary.LittleEndian.Uint16(rec[22:24]))
		tag := int16(binary.LittleEndian.Uint16(rec[24:26]))
		out[i] = Sector{
			FloorHeight:   int32(floor),
			CeilingHeight: int32(ceil),
			FloorFlat:     floorFlat,
			CeilingFlat:   ceilFlat,
			LightLevel:    int32(light),
			Special:       int32(special),
			Tags:          []int32{int32(tag)},
			Props:         map[string]string{},
		}
	}
	return out, nil
}

func decodeSides(r wad.Reader, idx int) ([]SideDef, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 30
	n := len(data) / recSize
	out := make([]SideDef, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		xoff := int16(binary.LittleEndian.Uint16(rec[0:2]))
		yoff := int16(binary.LittleEndian.Uint16(rec[2:4]))
		top := cleanString8(rec[4:12])
		bottom := cleanString8(rec[12:20])
		mid := cleanString8(rec[20:28])
		sector := binary.LittleEndian.Uint16(rec[28:30])
		out[i] = SideDef{
			TextureOffsetX: int32(xoff),
			TextureOffsetY: int32(yoff),
			TopTexture:     top,
			BotTexture:     bottom,
			MidTexture:     mid,
			Sector:         uint32(sector),
			Props:          map[string]string{},
		}
	}
	return out, nil
}

func decodeLinesDoom(r wad.Reader, idx int) ([]LineDef, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 14
	n := len(data) / recSize
	out := make([]LineDef, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		v1 := binary.LittleEndian.Uint16(rec[0:2])
		v2 := binary.LittleEndian.Uint16(rec[2:4])
		flags := binary.LittleEndian.Uint16(rec[4:6])
		special := binary.LittleEndian.Uint16(rec[6:8])
		tag := binary.LittleEndian.Uint16(rec[8:10])
		s0 := binary.LittleEndian.Uint16(rec[10:12])
		s1 := binary.LittleEndian.Uint16(rec[12:14])
		out[i] = LineDef{
			V1:      uint32(v1),
			V2:      uint32(v2),
			Flags:   LineFlag(flags),
			Special: int32(special),
			Tag:     int32(tag),
			SideNum: [2]uint32{widenSide(s0), widenSide(s1)},
			Props:   map[string]string{},
		}
	}
	return out, nil
}

func decodeLinesHexen(r wad.Reader, idx int) ([]LineDef, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 16
	n := len(data) / recSize
	out := make([]LineDef, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		v1 := binary.LittleEndian.Uint16(rec[0:2])
		v2 := binary.LittleEndian.Uint16(rec[2:4])
		special := rec[4]
		var args [5]int32
		for a := 0; a < 5; a++ {
			args[a] = int32(rec[5+a])
		}
		flags := binary.LittleEndian.Uint16(rec[10:12])
		s0 := binary.LittleEndian.Uint16(rec[12:14])
		s1 := binary.LittleEndian.Uint16(rec[14:16])
		out[i] = LineDef{
			V1:      uint32(v1),
			V2:      uint32(v2),
			Flags:   LineFlag(flags),
			Special: int32(special),
			Args:    args,
			Tag:     args[0],
			SideNum: [2]uint32{widenSide(s0), widenSide(s1)},
			Props:   map[string]string{},
		}
	}
	return out, nil
}

func decodeThingsDoom(r wad.Reader, idx int) ([]Thing, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 10
	n := len(data) / recSize
	out := make([]Thing, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		x := int16(binary.LittleEndian.Uint16(rec[0:2]))
		y := int16(binary.LittleEndian.Uint16(rec[2:4]))
		angle := int16(binary.LittleEndian.Uint16(rec[4:6]))
		typ := binary.LittleEndian.Uint16(rec[6:8])
		flags := binary.LittleEndian.Uint16(rec[8:10])
		out[i] = Thing{
			X:     mathutil.FixedFromInt(int32(x)),
			Y:     mathutil.FixedFromInt(int32(y)),
			Angle: int32(angle),
			Type:  typ,
			Flags: ThingFlag(flags),
			Props: map[string]string{},
		}
	}
	return out, nil
}

func decodeThingsHexen(r wad.Reader, idx int) ([]Thing, error) {
	data, err := r.ReadLump(idx)
	if err != nil {
		return nil, err
	}
	const recSize = 20
	n := len(data) / recSize
	out := make([]Thing, n)
	for i := 0; i < n; i++ {
		rec := data[i*recSize : (i+1)*recSize]
		x := int16(binary.LittleEndian.Uint16(rec[2:4]))
		y := int16(binary.LittleEndian.Uint16(rec[4:6]))
		z := int16(binary.LittleEndian.Uint16(rec[6:8]))
		angle := int16(binary.LittleEndian.Uint16(rec[8:10]))
		typ := binary.LittleEndian.Uint16(rec[10:12])
		flags := binary.LittleEndian.Uint16(rec[12:14])
		var args [5]int32
		for a := 0; a < 5; a++ {
			args[a] = int32(rec[15+a])
		}
		out[i] = Thing{
			X:      mathutil.FixedFromInt(int32(x)),
			Y:      mathutil.FixedFromInt(int32(y)),
			Height: int32(z),
			Angle:  int32(angle),
			Type:   typ,
			Flags:  ThingFlag(flags),
			Args:   args,
			Props:  map[string]string{},
		}
	}
	return out, nil
}

func widenSide(s uint16) uint32 {
	if s == sentinel16 {
		return NoIndex
	}
	return uint32(s)
}

func cleanString8(raw []byte) string {
	n := bytes.IndexByte(raw, 0)
	if n < 0 {
		n = len(raw)
	}
	return string(raw[:n])
}
