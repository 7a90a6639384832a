package output

import (
	"bytes"
	"encoding/binary"

	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/wad"
)

const sentinel16 = 0xffff

// narrowSide converts a resolved NoIndex-or-real side index back to the
// classic lump's 16-bit sentinel encoding.
func narrowSide(s uint32) uint16 {
	if s == level.NoIndex {
		return sentinel16
	}
	return uint16(s)
}

// pad8 writes s into an 8-byte field, truncating or zero-padding as the
// classic texture/flat name fields require.
func pad8(s string) [8]byte {
	var out [8]byte
	copy(out[:], s)
	return out
}

func encodeVertexes(verts []level.Vertex) []byte {
	buf := &bytes.Buffer{}
	for _, v := range verts {
		binary.Write(buf, binary.LittleEndian, int16(v.X.ToInt()))
		binary.Write(buf, binary.LittleEndian, int16(v.Y.ToInt()))
	}
	return buf.Bytes()
}

func encodeSectors(sectors []level.Sector) []byte {
	buf := &bytes.Buffer{}
	for _, s := range sectors {
		tag := int16(0)
		if len(s.Tags) > 0 {
			tag = int16(s.Tags[0])
		}
		floorFlat := pad8(s.FloorFlat)
		ceilFlat := pad8(s.CeilingFlat)
		binary.Write(buf, binary.LittleEndian, int16(s.FloorHeight))
		binary.Write(buf, binary.LittleEndian, int16(s.CeilingHeight))
		buf.Write(floorFlat[:])
		buf.Write(ceilFlat[:])
		binary.Write(buf, binary.LittleEndian, int16(s.LightLevel))
		binary.Write(buf, binary.LittleEndian, int16(s.Special))
		binary.Write(buf, binary.LittleEndian, tag)
	}
	return buf.Bytes()
}

func encodeSides(sides []level.SideDef) []byte {
	buf := &bytes.Buffer{}
	for _, s := range sides {
		top := pad8(s.TopTexture)
		bottom := pad8(s.BotTexture)
		mid := pad8(s.MidTexture)
		binary.Write(buf, binary.LittleEndian, int16(s.TextureOffsetX))
		binary.Write(buf, binary.LittleEndian, int16(s.TextureOffsetY))
		buf.Write(top[:])
		buf.Write(bottom[:])
		buf.Write(mid[:])
		binary.Write(buf, binary.LittleEndian, uint16(s.Sector))
	}
	return buf.Bytes()
}

func encodeLinesDoom(lines []level.LineDef) []byte {
	buf := &bytes.Buffer{}
	for _, l := range lines {
		binary.Write(buf, binary.LittleEndian, uint16(l.V1))
		binary.Write(buf, binary.LittleEndian, uint16(l.V2))
		binary.Write(buf, binary.LittleEndian, uint16(l.Flags))
		binary.Write(buf, binary.LittleEndian, uint16(l.Special))
		binary.Write(buf, binary.LittleEndian, uint16(l.Tag))
		binary.Write(buf, binary.LittleEndian, narrowSide(l.SideNum[0]))
		binary.Write(buf, binary.LittleEndian, narrowSide(l.SideNum[1]))
	}
	return buf.Bytes()
}

func encodeLinesHexen(lines []level.LineDef) []byte {
	buf := &bytes.Buffer{}
	for _, l := range lines {
		binary.Write(buf, binary.LittleEndian, uint16(l.V1))
		binary.Write(buf, binary.LittleEndian, uint16(l.V2))
		buf.WriteByte(byte(l.Special))
		for _, a := range l.Args {
			buf.WriteByte(byte(a))
		}
		binary.Write(buf, binary.LittleEndian, uint16(l.Flags))
		binary.Write(buf, binary.LittleEndian, narrowSide(l.SideNum[0]))
		binary.Write(buf, binary.LittleEndian, narrowSide(l.SideNum[1]))
	}
	return buf.Bytes()
}

func encodeThingsDoom(things []level.Thing) []byte {
	buf := &bytes.Buffer{}
	for _, t := range things {
		binary.Write(buf, binary.LittleEndian, int16(t.X.ToInt()))
		binary.Write(buf, binary.LittleEndian, int16(t.Y.ToInt()))
		binary.Write(buf, binary.LittleEndian, int16(t.Angle))
		binary.Write(buf, binary.LittleEndian, t.Type)
		binary.Write(buf, binary.LittleEndian, uint16(t.Flags))
	}
	return buf.Bytes()
}

func encodeThingsHexen(things []level.Thing) []byte {
	buf := &bytes.Buffer{}
	for _, t := range things {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // tid, not tracked post-load
		binary.Write(buf, binary.LittleEndian, int16(t.X.ToInt()))
		binary.Write(buf, binary.LittleEndian, int16(t.Y.ToInt()))
		binary.Write(buf, binary.LittleEndian, int16(t.Height))
		binary.Write(buf, binary.LittleEndian, int16(t.Angle))
		binary.Write(buf, binary.LittleEndian, t.Type)
		binary.Write(buf, binary.LittleEndian, uint16(t.Flags))
		buf.WriteByte(0) // special, not tracked post-load
		for _, a := range t.Args {
			buf.WriteByte(byte(a))
		}
	}
	return buf.Bytes()
}

// encodeMapLumps re-serializes lvl's classic VERTEXES/SECTORS/SIDEDEFS/
// LINEDEFS/THINGS lumps and returns them as name/data pairs in the
// conventional map lump order.
func encodeMapLumps(lvl *level.Level) []wad.Lump {
	lines := encodeLinesDoom(lvl.Lines)
	things := encodeThingsDoom(lvl.Things)
	if lvl.Hexen {
		lines = encodeLinesHexen(lvl.Lines)
		things = encodeThingsHexen(lvl.Things)
	}
	return []wad.Lump{
		{Name: "THINGS", Data: things},
		{Name: "LINEDEFS", Data: lines},
		{Name: "SIDEDEFS", Data: encodeSides(lvl.Sides)},
		{Name: "VERTEXES", Data: encodeVertexes(lvl.Vertexes)},
		{Name: "SECTORS", Data: encodeSectors(lvl.Sectors)},
	}
}
