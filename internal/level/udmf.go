package level

import (
	"fmt"

	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/udmf"
)

// loadUDMF converts a parsed TEXTMAP document into a Level. Field names
// follow the UDMF base namespace plus the ZDoom extensions this pipeline
// cares about (zfloor/zceiling, id, light_*).
func loadUDMF(doc *udmf.Document, name string) (*Level, error) {
	lvl := &Level{Name: name, UDMF: true}

	for _, b := range doc.Blocks {
		switch b.Type {
		case "vertex":
			v, iv := convertVertex(udmf.Fields(b.Fields))
			lvl.Vertexes = append(lvl.Vertexes, v)
			lvl.IntVertexes = append(lvl.IntVertexes, iv)
		case "sector":
			lvl.Sectors = append(lvl.Sectors, convertSector(udmf.Fields(b.Fields)))
		case "sidedef":
			lvl.Sides = append(lvl.Sides, convertSide(udmf.Fields(b.Fields)))
		case "linedef":
			lvl.Lines = append(lvl.Lines, convertLine(udmf.Fields(b.Fields)))
		case "thing":
			lvl.Things = append(lvl.Things, convertThing(udmf.Fields(b.Fields)))
		}
	}

	for i, l := range lvl.Lines {
		if int(l.V1) >= len(lvl.Vertexes) || int(l.V2) >= len(lvl.Vertexes) {
			return nil, fmt.Errorf("%w: linedef %d references out-of-range vertex", ErrDanglingReference, i)
		}
	}

	return lvl, nil
}

func convertVertex(f udmf.Fields) (Vertex, IntVertex) {
	v := Vertex{
		X: mathutil.FixedFromFloat(float32(f.Float("x", 0))),
		Y: mathutil.FixedFromFloat(float32(f.Float("y", 0))),
	}
	iv := NewIntVertex()
	if _, ok := f["zfloor"]; ok {
		iv.ZFloor = f.Float("zfloor", UnsetZ)
	}
	if _, ok := f["zceiling"]; ok {
		iv.ZCeiling = f.Float("zceiling", UnsetZ)
	}
	return v, iv
}

func convertSector(f udmf.Fields) Sector {
	tags := []int32{}
	if id, ok := f["id"]; ok {
		tags = append(tags, int32(id.Int()))
	}
	return Sector{
		FloorHeight:   int32(f.Int("heightfloor", 0)),
		CeilingHeight: int32(f.Int("heightceiling", 0)),
		FloorFlat:     f.String("texturefloor", ""),
		CeilingFlat:   f.String("textureceiling", ""),
		LightLevel:    int32(f.Int("lightlevel", 160)),
		Special:       int32(f.Int("special", 0)),
		Tags:          tags,
		SkyFloor:      f.Bool("skyfloor", false),
		SkyCeiling:    f.Bool("skyceiling", false),
		Props:         rawProps(f),
	}
}

func convertSide(f udmf.Fields) SideDef {
	return SideDef{
		TextureOffsetX: int32(f.Int("offsetx", 0)),
		TextureOffsetY: int32(f.Int("offsety", 0)),
		TopTexture:     f.String("texturetop", "-"),
		BotTexture:     f.String("texturebottom", "-"),
		MidTexture:     f.String("texturemiddle", "-"),
		Sector:         uint32(f.Int("sector", 0)),
		Props:          rawProps(f),
	}
}

func convertLine(f udmf.Fields) LineDef {
	var flags LineFlag
	if f.Bool("blocking", false) {
		flags |= LineBlocking
	}
	if f.Bool("blockmonsters", false) {
		flags |= LineBlockMonsters
	}
	if f.Bool("twosided", false) {
		flags |= LineTwoSided
	}
	if f.Bool("dontpegtop", false) {
		flags |= LineDontPegTop
	}
	if f.Bool("dontpegbottom", false) {
		flags |= LineDontPegBottom
	}
	if f.Bool("secret", false) {
		flags |= LineSecret
	}
	if f.Bool("blocksound", false) {
		flags |= LineBlockSound
	}
	if f.Bool("dontdraw", false) {
		flags |= LineDontDraw
	}
	if f.Bool("mapped", false) {
		flags |= LineMapped
	}

	side1 := uint32(NoIndex)
	if v, ok := f["sideback"]; ok {
		side1 = uint32(v.Int())
	}

	args := [5]int32{
		int32(f.Int("arg0", 0)), int32(f.Int("arg1", 0)), int32(f.Int("arg2", 0)),
		int32(f.Int("arg3", 0)), int32(f.Int("arg4", 0)),
	}

	return LineDef{
		V1:      uint32(f.Int("v1", 0)),
		V2:      uint32(f.Int("v2", 0)),
		Flags:   flags,
		Special: int32(f.Int("special", 0)),
		Args:    args,
		Tag:     int32(f.Int("id", args[0])),
		SideNum: [2]uint32{uint32(f.Int("sidefront", uint32FromNoIndex())), side1},
		Props:   rawProps(f),
	}
}

func uint32FromNoIndex() int64 { return NoIndex }

func convertThing(f udmf.Fields) Thing {
	args := [5]int32{
		int32(f.Int("arg0", 0)), int32(f.Int("arg1", 0)), int32(f.Int("arg2", 0)),
		int32(f.Int("arg3", 0)), int32(f.Int("arg4", 0)),
	}
	return Thing{
		X:      mathutil.FixedFromFloat(float32(f.Float("x", 0))),
		Y:      mathutil.FixedFromFloat(float32(f.Float("y", 0))),
		Height: int32(f.Int("height", 0)),
		Angle:  int32(f.Int("angle", 0)),
		Type:   uint16(f.Int("type", 0)),
		Args:   args,
		Props:  rawProps(f),
	}
}

func rawProps(f udmf.Fields) map[string]string {
	out := make(map[string]string, len(f))
	for k, v := range f {
		out[k] = v.Raw
	}
	return out
}
