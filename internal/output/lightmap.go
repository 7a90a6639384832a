package output

import (
	"bytes"
	"encoding/binary"

	"github.com/x448/float16"

	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/tracer/cpu"
)

// lightmapVersion is written into every LIGHTMAP lump's header and
// bumped whenever this encoder's on-disk layout changes incompatibly.
const lightmapVersion = 1

// surfaceRecord mirrors one per-surface entry in the LIGHTMAP payload:
// which kind of surface it is, which sector/line it belongs to, which
// atlas page its tile lives on, and where its UV coordinate block
// starts in the shared coordinate array.
type surfaceRecord struct {
	Type              uint32
	TypeIndex         uint32
	ControlSector     uint32
	AtlasPage         uint32
	FirstCoordOffset  uint32
}

// buildLightmapLump assembles and zlib-compresses the LIGHTMAP lump:
// header, per-surface records, per-surface UV coordinate blocks, then
// the concatenated half-float RGB atlas pages carrying bake's results.
func buildLightmapLump(mesh *levelmesh.Mesh, results []cpu.Result, sunDir, sunColor mathutil.Vec3) ([]byte, error) {
	textureSize := mesh.AtlasSize
	if textureSize <= 0 {
		textureSize = 1
	}
	pageCount := countPages(mesh.Tiles, textureSize)

	var records []surfaceRecord
	var coords []mathutil.Vec2
	for i := range mesh.Surfaces {
		s := &mesh.Surfaces[i]
		rec := surfaceRecord{
			Type:             uint32(s.Kind),
			ControlSector:    level.NoIndex,
			FirstCoordOffset: uint32(len(coords)),
		}
		switch s.Kind {
		case levelmesh.SurfaceFloor, levelmesh.SurfaceCeiling:
			rec.TypeIndex = s.Sector
		default:
			rec.TypeIndex = s.Line
		}

		if s.TileID >= 0 && int(s.TileID) < len(mesh.Tiles) {
			tile := mesh.Tiles[s.TileID]
			page := uint32(tile.X / textureSize)
			rec.AtlasPage = page
			coords = append(coords, surfaceUVCoords(s.Kind, tile, textureSize)...)
		}
		records = append(records, rec)
	}

	pages := make([][]byte, pageCount)
	for i := range pages {
		pages[i] = make([]byte, int(textureSize)*int(textureSize)*3*2)
	}
	texels := cpu.GenerateTexels(mesh)
	for _, r := range results {
		if r.TexelIdx < 0 || r.TexelIdx >= len(texels) {
			continue
		}
		tx := texels[r.TexelIdx]
		if tx.TileID < 0 || int(tx.TileID) >= len(mesh.Tiles) {
			continue
		}
		tile := mesh.Tiles[tx.TileID]
		page := int(tile.X / textureSize)
		if page < 0 || page >= len(pages) {
			continue
		}
		localX := tile.X%textureSize + tx.LocalX
		localY := tile.Y + tx.LocalY
		writePixel(pages[page], textureSize, localX, localY, r.Color)
	}

	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(lightmapVersion))
	binary.Write(buf, binary.LittleEndian, uint32(textureSize))
	binary.Write(buf, binary.LittleEndian, uint32(pageCount))
	binary.Write(buf, binary.LittleEndian, uint32(len(records)))
	binary.Write(buf, binary.LittleEndian, uint32(len(coords)))
	binary.Write(buf, binary.LittleEndian, uint32(0)) // numSubsectors: node-relative lookup not wired yet
	writeVec3(buf, sunDir)
	writeVec3(buf, sunColor)

	for _, rec := range records {
		binary.Write(buf, binary.LittleEndian, rec.Type)
		binary.Write(buf, binary.LittleEndian, rec.TypeIndex)
		binary.Write(buf, binary.LittleEndian, rec.ControlSector)
		binary.Write(buf, binary.LittleEndian, rec.AtlasPage)
		binary.Write(buf, binary.LittleEndian, rec.FirstCoordOffset)
	}
	for _, c := range coords {
		binary.Write(buf, binary.LittleEndian, c.X)
		binary.Write(buf, binary.LittleEndian, c.Y)
	}
	for _, p := range pages {
		buf.Write(p)
	}

	return compress(buf.Bytes())
}

func countPages(tiles []levelmesh.AtlasTile, textureSize int32) int {
	count := int32(1)
	for _, t := range tiles {
		if p := t.X/textureSize + 1; p > count {
			count = p
		}
	}
	return int(count)
}

// surfaceUVCoords returns the tile's rect corners in atlas-texel space,
// wound fan-order for ceilings, reverse-fan for floors, and reordered
// {0,2,3,1} for walls to turn a strip into a fan, per the reference
// encoder's winding convention.
func surfaceUVCoords(kind levelmesh.SurfaceKind, tile levelmesh.AtlasTile, textureSize int32) []mathutil.Vec2 {
	localX := float32(tile.X % textureSize)
	corners := [4]mathutil.Vec2{
		{X: localX, Y: float32(tile.Y)},
		{X: localX + float32(tile.W), Y: float32(tile.Y)},
		{X: localX + float32(tile.W), Y: float32(tile.Y + tile.H)},
		{X: localX, Y: float32(tile.Y + tile.H)},
	}
	switch kind {
	case levelmesh.SurfaceFloor:
		return []mathutil.Vec2{corners[3], corners[2], corners[1], corners[0]}
	case levelmesh.SurfaceCeiling:
		return corners[:]
	default:
		return []mathutil.Vec2{corners[0], corners[2], corners[3], corners[1]}
	}
}

func writeVec3(buf *bytes.Buffer, v mathutil.Vec3) {
	binary.Write(buf, binary.LittleEndian, v.X)
	binary.Write(buf, binary.LittleEndian, v.Y)
	binary.Write(buf, binary.LittleEndian, v.Z)
}

func writePixel(page []byte, textureSize, x, y int32, color mathutil.Vec3) {
	if x < 0 || y < 0 || x >= textureSize || y >= textureSize {
		return
	}
	idx := (int(y)*int(textureSize) + int(x)) * 3 * 2
	binary.LittleEndian.PutUint16(page[idx:], float16.Fromfloat32(color.X).Bits())
	binary.LittleEndian.PutUint16(page[idx+2:], float16.Fromfloat32(color.Y).Bits())
	binary.LittleEndian.PutUint16(page[idx+4:], float16.Fromfloat32(color.Z).Bits())
}
