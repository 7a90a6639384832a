package output

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/zdray-go/zdray/internal/bsp"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/wad"
)

// classicLimit is the largest node/seg/subsector count the classic
// 16-bit lump formats can address; trees bigger than this need the
// compressed extended (ZNODES) encoding instead.
const classicLimit = 0xffff

// encodeNodeLumps produces either the classic NODES/SSECTORS/SEGS triplet
// or, when the tree overflows 16-bit counts or the config demands
// compression, a single zlib-compressed ZNODES lump carrying the same
// data in an extended (32-bit) encoding.
func encodeNodeLumps(tree *bsp.Tree, vertexCount int, cfg config.NodesConfig) ([]wad.Lump, error) {
	extended := cfg.ExtendedFormat ||
		len(tree.Nodes) > classicLimit ||
		len(tree.Segs) > classicLimit ||
		len(tree.SubSectors) > classicLimit

	if !extended {
		lumps := []wad.Lump{
			{Name: "SEGS", Data: encodeSegsClassic(tree)},
			{Name: "SSECTORS", Data: encodeSubSectorsClassic(tree)},
			{Name: "NODES", Data: encodeNodesClassic(tree)},
		}
		if cfg.CompressClassic {
			return compressLumps(lumps, "ZNOD")
		}
		return lumps, nil
	}

	raw := encodeNodesExtended(tree, vertexCount)
	compressed, err := compress(raw)
	if err != nil {
		return nil, err
	}
	body := append([]byte("XNOD"), compressed...)
	return []wad.Lump{{Name: "ZNODES", Data: body}}, nil
}

// encodeGLLumps produces GL_VERT/GL_SEGS/GL_SSECT/GL_NODES, V5 addressing
// (32-bit indices) when cfg.V5 is set, classic GL (16/32-bit mixed v2)
// addressing otherwise.
func encodeGLLumps(tree *bsp.Tree, vertexCount int, cfg config.NodesConfig) ([]wad.Lump, error) {
	lumps := []wad.Lump{
		{Name: "GL_VERT", Data: encodeGLVert(tree)},
		{Name: "GL_SEGS", Data: encodeGLSegs(tree, vertexCount, cfg.V5)},
		{Name: "GL_SSECT", Data: encodeGLSSect(tree, cfg.V5)},
		{Name: "GL_NODES", Data: encodeNodesClassic(tree)},
	}
	if cfg.CompressGL {
		return compressLumps(lumps, "ZGLN")
	}
	return lumps, nil
}

func compressLumps(lumps []wad.Lump, magic string) ([]wad.Lump, error) {
	var raw bytes.Buffer
	for _, l := range lumps {
		binary.Write(&raw, binary.LittleEndian, int32(len(l.Data)))
		raw.Write(l.Data)
	}
	compressed, err := compress(raw.Bytes())
	if err != nil {
		return nil, err
	}
	name := "Z" + lumps[len(lumps)-1].Name
	return []wad.Lump{{Name: name, Data: append([]byte(magic), compressed...)}}, nil
}

func encodeNodesClassic(tree *bsp.Tree) []byte {
	buf := &bytes.Buffer{}
	for _, n := range tree.Nodes {
		binary.Write(buf, binary.LittleEndian, int16(n.X))
		binary.Write(buf, binary.LittleEndian, int16(n.Y))
		binary.Write(buf, binary.LittleEndian, int16(n.DX))
		binary.Write(buf, binary.LittleEndian, int16(n.DY))
		for side := 0; side < 2; side++ {
			bb := n.BBox[side]
			binary.Write(buf, binary.LittleEndian, int16(bb.Max.Y))
			binary.Write(buf, binary.LittleEndian, int16(bb.Min.Y))
			binary.Write(buf, binary.LittleEndian, int16(bb.Min.X))
			binary.Write(buf, binary.LittleEndian, int16(bb.Max.X))
		}
		binary.Write(buf, binary.LittleEndian, narrowChild(n.Children[0]))
		binary.Write(buf, binary.LittleEndian, narrowChild(n.Children[1]))
	}
	return buf.Bytes()
}

// narrowChild carries a Node.Children entry's subsector high bit down
// into the classic format's 16-bit child field (bit 15 instead of the
// in-memory tree's bit 31).
func narrowChild(child int32) uint16 {
	if child&bsp.SubSectorFlag != 0 {
		return uint16(child&0x7fff) | 0x8000
	}
	return uint16(child)
}

func encodeSubSectorsClassic(tree *bsp.Tree) []byte {
	buf := &bytes.Buffer{}
	for _, s := range tree.SubSectors {
		binary.Write(buf, binary.LittleEndian, uint16(s.NumSegs))
		binary.Write(buf, binary.LittleEndian, uint16(s.FirstSeg))
	}
	return buf.Bytes()
}

func encodeSegsClassic(tree *bsp.Tree) []byte {
	buf := &bytes.Buffer{}
	for _, s := range tree.Segs {
		binary.Write(buf, binary.LittleEndian, uint16(s.V1))
		binary.Write(buf, binary.LittleEndian, uint16(s.V2))
		binary.Write(buf, binary.LittleEndian, uint16(angleBAM(s.Angle)))
		binary.Write(buf, binary.LittleEndian, uint16(s.Line))
		binary.Write(buf, binary.LittleEndian, uint16(s.Side))
		binary.Write(buf, binary.LittleEndian, int16(s.Offset))
	}
	return buf.Bytes()
}

func angleBAM(radians float64) uint16 {
	normalized := math.Mod(radians, 2*math.Pi)
	if normalized < 0 {
		normalized += 2 * math.Pi
	}
	return uint16(normalized / (2 * math.Pi) * 65536)
}

// encodeNodesExtended lays out the extended ZNODES payload: vertex
// count header, extra vertices, then subsectors/segs/nodes with 32-bit
// counts, indices and partition coordinates so the 16-bit classic
// limits don't apply; node bounding boxes stay 16-bit.
func encodeNodesExtended(tree *bsp.Tree, vertexCount int) []byte {
	buf := &bytes.Buffer{}
	binary.Write(buf, binary.LittleEndian, uint32(vertexCount))
	binary.Write(buf, binary.LittleEndian, uint32(len(tree.ExtraVertices)))
	for _, v := range tree.ExtraVertices {
		binary.Write(buf, binary.LittleEndian, int32(v.X*mathFixedOne))
		binary.Write(buf, binary.LittleEndian, int32(v.Y*mathFixedOne))
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(tree.SubSectors)))
	for _, s := range tree.SubSectors {
		binary.Write(buf, binary.LittleEndian, uint32(s.NumSegs))
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(tree.Segs)))
	for _, s := range tree.Segs {
		binary.Write(buf, binary.LittleEndian, uint32(s.V1))
		binary.Write(buf, binary.LittleEndian, uint32(s.Line))
		buf.WriteByte(s.Side)
	}
	binary.Write(buf, binary.LittleEndian, uint32(len(tree.Nodes)))
	for _, n := range tree.Nodes {
		binary.Write(buf, binary.LittleEndian, int32(n.X*mathFixedOne))
		binary.Write(buf, binary.LittleEndian, int32(n.Y*mathFixedOne))
		binary.Write(buf, binary.LittleEndian, int32(n.DX*mathFixedOne))
		binary.Write(buf, binary.LittleEndian, int32(n.DY*mathFixedOne))
		for side := 0; side < 2; side++ {
			bb := n.BBox[side]
			binary.Write(buf, binary.LittleEndian, int16(bb.Max.Y))
			binary.Write(buf, binary.LittleEndian, int16(bb.Min.Y))
			binary.Write(buf, binary.LittleEndian, int16(bb.Min.X))
			binary.Write(buf, binary.LittleEndian, int16(bb.Max.X))
		}
		binary.Write(buf, binary.LittleEndian, uint32(n.Children[0]))
		binary.Write(buf, binary.LittleEndian, uint32(n.Children[1]))
	}
	return buf.Bytes()
}

const mathFixedOne = 65536.0

func encodeGLVert(tree *bsp.Tree) []byte {
	buf := &bytes.Buffer{}
	buf.WriteString("gNd2")
	for _, v := range tree.ExtraVertices {
		binary.Write(buf, binary.LittleEndian, int32(v.X*mathFixedOne))
		binary.Write(buf, binary.LittleEndian, int32(v.Y*mathFixedOne))
	}
	return buf.Bytes()
}

// glVertexFlag marks a seg endpoint as indexing into GL_VERT (the extra
// vertex table) rather than the level's own VERTEXES.
const glVertexFlag = uint32(0x8000_0000)

func encodeGLSegs(tree *bsp.Tree, vertexCount int, v5 bool) []byte {
	buf := &bytes.Buffer{}
	for _, s := range tree.GLSegs {
		v1, v2 := glVertexIndex(s.V1, vertexCount), glVertexIndex(s.V2, vertexCount)
		partner := uint32(0xffffffff)
		if s.Partner >= 0 {
			partner = uint32(s.Partner)
		}
		if v5 {
			binary.Write(buf, binary.LittleEndian, v1)
			binary.Write(buf, binary.LittleEndian, v2)
			binary.Write(buf, binary.LittleEndian, uint32(s.Line))
			buf.WriteByte(s.Side)
			binary.Write(buf, binary.LittleEndian, partner)
		} else {
			// The 16-bit format carries the GL_VERT marker in bit 15.
			n1, n2 := uint16(v1&0x7fff), uint16(v2&0x7fff)
			if v1&glVertexFlag != 0 {
				n1 |= 0x8000
			}
			if v2&glVertexFlag != 0 {
				n2 |= 0x8000
			}
			binary.Write(buf, binary.LittleEndian, n1)
			binary.Write(buf, binary.LittleEndian, n2)
			binary.Write(buf, binary.LittleEndian, uint16(s.Line))
			binary.Write(buf, binary.LittleEndian, uint16(s.Side))
			binary.Write(buf, binary.LittleEndian, uint16(partner))
		}
	}
	return buf.Bytes()
}

func glVertexIndex(v uint32, vertexCount int) uint32 {
	if int(v) >= vertexCount {
		return (v - uint32(vertexCount)) | glVertexFlag
	}
	return v
}

func encodeGLSSect(tree *bsp.Tree, v5 bool) []byte {
	buf := &bytes.Buffer{}
	for _, s := range tree.SubSectors {
		if v5 {
			binary.Write(buf, binary.LittleEndian, uint32(s.NumGLSeg))
			binary.Write(buf, binary.LittleEndian, uint32(s.FirstGLSeg))
		} else {
			binary.Write(buf, binary.LittleEndian, uint16(s.NumGLSeg))
			binary.Write(buf, binary.LittleEndian, uint16(s.FirstGLSeg))
		}
	}
	return buf.Bytes()
}
