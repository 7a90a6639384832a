// Package level reconstructs an in-memory Level from either classic
// binary map lumps or a UDMF TEXTMAP, then prunes degenerate geometry
// and resolves the back-pointer graph the rest of the pipeline needs.
package level

import "github.com/zdray-go/zdray/internal/mathutil"

// NoIndex is the "no side"/"no sector"/"no line" sentinel used throughout
// the level graph once binary 0xffff sentinels are widened to 32 bits.
const NoIndex = 0xffffffff

// UnsetZ is the sentinel floor/ceiling Z meaning "not set by a vertex
// height thing or UDMF zfloor/zceiling key".
const UnsetZ = 1e5

// Vertex is a 2D point in fixed-point, as stored in VERTEXES/UDMF vertex
// blocks.
type Vertex struct {
	X, Y mathutil.Fixed
}

// Vec2 returns the vertex position as a float32 Vec2.
func (v Vertex) Vec2() mathutil.Vec2 {
	return mathutil.Vec2{X: v.X.ToFloat(), Y: v.Y.ToFloat()}
}

// IntVertex carries a vertex's optional per-plane height overrides
// (vertex floor/ceiling Z, from 1504/1505 things or UDMF zfloor/zceiling)
// plus the raw UDMF property bag for keys no recognized field covers.
type IntVertex struct {
	ZFloor   float64
	ZCeiling float64
	Props    map[string]string
}

// NewIntVertex returns an IntVertex with both Z fields unset.
func NewIntVertex() IntVertex {
	return IntVertex{ZFloor: UnsetZ, ZCeiling: UnsetZ, Props: map[string]string{}}
}

// LineFlag bits, the subset relevant to geometry reconstruction.
type LineFlag uint32

const (
	LineBlocking LineFlag = 1 << iota
	LineBlockMonsters
	LineTwoSided
	LineDontPegTop
	LineDontPegBottom
	LineSecret
	LineBlockSound
	LineDontDraw
	LineMapped
)

// LineDef is a map line: two vertex indices, flags, a special plus five
// Hexen-style args, two side indices (NoIndex = none), and the resolved
// back-pointers filled in once by FixupBackPointers.
type LineDef struct {
	V1, V2     uint32
	Flags      LineFlag
	Special    int32
	Args       [5]int32
	SideNum    [2]uint32
	Tag        int32 // classic (non-Hexen) line tag, args[0] in Hexen format

	// Resolved after FixupBackPointers; not valid before.
	FrontSector uint32
	BackSector  uint32
	frontValid  bool
	backValid   bool

	Props map[string]string
}

// SetFrontSector records the resolved front sector index.
func (l *LineDef) SetFrontSector(idx uint32) { l.FrontSector = idx; l.frontValid = true }

// SetBackSector records the resolved back sector index.
func (l *LineDef) SetBackSector(idx uint32) { l.BackSector = idx; l.backValid = true }

// HasFrontSector reports whether FixupBackPointers resolved a front sector.
func (l *LineDef) HasFrontSector() bool { return l.frontValid }

// HasBackSector reports whether the line is two-sided with a resolved back sector.
func (l *LineDef) HasBackSector() bool { return l.backValid }

// TwoSided reports whether the line has a second side index.
func (l *LineDef) TwoSided() bool { return l.SideNum[1] != NoIndex }

// WallPart identifies which texture/sample-distance slot a wall surface uses.
type WallPart int

const (
	WallTop WallPart = iota
	WallMiddle
	WallBottom
	numWallParts
)

// SideDef is one side of a line: texture names, offsets, owning sector,
// and a per-wall-part lightmap sample distance override.
type SideDef struct {
	TextureOffsetX, TextureOffsetY int32
	TopTexture, MidTexture, BotTexture string
	Sector                         uint32
	Line                           uint32 // resolved by FixupBackPointers
	SampleDistance                 [numWallParts]int32

	Props map[string]string
}

// Sector is a map sector: heights, flats, light, special/tag, the derived
// floor/ceiling planes, group membership, and 3D-floor control sectors.
type Sector struct {
	FloorHeight, CeilingHeight int32
	FloorFlat, CeilingFlat     string
	LightLevel                 int32
	Special                    int32
	Tags                       []int32

	FloorPlane   mathutil.Plane
	CeilingPlane mathutil.Plane

	SkyFloor, SkyCeiling bool

	// SampleDistance is indexed [0]=floor [1]=ceiling; 0 means "use the
	// level default".
	SampleDistance [2]int32

	Group uint32 // sector-group id, assigned in internal/levelmesh

	// Lines lists every line (by index) that references this sector as
	// front or back, populated by FixupBackPointers.
	Lines []uint32

	// X3DFloors lists control-sector indices for Sector_Set3dFloor.
	X3DFloors []ControlSector

	Props map[string]string
}

// ControlSector describes one 3D-floor: a controlling sector plus the
// original Sector_Set3dFloor line args, which determine translucency
// and solidity flags the mesh builder needs when emitting inner surfaces.
type ControlSector struct {
	Sector uint32
	Flags  int32
}

// ThingFlag bits relevant to slope/light resolution (skill/flags checks
// are a gameplay concern and out of scope).
type ThingFlag uint32

// Thing is a map "thing": position, optional Hexen height/angle/args,
// and a type number. The slope resolver and lightmap builder each
// interpret a handful of type numbers (slope control points, polyobject
// anchors, dynamic lights).
type Thing struct {
	X, Y   mathutil.Fixed
	Height int32
	Angle  int32
	Type   uint16
	Flags  ThingFlag
	Args   [5]int32 // Hexen-format things only; Doom things use Special/Tag=0

	Props map[string]string
}

// Level is the fully reconstructed in-memory map: flat owning arrays plus
// the non-owning back-pointer indices resolved by FixupBackPointers.
// Every derived structure (BSP tree, blockmap, BVH, level mesh) holds a
// reference to a Level and must not outlive it.
type Level struct {
	Name string

	Vertexes   []Vertex
	IntVertexes []IntVertex
	Lines      []LineDef
	Sides      []SideDef
	Sectors    []Sector
	Things     []Thing

	Hexen bool // true when a BEHAVIOR lump followed THINGS/LINEDEFS
	UDMF  bool // true when loaded from TEXTMAP rather than binary lumps

	MinX, MinY, MaxX, MaxY mathutil.Fixed

	// OldToNewSector maps a pre-prune sector index to its post-prune
	// index, or NoIndex if the sector was removed. Needed to remap a
	// pass-through REJECT lump.
	OldToNewSector []uint32
}

// Bounds returns the map's AABB in float coordinates (Z left at 0; the
// geometry pipeline computes real Z bounds once sector planes exist).
func (lvl *Level) Bounds() mathutil.AABB {
	return mathutil.AABB{
		Min: mathutil.Vec3{X: lvl.MinX.ToFloat(), Y: lvl.MinY.ToFloat()},
		Max: mathutil.Vec3{X: lvl.MaxX.ToFloat(), Y: lvl.MaxY.ToFloat()},
	}
}
