package levelmesh

import (
	"sort"

	"github.com/zdray-go/zdray/internal/mathutil"
)

// shelfPacker lays rectangles left-to-right into fixed-height shelves,
// starting a new shelf when the current one runs out of width. Simple
// and good enough for lightmap tiles, which tend to cluster into a
// handful of common sizes.
type shelfPacker struct {
	size       int32
	cursorX    int32
	shelfY     int32
	shelfH     int32
}

func newShelfPacker(size int32) *shelfPacker {
	return &shelfPacker{size: size}
}

func (p *shelfPacker) place(w, h int32) (x, y int32, ok bool) {
	if w > p.size || h > p.size {
		return 0, 0, false
	}
	if p.cursorX+w > p.size {
		p.cursorX = 0
		p.shelfY += p.shelfH
		p.shelfH = 0
	}
	if p.shelfY+h > p.size {
		return 0, 0, false
	}
	x, y = p.cursorX, p.shelfY
	p.cursorX += w
	if h > p.shelfH {
		p.shelfH = h
	}
	return x, y, true
}

// pendingTile accumulates every surface sharing one bindingKey into a
// single tile: the union of their plane-local bounds, sampled at the
// finest (smallest) of their requested sample distances.
type pendingTile struct {
	minS, maxS, minT, maxT float32
	axisS, axisT           mathutil.Vec3
	sampleDim              int32
	surfIdx                []int
}

// buildAtlas assigns each surface a tile sized from its plane-projected
// extent divided by its sample distance, merging surfaces that share a
// (kind, sector-or-line, control-sector) binding key into one tile the
// way a 3D floor's top and bottom faces, or a subsector's multiple
// triangle-fan pieces of the same flat, do. Tiles are packed largest
// (by height, then width) first so the greedy shelf packer wastes less
// space, and bounds are rounded to sampleDimension multiples and clamped
// to the atlas page size the same way the reference lightmapper does.
func buildAtlas(surfaces []Surface, atlasSize int32) []AtlasTile {
	order := make([]struct {
		kind    SurfaceKind
		typeIdx uint32
		control uint32
	}, 0, len(surfaces))
	pending := map[[3]uint32]*pendingTile{}

	for i := range surfaces {
		s := &surfaces[i]
		kind, typeIdx, control := s.bindingKey()
		key := [3]uint32{uint32(kind), typeIdx, control}

		axisS, axisT := planeAxes(s.Plane)
		sampleDim := roundSampleDimension(s.SampleDistance)
		minS, maxS, minT, maxT := texelBounds(s.Verts, axisS, axisT)

		pt, ok := pending[key]
		if !ok {
			pt = &pendingTile{minS: minS, maxS: maxS, minT: minT, maxT: maxT, axisS: axisS, axisT: axisT, sampleDim: sampleDim}
			pending[key] = pt
			order = append(order, struct {
				kind    SurfaceKind
				typeIdx uint32
				control uint32
			}{kind, typeIdx, control})
		} else {
			if minS < pt.minS {
				pt.minS = minS
			}
			if maxS > pt.maxS {
				pt.maxS = maxS
			}
			if minT < pt.minT {
				pt.minT = minT
			}
			if maxT > pt.maxT {
				pt.maxT = maxT
			}
			if sampleDim < pt.sampleDim {
				pt.sampleDim = sampleDim
			}
		}
		pt.surfIdx = append(pt.surfIdx, i)
	}

	type tileBuild struct {
		pt         *pendingTile
		w, h       int32
		roundedMin mathutil.Vec3
	}
	builds := make([]tileBuild, 0, len(order))
	for _, k := range order {
		pt := pending[[3]uint32{uint32(k.kind), k.typeIdx, k.control}]
		w, h, roundedMinS, roundedMinT := roundAndClampTile(pt.minS, pt.maxS, pt.minT, pt.maxT, pt.sampleDim, atlasSize)
		builds = append(builds, tileBuild{
			pt: pt, w: w, h: h,
			roundedMin: pt.axisS.Scale(roundedMinS).Add(pt.axisT.Scale(roundedMinT)),
		})
	}

	// Pack the tallest tiles first (ties broken by width) so greedy
	// shelf packing doesn't strand a tall, narrow tile under a row of
	// short, wide ones already committed to the shelf height.
	sort.SliceStable(builds, func(i, j int) bool {
		if builds[i].h != builds[j].h {
			return builds[i].h > builds[j].h
		}
		return builds[i].w > builds[j].w
	})

	packer := newShelfPacker(atlasSize)
	page := int32(0)
	var tiles []AtlasTile

	for _, b := range builds {
		x, y, ok := packer.place(b.w, b.h)
		if !ok {
			page++
			packer = newShelfPacker(atlasSize)
			x, y, ok = packer.place(b.w, b.h)
			if !ok {
				b.w, b.h = atlasSize, atlasSize
				x, y = 0, 0
			}
		}

		tileIdx := int32(len(tiles))
		tiles = append(tiles, AtlasTile{
			X: x + page*atlasSize, Y: y, W: b.w, H: b.h,
			Origin: b.roundedMin, AxisS: b.pt.axisS, AxisT: b.pt.axisT,
		})
		for _, si := range b.pt.surfIdx {
			surfaces[si].TileID = tileIdx
		}
	}

	return tiles
}

// roundSampleDimension clamps dist to at least 1 and rounds it up to
// the next power of two, matching the reference lightmapper's tile
// sizing so surfaces sharing a binding key agree on one tile grid.
func roundSampleDimension(dist int32) int32 {
	return int32(mathutil.NextPowerOfTwo(int(dist)))
}

// roundAndClampTile rounds a tile's plane-local bounds out to
// sampleDim multiples (with a one-texel margin on each side) and
// clamps the resulting pixel dimensions to atlasSize-2.
func roundAndClampTile(minS, maxS, minT, maxT float32, sampleDim, atlasSize int32) (w, h int32, roundedMinS, roundedMinT float32) {
	sd := float32(sampleDim)
	roundedMinS = sd * (floorf(minS/sd) - 1)
	roundedMaxS := sd * (ceilf(maxS/sd) + 1)
	roundedMinT = sd * (floorf(minT/sd) - 1)
	roundedMaxT := sd * (ceilf(maxT/sd) + 1)

	w = int32((roundedMaxS - roundedMinS) / sd)
	h = int32((roundedMaxT - roundedMinT) / sd)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	max := atlasSize - 2
	if max < 1 {
		max = 1
	}
	if w > max {
		w = max
	}
	if h > max {
		h = max
	}
	return w, h, roundedMinS, roundedMinT
}

func floorf(v float32) float32 {
	i := int32(v)
	if v < 0 && float32(i) != v {
		i--
	}
	return float32(i)
}

func ceilf(v float32) float32 {
	i := int32(v)
	if v > 0 && float32(i) != v {
		i++
	}
	return float32(i)
}

// planeAxes returns two orthonormal vectors spanning plane's surface,
// used as the UV basis for lightmap sampling.
func planeAxes(p mathutil.Plane) (mathutil.Vec3, mathutil.Vec3) {
	n := p.Normal()
	up := mathutil.Vec3{X: 0, Y: 0, Z: 1}
	if absF(n.Z) > 0.99 {
		up = mathutil.Vec3{X: 1, Y: 0, Z: 0}
	}
	s := up.Cross(n).Normalize()
	t := n.Cross(s).Normalize()
	return s, t
}

func texelBounds(verts []mathutil.Vec3, axisS, axisT mathutil.Vec3) (minS, maxS, minT, maxT float32) {
	if len(verts) == 0 {
		return 0, 0, 0, 0
	}
	minS, maxS = float32(1e30), float32(-1e30)
	minT, maxT = float32(1e30), float32(-1e30)
	for _, v := range verts {
		s := v.Dot(axisS)
		t := v.Dot(axisT)
		if s < minS {
			minS = s
		}
		if s > maxS {
			maxS = s
		}
		if t < minT {
			minT = t
		}
		if t > maxT {
			maxT = t
		}
	}
	return minS, maxS, minT, maxT
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
