package level

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/udmf"
	"github.com/zdray-go/zdray/internal/wad"
)

// LoadConfig controls optional post-processing Load performs after
// reconstructing the raw level graph.
type LoadConfig struct {
	// SkipPrune disables zero-length-line and unused-sector removal,
	// useful for tests that want to inspect the raw lump contents.
	SkipPrune bool

	// Log receives warnings about recoverable map corruption (e.g. a
	// dangling side index). Defaults to a no-op logger.
	Log *zap.Logger
}

// Load finds mapName's marker lump in r, decodes either its classic
// binary lumps or its TEXTMAP (UDMF) lump, and returns a fully resolved
// Level: pruned, back-pointer-fixed, with floor/ceiling planes and
// map bounds computed.
func Load(r wad.Reader, mapName string, cfg LoadConfig) (*Level, error) {
	mapIndex := r.IndexOf(mapName, 0)
	if mapIndex < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMapNotFound, mapName)
	}

	textmapIdx := r.IndexOf("TEXTMAP", mapIndex)
	isUDMF := textmapIdx == mapIndex+1

	var lvl *Level
	var err error
	if isUDMF {
		data, rerr := r.ReadLump(textmapIdx)
		if rerr != nil {
			return nil, rerr
		}
		doc, perr := udmf.Parse(data)
		if perr != nil {
			return nil, fmt.Errorf("level: parsing TEXTMAP for %s: %w", mapName, perr)
		}
		lvl, err = loadUDMF(doc, mapName)
	} else {
		lvl, err = loadBinary(r, mapIndex)
	}
	if err != nil {
		return nil, err
	}

	if !cfg.SkipPrune {
		if err := lvl.Prune(); err != nil {
			return nil, err
		}
	}
	if err := lvl.FixupBackPointers(cfg.Log); err != nil {
		return nil, err
	}
	lvl.ResolveX3DFloors()

	lvl.computeBounds()
	lvl.computeSectorPlanes()

	return lvl, nil
}

// DetectMaps scans r's directory for map marker lumps: any lump
// immediately followed by THINGS (classic) or TEXTMAP (UDMF), the
// same heuristic node builders use since map names aren't otherwise
// distinguished from any other lump.
func DetectMaps(r wad.Reader) []string {
	var out []string
	for i := 0; i < r.NumLumps()-1; i++ {
		next := r.LumpName(i + 1)
		if next == "THINGS" || next == "TEXTMAP" {
			out = append(out, r.LumpName(i))
		}
	}
	return out
}

func (lvl *Level) computeBounds() {
	if len(lvl.Vertexes) == 0 {
		return
	}
	lvl.MinX, lvl.MaxX = lvl.Vertexes[0].X, lvl.Vertexes[0].X
	lvl.MinY, lvl.MaxY = lvl.Vertexes[0].Y, lvl.Vertexes[0].Y
	for _, v := range lvl.Vertexes[1:] {
		if v.X < lvl.MinX {
			lvl.MinX = v.X
		}
		if v.X > lvl.MaxX {
			lvl.MaxX = v.X
		}
		if v.Y < lvl.MinY {
			lvl.MinY = v.Y
		}
		if v.Y > lvl.MaxY {
			lvl.MaxY = v.Y
		}
	}
}

// computeSectorPlanes assigns each sector's flat floor/ceiling plane
// from its integer heights. internal/level/slope overwrites these with
// sloped planes where vertex heights, Plane_Align, or Plane_Copy apply.
func (lvl *Level) computeSectorPlanes() {
	for i := range lvl.Sectors {
		s := &lvl.Sectors[i]
		s.FloorPlane = mathutil.PlaneFromHeight(float64(s.FloorHeight), true)
		s.CeilingPlane = mathutil.PlaneFromHeight(float64(s.CeilingHeight), false)
	}
}
