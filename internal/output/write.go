// Package output re-serializes a processed Level, its built BSP tree,
// blockmap, and baked level mesh back into WAD lumps: classic map data,
// classic or extended/compressed nodes, optional GL nodes, the
// blockmap, the reject table, and the compressed LIGHTMAP payload.
package output

import (
	"github.com/zdray-go/zdray/internal/blockmap"
	"github.com/zdray-go/zdray/internal/bsp"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/tracer/cpu"
	"github.com/zdray-go/zdray/internal/wad"
)

// Options bundles everything Write needs beyond the archive it writes
// into: the built artifacts from every earlier pipeline stage, plus the
// original REJECT bytes (for pass-through remapping) and the bake's sun
// parameters (for the LIGHTMAP header).
type Options struct {
	Tree           *bsp.Tree
	Blockmap       *blockmap.Blockmap
	Mesh           *levelmesh.Mesh
	BakeResults    []cpu.Result
	OriginalReject []byte
	SunDir         mathutil.Vec3
	SunColor       mathutil.Vec3
}

// Write re-serializes lvl and the rest of opts into archive as a full
// set of named lumps, appended in this order: THINGS, LINEDEFS,
// SIDEDEFS, VERTEXES, SECTORS, the node lumps, the GL node lumps,
// BLOCKMAP, REJECT, LIGHTMAP (optional groups only when enabled). The
// map marker itself is the caller's responsibility (the archive's lump
// list is ordered, and Write appends starting with THINGS). Save is
// left to the caller, since Write has no opinion on the output path.
func Write(lvl *level.Level, opts Options, archive wad.Writer, cfg config.BuildConfig) error {
	for _, l := range encodeMapLumps(lvl) {
		archive.AddLump(l.Name, l.Data)
	}

	if !cfg.Nodes.Disable && opts.Tree != nil {
		vertexCount := opts.Tree.VertexCount(len(lvl.Vertexes))

		if !cfg.Nodes.GLOnly {
			nodeLumps, err := encodeNodeLumps(opts.Tree, vertexCount, cfg.Nodes)
			if err != nil {
				return err
			}
			for _, l := range nodeLumps {
				archive.AddLump(l.Name, l.Data)
			}
		}

		buildGL := cfg.Nodes.BuildGL || cfg.Nodes.GLOnly
		if buildGL {
			glLumps, err := encodeGLLumps(opts.Tree, vertexCount, cfg.Nodes)
			if err != nil {
				return err
			}
			for _, l := range glLumps {
				archive.AddLump(l.Name, l.Data)
			}
		}
	}

	if opts.Blockmap != nil {
		bmData, err := encodeBlockmap(opts.Blockmap)
		if err != nil {
			return err
		}
		archive.AddLump("BLOCKMAP", bmData)
	}

	archive.AddLump("REJECT", encodeReject(lvl, opts.OriginalReject, cfg.Reject))

	if opts.Mesh != nil {
		lmData, err := buildLightmapLump(opts.Mesh, opts.BakeResults, opts.SunDir, opts.SunColor)
		if err != nil {
			return err
		}
		archive.AddLump("LIGHTMAP", lmData)
	}

	return nil
}
