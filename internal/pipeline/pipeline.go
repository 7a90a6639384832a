// Package pipeline drives the end-to-end level-preprocessing run: load,
// resolve slopes, build nodes, build the blockmap, build the level mesh
// and its BVH, bake lighting, and write the result back out. Every
// stage's error is wrapped in an Error carrying the stage's Kind so the
// CLI can report a meaningful message while still exiting uniformly.
package pipeline

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zdray-go/zdray/internal/blockmap"
	"github.com/zdray-go/zdray/internal/bsp"
	"github.com/zdray-go/zdray/internal/bvh"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/level"
	"github.com/zdray-go/zdray/internal/level/slope"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/output"
	"github.com/zdray-go/zdray/internal/tracer/cpu"
	"github.com/zdray-go/zdray/internal/tracer/gpu"
	"github.com/zdray-go/zdray/internal/wad"
)

// Result carries every intermediate artifact a caller (tests, mainly)
// might want to inspect after a successful Run, beyond the lumps
// already written into the output archive.
type Result struct {
	Level    *level.Level
	Tree     *bsp.Tree
	Blockmap *blockmap.Blockmap
	Mesh     *levelmesh.Mesh
	BVH      *bvh.BVH
	Bake     []cpu.Result
}

// Run processes one map from reader through every pipeline stage and
// writes the result into writer. cfg.Lightmap.UseGPU selects the
// software-polyfill GPU bake path over the CPU one; both produce
// directly comparable output since they share one integrator.
func Run(ctx context.Context, reader wad.Reader, mapName string, cfg config.BuildConfig, writer wad.Writer, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	lvl, err := level.Load(reader, mapName, level.LoadConfig{SkipPrune: cfg.Prune.Disable, Log: log})
	if err != nil {
		return nil, wrap(kindForLoadError(err), err)
	}
	log.Info("level loaded", zap.String("map", mapName), zap.Int("sectors", len(lvl.Sectors)), zap.Int("lines", len(lvl.Lines)))

	if err := slope.Resolve(lvl, log); err != nil {
		return nil, wrap(KindMalformedMap, err)
	}

	var tree *bsp.Tree
	if !cfg.Nodes.Disable {
		tree, err = bsp.Build(lvl, cfg.Nodes)
		if err != nil {
			return nil, wrap(KindNodeBuildFailed, err)
		}
		log.Info("nodes built", zap.Int("nodes", len(tree.Nodes)), zap.Int("subsectors", len(tree.SubSectors)))
	}

	bm, err := blockmap.Build(lvl, cfg.Blockmap.Packed)
	if err != nil {
		kind := KindIOFailure
		if errors.Is(err, blockmap.ErrTooLarge) {
			kind = KindBlockmapTooLarge
		}
		return nil, wrap(kind, err)
	}

	mesh, err := levelmesh.Build(lvl, tree, cfg.Lightmap)
	if err != nil {
		return nil, wrap(KindMalformedMap, err)
	}
	log.Info("level mesh built", zap.Int("surfaces", len(mesh.Surfaces)), zap.Int("tiles", len(mesh.Tiles)), zap.Int("lights", len(mesh.Lights)))

	tracerTree := bvh.Build(mesh.Triangles())

	texels := cpu.GenerateTexels(mesh)
	var bakeResults []cpu.Result
	if len(texels) > 0 {
		if cfg.Lightmap.UseGPU {
			bakeResults, err = gpu.Bake(ctx, tracerTree, mesh, texels, cfg.Lightmap, log)
		} else {
			bakeResults, err = cpu.Bake(ctx, tracerTree, mesh, texels, cfg.Lightmap, log)
		}
		if err != nil {
			return nil, wrap(KindBakeOverflow, err)
		}
	}
	log.Info("lightmap baked", zap.Int("texels", len(texels)))

	originalReject, _, _ := wad.ReadLumpNamed(reader, "REJECT", reader.IndexOf(mapName, 0))

	opts := output.Options{
		Tree:           tree,
		Blockmap:       bm,
		Mesh:           mesh,
		BakeResults:    bakeResults,
		OriginalReject: originalReject,
	}
	if err := output.Write(lvl, opts, writer, cfg); err != nil {
		return nil, wrap(KindIOFailure, err)
	}

	return &Result{
		Level:    lvl,
		Tree:     tree,
		Blockmap: bm,
		Mesh:     mesh,
		BVH:      tracerTree,
		Bake:     bakeResults,
	}, nil
}

func kindForLoadError(err error) Kind {
	if errors.Is(err, level.ErrMapNotFound) {
		return KindIOFailure
	}
	return KindMalformedMap
}
