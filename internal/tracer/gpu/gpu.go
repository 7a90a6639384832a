// Package gpu implements the "GPU" bake path as a software polyfill: it
// splits texels into uuid-tagged batches and runs each batch through
// tracer/cpu's Bake against the same BVH tree, so no CollisionNode
// buffer is built or read. This keeps the output comparable between
// the two paths without requiring a Vulkan device in this environment.
package gpu

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zdray-go/zdray/internal/bvh"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/tracer/cpu"
)

// CollisionNode mirrors the flattened BVH node layout a compute shader
// would bind as a storage buffer: a bounding box plus either two child
// indices or a leaf's (first, count) triangle range, discriminated by
// Count.
type CollisionNode struct {
	Min, Max        mathutil.Vec3
	Left, Right     int32
	FirstTri, Count int32
}

// Batch is one dispatch unit: a contiguous run of texels staged for the
// "device" together, tagged with a uuid so a real backend could
// correlate fence completions back to this batch.
type Batch struct {
	ID     uuid.UUID
	Texels []cpu.Texel
}

// StageBuffers is the hook for the CollisionNode buffer a compute
// shader would bind. It returns nil: no buffer is built from tree, and
// the polyfilled Bake path below does not read one.
func StageBuffers(tree *bvh.BVH) []CollisionNode {
	// The BVH type does not expose its internal node slice; a real
	// device backend would need internal/bvh to add an exported
	// flattening method. Until then this returns an empty buffer and
	// Bake below falls back to tree.FindFirstHit directly.
	return nil
}

// Batches splits texels into chunks of at most cfg.MaxUpdatesPerBatch,
// each tagged with a fresh uuid, mirroring how a real backend would
// group per-frame lightmap update uploads.
func Batches(texels []cpu.Texel, cfg config.LightmapConfig) []Batch {
	size := cfg.MaxUpdatesPerBatch
	if size <= 0 {
		size = 128
	}

	var out []Batch
	for i := 0; i < len(texels); i += size {
		end := i + size
		if end > len(texels) {
			end = len(texels)
		}
		out = append(out, Batch{ID: uuid.New(), Texels: texels[i:end]})
	}
	return out
}

// Bake runs the same integrator tracer/cpu uses, batch by batch, and
// logs each batch's id the way a real GPU path would log fence waits.
func Bake(ctx context.Context, tree *bvh.BVH, mesh *levelmesh.Mesh, texels []cpu.Texel, cfg config.LightmapConfig, log *zap.Logger) ([]cpu.Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	batches := Batches(texels, cfg)
	results := make([]cpu.Result, 0, len(texels))

	offset := 0
	for _, batch := range batches {
		log.Debug("dispatching gpu bake batch", zap.String("batch_id", batch.ID.String()), zap.Int("texels", len(batch.Texels)))

		batchResults, err := cpu.Bake(ctx, tree, mesh, batch.Texels, cfg, log)
		if err != nil {
			return nil, err
		}
		for _, r := range batchResults {
			r.TexelIdx += offset
			results = append(results, r)
		}
		offset += len(batch.Texels)
	}

	return results, nil
}
