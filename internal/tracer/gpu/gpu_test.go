package gpu

import (
	"context"
	"testing"

	"github.com/zdray-go/zdray/internal/bvh"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/mathutil"
	"github.com/zdray-go/zdray/internal/tracer/cpu"
)

func floorMesh() (*bvh.BVH, *levelmesh.Mesh) {
	surf := levelmesh.Surface{
		Kind:      levelmesh.SurfaceFloor,
		Group:     0,
		LightList: []int{0},
		Verts: []mathutil.Vec3{
			{X: -50, Y: -50, Z: 0}, {X: 50, Y: -50, Z: 0}, {X: 50, Y: 50, Z: 0}, {X: -50, Y: 50, Z: 0},
		},
	}
	mesh := &levelmesh.Mesh{
		Surfaces: []levelmesh.Surface{surf},
		Lights: []levelmesh.Light{
			{Pos: mathutil.Vec3{X: 0, Y: 0, Z: 64}, Color: mathutil.Vec3{X: 1, Y: 1, Z: 1}, Intensity: 1, Radius: 200, SectorIdx: 0},
		},
		GroupLights: map[uint32][]int{0: {0}},
	}
	var tris []bvh.Triangle
	for _, t := range mesh.Surfaces[0].Triangulate() {
		tris = append(tris, bvh.Triangle{V0: t[0], V1: t[1], V2: t[2], Payload: 0})
	}
	return bvh.Build(tris), mesh
}

func TestBatchesSplitsAndTagsEachChunk(t *testing.T) {
	texels := make([]cpu.Texel, 5)
	batches := Batches(texels, config.LightmapConfig{MaxUpdatesPerBatch: 2})
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	seen := map[string]bool{}
	for _, b := range batches {
		if seen[b.ID.String()] {
			t.Fatal("batch ids must be unique")
		}
		seen[b.ID.String()] = true
	}
	if len(batches[0].Texels) != 2 || len(batches[2].Texels) != 1 {
		t.Errorf("unexpected batch sizes: %d, %d, %d", len(batches[0].Texels), len(batches[1].Texels), len(batches[2].Texels))
	}
}

func TestBatchesDefaultsSizeWhenUnset(t *testing.T) {
	texels := make([]cpu.Texel, 200)
	batches := Batches(texels, config.LightmapConfig{})
	if len(batches) != 2 {
		t.Fatalf("expected default batch size of 128 to split 200 texels into 2, got %d batches", len(batches))
	}
}

func TestBakeMatchesCPUResultCount(t *testing.T) {
	tree, mesh := floorMesh()
	texels := []cpu.Texel{
		{SurfaceIdx: 0, Pos: mathutil.Vec3{X: 0, Y: 0, Z: 0}, Normal: mathutil.Vec3{X: 0, Y: 0, Z: 1}},
		{SurfaceIdx: 0, Pos: mathutil.Vec3{X: 10, Y: 10, Z: 0}, Normal: mathutil.Vec3{X: 0, Y: 0, Z: 1}},
	}
	results, err := Bake(context.Background(), tree, mesh, texels, config.LightmapConfig{SampleCount: 4, NumThreads: 1, MaxUpdatesPerBatch: 1}, nil)
	if err != nil {
		t.Fatalf("Bake() error = %v", err)
	}
	if len(results) != len(texels) {
		t.Fatalf("expected %d results, got %d", len(texels), len(results))
	}
	for _, r := range results {
		if r.Color.X <= 0 && r.Color.Y <= 0 && r.Color.Z <= 0 {
			t.Error("expected non-zero direct light under an overhead point light")
		}
	}
}

func TestBakePropagatesCPUCancellation(t *testing.T) {
	tree, mesh := floorMesh()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Bake(ctx, tree, mesh, []cpu.Texel{{SurfaceIdx: 0}}, config.LightmapConfig{NumThreads: 1}, nil)
	if err == nil {
		t.Fatal("expected context cancellation error")
	}
}
