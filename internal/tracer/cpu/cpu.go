// Package cpu implements the CPU path tracer: a pond worker pool that
// integrates direct light, shadow rays, and importance-sampled
// hemisphere bounces per lightmap texel.
package cpu

import (
	"context"
	"math"
	"math/rand"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/zdray-go/zdray/internal/bvh"
	"github.com/zdray-go/zdray/internal/config"
	"github.com/zdray-go/zdray/internal/levelmesh"
	"github.com/zdray-go/zdray/internal/mathutil"
)

// Texel is one lightmap sample point to integrate, carrying the
// surface-space position/normal the integrator shoots rays from, plus
// the atlas tile coordinate it bakes into. The integrator only reads
// Pos/Normal/SurfaceIdx; TileID/LocalX/LocalY ride along so
// internal/output can write Bake's results back into the right atlas
// pixel without re-deriving the enumeration order by hand.
type Texel struct {
	SurfaceIdx int
	Pos        mathutil.Vec3
	Normal     mathutil.Vec3

	TileID int32
	LocalX int32
	LocalY int32
}

// GenerateTexels enumerates one Texel per atlas pixel covered by each
// non-sky surface in mesh, in (surface, tile-row, tile-column) order.
// Bake's Result.TexelIdx indexes back into the slice this returns, so
// callers that need to place baked colors into atlas pixels can regenerate
// this same enumeration and zip it with the results by index.
func GenerateTexels(mesh *levelmesh.Mesh) []Texel {
	var out []Texel
	for si := range mesh.Surfaces {
		s := &mesh.Surfaces[si]
		if s.Sky || s.TileID < 0 || int(s.TileID) >= len(mesh.Tiles) {
			continue
		}
		tile := mesh.Tiles[s.TileID]
		normal := s.Plane.Normal()
		step := s.SampleDistance
		if step <= 0 {
			step = 1
		}

		for ty := int32(0); ty < tile.H; ty++ {
			for tx := int32(0); tx < tile.W; tx++ {
				pos := tile.Origin.
					Add(tile.AxisS.Scale(float32(tx * step))).
					Add(tile.AxisT.Scale(float32(ty * step)))
				out = append(out, Texel{
					SurfaceIdx: si,
					Pos:        pos,
					Normal:     normal,
					TileID:     s.TileID,
					LocalX:     tx,
					LocalY:     ty,
				})
			}
		}
	}
	return out
}

// Result is the baked radiance for one texel, in linear RGB.
type Result struct {
	TexelIdx int
	Color    mathutil.Vec3
}

// Bake integrates radiance at every texel using tree for occlusion,
// mesh for light positions/tile geometry, and cfg for sample counts and
// worker concurrency. Work is distributed across a pond pool sized by
// cfg.NumThreads (0 meaning hardware concurrency).
func Bake(ctx context.Context, tree *bvh.BVH, mesh *levelmesh.Mesh, texels []Texel, cfg config.LightmapConfig, log *zap.Logger) ([]Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	workers := cfg.NumThreads
	if workers <= 0 {
		workers = 0 // pond interprets 0 as runtime.NumCPU()
	}
	pool := pond.NewPool(workers)
	defer pool.StopAndWait()

	results := make([]Result, len(texels))
	group := pool.NewGroup()

	for i, texel := range texels {
		i, texel := i, texel
		group.Submit(func() {
			select {
			case <-ctx.Done():
				return
			default:
			}
			color := integrateTexel(tree, mesh, texel, cfg)
			results[i] = Result{TexelIdx: i, Color: color}
		})
	}

	group.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	log.Info("cpu bake complete", zap.Int("texels", len(texels)), zap.Int("samples", cfg.SampleCount))
	return results, nil
}

// integrateTexel accumulates direct light from every light visible to
// the texel's sector group plus, when cfg.LightBounces is positive, one
// round of cosine-weighted hemisphere sampling for indirect bounce
// light. Only a single bounce is traced: any LightBounces value above 1
// gives the same result as 1.
func integrateTexel(tree *bvh.BVH, mesh *levelmesh.Mesh, texel Texel, cfg config.LightmapConfig) mathutil.Vec3 {
	surface := mesh.Surfaces[texel.SurfaceIdx]

	var direct mathutil.Vec3
	for _, li := range surface.LightList {
		direct = direct.Add(sampleLight(tree, mesh.Lights[li], texel))
	}

	if cfg.LightBounces <= 0 {
		return direct
	}

	rng := rand.New(rand.NewSource(int64(texel.SurfaceIdx)*2654435761 + 1))
	samples := cfg.SampleCount
	if samples <= 0 {
		samples = 1
	}

	var indirect mathutil.Vec3
	for s := 0; s < samples; s++ {
		dir := cosineSampleHemisphere(texel.Normal, rng)
		origin := texel.Pos.Add(texel.Normal.Scale(0.5))
		hit, ok := tree.FindFirstHit(origin, dir, 0, 1e5)
		if !ok {
			continue
		}
		hitSurface := mesh.Surfaces[hit.Payload]
		for _, li := range hitSurface.LightList {
			bounce := sampleLight(tree, mesh.Lights[li], Texel{Pos: hit.Point, Normal: hit.Normal, SurfaceIdx: int(hit.Payload)})
			indirect = indirect.Add(bounce)
		}
	}
	indirect = indirect.Scale(1.0 / float32(samples))

	return direct.Add(indirect)
}

// sampleLight shoots a shadow ray from the texel toward the light and
// returns its Lambertian contribution, zero if occluded.
func sampleLight(tree *bvh.BVH, light levelmesh.Light, texel Texel) mathutil.Vec3 {
	toLight := light.Pos.Sub(texel.Pos)
	dist := toLight.Length()
	if dist <= 1e-4 || dist > light.Radius*4 {
		return mathutil.Vec3{}
	}
	dir := toLight.Normalize()

	ndotl := texel.Normal.Dot(dir)
	if ndotl <= 0 {
		return mathutil.Vec3{}
	}

	origin := texel.Pos.Add(texel.Normal.Scale(0.5))
	if tree.FindAnyHit(origin, dir, 0.01, dist-0.01) {
		return mathutil.Vec3{}
	}

	atten := 1 - clamp01(dist/light.Radius)
	atten = atten * atten
	scale := light.Intensity * atten * ndotl
	return light.Color.Scale(scale)
}

// cosineSampleHemisphere draws a direction cosine-weighted around
// normal, biasing samples toward directions that contribute more to a
// Lambertian integral and so converge faster with fewer rays.
func cosineSampleHemisphere(normal mathutil.Vec3, rng *rand.Rand) mathutil.Vec3 {
	u1, u2 := rng.Float64(), rng.Float64()
	r := math.Sqrt(u1)
	theta := 2 * math.Pi * u2
	x := float32(r * math.Cos(theta))
	y := float32(r * math.Sin(theta))
	z := float32(math.Sqrt(1 - u1))

	up := mathutil.Vec3{X: 0, Y: 0, Z: 1}
	if absF(normal.Z) > 0.99 {
		up = mathutil.Vec3{X: 1, Y: 0, Z: 0}
	}
	tangent := up.Cross(normal).Normalize()
	bitangent := normal.Cross(tangent)

	return tangent.Scale(x).Add(bitangent.Scale(y)).Add(normal.Scale(z)).Normalize()
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
