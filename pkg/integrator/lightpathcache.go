package integrator

import (
	"github.com/kestrelrender/bdpt/pkg/emitter"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/rng"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// GenerateLightPath samples one emission ray from the scene's emitter
// selector and walks it to build one light subpath, grounded on the
// generateLightSubpath in pkg/integrator/bdpt.go but emitting
// into the flat pathcache.Vertex shape instead of a per-pixel Path value.
func GenerateLightPath(scene walk.Intersector, background walk.Background, selector emitter.Selector, maxDepth int, src *rng.Source) []pathcache.Vertex {
	if selector.Count() == 0 {
		return nil
	}
	u := src.Float64()
	em, _, selectPdf := selector.Select(u)
	if em == nil || selectPdf == 0 {
		return nil
	}

	u1, u2 := src.Float64Pair()
	u3, u4 := src.Float64Pair()
	raySample := em.SampleRay(u1, u2, u3, u4)
	if raySample.PdfArea == 0 || raySample.PdfDir == 0 {
		return nil
	}

	cos := raySample.Normal.AbsDot(raySample.Direction)
	beta := raySample.Radiance.Scale(cos / (raySample.PdfArea * selectPdf * raySample.PdfDir))

	seed := pathcache.Vertex{
		Point:        raySample.Origin,
		Normal:       raySample.Normal,
		Emitter:      em,
		IsLight:      true,
		IsInfinite:   em.IsInfinite(),
		Beta:         raySample.Radiance.Scale(1 / selectPdf),
		EmittedLight: raySample.Radiance,
	}
	seed.AreaPdfForward = raySample.PdfArea * selectPdf

	ray := vecmath.NewRay(raySample.Origin, raySample.Direction)
	cfg := walk.Config{MaxDepth: maxDepth - 1, Source: src}
	vertices := walk.Run(scene, background, seed, ray, beta, raySample.PdfDir, cfg)
	FillReversePdfs(vertices)
	return vertices
}

// FillLightPathCache runs numPaths independent light subpaths and appends
// them all into cache. Callers parallelize this across worker-local caches
// and Merge the results; this function itself is sequential so it composes
// cleanly inside a single worker's shard of the per-iteration light-path
// count.
func FillLightPathCache(cache *pathcache.Cache, scene walk.Intersector, background walk.Background, selector emitter.Selector, maxDepth int, baseSeed uint64, pathOffset, count int) {
	for i := 0; i < count; i++ {
		src := rng.New(rng.LightPathSeed(baseSeed, pathOffset+i, 0), 1)
		path := GenerateLightPath(scene, background, selector, maxDepth, src)
		cache.AppendPath(path)
	}
}
