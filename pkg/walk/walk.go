// Package walk implements the generic random-walk engine: camera and
// light subpaths are both generated by the same template-method loop
// (extend, intersect, record a vertex, extend again) with depth as the
// only termination condition — no Russian roulette in the core walk (see
// DESIGN.md Open Question decisions).
package walk

import (
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/rng"
	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Hit is what an Intersector reports for the closest surface a ray
// strikes, the minimal shape of core.HitRecord this engine
// needs.
type Hit struct {
	Point    vecmath.Point3
	Normal   vecmath.Vec3
	T        float64
	Material pathcache.MaterialAt
	Emitter  pathcache.EmitterAt // nil unless the surface is emissive
}

// Intersector is the external scene collaborator: given a ray and a
// valid-t range, report the closest hit or none.
type Intersector interface {
	Intersect(ray vecmath.Ray, tMin, tMax float64) (Hit, bool)
}

// Background reports the radiance a ray sees if it escapes the scene
// without hitting anything, and the environment emitter (if any) backing
// that radiance so an escaping camera subpath can still be treated as
// "hitting" the environment emitter for bidirectional bookkeeping.
type Background interface {
	Emitted(dir vecmath.Vec3) vecmath.Vec3
	AsEmitter() pathcache.EmitterAt // nil if the scene has no environment emitter
}

// Config bounds one walk.
type Config struct {
	MaxDepth int
	Source   *rng.Source
}

// Run extends a subpath starting from an already-known first vertex
// (either the camera lens point or a sampled emission point — callers in
// pkg/integrator build that first vertex since its pdf bookkeeping differs
// between the two cases) along `ray` with throughput `beta`, intersecting
// against `scene` until the surface is missed, depth is exhausted, or the
// material sampled a direction with zero pdf. It returns the full vertex
// list including the seed vertex at index 0.
func Run(scene Intersector, background Background, seed pathcache.Vertex, ray vecmath.Ray, beta vecmath.Vec3, pdfFwd float64, cfg Config) []pathcache.Vertex {
	vertices := make([]pathcache.Vertex, 0, cfg.MaxDepth+1)
	vertices = append(vertices, seed)

	if cfg.MaxDepth == 0 {
		return vertices
	}

	prevPdfFwd := pdfFwd
	prevPoint := seed.Point
	prevNormal := seed.Normal

	for depth := 1; depth <= cfg.MaxDepth; depth++ {
		hit, ok := scene.Intersect(ray, 1e-4, 1e30)
		if !ok {
			if background != nil {
				if em := background.AsEmitter(); em != nil {
					v := pathcache.Vertex{
						Point:             ray.Direction.Scale(1e7).Add(ray.Origin),
						Normal:            ray.Direction.Negate(),
						Emitter:           em,
						IsLight:           true,
						IsInfinite:        true,
						IncomingDirection: ray.Direction,
						Beta:              beta,
						EmittedLight:      background.Emitted(ray.Direction),
					}
					v.AreaPdfForward = sampling.SolidAngleToSurfaceArea(prevPdfFwd, prevPoint, v.Point, v.Normal)
					vertices = append(vertices, v)
				}
			}
			break
		}

		v := pathcache.Vertex{
			Point:             hit.Point,
			Normal:            hit.Normal,
			Material:          hit.Material,
			Emitter:           hit.Emitter,
			IsLight:           hit.Emitter != nil,
			IncomingDirection: ray.Direction,
			Beta:              beta,
		}
		v.AreaPdfForward = sampling.SolidAngleToSurfaceArea(prevPdfFwd, prevPoint, v.Point, v.Normal)
		if hit.Emitter != nil {
			v.EmittedLight = hit.Emitter.EmittedRadiance(hit.Point, hit.Normal, ray.Direction.Negate())
		}

		if hit.Material == nil {
			vertices = append(vertices, v)
			break
		}

		wo := ray.Direction.Negate()
		u1, u2 := cfg.Source.Float64Pair()
		u3 := cfg.Source.Float64()
		wi, f, fwdPdf, revPdf, isDelta := hit.Material.WorldSample(hit.Normal, wo, u1, u2, u3)
		v.IsSpecular = isDelta
		vertices = append(vertices, v)

		if fwdPdf == 0 && !isDelta {
			break
		}
		if f.IsZero() {
			break
		}

		cos := wi.AbsDot(hit.Normal)
		if isDelta {
			beta = beta.MulVec(f).Scale(cos)
		} else {
			beta = beta.MulVec(f).Scale(cos / fwdPdf)
		}
		if beta.IsZero() || beta.HasNaN() {
			break
		}

		// the reverse pdf of *this* step is recorded on the vertex we
		// just appended once its successor exists, so
		// integrator.FillReversePdfs fills AreaPdfReverse in a second pass
		// after the whole subpath is built rather than here.
		_ = revPdf

		ray = vecmath.NewRay(hit.Point, wi)
		prevPdfFwd = fwdPdf
		prevPoint = hit.Point
		prevNormal = hit.Normal
	}

	return vertices
}
