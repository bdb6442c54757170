package integrator

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/emitter"
	"github.com/kestrelrender/bdpt/pkg/framebuffer"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/rng"
	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// BidirBase is the core per-pixel estimator: it combines the s==0
// emitter-hit strategy, next-event estimation at every eligible camera
// vertex, and general bidirectional connections to the shared light-vertex
// cache, weighting every strategy's contribution by the balance heuristic
// (pkg/integrator/misweights.go) before summing them into one pixel
// estimate. Each strategy can be switched off independently and the
// per-vertex sample counts tuned, matching VertexCacheBidir's documented
// configuration surface. Grounded on
// pkg/integrator/bdpt.go evaluateBDPTStrategies/generateBDPTStrategies,
// restructured around the cache instead of enumerating (s, t) pairs
// against one dedicated light path per pixel.
type BidirBase struct {
	Scene      walk.Intersector
	Background walk.Background
	Camera     CameraModel
	Selector   emitter.Selector
	MaxDepth   int
	MinDepth   int

	// EnableHitting turns the s==0 emitter-hit strategy on.
	EnableHitting bool
	// EnableConnections turns general bidirectional connections on.
	EnableConnections bool
	// EnableLightTracer turns the t==1 light-tracer splats on (see
	// SplatLightTracerPaths).
	EnableLightTracer bool

	// NumConnections is how many independent connection attempts
	// EvaluatePixel draws from the cache per eligible camera vertex.
	NumConnections int
	// NumShadowRays is how many independent next-event estimation samples
	// EvaluatePixel draws per eligible camera vertex.
	NumShadowRays int

	// Pyramid, if non-nil, receives every strategy's raw and
	// MIS-weighted contribution for offline technique-pyramid debugging.
	Pyramid *framebuffer.Pyramid
}

// shadowVisible reports whether a straight line between two points is
// unoccluded, the shared visibility test both next-event estimation and
// bidirectional connections use.
func shadowVisible(scene walk.Intersector, from, to vecmath.Point3) bool {
	ray, dist := vecmath.NewRayTo(from, to)
	if dist == 0 {
		return true
	}
	_, hit := scene.Intersect(ray, 1e-4, dist*(1-1e-4))
	return !hit
}

// EvaluatePixel renders one camera subpath through pixel (px, py),
// returning its direct (non-light-tracer) contribution: every eligible
// s==0 hit, NumShadowRays next-event samples per eligible vertex, and
// NumConnections bidirectional connections to vertices drawn from the
// shared light-vertex cache per eligible vertex.
func (b *BidirBase) EvaluatePixel(px, py float64, cache *pathcache.Cache, src *rng.Source) vecmath.Vec3 {
	cameraPath := GenerateCameraPath(b.Scene, b.Background, b.Camera, px, py, b.MaxDepth, src)
	if len(cameraPath) == 0 {
		return vecmath.Vec3{}
	}

	radiance := vecmath.Vec3{}
	selector := pathcache.NewSelector(cache)
	selectDensity := BidirSelectDensity(cache.Size(), b.NumConnections, cache.NumLightPaths)

	for t := 1; t <= len(cameraPath); t++ {
		vertex := &cameraPath[t-1]
		// depth counts bounces after the lens: the first real surface hit
		// (t==2) is depth 0, matching OnCameraHit's convention.
		depth := t - 2

		// s == 0: the camera path landed directly on an emitter.
		if b.EnableHitting && vertex.IsLight && !vertex.EmittedLight.IsZero() && depth >= b.MinDepth {
			pdfNextEvent := b.nextEventPdfFor(vertex, cameraPath, t)
			weight := EmitterHitMis(cameraPath[:t], pdfNextEvent, b.EnableConnections, selectDensity, b.EnableLightTracer, cache.NumLightPaths)
			contribution := vertex.Beta.MulVec(vertex.EmittedLight).Scale(weight)
			radiance = radiance.Add(contribution)
			b.record(int(px), int(py), t, 0, vertex.Beta.MulVec(vertex.EmittedLight), contribution)
		}

		if vertex.Material == nil || vertex.IsSpecular {
			continue
		}

		if b.NumShadowRays > 0 && depth < b.MaxDepth && depth+1 >= b.MinDepth {
			for i := 0; i < b.NumShadowRays; i++ {
				if c := b.nextEventEstimate(int(px), int(py), vertex, cameraPath[:t], src, selectDensity, cache.NumLightPaths); !c.IsZero() {
					radiance = radiance.Add(c)
				}
			}
		}

		if b.EnableConnections && depth < b.MaxDepth {
			for i := 0; i < b.NumConnections; i++ {
				if c := b.bidirConnect(int(px), int(py), vertex, cameraPath[:t], cache, selector, src, selectDensity); !c.IsZero() {
					radiance = radiance.Add(c)
				}
			}
		}
	}

	return radiance
}

// nextEventPdfFor returns the density NextEventEstimation would have
// assigned to landing exactly on vertex's emitter, sampled from the
// preceding camera vertex, or zero if NEE wasn't attempted there (either
// because shadow rays are disabled or that vertex wasn't itself a valid
// NEE origin). This is the pdfNextEvent term EmitterHitMis needs to weigh
// a direct emitter hit against the competing next-event technique.
func (b *BidirBase) nextEventPdfFor(vertex *pathcache.Vertex, cameraPath []pathcache.Vertex, t int) float64 {
	if b.NumShadowRays == 0 || t < 2 || vertex.Emitter == nil {
		return 0
	}
	prev := cameraPath[t-2]
	if prev.Material == nil || prev.IsSpecular {
		return 0
	}
	em, ok := vertex.Emitter.(emitter.Emitter)
	if !ok {
		return 0
	}
	selectPdf := b.Selector.PdfForEmitter(em)
	if selectPdf == 0 {
		return 0
	}
	return selectPdf * vertex.Emitter.PdfArea(prev.Point, vertex.Point, vertex.Normal)
}

func (b *BidirBase) nextEventEstimate(px, py int, vertex *pathcache.Vertex, cameraPath []pathcache.Vertex, src *rng.Source, selectDensity float64, numLightPaths int) vecmath.Vec3 {
	if b.Selector.Count() == 0 {
		return vecmath.Vec3{}
	}
	u := src.Float64()
	em, _, selectPdf := b.Selector.Select(u)
	if em == nil || selectPdf == 0 {
		return vecmath.Vec3{}
	}
	u1, u2 := src.Float64Pair()
	sample := em.SampleArea(vertex.Point, u1, u2)
	if sample.PdfArea == 0 || sample.Radiance.IsZero() {
		return vecmath.Vec3{}
	}
	if !shadowVisible(b.Scene, vertex.Point, sample.Point) {
		return vecmath.Vec3{}
	}

	wi := sample.Point.Sub(vertex.Point)
	dist := wi.Length()
	if dist == 0 {
		return vecmath.Vec3{}
	}
	wi = wi.Scale(1 / dist)
	wo := vertex.IncomingDirection.Negate()
	f, _, _ := vertex.Material.WorldEval(vertex.Normal, wo, wi)
	if f.IsZero() {
		return vecmath.Vec3{}
	}

	cosSurface := wi.AbsDot(vertex.Normal)
	lightPdfArea := sample.PdfArea * selectPdf
	lightPdfSolidAngle := lightPdfArea * dist * dist / math.Max(wi.AbsDot(sample.Normal), 1e-9)

	// pdfHit: the area density a camera-side BSDF-sampled walk would have
	// assigned to hitting this same point, the competing emitter-hit
	// strategy, converted from the solid-angle pdf the material's own
	// WorldEval already reports for `wi`.
	_, bsdfPdfSolidAngle, _ := vertex.Material.WorldEval(vertex.Normal, wo, wi)
	pdfHit := sampling.SolidAngleToSurfaceArea(bsdfPdfSolidAngle, vertex.Point, sample.Point, sample.Normal)

	weight := NextEventMis(cameraPath, lightPdfArea, pdfHit, b.EnableHitting, b.EnableConnections, selectDensity, b.EnableLightTracer, numLightPaths)
	contribution := vertex.Beta.MulVec(f).MulVec(sample.Radiance).Scale(cosSurface * weight / math.Max(lightPdfSolidAngle, 1e-12))
	raw := vertex.Beta.MulVec(f).MulVec(sample.Radiance).Scale(cosSurface / math.Max(lightPdfSolidAngle, 1e-12))
	b.record(px, py, len(cameraPath), 1, raw, contribution)
	return contribution
}

func (b *BidirBase) bidirConnect(px, py int, vertex *pathcache.Vertex, cameraPath []pathcache.Vertex, cache *pathcache.Cache, selector *pathcache.Selector, src *rng.Source, selectDensity float64) vecmath.Vec3 {
	u := src.Float64()
	lightVertex, idx, selectPdf := selector.Select(u)
	if lightVertex == nil || selectPdf == 0 {
		return vecmath.Vec3{}
	}
	if !lightVertex.IsConnectible() {
		return vecmath.Vec3{}
	}
	if !shadowVisible(b.Scene, vertex.Point, lightVertex.Point) {
		return vecmath.Vec3{}
	}

	d := lightVertex.Point.Sub(vertex.Point)
	dist := d.Length()
	if dist == 0 {
		return vecmath.Vec3{}
	}
	dir := d.Scale(1 / dist)

	cameraF, _, _ := vertex.Material.WorldEval(vertex.Normal, vertex.IncomingDirection.Negate(), dir)
	if cameraF.IsZero() {
		return vecmath.Vec3{}
	}

	var lightF vecmath.Vec3
	if lightVertex.Material != nil {
		lightF, _, _ = lightVertex.Material.WorldEval(lightVertex.Normal, lightVertex.IncomingDirection.Negate(), dir.Negate())
	} else if lightVertex.Emitter != nil {
		lightF = lightVertex.Emitter.EmittedRadiance(lightVertex.Point, lightVertex.Normal, dir.Negate())
	}
	if lightF.IsZero() {
		return vecmath.Vec3{}
	}

	g := vertex.Normal.AbsDot(dir) * lightVertex.Normal.AbsDot(dir) / (dist * dist)
	throughput := vertex.Beta.MulVec(cameraF).MulVec(lightF).MulVec(lightVertex.Beta).Scale(g)

	lightPath, position := cache.PathContaining(idx)
	lightReciprocal := LightPathReciprocals(lightPath, position+1, true, selectDensity)
	weight := BidirConnectMis(cameraPath, len(cameraPath), lightReciprocal, selectDensity, b.EnableLightTracer, cache.NumLightPaths)

	contribution := throughput.Scale(weight / selectPdf)
	b.record(px, py, len(cameraPath), position+1, throughput, contribution)
	return contribution
}

func (b *BidirBase) record(px, py, cameraLen, lightLen int, raw, weighted vecmath.Vec3) {
	if b.Pyramid == nil {
		return
	}
	b.Pyramid.Record(px, py, cameraLen, lightLen, raw, weighted)
}

// SplatLightTracerPaths implements the t==1 strategy over every vertex in
// the shared cache: connecting a light-subpath vertex directly to the
// camera lens and splatting the result into fb at the raster pixel it
// projects to. This is the strategy the prior implementation's
// evaluateLightTracingStrategy stubbed out ("skip for now"); this module
// implements it. Callers should skip invoking this entirely when
// EnableLightTracer is off.
func SplatLightTracerPaths(scene walk.Intersector, cam CameraModel, cache *pathcache.Cache, fb *framebuffer.FrameBuffer, pyramid *framebuffer.Pyramid, enableConnections bool, numConnections int) {
	selectDensity := BidirSelectDensity(cache.Size(), numConnections, cache.NumLightPaths)
	for i := range cache.Vertices {
		v := &cache.Vertices[i]
		if v.Material == nil && v.Emitter == nil {
			continue
		}
		if v.IsSpecular {
			continue
		}
		px, py, we, onFilm := cam.SampleResponse(v.Point)
		if !onFilm || we.IsZero() {
			continue
		}
		if !shadowVisible(scene, v.Point, cam.Position()) {
			continue
		}

		dir := cam.Position().Sub(v.Point)
		dist := dir.Length()
		if dist == 0 {
			continue
		}
		dir = dir.Scale(1 / dist)

		var f vecmath.Vec3
		if v.Material != nil {
			f, _, _ = v.Material.WorldEval(v.Normal, v.IncomingDirection.Negate(), dir)
		} else {
			f = v.Emitter.EmittedRadiance(v.Point, v.Normal, dir)
		}
		if f.IsZero() {
			continue
		}

		g := v.Normal.AbsDot(dir) / (dist * dist)
		contribution := v.Beta.MulVec(f).MulVec(we).Scale(g / float64(cache.NumLightPaths))

		camPdfArea, camPdfDir := cam.CalculateRayPDFs(cam.Position(), dir.Negate())
		lightPath, position := cache.PathContaining(i)
		weight := LightTracerMis(lightPath, position+1, camPdfArea, camPdfDir, enableConnections, selectDensity, cache.NumLightPaths)
		contribution = contribution.Scale(weight)

		fb.Splat(px, py, contribution)
		if pyramid != nil {
			pyramid.Record(px, py, 1, position+1,v.Beta.MulVec(f).MulVec(we), contribution)
		}
	}
}
