package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrender/bdpt/pkg/bsdf"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/rng"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// planeScene is a single infinite plane facing the camera, enough geometry
// to exercise GenerateCameraPath without pulling in pkg/scenegraph.
type planeScene struct {
	planeZ   float64
	material pathcache.MaterialAt
}

func (p *planeScene) Intersect(ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool) {
	if ray.Direction.Z >= 0 {
		return walk.Hit{}, false
	}
	t := (p.planeZ - ray.Origin.Z) / ray.Direction.Z
	if t < tMin || t > tMax {
		return walk.Hit{}, false
	}
	return walk.Hit{Point: ray.At(t), Normal: vecmath.New(0, 0, 1), T: t, Material: p.material}, true
}

type emptyBackground struct{}

func (emptyBackground) Emitted(vecmath.Vec3) vecmath.Vec3 { return vecmath.Vec3{} }
func (emptyBackground) AsEmitter() pathcache.EmitterAt     { return nil }

type fakeCamera struct {
	origin vecmath.Point3
}

func (c *fakeCamera) GenerateRay(px, py float64) (vecmath.Ray, float64, float64) {
	return vecmath.NewRay(c.origin, vecmath.New(0, 0, -1)), 1, 0.5
}
func (c *fakeCamera) Position() vecmath.Point3 { return c.origin }
func (c *fakeCamera) CalculateRayPDFs(origin, dir vecmath.Vec3) (float64, float64) {
	return 1, 0.5
}
func (c *fakeCamera) SampleResponse(point vecmath.Vec3) (int, int, vecmath.Vec3, bool) {
	return 0, 0, vecmath.New(1, 1, 1), true
}

func TestGenerateCameraPath_SeedVertexCarriesCameraAreaPdf(t *testing.T) {
	cam := &fakeCamera{origin: vecmath.New(0, 0, 0)}
	vertices := GenerateCameraPath(&planeScene{planeZ: -1000}, emptyBackground{}, cam, 0.5, 0.5, 1, rng.New(1, 0))
	require.Len(t, vertices, 1)
	assert.True(t, vertices[0].IsCamera)
	assert.Equal(t, 1.0, vertices[0].AreaPdfForward)
}

func TestGenerateCameraPath_ExtendsThroughDiffuseHit(t *testing.T) {
	mat := bsdf.NewGenericMaterial([]bsdf.Lobe{bsdf.Diffuse{Reflectance: vecmath.New(0.7, 0.7, 0.7)}}, []float64{1})
	cam := &fakeCamera{origin: vecmath.New(0, 0, 0)}
	scene := &planeScene{planeZ: -4, material: mat}
	vertices := GenerateCameraPath(scene, emptyBackground{}, cam, 0.5, 0.5, 4, rng.New(5, 0))

	require.Len(t, vertices, 2)
	assert.InDelta(t, -4, vertices[1].Point.Z, 1e-9)
	assert.False(t, vertices[1].IsCamera)
}

func TestGenerateCameraPath_MissWithNoBackgroundStopsAtSeed(t *testing.T) {
	cam := &fakeCamera{origin: vecmath.New(0, 0, 0)}
	vertices := GenerateCameraPath(&planeScene{planeZ: 1000}, emptyBackground{}, cam, 0.5, 0.5, 4, rng.New(2, 0))
	require.Len(t, vertices, 1)
}
