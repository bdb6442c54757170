package scenegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelrender/bdpt/pkg/bsdf"
	"github.com/kestrelrender/bdpt/pkg/emitter"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

func testMaterial() *bsdf.GenericMaterial {
	return bsdf.NewGenericMaterial([]bsdf.Lobe{bsdf.Diffuse{Reflectance: vecmath.New(0.7, 0.7, 0.7)}}, []float64{1})
}

// stubEmitter is a minimal emitter.Emitter satisfying enough of the
// interface for Scene.Prepare's power-selector construction to exercise
// without needing a real triangle/quad light.
type stubEmitter struct{}

func newStubEmitter() emitter.Emitter { return stubEmitter{} }

func (stubEmitter) EmittedRadiance(point, normal, dir vecmath.Vec3) vecmath.Vec3 {
	return vecmath.New(1, 1, 1)
}
func (stubEmitter) SampleArea(from vecmath.Vec3, u1, u2 float64) emitter.AreaSample {
	return emitter.AreaSample{}
}
func (stubEmitter) PdfArea(from, point, normal vecmath.Vec3) float64 { return 0 }
func (stubEmitter) SampleRay(u1, u2, u3, u4 float64) emitter.RaySample {
	return emitter.RaySample{}
}
func (stubEmitter) PdfRay(point, normal, dir vecmath.Vec3) (float64, float64) { return 0, 0 }
func (stubEmitter) TotalPower() float64                                      { return 1 }
func (stubEmitter) IsInfinite() bool                                         { return false }

func TestSphere_HitFromOutside(t *testing.T) {
	s := &Sphere{Center: vecmath.New(0, 0, -5), Radius: 1, Material: testMaterial()}
	ray := vecmath.NewRay(vecmath.New(0, 0, 0), vecmath.New(0, 0, -1))
	hit, ok := s.Hit(ray, 1e-4, 1e30)
	require.True(t, ok)
	assert.InDelta(t, 4, hit.T, 1e-9)
	assert.InDelta(t, 1, hit.Normal.Z, 1e-9)
}

func TestSphere_Miss(t *testing.T) {
	s := &Sphere{Center: vecmath.New(5, 5, -5), Radius: 1, Material: testMaterial()}
	ray := vecmath.NewRay(vecmath.New(0, 0, 0), vecmath.New(0, 0, -1))
	_, ok := s.Hit(ray, 1e-4, 1e30)
	assert.False(t, ok)
}

func TestTriangle_HitCenterFacesCamera(t *testing.T) {
	tri := &Triangle{
		P0: vecmath.New(-1, -1, -5), P1: vecmath.New(1, -1, -5), P2: vecmath.New(0, 1, -5),
		Material: testMaterial(),
	}
	ray := vecmath.NewRay(vecmath.New(0, -0.3, 0), vecmath.New(0, 0, -1))
	hit, ok := tri.Hit(ray, 1e-4, 1e30)
	require.True(t, ok)
	assert.InDelta(t, 5, hit.T, 1e-9)
	assert.Greater(t, hit.Normal.Z, 0.0)
}

func TestTriangle_Area(t *testing.T) {
	tri := &Triangle{P0: vecmath.New(0, 0, 0), P1: vecmath.New(2, 0, 0), P2: vecmath.New(0, 2, 0)}
	assert.InDelta(t, 2.0, tri.Area(), 1e-9)
}

func TestAABB_UnionAndHit(t *testing.T) {
	a := AABB{Min: vecmath.New(-1, -1, -1), Max: vecmath.New(1, 1, 1)}
	b := AABB{Min: vecmath.New(2, 2, 2), Max: vecmath.New(3, 3, 3)}
	u := a.Union(b)
	assert.Equal(t, vecmath.New(-1, -1, -1), u.Min)
	assert.Equal(t, vecmath.New(3, 3, 3), u.Max)

	ray := vecmath.NewRay(vecmath.New(0, 0, -5), vecmath.New(0, 0, 1))
	assert.True(t, a.Hit(ray, 1e-4, 1e30))
	assert.False(t, b.Hit(ray, 1e-4, 1e30))
}

func TestBVH_IntersectFindsClosest(t *testing.T) {
	mat := testMaterial()
	near := &Sphere{Center: vecmath.New(0, 0, -3), Radius: 1, Material: mat}
	far := &Sphere{Center: vecmath.New(0, 0, -10), Radius: 1, Material: mat}
	bvh := NewBVH([]Shape{far, near})

	ray := vecmath.NewRay(vecmath.New(0, 0, 0), vecmath.New(0, 0, -1))
	hit, ok := bvh.Intersect(ray, 1e-4, 1e30)
	require.True(t, ok)
	assert.InDelta(t, 2, hit.T, 1e-9)
}

func TestScene_PrepareRejectsEmptyLighting(t *testing.T) {
	s := New()
	s.AddShape(&Sphere{Center: vecmath.New(0, 0, -5), Radius: 1, Material: testMaterial()})
	err := s.Prepare()
	assert.Error(t, err)
}

func TestScene_PrepareBuildsBVHAndSelector(t *testing.T) {
	mat := testMaterial()
	quad := NewQuad(vecmath.New(-1, 3, -1), vecmath.New(2, 0, 0), vecmath.New(0, 0, -2), mat, nil)
	s := New()
	for _, shape := range quad.Shapes() {
		s.AddShape(shape)
	}
	s.AddEmitter(newStubEmitter())
	require.NoError(t, s.Prepare())
	assert.Greater(t, s.SceneRadius(), 0.0)
}
