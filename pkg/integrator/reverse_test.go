package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// constPdfMaterial reports a fixed forward/reverse solid-angle pdf
// regardless of the queried directions, enough to exercise
// FillReversePdfs' area-measure conversion without a real BSDF.
type constPdfMaterial struct {
	fwd, rev float64
}

func (m constPdfMaterial) WorldSample(n, wo vecmath.Vec3, u1, u2, u3 float64) (vecmath.Vec3, vecmath.Vec3, float64, float64, bool) {
	return vecmath.Vec3{}, vecmath.Vec3{}, m.fwd, m.rev, false
}
func (m constPdfMaterial) WorldEval(n, wo, wi vecmath.Vec3) (vecmath.Vec3, float64, float64) {
	return vecmath.New(1, 1, 1), m.fwd, m.rev
}
func (m constPdfMaterial) IsDelta() bool { return false }

func TestFillReversePdfs_SkipsSeedAndSpecularVertices(t *testing.T) {
	mat := constPdfMaterial{fwd: 0.3, rev: 0.3}
	vertices := []pathcache.Vertex{
		{Point: vecmath.New(0, 0, 0), Normal: vecmath.New(0, 0, -1), IsCamera: true},
		{Point: vecmath.New(0, 0, -1), Normal: vecmath.New(0, 0, 1), Material: mat},
		{Point: vecmath.New(0, 0, -2), Normal: vecmath.New(0, 0, 1), Material: mat, IsSpecular: true},
		{Point: vecmath.New(0, 0, -3), Normal: vecmath.New(0, 0, 1), Material: mat},
	}

	FillReversePdfs(vertices)

	assert.Zero(t, vertices[0].AreaPdfReverse, "seed vertex is never assigned a reverse pdf")
	assert.NotZero(t, vertices[1].AreaPdfReverse)
	assert.Zero(t, vertices[2].AreaPdfReverse, "a specular vertex has no meaningful reverse density")
	assert.Zero(t, vertices[3].AreaPdfReverse, "last vertex has no successor to walk backward from")
}

func TestFillReversePdfs_NilMaterialVertexLeftAtZero(t *testing.T) {
	vertices := []pathcache.Vertex{
		{Point: vecmath.New(0, 0, 0), IsCamera: true},
		{Point: vecmath.New(0, 0, -1), Normal: vecmath.New(0, 0, 1)},
		{Point: vecmath.New(0, 0, -2), Normal: vecmath.New(0, 0, 1), IsInfinite: true},
	}

	FillReversePdfs(vertices)

	assert.Zero(t, vertices[1].AreaPdfReverse)
}
