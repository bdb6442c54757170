package sampling

import (
	"math"
	"testing"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestCosineHemisphere_StaysInHemisphere(t *testing.T) {
	for _, u := range [][2]float64{{0.1, 0.2}, {0.9, 0.3}, {0.5, 0.5}} {
		dir, pdf := CosineHemisphere(u[0], u[1])
		assert.GreaterOrEqual(t, dir.Z, 0.0)
		assert.InDelta(t, 1.0, dir.Length(), 1e-9)
		assert.Greater(t, pdf, 0.0)
	}
}

func TestComputeBasisVectors_Orthonormal(t *testing.T) {
	ns := []vecmath.Vec3{
		vecmath.New(0, 0, 1),
		vecmath.New(0, 0, -1),
		vecmath.New(1, 0, 0).Normalize(),
		vecmath.New(1, 1, 1).Normalize(),
	}
	for _, n := range ns {
		f := ComputeBasisVectors(n)
		assert.InDelta(t, 1.0, f.X.Length(), 1e-9)
		assert.InDelta(t, 1.0, f.Y.Length(), 1e-9)
		assert.InDelta(t, 0.0, f.X.Dot(f.Y), 1e-9)
		assert.InDelta(t, 0.0, f.X.Dot(f.Z), 1e-9)
		assert.InDelta(t, 0.0, f.Y.Dot(f.Z), 1e-9)
	}
}

func TestFrame_WorldShadingRoundTrip(t *testing.T) {
	n := vecmath.New(0.3, 0.9, 0.2).Normalize()
	f := ComputeBasisVectors(n)
	w := vecmath.New(1, 2, 3).Normalize()
	local := f.WorldToShading(w)
	back := f.ShadingToWorld(local)
	assert.InDelta(t, w.X, back.X, 1e-9)
	assert.InDelta(t, w.Y, back.Y, 1e-9)
	assert.InDelta(t, w.Z, back.Z, 1e-9)
}

func TestSurfaceAreaToSolidAngle_RoundTrip(t *testing.T) {
	from := vecmath.New(0, 0, 0)
	point := vecmath.New(2, 3, -1)
	normal := vecmath.New(0, 1, 0)
	areaPdf := 0.37
	solidAngle := SurfaceAreaToSolidAngle(areaPdf, from, point, normal)
	back := SolidAngleToSurfaceArea(solidAngle, from, point, normal)
	assert.InDelta(t, areaPdf, back, 1e-9)
}

func TestBalanceHeuristic_PartitionOfUnity(t *testing.T) {
	a := BalanceHeuristic(1, 0.3, 1, 0.7)
	b := BalanceHeuristic(1, 0.7, 1, 0.3)
	assert.InDelta(t, 1.0, a+b, 1e-9)
}

func TestRemap0(t *testing.T) {
	assert.Equal(t, 1.0, Remap0(0))
	assert.Equal(t, 2.5, Remap0(2.5))
}

func TestUniformConePDF_FullSphereMatchesUniformSphere(t *testing.T) {
	got := UniformConePDF(-1)
	want := UniformSpherePDF()
	assert.InDelta(t, want, got, 1e-9)
}

func TestSameHemisphere(t *testing.T) {
	assert.True(t, SameHemisphere(vecmath.New(0, 0, 1), vecmath.New(0.1, 0.1, 0.5)))
	assert.False(t, SameHemisphere(vecmath.New(0, 0, 1), vecmath.New(0.1, 0.1, -0.5)))
}

func TestTanTheta_ConsistentWithSinCos(t *testing.T) {
	w := vecmath.New(0.3, 0.4, math.Sqrt(1-0.09-0.16))
	got := TanTheta(w)
	want := SinTheta(w) / CosTheta(w)
	assert.InDelta(t, want, got, 1e-9)
}
