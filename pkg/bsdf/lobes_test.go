package bsdf

import (
	"testing"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestDiffuse_SampleConsistentWithPDF(t *testing.T) {
	d := Diffuse{Reflectance: vecmath.New(0.5, 0.5, 0.5)}
	wo := vecmath.New(0, 0, 1)
	wi, f, pdf, isDelta := d.Sample(wo, 0.3, 0.7)
	assert.False(t, isDelta)
	assert.Greater(t, pdf, 0.0)
	fwd, rev := d.PDF(wo, wi)
	assert.InDelta(t, pdf, fwd, 1e-9)
	assert.Greater(t, rev, 0.0)
	assert.Equal(t, d.F(wo, wi), f)
}

func TestDiffuse_ZeroAcrossHemisphere(t *testing.T) {
	d := Diffuse{Reflectance: vecmath.New(1, 1, 1)}
	wo := vecmath.New(0, 0, 1)
	wi := vecmath.New(0, 0, -1)
	assert.Equal(t, vecmath.Vec3{}, d.F(wo, wi))
	fwd, rev := d.PDF(wo, wi)
	assert.Equal(t, 0.0, fwd)
	assert.Equal(t, 0.0, rev)
}

func TestDiffuseTransmission_OppositeHemisphereOnly(t *testing.T) {
	dt := DiffuseTransmission{Transmittance: vecmath.New(0.8, 0.8, 0.8)}
	wo := vecmath.New(0, 0, 1)
	same := vecmath.New(0, 0, 0.5)
	opp := vecmath.New(0, 0, -0.5)
	assert.Equal(t, vecmath.Vec3{}, dt.F(wo, same))
	assert.NotEqual(t, vecmath.Vec3{}, dt.F(wo, opp))
}

func TestGGXDistribution_PositiveAtNormalIncidence(t *testing.T) {
	d := GGXDistribution{AlphaX: 0.2, AlphaY: 0.2}
	wh := vecmath.New(0, 0, 1)
	assert.Greater(t, d.D(wh), 0.0)
}

func TestMicrofacetReflection_SampleStaysAboveSurface(t *testing.T) {
	r := MicrofacetReflection{
		Reflectance: vecmath.New(0.9, 0.9, 0.9),
		F0:          vecmath.New(0.04, 0.04, 0.04),
		Dist:        GGXDistribution{AlphaX: 0.3, AlphaY: 0.3},
	}
	wo := vecmath.New(0.1, 0, 0.99).Normalize()
	wi, _, pdf, isDelta := r.Sample(wo, 0.4, 0.6)
	assert.False(t, isDelta)
	if pdf > 0 {
		assert.Greater(t, wi.Z, 0.0)
	}
}

func TestSchlickFresnel_NormalIncidenceMatchesF0(t *testing.T) {
	f0 := vecmath.New(0.04, 0.04, 0.04)
	got := SchlickFresnel(1.0, f0)
	assert.InDelta(t, f0.X, got.X, 1e-9)
}

func TestDielectricFresnel_TotalInternalReflection(t *testing.T) {
	// Going from dense (1.5) to rare (1.0) medium at a grazing angle
	// should hit TIR and return full reflectance.
	got := DielectricFresnel(0.05, 1.5, 1.0)
	assert.Equal(t, 1.0, got)
}

func TestRoughnessToAlpha_Monotonic(t *testing.T) {
	a := RoughnessToAlpha(0.1)
	b := RoughnessToAlpha(0.9)
	assert.Less(t, a, b)
}
