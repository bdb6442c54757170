package bsdf

import (
	"testing"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestGenericMaterial_SampleMatchesEval(t *testing.T) {
	m := NewGenericMaterial(
		[]Lobe{
			Diffuse{Reflectance: vecmath.New(0.6, 0.6, 0.6)},
			MicrofacetReflection{
				Reflectance: vecmath.New(1, 1, 1),
				F0:          vecmath.New(0.04, 0.04, 0.04),
				Dist:        GGXDistribution{AlphaX: 0.2, AlphaY: 0.2},
			},
		},
		[]float64{0.7, 0.3},
	)
	wo := vecmath.New(0, 0, 1)
	wi, f, pdfFwd, pdfRev, isDelta := m.Sample(wo, 0.2, 0.3, 0.4)
	assert.False(t, isDelta)
	assert.Greater(t, pdfFwd, 0.0)
	assert.GreaterOrEqual(t, pdfRev, 0.0)
	evalF, evalFwd, _ := m.Eval(wo, wi)
	assert.Equal(t, evalF, f)
	assert.InDelta(t, evalFwd, pdfFwd, 1e-6)
}

func TestGenericMaterial_IsDeltaAllLobes(t *testing.T) {
	m := NewGenericMaterial([]Lobe{
		MicrofacetTransmission{
			Transmittance: vecmath.New(1, 1, 1),
			EtaA:          1.0, EtaB: 1.5,
			Dist: GGXDistribution{AlphaX: 0.001, AlphaY: 0.001},
		},
	}, []float64{1})
	assert.False(t, m.IsDelta()) // rough transmission is never a true delta lobe

	diffuseOnly := NewGenericMaterial([]Lobe{Diffuse{Reflectance: vecmath.New(1, 1, 1)}}, []float64{1})
	assert.False(t, diffuseOnly.IsDelta())
}

func TestGenericMaterial_WorldRoundTrip(t *testing.T) {
	m := NewGenericMaterial([]Lobe{Diffuse{Reflectance: vecmath.New(0.5, 0.5, 0.5)}}, []float64{1})
	n := vecmath.New(0, 1, 0)
	wo := vecmath.New(0, 1, 0)
	wi, f, pdfFwd, _, isDelta := m.WorldSample(n, wo, 0.25, 0.5, 0.5)
	assert.False(t, isDelta)
	assert.Greater(t, pdfFwd, 0.0)
	assert.NotEqual(t, vecmath.Vec3{}, f)
	assert.GreaterOrEqual(t, wi.Dot(n), 0.0)
}
