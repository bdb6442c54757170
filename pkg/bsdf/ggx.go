// Package bsdf implements a Disney-style uber-material built from
// composable lobes: diffuse, retro-reflection, diffuse transmission,
// and GGX microfacet reflection/transmission, composed by GenericMaterial.
//
// Structurally grounded on pkg/material (Material interface
// in interfaces.go, lobe-composition idiom in layered.go, Fresnel/refract
// helpers in dielectric.go) and on scottlawsonbc-raytrace's
// phys/microfacet.go Cook-Torrance D/G/F split — the microfacet math
// itself follows PBRT-v3's anisotropic Trowbridge-Reitz distribution and
// its Sample11 polynomial approximation for the stretched-normal inverse
// CDF, which is a common choice for this kind of sampling.
package bsdf

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// GGXDistribution is an anisotropic Trowbridge-Reitz microfacet
// distribution evaluated in shading space (the macro-normal is +Z).
type GGXDistribution struct {
	AlphaX, AlphaY float64
}

func RoughnessToAlpha(roughness float64) float64 {
	roughness = math.Max(roughness, 1e-3)
	x := math.Log(roughness)
	return 1.62142 + 0.819955*x + 0.1734*x*x + 0.0171201*x*x*x + 0.000640711*x*x*x*x
}

// D evaluates the normal distribution function at shading-space normal wh.
func (d GGXDistribution) D(wh vecmath.Vec3) float64 {
	tan2 := sampling.Tan2Theta(wh)
	if math.IsInf(tan2, 1) {
		return 0
	}
	cos4 := sampling.Cos2Theta(wh) * sampling.Cos2Theta(wh)
	if cos4 < 1e-16 {
		return 0
	}
	e := (sampling.CosPhi(wh)*sampling.CosPhi(wh))/(d.AlphaX*d.AlphaX) +
		(sampling.SinPhi(wh)*sampling.SinPhi(wh))/(d.AlphaY*d.AlphaY)
	e *= tan2
	return 1 / (math.Pi * d.AlphaX * d.AlphaY * cos4 * (1 + e) * (1 + e))
}

// lambda is PBRT-v3's Smith masking auxiliary function.
func (d GGXDistribution) lambda(w vecmath.Vec3) float64 {
	absTan := math.Abs(sampling.TanTheta(w))
	if math.IsInf(absTan, 1) {
		return 0
	}
	alpha := math.Sqrt(sampling.CosPhi(w)*sampling.CosPhi(w)*d.AlphaX*d.AlphaX +
		sampling.SinPhi(w)*sampling.SinPhi(w)*d.AlphaY*d.AlphaY)
	a2Tan2 := (alpha * absTan) * (alpha * absTan)
	return (-1 + math.Sqrt(1+a2Tan2)) / 2
}

// G1 is the Smith masking-only shadowing term for a single direction.
func (d GGXDistribution) G1(w vecmath.Vec3) float64 {
	return 1 / (1 + d.lambda(w))
}

// G is the Smith height-correlated joint masking-shadowing term.
func (d GGXDistribution) G(wo, wi vecmath.Vec3) float64 {
	return 1 / (1 + d.lambda(wo) + d.lambda(wi))
}

// PDF is the visible-normal sampling pdf of wh given outgoing direction wo.
func (d GGXDistribution) PDF(wo, wh vecmath.Vec3) float64 {
	return d.G1(wo) / sampling.AbsCosTheta(wo) * d.D(wh) * wo.AbsDot(wh)
}

// sample11 is PBRT-v3's polynomial approximation to the inverse CDF of the
// slope distribution of a visible normal in the transformed (alpha=1,
// isotropic) configuration, avoiding an iterative root find.
func sample11(cosTheta, u1, u2 float64) (slopeX, slopeY float64) {
	if cosTheta > 0.9999 {
		r := math.Sqrt(u1 / (1 - u1))
		phi := 2 * math.Pi * u2
		return r * math.Cos(phi), r * math.Sin(phi)
	}

	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	tanTheta := sinTheta / cosTheta
	a := 1 / tanTheta
	g1 := 2 / (1 + math.Sqrt(1+1/(a*a)))

	A := 2*u1/g1 - 1
	tmp := 1 / (A*A - 1)
	if tmp > 1e10 {
		tmp = 1e10
	}
	b := tanTheta
	d := math.Sqrt(math.Max(b*b*tmp*tmp-(A*A-b*b)*tmp, 0))
	slopeX1 := b*tmp - d
	slopeX2 := b*tmp + d
	if A < 0 || slopeX2 > 1/tanTheta {
		slopeX = slopeX1
	} else {
		slopeX = slopeX2
	}

	var s float64
	if u2 > 0.5 {
		s = 1
		u2 = 2 * (u2 - 0.5)
	} else {
		s = -1
		u2 = 2 * (0.5 - u2)
	}
	z := (u2 * (u2*(u2*0.27385-0.73369) + 0.46341)) /
		(u2*(u2*(u2*0.093073+0.309420)-1.000000) + 0.597999)
	slopeY = s * z * math.Sqrt(1+slopeX*slopeX)
	return slopeX, slopeY
}

// SampleWh importance-samples a visible microfacet normal given outgoing
// direction wo, following PBRT-v3's transform-stretch-sample-unstretch
// construction so the sampling density matches the visible-normal pdf.
func (d GGXDistribution) SampleWh(wo vecmath.Vec3, u1, u2 float64) vecmath.Vec3 {
	woStretched := vecmath.New(d.AlphaX*wo.X, d.AlphaY*wo.Y, wo.Z).Normalize()

	cosTheta := sampling.CosTheta(woStretched)
	if cosTheta < 0 {
		woStretched = woStretched.Negate()
		cosTheta = -cosTheta
	}

	slopeX, slopeY := sample11(cosTheta, u1, u2)

	cosPhi := sampling.CosPhi(woStretched)
	sinPhi := sampling.SinPhi(woStretched)
	slopeXRot := cosPhi*slopeX - sinPhi*slopeY
	slopeYRot := sinPhi*slopeX + cosPhi*slopeY

	slopeX = d.AlphaX * slopeXRot
	slopeY = d.AlphaY * slopeYRot

	return vecmath.New(-slopeX, -slopeY, 1).Normalize()
}
