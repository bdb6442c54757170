package bsdf

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Lobe is one term of the uber-material. All directions are in shading
// space (local +Z is the macro-surface normal). Every lobe reports both a
// forward pdf (sampling wi given wo) and a reverse pdf (sampling wo given
// wi) because the bidirectional MIS weights in need to
// evaluate a vertex's density in both traversal directions without
// re-walking the path.
type Lobe interface {
	// F evaluates the lobe's value for the (wo, wi) pair.
	F(wo, wi vecmath.Vec3) vecmath.Vec3
	// Sample draws wi given wo, returning the sampled direction, the
	// lobe's value, the forward pdf, and whether the lobe is a delta
	// distribution (in which case pdf is meaningless and callers must use
	// the returned value directly, matching the prior implementation's
	// ScatterResult.IsSpecular pattern).
	Sample(wo vecmath.Vec3, u1, u2 float64) (wi vecmath.Vec3, f vecmath.Vec3, pdfFwd float64, isDelta bool)
	// PDF returns the forward and reverse solid-angle pdfs for an
	// already-known (wo, wi) pair, used when a vertex was produced by a
	// different sampling technique (e.g. a bidirectional connection) and
	// the lobe must still report what its own sampling would have given.
	PDF(wo, wi vecmath.Vec3) (pdfFwd, pdfRev float64)
	// IsDelta reports whether this lobe is a delta distribution (no
	// meaningful pdf, zero measure in solid angle).
	IsDelta() bool
}

// --- Diffuse (Lambertian + Disney retro-reflection) -----------------------

// Diffuse is a Lambertian lobe optionally blended with Disney's
// retro-reflection term, which adds backscatter at grazing angles the way
// rough, napped materials show. Grounded on the prior implementation's
// pkg/material/lambertian.go for the cosine-weighted sampling shape.
type Diffuse struct {
	Reflectance vecmath.Vec3
	Roughness   float64 // drives the retro-reflection lobe weight
}

func (d Diffuse) IsDelta() bool { return false }

func (d Diffuse) F(wo, wi vecmath.Vec3) vecmath.Vec3 {
	if !sampling.SameHemisphere(wo, wi) {
		return vecmath.Vec3{}
	}
	lambert := d.Reflectance.Scale(1 / math.Pi)
	retro := d.retro(wo, wi)
	return lambert.Add(retro)
}

// retro implements Disney's grazing-retroreflection term.
func (d Diffuse) retro(wo, wi vecmath.Vec3) vecmath.Vec3 {
	if d.Roughness <= 0 {
		return vecmath.Vec3{}
	}
	wh := wo.Add(wi)
	if wh.IsZero() {
		return vecmath.Vec3{}
	}
	wh = wh.Normalize()
	cosThetaD := wi.Dot(wh)
	fo := schlickWeight(sampling.AbsCosTheta(wo))
	fi := schlickWeight(sampling.AbsCosTheta(wi))
	rr := 2 * d.Roughness * cosThetaD * cosThetaD
	scale := rr * (fo + fi + fo*fi*(rr-1))
	return d.Reflectance.Scale(scale / math.Pi)
}

func schlickWeight(cosTheta float64) float64 {
	m := clamp01(1 - cosTheta)
	m2 := m * m
	return m2 * m2 * m
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (d Diffuse) Sample(wo vecmath.Vec3, u1, u2 float64) (vecmath.Vec3, vecmath.Vec3, float64, bool) {
	wi, pdf := sampling.CosineHemisphere(u1, u2)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	return wi, d.F(wo, wi), pdf, false
}

func (d Diffuse) PDF(wo, wi vecmath.Vec3) (float64, float64) {
	if !sampling.SameHemisphere(wo, wi) {
		return 0, 0
	}
	fwd := sampling.CosineHemispherePDF(sampling.AbsCosTheta(wi))
	rev := sampling.CosineHemispherePDF(sampling.AbsCosTheta(wo))
	return fwd, rev
}

// --- Diffuse transmission (thin-surface) ----------------------------------

// DiffuseTransmission scatters light diffusely through a thin surface
// (e.g. a leaf or paper): it is zero for wi in wo's hemisphere and
// only transmits into the back one. Grounded structurally on Diffuse but
// samples into the opposite hemisphere from wo.
type DiffuseTransmission struct {
	Transmittance vecmath.Vec3
}

func (d DiffuseTransmission) IsDelta() bool { return false }

func (d DiffuseTransmission) F(wo, wi vecmath.Vec3) vecmath.Vec3 {
	if sampling.SameHemisphere(wo, wi) {
		return vecmath.Vec3{}
	}
	return d.Transmittance.Scale(1 / math.Pi)
}

func (d DiffuseTransmission) Sample(wo vecmath.Vec3, u1, u2 float64) (vecmath.Vec3, vecmath.Vec3, float64, bool) {
	wi, pdf := sampling.CosineHemisphere(u1, u2)
	if wo.Z > 0 {
		wi.Z = -wi.Z
	}
	return wi, d.F(wo, wi), pdf, false
}

func (d DiffuseTransmission) PDF(wo, wi vecmath.Vec3) (float64, float64) {
	if sampling.SameHemisphere(wo, wi) {
		return 0, 0
	}
	fwd := sampling.CosineHemispherePDF(sampling.AbsCosTheta(wi))
	rev := sampling.CosineHemispherePDF(sampling.AbsCosTheta(wo))
	return fwd, rev
}

// --- Fresnel ----------------------------------------------------------------

// SchlickFresnel approximates dielectric or conductor reflectance at
// normal-incidence reflectance f0, grounded on the prior implementation's
// material.Reflectance (Schlick's approximation used by dielectric.go).
func SchlickFresnel(cosTheta float64, f0 vecmath.Vec3) vecmath.Vec3 {
	w := schlickWeight(cosTheta)
	return f0.Add(vecmath.New(1, 1, 1).Sub(f0).Scale(w))
}

// DielectricFresnel is the exact unpolarized Fresnel reflectance for a
// dielectric interface, grounded on material/dielectric.go
// Reflectance helper generalized to the full Fresnel equations rather than
// just Schlick, since the microfacet transmission lobe needs the exact
// value at the microfacet normal, not just the macro-surface approximation.
func DielectricFresnel(cosThetaI, etaI, etaT float64) float64 {
	cosThetaI = clamp(cosThetaI, -1, 1)
	if cosThetaI < 0 {
		etaI, etaT = etaT, etaI
		cosThetaI = -cosThetaI
	}
	sinThetaI := math.Sqrt(math.Max(0, 1-cosThetaI*cosThetaI))
	sinThetaT := etaI / etaT * sinThetaI
	if sinThetaT >= 1 {
		return 1 // total internal reflection
	}
	cosThetaT := math.Sqrt(math.Max(0, 1-sinThetaT*sinThetaT))
	rParl := ((etaT * cosThetaI) - (etaI * cosThetaT)) / ((etaT * cosThetaI) + (etaI * cosThetaT))
	rPerp := ((etaI * cosThetaI) - (etaT * cosThetaT)) / ((etaI * cosThetaI) + (etaT * cosThetaT))
	return (rParl*rParl + rPerp*rPerp) / 2
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- GGX microfacet reflection ---------------------------------------------

// MicrofacetReflection is a rough conductor/dielectric reflection lobe
// built on GGXDistribution, grounded conceptually on
// scottlawsonbc-raytrace's phys/microfacet.go Cook-Torrance Evaluate, with
// the D/G/F terms replaced by the anisotropic GGX math in ggx.go.
type MicrofacetReflection struct {
	Reflectance vecmath.Vec3
	F0          vecmath.Vec3
	Dist        GGXDistribution
}

func (m MicrofacetReflection) IsDelta() bool { return false }

func (m MicrofacetReflection) F(wo, wi vecmath.Vec3) vecmath.Vec3 {
	cosO := sampling.AbsCosTheta(wo)
	cosI := sampling.AbsCosTheta(wi)
	if cosO == 0 || cosI == 0 {
		return vecmath.Vec3{}
	}
	wh := wo.Add(wi)
	if wh.IsZero() {
		return vecmath.Vec3{}
	}
	wh = wh.Normalize()
	fr := SchlickFresnel(wi.AbsDot(wh), m.F0)
	d := m.Dist.D(wh)
	g := m.Dist.G(wo, wi)
	return m.Reflectance.MulVec(fr).Scale(d * g / (4 * cosO * cosI))
}

func (m MicrofacetReflection) Sample(wo vecmath.Vec3, u1, u2 float64) (vecmath.Vec3, vecmath.Vec3, float64, bool) {
	if wo.Z == 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, false
	}
	wh := m.Dist.SampleWh(wo, u1, u2)
	if wo.Dot(wh) < 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, false
	}
	wi := wh.Scale(2 * wo.Dot(wh)).Sub(wo)
	if !sampling.SameHemisphere(wo, wi) {
		return wi, vecmath.Vec3{}, 0, false
	}
	pdf := m.Dist.PDF(wo, wh) / (4 * wo.Dot(wh))
	return wi, m.F(wo, wi), pdf, false
}

func (m MicrofacetReflection) PDF(wo, wi vecmath.Vec3) (float64, float64) {
	if !sampling.SameHemisphere(wo, wi) {
		return 0, 0
	}
	wh := wo.Add(wi)
	if wh.IsZero() {
		return 0, 0
	}
	wh = wh.Normalize()
	fwd := m.Dist.PDF(wo, wh) / (4 * wo.AbsDot(wh))
	rev := m.Dist.PDF(wi, wh) / (4 * wi.AbsDot(wh))
	return fwd, rev
}

// --- GGX microfacet transmission -------------------------------------------

// MicrofacetTransmission is a rough dielectric transmission lobe, grounded
// on material/dielectric.go refractVector logic generalized
// to a rough microfacet normal instead of the macro-surface normal.
type MicrofacetTransmission struct {
	Transmittance vecmath.Vec3
	EtaA, EtaB    float64 // incident and transmitted side indices of refraction
	Dist          GGXDistribution
}

func (m MicrofacetTransmission) IsDelta() bool { return false }

func (m MicrofacetTransmission) eta(wo vecmath.Vec3) (etaI, etaT float64) {
	if wo.Z > 0 {
		return m.EtaA, m.EtaB
	}
	return m.EtaB, m.EtaA
}

func (m MicrofacetTransmission) F(wo, wi vecmath.Vec3) vecmath.Vec3 {
	if sampling.SameHemisphere(wo, wi) {
		return vecmath.Vec3{}
	}
	cosO := sampling.CosTheta(wo)
	cosI := sampling.CosTheta(wi)
	if cosO == 0 || cosI == 0 {
		return vecmath.Vec3{}
	}
	etaI, etaT := m.eta(wo)
	eta := etaT / etaI
	wh := wo.Add(wi.Scale(eta)).Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	if wo.Dot(wh)*wi.Dot(wh) > 0 {
		return vecmath.Vec3{}
	}
	fr := DielectricFresnel(wo.Dot(wh), etaI, etaT)
	sqrtDenom := wo.Dot(wh) + eta*wi.Dot(wh)
	factor := 1 / eta // radiance transport scale, not importance transport
	d := m.Dist.D(wh)
	g := m.Dist.G(wo, wi)
	val := (1 - fr) * d * g * eta * eta *
		math.Abs(wi.Dot(wh)) * math.Abs(wo.Dot(wh)) /
		(cosI * cosO * sqrtDenom * sqrtDenom)
	return m.Transmittance.Scale(math.Abs(val) * factor * factor)
}

func (m MicrofacetTransmission) Sample(wo vecmath.Vec3, u1, u2 float64) (vecmath.Vec3, vecmath.Vec3, float64, bool) {
	if wo.Z == 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, false
	}
	wh := m.Dist.SampleWh(wo, u1, u2)
	etaI, etaT := m.eta(wo)
	wi, ok := refract(wo, wh.FaceForward(wo), etaI/etaT)
	if !ok {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, false
	}
	fwd, _ := m.PDF(wo, wi)
	return wi, m.F(wo, wi), fwd, false
}

func (m MicrofacetTransmission) PDF(wo, wi vecmath.Vec3) (float64, float64) {
	if sampling.SameHemisphere(wo, wi) {
		return 0, 0
	}
	etaI, etaT := m.eta(wo)
	eta := etaT / etaI
	wh := wo.Add(wi.Scale(eta))
	if wh.IsZero() {
		return 0, 0
	}
	wh = wh.Normalize()
	if wh.Z < 0 {
		wh = wh.Negate()
	}
	sqrtDenom := wo.Dot(wh) + eta*wi.Dot(wh)
	dwhDwi := eta * eta * math.Abs(wi.Dot(wh)) / (sqrtDenom * sqrtDenom)
	fwd := m.Dist.PDF(wo, wh) * dwhDwi

	etaIr, etaTr := m.eta(wi)
	etaRev := etaTr / etaIr
	whRev := wi.Add(wo.Scale(etaRev))
	if whRev.IsZero() {
		return fwd, 0
	}
	whRev = whRev.Normalize()
	if whRev.Z < 0 {
		whRev = whRev.Negate()
	}
	sqrtDenomRev := wi.Dot(whRev) + etaRev*wo.Dot(whRev)
	dwhDwiRev := etaRev * etaRev * math.Abs(wo.Dot(whRev)) / (sqrtDenomRev * sqrtDenomRev)
	rev := m.Dist.PDF(wi, whRev) * dwhDwiRev
	return fwd, rev
}

// refract computes the transmitted direction for incident wi (pointing
// away from the surface, PBRT convention) across a microfacet normal n
// with relative index of refraction eta = etaIncident/etaTransmitted.
func refract(wi, n vecmath.Vec3, eta float64) (vecmath.Vec3, bool) {
	cosThetaI := n.Dot(wi)
	sin2ThetaI := math.Max(0, 1-cosThetaI*cosThetaI)
	sin2ThetaT := eta * eta * sin2ThetaI
	if sin2ThetaT >= 1 {
		return vecmath.Vec3{}, false
	}
	cosThetaT := math.Sqrt(1 - sin2ThetaT)
	wt := wi.Negate().Scale(eta).Add(n.Scale(eta*cosThetaI - cosThetaT))
	return wt, true
}
