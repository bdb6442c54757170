// Package sampling implements warps and pdf-conversion primitives:
// cosine-hemisphere and uniform-sphere direction sampling,
// concentric-disc mapping, and the area<->solid-angle Jacobian.
// Grounded on pkg/core/sampling.go (SphereUniformPDF,
// SphereConePDF, PowerHeuristic, BalanceHeuristic) and
// pkg/core/vec3.go-adjacent random-direction helpers, generalized to take
// an explicit uniform source instead of *rand.Rand.
package sampling

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// ConcentricSampleDisk maps a unit square sample to a unit disk using
// Shirley's concentric mapping, avoiding the distortion of polar mapping
// near the disk center.
func ConcentricSampleDisk(u1, u2 float64) (x, y float64) {
	ox := 2*u1 - 1
	oy := 2*u2 - 1
	if ox == 0 && oy == 0 {
		return 0, 0
	}
	var r, theta float64
	if math.Abs(ox) > math.Abs(oy) {
		r = ox
		theta = (math.Pi / 4) * (oy / ox)
	} else {
		r = oy
		theta = (math.Pi / 2) - (math.Pi/4)*(ox/oy)
	}
	return r * math.Cos(theta), r * math.Sin(theta)
}

// CosineHemisphere samples a direction in the local +Z hemisphere with pdf
// proportional to cosθ, returning the direction and its pdf with respect
// to solid angle.
func CosineHemisphere(u1, u2 float64) (dir vecmath.Vec3, pdf float64) {
	x, y := ConcentricSampleDisk(u1, u2)
	z := math.Sqrt(math.Max(0, 1-x*x-y*y))
	return vecmath.New(x, y, z), CosineHemispherePDF(z)
}

// CosineHemispherePDF is the solid-angle pdf of CosineHemisphere for a
// direction whose local-space cosine with +Z is cosTheta.
func CosineHemispherePDF(cosTheta float64) float64 {
	return math.Abs(cosTheta) / math.Pi
}

// UniformSphere samples a direction uniformly over the full sphere.
func UniformSphere(u1, u2 float64) (dir vecmath.Vec3, pdf float64) {
	z := 1 - 2*u1
	r := math.Sqrt(math.Max(0, 1-z*z))
	phi := 2 * math.Pi * u2
	return vecmath.New(r*math.Cos(phi), r*math.Sin(phi), z), UniformSpherePDF()
}

func UniformSpherePDF() float64 { return 1.0 / (4 * math.Pi) }

// UniformCone samples a direction inside a cone of half-angle
// acos(cosThetaMax) around +Z, for emitter cone sampling and light-source
// solid-angle sampling. Grounded on SphereConePDF.
func UniformCone(u1, u2, cosThetaMax float64) (dir vecmath.Vec3, pdf float64) {
	cosTheta := (1 - u1) + u1*cosThetaMax
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * u2
	return vecmath.New(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta), UniformConePDF(cosThetaMax)
}

func UniformConePDF(cosThetaMax float64) float64 {
	if cosThetaMax >= 1 {
		return 0
	}
	return 1.0 / (2 * math.Pi * (1 - cosThetaMax))
}

// UniformTriangle returns barycentric coordinates (b0, b1; b2 = 1-b0-b1)
// sampled uniformly over a triangle.
func UniformTriangle(u1, u2 float64) (b0, b1 float64) {
	su0 := math.Sqrt(u1)
	return 1 - su0, u2 * su0
}

// PowerHeuristic is the β=2 MIS heuristic, kept available for callers that
// want a softer weighting than the balance heuristic BidirBase uses by
// default.
func PowerHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f+g == 0 {
		return 0
	}
	return (f * f) / (f*f + g*g)
}

// BalanceHeuristic combines two sampling strategies by their relative
// weight, the heuristic MIS formulas are built from.
func BalanceHeuristic(nf int, fPdf float64, ng int, gPdf float64) float64 {
	f := float64(nf) * fPdf
	g := float64(ng) * gPdf
	if f+g == 0 {
		return 0
	}
	return f / (f + g)
}
