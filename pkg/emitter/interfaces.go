// Package emitter implements the Emitter contract for light sources:
// area lights that can be hit directly by a camera ray, sampled by next
// event estimation, and sampled for emission to seed a light subpath, plus
// a single environment background emitter. Grounded almost 1:1 on the
// pkg/lights.Light interface (pkg/lights/interfaces.go), which
// already separates Sample/PDF (next-event) from SampleEmission/EmissionPDF
// (light-subpath seeding) — this module keeps that split and renames it to
// the SampleArea/PdfArea/SampleRay/PdfRay vocabulary.
package emitter

import "github.com/kestrelrender/bdpt/pkg/vecmath"

// AreaSample is the result of sampling a point on an emitter's surface for
// next-event estimation: a point usable for a shadow ray, the emitted
// radiance leaving that point toward the shading point, and the pdf of
// having chosen that point with respect to surface area.
type AreaSample struct {
	Point    vecmath.Point3
	Normal   vecmath.Vec3
	Radiance vecmath.Vec3
	PdfArea  float64
}

// RaySample is the result of sampling an emission ray to seed a light
// subpath: an origin, direction, the radiance it carries, and its pdf
// split into an area term (density of the origin point) and a directional
// term (density of the direction given the origin) — kept separate
// because bidirectional pdf conversions need both.
type RaySample struct {
	Origin      vecmath.Point3
	Normal      vecmath.Vec3
	Direction   vecmath.Vec3
	Radiance    vecmath.Vec3
	PdfArea     float64
	PdfDir      float64
	IsDelta     bool // true for point-like/delta emitters (none ship in this core; kept for interface completeness)
	IsInfinite  bool
}

// Emitter is implemented by every light source a scene can contain.
type Emitter interface {
	// EmittedRadiance returns the radiance leaving `point` (with surface
	// normal `normal`) toward `dir`, used when a camera subpath directly
	// hits an emissive surface (the t>=1, s==0 bidirectional strategy).
	EmittedRadiance(point, normal, dir vecmath.Vec3) vecmath.Vec3

	// SampleArea draws a point on the emitter's surface for next-event
	// estimation from a shading point `from`.
	SampleArea(from vecmath.Vec3, u1, u2 float64) AreaSample
	// PdfArea returns the area-measure pdf of SampleArea having produced
	// `point`, used when a different sampling technique (e.g. the random
	// walk hitting the light directly) needs to know this emitter's own
	// sampling density for MIS.
	PdfArea(from, point, normal vecmath.Vec3) float64

	// SampleRay draws a full emission ray (origin + direction) to seed a
	// light subpath.
	SampleRay(u1, u2, u3, u4 float64) RaySample
	// PdfRay returns the (area, direction) pdf pair SampleRay would have
	// assigned to an origin/direction pair produced by another technique.
	PdfRay(point, normal, dir vecmath.Vec3) (pdfArea, pdfDir float64)

	// TotalPower is the emitter's total radiant power, used by the light
	// selection distribution.
	TotalPower() float64

	// IsInfinite reports whether the emitter has no finite surface area
	// (the environment background), which changes how PdfArea/PdfRay
	// behave and how the walk terminates a ray that escapes the scene.
	IsInfinite() bool
}

// Selector picks an emitter (and its selection probability) from a scene's
// full emitter set, the analog of lights.LightSampler.
type Selector interface {
	Select(u float64) (emitter Emitter, index int, pdf float64)
	PdfFor(index int) float64
	// PdfForEmitter returns the selection density for a specific emitter
	// instance, used when MIS needs the density NextEventEstimation would
	// have assigned to an emitter discovered by some other technique (a
	// camera path hitting it directly) rather than one just drawn from
	// Select.
	PdfForEmitter(e Emitter) float64
	Count() int
}
