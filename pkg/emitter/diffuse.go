package emitter

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Triangle is the minimal shape contract a Diffuse emitter needs: a point
// on its surface for a given pair of barycentric-style uniforms, its
// normal at that point, and its area. scenegraph.Mesh's triangles and
// scenegraph's standalone quad-as-two-triangles both satisfy this.
type Triangle interface {
	SamplePoint(u1, u2 float64) (point, normal vecmath.Vec3)
	Area() float64
}

// Diffuse is a one- or two-sided area light emitting uniform radiance
// `Radiance` from every point on its surface, following a cosine-weighted
// emission profile. Grounded on pkg/lights/quad_light.go
// (Sample/PDF/SampleEmission/EmissionPDF), generalized from a single quad
// to an arbitrary list of triangles so it also backs mesh-based area
// lights.
type Diffuse struct {
	Triangles []Triangle
	Radiance  vecmath.Vec3
	TwoSided  bool

	cumulativeArea []float64
	totalArea      float64
}

// NewDiffuse precomputes the per-triangle cumulative-area table used for
// discrete CDF sampling across triangles, the same structure the prior implementation's
// TriangleMesh area-light preprocessing builds.
func NewDiffuse(triangles []Triangle, radiance vecmath.Vec3, twoSided bool) *Diffuse {
	d := &Diffuse{Triangles: triangles, Radiance: radiance, TwoSided: twoSided}
	d.cumulativeArea = make([]float64, len(triangles))
	acc := 0.0
	for i, tri := range triangles {
		acc += tri.Area()
		d.cumulativeArea[i] = acc
	}
	d.totalArea = acc
	return d
}

func (d *Diffuse) IsInfinite() bool { return false }

func (d *Diffuse) EmittedRadiance(point, normal, dir vecmath.Vec3) vecmath.Vec3 {
	cos := normal.Dot(dir)
	if cos > 0 || (d.TwoSided && cos < 0) {
		return d.Radiance
	}
	return vecmath.Vec3{}
}

func (d *Diffuse) pickTriangle(u float64) (int, float64) {
	target := u * d.totalArea
	lo, hi := 0, len(d.cumulativeArea)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if d.cumulativeArea[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	prev := 0.0
	if lo > 0 {
		prev = d.cumulativeArea[lo-1]
	}
	return lo, (target - prev) / (d.cumulativeArea[lo] - prev)
}

// SampleArea draws a point uniformly by area across the emitter's
// triangles and returns its area-measure pdf; converting that into the
// solid-angle pdf a next-event shadow ray needs is left to the caller.
func (d *Diffuse) SampleArea(from vecmath.Vec3, u1, u2 float64) AreaSample {
	if d.totalArea == 0 || len(d.Triangles) == 0 {
		return AreaSample{}
	}
	idx, uTri := d.pickTriangle(u1)
	point, normal := d.Triangles[idx].SamplePoint(uTri, u2)

	dir := point.Sub(from)
	dist := dir.Length()
	if dist == 0 {
		return AreaSample{}
	}
	dir = dir.Scale(1 / dist)
	radiance := d.EmittedRadiance(point, normal, dir.Negate())

	return AreaSample{
		Point:    point,
		Normal:   normal,
		Radiance: radiance,
		PdfArea:  1.0 / d.totalArea,
	}
}

// PdfArea is uniform over the emitter's surface regardless of `from`,
// since SampleArea samples by area, not by solid angle.
func (d *Diffuse) PdfArea(from, point, normal vecmath.Vec3) float64 {
	if d.totalArea == 0 {
		return 0
	}
	return 1.0 / d.totalArea
}

// SampleRay draws an emission origin uniformly by area and a direction
// cosine-weighted about the surface normal, matching the prior implementation's
// QuadLight.SampleEmission split between AreaPDF and DirectionPDF.
func (d *Diffuse) SampleRay(u1, u2, u3, u4 float64) RaySample {
	if d.totalArea == 0 || len(d.Triangles) == 0 {
		return RaySample{}
	}
	idx, uTri := d.pickTriangle(u1)
	point, normal := d.Triangles[idx].SamplePoint(uTri, u2)

	localDir, pdfDir := sampling.CosineHemisphere(u3, u4)
	frame := sampling.ComputeBasisVectors(normal)
	dir := frame.ShadingToWorld(localDir)

	return RaySample{
		Origin:    point,
		Normal:    normal,
		Direction: dir,
		Radiance:  d.Radiance,
		PdfArea:   1.0 / d.totalArea,
		PdfDir:    pdfDir,
	}
}

func (d *Diffuse) PdfRay(point, normal, dir vecmath.Vec3) (pdfArea, pdfDir float64) {
	if d.totalArea == 0 {
		return 0, 0
	}
	cos := normal.Dot(dir)
	if cos <= 0 && !d.TwoSided {
		return 1.0 / d.totalArea, 0
	}
	return 1.0 / d.totalArea, sampling.CosineHemispherePDF(math.Abs(cos))
}

func (d *Diffuse) TotalPower() float64 {
	scale := 1.0
	if d.TwoSided {
		scale = 2.0
	}
	return d.Radiance.Luminance() * d.totalArea * math.Pi * scale
}
