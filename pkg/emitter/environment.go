package emitter

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Environment is a directional background emitter — a single uniform
// radiance or a vertical gradient, approximated as an infinitely distant
// sphere around the scene. Grounded on the prior implementation's
// pkg/lights/uniform_infinite_light.go and gradient_infinite_light.go,
// unified into one type parameterized by a direction-to-radiance function
// instead of two near-duplicate structs.
type Environment struct {
	// Radiance returns the radiance arriving from world-space direction
	// dir (pointing away from the scene, toward the environment).
	Radiance func(dir vecmath.Vec3) vecmath.Vec3
	// SceneRadius bounds the scene for converting a sampled direction
	// into an emission ray origin far enough away to enclose everything.
	SceneRadius float64
	SceneCenter vecmath.Vec3
}

// NewUniformEnvironment mirrors UniformInfiniteLight.
func NewUniformEnvironment(radiance vecmath.Vec3, center vecmath.Vec3, radius float64) *Environment {
	return &Environment{
		Radiance:    func(vecmath.Vec3) vecmath.Vec3 { return radiance },
		SceneCenter: center,
		SceneRadius: radius,
	}
}

// NewGradientEnvironment mirrors GradientInfiniteLight,
// interpolating between a zenith and horizon color by the direction's Y.
func NewGradientEnvironment(top, bottom vecmath.Vec3, center vecmath.Vec3, radius float64) *Environment {
	return &Environment{
		Radiance: func(dir vecmath.Vec3) vecmath.Vec3 {
			t := 0.5 * (dir.Normalize().Y + 1)
			return bottom.Lerp(top, t)
		},
		SceneCenter: center,
		SceneRadius: radius,
	}
}

func (e *Environment) IsInfinite() bool { return true }

func (e *Environment) EmittedRadiance(point, normal, dir vecmath.Vec3) vecmath.Vec3 {
	return e.Radiance(dir.Negate())
}

// SampleArea samples a direction uniformly over the sphere and places a
// virtual "point" at twice the scene-radius distance along it, matching the
// convention for treating an infinite light as an area emitter
// for next-event purposes.
func (e *Environment) SampleArea(from vecmath.Vec3, u1, u2 float64) AreaSample {
	dir, pdfSolidAngle := sampling.UniformSphere(u1, u2)
	point := from.Add(dir.Scale(2 * e.SceneRadius))
	pdfArea := sampling.SolidAngleToSurfaceArea(pdfSolidAngle, from, point, dir.Negate())
	return AreaSample{
		Point:    point,
		Normal:   dir.Negate(),
		Radiance: e.Radiance(dir),
		PdfArea:  pdfArea,
	}
}

func (e *Environment) PdfArea(from, point, normal vecmath.Vec3) float64 {
	return sampling.SolidAngleToSurfaceArea(sampling.UniformSpherePDF(), from, point, normal)
}

// SampleRay samples a direction uniformly over the sphere and an origin
// uniformly over a disk perpendicular to that direction at scene-radius
// distance, the standard "shoot rays in toward a bounding disk" emission
// model for infinite lights (SampleEmission for infinite lights,
// generalized from the specific gradient/uniform pair).
func (e *Environment) SampleRay(u1, u2, u3, u4 float64) RaySample {
	dir, pdfDir := sampling.UniformSphere(u1, u2)
	dx, dy := sampling.ConcentricSampleDisk(u3, u4)
	frame := sampling.ComputeBasisVectors(dir)
	diskPoint := e.SceneCenter.
		Add(frame.X.Scale(dx * e.SceneRadius)).
		Add(frame.Y.Scale(dy * e.SceneRadius)).
		Sub(dir.Scale(e.SceneRadius))
	return RaySample{
		Origin:     diskPoint,
		Normal:     dir.Negate(),
		Direction:  dir,
		Radiance:   e.Radiance(dir.Negate()),
		PdfArea:    1.0 / (math.Pi * e.SceneRadius * e.SceneRadius),
		PdfDir:     pdfDir,
		IsInfinite: true,
	}
}

func (e *Environment) PdfRay(point, normal, dir vecmath.Vec3) (pdfArea, pdfDir float64) {
	return 1.0 / (math.Pi * e.SceneRadius * e.SceneRadius), sampling.UniformSpherePDF()
}

// TotalPower approximates the environment's contribution to the scene's
// power-based light selection distribution as its average radiance over
// the disk it's sampled through.
func (e *Environment) TotalPower() float64 {
	// Sample a handful of canonical directions to approximate average
	// radiance without requiring a full importance-sampled distribution
	// (full environment-map importance sampling is out of scope per
	// — only uniform/gradient backgrounds ship).
	dirs := []vecmath.Vec3{
		vecmath.New(0, 1, 0), vecmath.New(0, -1, 0),
		vecmath.New(1, 0, 0), vecmath.New(-1, 0, 0),
		vecmath.New(0, 0, 1), vecmath.New(0, 0, -1),
	}
	sum := 0.0
	for _, d := range dirs {
		sum += e.Radiance(d).Luminance()
	}
	avg := sum / float64(len(dirs))
	return avg * math.Pi * math.Pi * e.SceneRadius * e.SceneRadius
}
