package sampling

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Frame is an orthonormal basis used to convert between world space and a
// local shading space where the geometric normal is +Z. Every BSDF lobe in
// pkg/bsdf evaluates in this local space so cosθ is just the Z component.
type Frame struct {
	X, Y, Z vecmath.Vec3
}

// ComputeBasisVectors builds an orthonormal frame from a single normal
// using the branchless construction from Duff et al., "Building an
// Orthonormal Basis, Revisited" — avoids the sqrt-and-conditional approach
// entirely and has no discontinuity at z == -1.
func ComputeBasisVectors(n vecmath.Vec3) Frame {
	sign := math.Copysign(1, n.Z)
	a := -1 / (sign + n.Z)
	b := n.X * n.Y * a
	x := vecmath.New(1+sign*n.X*n.X*a, sign*b, -sign*n.X)
	y := vecmath.New(b, sign+n.Y*n.Y*a, -n.Y)
	return Frame{X: x, Y: y, Z: n}
}

func (f Frame) WorldToShading(v vecmath.Vec3) vecmath.Vec3 {
	return vecmath.New(v.Dot(f.X), v.Dot(f.Y), v.Dot(f.Z))
}

func (f Frame) ShadingToWorld(v vecmath.Vec3) vecmath.Vec3 {
	return f.X.Scale(v.X).Add(f.Y.Scale(v.Y)).Add(f.Z.Scale(v.Z))
}

func CosTheta(w vecmath.Vec3) float64    { return w.Z }
func AbsCosTheta(w vecmath.Vec3) float64 { return math.Abs(w.Z) }
func Cos2Theta(w vecmath.Vec3) float64   { return w.Z * w.Z }

func Sin2Theta(w vecmath.Vec3) float64 {
	return math.Max(0, 1-Cos2Theta(w))
}
func SinTheta(w vecmath.Vec3) float64 { return math.Sqrt(Sin2Theta(w)) }

func TanTheta(w vecmath.Vec3) float64 {
	return SinTheta(w) / CosTheta(w)
}
func Tan2Theta(w vecmath.Vec3) float64 {
	return Sin2Theta(w) / Cos2Theta(w)
}

func CosPhi(w vecmath.Vec3) float64 {
	s := SinTheta(w)
	if s == 0 {
		return 1
	}
	return clamp(w.X/s, -1, 1)
}

func SinPhi(w vecmath.Vec3) float64 {
	s := SinTheta(w)
	if s == 0 {
		return 0
	}
	return clamp(w.Y/s, -1, 1)
}

// SameHemisphere reports whether two shading-space directions lie in the
// same hemisphere relative to the local +Z axis — the test every
// reflection-vs-transmission lobe uses to decide whether it applies.
func SameHemisphere(a, b vecmath.Vec3) bool {
	return a.Z*b.Z > 0
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
