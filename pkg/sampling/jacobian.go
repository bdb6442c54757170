package sampling

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// SurfaceAreaToSolidAngle converts an area-measure pdf at `point` sampled
// on a surface with normal `normal` into a solid-angle-measure pdf as seen
// from `from`, dividing by |cosθ|/dist² — the Jacobian used throughout
// bidirectional connection pdf conversions.
func SurfaceAreaToSolidAngle(areaPdf float64, from, point, normal vecmath.Vec3) float64 {
	d := point.Sub(from)
	distSq := d.LengthSquared()
	if distSq == 0 {
		return 0
	}
	dir := d.Scale(1 / math.Sqrt(distSq))
	cos := math.Abs(dir.Dot(normal))
	if cos == 0 {
		return 0
	}
	return areaPdf * distSq / cos
}

// SolidAngleToSurfaceArea is the inverse conversion, used when a vertex
// generated via a directional pdf (e.g. BSDF sampling toward a hit point)
// needs an area-measure density for MIS bookkeeping.
func SolidAngleToSurfaceArea(solidAnglePdf float64, from, point, normal vecmath.Vec3) float64 {
	d := point.Sub(from)
	distSq := d.LengthSquared()
	if distSq == 0 {
		return 0
	}
	dir := d.Scale(1 / math.Sqrt(distSq))
	cos := math.Abs(dir.Dot(normal))
	return solidAnglePdf * cos / distSq
}

// Remap0 swaps a zero pdf for 1, the convention used when forming MIS
// ratios so a legitimately-zero density doesn't divide-by-zero a
// reciprocal-sum term (bdpt_mis.go remap0).
func Remap0(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
