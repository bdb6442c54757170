package scenegraph

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// AABB is an axis-aligned bounding box, grounded on the prior implementation's
// pkg/core/aabb.go.
type AABB struct {
	Min, Max vecmath.Vec3
}

func (b AABB) Union(o AABB) AABB {
	return AABB{
		Min: vecmath.New(math.Min(b.Min.X, o.Min.X), math.Min(b.Min.Y, o.Min.Y), math.Min(b.Min.Z, o.Min.Z)),
		Max: vecmath.New(math.Max(b.Max.X, o.Max.X), math.Max(b.Max.Y, o.Max.Y), math.Max(b.Max.Z, o.Max.Z)),
	}
}

func (b AABB) Centroid() vecmath.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Hit tests ray-slab intersection, returning whether the ray crosses the
// box within [tMin, tMax].
func (b AABB) Hit(ray vecmath.Ray, tMin, tMax float64) bool {
	inv := func(d float64) float64 {
		if d == 0 {
			return math.Inf(1)
		}
		return 1 / d
	}
	for axis := 0; axis < 3; axis++ {
		var o, d, lo, hi float64
		switch axis {
		case 0:
			o, d, lo, hi = ray.Origin.X, ray.Direction.X, b.Min.X, b.Max.X
		case 1:
			o, d, lo, hi = ray.Origin.Y, ray.Direction.Y, b.Min.Y, b.Max.Y
		default:
			o, d, lo, hi = ray.Origin.Z, ray.Direction.Z, b.Min.Z, b.Max.Z
		}
		invD := inv(d)
		t0 := (lo - o) * invD
		t1 := (hi - o) * invD
		if invD < 0 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if tMax <= tMin {
			return false
		}
	}
	return true
}
