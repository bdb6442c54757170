package scenegraph

import (
	"sort"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// BVHNode is a median-split bounding volume hierarchy node, grounded on
// pkg/geometry/bvh.go (BVHNode/buildBVH), trimmed to a
// simple longest-axis median split rather than SAH-adjacent
// heuristic since this module's Cornell-box-scale scenes don't need it.
type BVHNode struct {
	Bounds      AABB
	Left, Right *BVHNode
	Shapes      []Shape // non-nil only at leaves
}

// BVH wraps the root node plus a scene bounding sphere (center, radius)
// used by Environment emission sampling to place a bounding disk far
// enough away to enclose every shape.
type BVH struct {
	Root   *BVHNode
	Center vecmath.Point3
	Radius float64
}

const leafSize = 4

func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{Root: &BVHNode{Shapes: nil}}
	}
	cp := make([]Shape, len(shapes))
	copy(cp, shapes)
	root := build(cp)

	center := root.Bounds.Centroid()
	radius := 0.0
	for _, s := range shapes {
		b := s.Bounds()
		for _, corner := range corners(b) {
			d := corner.Sub(center).Length()
			if d > radius {
				radius = d
			}
		}
	}
	return &BVH{Root: root, Center: center, Radius: radius}
}

func corners(b AABB) []vecmath.Vec3 {
	return []vecmath.Vec3{
		vecmath.New(b.Min.X, b.Min.Y, b.Min.Z), vecmath.New(b.Max.X, b.Min.Y, b.Min.Z),
		vecmath.New(b.Min.X, b.Max.Y, b.Min.Z), vecmath.New(b.Max.X, b.Max.Y, b.Min.Z),
		vecmath.New(b.Min.X, b.Min.Y, b.Max.Z), vecmath.New(b.Max.X, b.Min.Y, b.Max.Z),
		vecmath.New(b.Min.X, b.Max.Y, b.Max.Z), vecmath.New(b.Max.X, b.Max.Y, b.Max.Z),
	}
}

func build(shapes []Shape) *BVHNode {
	bounds := shapes[0].Bounds()
	for _, s := range shapes[1:] {
		bounds = bounds.Union(s.Bounds())
	}
	if len(shapes) <= leafSize {
		return &BVHNode{Bounds: bounds, Shapes: shapes}
	}

	extent := bounds.Max.Sub(bounds.Min)
	axis := 0
	if extent.Y > extent.X {
		axis = 1
	}
	if extent.Z > extent.X && extent.Z > extent.Y {
		axis = 2
	}

	sort.Slice(shapes, func(i, j int) bool {
		ci := shapes[i].Bounds().Centroid()
		cj := shapes[j].Bounds().Centroid()
		switch axis {
		case 0:
			return ci.X < cj.X
		case 1:
			return ci.Y < cj.Y
		default:
			return ci.Z < cj.Z
		}
	})

	mid := len(shapes) / 2
	return &BVHNode{
		Bounds: bounds,
		Left:   build(shapes[:mid]),
		Right:  build(shapes[mid:]),
	}
}

// Intersect walks the BVH for the closest hit within [tMin, tMax].
func (bvh *BVH) Intersect(ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool) {
	if bvh.Root == nil {
		return walk.Hit{}, false
	}
	return intersectNode(bvh.Root, ray, tMin, tMax)
}

func intersectNode(n *BVHNode, ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool) {
	if !n.Bounds.Hit(ray, tMin, tMax) {
		return walk.Hit{}, false
	}
	if n.Shapes != nil {
		var best walk.Hit
		hitAny := false
		closest := tMax
		for _, s := range n.Shapes {
			if h, ok := s.Hit(ray, tMin, closest); ok {
				best = h
				closest = h.T
				hitAny = true
			}
		}
		return best, hitAny
	}
	leftHit, leftOk := intersectNode(n.Left, ray, tMin, tMax)
	closest := tMax
	if leftOk {
		closest = leftHit.T
	}
	rightHit, rightOk := intersectNode(n.Right, ray, tMin, closest)
	if rightOk {
		return rightHit, true
	}
	return leftHit, leftOk
}
