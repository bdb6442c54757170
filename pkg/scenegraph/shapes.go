// Package scenegraph implements the concrete Scene/Intersector/Mesh
// collaborators the bidirectional core needs to be runnable end to end.
// Grounded on pkg/geometry (sphere.go, triangle.go, bvh.go) and
// pkg/scene/scene.go's two-phase construction, trimmed to the shapes
// Cornell-box scenarios need: spheres, triangles, and triangle meshes.
package scenegraph

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/emitter"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// Shape is implemented by every primitive the BVH can hold.
type Shape interface {
	Hit(ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool)
	Bounds() AABB
}

// Sphere is grounded on pkg/geometry/sphere.go quadratic
// intersection test.
type Sphere struct {
	Center   vecmath.Point3
	Radius   float64
	Material pathcache.MaterialAt
	Emitter  pathcache.EmitterAt
}

func (s *Sphere) Bounds() AABB {
	r := vecmath.New(s.Radius, s.Radius, s.Radius)
	return AABB{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}

func (s *Sphere) Hit(ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool) {
	oc := ray.Origin.Sub(s.Center)
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return walk.Hit{}, false
	}
	sqrtD := math.Sqrt(disc)
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return walk.Hit{}, false
		}
	}
	point := ray.At(root)
	normal := point.Sub(s.Center).Scale(1 / s.Radius)
	return walk.Hit{Point: point, Normal: normal, T: root, Material: s.Material, Emitter: s.Emitter}, true
}

// Triangle is grounded on pkg/geometry/triangle.go
// Möller-Trumbore intersection test.
type Triangle struct {
	P0, P1, P2 vecmath.Point3
	Material   pathcache.MaterialAt
	Emitter    pathcache.EmitterAt
}

func (t *Triangle) edges() (e1, e2 vecmath.Vec3) {
	return t.P1.Sub(t.P0), t.P2.Sub(t.P0)
}

func (t *Triangle) Normal() vecmath.Vec3 {
	e1, e2 := t.edges()
	return e1.Cross(e2).Normalize()
}

func (t *Triangle) Area() float64 {
	e1, e2 := t.edges()
	return e1.Cross(e2).Length() / 2
}

// SamplePoint implements emitter.Triangle for area-light sampling.
func (t *Triangle) SamplePoint(u1, u2 float64) (vecmath.Point3, vecmath.Vec3) {
	su0 := math.Sqrt(u1)
	b0 := 1 - su0
	b1 := u2 * su0
	b2 := 1 - b0 - b1
	p := t.P0.Scale(b0).Add(t.P1.Scale(b1)).Add(t.P2.Scale(b2))
	return p, t.Normal()
}

func (t *Triangle) Bounds() AABB {
	min := vecmath.New(math.Min(t.P0.X, math.Min(t.P1.X, t.P2.X)), math.Min(t.P0.Y, math.Min(t.P1.Y, t.P2.Y)), math.Min(t.P0.Z, math.Min(t.P1.Z, t.P2.Z)))
	max := vecmath.New(math.Max(t.P0.X, math.Max(t.P1.X, t.P2.X)), math.Max(t.P0.Y, math.Max(t.P1.Y, t.P2.Y)), math.Max(t.P0.Z, math.Max(t.P1.Z, t.P2.Z)))
	return AABB{Min: min, Max: max}
}

func (t *Triangle) Hit(ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool) {
	const epsilon = 1e-8
	e1, e2 := t.edges()
	h := ray.Direction.Cross(e2)
	a := e1.Dot(h)
	if math.Abs(a) < epsilon {
		return walk.Hit{}, false
	}
	f := 1 / a
	s := ray.Origin.Sub(t.P0)
	u := f * s.Dot(h)
	if u < 0 || u > 1 {
		return walk.Hit{}, false
	}
	q := s.Cross(e1)
	v := f * ray.Direction.Dot(q)
	if v < 0 || u+v > 1 {
		return walk.Hit{}, false
	}
	dist := f * e2.Dot(q)
	if dist < tMin || dist > tMax {
		return walk.Hit{}, false
	}
	point := ray.At(dist)
	normal := t.Normal().FaceForward(ray.Direction.Negate())
	return walk.Hit{Point: point, Normal: normal, T: dist, Material: t.Material, Emitter: t.Emitter}, true
}

// Mesh is an indexed triangle soup, grounded on
// pkg/geometry/triangle_mesh.go.
type Mesh struct {
	Triangles []*Triangle
}

// NewQuad builds a two-triangle quad from a corner and two edge vectors,
// matching the geometry.NewQuad convention (pkg/scene/scene.go
// NewGroundQuad), generalized to any orientation, not just horizontal.
func NewQuad(corner, u, v vecmath.Vec3, material pathcache.MaterialAt, em pathcache.EmitterAt) *Mesh {
	p0 := corner
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)
	return &Mesh{Triangles: []*Triangle{
		{P0: p0, P1: p1, P2: p2, Material: material, Emitter: em},
		{P0: p0, P1: p2, P2: p3, Material: material, Emitter: em},
	}}
}

func (m *Mesh) Shapes() []Shape {
	shapes := make([]Shape, len(m.Triangles))
	for i, t := range m.Triangles {
		shapes[i] = t
	}
	return shapes
}

// EmitterTriangles adapts this mesh's triangles to emitter.Triangle so a
// Mesh can back an emitter.Diffuse area light.
func (m *Mesh) EmitterTriangles() []emitter.Triangle {
	out := make([]emitter.Triangle, len(m.Triangles))
	for i, t := range m.Triangles {
		out[i] = t
	}
	return out
}
