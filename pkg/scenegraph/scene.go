package scenegraph

import (
	"github.com/pkg/errors"

	"github.com/kestrelrender/bdpt/pkg/emitter"
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// Scene is the arena-based owner of every shape, emitter, and the
// background for one render, grounded on pkg/scene/scene.go
// two-phase New-then-Prepare construction.
type Scene struct {
	Shapes     []Shape
	Emitters   []emitter.Emitter
	Background *emitter.Environment
	Selector   emitter.Selector

	bvh *BVH
}

func New() *Scene {
	return &Scene{}
}

func (s *Scene) AddShape(shape Shape) {
	s.Shapes = append(s.Shapes, shape)
}

func (s *Scene) AddEmitter(e emitter.Emitter) {
	s.Emitters = append(s.Emitters, e)
}

// Prepare builds the BVH and the default emitter selector, and refuses
// structurally invalid scenes up front: a scene needs at
// least one emitter or a background to ever produce non-zero radiance.
func (s *Scene) Prepare() error {
	if len(s.Emitters) == 0 && s.Background == nil {
		return errors.New("scene has no emitters and no background: every camera ray would return zero radiance")
	}
	s.bvh = NewBVH(s.Shapes)
	if s.Selector == nil {
		s.Selector = emitter.NewPowerSelector(s.Emitters)
	}
	return nil
}

// SceneRadius returns the bounding sphere radius computed by Prepare, used
// to size the Background emitter's emission disk.
func (s *Scene) SceneRadius() float64 {
	if s.bvh == nil {
		return 0
	}
	return s.bvh.Radius
}

func (s *Scene) SceneCenter() vecmath.Point3 {
	if s.bvh == nil {
		return vecmath.Vec3{}
	}
	return s.bvh.Center
}

// Intersect implements walk.Intersector.
func (s *Scene) Intersect(ray vecmath.Ray, tMin, tMax float64) (walk.Hit, bool) {
	return s.bvh.Intersect(ray, tMin, tMax)
}

// Emitted implements walk.Background.
func (s *Scene) Emitted(dir vecmath.Vec3) vecmath.Vec3 {
	if s.Background == nil {
		return vecmath.Vec3{}
	}
	return s.Background.Radiance(dir)
}

// AsEmitter implements walk.Background.
func (s *Scene) AsEmitter() pathcache.EmitterAt {
	if s.Background == nil {
		return nil
	}
	return s.Background
}
