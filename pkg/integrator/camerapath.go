package integrator

import (
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/rng"
	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/kestrelrender/bdpt/pkg/walk"
)

// CameraModel is the minimal camera contract the camera subpath generator
// needs, satisfied by camera.Perspective.
type CameraModel interface {
	GenerateRay(px, py float64) (ray vecmath.Ray, pdfArea, pdfDir float64)
	Position() vecmath.Point3
	pathcache.CameraAt
}

// GenerateCameraPath walks a ray from the camera through pixel (px, py),
// grounded on generateCameraSubpath in pkg/integrator/bdpt.go.
func GenerateCameraPath(scene walk.Intersector, background walk.Background, cam CameraModel, px, py float64, maxDepth int, src *rng.Source) []pathcache.Vertex {
	ray, pdfArea, pdfDir := cam.GenerateRay(px, py)

	seed := pathcache.Vertex{
		Point:          cam.Position(),
		Normal:         ray.Direction,
		Camera:         cam,
		IsCamera:       true,
		Beta:           vecmath.New(1, 1, 1),
		AreaPdfForward: pdfArea,
	}

	cfg := walk.Config{MaxDepth: maxDepth - 1, Source: src}
	vertices := walk.Run(scene, background, seed, ray, vecmath.New(1, 1, 1), pdfDir, cfg)
	FillReversePdfs(vertices)

	// The lens vertex's own reverse pdf: the density a light-tracer
	// connection landing here would carry, needed by CameraPathReciprocals'
	// light-tracer term. FillReversePdfs never visits index 0 since it has
	// no material to evaluate; the camera model supplies the equivalent
	// directional density instead.
	if len(vertices) > 1 {
		toNext := vertices[1].Point.Sub(vertices[0].Point)
		if d := toNext.Length(); d > 0 {
			wi := toNext.Scale(1 / d)
			_, pdfDir := cam.CalculateRayPDFs(vertices[0].Point, wi)
			vertices[0].AreaPdfReverse = sampling.SolidAngleToSurfaceArea(pdfDir, vertices[0].Point, vertices[1].Point, vertices[1].Normal)
		}
	}

	return vertices
}
