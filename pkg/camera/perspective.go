// Package camera implements a pinhole perspective camera, the concrete
// Camera collaborator the bidirectional core connects light-subpath
// vertices to.
// Grounded on pkg/renderer/camera.go (origin + viewport
// vector construction) reconciled against pkg/renderer/camera_test.go's
// expectations (CalculateRayPDFs, GetCameraForward), which the prior implementation's
// checked-in camera.go never actually implemented (see DESIGN.md) — this
// module is the one consistent version of both.
package camera

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// Perspective is a thin-lens-free pinhole camera with a rectangular image
// plane one unit from the eye along Forward, width/height in raster
// pixels.
type Perspective struct {
	Origin            vecmath.Point3
	Forward, Up, Right vecmath.Vec3 // orthonormal basis, Forward normalized
	HalfWidth, HalfHeight float64    // image-plane half-extents at distance 1
	Width, Height     int            // raster resolution
	LensRadius        float64        // 0 for a true pinhole
}

// NewPerspective builds a camera looking from eye toward target with the
// given vertical field of view (degrees) and aspect-correct horizontal
// extent, grounded on NewCamera but generalized from a
// hardcoded 16:9/viewport-height-2.0 setup to arbitrary eye/target/fov.
func NewPerspective(eye, target, worldUp vecmath.Vec3, vfovDegrees float64, width, height int) *Perspective {
	forward := target.Sub(eye).Normalize()
	right := forward.Cross(worldUp).Normalize()
	up := right.Cross(forward).Normalize()

	theta := vfovDegrees * math.Pi / 180
	halfHeight := math.Tan(theta / 2)
	halfWidth := halfHeight * float64(width) / float64(height)

	return &Perspective{
		Origin: eye, Forward: forward, Up: up, Right: right,
		HalfWidth: halfWidth, HalfHeight: halfHeight,
		Width: width, Height: height,
	}
}

func (c *Perspective) Position() vecmath.Point3 { return c.Origin }

func (c *Perspective) GetCameraForward() vecmath.Vec3 { return c.Forward }

// GenerateRay builds a camera ray through raster-space pixel coordinates
// (px, py), where (0,0) is the image's top-left corner and values are
// continuous (sub-pixel jitter already applied by the caller).
func (c *Perspective) GenerateRay(px, py float64) (ray vecmath.Ray, pdfArea, pdfDir float64) {
	u := (2*px/float64(c.Width) - 1) * c.HalfWidth
	v := (1 - 2*py/float64(c.Height)) * c.HalfHeight
	dir := c.Forward.Add(c.Right.Scale(u)).Add(c.Up.Scale(v)).Normalize()
	pdfArea = 1 // a pinhole camera has a single origin point: a delta area density
	pdfDir = c.directionPDF(dir)
	return vecmath.NewRay(c.Origin, dir), pdfArea, pdfDir
}

// directionPDF is the density, with respect to solid angle, of a pinhole
// camera's uniform sampling over its image plane, following PBRT's
// perspective camera Pdf_We derivation: inversely proportional to the
// cube of the cosine between the ray and the camera's forward axis, scaled
// by the image plane's area in camera space.
func (c *Perspective) directionPDF(worldDir vecmath.Vec3) float64 {
	cosTheta := worldDir.Dot(c.Forward)
	if cosTheta <= 0 {
		return 0
	}
	planeArea := 4 * c.HalfWidth * c.HalfHeight
	return 1 / (planeArea * cosTheta * cosTheta * cosTheta)
}

// CalculateRayPDFs implements pathcache.CameraAt, reporting the (area,
// direction) pdf pair for a ray already known to originate at the camera
// (used when a bidirectional connection lands back on the lens and needs
// to know what density the camera's own sampling would have assigned).
func (c *Perspective) CalculateRayPDFs(origin, dir vecmath.Vec3) (pdfArea, pdfDir float64) {
	return 1, c.directionPDF(dir.Normalize())
}

// SampleResponse implements pathcache.CameraAt: given a world-space point,
// returns the raster pixel it projects to (for a light-tracer splat) and
// the importance (We) the camera's measurement equation assigns to light
// arriving from that direction, following PBRT's Camera::We.
func (c *Perspective) SampleResponse(point vecmath.Point3) (rasterX, rasterY int, we vecmath.Vec3, onFilm bool) {
	dir := point.Sub(c.Origin)
	dist := dir.Length()
	if dist == 0 {
		return 0, 0, vecmath.Vec3{}, false
	}
	dir = dir.Scale(1 / dist)
	cosTheta := dir.Dot(c.Forward)
	if cosTheta <= 0 {
		return 0, 0, vecmath.Vec3{}, false
	}

	// project onto the image plane at distance 1 along Forward
	t := 1 / cosTheta
	planePoint := dir.Scale(t)
	u := planePoint.Dot(c.Right) / c.HalfWidth
	v := planePoint.Dot(c.Up) / c.HalfHeight
	if u < -1 || u > 1 || v < -1 || v > 1 {
		return 0, 0, vecmath.Vec3{}, false
	}

	px := int((u + 1) / 2 * float64(c.Width))
	py := int((1 - v) / 2 * float64(c.Height))
	if px < 0 || px >= c.Width || py < 0 || py >= c.Height {
		return 0, 0, vecmath.Vec3{}, false
	}

	pdfDir := c.directionPDF(dir)
	if pdfDir == 0 {
		return 0, 0, vecmath.Vec3{}, false
	}
	// We = 1 / (A * cos^4(theta)) in PBRT's derivation for a pinhole
	// camera with unit image-plane distance; expressed here via
	// directionPDF which already carries the cos^3 term, so one more
	// factor of cosTheta (from the measurement's solid-angle-to-image
	// conversion) completes it.
	importance := pdfDir / cosTheta
	we = vecmath.New(importance, importance, importance)
	return px, py, we, true
}
