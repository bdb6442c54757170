// Package pathcache implements the per-iteration light-vertex cache: a
// dense array of every light-subpath vertex generated across all light
// paths in one iteration, plus a uniform
// selector over that array so a camera subpath's bidirectional-connection
// step can pick a light vertex in O(1) instead of re-walking a light path
// per camera vertex. This departs from bdpt.go, which only
// ever holds one light subpath (the one paired with the current pixel) —
// the cache is the core architectural change over the prior implementation.
package pathcache

import "github.com/kestrelrender/bdpt/pkg/vecmath"

// Vertex is one node of a camera or light subpath. Both the forward-sampled pdf (the density this vertex was
// actually sampled with, in the direction the walk was moving) and the
// reverse pdf (the density the walk would have had if run the other
// direction) are stored in area measure, matching PBRT's Vertex::pdfFwd /
// pdfRev convention that bdpt_mis.go borrows directly.
type Vertex struct {
	Point  vecmath.Point3
	Normal vecmath.Vec3

	// Material is nil for emitter-only or camera vertices.
	Material MaterialAt
	Emitter  EmitterAt
	Camera   CameraAt

	IsCamera     bool
	IsLight      bool
	IsSpecular   bool // vertex's incoming lobe was a delta distribution
	IsInfinite   bool // vertex represents a point "at infinity" (environment)

	// IncomingDirection points from the previous vertex toward this one
	// (world space), used to evaluate the material/emitter at this vertex
	// against a freshly sampled outgoing direction during connection.
	IncomingDirection vecmath.Vec3

	// Beta is the accumulated path throughput up to and including this
	// vertex, already divided by the forward pdf chain.
	Beta vecmath.Vec3

	// AreaPdfForward/AreaPdfReverse are area-measure densities: the
	// probability of having sampled this vertex continuing the walk in
	// the forward direction, and the probability of having sampled it if
	// the walk had instead been run starting from the far end of the
	// path (filled in once per subpath by integrator.FillReversePdfs,
	// right after the walk that built it).
	AreaPdfForward float64
	AreaPdfReverse float64

	// EmittedLight caches EmittedRadiance at this vertex's point if it
	// lies on an emitter, avoiding a repeated emitter lookup when both
	// the s==0 strategy and a bidirectional connection need it.
	EmittedLight vecmath.Vec3
}

// MaterialAt is the minimal surface-shading contract a vertex needs: world
// space BSDF sampling and evaluation plus a delta-ness check, satisfied by
// *bsdf.GenericMaterial.
type MaterialAt interface {
	WorldSample(n, woWorld vecmath.Vec3, u1, u2, u3 float64) (wiWorld, f vecmath.Vec3, pdfFwd, pdfRev float64, isDelta bool)
	WorldEval(n, woWorld, wiWorld vecmath.Vec3) (f vecmath.Vec3, pdfFwd, pdfRev float64)
	IsDelta() bool
}

// EmitterAt is the minimal emitter contract a vertex needs once it has
// landed on a light's surface, satisfied by emitter.Emitter.
type EmitterAt interface {
	EmittedRadiance(point, normal, dir vecmath.Vec3) vecmath.Vec3
	PdfArea(from, point, normal vecmath.Vec3) float64
	PdfRay(point, normal, dir vecmath.Vec3) (pdfArea, pdfDir float64)
	TotalPower() float64
	IsInfinite() bool
}

// CameraAt is the minimal camera contract a vertex needs once it has
// landed on the camera's lens, satisfied by camera.Perspective.
type CameraAt interface {
	CalculateRayPDFs(origin, dir vecmath.Vec3) (pdfArea, pdfDir float64)
	SampleResponse(point vecmath.Vec3) (rasterX, rasterY int, we vecmath.Vec3, onFilm bool)
}

// IsConnectible reports whether a bidirectional connection can terminate
// at this vertex — false for vertices whose incoming scatter event was a
// delta distribution, since a delta BSDF has zero density in any direction
// other than the one it sampled.
func (v *Vertex) IsConnectible() bool {
	return !v.IsSpecular
}
