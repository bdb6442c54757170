// Package integrator implements the bidirectional path-tracing core:
// BidirBase, the MIS weight formulas, and the per-iteration light-path
// cache fill built on pkg/walk and pkg/pathcache. Grounded on
// pkg/integrator/bdpt.go
// (generateCameraSubpath/generateLightSubpath/extendPath) and
// pkg/integrator/bdpt_mis.go (calculateMISWeight and its helpers), which
// between them are the closest thing in the retrieval pack to this
// module's core, even though neither file compiles as checked in (see
// DESIGN.md) and the vertex-cache architecture here replaces their
// per-pixel-only light subpath.
package integrator

import (
	"github.com/kestrelrender/bdpt/pkg/pathcache"
	"github.com/kestrelrender/bdpt/pkg/sampling"
)

// FillReversePdfs walks a freshly generated subpath backward, filling in
// each vertex's AreaPdfReverse: the area-measure density that vertex would
// have had if the walk had sampled it while moving in the opposite
// direction along the path. This mirrors PBRT's second pass over
// Vertex::pdfRev (and bdpt_mis.go calculateVertexPdf, which
// performs the same computation on demand rather than eagerly — this
// module does it eagerly once per subpath since every MIS evaluation for
// every (s,t) pair needs it).
func FillReversePdfs(vertices []pathcache.Vertex) {
	n := len(vertices)
	for i := n - 2; i >= 1; i-- {
		cur := &vertices[i]
		next := &vertices[i+1]
		if cur.Material == nil || cur.IsSpecular {
			continue
		}
		prev := &vertices[i-1]
		// wo points toward the vertex the walk actually came from when
		// it continued forward (next); wi points toward prev, the
		// direction a reverse-running walk would have sampled. The
		// density of sampling wi given wo is exactly WorldEval's pdfFwd
		// for this swapped pair, i.e. this vertex's reverse density.
		woWorld := next.Point.Sub(cur.Point)
		wiWorld := prev.Point.Sub(cur.Point)
		_, revSolidAngle, _ := cur.Material.WorldEval(cur.Normal, woWorld.Normalize(), wiWorld.Normalize())
		cur.AreaPdfReverse = sampling.SolidAngleToSurfaceArea(revSolidAngle, cur.Point, prev.Point, prev.Normal)
	}
}
