package integrator

import "github.com/kestrelrender/bdpt/pkg/pathcache"

// remap0 avoids a zero forward/reverse pdf poisoning a reciprocal-sum
// ratio with a division by zero, mirroring bdpt_mis.go
// remap0 helper.
func remap0(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// BidirSelectDensity converts the cache's flat uniform vertex-selection
// density (1/cacheSize) into the density a bidirectional connection
// technique competes with inside the balance heuristic: every one of the
// NumConnections attempts drawn per eligible camera vertex, across all
// NumLightPaths light subpaths folded into the cache, counts as an
// independent chance of having produced the same full path. Zero whenever
// the cache is empty, which is what short-circuits the connection terms
// out of the other three MIS denominators below; the light-tracer term is
// gated by numLightPaths instead.
func BidirSelectDensity(cacheSize, numConnections, numLightPaths int) float64 {
	if cacheSize == 0 {
		return 0
	}
	return (1.0 / float64(cacheSize)) * float64(numConnections) * float64(numLightPaths)
}

// CameraPathReciprocals walks a camera subpath from the connection point
// back to the lens, accumulating the balance-heuristic reciprocal-sum
// terms for every competing strategy that could have produced the same
// full path by sampling one fewer camera vertex and one more light vertex
// instead (PBRT's sumRi over the camera side; grounded on
// calculateMISCameraVertexPdfs in bdpt_mis.go). Each
// connectible step competes only when EnableConnections is set, scaled by
// selectDensity so it lands in the same units as the other three call
// sites below. If enableLightTracer is set, one further step continues the
// chain all the way to the lens vertex itself (index 0, never visited by
// the loop since a connection can't terminate there) and adds the
// light-tracer strategy's competing term, scaled by numLightPaths instead
// of selectDensity since a light tracer splat isn't drawn from the cache.
func CameraPathReciprocals(cameraPath []pathcache.Vertex, t int, enableConnections bool, selectDensity float64, enableLightTracer bool, numLightPaths int) float64 {
	sum := 0.0
	ri := 1.0
	for i := t - 1; i >= 1; i-- {
		ri *= remap0(cameraPath[i].AreaPdfReverse) / remap0(cameraPath[i].AreaPdfForward)
		if enableConnections && selectDensity > 0 && cameraPath[i].IsConnectible() && cameraPath[i-1].IsConnectible() {
			sum += ri * selectDensity
		}
	}
	if enableLightTracer && numLightPaths > 0 && t >= 2 {
		ri *= remap0(cameraPath[0].AreaPdfReverse) / remap0(cameraPath[0].AreaPdfForward)
		sum += ri * float64(numLightPaths)
	}
	return sum
}

// LightPathReciprocals is CameraPathReciprocals' mirror image over a light
// subpath, grounded on calculateMISLightVertexPdfs in bdpt_mis.go. The
// fully telescoped reciprocal (after the loop reaches the emitter root at
// i==0) is always added once, unconditionally: it's the density of this
// same full path having arisen from next-event estimation or a direct
// emitter hit rather than a bidirectional connection, a competing
// technique that doesn't depend on EnableConnections. A delta-emitter
// predecessor would stop a step from counting as connectible (no such
// emitters ship in this core — see DESIGN.md — so in practice every step
// counts as long as its own incoming lobe wasn't a delta distribution).
func LightPathReciprocals(lightPath []pathcache.Vertex, s int, enableConnections bool, selectDensity float64) float64 {
	sum := 0.0
	ri := 1.0
	for i := s - 1; i >= 0; i-- {
		ri *= remap0(lightPath[i].AreaPdfReverse) / remap0(lightPath[i].AreaPdfForward)
		predecessorDelta := i > 0 && lightPath[i-1].IsSpecular
		connectible := lightPath[i].IsConnectible() && !predecessorDelta
		if enableConnections && selectDensity > 0 && i > 0 && connectible {
			sum += ri * selectDensity
		}
	}
	sum += ri
	return sum
}

// EmitterHitMis weights the s==0 strategy: a camera subpath that directly
// hits an emitter's surface. Competing techniques are every shorter camera
// subpath connected to a light vertex instead (CameraPathReciprocals), and
// next-event estimation from the preceding vertex having sampled this
// exact point on this exact emitter (pdfNextEvent, zero when NEE wasn't
// attempted from there — see BidirBase.nextEventPdfFor).
func EmitterHitMis(cameraPath []pathcache.Vertex, pdfNextEvent float64, enableConnections bool, selectDensity float64, enableLightTracer bool, numLightPaths int) float64 {
	t := len(cameraPath)
	if t == 0 {
		return 1
	}
	pdfThis := remap0(cameraPath[t-1].AreaPdfForward)
	sum := CameraPathReciprocals(cameraPath, t, enableConnections, selectDensity, enableLightTracer, numLightPaths)
	if pdfNextEvent > 0 {
		sum += pdfNextEvent / pdfThis
	}
	return 1 / (1 + sum)
}

// NextEventMis weights a next-event-estimation sample thrown from the last
// vertex of cameraPath toward a light point. pdfNextEvent is that sample's
// own density (light selection times SampleArea's pdf); pdfHit is the area
// density the camera path's own BSDF would have assigned to scattering
// toward that same point, the competing emitter-hit strategy, folded in
// only when enableHitting is set. CameraPathReciprocals is computed
// relative to the originating vertex's own forward pdf and then rebased
// onto pdfNextEvent, since that's the technique whose weight this call
// computes.
func NextEventMis(cameraPath []pathcache.Vertex, pdfNextEvent, pdfHit float64, enableHitting, enableConnections bool, selectDensity float64, enableLightTracer bool, numLightPaths int) float64 {
	t := len(cameraPath)
	if t == 0 || pdfNextEvent == 0 {
		return 0
	}
	pdfThis := remap0(cameraPath[t-1].AreaPdfForward)
	camSum := CameraPathReciprocals(cameraPath, t, enableConnections, selectDensity, enableLightTracer, numLightPaths)
	sum := camSum * pdfThis / remap0(pdfNextEvent)
	if enableHitting {
		sum += pdfHit / remap0(pdfNextEvent)
	}
	return 1 / (1 + sum)
}

// BidirConnectMis weights a general (s,t) bidirectional connection between
// a camera subpath vertex and a vertex drawn from the shared light-vertex
// cache. lightReciprocal is the light side's already-computed
// LightPathReciprocals; the camera side is computed here with the same
// selectDensity so both halves of the sum sit in the same units as
// EmitterHitMis/NextEventMis/LightTracerMis.
func BidirConnectMis(cameraPath []pathcache.Vertex, t int, lightReciprocal float64, selectDensity float64, enableLightTracer bool, numLightPaths int) float64 {
	if selectDensity == 0 {
		return 1
	}
	sum := CameraPathReciprocals(cameraPath, t, true, selectDensity, enableLightTracer, numLightPaths)
	sum += lightReciprocal
	return 1 / (1 + sum)
}

// LightTracerMis weights the t==1 strategy: a light subpath vertex
// connected directly to the camera lens (a "light tracer" splat), the
// strategy evaluateLightTracingStrategy stubbed out entirely (bdpt.go:
// "skip for now"). cameraVertexAreaPdfForward/Reverse are the lens's own
// forward (aperture) and reverse (the density a BSDF-sampled walk starting
// at the light vertex would have assigned to landing on the lens) area
// pdfs, folded into the same reciprocal sum LightPathReciprocals walks
// back from, then the whole sum is rebased onto NumLightPaths since a
// light tracer splat is drawn once per light path rather than once per
// cache entry.
func LightTracerMis(lightPath []pathcache.Vertex, s int, cameraVertexAreaPdfForward, cameraVertexAreaPdfReverse float64, enableConnections bool, selectDensity float64, numLightPaths int) float64 {
	if numLightPaths == 0 {
		return 1
	}
	sum := LightPathReciprocals(lightPath, s, enableConnections, selectDensity)
	sum += remap0(cameraVertexAreaPdfReverse) / remap0(cameraVertexAreaPdfForward)
	return 1 / (1 + sum/float64(numLightPaths))
}
