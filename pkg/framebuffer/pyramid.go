package framebuffer

import "github.com/kestrelrender/bdpt/pkg/vecmath"

// techniqueKey identifies one (cameraPathLength, lightPathLength) pair in
// the technique pyramid, an observable debug output for inspecting how
// much each bidirectional strategy contributes.
type techniqueKey struct {
	CameraLen, LightLen int
}

// Pyramid accumulates the raw (un-weighted) and MIS-weighted contribution
// of each individual (s, t) bidirectional strategy into its own small
// FrameBuffer, letting a caller inspect how much of the final image each
// strategy actually contributed — the classic bidirectional
// path-tracer debug visualization. Populated only when a caller opts in
// (it roughly doubles memory use per technique), so a production render
// never pays for it.
type Pyramid struct {
	width, height int
	raw           map[techniqueKey]*FrameBuffer
	weighted      map[techniqueKey]*FrameBuffer
}

func NewPyramid(width, height int) *Pyramid {
	return &Pyramid{
		width: width, height: height,
		raw:      make(map[techniqueKey]*FrameBuffer),
		weighted: make(map[techniqueKey]*FrameBuffer),
	}
}

func (p *Pyramid) bufferFor(m map[techniqueKey]*FrameBuffer, key techniqueKey) *FrameBuffer {
	fb, ok := m[key]
	if !ok {
		fb = New(p.width, p.height)
		m[key] = fb
	}
	return fb
}

// Record adds one strategy's contribution to both its raw and
// MIS-weighted technique buffers.
func (p *Pyramid) Record(x, y, cameraLen, lightLen int, raw, weighted vecmath.Vec3) {
	p.Raw(cameraLen, lightLen).AddSample(x, y, raw)
	p.Weighted(cameraLen, lightLen).AddSample(x, y, weighted)
}

// Techniques returns every (s, t) pair that has received at least one
// contribution so far, used by the CLI to write one image per technique.
func (p *Pyramid) Techniques() []techniqueKey {
	keys := make([]techniqueKey, 0, len(p.weighted))
	for k := range p.weighted {
		keys = append(keys, k)
	}
	return keys
}

// Weighted returns the accumulated MIS-weighted buffer for one technique.
func (p *Pyramid) Weighted(cameraLen, lightLen int) *FrameBuffer {
	return p.bufferFor(p.weighted, techniqueKey{CameraLen: cameraLen, LightLen: lightLen})
}

// Raw returns the accumulated un-weighted buffer for one technique.
func (p *Pyramid) Raw(cameraLen, lightLen int) *FrameBuffer {
	return p.bufferFor(p.raw, techniqueKey{CameraLen: cameraLen, LightLen: lightLen})
}
