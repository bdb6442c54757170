// Package framebuffer implements FrameBuffer, a fixed-resolution image
// accumulator that both the camera-subpath pass
// (direct per-pixel writes) and the light-tracer splat pass (scattered
// writes to arbitrary pixels from other goroutines) write into
// concurrently, using lock-free compare-and-swap accumulation rather than
// a mutex per pixel, plus an online (Welford) per-pixel variance estimate.
// Grounded on pkg/renderer/splat_queue.go (mutex-protected
// splat list — the predecessor this module's lock-free version improves
// on) and pkg/renderer/stats.go (PixelStats, whose sum/sum-of-squares
// variance is replaced here with true Welford online variance for
// numerical stability across long-running accumulation).
package framebuffer

import (
	"math"
	"sync/atomic"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// pixel holds one pixel's accumulator state. Color channels are stored as
// atomic uint64 bit patterns of a float64 so AddSample/Splat can update
// them from any goroutine with a CAS retry loop instead of a mutex.
type pixel struct {
	r, g, b   atomic.Uint64
	mean      atomic.Uint64 // Welford mean of luminance
	m2        atomic.Uint64 // Welford sum of squared deviations
	count     atomic.Uint64
}

// FrameBuffer is a fixed Width x Height grid of pixel accumulators.
type FrameBuffer struct {
	Width, Height int
	pixels        []pixel
	iteration     atomic.Uint64
}

func New(width, height int) *FrameBuffer {
	return &FrameBuffer{Width: width, Height: height, pixels: make([]pixel, width*height)}
}

func (fb *FrameBuffer) index(x, y int) (int, bool) {
	if x < 0 || y < 0 || x >= fb.Width || y >= fb.Height {
		return 0, false
	}
	return y*fb.Width + x, true
}

func addFloat64(a *atomic.Uint64, delta float64) {
	for {
		old := a.Load()
		newV := math.Float64frombits(old) + delta
		if a.CompareAndSwap(old, math.Float64bits(newV)) {
			return
		}
	}
}

// AddSample accumulates one camera-subpath sample's color at (x, y) and
// updates the pixel's Welford luminance variance estimator. Safe to call
// concurrently from any worker rendering a disjoint set of pixels, and
// safe even if two workers race on the same pixel (which the light-tracer
// splat pass always does).
func (fb *FrameBuffer) AddSample(x, y int, color vecmath.Vec3) {
	idx, ok := fb.index(x, y)
	if !ok || color.HasNaN() {
		return
	}
	p := &fb.pixels[idx]
	addFloat64(&p.r, color.X)
	addFloat64(&p.g, color.Y)
	addFloat64(&p.b, color.Z)
	fb.updateVariance(p, color.Luminance())
	p.count.Add(1)
}

// Splat adds a light-tracer contribution to an arbitrary pixel — the same
// accumulation path as AddSample, kept as a separate method name because
// "splatting" is a distinct conceptual operation even though the
// underlying accumulator is shared.
func (fb *FrameBuffer) Splat(x, y int, color vecmath.Vec3) {
	fb.AddSample(x, y, color)
}

// updateVariance performs one Welford online-variance update. Because
// multiple goroutines can race here, the mean and m2 are each updated
// with their own CAS retry loop — a genuine two-word CAS isn't available.
// The whole computation is retried against the freshly observed count and
// mean until the compare-and-swap on mean succeeds; m2 then gets its
// increment added in a separate loop that retries only that add. This
// trades a small amount of re-computation for avoiding a mutex on the
// per-pixel hot path.
func (fb *FrameBuffer) updateVariance(p *pixel, luminance float64) {
	for {
		n := float64(p.count.Load() + 1)
		oldMeanBits := p.mean.Load()
		oldMean := math.Float64frombits(oldMeanBits)
		delta := luminance - oldMean
		newMean := oldMean + delta/n
		if !p.mean.CompareAndSwap(oldMeanBits, math.Float64bits(newMean)) {
			continue
		}
		delta2 := luminance - newMean
		for {
			oldM2Bits := p.m2.Load()
			oldM2 := math.Float64frombits(oldM2Bits)
			newM2 := oldM2 + delta*delta2
			if p.m2.CompareAndSwap(oldM2Bits, math.Float64bits(newM2)) {
				return
			}
		}
	}
}

// Color returns the current average color for (x, y).
func (fb *FrameBuffer) Color(x, y int) vecmath.Vec3 {
	idx, ok := fb.index(x, y)
	if !ok {
		return vecmath.Vec3{}
	}
	p := &fb.pixels[idx]
	n := float64(p.count.Load())
	if n == 0 {
		return vecmath.Vec3{}
	}
	return vecmath.New(
		math.Float64frombits(p.r.Load())/n,
		math.Float64frombits(p.g.Load())/n,
		math.Float64frombits(p.b.Load())/n,
	)
}

// Variance returns the current unbiased sample variance of luminance at
// (x, y), or 0 if fewer than two samples have landed there.
func (fb *FrameBuffer) Variance(x, y int) float64 {
	idx, ok := fb.index(x, y)
	if !ok {
		return 0
	}
	p := &fb.pixels[idx]
	n := p.count.Load()
	if n < 2 {
		return 0
	}
	return math.Float64frombits(p.m2.Load()) / float64(n-1)
}

func (fb *FrameBuffer) SampleCount(x, y int) int {
	idx, ok := fb.index(x, y)
	if !ok {
		return 0
	}
	return int(fb.pixels[idx].count.Load())
}

// StartIteration marks the beginning of a new full-image iteration,
// incrementing the iteration counter observers can read for progress
// reporting.
func (fb *FrameBuffer) StartIteration() uint64 {
	return fb.iteration.Add(1)
}

func (fb *FrameBuffer) Iteration() uint64 { return fb.iteration.Load() }

// EndIteration is a no-op hook kept for symmetry with StartIteration and
// for callers (the preview sink) that want a clear "this iteration's
// writes are all visible now" synchronization point — every AddSample/
// Splat call already commits its own CAS before returning, so there is no
// deferred flush to perform here.
func (fb *FrameBuffer) EndIteration() {}
