// Package rng implements a hash-based counter RNG: no mutable state beyond
// a monotonically increasing counter, so two calls with the same
// (baseSeed, stream, sequence) always produce the same stream regardless
// of which worker goroutine issues them or in what order. This is what lets
// the renderer reproduce a given pixel's samples deterministically even
// though rendering itself runs in parallel — something
// math/rand.Rand per-tile seeding (pkg/renderer/progressive.go
// Tile.Random) cannot offer once work is split more finely than a tile.
package rng

// Source is a counter stream hashed with SplitMix64's mix. It is cheap enough
// to construct per path (no allocation, no syscall) and is safe to copy.
type Source struct {
	baseSeed uint64
	stream   uint64
	counter  uint64
}

// New builds a stream identified by (baseSeed, stream). baseSeed is
// typically derived from a run-level seed plus the pixel or light-path
// index; stream distinguishes independent sub-streams drawn within the
// same path (camera subpath vs. light subpath vs. NEE light selection).
func New(baseSeed, stream uint64) *Source {
	return &Source{baseSeed: baseSeed, stream: stream}
}

// mix is SplitMix64's finalizer, used here as the hash core.
func mix(z uint64) uint64 {
	z += 0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func (s *Source) next() uint64 {
	s.counter++
	h := s.baseSeed
	h = mix(h ^ mix(s.stream))
	h = mix(h ^ mix(s.counter))
	return h
}

// Uint64 returns the next raw 64-bit output.
func (s *Source) Uint64() uint64 { return s.next() }

// Float64 returns a value in [0, 1) with 53 bits of entropy, matching the
// precision math/rand.Float64 provides.
func (s *Source) Float64() float64 {
	return float64(s.next()>>11) * (1.0 / (1 << 53))
}

// Float64Pair returns two independent uniforms in one call, the shape
// every 2D sampling warp in pkg/sampling consumes.
func (s *Source) Float64Pair() (float64, float64) {
	return s.Float64(), s.Float64()
}

// IntN returns a uniform integer in [0, n).
func (s *Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(s.next() % uint64(n))
}

// Sub derives an independent, deterministic child stream — used to give a
// light subpath's NEE draws their own stream separate from the subpath's
// extension draws without threading extra state through the walk.
func (s *Source) Sub(tag uint64) *Source {
	return New(mix(s.baseSeed^tag), s.stream+1)
}

// PixelSeed folds a 2D pixel coordinate and iteration index into a single
// base seed, the convention every camera-subpath entry point uses.
func PixelSeed(runSeed uint64, x, y, iteration int) uint64 {
	h := mix(runSeed ^ uint64(x))
	h = mix(h ^ uint64(y)<<32)
	return mix(h ^ uint64(iteration))
}

// LightPathSeed folds a light-path index and iteration into a base seed for
// the light subpath that fills the per-iteration vertex cache.
func LightPathSeed(runSeed uint64, pathIndex, iteration int) uint64 {
	h := mix(runSeed ^ uint64(pathIndex)<<1)
	return mix(h ^ uint64(iteration)<<33)
}
