package pathcache

// PathIndex records where a single light subpath's vertices live within
// the cache's flat Vertices slice, so BidirConnect can walk "the rest of
// this path" when forming multi-vertex connections, and so per-path
// reciprocal sums can be computed path-by-path even though storage is
// flat.
type PathIndex struct {
	Start, Len int
}

// Cache is the per-iteration light-vertex cache: every
// light subpath generated this iteration, flattened into one contiguous
// array, plus enough bookkeeping to select a uniformly random vertex
// across the whole array in O(1) and to recover which path and position
// within that path a given flat index belongs to.
type Cache struct {
	Vertices []Vertex
	Paths    []PathIndex

	NumLightPaths int
}

// NewCache preallocates storage for numPaths subpaths of up to maxDepth
// vertices each, avoiding per-path slice growth during the parallel fill.
func NewCache(numPaths, maxDepth int) *Cache {
	return &Cache{
		Vertices:      make([]Vertex, 0, numPaths*maxDepth),
		Paths:         make([]PathIndex, 0, numPaths),
		NumLightPaths: numPaths,
	}
}

// Reset clears the cache for reuse across iterations without releasing the
// backing array, matching per-pass buffer reuse in
// pkg/renderer/progressive.go.
func (c *Cache) Reset() {
	c.Vertices = c.Vertices[:0]
	c.Paths = c.Paths[:0]
}

// AppendPath appends one light subpath's vertices as a contiguous run and
// records its PathIndex. Not safe for concurrent use from multiple
// goroutines on the same Cache — callers append to per-worker caches and
// merge them with Merge once the parallel light-path pass completes.
func (c *Cache) AppendPath(vertices []Vertex) {
	start := len(c.Vertices)
	c.Vertices = append(c.Vertices, vertices...)
	c.Paths = append(c.Paths, PathIndex{Start: start, Len: len(vertices)})
}

// Merge appends another worker-local cache's paths and vertices onto this
// one, renumbering path offsets, the join step after the parallel light
// subpath generation region.
func (c *Cache) Merge(other *Cache) {
	offset := len(c.Vertices)
	c.Vertices = append(c.Vertices, other.Vertices...)
	for _, p := range other.Paths {
		c.Paths = append(c.Paths, PathIndex{Start: p.Start + offset, Len: p.Len})
	}
}

func (c *Cache) Size() int { return len(c.Vertices) }

// PathContaining returns the light subpath that owns the vertex at flat
// index idx, plus that vertex's position within it, letting a
// bidirectional connection walk the full chain of reciprocal-sum terms
// back to the light's origin instead of treating the connected vertex in
// isolation.
func (c *Cache) PathContaining(idx int) (path []Vertex, position int) {
	for _, p := range c.Paths {
		if idx >= p.Start && idx < p.Start+p.Len {
			return c.Vertices[p.Start : p.Start+p.Len], idx - p.Start
		}
	}
	return nil, -1
}

// Selector draws a uniformly random vertex across the entire cache, the
// mechanism BidirBase's connection step uses instead of re-walking a
// dedicated light path per camera vertex.
type Selector struct {
	cache *Cache
}

func NewSelector(cache *Cache) *Selector { return &Selector{cache: cache} }

// Select returns a vertex and its selection density, which is uniform at
// 1/cacheSize — the density BidirConnectMis's BidirSelectDensity term is
// built from.
func (s *Selector) Select(u float64) (v *Vertex, index int, pdf float64) {
	n := s.cache.Size()
	if n == 0 {
		return nil, -1, 0
	}
	idx := int(u * float64(n))
	if idx >= n {
		idx = n - 1
	}
	return &s.cache.Vertices[idx], idx, 1.0 / float64(n)
}

// SelectDensity is 1/cacheSize, exposed directly for callers (MIS weight
// code) that already know they're forming a connection and just need the
// density term without drawing a sample.
func (s *Selector) SelectDensity() float64 {
	n := s.cache.Size()
	if n == 0 {
		return 0
	}
	return 1.0 / float64(n)
}
