package pathcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCache_AppendAndMerge(t *testing.T) {
	a := NewCache(2, 4)
	a.AppendPath([]Vertex{{}, {}})
	b := NewCache(2, 4)
	b.AppendPath([]Vertex{{}, {}, {}})

	a.Merge(b)
	assert.Equal(t, 5, a.Size())
	assert.Equal(t, []PathIndex{{Start: 0, Len: 2}, {Start: 2, Len: 3}}, a.Paths)
}

func TestCache_Reset(t *testing.T) {
	c := NewCache(1, 4)
	c.AppendPath([]Vertex{{}})
	c.Reset()
	assert.Equal(t, 0, c.Size())
	assert.Equal(t, 0, len(c.Paths))
}

func TestSelector_DensityIsUniform(t *testing.T) {
	c := NewCache(1, 4)
	c.AppendPath([]Vertex{{}, {}, {}, {}})
	sel := NewSelector(c)
	assert.InDelta(t, 0.25, sel.SelectDensity(), 1e-9)

	_, idx, pdf := sel.Select(0.9)
	assert.Equal(t, 3, idx)
	assert.InDelta(t, 0.25, pdf, 1e-9)
}

func TestSelector_EmptyCache(t *testing.T) {
	c := NewCache(1, 4)
	sel := NewSelector(c)
	v, idx, pdf := sel.Select(0.5)
	assert.Nil(t, v)
	assert.Equal(t, -1, idx)
	assert.Equal(t, 0.0, pdf)
}
