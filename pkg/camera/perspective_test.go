package camera

import (
	"testing"

	"github.com/kestrelrender/bdpt/pkg/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestPerspective_CenterPixelPointsForward(t *testing.T) {
	c := NewPerspective(vecmath.New(0, 0, 0), vecmath.New(0, 0, -1), vecmath.New(0, 1, 0), 60, 400, 300)
	ray, pdfArea, pdfDir := c.GenerateRay(200, 150)
	assert.InDelta(t, 1.0, pdfArea, 1e-9)
	assert.Greater(t, pdfDir, 0.0)
	assert.InDelta(t, 0, ray.Direction.X, 1e-6)
	assert.InDelta(t, 0, ray.Direction.Y, 1e-6)
	assert.Less(t, ray.Direction.Z, 0.0)
}

func TestPerspective_SampleResponseRoundTrip(t *testing.T) {
	c := NewPerspective(vecmath.New(0, 0, 0), vecmath.New(0, 0, -1), vecmath.New(0, 1, 0), 60, 400, 300)
	ray, _, _ := c.GenerateRay(200.5, 150.5)
	point := ray.At(5)
	px, py, we, onFilm := c.SampleResponse(point)
	assert.True(t, onFilm)
	assert.InDelta(t, 200, px, 2)
	assert.InDelta(t, 150, py, 2)
	assert.Greater(t, we.X, 0.0)
}

func TestPerspective_BehindCameraMisses(t *testing.T) {
	c := NewPerspective(vecmath.New(0, 0, 0), vecmath.New(0, 0, -1), vecmath.New(0, 1, 0), 60, 400, 300)
	_, _, _, onFilm := c.SampleResponse(vecmath.New(0, 0, 5))
	assert.False(t, onFilm)
}
