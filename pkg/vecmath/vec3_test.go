package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_Add(t *testing.T) {
	got := New(1, 2, 3).Add(New(4, 5, 6))
	assert.Equal(t, New(5, 7, 9), got)
}

func TestVec3_Normalize(t *testing.T) {
	v := New(3, 0, 4).Normalize()
	assert.InDelta(t, 1.0, v.Length(), 1e-12)
	assert.InDelta(t, 0.6, v.X, 1e-12)
	assert.InDelta(t, 0.8, v.Z, 1e-12)
}

func TestVec3_NormalizeZero(t *testing.T) {
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
}

func TestVec3_DotOrthogonal(t *testing.T) {
	assert.Equal(t, 0.0, New(1, 0, 0).Dot(New(0, 1, 0)))
}

func TestVec3_CrossRightHanded(t *testing.T) {
	got := New(1, 0, 0).Cross(New(0, 1, 0))
	assert.Equal(t, New(0, 0, 1), got)
}

func TestVec3_HasNaN(t *testing.T) {
	assert.True(t, New(math.NaN(), 0, 0).HasNaN())
	assert.True(t, New(math.Inf(1), 0, 0).HasNaN())
	assert.False(t, New(1, 2, 3).HasNaN())
}

func TestVec3_FaceForward(t *testing.T) {
	n := New(0, 1, 0)
	assert.Equal(t, n.Negate(), n.FaceForward(New(0, -1, 0)))
	assert.Equal(t, n, n.FaceForward(New(0, 1, 0)))
}

func TestRay_At(t *testing.T) {
	r := NewRay(New(0, 0, 0), New(1, 0, 0))
	assert.Equal(t, New(3, 0, 0), r.At(3))
}

func TestNewRayTo(t *testing.T) {
	r, dist := NewRayTo(New(0, 0, 0), New(0, 0, 5))
	assert.InDelta(t, 5.0, dist, 1e-12)
	assert.Equal(t, New(0, 0, 1), r.Direction)
}
