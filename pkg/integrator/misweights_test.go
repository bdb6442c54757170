package integrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrelrender/bdpt/pkg/pathcache"
)

func TestRemap0(t *testing.T) {
	assert.Equal(t, 1.0, remap0(0))
	assert.Equal(t, 2.5, remap0(2.5))
}

func TestBidirSelectDensity_ZeroWhenCacheEmpty(t *testing.T) {
	assert.Equal(t, 0.0, BidirSelectDensity(0, 1, 16))
}

func TestBidirSelectDensity_ScalesWithConnectionsAndLightPaths(t *testing.T) {
	assert.Equal(t, 2.0, BidirSelectDensity(8, 1, 16))
	assert.Equal(t, 4.0, BidirSelectDensity(8, 2, 16))
}

func TestEmitterHitMis_NoCompetingTechniques(t *testing.T) {
	// A one-vertex camera path (only the lens vertex, no surface hit yet)
	// has nothing to reciprocal-sum against,
	// so the balance heuristic should hand it the full weight.
	path := []pathcache.Vertex{{IsCamera: true}}
	assert.Equal(t, 1.0, EmitterHitMis(path, 0, true, 2.0, true, 16))
}

func TestEmitterHitMis_SplitsWeightWithCompetingStrategy(t *testing.T) {
	path := []pathcache.Vertex{
		{IsCamera: true},
		{AreaPdfForward: 1.0, AreaPdfReverse: 1.0, Material: nil},
	}
	weight := EmitterHitMis(path, 0, true, 2.0, true, 16)
	assert.Greater(t, weight, 0.0)
	assert.LessOrEqual(t, weight, 1.0)
}

func TestEmitterHitMis_PdfNextEventLowersWeight(t *testing.T) {
	path := []pathcache.Vertex{
		{IsCamera: true},
		{AreaPdfForward: 1.0, AreaPdfReverse: 1.0},
	}
	withoutNee := EmitterHitMis(path, 0, false, 0, false, 0)
	withNee := EmitterHitMis(path, 0.5, false, 0, false, 0)
	assert.Less(t, withNee, withoutNee)
}

func TestCameraPathReciprocals_EmptyPathIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CameraPathReciprocals(nil, 0, true, 2.0, true, 16))
}

func TestCameraPathReciprocals_DisabledTechniquesContributeNothing(t *testing.T) {
	path := []pathcache.Vertex{
		{IsCamera: true},
		{AreaPdfForward: 1.0, AreaPdfReverse: 1.0},
	}
	assert.Equal(t, 0.0, CameraPathReciprocals(path, len(path), false, 0, false, 0))
}

func TestLightPathReciprocals_FinalTermAlwaysAdded(t *testing.T) {
	path := []pathcache.Vertex{{AreaPdfForward: 1.0, AreaPdfReverse: 1.0, IsLight: true}}
	// Even with connections disabled, the fully telescoped reciprocal (the
	// next-event/direct-hit alternative) is always present.
	assert.Equal(t, 1.0, LightPathReciprocals(path, 1, false, 0))
}

func TestBidirConnectMis_HigherSelectDensityLowersWeight(t *testing.T) {
	path := []pathcache.Vertex{{IsCamera: true}, {}}
	lowDensity := BidirConnectMis(path, 2, 0, 0.001, true, 16)
	highDensity := BidirConnectMis(path, 2, 0, 0.5, true, 16)
	assert.Greater(t, lowDensity, highDensity)
}

func TestBidirConnectMis_ZeroSelectDensityIsFullWeight(t *testing.T) {
	path := []pathcache.Vertex{{IsCamera: true}, {}}
	assert.Equal(t, 1.0, BidirConnectMis(path, 2, 0, 0, true, 16))
}

func TestNextEventMis_HittingGatedByFlag(t *testing.T) {
	path := []pathcache.Vertex{
		{IsCamera: true},
		{AreaPdfForward: 1.0, AreaPdfReverse: 1.0},
	}
	withHitting := NextEventMis(path, 1.0, 0.5, true, false, 0, false, 0)
	withoutHitting := NextEventMis(path, 1.0, 0.5, false, false, 0, false, 0)
	assert.Less(t, withHitting, withoutHitting)
}

func TestLightTracerMis_BoundedToUnitInterval(t *testing.T) {
	path := []pathcache.Vertex{{IsLight: true, AreaPdfForward: 1.0, AreaPdfReverse: 1.0}}
	weight := LightTracerMis(path, 1, 1, 2, true, 2.0, 16)
	assert.Greater(t, weight, 0.0)
	assert.LessOrEqual(t, weight, 1.0)
}

func TestLightTracerMis_ZeroLightPathsIsFullWeight(t *testing.T) {
	path := []pathcache.Vertex{{IsLight: true}}
	assert.Equal(t, 1.0, LightTracerMis(path, 1, 1, 2, true, 0, 0))
}
