package bsdf

import (
	"math"

	"github.com/kestrelrender/bdpt/pkg/sampling"
	"github.com/kestrelrender/bdpt/pkg/vecmath"
)

// weightedLobe pairs a lobe with its selection probability in the
// material's sampling CDF.
type weightedLobe struct {
	lobe   Lobe
	weight float64
}

// GenericMaterial is the uber-material type: a weighted
// composition of lobes (diffuse, retro folded into Diffuse, diffuse
// transmission, microfacet reflection, microfacet transmission) sampled by
// a discrete CDF over the lobes' selection weights, evaluated as the sum
// of every lobe's contribution (matching area-light-style "evaluate all,
// sample one" multi-lobe BSDF models). Grounded structurally on the
// pkg/material/layered.go composition of two materials, but
// generalized from two fixed slots to an arbitrary lobe list with
// normalized weights.
type GenericMaterial struct {
	lobes     []weightedLobe
	totalW    float64
	worldFrom sampling.Frame
}

// NewGenericMaterial builds a material from a lobe list and per-lobe
// selection weights; weights are normalized internally so callers can pass
// raw albedo-derived magnitudes.
func NewGenericMaterial(lobes []Lobe, weights []float64) *GenericMaterial {
	m := &GenericMaterial{}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		total = 1
	}
	for i, l := range lobes {
		m.lobes = append(m.lobes, weightedLobe{lobe: l, weight: weights[i] / total})
	}
	m.totalW = 1
	return m
}

// Eval evaluates the full BSDF (sum of every non-delta lobe's F) for a
// shading-space (wo, wi) pair, plus the aggregate forward/reverse
// solid-angle pdf the random walk needs for MIS bookkeeping: the pdf is
// the weight-averaged sum of each lobe's own pdf, the standard multi-lobe
// BSDF convention.
func (m *GenericMaterial) Eval(wo, wi vecmath.Vec3) (f vecmath.Vec3, pdfFwd, pdfRev float64) {
	for _, wl := range m.lobes {
		if wl.lobe.IsDelta() {
			continue
		}
		f = f.Add(wl.lobe.F(wo, wi).Scale(wl.weight))
		fwd, rev := wl.lobe.PDF(wo, wi)
		pdfFwd += wl.weight * fwd
		pdfRev += wl.weight * rev
	}
	return f, pdfFwd, pdfRev
}

// Sample draws a direction from one lobe selected by u1 (the lobe-selector
// uniform), using u2,u3 to drive that lobe's own 2D sample. It returns the
// sampled direction, the material's full F at that direction (summed
// across every lobe, including the ones not selected — required for an
// unbiased multi-lobe estimator), and the aggregate forward/reverse pdf.
func (m *GenericMaterial) Sample(wo vecmath.Vec3, u1, u2, u3 float64) (wi vecmath.Vec3, f vecmath.Vec3, pdfFwd, pdfRev float64, isDelta bool) {
	if len(m.lobes) == 0 {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, 0, false
	}
	acc := 0.0
	idx := len(m.lobes) - 1
	for i, wl := range m.lobes {
		acc += wl.weight
		if u1 < acc {
			idx = i
			break
		}
	}
	chosen := m.lobes[idx]
	sampledWi, _, chosenPdf, delta := chosen.lobe.Sample(wo, u2, u3)
	if sampledWi.IsZero() && chosenPdf == 0 && !delta {
		return vecmath.Vec3{}, vecmath.Vec3{}, 0, 0, false
	}

	if delta {
		// A delta lobe contributes its value directly; other lobes have
		// zero density at an exact delta direction, so the material's F
		// is just the chosen lobe's value and its pdf is treated as the
		// lobe's own weight (mirrors IsSpecular short
		// circuit in material/interfaces.go ScatterResult).
		_, fVal, _, _ := chosen.lobe.Sample(wo, u2, u3)
		return sampledWi, fVal, chosen.weight, chosen.weight, true
	}

	f, pdfFwd, pdfRev = m.Eval(wo, sampledWi)
	if pdfFwd == 0 {
		pdfFwd = chosen.weight * chosenPdf
	}
	return sampledWi, f, clampPdf(pdfFwd), clampPdf(pdfRev), false
}

// WorldSample and WorldEval convert world-space directions into the
// material's shading frame around a surface normal, the entry points the
// random walk engine (pkg/walk) actually calls.
func (m *GenericMaterial) WorldSample(n, woWorld vecmath.Vec3, u1, u2, u3 float64) (wiWorld vecmath.Vec3, f vecmath.Vec3, pdfFwd, pdfRev float64, isDelta bool) {
	frame := sampling.ComputeBasisVectors(n)
	wo := frame.WorldToShading(woWorld)
	wi, f, pdfFwd, pdfRev, isDelta := m.Sample(wo, u1, u2, u3)
	return frame.ShadingToWorld(wi), f, pdfFwd, pdfRev, isDelta
}

func (m *GenericMaterial) WorldEval(n, woWorld, wiWorld vecmath.Vec3) (f vecmath.Vec3, pdfFwd, pdfRev float64) {
	frame := sampling.ComputeBasisVectors(n)
	return m.Eval(frame.WorldToShading(woWorld), frame.WorldToShading(wiWorld))
}

// IsDelta reports whether every lobe in the material is a delta
// distribution (e.g. a pure mirror or pure glass material), used by the
// random walk to decide whether a vertex can ever serve as a bidirectional
// connection endpoint.
func (m *GenericMaterial) IsDelta() bool {
	for _, wl := range m.lobes {
		if !wl.lobe.IsDelta() {
			return false
		}
	}
	return len(m.lobes) > 0
}

// clampPdf guards against a stray NaN/Inf propagating out of a
// near-grazing microfacet evaluation into the walk's beta accumulation.
func clampPdf(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}
