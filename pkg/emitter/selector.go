package emitter

// UniformSelector picks an emitter with uniform probability, grounded on
// pkg/lights (NewUniformLightSampler, referenced from
// pkg/scene/scene.go's default Preprocess wiring).
type UniformSelector struct {
	emitters []Emitter
}

func NewUniformSelector(emitters []Emitter) *UniformSelector {
	return &UniformSelector{emitters: emitters}
}

func (s *UniformSelector) Select(u float64) (Emitter, int, float64) {
	if len(s.emitters) == 0 {
		return nil, -1, 0
	}
	idx := int(u * float64(len(s.emitters)))
	if idx >= len(s.emitters) {
		idx = len(s.emitters) - 1
	}
	return s.emitters[idx], idx, 1.0 / float64(len(s.emitters))
}

func (s *UniformSelector) PdfFor(index int) float64 {
	if len(s.emitters) == 0 {
		return 0
	}
	return 1.0 / float64(len(s.emitters))
}

func (s *UniformSelector) PdfForEmitter(e Emitter) float64 {
	for _, candidate := range s.emitters {
		if candidate == e {
			return 1.0 / float64(len(s.emitters))
		}
	}
	return 0
}

func (s *UniformSelector) Count() int { return len(s.emitters) }

// PowerSelector picks an emitter proportional to its total radiant power,
// grounded on pkg/core/weighted_light_sampler.go, reducing
// variance for scenes with lights of very different brightness.
type PowerSelector struct {
	emitters []Emitter
	cumPower []float64
	total    float64
}

func NewPowerSelector(emitters []Emitter) *PowerSelector {
	s := &PowerSelector{emitters: emitters, cumPower: make([]float64, len(emitters))}
	acc := 0.0
	for i, e := range emitters {
		acc += e.TotalPower()
		s.cumPower[i] = acc
	}
	s.total = acc
	return s
}

func (s *PowerSelector) Select(u float64) (Emitter, int, float64) {
	if len(s.emitters) == 0 || s.total <= 0 {
		return nil, -1, 0
	}
	target := u * s.total
	lo, hi := 0, len(s.cumPower)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if s.cumPower[mid] < target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return s.emitters[lo], lo, s.PdfFor(lo)
}

func (s *PowerSelector) PdfFor(index int) float64 {
	if s.total <= 0 || index < 0 || index >= len(s.emitters) {
		return 0
	}
	return s.emitters[index].TotalPower() / s.total
}

func (s *PowerSelector) PdfForEmitter(e Emitter) float64 {
	for i, candidate := range s.emitters {
		if candidate == e {
			return s.PdfFor(i)
		}
	}
	return 0
}

func (s *PowerSelector) Count() int { return len(s.emitters) }
