package metrics

import "gonum.org/v1/gonum/spatial/r3"

// Stability is the fraction of samples in which no atom moved faster than
// threshold nm/ps.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: threshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(sample Sample) error {
	s.samples++
	for _, v := range sample.Velocities {
		if r3.Norm(v) > s.threshold {
			s.violations++
			break
		}
	}
	return nil
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
