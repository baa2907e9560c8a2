package metrics

import "github.com/san-kum/molsim/internal/dynamo"

// Temperature averages the instantaneous kinetic temperature over the
// given number of degrees of freedom.
type Temperature struct {
	name    string
	dof     float64
	sum     float64
	last    float64
	samples int
}

func NewTemperature(dof int) *Temperature {
	return &Temperature{
		name: "temperature",
		dof:  float64(max(dof, 1)),
	}
}

func (t *Temperature) Name() string {
	return t.name
}

func (t *Temperature) Observe(s Sample) error {
	t.last = 2 * s.Kinetic / (t.dof * dynamo.Boltzmann)
	t.sum += t.last
	t.samples++
	return nil
}

func (t *Temperature) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return t.sum / float64(t.samples)
}

func (t *Temperature) Last() float64 { return t.last }

func (t *Temperature) Reset() {
	t.sum = 0
	t.last = 0
	t.samples = 0
}
