// Package metrics observes recorded samples of a run: energy drift,
// temperature, velocity stability and per-group bulk motion.
package metrics

import "gonum.org/v1/gonum/spatial/r3"

// Sample is the state handed to each metric at a recording point.
type Sample struct {
	Step       int
	Time       float64
	Kinetic    float64
	Potential  float64
	Positions  []r3.Vec
	Velocities []r3.Vec
	Masses     []float64
}

func (s Sample) Total() float64 { return s.Kinetic + s.Potential }

type Metric interface {
	Name() string
	Observe(s Sample) error
	Value() float64
	Reset()
}
