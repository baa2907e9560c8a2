package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/molsim/internal/dynamo"
)

// Energy averages the total energy over the observed samples.
type Energy struct {
	name        string
	samples     int
	totalEnergy float64
}

func NewEnergy() *Energy {
	return &Energy{name: "energy"}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(s Sample) error {
	e.totalEnergy += s.Total()
	e.samples++
	return nil
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}

// EnergyDrift tracks the largest absolute deviation of the total energy
// from the first sample, in kJ/mol. A positive limit turns a deviation
// beyond it into a DivergenceError.
type EnergyDrift struct {
	name          string
	limit         float64
	initialEnergy float64
	currentEnergy float64
	maxDrift      float64
	samples       int
}

func NewEnergyDrift(limit float64) *EnergyDrift {
	return &EnergyDrift{
		name:  "energy_drift",
		limit: limit,
	}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(s Sample) error {
	energy := s.Total()
	if e.samples == 0 {
		e.initialEnergy = energy
	}
	e.currentEnergy = energy
	e.samples++

	drift := math.Abs(energy - e.initialEnergy)
	if math.IsNaN(drift) {
		return &dynamo.DivergenceError{Step: s.Step, Time: s.Time, Atom: -1, Value: energy, Reason: "total energy is not finite"}
	}
	e.maxDrift = math.Max(e.maxDrift, drift)
	if e.limit > 0 && drift > e.limit {
		return &dynamo.DivergenceError{
			Step:   s.Step,
			Time:   s.Time,
			Atom:   -1,
			Value:  drift,
			Reason: fmt.Sprintf("energy drifted %.6g kJ/mol, limit %.6g", drift, e.limit),
		}
	}
	return nil
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Initial() float64 { return e.initialEnergy }
func (e *EnergyDrift) Current() float64 { return e.currentEnergy }

// Relative returns the largest drift divided by the initial energy.
func (e *EnergyDrift) Relative() float64 {
	if e.initialEnergy == 0 {
		return 0
	}
	return e.maxDrift / math.Abs(e.initialEnergy)
}

func (e *EnergyDrift) Reset() {
	e.initialEnergy = 0
	e.currentEnergy = 0
	e.maxDrift = 0
	e.samples = 0
}
