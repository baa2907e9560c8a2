package integrators

import (
	"fmt"

	"github.com/san-kum/molsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// State is the dynamical state advanced by an integrator. Positions are in
// nm, velocities in nm/ps, masses in amu and Time in ps.
type State struct {
	Positions  []r3.Vec
	Velocities []r3.Vec
	Masses     []float64
	Time       float64
	Step       int

	// version counts drifts so cached forces can tell they are stale.
	version uint64
}

func NewState(positions, velocities []r3.Vec, masses []float64) (*State, error) {
	n := len(positions)
	if velocities == nil {
		velocities = make([]r3.Vec, n)
	}
	if len(velocities) != n || len(masses) != n {
		return nil, fmt.Errorf("integrators: %d positions, %d velocities, %d masses", n, len(velocities), len(masses))
	}
	for i, m := range masses {
		if m <= 0 {
			return nil, fmt.Errorf("integrators: atom %d has non-positive mass %g", i, m)
		}
	}
	return &State{
		Positions:  dynamo.Clone(positions),
		Velocities: dynamo.Clone(velocities),
		Masses:     append([]float64(nil), masses...),
	}, nil
}

// Touch marks the positions as changed outside the integrator.
func (s *State) Touch() { s.version++ }

func (s *State) Version() uint64 { return s.version }

// KineticEnergy returns ½·Σm·v² in kJ/mol.
func (s *State) KineticEnergy() float64 {
	ke := 0.0
	for i, v := range s.Velocities {
		ke += 0.5 * s.Masses[i] * r3.Norm2(v)
	}
	return ke
}
