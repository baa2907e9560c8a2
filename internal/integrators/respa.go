package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/molsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config for the multi-rate integrator.
type Config struct {
	// Timestep is the outer step in ps, split into Substeps inner steps.
	Timestep float64
	Substeps int

	// MaxKick caps the velocity change of one atom in one kick, in nm/ps.
	// Zero disables the clamp.
	MaxKick float64

	// ForceLimit aborts the run when any atom's force magnitude exceeds it,
	// in kJ/mol/nm. Zero disables the check.
	ForceLimit float64
}

func DefaultConfig() Config {
	return Config{Timestep: 0.004, Substeps: 4}
}

type forceCache struct {
	forces  []r3.Vec
	energy  float64
	version uint64
	state   *State
	valid   bool
}

// MultiRate is an r-RESPA velocity Verlet integrator: the slow group is
// kicked once per outer step and the fast group on every inner step.
// Forces are cached per group and recomputed only after a drift.
type MultiRate struct {
	cfg   Config
	field dynamo.ForceField
	cache [2]forceCache

	evaluations [2]int
}

func NewMultiRate(field dynamo.ForceField, cfg Config) (*MultiRate, error) {
	if cfg.Timestep <= 0 {
		return nil, fmt.Errorf("timestep must be positive, got %g", cfg.Timestep)
	}
	if cfg.Substeps < 1 {
		return nil, fmt.Errorf("substeps must be at least 1, got %d", cfg.Substeps)
	}
	if cfg.MaxKick < 0 || cfg.ForceLimit < 0 {
		return nil, fmt.Errorf("limits must not be negative")
	}
	return &MultiRate{cfg: cfg, field: field}, nil
}

func (m *MultiRate) Config() Config { return m.cfg }

// Evaluations reports how many times each group's forces were computed.
func (m *MultiRate) Evaluations(g dynamo.Group) int { return m.evaluations[g] }

// Forces returns the cached forces of group g at the state's current
// positions, computing them if the cache is stale.
func (m *MultiRate) Forces(s *State, g dynamo.Group) ([]r3.Vec, float64, error) {
	c := &m.cache[g]
	if c.valid && c.state == s && c.version == s.version {
		return c.forces, c.energy, nil
	}
	if len(c.forces) != len(s.Positions) {
		c.forces = make([]r3.Vec, len(s.Positions))
	}
	c.valid = false

	e, err := m.field.Evaluate(g, s.Positions, c.forces)
	if err != nil {
		return nil, 0, err
	}
	m.evaluations[g]++
	if err := m.check(s, g, e, c.forces); err != nil {
		return nil, 0, err
	}

	c.energy = e
	c.version = s.version
	c.state = s
	c.valid = true
	return c.forces, e, nil
}

// PotentialEnergy sums both groups at the current positions.
func (m *MultiRate) PotentialEnergy(s *State) (float64, error) {
	total := 0.0
	for _, g := range dynamo.Groups {
		_, e, err := m.Forces(s, g)
		if err != nil {
			return 0, err
		}
		total += e
	}
	return total, nil
}

// Step advances the state by one outer timestep.
func (m *MultiRate) Step(s *State) error {
	dt := m.cfg.Timestep
	inner := dt / float64(m.cfg.Substeps)

	if err := m.kick(s, dynamo.Slow, 0.5*dt); err != nil {
		return err
	}
	for k := 0; k < m.cfg.Substeps; k++ {
		if err := m.kick(s, dynamo.Fast, 0.5*inner); err != nil {
			return err
		}
		m.drift(s, inner)
		if err := m.kick(s, dynamo.Fast, 0.5*inner); err != nil {
			return err
		}
	}
	if err := m.kick(s, dynamo.Slow, 0.5*dt); err != nil {
		return err
	}

	s.Step++
	s.Time += dt
	for i, v := range s.Velocities {
		if !dynamo.IsFinite(v) {
			return &dynamo.DivergenceError{Step: s.Step, Time: s.Time, Atom: i, Reason: "velocity is not finite"}
		}
	}
	return nil
}

func (m *MultiRate) kick(s *State, g dynamo.Group, h float64) error {
	forces, _, err := m.Forces(s, g)
	if err != nil {
		return err
	}
	for i, f := range forces {
		dv := r3.Scale(h/s.Masses[i], f)
		if m.cfg.MaxKick > 0 {
			if n := r3.Norm(dv); n > m.cfg.MaxKick {
				dv = r3.Scale(m.cfg.MaxKick/n, dv)
			}
		}
		s.Velocities[i] = r3.Add(s.Velocities[i], dv)
	}
	return nil
}

func (m *MultiRate) drift(s *State, h float64) {
	for i, v := range s.Velocities {
		s.Positions[i] = r3.Add(s.Positions[i], r3.Scale(h, v))
	}
	s.version++
}

func (m *MultiRate) check(s *State, g dynamo.Group, e float64, forces []r3.Vec) error {
	if math.IsNaN(e) || math.IsInf(e, 0) {
		return &dynamo.DivergenceError{Step: s.Step, Time: s.Time, Atom: -1, Value: e, Reason: fmt.Sprintf("%s energy is not finite", g)}
	}
	for i, f := range forces {
		if !dynamo.IsFinite(f) {
			return &dynamo.DivergenceError{Step: s.Step, Time: s.Time, Atom: i, Reason: fmt.Sprintf("%s force is not finite", g)}
		}
		if m.cfg.ForceLimit > 0 {
			if n := r3.Norm(f); n > m.cfg.ForceLimit {
				return &dynamo.DivergenceError{Step: s.Step, Time: s.Time, Atom: i, Value: n, Reason: fmt.Sprintf("%s force %.4g exceeds limit %.4g", g, n, m.cfg.ForceLimit)}
			}
		}
	}
	return nil
}
