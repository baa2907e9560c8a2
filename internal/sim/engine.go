// Package sim wires the setup pipeline (classify, parameterize, assemble,
// repartition, group, thermalize) and drives the multi-rate integrator.
package sim

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/san-kum/molsim/internal/classify"
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/forcefield"
	"github.com/san-kum/molsim/internal/hmr"
	"github.com/san-kum/molsim/internal/integrators"
	"github.com/san-kum/molsim/internal/logging"
	"github.com/san-kum/molsim/internal/metrics"
	"github.com/san-kum/molsim/internal/params"
	"github.com/san-kum/molsim/internal/rigid"
	"github.com/san-kum/molsim/internal/thermal"
	"github.com/san-kum/molsim/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

type Engine struct {
	cfg Config
	log logr.Logger

	top       *topology.Topology
	table     *params.Table
	rel       *classify.Relationships
	assembled *forcefield.ForceField
	field     dynamo.ForceField
	providers [2]dynamo.ForceProvider
	groups    *rigid.Partition
	sampler   thermal.Sampler
	thermal   *thermal.Thermalizer
	base      []r3.Vec

	integ       *integrators.MultiRate
	state       *integrators.State
	drift       *metrics.EnergyDrift
	temperature *metrics.Temperature
	dof         int
	tracker     *metrics.GroupTracker
	metrics     []metrics.Metric
	observers   []dynamo.Observer
	started     bool
}

// New runs the setup pipeline on top. When no explicit force field is
// given the MM4 terms are assembled and every chemistry observed must be
// parameterized.
func New(top *topology.Topology, cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, log: logr.Discard(), top: top}
	for _, opt := range opts {
		opt(e)
	}
	if e.table == nil {
		e.table = params.MM4()
	}

	masses, err := e.resolveMasses()
	if err != nil {
		return nil, err
	}

	e.rel = classify.Classify(top)
	c := e.rel.Counts()
	e.log.V(logging.DEBUG).Info("classified topology",
		"atoms", top.NumAtoms(), "bonds", c.Bonds, "angles", c.Angles,
		"torsions", c.Torsions, "pairs13", c.Pairs13, "pairs14", c.Pairs14)

	if err := e.buildField(); err != nil {
		return nil, err
	}

	if cfg.Repartition {
		masses, err = hmr.Repartition(top, masses, cfg.HMR)
		if err != nil {
			return nil, err
		}
		e.log.V(logging.DEBUG).Info("repartitioned masses", "target", cfg.HMR.TargetMass)
	}

	e.groups = rigid.New(top)
	if e.sampler == nil {
		e.sampler = thermal.NewMaxwellBoltzmann(uint64(cfg.Seed))
	}
	e.thermal = thermal.New(e.sampler, e.groups)

	velocities, err := e.thermal.Thermalize(masses, top.Positions(), cfg.Temperature, e.base)
	if err != nil {
		return nil, err
	}
	e.state, err = integrators.NewState(top.Positions(), velocities, masses)
	if err != nil {
		return nil, err
	}
	e.integ, err = integrators.NewMultiRate(e.field, cfg.integrator())
	if err != nil {
		return nil, err
	}

	e.drift = metrics.NewEnergyDrift(cfg.DriftLimit)
	e.dof = e.degreesOfFreedom()
	e.temperature = metrics.NewTemperature(e.dof)
	e.tracker = metrics.NewGroupTracker(e.groups)
	e.log.Info("engine ready",
		"atoms", top.NumAtoms(), "groups", e.groups.Len(),
		"timestep", cfg.Timestep, "substeps", cfg.Substeps, "temperature", cfg.Temperature)
	return e, nil
}

func (e *Engine) resolveMasses() ([]float64, error) {
	masses := e.top.Masses()
	for i, m := range masses {
		if m > 0 {
			continue
		}
		el, err := e.table.Element(e.top.Element(i))
		if err != nil {
			return nil, fmt.Errorf("mass of atom %d: %w", i, err)
		}
		masses[i] = el.Mass
	}
	return masses, nil
}

func (e *Engine) buildField() error {
	if e.field == nil {
		ff, err := forcefield.Assemble(e.top, e.rel, e.table, forcefield.Options{Cutoff: e.cfg.Cutoff, Stretch: e.cfg.Stretch})
		if err != nil {
			return err
		}
		e.assembled = ff
		e.field = ff

		counts := ff.Counts()
		kv := make([]any, 0, 2*len(counts))
		for _, k := range forcefield.Kinds {
			kv = append(kv, k.String(), counts[k])
		}
		e.log.V(logging.DEBUG).Info("assembled force field", kv...)
	}
	for _, g := range dynamo.Groups {
		if p := e.providers[g]; p != nil {
			e.field = &forcefield.External{Base: e.field, Group: g, Provider: p}
		}
	}
	return nil
}

func (e *Engine) degreesOfFreedom() int {
	pos := e.state.Positions
	dof := 0
	for g := 0; g < e.groups.Len(); g++ {
		dof += groupDegreesOfFreedom(pos, e.groups.Group(g))
	}
	return dof
}

// collinearTolerance is the largest off-axis distance in nm at which an
// atom still counts as lying on its group's axis.
const collinearTolerance = 1e-6

// groupDegreesOfFreedom is the number of internal coordinates of one group:
// none for a lone atom, 3n-5 when every atom lies on one line and 3n-6
// otherwise.
func groupDegreesOfFreedom(pos []r3.Vec, atoms []int) int {
	n := len(atoms)
	switch {
	case n <= 1:
		return 0
	case collinear(pos, atoms):
		return 3*n - 5
	}
	return 3*n - 6
}

func collinear(pos []r3.Vec, atoms []int) bool {
	origin := pos[atoms[0]]
	var axis r3.Vec
	for _, a := range atoms[1:] {
		d := r3.Sub(pos[a], origin)
		if r3.Norm(axis) == 0 {
			if r3.Norm(d) > collinearTolerance {
				axis = r3.Unit(d)
			}
			continue
		}
		if r3.Norm(r3.Cross(d, axis)) > collinearTolerance {
			return false
		}
	}
	return true
}

// Thermalize redraws the velocities at temperature, keeping positions.
// base, when non-nil, is superimposed on every atom. The drift baseline
// restarts at the next step.
func (e *Engine) Thermalize(temperature float64, base []r3.Vec) error {
	if temperature < 0 {
		return fmt.Errorf("temperature must not be negative, got %g", temperature)
	}
	v, err := e.thermal.Thermalize(e.state.Masses, e.state.Positions, temperature, base)
	if err != nil {
		return err
	}
	copy(e.state.Velocities, v)
	e.drift.Reset()
	e.started = false
	e.log.V(logging.DEBUG).Info("rethermalized", "temperature", temperature, "time", e.state.Time)
	return nil
}

// TotalEnergy returns kinetic plus potential energy in kJ/mol.
func (e *Engine) TotalEnergy() (float64, error) {
	pe, err := e.integ.PotentialEnergy(e.state)
	if err != nil {
		return 0, err
	}
	return pe + e.state.KineticEnergy(), nil
}

func (e *Engine) sample() (metrics.Sample, error) {
	pe, err := e.integ.PotentialEnergy(e.state)
	if err != nil {
		return metrics.Sample{}, err
	}
	return metrics.Sample{
		Step:       e.state.Step,
		Time:       e.state.Time,
		Kinetic:    e.state.KineticEnergy(),
		Potential:  pe,
		Positions:  e.state.Positions,
		Velocities: e.state.Velocities,
		Masses:     e.state.Masses,
	}, nil
}

func (e *Engine) record(res *Result, s metrics.Sample) error {
	if err := e.temperature.Observe(s); err != nil {
		return err
	}
	if err := e.tracker.Observe(s); err != nil {
		return err
	}
	for _, m := range e.metrics {
		if err := m.Observe(s); err != nil {
			return err
		}
	}
	res.Times = append(res.Times, s.Time)
	res.Energies = append(res.Energies, s.Total())
	res.Temperatures = append(res.Temperatures, e.temperature.Last())

	frame := dynamo.Frame{Step: s.Step, Time: s.Time, Positions: dynamo.Clone(s.Positions), Energy: s.Total()}
	for _, o := range e.observers {
		o.OnFrame(frame)
	}
	return nil
}

// Run advances the simulation by steps outer timesteps. The first run
// after construction or Thermalize records an initial frame.
func (e *Engine) Run(steps int) (*Result, error) {
	return e.RunContext(context.Background(), steps)
}

// RunContext is Run, stopping early with the context's error once ctx is
// done. The partial result is returned alongside.
func (e *Engine) RunContext(ctx context.Context, steps int) (*Result, error) {
	if steps < 0 {
		return nil, fmt.Errorf("steps must not be negative, got %d", steps)
	}
	res := &Result{Metrics: make(map[string]float64)}

	s, err := e.sample()
	if err != nil {
		return res, err
	}
	res.InitialEnergy = s.Total()
	if !e.started {
		if err := e.drift.Observe(s); err != nil {
			return res, err
		}
		if err := e.record(res, s); err != nil {
			return res, err
		}
		e.started = true
	}

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return e.finish(res), err
		}
		if err := e.integ.Step(e.state); err != nil {
			e.log.Error(err, "integration failed", "step", e.state.Step)
			return e.finish(res), err
		}
		res.StepsTaken++

		s, err := e.sample()
		if err != nil {
			return e.finish(res), err
		}
		if err := e.drift.Observe(s); err != nil {
			e.log.Error(err, "energy drift limit exceeded", "drift", e.drift.Value())
			return e.finish(res), err
		}
		if e.cfg.RecordInterval > 0 && e.state.Step%e.cfg.RecordInterval == 0 {
			if err := e.record(res, s); err != nil {
				return e.finish(res), err
			}
		}
	}

	res = e.finish(res)
	e.log.V(logging.DEBUG).Info("run finished",
		"steps", res.StepsTaken, "time", res.Time, "energy", res.FinalEnergy, "maxDrift", res.MaxDrift)
	return res, nil
}

func (e *Engine) finish(res *Result) *Result {
	res.Time = e.state.Time
	res.FinalEnergy = e.drift.Current()
	res.MaxDrift = e.drift.Value()
	res.Metrics[e.drift.Name()] = e.drift.Value()
	res.Metrics[e.temperature.Name()] = e.temperature.Value()
	res.Metrics[e.tracker.Name()] = e.tracker.Value()
	for _, m := range e.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res
}

func (e *Engine) Config() Config { return e.cfg }

func (e *Engine) Topology() *topology.Topology { return e.top }

func (e *Engine) Relationships() *classify.Relationships { return e.rel }

func (e *Engine) Groups() *rigid.Partition { return e.groups }

func (e *Engine) Table() *params.Table { return e.table }

// Tracker holds the per-group centre-of-mass history of recorded frames.
func (e *Engine) Tracker() *metrics.GroupTracker { return e.tracker }

func (e *Engine) Time() float64 { return e.state.Time }
func (e *Engine) Step() int     { return e.state.Step }

// DegreesOfFreedom is the internal coordinate count the temperature is
// normalized by.
func (e *Engine) DegreesOfFreedom() int { return e.dof }

func (e *Engine) Evaluations(g dynamo.Group) int { return e.integ.Evaluations(g) }

// ForceField returns the assembled MM4 terms, or nil when an explicit
// force field replaced them.
func (e *Engine) ForceField() *forcefield.ForceField { return e.assembled }

func (e *Engine) Positions() []r3.Vec  { return dynamo.Clone(e.state.Positions) }
func (e *Engine) Velocities() []r3.Vec { return dynamo.Clone(e.state.Velocities) }
func (e *Engine) Masses() []float64    { return append([]float64(nil), e.state.Masses...) }
