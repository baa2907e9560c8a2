package sim

import (
	"fmt"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/forcefield"
	"github.com/san-kum/molsim/internal/hmr"
	"github.com/san-kum/molsim/internal/integrators"
)

type Config struct {
	// Timestep is the outer step in ps, split into Substeps fast steps.
	Timestep float64
	Substeps int

	// Temperature in kelvin for the initial velocities. Zero starts at rest.
	Temperature float64
	Seed        int64

	Repartition bool
	HMR         hmr.Config

	// Cutoff in nm for full nonbonded pairs; zero keeps every pair.
	Cutoff float64

	// Stretch selects the bond stretch potential.
	Stretch forcefield.StretchModel

	// DriftLimit aborts when the total energy strays further than this many
	// kJ/mol from the start of the run.
	DriftLimit float64
	ForceLimit float64
	MaxKick    float64

	// RecordInterval is the number of outer steps between frames; zero
	// records no frames after the first.
	RecordInterval int
}

// DefaultDriftLimit is 10⁶ zJ expressed in kJ/mol.
const DefaultDriftLimit = 1e6 * dynamo.KJPerZeptojoule

func DefaultConfig() Config {
	ic := integrators.DefaultConfig()
	return Config{
		Timestep:       ic.Timestep,
		Substeps:       ic.Substeps,
		Temperature:    300,
		Seed:           1,
		Repartition:    true,
		HMR:            hmr.DefaultConfig(),
		DriftLimit:     DefaultDriftLimit,
		RecordInterval: 10,
	}
}

func (c Config) validate() error {
	if c.Timestep <= 0 {
		return fmt.Errorf("timestep must be positive, got %g", c.Timestep)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be at least 1, got %d", c.Substeps)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative, got %g", c.Temperature)
	}
	if c.Cutoff < 0 || c.DriftLimit < 0 || c.ForceLimit < 0 || c.MaxKick < 0 {
		return fmt.Errorf("cutoff and limits must not be negative")
	}
	if c.RecordInterval < 0 {
		return fmt.Errorf("record interval must not be negative, got %d", c.RecordInterval)
	}
	return nil
}

func (c Config) integrator() integrators.Config {
	return integrators.Config{
		Timestep:   c.Timestep,
		Substeps:   c.Substeps,
		MaxKick:    c.MaxKick,
		ForceLimit: c.ForceLimit,
	}
}

type Result struct {
	StepsTaken int
	Time       float64

	// Times, Energies and Temperatures are sampled at each recorded frame.
	Times        []float64
	Energies     []float64
	Temperatures []float64

	InitialEnergy float64
	FinalEnergy   float64
	MaxDrift      float64
	Metrics       map[string]float64
}
