// Package config maps YAML run files onto engine settings.
package config

import (
	"fmt"
	"os"

	"github.com/san-kum/molsim/internal/forcefield"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/params"
	"github.com/san-kum/molsim/internal/sim"
	"github.com/san-kum/molsim/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMolecule    = "ethane"
	DefaultSteps       = 1000
	DefaultTimestepFs  = 4.0
	DefaultSubsteps    = 4
	DefaultTemperature = 300.0
	DefaultInterval    = 10
)

type Config struct {
	Molecule    string            `yaml:"molecule"`
	Size        float64           `yaml:"size,omitempty"`
	Topology    *TopologyConfig   `yaml:"topology,omitempty"`
	Steps       int               `yaml:"steps"`
	TimestepFs  float64           `yaml:"timestep_fs"`
	Substeps    int               `yaml:"substeps"`
	Temperature float64           `yaml:"temperature"`
	Seed        int64             `yaml:"seed"`
	Repartition RepartitionConfig `yaml:"repartition"`
	Stretch     StretchConfig     `yaml:"stretch"`
	Nonbonded   NonbondedConfig   `yaml:"nonbonded"`
	Limits      LimitsConfig      `yaml:"limits"`
	Record      RecordConfig      `yaml:"record"`
	Parameters  string            `yaml:"parameters,omitempty"`
	Log         LogConfig         `yaml:"log"`
}

// TopologyConfig describes a molecule inline instead of by name. Positions
// are in nm and a zero mass takes the parameter table's value.
type TopologyConfig struct {
	Atoms []AtomConfig `yaml:"atoms"`
	Bonds [][2]int     `yaml:"bonds,flow"`
}

type AtomConfig struct {
	Element  int        `yaml:"element"`
	Position [3]float64 `yaml:"position,flow"`
	Mass     float64    `yaml:"mass,omitempty"`
}

type RepartitionConfig struct {
	Enabled    bool    `yaml:"enabled"`
	TargetMass float64 `yaml:"target_mass"`
	Light      []int   `yaml:"light_elements,flow"`
}

// StretchConfig picks the bond potential: "sextic" (the default) or
// "morse".
type StretchConfig struct {
	Potential string `yaml:"potential,omitempty"`
}

type NonbondedConfig struct {
	Cutoff float64 `yaml:"cutoff"`
}

type LimitsConfig struct {
	DriftZJ float64 `yaml:"drift_zj"`
	Force   float64 `yaml:"force"`
	MaxKick float64 `yaml:"max_kick"`
}

type RecordConfig struct {
	Interval int `yaml:"interval"`
}

type LogConfig struct {
	Verbosity   int  `yaml:"verbosity"`
	Development bool `yaml:"development"`
}

func DefaultConfig() *Config {
	return &Config{
		Molecule:    DefaultMolecule,
		Steps:       DefaultSteps,
		TimestepFs:  DefaultTimestepFs,
		Substeps:    DefaultSubsteps,
		Temperature: DefaultTemperature,
		Seed:        1,
		Repartition: RepartitionConfig{
			Enabled:    true,
			TargetMass: 2.0,
			Light:      []int{params.Hydrogen},
		},
		Limits: LimitsConfig{DriftZJ: 1e6},
		Record: RecordConfig{Interval: DefaultInterval},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Molecule == "" && c.Topology == nil {
		return fmt.Errorf("config: either molecule or topology is required")
	}
	if c.Steps < 0 {
		return fmt.Errorf("config: steps must not be negative, got %d", c.Steps)
	}
	if c.TimestepFs <= 0 {
		return fmt.Errorf("config: timestep_fs must be positive, got %g", c.TimestepFs)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("config: substeps must be at least 1, got %d", c.Substeps)
	}
	if c.Temperature < 0 {
		return fmt.Errorf("config: temperature must not be negative, got %g", c.Temperature)
	}
	if c.Repartition.Enabled && c.Repartition.TargetMass <= 0 {
		return fmt.Errorf("config: repartition target_mass must be positive, got %g", c.Repartition.TargetMass)
	}
	if _, err := forcefield.ParseStretchModel(c.Stretch.Potential); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EngineConfig converts to engine units: femtoseconds become picoseconds
// and the drift limit moves from zJ to kJ/mol.
func (c *Config) EngineConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.Timestep = c.TimestepFs / 1000
	cfg.Substeps = c.Substeps
	cfg.Temperature = c.Temperature
	cfg.Seed = c.Seed
	cfg.Repartition = c.Repartition.Enabled
	cfg.HMR.TargetMass = c.Repartition.TargetMass
	if len(c.Repartition.Light) > 0 {
		cfg.HMR.Light = c.Repartition.Light
	}
	if model, err := forcefield.ParseStretchModel(c.Stretch.Potential); err == nil {
		cfg.Stretch = model
	}
	cfg.Cutoff = c.Nonbonded.Cutoff
	cfg.DriftLimit = c.Limits.DriftZJ * sim.DefaultDriftLimit / 1e6
	cfg.ForceLimit = c.Limits.Force
	cfg.MaxKick = c.Limits.MaxKick
	cfg.RecordInterval = c.Record.Interval
	return cfg
}

// BuildTopology prefers the inline topology over the named molecule.
func (c *Config) BuildTopology() (*topology.Topology, error) {
	if c.Topology == nil {
		return molecules.NewRegistry().Build(c.Molecule, c.Size)
	}
	atoms := make([]topology.Atom, len(c.Topology.Atoms))
	for i, a := range c.Topology.Atoms {
		atoms[i] = topology.Atom{
			Element:  a.Element,
			Position: r3.Vec{X: a.Position[0], Y: a.Position[1], Z: a.Position[2]},
			Mass:     a.Mass,
		}
	}
	bonds := make([]topology.Bond, len(c.Topology.Bonds))
	for i, b := range c.Topology.Bonds {
		bonds[i] = topology.Bond{A: b[0], B: b[1]}
	}
	return topology.New(atoms, bonds)
}

// Table loads the configured parameter file, or the built-in MM4 set.
func (c *Config) Table() (*params.Table, error) {
	if c.Parameters == "" {
		return params.MM4(), nil
	}
	return params.LoadYAML(c.Parameters)
}

// Name labels stored runs.
func (c *Config) Name() string {
	if c.Topology != nil {
		return "custom"
	}
	return c.Molecule
}
