package sim_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/forcefield"
	"github.com/san-kum/molsim/internal/logging"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/sim"
	"github.com/san-kum/molsim/internal/thermal"
	"github.com/san-kum/molsim/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

type zeroField struct{}

func (zeroField) Evaluate(_ dynamo.Group, _, forces []r3.Vec) (float64, error) {
	for i := range forces {
		forces[i] = r3.Vec{}
	}
	return 0, nil
}

func build(name string) *topology.Topology {
	top, err := molecules.NewRegistry().Build(name, 0)
	Expect(err).NotTo(HaveOccurred())
	return top
}

func allAtoms(n int) []int {
	atoms := make([]int, n)
	for i := range atoms {
		atoms[i] = i
	}
	return atoms
}

var _ = Describe("Engine", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.DefaultConfig()
	})

	Context("when set up with ethane", func() {
		var engine *sim.Engine

		BeforeEach(func() {
			var err error
			engine, err = sim.New(build("ethane"), cfg, sim.WithLogger(logging.NewTestLogger()))
			Expect(err).NotTo(HaveOccurred())
		})

		It("classifies the bonded relationships", func() {
			c := engine.Relationships().Counts()
			Expect(c.Bonds).To(Equal(7))
			Expect(c.Angles).To(Equal(12))
			Expect(c.Torsions).To(Equal(9))
			Expect(c.Pairs14).To(Equal(9))
		})

		It("repartitions hydrogen mass without changing the total", func() {
			masses := engine.Masses()
			total := 0.0
			for i, m := range masses {
				total += m
				if engine.Topology().Element(i) == 1 {
					Expect(m).To(BeNumerically("~", 2.0, 1e-12))
				} else {
					Expect(m).To(BeNumerically("~", 12.011-3*(2.0-1.008), 1e-9))
				}
			}
			Expect(total).To(BeNumerically("~", 2*12.011+6*1.008, 1e-9))
		})

		It("treats the molecule as one rigid group", func() {
			Expect(engine.Groups().Len()).To(Equal(1))
		})

		It("starts with no bulk momentum", func() {
			linear, angular := thermal.Momentum(engine.Velocities(), engine.Masses(), engine.Positions(), allAtoms(8))
			Expect(r3.Norm(linear)).To(BeNumerically("<", 1e-9))
			Expect(r3.Norm(angular)).To(BeNumerically("<", 1e-9))
		})

		It("conserves energy over a short run", func() {
			res, err := engine.Run(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StepsTaken).To(Equal(100))
			Expect(res.Time).To(BeNumerically("~", 100*cfg.Timestep, 1e-12))
			Expect(res.MaxDrift).To(BeNumerically("<", 10.0))
			Expect(res.Metrics).To(HaveKey("energy_drift"))
			Expect(res.Metrics).To(HaveKey("temperature"))
		})

		It("evaluates the slow group once per outer step", func() {
			_, err := engine.Run(20)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.Evaluations(dynamo.Slow)).To(Equal(21))
			Expect(engine.Evaluations(dynamo.Fast)).To(Equal(20*cfg.Substeps + 1))
		})

		It("rethermalizes without bulk momentum", func() {
			_, err := engine.Run(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.Thermalize(500, nil)).To(Succeed())
			linear, angular := thermal.Momentum(engine.Velocities(), engine.Masses(), engine.Positions(), allAtoms(8))
			Expect(r3.Norm(linear)).To(BeNumerically("<", 1e-9))
			Expect(r3.Norm(angular)).To(BeNumerically("<", 1e-9))
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			res, err := engine.RunContext(ctx, 10)
			Expect(err).To(MatchError(context.Canceled))
			Expect(res.StepsTaken).To(BeZero())
		})
	})

	Context("with Morse stretches", func() {
		It("assembles and conserves energy", func() {
			cfg.Stretch = forcefield.StretchMorse
			engine, err := sim.New(build("ethane"), cfg)
			Expect(err).NotTo(HaveOccurred())
			counts := engine.ForceField().Counts()
			Expect(counts[forcefield.KindMorse]).To(Equal(7))
			Expect(counts[forcefield.KindStretch]).To(BeZero())

			res, err := engine.Run(100)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.MaxDrift).To(BeNumerically("<", 10))
		})
	})

	Context("at zero temperature", func() {
		It("keeps the linear momentum at zero", func() {
			cfg.Temperature = 0
			engine, err := sim.New(build("butane"), cfg)
			Expect(err).NotTo(HaveOccurred())

			_, err = engine.Run(50)
			Expect(err).NotTo(HaveOccurred())
			n := engine.Topology().NumAtoms()
			linear, _ := thermal.Momentum(engine.Velocities(), engine.Masses(), engine.Positions(), allAtoms(n))
			Expect(r3.Norm(linear)).To(BeNumerically("<", 1e-8))
		})
	})

	Context("with two molecules", func() {
		It("keeps each group free of bulk motion", func() {
			engine, err := sim.New(build("methane_pair"), cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.Groups().Len()).To(Equal(2))

			for g := 0; g < 2; g++ {
				linear, _ := thermal.Momentum(engine.Velocities(), engine.Masses(), engine.Positions(), engine.Groups().Group(g))
				Expect(r3.Norm(linear)).To(BeNumerically("<", 1e-9))
			}
		})

		It("adds base velocities on top of the thermal ones", func() {
			base := make([]r3.Vec, 10)
			for i := 5; i < 10; i++ {
				base[i] = r3.Vec{X: -1}
			}
			engine, err := sim.New(build("methane_pair"), cfg, sim.WithVelocities(base))
			Expect(err).NotTo(HaveOccurred())

			_, v, _ := thermal.CenterOfMass(engine.Velocities(), engine.Masses(), engine.Positions(), engine.Groups().Group(1))
			Expect(v.X).To(BeNumerically("~", -1, 1e-9))
		})
	})

	Context("with an explicit force field", func() {
		It("moves atoms ballistically and keeps the energy", func() {
			engine, err := sim.New(build("ethane"), cfg, sim.WithForceField(zeroField{}))
			Expect(err).NotTo(HaveOccurred())
			Expect(engine.ForceField()).To(BeNil())

			before := engine.Positions()
			v := engine.Velocities()
			res, err := engine.Run(10)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.FinalEnergy).To(BeNumerically("~", res.InitialEnergy, 1e-9))

			after := engine.Positions()
			for i := range after {
				want := r3.Add(before[i], r3.Scale(res.Time, v[i]))
				Expect(r3.Norm(r3.Sub(after[i], want))).To(BeNumerically("<", 1e-9))
			}
		})
	})

	Context("with an external provider", func() {
		It("replaces the slow group", func() {
			calls := 0
			provider := func(pos []r3.Vec) (float64, []r3.Vec, error) {
				calls++
				return 1.5, make([]r3.Vec, len(pos)), nil
			}
			engine, err := sim.New(build("ethane"), cfg, sim.WithProvider(dynamo.Slow, provider))
			Expect(err).NotTo(HaveOccurred())

			_, err = engine.Run(5)
			Expect(err).NotTo(HaveOccurred())
			Expect(calls).To(Equal(6))
		})
	})

	Context("with unparameterized chemistry", func() {
		It("rejects a hydrogen molecule", func() {
			top, err := topology.New([]topology.Atom{
				{Element: 1},
				{Element: 1, Position: r3.Vec{X: 0.074}},
			}, []topology.Bond{{A: 0, B: 1}})
			Expect(err).NotTo(HaveOccurred())

			_, err = sim.New(top, cfg)
			Expect(err).To(MatchError(dynamo.ErrParameterization))
			var pe *dynamo.ParameterizationError
			Expect(errors.As(err, &pe)).To(BeTrue())
		})

		It("rejects an unknown element", func() {
			top, err := topology.New([]topology.Atom{{Element: 8}}, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = sim.New(top, cfg)
			Expect(err).To(MatchError(dynamo.ErrParameterization))
		})
	})

	Context("with observers", func() {
		It("receives every recorded frame", func() {
			var steps []int
			obs := dynamo.ObserverFunc(func(f dynamo.Frame) { steps = append(steps, f.Step) })
			engine, err := sim.New(build("ethane"), cfg, sim.WithObserver(obs))
			Expect(err).NotTo(HaveOccurred())

			res, err := engine.Run(50)
			Expect(err).NotTo(HaveOccurred())
			Expect(steps).To(Equal([]int{0, 10, 20, 30, 40, 50}))
			Expect(res.Energies).To(HaveLen(6))
			Expect(engine.Tracker().History()).To(HaveLen(6))
		})
	})

	Context("counting degrees of freedom", func() {
		carbons := func(pos ...r3.Vec) *topology.Topology {
			atoms := make([]topology.Atom, len(pos))
			var bonds []topology.Bond
			for i, p := range pos {
				atoms[i] = topology.Atom{Element: 6, Position: p}
				if i > 0 {
					bonds = append(bonds, topology.Bond{A: i - 1, B: i})
				}
			}
			top, err := topology.New(atoms, bonds)
			Expect(err).NotTo(HaveOccurred())
			return top
		}

		DescribeTable("removes rigid motion per group",
			func(top func() *topology.Topology, want int) {
				engine, err := sim.New(top(), cfg, sim.WithForceField(zeroField{}))
				Expect(err).NotTo(HaveOccurred())
				Expect(engine.DegreesOfFreedom()).To(Equal(want))
			},
			Entry("ethane", func() *topology.Topology { return build("ethane") }, 18),
			Entry("two methanes", func() *topology.Topology { return build("methane_pair") }, 18),
			Entry("a lone atom", func() *topology.Topology { return carbons(r3.Vec{}) }, 0),
			Entry("a diatomic", func() *topology.Topology {
				return carbons(r3.Vec{}, r3.Vec{X: 0.15})
			}, 1),
			Entry("a linear chain", func() *topology.Topology {
				return carbons(r3.Vec{}, r3.Vec{X: 0.15}, r3.Vec{X: 0.3})
			}, 4),
			Entry("a bent chain", func() *topology.Topology {
				return carbons(r3.Vec{}, r3.Vec{X: 0.15}, r3.Vec{X: 0.2, Y: 0.14})
			}, 3),
		)
	})

	It("rejects an invalid configuration", func() {
		cfg.Substeps = 0
		_, err := sim.New(build("ethane"), cfg)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Ensemble", func() {
	It("runs one replica per seed", func() {
		cfg := sim.DefaultConfig()
		ens := sim.NewEnsemble(build("ethane"), cfg, 3)
		results, err := ens.Run(context.Background(), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(3))
		Expect(results[0].InitialEnergy).NotTo(Equal(results[1].InitialEnergy))
	})
})
