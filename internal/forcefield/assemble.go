package forcefield

import (
	"errors"
	"fmt"

	"github.com/san-kum/molsim/internal/classify"
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/params"
	"github.com/san-kum/molsim/internal/topology"
)

// StretchModel selects the bond-stretch potential.
type StretchModel int

const (
	// StretchSextic is the MM4 sextic polynomial.
	StretchSextic StretchModel = iota
	// StretchMorse stays bounded at long bond lengths.
	StretchMorse
)

func (m StretchModel) String() string {
	switch m {
	case StretchSextic:
		return "sextic"
	case StretchMorse:
		return "morse"
	}
	return "unknown"
}

// ParseStretchModel accepts the names returned by String. An empty name
// selects the sextic polynomial.
func ParseStretchModel(name string) (StretchModel, error) {
	switch name {
	case "", "sextic":
		return StretchSextic, nil
	case "morse":
		return StretchMorse, nil
	}
	return 0, fmt.Errorf("unknown stretch potential %q", name)
}

// Options tunes assembly.
type Options struct {
	// Cutoff switches full nonbonded pairs smoothly to zero at this many
	// nm. Zero keeps every pair.
	Cutoff  float64
	Stretch StretchModel
}

// Assemble builds one term per bonded relationship and nonbonded pair.
// Bonded terms and 1-4 pairs go to the fast group, the remaining
// nonbonded pairs to the slow group.
func Assemble(top *topology.Topology, rel *classify.Relationships, table *params.Table, opts Options) (*ForceField, error) {
	a := &assembler{top: top, rel: rel, table: table, ff: New(top.NumAtoms()), model: opts.Stretch}
	for i := 0; i < top.NumAtoms(); i++ {
		if _, err := table.Element(top.Element(i)); err != nil {
			return nil, withAtoms(err, i)
		}
	}

	steps := []func() error{a.stretch, a.bend, a.bendBend, a.torsion}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := a.nonbonded(opts.Cutoff); err != nil {
		return nil, err
	}
	return a.ff, nil
}

type assembler struct {
	top   *topology.Topology
	rel   *classify.Relationships
	table *params.Table
	ff    *ForceField
	model StretchModel
}

func (a *assembler) el(i int) int { return a.top.Element(i) }

func (a *assembler) stretch() error {
	for _, b := range a.rel.Bonds {
		p, err := a.table.Stretch(a.el(b.A), a.el(b.B))
		if err != nil {
			return withAtoms(err, b.A, b.B)
		}
		switch a.model {
		case StretchMorse:
			if p.WellDepth <= 0 {
				return &dynamo.ParameterizationError{
					Term:     "morse",
					Elements: params.PairKey(a.el(b.A), a.el(b.B)).Elements(),
					Atoms:    []int{b.A, b.B},
				}
			}
			a.ff.Add(dynamo.Fast, NewMorse(b.A, b.B, p))
		default:
			a.ff.Add(dynamo.Fast, NewStretch(b.A, b.B, p))
		}
	}
	return nil
}

// angleType is one plus the number of hydrogens among the centre's
// neighbours other than the angle's own legs.
func (a *assembler) angleType(i, center, j int) int {
	t := 1
	for _, n := range a.top.Neighbors(center) {
		if n != i && n != j && a.el(n) == params.Hydrogen {
			t++
		}
	}
	return min(t, 3)
}

// equilibrium returns the bend entry of i-center-j and its equilibrium
// angle in radians.
func (a *assembler) equilibrium(i, center, j int) (params.Bend, float64, error) {
	p, err := a.table.Bend(a.el(i), a.el(center), a.el(j))
	if err != nil {
		return params.Bend{}, 0, withAtoms(err, i, center, j)
	}
	return p, p.Angles[a.angleType(i, center, j)-1] / dynamo.DegPerRad, nil
}

func (a *assembler) bend() error {
	for _, ang := range a.rel.Angles {
		p, err := a.table.Bend(a.el(ang.A), a.el(ang.Center), a.el(ang.B))
		if err != nil {
			return withAtoms(err, ang.A, ang.Center, ang.B)
		}
		legA, err := a.table.Stretch(a.el(ang.A), a.el(ang.Center))
		if err != nil {
			return withAtoms(err, ang.A, ang.Center)
		}
		legB, err := a.table.Stretch(a.el(ang.Center), a.el(ang.B))
		if err != nil {
			return withAtoms(err, ang.Center, ang.B)
		}
		t := a.angleType(ang.A, ang.Center, ang.B)
		a.ff.Add(dynamo.Fast, NewBend(ang.A, ang.Center, ang.B, p, t, legA, legB))
	}
	return nil
}

func (a *assembler) bendBend() error {
	for c := 0; c < a.top.NumAtoms(); c++ {
		nbrs := a.top.Neighbors(c)
		if len(nbrs) < 3 {
			continue
		}
		for _, j := range nbrs {
			for x := 0; x < len(nbrs); x++ {
				k := nbrs[x]
				if k == j {
					continue
				}
				for y := x + 1; y < len(nbrs); y++ {
					l := nbrs[y]
					if l == j {
						continue
					}
					p1, t1, err := a.equilibrium(j, c, k)
					if err != nil {
						return err
					}
					p2, t2, err := a.equilibrium(j, c, l)
					if err != nil {
						return err
					}
					k12 := p1.BendBend * p2.BendBend
					if k12 == 0 {
						continue
					}
					a.ff.Add(dynamo.Fast, &BendBend{
						Center:   c,
						J:        j,
						K:        k,
						L:        l,
						Coupling: -bendScale * k12 * dynamo.KJPerKcal,
						Theta1:   t1,
						Theta2:   t2,
					})
				}
			}
		}
	}
	return nil
}

func (a *assembler) torsion() error {
	for _, t := range a.rel.Torsions {
		p, err := a.table.Torsion(a.el(t.A), a.el(t.B), a.el(t.C), a.el(t.D))
		if err != nil {
			return withAtoms(err, t.A, t.B, t.C, t.D)
		}
		central, err := a.table.Stretch(a.el(t.B), a.el(t.C))
		if err != nil {
			return withAtoms(err, t.B, t.C)
		}
		a.ff.Add(dynamo.Fast, NewTorsion(t.A, t.B, t.C, t.D, p, central))

		if p.BendTorsionBend == 0 {
			continue
		}
		_, theta1, err := a.equilibrium(t.A, t.B, t.C)
		if err != nil {
			return err
		}
		_, theta2, err := a.equilibrium(t.B, t.C, t.D)
		if err != nil {
			return err
		}
		a.ff.Add(dynamo.Fast, NewBendTorsionBend(t.A, t.B, t.C, t.D, p.BendTorsionBend, theta1, theta2))
	}
	return nil
}

func (a *assembler) nonbonded(cutoff float64) error {
	scale := a.table.Scale14()
	pairs14 := make([]NonbondedPair, 0, len(a.rel.Pairs14))
	for _, p := range a.rel.Pairs14 {
		nb, err := a.table.Nonbonded(a.el(p.A), a.el(p.B))
		if err != nil {
			return withAtoms(err, p.A, p.B)
		}
		pairs14 = append(pairs14, NewNonbondedPair(p.A, p.B, nb, scale))
	}

	var full []NonbondedPair
	n := a.top.NumAtoms()
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if a.rel.Excluded(i, j) || a.rel.Is14(i, j) {
				continue
			}
			nb, err := a.table.Nonbonded(a.el(i), a.el(j))
			if err != nil {
				return withAtoms(err, i, j)
			}
			full = append(full, NewNonbondedPair(i, j, nb, 1))
		}
	}

	if len(pairs14) > 0 {
		a.ff.Add(dynamo.Fast, NewNonbonded(KindNonbonded14, pairs14, 0))
	}
	if len(full) > 0 {
		a.ff.Add(dynamo.Slow, NewNonbonded(KindNonbonded, full, cutoff))
	}
	return nil
}

// withAtoms attaches the offending atom indices to a parameter error.
func withAtoms(err error, atoms ...int) error {
	var pe *dynamo.ParameterizationError
	if errors.As(err, &pe) {
		pe.Atoms = atoms
	}
	return err
}
