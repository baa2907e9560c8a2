package forcefield

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/molsim/internal/classify"
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/params"
	"github.com/san-kum/molsim/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func assemble(t *testing.T, atoms []topology.Atom, bonds []topology.Bond) (*topology.Topology, *ForceField) {
	t.Helper()
	return assembleWith(t, atoms, bonds, Options{})
}

func assembleWith(t *testing.T, atoms []topology.Atom, bonds []topology.Bond, opts Options) (*topology.Topology, *ForceField) {
	t.Helper()
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)
	rel := classify.Classify(top)
	ff, err := Assemble(top, rel, params.MM4(), opts)
	require.NoError(t, err)
	return top, ff
}

// jiggle displaces every atom by a deterministic few picometres so no
// term sits exactly at its minimum.
func jiggle(pos []r3.Vec) []r3.Vec {
	out := make([]r3.Vec, len(pos))
	for i, p := range pos {
		f := float64(i + 1)
		out[i] = r3.Add(p, r3.Scale(0.006, r3.Vec{X: math.Sin(1.3 * f), Y: math.Cos(2.1 * f), Z: math.Sin(0.7*f + 0.4)}))
	}
	return out
}

// checkGradient compares the analytic forces with central differences of
// the energy.
func checkGradient(t *testing.T, name string, term dynamo.Term, pos []r3.Vec) {
	t.Helper()
	const h = 1e-6

	forces := make([]r3.Vec, len(pos))
	term.Evaluate(pos, forces)

	scratch := make([]r3.Vec, len(pos))
	energy := func(p []r3.Vec) float64 {
		return term.Evaluate(p, scratch)
	}

	moved := dynamo.Clone(pos)
	for i := range pos {
		for axis := 0; axis < 3; axis++ {
			set := func(v float64) {
				switch axis {
				case 0:
					moved[i].X = v
				case 1:
					moved[i].Y = v
				case 2:
					moved[i].Z = v
				}
			}
			orig := component(pos[i], axis)
			set(orig + h)
			ep := energy(moved)
			set(orig - h)
			em := energy(moved)
			set(orig)

			want := -(ep - em) / (2 * h)
			got := component(forces[i], axis)
			tol := 1e-4 * math.Max(1, math.Abs(want))
			if math.Abs(got-want) > tol {
				t.Errorf("%s: atom %d axis %d: force %.8g, numeric %.8g", name, i, axis, got, want)
			}
		}
	}
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func TestTermGradients(t *testing.T) {
	atoms, bonds, err := molecules.Alkane(4)
	require.NoError(t, err)
	pos := jiggle(molecules.Positions(atoms))

	checked := map[Kind]bool{}
	for _, model := range []StretchModel{StretchSextic, StretchMorse} {
		_, ff := assembleWith(t, atoms, bonds, Options{Stretch: model})
		for _, g := range dynamo.Groups {
			for _, term := range ff.Terms(g) {
				kind := term.Kind()
				if checked[kind] {
					continue
				}
				checked[kind] = true
				checkGradient(t, kind.String(), term, pos)
			}
		}
	}
	for _, k := range Kinds {
		assert.True(t, checked[k], "butane has no %s term", k)
	}
}

func TestGroupGradients(t *testing.T) {
	atoms, bonds := molecules.MethanePair(0.42)
	_, ff := assemble(t, atoms, bonds)
	pos := jiggle(molecules.Positions(atoms))

	for _, g := range dynamo.Groups {
		checkGradient(t, g.String(), groupTerm{ff: ff, g: g}, pos)
	}
}

type groupTerm struct {
	ff *ForceField
	g  dynamo.Group
}

func (gt groupTerm) Evaluate(pos, forces []r3.Vec) float64 {
	tmp := make([]r3.Vec, len(pos))
	e, err := gt.ff.Evaluate(gt.g, pos, tmp)
	if err != nil {
		panic(err)
	}
	for i := range forces {
		forces[i] = r3.Add(forces[i], tmp[i])
	}
	return e
}

func TestEthaneAssembly(t *testing.T) {
	atoms, bonds, err := molecules.Alkane(2)
	require.NoError(t, err)
	_, ff := assemble(t, atoms, bonds)

	counts := ff.Counts()
	assert.Equal(t, 7, counts[KindStretch])
	assert.Equal(t, 12, counts[KindBend])
	assert.Equal(t, 6, counts[KindBendBend])
	assert.Equal(t, 9, counts[KindTorsion])
	assert.Equal(t, 9, counts[KindBendTorsionBend])
	assert.Equal(t, 9, counts[KindNonbonded14])
	assert.Equal(t, 0, counts[KindNonbonded])
	assert.Empty(t, ff.Terms(dynamo.Slow))
}

func TestStretchMinimum(t *testing.T) {
	s := NewStretch(0, 1, params.Stretch{Stiffness: 4.55, Length: 1.527, Cubic: 3, Quintic: 0.03, Sextic: 0.17})
	pos := []r3.Vec{{}, {X: 0.1527}}
	forces := make([]r3.Vec, 2)
	e := s.Evaluate(pos, forces)
	assert.InDelta(t, 0, e, 1e-12)
	assert.InDelta(t, 0, r3.Norm(forces[0]), 1e-9)

	pos[1].X = 0.1627
	e = s.Evaluate(pos, forces)
	assert.Greater(t, e, 0.0)
}

func TestMorseAssembly(t *testing.T) {
	atoms, bonds, err := molecules.Alkane(2)
	require.NoError(t, err)
	_, ff := assembleWith(t, atoms, bonds, Options{Stretch: StretchMorse})

	counts := ff.Counts()
	assert.Equal(t, 7, counts[KindMorse])
	assert.Equal(t, 0, counts[KindStretch])
	assert.Equal(t, 12, counts[KindBend])
}

func TestMorseShape(t *testing.T) {
	p, err := params.MM4().Stretch(6, 6)
	require.NoError(t, err)
	m := NewMorse(0, 1, p)
	depth := 0.556 * dynamo.KJPerAttojoule
	assert.InDelta(t, depth, m.WellDepth, 1e-9)
	assert.InDelta(t, math.Sqrt(p.Stiffness*100/(2*0.556)), m.Beta, 1e-9)

	pos := []r3.Vec{{}, {X: m.Length}}
	forces := make([]r3.Vec, 2)
	assert.InDelta(t, -depth, m.Evaluate(pos, forces), 1e-9)
	assert.InDelta(t, 0, r3.Norm(forces[0]), 1e-9)

	pos[1].X = m.Length + 0.5
	e := m.Evaluate(pos, make([]r3.Vec, 2))
	assert.Less(t, e, 0.0)
	assert.Greater(t, e, -0.01*depth)

	pos[1].X = m.Length + 0.01
	s := NewStretch(0, 1, p)
	sextic := s.Evaluate(pos, make([]r3.Vec, 2))
	morse := m.Evaluate(pos, make([]r3.Vec, 2)) + depth
	assert.InDelta(t, sextic, morse, 0.2*sextic)
}

func TestMorseNeedsWellDepth(t *testing.T) {
	def := params.MM4Definition()
	for i := range def.Stretch {
		def.Stretch[i].WellDepth = 0
	}
	table, err := params.NewTable(def)
	require.NoError(t, err)

	atoms, bonds, err := molecules.Alkane(2)
	require.NoError(t, err)
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)
	rel := classify.Classify(top)

	_, err = Assemble(top, rel, table, Options{Stretch: StretchMorse})
	require.ErrorIs(t, err, dynamo.ErrParameterization)
	var pe *dynamo.ParameterizationError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "morse", pe.Term)
	assert.Len(t, pe.Atoms, 2)

	_, err = Assemble(top, rel, table, Options{})
	assert.NoError(t, err)
}

func TestParseStretchModel(t *testing.T) {
	tests := []struct {
		in   string
		want StretchModel
		ok   bool
	}{
		{"", StretchSextic, true},
		{"sextic", StretchSextic, true},
		{"morse", StretchMorse, true},
		{"harmonic", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseStretchModel(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		if tt.in != "" {
			assert.Equal(t, tt.in, got.String())
		}
	}
}

func TestNewtonThirdLaw(t *testing.T) {
	atoms, bonds, err := molecules.Alkane(5)
	require.NoError(t, err)
	_, ff := assemble(t, atoms, bonds)
	pos := jiggle(molecules.Positions(atoms))

	forces := make([]r3.Vec, len(pos))
	for _, g := range dynamo.Groups {
		_, err := ff.Evaluate(g, pos, forces)
		require.NoError(t, err)
		var sum r3.Vec
		for _, f := range forces {
			sum = r3.Add(sum, f)
		}
		assert.InDelta(t, 0, r3.Norm(sum), 1e-8, "group %s", g)
	}
}

func TestParallelNonbondedMatchesSerial(t *testing.T) {
	var atoms []topology.Atom
	var bonds []topology.Bond
	for i := 0; i < 12; i++ {
		a, b := molecules.Methane(r3.Vec{X: 0.45 * float64(i%4), Y: 0.45 * float64(i/4)})
		atoms, bonds = molecules.Merge(atoms, bonds, a, b)
	}
	_, ff := assemble(t, atoms, bonds)
	slow := ff.Terms(dynamo.Slow)
	require.Len(t, slow, 1)
	nb := slow[0].(*Nonbonded)
	require.Greater(t, dynamo.Chunks(len(nb.Pairs), pairChunk), 1)

	pos := molecules.Positions(atoms)
	parallel := make([]r3.Vec, len(pos))
	ep := nb.Evaluate(pos, parallel)

	serial := make([]r3.Vec, len(pos))
	es := 0.0
	for _, p := range nb.Pairs {
		es += p.evaluate(pos, serial, newWindow(nb.Cutoff))
	}

	assert.InDelta(t, es, ep, 1e-9*math.Max(1, math.Abs(es)))
	for i := range pos {
		assert.InDelta(t, 0, r3.Norm(r3.Sub(parallel[i], serial[i])), 1e-9)
	}
}

func TestCutoffDropsDistantPairs(t *testing.T) {
	atoms, bonds := molecules.MethanePair(2.0)
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)
	rel := classify.Classify(top)
	ff, err := Assemble(top, rel, params.MM4(), Options{Cutoff: 1.0})
	require.NoError(t, err)

	forces := make([]r3.Vec, top.NumAtoms())
	e, err := ff.Evaluate(dynamo.Slow, top.Positions(), forces)
	require.NoError(t, err)
	assert.Equal(t, 0.0, e)
}

func carbonPair(r, cutoff float64) (*Nonbonded, []r3.Vec) {
	p, err := params.MM4().Nonbonded(6, 6)
	if err != nil {
		panic(err)
	}
	nb := NewNonbonded(KindNonbonded, []NonbondedPair{NewNonbondedPair(0, 1, p, 1)}, cutoff)
	return nb, []r3.Vec{{}, {X: r}}
}

func TestCutoffIsContinuous(t *testing.T) {
	const cutoff = 0.6
	nb, pos := carbonPair(cutoff-1e-4, cutoff)
	forces := make([]r3.Vec, 2)
	e := nb.Evaluate(pos, forces)
	assert.Less(t, math.Abs(e), 1e-9)
	assert.Less(t, r3.Norm(forces[0]), 1e-4)

	pos[1].X = cutoff + 1e-4
	forces = make([]r3.Vec, 2)
	assert.Equal(t, 0.0, nb.Evaluate(pos, forces))
	assert.Equal(t, r3.Vec{}, forces[0])

	// Energy falls monotonically to zero across the window.
	on := cutoff * switchRatio
	prev := math.Inf(-1)
	for r := on; r < cutoff; r += 0.002 {
		pos[1].X = r
		e := nb.Evaluate(pos, make([]r3.Vec, 2))
		assert.LessOrEqual(t, e, 0.0)
		assert.GreaterOrEqual(t, e, prev, "r %.3f", r)
		prev = e
	}
}

func TestSwitchedGradient(t *testing.T) {
	const cutoff = 0.6
	on := cutoff * switchRatio
	for _, r := range []float64{on + 0.005, (on + cutoff) / 2, cutoff - 0.005} {
		nb, pos := carbonPair(r, cutoff)
		pos[1] = r3.Add(pos[1], r3.Vec{Y: 0.01, Z: -0.004})
		checkGradient(t, "switched", nb, pos)
	}
}

func TestSwitchLeavesInnerPairs(t *testing.T) {
	const cutoff = 0.6
	r := cutoff*switchRatio - 0.01
	switched, pos := carbonPair(r, cutoff)
	plain, _ := carbonPair(r, 0)

	fs := make([]r3.Vec, 2)
	fp := make([]r3.Vec, 2)
	assert.Equal(t, plain.Evaluate(pos, fp), switched.Evaluate(pos, fs))
	assert.Equal(t, fp, fs)
}

func TestAssembleMissingParameters(t *testing.T) {
	tests := []struct {
		name  string
		atoms []topology.Atom
		bonds []topology.Bond
		term  string
	}{
		{
			name:  "hydrogen molecule",
			atoms: []topology.Atom{{Element: 1}, {Element: 1, Position: r3.Vec{X: 0.074}}},
			bonds: []topology.Bond{{A: 0, B: 1}},
			term:  "stretch",
		},
		{
			name:  "oxygen",
			atoms: []topology.Atom{{Element: 6}, {Element: 8, Position: r3.Vec{X: 0.14}}},
			bonds: []topology.Bond{{A: 0, B: 1}},
			term:  "element",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top, err := topology.New(tt.atoms, tt.bonds)
			require.NoError(t, err)
			rel := classify.Classify(top)

			_, err = Assemble(top, rel, params.MM4(), Options{})
			require.Error(t, err)
			assert.True(t, errors.Is(err, dynamo.ErrParameterization))

			var pe *dynamo.ParameterizationError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tt.term, pe.Term)
			assert.NotEmpty(t, pe.Atoms)
		})
	}
}

func TestExternalOverridesOneGroup(t *testing.T) {
	atoms, bonds := molecules.MethanePair(0.45)
	_, ff := assemble(t, atoms, bonds)

	calls := 0
	ext := &External{
		Base:  ff,
		Group: dynamo.Slow,
		Provider: func(pos []r3.Vec) (float64, []r3.Vec, error) {
			calls++
			f := make([]r3.Vec, len(pos))
			f[0] = r3.Vec{X: 1}
			return 42, f, nil
		},
	}

	pos := molecules.Positions(atoms)
	forces := make([]r3.Vec, len(pos))
	e, err := ext.Evaluate(dynamo.Slow, pos, forces)
	require.NoError(t, err)
	assert.Equal(t, 42.0, e)
	assert.Equal(t, r3.Vec{X: 1}, forces[0])

	want, err := ff.Evaluate(dynamo.Fast, pos, make([]r3.Vec, len(pos)))
	require.NoError(t, err)
	got, err := ext.Evaluate(dynamo.Fast, pos, forces)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 1, calls)
}
