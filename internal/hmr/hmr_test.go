package hmr

import (
	"errors"
	"testing"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestRepartitionCarbonHydrogen(t *testing.T) {
	top, err := topology.New([]topology.Atom{{Element: 6}, {Element: 1}}, []topology.Bond{{A: 0, B: 1}})
	require.NoError(t, err)

	out, err := Repartition(top, []float64{12.011, 1.008}, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, 11.019, out[0], 1e-9)
	assert.InDelta(t, 2.0, out[1], 1e-9)
	assert.InDelta(t, 13.019, floats.Sum(out), 1e-9)
}

func TestRepartitionAlkaneConservesMass(t *testing.T) {
	atoms, bonds, err := molecules.Alkane(5)
	require.NoError(t, err)
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)

	masses := make([]float64, top.NumAtoms())
	for i := range masses {
		masses[i] = 1.008
		if top.Element(i) == 6 {
			masses[i] = 12.011
		}
	}

	out, err := Repartition(top, masses, DefaultConfig())
	require.NoError(t, err)
	assert.InDelta(t, floats.Sum(masses), floats.Sum(out), 1e-9)

	for i := range out {
		if top.Element(i) == 1 {
			assert.InDelta(t, 2.0, out[i], 1e-12)
		} else {
			hydrogens := 4 - len(nonHydrogen(top, i))
			assert.InDelta(t, 12.011-0.992*float64(hydrogens), out[i], 1e-9)
		}
	}
	assert.Equal(t, 12.011, masses[0], "input must not be modified")
}

func nonHydrogen(top *topology.Topology, i int) []int {
	var out []int
	for _, n := range top.Neighbors(i) {
		if top.Element(n) != 1 {
			out = append(out, n)
		}
	}
	return out
}

func TestRepartitionSkipsHeavyEnoughLightAtoms(t *testing.T) {
	top, err := topology.New([]topology.Atom{{Element: 6}, {Element: 1}}, []topology.Bond{{A: 0, B: 1}})
	require.NoError(t, err)

	out, err := Repartition(top, []float64{12.011, 3.0}, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []float64{12.011, 3.0}, out)
}

func TestRepartitionExhaustsHeavyAtom(t *testing.T) {
	atoms, bonds := molecules.Methane(r3.Vec{})
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)

	masses := []float64{12.011, 1.008, 1.008, 1.008, 1.008}
	_, err = Repartition(top, masses, Config{TargetMass: 5, Light: []int{1}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamo.ErrConservation))

	var ce *dynamo.ConservationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 0, ce.Atom)
}
