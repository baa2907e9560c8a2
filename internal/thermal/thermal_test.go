package thermal

import (
	"math"
	"testing"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/molecules"
	"github.com/san-kum/molsim/internal/rigid"
	"github.com/san-kum/molsim/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// correlatedSampler gives every atom the same drift plus a rigid spin,
// with a small per-atom wobble.
type correlatedSampler struct {
	drift r3.Vec
	spin  r3.Vec
}

func (s correlatedSampler) Sample(masses []float64, positions []r3.Vec, _ float64) []r3.Vec {
	v := make([]r3.Vec, len(masses))
	for i, p := range positions {
		f := float64(i)
		wobble := r3.Vec{X: 0.01 * math.Sin(f), Y: 0.01 * math.Cos(3*f), Z: 0.01 * math.Sin(5*f)}
		v[i] = r3.Add(r3.Add(s.drift, r3.Cross(s.spin, p)), wobble)
	}
	return v
}

func methanePair(t *testing.T) (*topology.Topology, []float64) {
	t.Helper()
	atoms, bonds := molecules.MethanePair(0.5)
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)
	masses := []float64{12.011, 1.008, 1.008, 1.008, 1.008, 12.011, 1.008, 1.008, 1.008, 1.008}
	return top, masses
}

func TestThermalizeZeroesGroupMomenta(t *testing.T) {
	top, masses := methanePair(t)
	groups := rigid.New(top)
	require.Equal(t, 2, groups.Len())

	th := New(correlatedSampler{drift: r3.Vec{X: 3, Y: -1, Z: 2}, spin: r3.Vec{X: 4, Y: 1, Z: -7}}, groups)
	pos := top.Positions()
	v, err := th.Thermalize(masses, pos, 300, nil)
	require.NoError(t, err)

	for g := 0; g < groups.Len(); g++ {
		linear, angular := Momentum(v, masses, pos, groups.Group(g))
		assert.InDelta(t, 0, r3.Norm(linear), 1e-9, "group %d linear momentum", g)
		assert.InDelta(t, 0, r3.Norm(angular), 1e-9, "group %d angular momentum", g)
	}

	moving := 0.0
	for _, vi := range v {
		moving += r3.Norm(vi)
	}
	assert.Greater(t, moving, 0.0, "internal motion must survive")
}

func TestRemoveMomentumLinearGroup(t *testing.T) {
	pos := []r3.Vec{{X: 0}, {X: 0.1}, {X: 0.25}}
	masses := []float64{1, 2, 3}
	v := []r3.Vec{{Y: 1}, {Y: 2, Z: 1}, {X: 0.5, Z: -3}}

	RemoveMomentum(v, masses, pos, []int{0, 1, 2})
	linear, angular := Momentum(v, masses, pos, []int{0, 1, 2})
	assert.InDelta(t, 0, r3.Norm(linear), 1e-12)
	assert.InDelta(t, 0, r3.Norm(angular), 1e-12)
}

func TestRemoveMomentumSingleAtom(t *testing.T) {
	v := []r3.Vec{{X: 1, Y: 2, Z: 3}}
	RemoveMomentum(v, []float64{12}, []r3.Vec{{X: 5}}, []int{0})
	assert.Equal(t, r3.Vec{}, v[0])
}

func TestBaseVelocitiesSuperimposed(t *testing.T) {
	top, masses := methanePair(t)
	groups := rigid.New(top)
	th := New(correlatedSampler{drift: r3.Vec{X: 1}}, groups)

	base := make([]r3.Vec, top.NumAtoms())
	for _, i := range groups.Group(1) {
		base[i] = r3.Vec{Y: 0.5}
	}
	pos := top.Positions()
	v, err := th.Thermalize(masses, pos, 300, base)
	require.NoError(t, err)

	_, bulk0, _ := CenterOfMass(v, masses, pos, groups.Group(0))
	_, bulk1, _ := CenterOfMass(v, masses, pos, groups.Group(1))
	assert.InDelta(t, 0, r3.Norm(bulk0), 1e-9)
	assert.InDelta(t, 0.5, bulk1.Y, 1e-9)
}

func TestMaxwellBoltzmannTemperature(t *testing.T) {
	const n = 20000
	const temperature = 300.0
	masses := make([]float64, n)
	for i := range masses {
		masses[i] = 2.0
		if i%2 == 1 {
			masses[i] = 12.0
		}
	}

	v := NewMaxwellBoltzmann(7).Sample(masses, make([]r3.Vec, n), temperature)
	ke := 0.0
	for i, vi := range v {
		ke += 0.5 * masses[i] * r3.Norm2(vi)
	}
	got := 2 * ke / (3 * n * dynamo.Boltzmann)
	assert.InEpsilon(t, temperature, got, 0.03)
}

func TestMaxwellBoltzmannDeterministic(t *testing.T) {
	masses := []float64{1, 2, 3}
	a := NewMaxwellBoltzmann(42).Sample(masses, nil, 250)
	b := NewMaxwellBoltzmann(42).Sample(masses, nil, 250)
	assert.Equal(t, a, b)

	zero := NewMaxwellBoltzmann(42).Sample(masses, nil, 0)
	assert.Equal(t, make([]r3.Vec, 3), zero)
}

func TestThermalizeRejectsMismatchedBase(t *testing.T) {
	top, masses := methanePair(t)
	th := New(NewMaxwellBoltzmann(1), rigid.New(top))
	_, err := th.Thermalize(masses, top.Positions(), 300, make([]r3.Vec, 3))
	assert.Error(t, err)
}
