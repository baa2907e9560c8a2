package molecules

import (
	"math"
	"testing"

	"github.com/san-kum/molsim/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAlkaneComposition(t *testing.T) {
	for n := 1; n <= 6; n++ {
		atoms, bonds, err := Alkane(n)
		require.NoError(t, err)

		top, err := topology.New(atoms, bonds)
		require.NoError(t, err)

		assert.Equal(t, 3*n+2, top.NumAtoms(), "C%d", n)
		assert.Equal(t, 3*n+1, top.NumBonds(), "C%d", n)
		for i := 0; i < top.NumAtoms(); i++ {
			if top.Element(i) == carbon {
				assert.Equal(t, 4, top.Degree(i), "carbon %d of C%d", i, n)
			} else {
				assert.Equal(t, 1, top.Degree(i), "hydrogen %d of C%d", i, n)
			}
		}
	}
}

func TestAlkaneGeometry(t *testing.T) {
	atoms, bonds, err := Alkane(4)
	require.NoError(t, err)
	top, err := topology.New(atoms, bonds)
	require.NoError(t, err)

	for _, b := range top.Bonds() {
		want := CHLength
		if top.Element(b.A) == carbon && top.Element(b.B) == carbon {
			want = CCLength
		}
		got := r3.Norm(r3.Sub(atoms[b.A].Position, atoms[b.B].Position))
		assert.InDelta(t, want, got, 1e-9, "bond %v", b)
	}

	for c := 0; c < top.NumAtoms(); c++ {
		nbrs := top.Neighbors(c)
		for x := 0; x < len(nbrs); x++ {
			for y := x + 1; y < len(nbrs); y++ {
				u := r3.Sub(atoms[nbrs[x]].Position, atoms[c].Position)
				w := r3.Sub(atoms[nbrs[y]].Position, atoms[c].Position)
				cos := r3.Dot(u, w) / (r3.Norm(u) * r3.Norm(w))
				assert.InDelta(t, tetrahedral, math.Acos(cos), 1e-6, "angle %d-%d-%d", nbrs[x], c, nbrs[y])
			}
		}
	}
}

func TestAlkaneRejectsEmpty(t *testing.T) {
	_, _, err := Alkane(0)
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.Contains(t, r.List(), "ethane")

	top, err := r.Build("methane_pair", 0.5)
	require.NoError(t, err)
	assert.Equal(t, 10, top.NumAtoms())
	assert.InDelta(t, 0.5, top.Atom(5).Position.X, 1e-12)

	_, err = r.Build("benzene", 0)
	assert.ErrorContains(t, err, "unknown molecule")
}
