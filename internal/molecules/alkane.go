// Package molecules builds starting geometries for saturated hydrocarbons.
package molecules

import (
	"fmt"
	"math"

	"github.com/san-kum/molsim/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// Equilibrium geometry in nm and radians.
const (
	CCLength = 0.1527
	CHLength = 0.1112
)

var tetrahedral = math.Acos(-1.0 / 3)

const (
	hydrogen = 1
	carbon   = 6
)

// Alkane builds a straight-chain CnH2n+2 in an all-trans zigzag with the
// carbon backbone in the xy-plane and staggered hydrogens.
func Alkane(n int) ([]topology.Atom, []topology.Bond, error) {
	if n < 1 {
		return nil, nil, fmt.Errorf("alkane needs at least one carbon, got %d", n)
	}
	if n == 1 {
		atoms, bonds := Methane(r3.Vec{})
		return atoms, bonds, nil
	}

	a := CCLength * math.Sin(tetrahedral/2)
	b := CCLength * math.Cos(tetrahedral/2)

	atoms := make([]topology.Atom, 0, 3*n+2)
	bonds := make([]topology.Bond, 0, 3*n+1)
	for i := 0; i < n; i++ {
		p := r3.Vec{X: float64(i) * a}
		if i%2 == 1 {
			p.Y = b
		}
		atoms = append(atoms, topology.Atom{Element: carbon, Position: p})
		if i > 0 {
			bonds = append(bonds, topology.Bond{A: i - 1, B: i})
		}
	}

	for i := 0; i < n; i++ {
		c := atoms[i].Position
		var dirs []r3.Vec
		switch i {
		case 0:
			dirs = methylHydrogens(c, atoms[1].Position, backbone(atoms, 2), r3.Vec{Z: 1})
		case n - 1:
			dirs = methylHydrogens(c, atoms[n-2].Position, backbone(atoms, n-3), r3.Vec{Z: -1})
		default:
			dirs = methyleneHydrogens(c, atoms[i-1].Position, atoms[i+1].Position)
		}
		for _, d := range dirs {
			atoms = append(atoms, topology.Atom{Element: hydrogen, Position: r3.Add(c, r3.Scale(CHLength, d))})
			bonds = append(bonds, topology.Bond{A: i, B: len(atoms) - 1})
		}
	}
	return atoms, bonds, nil
}

func backbone(atoms []topology.Atom, i int) *r3.Vec {
	if i < 0 || i >= len(atoms) || atoms[i].Element != carbon {
		return nil
	}
	p := atoms[i].Position
	return &p
}

// methylHydrogens returns three unit directions for a carbon at c bonded
// to n. The first hydrogen is placed anti to far, or along ref when the
// chain has no third carbon.
func methylHydrogens(c, n r3.Vec, far *r3.Vec, ref r3.Vec) []r3.Vec {
	u := r3.Unit(r3.Sub(n, c))
	if far != nil {
		ref = r3.Scale(-1, r3.Sub(*far, n))
	}
	e1 := r3.Unit(r3.Sub(ref, r3.Scale(r3.Dot(ref, u), u)))
	e2 := r3.Cross(u, e1)

	dirs := make([]r3.Vec, 3)
	for k := range dirs {
		phi := 2 * math.Pi * float64(k) / 3
		perp := r3.Add(r3.Scale(math.Cos(phi), e1), r3.Scale(math.Sin(phi), e2))
		dirs[k] = r3.Add(r3.Scale(math.Cos(tetrahedral), u), r3.Scale(math.Sin(tetrahedral), perp))
	}
	return dirs
}

// methyleneHydrogens returns the two remaining tetrahedral directions of a
// carbon at c bonded to p and q.
func methyleneHydrogens(c, p, q r3.Vec) []r3.Vec {
	u1 := r3.Unit(r3.Sub(p, c))
	u2 := r3.Unit(r3.Sub(q, c))
	w := r3.Unit(r3.Scale(-1, r3.Add(u1, u2)))
	n := r3.Unit(r3.Cross(u1, u2))
	cw := math.Cos(tetrahedral / 2)
	sw := math.Sin(tetrahedral / 2)
	return []r3.Vec{
		r3.Add(r3.Scale(cw, w), r3.Scale(sw, n)),
		r3.Sub(r3.Scale(cw, w), r3.Scale(sw, n)),
	}
}

// Methane builds CH4 centred at c.
func Methane(c r3.Vec) ([]topology.Atom, []topology.Bond) {
	s := CHLength / math.Sqrt(3)
	corners := []r3.Vec{{X: 1, Y: 1, Z: 1}, {X: 1, Y: -1, Z: -1}, {X: -1, Y: 1, Z: -1}, {X: -1, Y: -1, Z: 1}}

	atoms := []topology.Atom{{Element: carbon, Position: c}}
	bonds := make([]topology.Bond, 0, 4)
	for _, d := range corners {
		atoms = append(atoms, topology.Atom{Element: hydrogen, Position: r3.Add(c, r3.Scale(s, d))})
		bonds = append(bonds, topology.Bond{A: 0, B: len(atoms) - 1})
	}
	return atoms, bonds
}

// MethanePair builds two methanes separated by sep nm along x.
func MethanePair(sep float64) ([]topology.Atom, []topology.Bond) {
	a1, b1 := Methane(r3.Vec{})
	a2, b2 := Methane(r3.Vec{X: sep})
	return Merge(a1, b1, a2, b2)
}

// Merge concatenates two fragments, offsetting the second one's bond
// indices.
func Merge(a1 []topology.Atom, b1 []topology.Bond, a2 []topology.Atom, b2 []topology.Bond) ([]topology.Atom, []topology.Bond) {
	atoms := append(append([]topology.Atom(nil), a1...), a2...)
	bonds := append([]topology.Bond(nil), b1...)
	off := len(a1)
	for _, b := range b2 {
		bonds = append(bonds, topology.Bond{A: b.A + off, B: b.B + off})
	}
	return atoms, bonds
}

// Positions extracts the atom positions of a fragment.
func Positions(atoms []topology.Atom) []r3.Vec {
	pos := make([]r3.Vec, len(atoms))
	for i, a := range atoms {
		pos[i] = a.Position
	}
	return pos
}
