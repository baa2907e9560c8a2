// Package topology holds the immutable atom list and bond graph of a
// molecular assembly.
package topology

import (
	"fmt"
	"slices"

	"github.com/san-kum/molsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// MaxDegree is the largest number of bonds an atom may carry.
const MaxDegree = 4

// Atom is one particle. Element is the atomic number, Position is in nm and
// Mass in amu. A zero Mass means "use the parameter table's element mass".
type Atom struct {
	Element  int
	Position r3.Vec
	Mass     float64
}

// Bond is an unordered pair of atom indices.
type Bond struct {
	A, B int
}

// Canonical returns the bond with A < B.
func (b Bond) Canonical() Bond {
	if b.A > b.B {
		return Bond{A: b.B, B: b.A}
	}
	return b
}

// Topology is a validated, read-only bond graph. Adjacency is stored as a
// flat index array with per-atom offsets.
type Topology struct {
	atoms   []Atom
	bonds   []Bond
	offsets []int
	targets []int
}

// New validates atoms and bonds and builds the adjacency index.
func New(atoms []Atom, bonds []Bond) (*Topology, error) {
	n := len(atoms)
	for i, a := range atoms {
		if a.Element <= 0 {
			return nil, &dynamo.TopologyError{Atom: i, Reason: fmt.Sprintf("element %d is not positive", a.Element)}
		}
		if a.Mass < 0 {
			return nil, &dynamo.TopologyError{Atom: i, Reason: fmt.Sprintf("negative mass %g", a.Mass)}
		}
		if !dynamo.IsFinite(a.Position) {
			return nil, &dynamo.TopologyError{Atom: i, Reason: "position is not finite"}
		}
	}

	canon := make([]Bond, len(bonds))
	degree := make([]int, n)
	for i, b := range bonds {
		if b.A < 0 || b.A >= n || b.B < 0 || b.B >= n {
			return nil, &dynamo.TopologyError{Atom: -1, Reason: fmt.Sprintf("bond %d (%d-%d) references an atom outside [0,%d)", i, b.A, b.B, n)}
		}
		if b.A == b.B {
			return nil, &dynamo.TopologyError{Atom: b.A, Reason: "bonded to itself"}
		}
		canon[i] = b.Canonical()
		degree[b.A]++
		degree[b.B]++
	}
	for i, d := range degree {
		if d > MaxDegree {
			return nil, &dynamo.TopologyError{Atom: i, Reason: fmt.Sprintf("degree %d exceeds %d", d, MaxDegree)}
		}
	}

	slices.SortFunc(canon, compareBonds)
	for i := 1; i < len(canon); i++ {
		if canon[i] == canon[i-1] {
			return nil, &dynamo.TopologyError{Atom: canon[i].A, Reason: fmt.Sprintf("duplicate bond %d-%d", canon[i].A, canon[i].B)}
		}
	}

	offsets := make([]int, n+1)
	for i, d := range degree {
		offsets[i+1] = offsets[i] + d
	}
	targets := make([]int, offsets[n])
	fill := make([]int, n)
	copy(fill, offsets[:n])
	for _, b := range canon {
		targets[fill[b.A]] = b.B
		fill[b.A]++
		targets[fill[b.B]] = b.A
		fill[b.B]++
	}
	for i := 0; i < n; i++ {
		slices.Sort(targets[offsets[i]:offsets[i+1]])
	}

	return &Topology{
		atoms:   slices.Clone(atoms),
		bonds:   canon,
		offsets: offsets,
		targets: targets,
	}, nil
}

func compareBonds(x, y Bond) int {
	if x.A != y.A {
		return x.A - y.A
	}
	return x.B - y.B
}

func (t *Topology) NumAtoms() int { return len(t.atoms) }
func (t *Topology) NumBonds() int { return len(t.bonds) }

func (t *Topology) Atom(i int) Atom   { return t.atoms[i] }
func (t *Topology) Element(i int) int { return t.atoms[i].Element }

// Atoms returns a copy of the atom list.
func (t *Topology) Atoms() []Atom { return slices.Clone(t.atoms) }

// Bonds returns the canonical bonds sorted lexicographically. The slice
// must not be modified.
func (t *Topology) Bonds() []Bond { return t.bonds }

// Neighbors returns the sorted neighbours of atom i. The slice must not
// be modified.
func (t *Topology) Neighbors(i int) []int {
	return t.targets[t.offsets[i]:t.offsets[i+1]]
}

func (t *Topology) Degree(i int) int {
	return t.offsets[i+1] - t.offsets[i]
}

func (t *Topology) Bonded(a, b int) bool {
	_, ok := slices.BinarySearch(t.Neighbors(a), b)
	return ok
}

// Positions returns a copy of the atom positions.
func (t *Topology) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(t.atoms))
	for i, a := range t.atoms {
		pos[i] = a.Position
	}
	return pos
}

// Masses returns a copy of the per-atom masses as given at construction.
func (t *Topology) Masses() []float64 {
	m := make([]float64, len(t.atoms))
	for i, a := range t.atoms {
		m[i] = a.Mass
	}
	return m
}

// Elements returns a copy of the per-atom element numbers.
func (t *Topology) Elements() []int {
	e := make([]int, len(t.atoms))
	for i, a := range t.atoms {
		e[i] = a.Element
	}
	return e
}
