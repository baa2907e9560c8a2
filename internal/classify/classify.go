// Package classify derives the bonded relationships of a topology: bonds,
// angles, torsions, the 1-3 and 1-4 atom pairs and the nonbonded
// exclusion set.
package classify

import (
	"slices"

	"github.com/san-kum/molsim/internal/topology"
)

// Pair is an unordered atom pair with A < B.
type Pair struct {
	A, B int
}

func NewPair(a, b int) Pair {
	if a > b {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// Angle is a bonded triple A-Center-B with A < B.
type Angle struct {
	A, Center, B int
}

// Torsion is a bonded chain A-B-C-D with A < D.
type Torsion struct {
	A, B, C, D int
}

// Relationships is the full set of bonded relationships, each enumerated
// once and sorted lexicographically.
type Relationships struct {
	Bonds      []Pair
	Angles     []Angle
	Torsions   []Torsion
	Pairs13    []Pair
	Pairs14    []Pair
	Exclusions []Pair
}

// Counts summarises a Relationships value.
type Counts struct {
	Bonds, Angles, Torsions, Pairs13, Pairs14, Exclusions int
}

func (r *Relationships) Counts() Counts {
	return Counts{
		Bonds:      len(r.Bonds),
		Angles:     len(r.Angles),
		Torsions:   len(r.Torsions),
		Pairs13:    len(r.Pairs13),
		Pairs14:    len(r.Pairs14),
		Exclusions: len(r.Exclusions),
	}
}

// Excluded reports whether a and b are 1-2 or 1-3 partners.
func (r *Relationships) Excluded(a, b int) bool {
	return containsPair(r.Exclusions, NewPair(a, b))
}

// Is14 reports whether a and b interact through the scaled 1-4 term.
func (r *Relationships) Is14(a, b int) bool {
	return containsPair(r.Pairs14, NewPair(a, b))
}

func containsPair(sorted []Pair, p Pair) bool {
	_, ok := slices.BinarySearchFunc(sorted, p, comparePairs)
	return ok
}

func comparePairs(x, y Pair) int {
	if x.A != y.A {
		return x.A - y.A
	}
	return x.B - y.B
}

func compareAngles(x, y Angle) int {
	if x.A != y.A {
		return x.A - y.A
	}
	if x.Center != y.Center {
		return x.Center - y.Center
	}
	return x.B - y.B
}

func compareTorsions(x, y Torsion) int {
	if x.A != y.A {
		return x.A - y.A
	}
	if x.B != y.B {
		return x.B - y.B
	}
	if x.C != y.C {
		return x.C - y.C
	}
	return x.D - y.D
}

// frame is one level of the explicit walk stack.
type frame struct {
	atom int
	next int
}

// Classify walks every simple path of up to three bonds starting at each
// atom. A path is recorded only from its lower-indexed end, so every
// relationship appears exactly once. Degree bounds are already enforced
// by topology.New.
func Classify(top *topology.Topology) *Relationships {
	n := top.NumAtoms()

	rel := &Relationships{}
	for _, b := range top.Bonds() {
		rel.Bonds = append(rel.Bonds, Pair{A: b.A, B: b.B})
	}

	var (
		path  [4]int
		stack [4]frame
	)
	for root := 0; root < n; root++ {
		path[0] = root
		stack[0] = frame{atom: root}
		depth := 0
		for depth >= 0 {
			f := &stack[depth]
			nbrs := top.Neighbors(f.atom)
			if depth == 3 || f.next >= len(nbrs) {
				depth--
				continue
			}
			next := nbrs[f.next]
			f.next++
			if slices.Contains(path[:depth+1], next) {
				continue
			}
			depth++
			path[depth] = next
			stack[depth] = frame{atom: next}
			if next < root {
				continue
			}
			switch depth {
			case 2:
				rel.Angles = append(rel.Angles, Angle{A: root, Center: path[1], B: next})
				rel.Pairs13 = append(rel.Pairs13, Pair{A: root, B: next})
			case 3:
				rel.Torsions = append(rel.Torsions, Torsion{A: root, B: path[1], C: path[2], D: next})
				rel.Pairs14 = append(rel.Pairs14, Pair{A: root, B: next})
			}
		}
	}

	slices.SortFunc(rel.Angles, compareAngles)
	slices.SortFunc(rel.Torsions, compareTorsions)

	// rings can reach the same partner along several paths
	slices.SortFunc(rel.Pairs13, comparePairs)
	rel.Pairs13 = slices.Compact(rel.Pairs13)
	rel.Pairs13 = slices.DeleteFunc(rel.Pairs13, func(p Pair) bool {
		return containsPair(rel.Bonds, p)
	})

	slices.SortFunc(rel.Pairs14, comparePairs)
	rel.Pairs14 = slices.Compact(rel.Pairs14)
	rel.Pairs14 = slices.DeleteFunc(rel.Pairs14, func(p Pair) bool {
		return containsPair(rel.Bonds, p) || containsPair(rel.Pairs13, p)
	})

	rel.Exclusions = make([]Pair, 0, len(rel.Bonds)+len(rel.Pairs13))
	rel.Exclusions = append(rel.Exclusions, rel.Bonds...)
	rel.Exclusions = append(rel.Exclusions, rel.Pairs13...)
	slices.SortFunc(rel.Exclusions, comparePairs)

	return rel
}
