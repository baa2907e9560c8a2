// Package params holds the immutable empirical parameter table. Entries
// are keyed by canonical element tuples and stored in MM4 native units
// (Å, degrees, mdyn/Å, kcal/mol).
package params

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/san-kum/molsim/internal/dynamo"
)

const (
	Hydrogen = 1
	Carbon   = 6
)

// Key is a canonical element tuple. Unused slots are zero.
type Key struct {
	n int
	e [4]int
}

// ElementKey keys per-element data.
func ElementKey(e int) Key {
	return Key{n: 1, e: [4]int{e}}
}

// PairKey keys bond and nonbonded pair data; the elements are sorted.
func PairKey(a, b int) Key {
	if a > b {
		a, b = b, a
	}
	return Key{n: 2, e: [4]int{a, b}}
}

// AngleKey keys bend data. The outer elements are sorted around the centre.
func AngleKey(a, center, b int) Key {
	if a > b {
		a, b = b, a
	}
	return Key{n: 3, e: [4]int{a, center, b}}
}

// TorsionKey keys torsion data. The chain is read in the direction that
// puts the smaller terminal element first.
func TorsionKey(a, b, c, d int) Key {
	if a > d || (a == d && b > c) {
		a, b, c, d = d, c, b, a
	}
	return Key{n: 4, e: [4]int{a, b, c, d}}
}

// Elements returns the tuple as a slice.
func (k Key) Elements() []int {
	return slices.Clone(k.e[:k.n])
}

func (k Key) String() string {
	parts := make([]string, k.n)
	for i := 0; i < k.n; i++ {
		parts[i] = fmt.Sprint(k.e[i])
	}
	return strings.Join(parts, "-")
}

func compareKeys(x, y Key) int {
	if c := cmp.Compare(x.n, y.n); c != 0 {
		return c
	}
	for i := 0; i < 4; i++ {
		if c := cmp.Compare(x.e[i], y.e[i]); c != 0 {
			return c
		}
	}
	return 0
}

// Element holds per-element mass and van der Waals data.
type Element struct {
	Symbol  string
	Mass    float64
	Radius  float64
	Epsilon float64
}

// Nonbonded is a pair's combined van der Waals distance (Å) and well
// depth (kcal/mol).
type Nonbonded struct {
	Distance float64
	Epsilon  float64
}

// Stretch holds the bond-stretch polynomial: stiffness in mdyn/Å,
// equilibrium length in Å, cubic constant in 1/Å and the quintic and
// sextic coefficients. WellDepth is the Morse dissociation energy in aJ,
// zero when the bond has no Morse form.
type Stretch struct {
	Stiffness float64
	Length    float64
	Cubic     float64
	Quintic   float64
	Sextic    float64
	WellDepth float64
}

// Bend holds the angle-bend data: stiffness in mdyn·Å/rad², equilibrium
// angles in degrees indexed by angle type minus one, the stretch-bend
// constant and the bend-bend coupling.
type Bend struct {
	Stiffness   float64
	Angles      [3]float64
	StretchBend float64
	BendBend    float64
}

// Torsion holds the Fourier torsion barriers in kcal/mol, the fold of the
// V2 term, the torsion-stretch constant and the bend-torsion-bend constant.
type Torsion struct {
	V1              float64
	V2              float64
	V3              float64
	V2Fold          int
	TorsionStretch  float64
	BendTorsionBend float64
}

type entry[T any] struct {
	key Key
	val T
}

// lookup is a flat key-sorted table searched by bisection.
type lookup[T any] []entry[T]

func (l lookup[T]) find(k Key) (T, bool) {
	i, ok := slices.BinarySearchFunc(l, k, func(e entry[T], k Key) int {
		return compareKeys(e.key, k)
	})
	if !ok {
		var zero T
		return zero, false
	}
	return l[i].val, true
}

func (l lookup[T]) keys() []Key {
	ks := make([]Key, len(l))
	for i, e := range l {
		ks[i] = e.key
	}
	return ks
}

func build[T any](kind string, entries []entry[T]) (lookup[T], error) {
	l := lookup[T](slices.Clone(entries))
	slices.SortStableFunc(l, func(x, y entry[T]) int { return compareKeys(x.key, y.key) })
	for i := 1; i < len(l); i++ {
		if compareKeys(l[i].key, l[i-1].key) == 0 {
			return nil, fmt.Errorf("params: duplicate %s entry for %s", kind, l[i].key)
		}
	}
	return l, nil
}

// Table is the read-only parameter set shared by every assembler.
type Table struct {
	name     string
	scale14  float64
	elements lookup[Element]
	pairs    lookup[Nonbonded]
	stretch  lookup[Stretch]
	bend     lookup[Bend]
	torsion  lookup[Torsion]
}

func (t *Table) Name() string { return t.name }

// Scale14 is the factor applied to nonbonded energies of 1-4 pairs.
func (t *Table) Scale14() float64 { return t.scale14 }

func missing(term string, k Key) error {
	return &dynamo.ParameterizationError{Term: term, Elements: k.Elements()}
}

func (t *Table) Element(e int) (Element, error) {
	k := ElementKey(e)
	v, ok := t.elements.find(k)
	if !ok {
		return Element{}, missing("element", k)
	}
	return v, nil
}

// Nonbonded returns the pair's van der Waals data. An explicit pair entry
// wins; otherwise radii are summed and well depths combined geometrically.
func (t *Table) Nonbonded(a, b int) (Nonbonded, error) {
	if v, ok := t.pairs.find(PairKey(a, b)); ok {
		return v, nil
	}
	ea, err := t.Element(a)
	if err != nil {
		return Nonbonded{}, err
	}
	eb, err := t.Element(b)
	if err != nil {
		return Nonbonded{}, err
	}
	return Nonbonded{
		Distance: ea.Radius + eb.Radius,
		Epsilon:  math.Sqrt(ea.Epsilon * eb.Epsilon),
	}, nil
}

func (t *Table) Stretch(a, b int) (Stretch, error) {
	k := PairKey(a, b)
	v, ok := t.stretch.find(k)
	if !ok {
		return Stretch{}, missing("stretch", k)
	}
	return v, nil
}

func (t *Table) Bend(a, center, b int) (Bend, error) {
	k := AngleKey(a, center, b)
	v, ok := t.bend.find(k)
	if !ok {
		return Bend{}, missing("bend", k)
	}
	return v, nil
}

func (t *Table) Torsion(a, b, c, d int) (Torsion, error) {
	k := TorsionKey(a, b, c, d)
	v, ok := t.torsion.find(k)
	if !ok {
		return Torsion{}, missing("torsion", k)
	}
	return v, nil
}

// Summary counts the entries of each kind.
type Summary struct {
	Elements, Pairs, Stretch, Bend, Torsion int
}

func (t *Table) Summary() Summary {
	return Summary{
		Elements: len(t.elements),
		Pairs:    len(t.pairs),
		Stretch:  len(t.stretch),
		Bend:     len(t.bend),
		Torsion:  len(t.torsion),
	}
}

// Keys lists the keys of one kind ("element", "pair", "stretch", "bend"
// or "torsion") in table order.
func (t *Table) Keys(kind string) []Key {
	switch kind {
	case "element":
		return t.elements.keys()
	case "pair":
		return t.pairs.keys()
	case "stretch":
		return t.stretch.keys()
	case "bend":
		return t.bend.keys()
	case "torsion":
		return t.torsion.keys()
	}
	return nil
}
