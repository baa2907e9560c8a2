// Package forcefield assembles MM4 force terms from a classified topology
// and evaluates them per integration group.
package forcefield

import (
	"fmt"

	"github.com/san-kum/molsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ForceField holds the assembled terms of each group. It implements
// dynamo.ForceField.
type ForceField struct {
	atoms   int
	groups  [2][]Term
	scratch []r3.Vec
}

func New(atoms int) *ForceField {
	return &ForceField{atoms: atoms}
}

func (ff *ForceField) NumAtoms() int { return ff.atoms }

func (ff *ForceField) Add(g dynamo.Group, t Term) {
	ff.groups[g] = append(ff.groups[g], t)
}

// Terms returns the terms of group g. The slice must not be modified.
func (ff *ForceField) Terms(g dynamo.Group) []Term {
	return ff.groups[g]
}

func (ff *ForceField) Evaluate(g dynamo.Group, pos, forces []r3.Vec) (float64, error) {
	if g != dynamo.Fast && g != dynamo.Slow {
		return 0, fmt.Errorf("forcefield: unknown group %d", g)
	}
	if len(pos) != ff.atoms || len(forces) != ff.atoms {
		return 0, fmt.Errorf("forcefield: %d positions and %d forces for %d atoms", len(pos), len(forces), ff.atoms)
	}
	for i := range forces {
		forces[i] = r3.Vec{}
	}
	e := 0.0
	for _, t := range ff.groups[g] {
		e += t.Evaluate(pos, forces)
	}
	return e, nil
}

// Energy sums the energy of every group at pos.
func (ff *ForceField) Energy(pos []r3.Vec) (float64, error) {
	ff.ensureScratch()
	total := 0.0
	for _, g := range dynamo.Groups {
		e, err := ff.Evaluate(g, pos, ff.scratch)
		if err != nil {
			return 0, err
		}
		total += e
	}
	return total, nil
}

// Breakdown returns the energy of each term kind at pos.
func (ff *ForceField) Breakdown(pos []r3.Vec) (map[Kind]float64, error) {
	if len(pos) != ff.atoms {
		return nil, fmt.Errorf("forcefield: %d positions for %d atoms", len(pos), ff.atoms)
	}
	ff.ensureScratch()
	out := make(map[Kind]float64)
	for _, terms := range ff.groups {
		for _, t := range terms {
			out[t.Kind()] += t.Evaluate(pos, ff.scratch)
		}
	}
	return out, nil
}

// Counts returns how many relationships each term kind covers.
func (ff *ForceField) Counts() map[Kind]int {
	out := make(map[Kind]int)
	for _, terms := range ff.groups {
		for _, t := range terms {
			out[t.Kind()] += t.Size()
		}
	}
	return out
}

func (ff *ForceField) ensureScratch() {
	if len(ff.scratch) != ff.atoms {
		ff.scratch = make([]r3.Vec, ff.atoms)
	}
}
