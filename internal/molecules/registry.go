package molecules

import (
	"fmt"
	"sort"

	"github.com/san-kum/molsim/internal/topology"
	"gonum.org/v1/gonum/spatial/r3"
)

// Builder produces a molecule. size is builder specific: the carbon count
// for alkanes, the separation in nm for pairs, ignored otherwise.
type Builder func(size float64) ([]topology.Atom, []topology.Bond, error)

type Registry struct {
	builders map[string]Builder
}

func NewRegistry() *Registry {
	r := &Registry{builders: make(map[string]Builder)}

	r.builders["methane"] = func(float64) ([]topology.Atom, []topology.Bond, error) {
		atoms, bonds := Methane(r3.Vec{})
		return atoms, bonds, nil
	}
	r.builders["ethane"] = func(float64) ([]topology.Atom, []topology.Bond, error) { return Alkane(2) }
	r.builders["propane"] = func(float64) ([]topology.Atom, []topology.Bond, error) { return Alkane(3) }
	r.builders["butane"] = func(float64) ([]topology.Atom, []topology.Bond, error) { return Alkane(4) }
	r.builders["alkane"] = func(size float64) ([]topology.Atom, []topology.Bond, error) {
		n := int(size)
		if n == 0 {
			n = 8
		}
		return Alkane(n)
	}
	r.builders["methane_pair"] = func(size float64) ([]topology.Atom, []topology.Bond, error) {
		if size == 0 {
			size = 0.45
		}
		if size < 0 {
			return nil, nil, fmt.Errorf("methane pair separation must be positive, got %g", size)
		}
		atoms, bonds := MethanePair(size)
		return atoms, bonds, nil
	}

	return r
}

func (r *Registry) Build(name string, size float64) (*topology.Topology, error) {
	fn, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown molecule: %s", name)
	}
	atoms, bonds, err := fn(size)
	if err != nil {
		return nil, err
	}
	return topology.New(atoms, bonds)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
