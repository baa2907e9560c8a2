// Package rigid partitions atoms into covalently connected groups.
package rigid

import (
	"slices"

	"github.com/san-kum/molsim/internal/topology"
)

// Partition is an immutable split of the atoms into connected components,
// ordered by each group's smallest atom index.
type Partition struct {
	groups [][]int
	owner  []int
}

// New runs union-find over the bonds of top.
func New(top *topology.Topology) *Partition {
	n := top.NumAtoms()
	ds := newDisjointSet(n)
	for _, b := range top.Bonds() {
		ds.union(b.A, b.B)
	}

	index := make(map[int]int)
	p := &Partition{owner: make([]int, n)}
	for i := 0; i < n; i++ {
		root := ds.find(i)
		g, ok := index[root]
		if !ok {
			g = len(p.groups)
			index[root] = g
			p.groups = append(p.groups, nil)
		}
		p.groups[g] = append(p.groups[g], i)
		p.owner[i] = g
	}
	return p
}

func (p *Partition) Len() int { return len(p.groups) }

// Group returns the sorted atom indices of group g. The slice must not be
// modified.
func (p *Partition) Group(g int) []int { return p.groups[g] }

// Owner returns the group containing atom i.
func (p *Partition) Owner(i int) int { return p.owner[i] }

// Groups returns a copy of every group.
func (p *Partition) Groups() [][]int {
	out := make([][]int, len(p.groups))
	for i, g := range p.groups {
		out[i] = slices.Clone(g)
	}
	return out
}

type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	ds := &disjointSet{parent: make([]int, n), size: make([]int, n)}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

func (ds *disjointSet) find(x int) int {
	root := x
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[x] != root {
		next := ds.parent[x]
		ds.parent[x] = root
		x = next
	}
	return root
}

func (ds *disjointSet) union(a, b int) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
}
