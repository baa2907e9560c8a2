// Package thermal draws initial velocities and strips each rigid group's
// bulk linear and angular momentum.
package thermal

import (
	"fmt"
	"math"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/rigid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// Sampler draws per-atom velocities in nm/ps for a temperature in kelvin.
type Sampler interface {
	Sample(masses []float64, positions []r3.Vec, temperature float64) []r3.Vec
}

// MaxwellBoltzmann samples each velocity component from a normal
// distribution with variance k_B·T/m.
type MaxwellBoltzmann struct {
	src rand.Source
}

func NewMaxwellBoltzmann(seed uint64) *MaxwellBoltzmann {
	return &MaxwellBoltzmann{src: rand.NewSource(seed)}
}

func (mb *MaxwellBoltzmann) Sample(masses []float64, _ []r3.Vec, temperature float64) []r3.Vec {
	v := make([]r3.Vec, len(masses))
	if temperature <= 0 {
		return v
	}
	for i, m := range masses {
		dist := distuv.Normal{Mu: 0, Sigma: math.Sqrt(dynamo.Boltzmann * temperature / m), Src: mb.src}
		v[i] = r3.Vec{X: dist.Rand(), Y: dist.Rand(), Z: dist.Rand()}
	}
	return v
}

// Thermalizer combines a sampler with momentum removal over a partition.
type Thermalizer struct {
	sampler Sampler
	groups  *rigid.Partition
}

func New(sampler Sampler, groups *rigid.Partition) *Thermalizer {
	return &Thermalizer{sampler: sampler, groups: groups}
}

// Thermalize draws velocities at temperature, removes every group's
// centre-of-mass velocity and rigid rotation, then adds base velocities
// when given.
func (t *Thermalizer) Thermalize(masses []float64, positions []r3.Vec, temperature float64, base []r3.Vec) ([]r3.Vec, error) {
	if len(masses) != len(positions) {
		return nil, fmt.Errorf("thermal: %d masses for %d positions", len(masses), len(positions))
	}
	if base != nil && len(base) != len(positions) {
		return nil, fmt.Errorf("thermal: %d base velocities for %d atoms", len(base), len(positions))
	}

	v := t.sampler.Sample(masses, positions, temperature)
	if len(v) != len(positions) {
		return nil, fmt.Errorf("thermal: sampler returned %d velocities for %d atoms", len(v), len(positions))
	}
	for g := 0; g < t.groups.Len(); g++ {
		RemoveMomentum(v, masses, positions, t.groups.Group(g))
	}
	for i := range base {
		v[i] = r3.Add(v[i], base[i])
	}
	return v, nil
}

// CenterOfMass returns the mass-weighted centre and mean velocity of the
// atoms.
func CenterOfMass(v []r3.Vec, masses []float64, positions []r3.Vec, atoms []int) (center, velocity r3.Vec, total float64) {
	for _, i := range atoms {
		total += masses[i]
		center = r3.Add(center, r3.Scale(masses[i], positions[i]))
		velocity = r3.Add(velocity, r3.Scale(masses[i], v[i]))
	}
	if total == 0 {
		return r3.Vec{}, r3.Vec{}, 0
	}
	return r3.Scale(1/total, center), r3.Scale(1/total, velocity), total
}

// Momentum returns the linear momentum of the atoms and their angular
// momentum about the centre of mass.
func Momentum(v []r3.Vec, masses []float64, positions []r3.Vec, atoms []int) (linear, angular r3.Vec) {
	center, _, _ := CenterOfMass(v, masses, positions, atoms)
	for _, i := range atoms {
		p := r3.Scale(masses[i], v[i])
		linear = r3.Add(linear, p)
		angular = r3.Add(angular, r3.Cross(r3.Sub(positions[i], center), p))
	}
	return linear, angular
}

// RemoveMomentum zeroes the linear and angular momentum of the atoms in
// place. The angular velocity uses the pseudo-inverse of the inertia
// tensor so linear and single-atom groups are handled.
func RemoveMomentum(v []r3.Vec, masses []float64, positions []r3.Vec, atoms []int) {
	center, bulk, total := CenterOfMass(v, masses, positions, atoms)
	if total == 0 {
		return
	}
	for _, i := range atoms {
		v[i] = r3.Sub(v[i], bulk)
	}

	inertia := mat.NewSymDense(3, nil)
	var l r3.Vec
	for _, i := range atoms {
		d := r3.Sub(positions[i], center)
		m := masses[i]
		d2 := r3.Norm2(d)
		c := [3]float64{d.X, d.Y, d.Z}
		for a := 0; a < 3; a++ {
			for b := a; b < 3; b++ {
				val := -m * c[a] * c[b]
				if a == b {
					val += m * d2
				}
				inertia.SetSym(a, b, inertia.At(a, b)+val)
			}
		}
		l = r3.Add(l, r3.Cross(d, r3.Scale(m, v[i])))
	}

	omega, ok := pseudoSolve(inertia, l)
	if !ok {
		return
	}
	for _, i := range atoms {
		d := r3.Sub(positions[i], center)
		v[i] = r3.Sub(v[i], r3.Cross(omega, d))
	}
}

// pseudoSolve returns I⁺·l through a symmetric eigendecomposition,
// discarding vanishing principal moments.
func pseudoSolve(inertia *mat.SymDense, l r3.Vec) (r3.Vec, bool) {
	var eig mat.EigenSym
	if !eig.Factorize(inertia, true) {
		return r3.Vec{}, false
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	largest := 0.0
	for _, ev := range values {
		largest = math.Max(largest, ev)
	}
	if largest <= 0 {
		return r3.Vec{}, false
	}

	lv := [3]float64{l.X, l.Y, l.Z}
	var w [3]float64
	for k, ev := range values {
		if ev <= 1e-10*largest {
			continue
		}
		proj := 0.0
		for a := 0; a < 3; a++ {
			proj += vecs.At(a, k) * lv[a]
		}
		for a := 0; a < 3; a++ {
			w[a] += vecs.At(a, k) * proj / ev
		}
	}
	return r3.Vec{X: w[0], Y: w[1], Z: w[2]}, true
}
