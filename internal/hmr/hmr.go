// Package hmr repartitions mass from heavy atoms onto their bonded light
// atoms so the fastest vibrations slow down.
package hmr

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/topology"
	"gonum.org/v1/gonum/floats"
)

// Config selects which atoms are raised and to what mass.
type Config struct {
	// TargetMass is the mass in amu every light atom ends with.
	TargetMass float64
	// Light lists the element numbers treated as light.
	Light []int
}

func DefaultConfig() Config {
	return Config{TargetMass: 2.0, Light: []int{1}}
}

// Repartition returns a new mass array where every light atom bonded to a
// heavy atom has been raised to the target mass, the difference taken
// from that heavy neighbour. The total mass is unchanged.
func Repartition(top *topology.Topology, masses []float64, cfg Config) ([]float64, error) {
	if len(masses) != top.NumAtoms() {
		return nil, fmt.Errorf("hmr: %d masses for %d atoms", len(masses), top.NumAtoms())
	}
	if cfg.TargetMass <= 0 {
		return nil, fmt.Errorf("hmr: target mass must be positive, got %g", cfg.TargetMass)
	}

	out := slices.Clone(masses)
	light := func(i int) bool { return slices.Contains(cfg.Light, top.Element(i)) }

	for _, b := range top.Bonds() {
		l, h := b.A, b.B
		switch {
		case light(l) && !light(h):
		case light(h) && !light(l):
			l, h = h, l
		default:
			continue
		}
		delta := cfg.TargetMass - out[l]
		if delta <= 0 {
			continue
		}
		out[l] = cfg.TargetMass
		out[h] -= delta
		if out[h] <= 0 {
			return nil, &dynamo.ConservationError{
				Atom:   h,
				Reason: fmt.Sprintf("heavy atom mass %.6g amu after donating to atom %d", out[h], l),
			}
		}
	}

	before := floats.Sum(masses)
	after := floats.Sum(out)
	if math.Abs(after-before) > 1e-9*math.Max(1, math.Abs(before)) {
		return nil, &dynamo.ConservationError{Before: before, After: after, Atom: -1}
	}
	return out, nil
}
