package dynamo

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Unit conversions into the engine's nm / ps / amu / kJ·mol⁻¹ system.
const (
	KJPerKcal     = 4.184
	NmPerAngstrom = 0.1
	AngstromPerNm = 10.0
	DegPerRad     = 180.0 / math.Pi

	// Boltzmann is k_B in kJ/(mol·K).
	Boltzmann = 0.0083144626

	// KJPerZeptojoule converts zJ per particle to kJ/mol.
	KJPerZeptojoule = 0.602214076
	KJPerAttojoule  = 1000 * KJPerZeptojoule
)

// Group selects the integration rate of a force contribution.
type Group int

const (
	Fast Group = iota
	Slow
)

// Groups lists every group in evaluation order.
var Groups = []Group{Fast, Slow}

func (g Group) String() string {
	switch g {
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	}
	return "unknown"
}

// Term is one energy contributor. Evaluate adds its forces into forces and
// returns its energy in kJ/mol.
type Term interface {
	Evaluate(pos, forces []r3.Vec) float64
}

// ForceField produces the energy and forces of one group. Evaluate
// overwrites forces.
type ForceField interface {
	Evaluate(g Group, pos, forces []r3.Vec) (float64, error)
}

// ForceProvider is an alternative force source for a whole group.
type ForceProvider func(pos []r3.Vec) (energy float64, forces []r3.Vec, err error)

// Frame is a recorded snapshot of a run.
type Frame struct {
	Step      int
	Time      float64
	Positions []r3.Vec
	Energy    float64
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v r3.Vec) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsNaN(v.Z) &&
		!math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0) && !math.IsInf(v.Z, 0)
}

// Clone copies a vector slice.
func Clone(v []r3.Vec) []r3.Vec {
	c := make([]r3.Vec, len(v))
	copy(c, v)
	return c
}
