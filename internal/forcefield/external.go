package forcefield

import (
	"fmt"

	"github.com/san-kum/molsim/internal/dynamo"
	"gonum.org/v1/gonum/spatial/r3"
)

// External routes one group to an alternative force source and defers
// every other group to Base. A nil Base contributes nothing.
type External struct {
	Base     dynamo.ForceField
	Group    dynamo.Group
	Provider dynamo.ForceProvider
}

func (x *External) Evaluate(g dynamo.Group, pos, forces []r3.Vec) (float64, error) {
	if g != x.Group {
		if x.Base == nil {
			for i := range forces {
				forces[i] = r3.Vec{}
			}
			return 0, nil
		}
		return x.Base.Evaluate(g, pos, forces)
	}

	e, f, err := x.Provider(pos)
	if err != nil {
		return 0, fmt.Errorf("external %s forces: %w", g, err)
	}
	if len(f) != len(forces) {
		return 0, fmt.Errorf("external %s forces: got %d vectors for %d atoms", g, len(f), len(forces))
	}
	copy(forces, f)
	return e, nil
}
