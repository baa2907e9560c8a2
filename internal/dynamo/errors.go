package dynamo

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for simulation operations.
var (
	// ErrTopology indicates a malformed bond graph or atom list.
	ErrTopology = errors.New("dynamo: invalid topology")

	// ErrParameterization indicates chemistry with no parameter entry.
	ErrParameterization = errors.New("dynamo: unparameterized chemistry")

	// ErrConservation indicates mass repartitioning changed the total mass.
	ErrConservation = errors.New("dynamo: mass not conserved")

	// ErrDivergence indicates the simulation became numerically unstable.
	ErrDivergence = errors.New("dynamo: simulation diverged")
)

// TopologyError reports a structural problem with the input graph.
type TopologyError struct {
	Atom   int
	Reason string
}

func (e *TopologyError) Error() string {
	if e.Atom < 0 {
		return fmt.Sprintf("%s: %s", ErrTopology, e.Reason)
	}
	return fmt.Sprintf("%s: atom %d: %s", ErrTopology, e.Atom, e.Reason)
}

func (e *TopologyError) Unwrap() error {
	return ErrTopology
}

// ParameterizationError names the term kind and the element tuple that
// had no entry in the parameter table.
type ParameterizationError struct {
	Term     string
	Elements []int
	Atoms    []int
}

func (e *ParameterizationError) Error() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = fmt.Sprint(el)
	}
	msg := fmt.Sprintf("%s: no %s parameters for elements (%s)", ErrParameterization, e.Term, strings.Join(parts, ","))
	if len(e.Atoms) > 0 {
		msg += fmt.Sprintf(" at atoms %v", e.Atoms)
	}
	return msg
}

func (e *ParameterizationError) Unwrap() error {
	return ErrParameterization
}

// ConservationError reports a total-mass mismatch or a heavy atom driven
// to a non-positive mass.
type ConservationError struct {
	Before float64
	After  float64
	Atom   int
	Reason string
}

func (e *ConservationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: atom %d: %s", ErrConservation, e.Atom, e.Reason)
	}
	return fmt.Sprintf("%s: total %.12g amu became %.12g amu", ErrConservation, e.Before, e.After)
}

func (e *ConservationError) Unwrap() error {
	return ErrConservation
}

// DivergenceError wraps a numerical failure with simulation context.
type DivergenceError struct {
	Step   int
	Time   float64
	Atom   int
	Value  float64
	Reason string
}

func (e *DivergenceError) Error() string {
	msg := fmt.Sprintf("%s at step %d (t=%.4f ps): %s", ErrDivergence, e.Step, e.Time, e.Reason)
	if e.Atom >= 0 {
		msg += fmt.Sprintf(" (atom %d)", e.Atom)
	}
	return msg
}

func (e *DivergenceError) Unwrap() error {
	return ErrDivergence
}
