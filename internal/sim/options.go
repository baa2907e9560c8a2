package sim

import (
	"github.com/go-logr/logr"
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/metrics"
	"github.com/san-kum/molsim/internal/params"
	"github.com/san-kum/molsim/internal/thermal"
	"gonum.org/v1/gonum/spatial/r3"
)

type Option func(*Engine)

func WithLogger(log logr.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithTable replaces the built-in MM4 parameters.
func WithTable(t *params.Table) Option {
	return func(e *Engine) { e.table = t }
}

// WithSampler replaces the Maxwell-Boltzmann velocity sampler.
func WithSampler(s thermal.Sampler) Option {
	return func(e *Engine) { e.sampler = s }
}

// WithForceField replaces the assembled force field entirely.
func WithForceField(f dynamo.ForceField) Option {
	return func(e *Engine) { e.field = f }
}

// WithProvider routes one group to an external force source while the
// assembled terms keep the other group.
func WithProvider(g dynamo.Group, p dynamo.ForceProvider) Option {
	return func(e *Engine) { e.providers[g] = p }
}

// WithVelocities superimposes per-atom base velocities in nm/ps after
// thermalization.
func WithVelocities(base []r3.Vec) Option {
	return func(e *Engine) { e.base = base }
}

func WithObserver(o dynamo.Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func WithMetric(m metrics.Metric) Option {
	return func(e *Engine) { e.metrics = append(e.metrics, m) }
}
