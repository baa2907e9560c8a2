package sim

import (
	"context"
	"sync"

	"github.com/san-kum/molsim/internal/topology"
)

// Ensemble runs independent replicas of one topology, replica i seeded
// with Seed+i.
type Ensemble struct {
	top      *topology.Topology
	cfg      Config
	opts     []Option
	replicas int
}

// NewEnsemble shares opts between replicas; options carrying state such as
// observers or metrics must be safe for concurrent use.
func NewEnsemble(top *topology.Topology, cfg Config, replicas int, opts ...Option) *Ensemble {
	return &Ensemble{top: top, cfg: cfg, opts: opts, replicas: replicas}
}

func (e *Ensemble) Run(ctx context.Context, steps int) ([]*Result, error) {
	results := make([]*Result, e.replicas)
	errs := make([]error, e.replicas)

	var wg sync.WaitGroup
	for i := 0; i < e.replicas; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfg := e.cfg
			cfg.Seed = e.cfg.Seed + int64(idx)

			engine, err := New(e.top, cfg, e.opts...)
			if err != nil {
				errs[idx] = err
				return
			}
			results[idx], errs[idx] = engine.RunContext(ctx, steps)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
