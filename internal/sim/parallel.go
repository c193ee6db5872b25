package sim

import (
	"context"
	"sync"

	"dipctl/internal/dynamo"
)

// Batch runs one rollout per initial condition in parallel. Each rollout gets
// a fresh simulator from the factory so stateful controllers and metrics are
// never shared across goroutines.
type Batch struct {
	factory func() *Simulator
}

func NewBatch(factory func() *Simulator) *Batch {
	return &Batch{factory: factory}
}

func (b *Batch) Run(ctx context.Context, initials []dynamo.State, cfg dynamo.Config) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(initials))
	errs := make([]error, len(initials))

	var wg sync.WaitGroup
	for i := range initials {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx], errs[idx] = b.factory().Run(ctx, initials[idx], cfg)
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
