package teller

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/sarchlab/tellersim/sim/timing"
)

// Replication is the outcome of one independent run.
type Replication struct {
	Seed   int64
	Result Result
}

// RunReplications runs one simulation per seed, concurrently. Every
// replication gets its own engine and its own uniform variate source, so the
// builder must not carry a variate source or an engine. Results are returned
// in the order of the seeds.
func RunReplications(
	ctx context.Context,
	b Builder,
	seeds []int64,
) ([]Replication, error) {
	if len(seeds) == 0 {
		return nil, fmt.Errorf("%w: no seeds given", ErrInvalidArgument)
	}

	if b.src != nil || b.engine != nil {
		return nil, fmt.Errorf(
			"%w: replications cannot share a variate source or an engine",
			ErrInvalidArgument)
	}

	replications := make([]Replication, len(seeds))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, seed := range seeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			s, err := b.
				WithSeed(seed).
				WithEngine(timing.NewSerialEngine()).
				Build(fmt.Sprintf("Teller[%d]", i))
			if err != nil {
				return err
			}

			result, err := s.Run()
			if err != nil {
				return fmt.Errorf("replication %d (seed %d): %w", i, seed, err)
			}

			replications[i] = Replication{Seed: seed, Result: result}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return replications, nil
}
