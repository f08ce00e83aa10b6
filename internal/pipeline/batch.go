package pipeline

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tokentrim/internal/domain/models"
	"github.com/guttosm/tokentrim/internal/logger"
)

const maxBatchParallel = 8

// OptimizeBatch optimizes many envelopes concurrently, preserving order.
//
// Behavior:
//   - Uses a concurrency limit of clamp(parallel, 1..8), defaulting to
//     min(8, NumCPU) when parallel <= 0.
//   - Individual envelopes never fail (Optimize recovers internally); the
//     only error is context cancellation, in which case the partial results
//     are discarded.
func (o *Orchestrator) OptimizeBatch(ctx context.Context, envs []*models.Record, opts Options, parallel int) ([]*models.Record, error) {
	if len(envs) == 0 {
		return []*models.Record{}, nil
	}

	maxParallel := maxBatchParallel
	if parallel > 0 {
		if parallel > maxBatchParallel {
			parallel = maxBatchParallel
		}
		maxParallel = parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	start := time.Now()
	logger.L().Info().Int("envelopes", len(envs)).Int("max_parallel", maxParallel).Msg("batch optimize start")

	out := make([]*models.Record, len(envs))

	// errgroup will cancel siblings on first error (cancellation only).
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

	for i, env := range envs {
		idx := i
		e := env
		sem <- struct{}{}

		g.Go(func() error {
			defer func() { <-sem }()
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			out[idx] = o.Optimize(e, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.L().Info().Int("envelopes", len(envs)).Dur("elapsed", time.Since(start)).Msg("batch optimize done")
	return out, nil
}
