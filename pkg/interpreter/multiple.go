package interpreter

import (
	"context"

	"github.com/gammazero/workerpool"
)

// MultiResult is one output of an EvaluateMultiple batch, paired with its
// seed so results are reproducible individually once the batch is done.
type MultiResult struct {
	Seed int64
	Text string
	Err  error
}

// EvaluateMultiple renders t for each of the given seeds concurrently,
// bounded to concurrency workers, the way a batch-preview UI would ask for
// N independent renders of the same generator without serializing them.
// Results are returned in the same order as seeds regardless of
// completion order.
func (t *Template) EvaluateMultiple(ctx context.Context, seeds []int64, concurrency int, opts ...Option) []MultiResult {
	if concurrency <= 0 {
		concurrency = 1
	}
	results := make([]MultiResult, len(seeds))
	pool := workerpool.New(concurrency)

	for i, seed := range seeds {
		i, seed := i, seed
		pool.Submit(func() {
			callOpts := append(append([]Option{}, opts...), WithSeed(seed))
			text, _, err := t.EvaluateOpts(ctx, callOpts...)
			results[i] = MultiResult{Seed: seed, Text: text, Err: err}
		})
	}
	pool.StopWait()
	return results
}
