package sim

import (
	"context"
	"runtime"
	"sync"
)

// BatchResult pairs the outcome of one problem in a batch.
type BatchResult struct {
	Trajectory *Trajectory
	Err        error
}

// RunBatch runs independent problems concurrently with at most workers runs
// in flight (runtime.NumCPU when workers <= 0). Results are in problem order.
// Once ctx is done no further runs start; those report ctx.Err(). Runs
// already in progress complete.
func RunBatch(ctx context.Context, problems []Problem, cfg Config, workers int) []BatchResult {
	results := make([]BatchResult, len(problems))
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(problems) {
		workers = len(problems)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				tr, err := Run(problems[idx], cfg)
				results[idx] = BatchResult{Trajectory: tr, Err: err}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(problems); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for ; next < len(problems); next++ {
		results[next] = BatchResult{Err: ctx.Err()}
	}

	return results
}
