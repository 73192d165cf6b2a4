package pipeline

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
)

// JobResult pairs one input document with its outcome.
type JobResult struct {
	Input  string
	Result *Result
	Err    error
}

// RunAll processes the given documents concurrently with a bounded worker
// pool, one document per worker. Documents share no state, so concurrency is
// safe at this granularity. Results come back in input order.
func (p *Pipeline) RunAll(ctx context.Context, inputs []string, outputDir string, workers int, opts Options) []JobResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	p.logger.Debug("processing documents", "count", len(inputs), "workers", workers)

	results := make([]JobResult, len(inputs))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, input := range inputs {
		if ctx.Err() != nil {
			results[i] = JobResult{Input: input, Err: ctx.Err()}
			continue
		}

		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int, input string) {
			defer wg.Done()
			defer func() { <-sem }() // release

			res, err := p.ExtractFile(ctx, input, outputDir, opts)
			results[i] = JobResult{Input: input, Result: res, Err: err}
		}(i, input)
	}
	wg.Wait()

	for _, r := range results {
		if r.Err != nil {
			p.logger.Error("document failed", "input", r.Input, "error", r.Err)
		}
	}
	return results
}

// Logger exposes the pipeline's logger for callers that wrap it.
func (p *Pipeline) Logger() *slog.Logger {
	return p.logger
}
