package simulation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// chunkTask is one sub-range computation submitted to the worker pool.
type chunkTask struct {
	index  int
	params Params
}

type chunkOutcome struct {
	result chunkResult
	err    error
}

// runChunkPool dispatches chunk tasks to a bounded worker pool and blocks
// until every task resolves. Workers check for cancellation between tasks;
// each chunk runs under its own timeout, and a timed-out chunk fails the
// whole run rather than surfacing a silent partial result.
func runChunkPool(ctx context.Context, workers int, timeout time.Duration, tasks []chunkTask,
	compute func(context.Context, Params) (*model.SimulationResult, error),
	onChunkDone func(index int)) ([]chunkResult, error) {

	if workers < 1 {
		workers = 1
	}
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskCh := make(chan chunkTask)
	outcomeCh := make(chan chunkOutcome, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskCh {
				if ctx.Err() != nil {
					outcomeCh <- chunkOutcome{err: ctx.Err()}
					continue
				}
				chunkCtx, cancel := context.WithTimeout(ctx, timeout)
				result, err := compute(chunkCtx, task.params)
				cancel()
				if err != nil {
					outcomeCh <- chunkOutcome{err: fmt.Errorf("chunk %d failed: %w", task.index, err)}
					continue
				}
				outcomeCh <- chunkOutcome{result: chunkResult{
					index:  task.index,
					days:   task.params.SpanDays(),
					result: result,
				}}
				if onChunkDone != nil {
					onChunkDone(task.index)
				}
			}
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(outcomeCh)
	}()

	var results []chunkResult
	var firstErr error
	received := 0
	for outcome := range outcomeCh {
		received++
		if outcome.err != nil {
			if firstErr == nil {
				firstErr = outcome.err
			}
			continue
		}
		results = append(results, outcome.result)
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if received < len(tasks) {
		// The feeder stopped early: the run was cancelled mid-dispatch.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("worker pool resolved %d of %d chunks", received, len(tasks))
	}
	return results, nil
}
