package simulation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medshift/rostergen/pkg/core/model"
)

func poolTasks(n int) []chunkTask {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	tasks := make([]chunkTask, n)
	for i := range tasks {
		tasks[i] = chunkTask{
			index:  i,
			params: Params{Start: start.AddDate(0, 0, i*7), End: start.AddDate(0, 0, i*7+6)},
		}
	}
	return tasks
}

func TestRunChunkPool_ResolvesAllTasks(t *testing.T) {
	tasks := poolTasks(4)
	var mu sync.Mutex
	var doneIndexes []int

	results, err := runChunkPool(context.Background(), 2, time.Minute, tasks,
		func(_ context.Context, p Params) (*model.SimulationResult, error) {
			return &model.SimulationResult{SimulatedPeriod: model.Period{TotalDays: p.SpanDays()}}, nil
		},
		func(index int) {
			mu.Lock()
			doneIndexes = append(doneIndexes, index)
			mu.Unlock()
		})
	require.NoError(t, err)

	assert.Len(t, results, 4)
	assert.Len(t, doneIndexes, 4)
	for _, r := range results {
		assert.Equal(t, 7, r.days)
	}
}

func TestRunChunkPool_FirstErrorWins(t *testing.T) {
	tasks := poolTasks(3)
	boom := errors.New("boom")

	_, err := runChunkPool(context.Background(), 1, time.Minute, tasks,
		func(_ context.Context, p Params) (*model.SimulationResult, error) {
			if p.Start.Day() == 9 { // second chunk
				return nil, boom
			}
			return &model.SimulationResult{}, nil
		}, nil)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "chunk 1 failed")
}

func TestRunChunkPool_Cancellation(t *testing.T) {
	tasks := poolTasks(8)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := runChunkPool(ctx, 1, time.Minute, tasks,
		func(_ context.Context, _ Params) (*model.SimulationResult, error) {
			cancel()
			return &model.SimulationResult{}, nil
		}, nil)
	require.ErrorIs(t, err, context.Canceled)
}
