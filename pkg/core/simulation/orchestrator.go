package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medshift/rostergen/pkg/core/model"
	"github.com/medshift/rostergen/pkg/core/planner"
	"github.com/medshift/rostergen/pkg/db"
	"github.com/medshift/rostergen/pkg/notify"
)

// Config bounds the orchestrator's resource use.
type Config struct {
	Workers       int           // worker pool size for chunked runs
	ChunkDays     int           // ranges longer than this are chunked
	WorkerTimeout time.Duration // per-chunk computation guard
	CacheTTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.ChunkDays <= 0 {
		c.ChunkDays = 7
	}
	if c.WorkerTimeout <= 0 {
		c.WorkerTimeout = 2 * time.Minute
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	return c
}

// Orchestrator runs simulations asynchronously under a selected execution
// strategy, streaming progress through the notification port and persisting
// outcomes through the persistence port.
type Orchestrator struct {
	cache    *ResultCache
	store    db.SimulationStore
	notifier notify.Notifier
	logger   *zap.Logger
	cfg      Config
}

// New creates an orchestrator. A nil cache gets a fresh one with the
// configured TTL; a nil notifier falls back to logging.
func New(cache *ResultCache, store db.SimulationStore, notifier notify.Notifier, logger *zap.Logger, cfg Config) *Orchestrator {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	if cache == nil {
		cache = NewResultCache(cfg.CacheTTL)
	}
	if notifier == nil {
		notifier = notify.NewLogNotifier(logger)
	}
	return &Orchestrator{cache: cache, store: store, notifier: notifier, logger: logger, cfg: cfg}
}

// Cache exposes the orchestrator's result cache.
func (o *Orchestrator) Cache() *ResultCache {
	return o.cache
}

// RunSimulation starts an asynchronous run and returns its id immediately.
// Completion is observed through the persistence and notification ports.
// Cancel the context to abort; a cancelled run is marked FAILED with a
// cancellation-specific message.
func (o *Orchestrator) RunSimulation(ctx context.Context, runID string, params Params, strategy Strategy) string {
	if runID == "" {
		runID = uuid.New().String()
	}
	go o.execute(ctx, runID, params, strategy)
	return runID
}

// Execute runs a simulation synchronously. RunSimulation wraps it; tests and
// the CLI's blocking mode call it directly.
func (o *Orchestrator) Execute(ctx context.Context, runID string, params Params, strategy Strategy) (*model.SimulationRun, error) {
	if runID == "" {
		runID = uuid.New().String()
	}
	run := &model.SimulationRun{
		ID:         runID,
		ScenarioID: params.ScenarioID,
		Start:      params.Start,
		End:        params.End,
		Status:     model.RunRunning,
	}
	started := time.Now()

	// Rough estimate: a handful of seconds per simulated week.
	o.notifier.NotifyStarted(params.ScenarioID, params.UserID, params.SpanDays()/7+1)

	tracker := newProgressTracker(func(p Progress) {
		o.notifier.NotifyProgress(params.ScenarioID, params.UserID, p.Percent, string(model.RunRunning), p.Step, p.ETASeconds)
	})

	result, err := o.compute(ctx, params, strategy, tracker)
	run.ExecutionMs = time.Since(started).Milliseconds()

	if err != nil {
		run.Status = model.RunFailed
		if errors.Is(err, context.Canceled) {
			run.Error = "simulation cancelled by user"
		} else {
			run.Error = err.Error()
		}
		o.notifier.NotifyError(params.ScenarioID, params.UserID, run.Error)
		o.saveRun(run)
		return run, err
	}

	tracker.Set(100, "completed")
	run.Status = model.RunCompleted
	run.Result = result
	o.saveRun(run)
	o.notifier.NotifyCompleted(params.ScenarioID, params.UserID, runID, float64(run.ExecutionMs)/1000)
	return run, nil
}

func (o *Orchestrator) execute(ctx context.Context, runID string, params Params, strategy Strategy) {
	if _, err := o.Execute(ctx, runID, params, strategy); err != nil {
		o.logger.Warn("simulation run failed",
			zap.String("run_id", runID),
			zap.String("scenario_id", params.ScenarioID),
			zap.Error(err))
	}
}

// saveRun persists the run outcome. Persistence failures here are logged
// and swallowed: the computation already happened and callers observe the
// notification port regardless.
func (o *Orchestrator) saveRun(run *model.SimulationRun) {
	if o.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := o.store.SaveSimulationResult(ctx, run); err != nil {
		o.logger.Error("failed to persist simulation run",
			zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (o *Orchestrator) compute(ctx context.Context, params Params, strategy Strategy, tracker *progressTracker) (*model.SimulationResult, error) {
	switch strategy {
	case StrategyCached:
		return o.computeCached(params)
	case StrategyParallelChunked:
		return o.computeChunked(ctx, params, tracker)
	case StrategyIncremental:
		return o.computeIncremental(ctx, params, tracker)
	default:
		return o.computeDefault(ctx, params, tracker)
	}
}

// computeCached serves strictly from the cache; it never computes.
func (o *Orchestrator) computeCached(params Params) (*model.SimulationResult, error) {
	if result, ok := o.cache.Get(CacheKey(params)); ok {
		return result, nil
	}
	return nil, fmt.Errorf("%w %s", ErrNoCachedResult, params.ScenarioID)
}

// computeDefault synthesizes the result from scratch behind the cache.
func (o *Orchestrator) computeDefault(ctx context.Context, params Params, tracker *progressTracker) (*model.SimulationResult, error) {
	return o.cache.GetOrCompute(CacheKey(params), func() (*model.SimulationResult, error) {
		return o.computeCore(ctx, params, tracker, true)
	})
}

// computeCore is the shared generate→validate→summarize pipeline. With
// saveArtifacts set it persists named step artifacts for reuse by the
// incremental strategy; chunk workers run with it off, as their artifacts
// would cover only a sub-range of the scenario.
func (o *Orchestrator) computeCore(ctx context.Context, params Params, tracker *progressTracker, saveArtifacts bool) (*model.SimulationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracker.Set(10, "preparing roster")

	gen := planner.NewGenerator(params.Staff, params.Rules, params.Start, params.End, o.logger)
	assignments, err := gen.GeneratePlanning()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tracker.Set(60, "validating plan")

	validation := planner.Validate(params.Staff, assignments, params.Rules)
	tracker.Set(85, "summarizing results")

	result := buildResult(params, assignments, validation)

	if saveArtifacts {
		if err := o.cache.SaveStep(params.ScenarioID, "assignments", assignments); err != nil {
			o.logger.Warn("failed to persist step artifact", zap.Error(err))
		}
		if err := o.cache.SaveStep(params.ScenarioID, "validation", validation); err != nil {
			o.logger.Warn("failed to persist step artifact", zap.Error(err))
		}
	}
	tracker.Set(95, "finalizing")
	return result, nil
}

// computeChunked splits long ranges into week-sized sub-ranges run on the
// worker pool, then combines chunk results deterministically. Short ranges
// fall through to the default strategy.
func (o *Orchestrator) computeChunked(ctx context.Context, params Params, tracker *progressTracker) (*model.SimulationResult, error) {
	if params.SpanDays() <= o.cfg.ChunkDays {
		return o.computeDefault(ctx, params, tracker)
	}

	var tasks []chunkTask
	start := model.DateOf(params.Start)
	end := model.DateOf(params.End)
	for index := 0; !start.After(end); index++ {
		chunkEnd := start.AddDate(0, 0, o.cfg.ChunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}
		tasks = append(tasks, chunkTask{index: index, params: params.withRange(start, chunkEnd)})
		start = chunkEnd.AddDate(0, 0, 1)
	}

	tracker.Set(5, fmt.Sprintf("dispatching %d chunks", len(tasks)))
	perChunk := 85.0 / float64(len(tasks))

	silent := newProgressTracker(nil)
	chunks, err := runChunkPool(ctx, o.cfg.Workers, o.cfg.WorkerTimeout, tasks,
		func(chunkCtx context.Context, chunkParams Params) (*model.SimulationResult, error) {
			return o.computeCore(chunkCtx, chunkParams, silent, false)
		},
		func(index int) {
			tracker.Add(perChunk, fmt.Sprintf("chunk %d of %d done", index+1, len(tasks)))
		})
	if err != nil {
		return nil, err
	}

	tracker.Set(92, "combining chunk results")
	combined := combineChunks(chunks)
	o.cache.Put(CacheKey(params), combined)
	return combined, nil
}

// computeIncremental reuses the most recent completed run for the scenario
// as a base: cached step artifacts skip regeneration where possible and the
// output is tagged as a partial update. With no usable prior it falls
// through to the default strategy.
func (o *Orchestrator) computeIncremental(ctx context.Context, params Params, tracker *progressTracker) (*model.SimulationResult, error) {
	if o.store == nil {
		return o.computeDefault(ctx, params, tracker)
	}
	prior, err := o.store.LoadPriorSimulationResult(ctx, params.ScenarioID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior simulation result: %w", err)
	}
	if prior == nil || prior.Status != model.RunCompleted || prior.Result == nil {
		return o.computeDefault(ctx, params, tracker)
	}

	tracker.Set(10, "reusing prior result")

	var assignments []model.Assignment
	reused, err := o.cache.LoadStep(params.ScenarioID, "assignments", &assignments)
	if err != nil {
		o.logger.Warn("failed to load step artifact, regenerating", zap.Error(err))
		reused = false
	}
	if reused && !coversRange(assignments, params.Start, params.End) {
		o.logger.Warn("step artifact does not span the requested range, regenerating",
			zap.String("scenario_id", params.ScenarioID))
		reused = false
	}
	if !reused {
		gen := planner.NewGenerator(params.Staff, params.Rules, params.Start, params.End, o.logger)
		assignments, err = gen.GeneratePlanning()
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tracker.Set(60, "revalidating plan")
	validation := planner.Validate(params.Staff, assignments, params.Rules)

	tracker.Set(85, "merging with prior result")
	result := buildResult(params, assignments, validation)
	result.Conflicts.Resolved = prior.Result.Conflicts.Resolved
	result.IsPartialUpdate = true

	o.cache.Put(CacheKey(params), result)
	return result, nil
}

// coversRange reports whether every day of [start, end] carries at least one
// assignment. A plan reused from a step artifact must pass this before it can
// stand in for a fresh generation over the range.
func coversRange(assignments []model.Assignment, start, end time.Time) bool {
	for day := model.DateOf(start); !day.After(model.DateOf(end)); day = day.AddDate(0, 0, 1) {
		covered := false
		for _, a := range assignments {
			if a.SameDay(day) {
				covered = true
				break
			}
		}
		if !covered {
			return false
		}
	}
	return true
}
