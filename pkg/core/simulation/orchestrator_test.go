package simulation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medshift/rostergen/pkg/core/model"
)

type memSimulationStore struct {
	mu    sync.Mutex
	runs  map[string]*model.SimulationRun
	prior *model.SimulationRun
}

func newMemSimulationStore() *memSimulationStore {
	return &memSimulationStore{runs: make(map[string]*model.SimulationRun)}
}

func (s *memSimulationStore) LoadPriorSimulationResult(_ context.Context, _ string) (*model.SimulationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prior, nil
}

func (s *memSimulationStore) SaveSimulationResult(_ context.Context, run *model.SimulationRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *memSimulationStore) saved(runID string) *model.SimulationRun {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[runID]
}

type captureNotifier struct {
	mu        sync.Mutex
	started   int
	progress  []float64
	completed int
	errors    []string
	done      chan struct{}
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{done: make(chan struct{}, 1)}
}

func (n *captureNotifier) NotifyStarted(_, _ string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started++
}

func (n *captureNotifier) NotifyProgress(_, _ string, progress float64, _, _ string, _ int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.progress = append(n.progress, progress)
}

func (n *captureNotifier) NotifyCompleted(_, _, _ string, _ float64) {
	n.mu.Lock()
	n.completed++
	n.mu.Unlock()
	select {
	case n.done <- struct{}{}:
	default:
	}
}

func (n *captureNotifier) NotifyError(_, _, message string) {
	n.mu.Lock()
	n.errors = append(n.errors, message)
	n.mu.Unlock()
	select {
	case n.done <- struct{}{}:
	default:
	}
}

func (n *captureNotifier) progressSnapshot() []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]float64(nil), n.progress...)
}

func simRules() model.RulesConfiguration {
	return model.RulesConfiguration{
		WeekdayShifts: []model.ShiftType{model.ShiftMorning, model.ShiftAfternoon},
		WeekendShifts: []model.ShiftType{model.ShiftWeekendGuard},
		ShiftWindows: map[model.ShiftType]model.ShiftWindow{
			model.ShiftMorning:      {StartHour: 8, EndHour: 14},
			model.ShiftAfternoon:    {StartHour: 14, EndHour: 20},
			model.ShiftWeekendGuard: {StartHour: 8, EndHour: 8, EndsNextDay: true},
		},
		Categories: map[model.ShiftType]model.Category{
			model.ShiftWeekendGuard: model.CategoryGuard,
		},
		MinRestHours:         12,
		MaxConsecutiveGuards: 1,
	}
}

func simParams(days int) Params {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	return Params{
		ScenarioID: "scenario-1",
		UserID:     "user-1",
		Start:      start,
		End:        start.AddDate(0, 0, days-1),
		Staff: []model.StaffMember{
			{ID: "s1", Name: "Alice", Role: model.RoleSenior},
			{ID: "s2", Name: "Bob", Role: model.RoleJunior},
		},
		Leaves: []model.Leave{
			{ID: "l1", StaffID: "s1", Start: start.AddDate(0, 0, 30), End: start.AddDate(0, 0, 32), Status: model.LeaveApproved},
		},
		Rules: simRules(),
	}
}

func newTestOrchestrator(store *memSimulationStore, notifier *captureNotifier, cfg Config) *Orchestrator {
	return New(NewResultCache(time.Hour), store, notifier, nil, cfg)
}

func TestExecute_DefaultStrategy(t *testing.T) {
	store := newMemSimulationStore()
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(store, notifier, Config{})

	run, err := o.Execute(context.Background(), "run-1", simParams(3), StrategyDefault)
	require.NoError(t, err)

	assert.Equal(t, model.RunCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 3, run.Result.SimulatedPeriod.TotalDays)
	assert.InDelta(t, 100.0, run.Result.StaffingCoverage.Overall, 0.001)

	require.NotNil(t, store.saved("run-1"))
	assert.Equal(t, 1, notifier.started)
	assert.Equal(t, 1, notifier.completed)
}

func TestExecute_ProgressIsMonotonic(t *testing.T) {
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(newMemSimulationStore(), notifier, Config{})

	_, err := o.Execute(context.Background(), "run-1", simParams(5), StrategyDefault)
	require.NoError(t, err)

	progress := notifier.progressSnapshot()
	require.NotEmpty(t, progress)
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
}

func TestExecute_CachedStrategyMissFails(t *testing.T) {
	store := newMemSimulationStore()
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(store, notifier, Config{})

	run, err := o.Execute(context.Background(), "run-1", simParams(3), StrategyCached)
	require.ErrorIs(t, err, ErrNoCachedResult)
	assert.Equal(t, model.RunFailed, run.Status)
	assert.NotEmpty(t, notifier.errors)
}

func TestExecute_CachedStrategyServesPriorResult(t *testing.T) {
	o := newTestOrchestrator(newMemSimulationStore(), newCaptureNotifier(), Config{})
	params := simParams(3)

	first, err := o.Execute(context.Background(), "run-1", params, StrategyDefault)
	require.NoError(t, err)

	second, err := o.Execute(context.Background(), "run-2", params, StrategyCached)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, second.Status)
	assert.Same(t, first.Result, second.Result)
}

func TestExecute_ChunkedStrategy(t *testing.T) {
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(newMemSimulationStore(), notifier, Config{Workers: 2, ChunkDays: 7})

	run, err := o.Execute(context.Background(), "run-1", simParams(14), StrategyParallelChunked)
	require.NoError(t, err)

	assert.Equal(t, model.RunCompleted, run.Status)
	require.NotNil(t, run.Result)
	assert.Equal(t, 14, run.Result.SimulatedPeriod.TotalDays)
	assert.Len(t, run.Result.StaffingCoverage.ByDay, 14)
	assert.Equal(t, "2025-06-02", run.Result.SimulatedPeriod.From)
	assert.Equal(t, "2025-06-15", run.Result.SimulatedPeriod.To)
}

func TestExecute_ChunkedShortRangeFallsThrough(t *testing.T) {
	o := newTestOrchestrator(newMemSimulationStore(), newCaptureNotifier(), Config{ChunkDays: 7})

	run, err := o.Execute(context.Background(), "run-1", simParams(3), StrategyParallelChunked)
	require.NoError(t, err)
	assert.Equal(t, 3, run.Result.SimulatedPeriod.TotalDays)
}

func TestExecute_CancelledContext(t *testing.T) {
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(newMemSimulationStore(), notifier, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := o.Execute(ctx, "run-1", simParams(3), StrategyDefault)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, model.RunFailed, run.Status)
	assert.Equal(t, "simulation cancelled by user", run.Error)
	require.NotEmpty(t, notifier.errors)
	assert.Equal(t, "simulation cancelled by user", notifier.errors[0])
}

func TestExecute_InfeasiblePlanFails(t *testing.T) {
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(newMemSimulationStore(), notifier, Config{})

	params := simParams(3)
	params.Staff = []model.StaffMember{
		{ID: "s1", Name: "Alice", Leaves: []model.Leave{
			{StaffID: "s1", Start: params.Start, End: params.End, Status: model.LeaveApproved},
		}},
	}

	run, err := o.Execute(context.Background(), "run-1", params, StrategyDefault)
	require.Error(t, err)
	assert.Equal(t, model.RunFailed, run.Status)
	assert.Contains(t, run.Error, "no eligible staff")
}

func TestExecute_IncrementalWithoutPriorFallsBack(t *testing.T) {
	store := newMemSimulationStore()
	o := newTestOrchestrator(store, newCaptureNotifier(), Config{})

	run, err := o.Execute(context.Background(), "run-1", simParams(3), StrategyIncremental)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.False(t, run.Result.IsPartialUpdate)
}

func TestExecute_IncrementalReusesPrior(t *testing.T) {
	store := newMemSimulationStore()
	o := newTestOrchestrator(store, newCaptureNotifier(), Config{})
	params := simParams(3)

	first, err := o.Execute(context.Background(), "run-1", params, StrategyDefault)
	require.NoError(t, err)
	first.Result.Conflicts.Resolved = 2
	store.prior = first

	run, err := o.Execute(context.Background(), "run-2", params, StrategyIncremental)
	require.NoError(t, err)
	assert.Equal(t, model.RunCompleted, run.Status)
	assert.True(t, run.Result.IsPartialUpdate)
	assert.Equal(t, 2, run.Result.Conflicts.Resolved)
}

func TestExecute_IncrementalAfterChunkedKeepsFullCoverage(t *testing.T) {
	store := newMemSimulationStore()
	o := newTestOrchestrator(store, newCaptureNotifier(), Config{Workers: 2, ChunkDays: 7})

	first, err := o.Execute(context.Background(), "run-1", simParams(14), StrategyParallelChunked)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, first.Result.StaffingCoverage.Overall, 0.001)
	store.prior = first

	second, err := o.Execute(context.Background(), "run-2", simParams(14), StrategyIncremental)
	require.NoError(t, err)
	require.NotNil(t, second.Result)
	assert.True(t, second.Result.IsPartialUpdate)
	assert.Equal(t, 14, second.Result.SimulatedPeriod.TotalDays)
	assert.Len(t, second.Result.StaffingCoverage.ByDay, 14)
	assert.InDelta(t, 100.0, second.Result.StaffingCoverage.Overall, 0.001)
}

func TestExecute_IncrementalIgnoresNarrowArtifact(t *testing.T) {
	store := newMemSimulationStore()
	o := newTestOrchestrator(store, newCaptureNotifier(), Config{})

	// The default run leaves behind a 3-day assignment artifact.
	short, err := o.Execute(context.Background(), "run-1", simParams(3), StrategyDefault)
	require.NoError(t, err)
	store.prior = short

	// A wider rerun must regenerate rather than stretch the short plan.
	wide, err := o.Execute(context.Background(), "run-2", simParams(10), StrategyIncremental)
	require.NoError(t, err)
	assert.Equal(t, 10, wide.Result.SimulatedPeriod.TotalDays)
	assert.Len(t, wide.Result.StaffingCoverage.ByDay, 10)
	assert.InDelta(t, 100.0, wide.Result.StaffingCoverage.Overall, 0.001)
}

func TestRunSimulation_Asynchronous(t *testing.T) {
	store := newMemSimulationStore()
	notifier := newCaptureNotifier()
	o := newTestOrchestrator(store, notifier, Config{})

	runID := o.RunSimulation(context.Background(), "", simParams(3), StrategyDefault)
	require.NotEmpty(t, runID)

	select {
	case <-notifier.done:
	case <-time.After(5 * time.Second):
		t.Fatal("simulation did not finish in time")
	}

	saved := store.saved(runID)
	require.NotNil(t, saved)
	assert.Equal(t, model.RunCompleted, saved.Status)
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{
		"":            StrategyDefault,
		"default":     StrategyDefault,
		"cached":      StrategyCached,
		"parallel":    StrategyParallelChunked,
		"incremental": StrategyIncremental,
	} {
		got, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseStrategy("turbo")
	require.Error(t, err)
}
