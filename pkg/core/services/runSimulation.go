package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medshift/rostergen/pkg/core/model"
	"github.com/medshift/rostergen/pkg/core/simulation"
	"github.com/medshift/rostergen/pkg/db"
)

// RunSimulation loads the scenario inputs and hands them to the
// orchestrator. The returned run id can be polled through the persistence
// port; progress streams through the notification port.
func RunSimulation(ctx context.Context, store db.Store, orchestrator *simulation.Orchestrator, logger *zap.Logger,
	scenarioID, userID, siteID string, rules model.RulesConfiguration, start, end time.Time, strategy simulation.Strategy) (string, error) {

	staff, err := store.LoadStaff(ctx, siteID)
	if err != nil {
		return "", fmt.Errorf("failed to load staff: %w", err)
	}
	leaves, err := store.LoadLeaves(ctx, "", start, end)
	if err != nil {
		return "", fmt.Errorf("failed to load leaves: %w", err)
	}

	params := simulation.Params{
		ScenarioID: scenarioID,
		UserID:     userID,
		Start:      start,
		End:        end,
		Staff:      staff,
		Leaves:     leaves,
		Rules:      rules,
	}

	runID := orchestrator.RunSimulation(ctx, "", params, strategy)
	logger.Info("Simulation dispatched",
		zap.String("run_id", runID),
		zap.String("scenario_id", scenarioID),
		zap.String("strategy", string(strategy)))
	return runID, nil
}

// RunSimulationBlocking is the synchronous variant used by the CLI: it
// waits for the run to finish and returns its outcome.
func RunSimulationBlocking(ctx context.Context, store db.Store, orchestrator *simulation.Orchestrator, logger *zap.Logger,
	scenarioID, userID, siteID string, rules model.RulesConfiguration, start, end time.Time, strategy simulation.Strategy) (*model.SimulationRun, error) {

	staff, err := store.LoadStaff(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	leaves, err := store.LoadLeaves(ctx, "", start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaves: %w", err)
	}

	params := simulation.Params{
		ScenarioID: scenarioID,
		UserID:     userID,
		Start:      start,
		End:        end,
		Staff:      staff,
		Leaves:     leaves,
		Rules:      rules,
	}

	return orchestrator.Execute(ctx, "", params, strategy)
}
