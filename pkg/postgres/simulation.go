package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/medshift/rostergen/pkg/core/model"
)

// LoadPriorSimulationResult returns the most recent COMPLETED run for a
// scenario, or nil when none exists.
func (d *DB) LoadPriorSimulationResult(ctx context.Context, scenarioID string) (*model.SimulationRun, error) {
	var run model.SimulationRun
	var status string
	var payload []byte
	var errorMessage *string

	err := d.pool.QueryRow(ctx, `
		SELECT id, scenario_id, range_start, range_end, status, payload, error_message, execution_ms
		FROM simulation_run
		WHERE scenario_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, scenarioID, string(model.RunCompleted)).Scan(
		&run.ID, &run.ScenarioID, &run.Start, &run.End, &status, &payload, &errorMessage, &run.ExecutionMs)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query prior simulation result: %w", err)
	}

	run.Status = model.RunStatus(status)
	if errorMessage != nil {
		run.Error = *errorMessage
	}
	if len(payload) > 0 {
		var result model.SimulationResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to decode simulation payload: %w", err)
		}
		run.Result = &result
	}

	return &run, nil
}

// SaveSimulationResult persists a run outcome, payload serialized as JSONB.
func (d *DB) SaveSimulationResult(ctx context.Context, run *model.SimulationRun) error {
	var payload []byte
	if run.Result != nil {
		var err error
		payload, err = json.Marshal(run.Result)
		if err != nil {
			return fmt.Errorf("failed to encode simulation payload: %w", err)
		}
	}

	var errorMessage *string
	if run.Error != "" {
		errorMessage = &run.Error
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO simulation_run (id, scenario_id, range_start, range_end, status, payload, error_message, execution_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET status = EXCLUDED.status,
		    payload = EXCLUDED.payload,
		    error_message = EXCLUDED.error_message,
		    execution_ms = EXCLUDED.execution_ms
	`, run.ID, run.ScenarioID, model.DateOf(run.Start), model.DateOf(run.End),
		string(run.Status), payload, errorMessage, run.ExecutionMs)
	if err != nil {
		return fmt.Errorf("failed to save simulation run: %w", err)
	}
	return nil
}
