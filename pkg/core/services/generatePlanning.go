package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/medshift/rostergen/pkg/core/model"
	"github.com/medshift/rostergen/pkg/core/planner"
	"github.com/medshift/rostergen/pkg/db"
)

// PlanningResult is the full outcome of a planning generation: the plan,
// its validation, and the persistence tally. Callers always get either a
// complete payload with a validity signal or an error, never a silent
// partial plan.
type PlanningResult struct {
	Assignments []model.Assignment
	Validation  *model.ValidationResult
	Created     int
	Updated     int
	Conflicts   []error
}

// GeneratePlanning loads the site roster, generates assignments over
// [start, end], validates the plan and, unless dryRun is set, persists it.
// Load failures are fatal; per-item save conflicts are collected.
func GeneratePlanning(ctx context.Context, store db.Store, logger *zap.Logger, siteID string,
	rules model.RulesConfiguration, start, end time.Time, dryRun bool) (*PlanningResult, error) {

	logger.Info("Generating planning",
		zap.String("site_id", siteID),
		zap.String("from", start.Format("2006-01-02")),
		zap.String("to", end.Format("2006-01-02")),
		zap.Bool("dry_run", dryRun))

	staff, err := store.LoadStaff(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff: %w", err)
	}
	if len(staff) == 0 {
		return nil, fmt.Errorf("no staff found for site %s", siteID)
	}
	logger.Debug("Staff loaded", zap.Int("count", len(staff)))

	generator := planner.NewGenerator(staff, rules, start, end, logger)
	assignments, err := generator.GeneratePlanning()
	if err != nil {
		return nil, err
	}

	validation := planner.Validate(staff, assignments, rules)
	if !validation.Valid {
		logger.Warn("Generated plan has rule violations", zap.Int("violations", len(validation.Errors)))
	}

	result := &PlanningResult{Assignments: assignments, Validation: validation}
	if dryRun {
		return result, nil
	}

	outcome, err := store.SaveAssignments(ctx, assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to save assignments: %w", err)
	}
	result.Created = outcome.Created
	result.Updated = outcome.Updated
	result.Conflicts = outcome.Conflicts

	logger.Info("Planning persisted",
		zap.Int("created", outcome.Created),
		zap.Int("updated", outcome.Updated),
		zap.Int("conflicts", len(outcome.Conflicts)))

	return result, nil
}
