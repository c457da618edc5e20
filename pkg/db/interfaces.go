// Package db defines the persistence port the engine consumes. The core
// never talks to a database directly; implementations (see pkg/postgres)
// satisfy these interfaces.
package db

import (
	"context"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// StaffStore loads staff members with their leave history attached.
type StaffStore interface {
	LoadStaff(ctx context.Context, siteID string) ([]model.StaffMember, error)
}

// LeaveStore loads leave records. A zero staffID loads all staff; zero range
// bounds load all dates.
type LeaveStore interface {
	LoadLeaves(ctx context.Context, staffID string, from, to time.Time) ([]model.Leave, error)
}

// SaveOutcome reports a batch save: per-item conflicts are collected, not
// fatal, and the batch still succeeds if the persistence call itself
// completed.
type SaveOutcome struct {
	Created   int
	Updated   int
	Conflicts []error
}

// AssignmentStore persists generated or manually inserted assignments.
type AssignmentStore interface {
	SaveAssignments(ctx context.Context, assignments []model.Assignment) (SaveOutcome, error)
	DeleteAssignments(ctx context.Context, from, to time.Time) (int, error)
}

// SimulationStore persists simulation runs and serves prior results to the
// incremental strategy.
type SimulationStore interface {
	LoadPriorSimulationResult(ctx context.Context, scenarioID string) (*model.SimulationRun, error)
	SaveSimulationResult(ctx context.Context, run *model.SimulationRun) error
}

// Store is the full persistence port.
type Store interface {
	StaffStore
	LeaveStore
	AssignmentStore
	SimulationStore
}
