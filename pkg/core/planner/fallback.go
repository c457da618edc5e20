package planner

import (
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// RelaxationLevel is one step in the cascading fallback applied when no
// candidate satisfies the full eligibility chain. Levels are tried strictly
// in order and the first non-empty pool wins.
type RelaxationLevel struct {
	// Name identifies the level in logs.
	Name string

	// Eligible is the relaxed predicate for this level.
	Eligible func(e *Evaluator, staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool
}

// RelaxationLevels returns the fallback ladder, from strictest to loosest:
//
//	full             : the complete eligibility chain
//	no-guard-spacing : full chain minus inter-guard spacing
//	day-compatible   : leave conflicts and same-day compatibility only
//	leave-only       : not on approved leave that day (last resort)
//
// An empty pool at the last level is the one unrecoverable condition in
// generation.
func RelaxationLevels() []RelaxationLevel {
	return []RelaxationLevel{
		{
			Name: "full",
			Eligible: func(e *Evaluator, staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
				return e.IsAvailable(staff, day, shift, assignments)
			},
		},
		{
			Name: "no-guard-spacing",
			Eligible: func(e *Evaluator, staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
				start, end := e.rules.ShiftInterval(day, shift)
				return !e.hasLeaveConflict(staff, start, end) &&
					e.isDayCompatible(staff, day, shift, assignments) &&
					e.RespectsRest(staff, start, assignments) &&
					e.HasSpecialty(staff, shift)
			},
		},
		{
			Name: "day-compatible",
			Eligible: func(e *Evaluator, staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
				start, end := e.rules.ShiftInterval(day, shift)
				return !e.hasLeaveConflict(staff, start, end) &&
					e.isDayCompatible(staff, day, shift, assignments)
			},
		},
		{
			Name: "leave-only",
			Eligible: func(e *Evaluator, staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
				start, end := e.rules.ShiftInterval(day, shift)
				return !e.hasLeaveConflict(staff, start, end)
			},
		},
	}
}

// candidatesAtLevel returns the staff passing the level's predicate,
// preserving catalog order.
func candidatesAtLevel(e *Evaluator, level RelaxationLevel, staff []model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) []model.StaffMember {
	var pool []model.StaffMember
	for _, s := range staff {
		if level.Eligible(e, s, day, shift, assignments) {
			pool = append(pool, s)
		}
	}
	return pool
}
