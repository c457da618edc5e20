package planner

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/medshift/rostergen/pkg/core/model"
)

// InfeasibilityError is the fatal generation failure: no staff member
// satisfies even the loosest relaxation level for a required shift. The run
// stops immediately; no partial plan is returned.
type InfeasibilityError struct {
	Date  time.Time
	Shift model.ShiftType
}

func (e *InfeasibilityError) Error() string {
	return fmt.Sprintf("no eligible staff for shift %s on %s after exhausting all relaxation levels",
		e.Shift, e.Date.Format("2006-01-02"))
}

// Generator drives day-by-day plan generation over a date range. It is
// deterministic: identical staff order, rules and range produce an identical
// plan. It performs no external I/O.
type Generator struct {
	staff  []model.StaffMember
	eval   *Evaluator
	levels []RelaxationLevel
	start  time.Time
	end    time.Time
	logger *zap.Logger
}

// NewGenerator creates a generator for the inclusive date range [start, end].
// The rules are normalized into a private copy; the caller's configuration
// is never mutated.
func NewGenerator(staff []model.StaffMember, rules model.RulesConfiguration, start, end time.Time, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		staff:  staff,
		eval:   NewEvaluator(rules),
		levels: RelaxationLevels(),
		start:  model.DateOf(start),
		end:    model.DateOf(end),
		logger: logger,
	}
}

// GeneratePlanning produces one assignment per required shift per day, or
// fails fatally with an InfeasibilityError naming the first uncovered slot.
func (g *Generator) GeneratePlanning() ([]model.Assignment, error) {
	if g.end.Before(g.start) {
		return nil, fmt.Errorf("planning range end %s precedes start %s",
			g.end.Format("2006-01-02"), g.start.Format("2006-01-02"))
	}

	rules := g.eval.Rules()
	var assignments []model.Assignment

	for day := g.start; !day.After(g.end); day = day.AddDate(0, 0, 1) {
		for _, shift := range rules.ShiftsForDate(day) {
			selected, level, err := g.selectCandidate(day, shift, assignments)
			if err != nil {
				return nil, err
			}
			if level > 0 {
				g.logger.Warn("shift filled through fallback relaxation",
					zap.String("date", day.Format("2006-01-02")),
					zap.String("shift", string(shift)),
					zap.String("level", g.levels[level].Name),
					zap.String("staff_id", selected.ID))
			}

			assignments = append(assignments, g.newAssignment(selected, day, shift))
		}
	}

	g.logger.Info("planning generated",
		zap.String("from", g.start.Format("2006-01-02")),
		zap.String("to", g.end.Format("2006-01-02")),
		zap.Int("assignments", len(assignments)))

	return assignments, nil
}

// selectCandidate walks the relaxation ladder for one slot and picks the
// least-loaded member of the first non-empty pool. Ties keep catalog order.
func (g *Generator) selectCandidate(day time.Time, shift model.ShiftType, assignments []model.Assignment) (model.StaffMember, int, error) {
	for i, level := range g.levels {
		pool := candidatesAtLevel(g.eval, level, g.staff, day, shift, assignments)
		if len(pool) == 0 {
			continue
		}
		return leastLoaded(pool, assignments), i, nil
	}
	return model.StaffMember{}, 0, &InfeasibilityError{Date: day, Shift: shift}
}

// leastLoaded returns the pool member with the fewest assignments so far.
// Strict less-than keeps the first (catalog-order) member on ties.
func leastLoaded(pool []model.StaffMember, assignments []model.Assignment) model.StaffMember {
	counts := make(map[string]int, len(pool))
	for _, a := range assignments {
		counts[a.StaffID]++
	}

	best := pool[0]
	for _, candidate := range pool[1:] {
		if counts[candidate.ID] < counts[best.ID] {
			best = candidate
		}
	}
	return best
}

func (g *Generator) newAssignment(staff model.StaffMember, day time.Time, shift model.ShiftType) model.Assignment {
	start, end := g.eval.Rules().ShiftInterval(day, shift)
	now := time.Now().UTC()
	return model.Assignment{
		ID:        uuid.New().String(),
		StaffID:   staff.ID,
		Shift:     shift,
		Start:     start,
		End:       end,
		Status:    model.AssignmentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
