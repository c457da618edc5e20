package planner

import (
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// sameDayContinuationGap is the largest gap between two shifts on the same
// calendar day that still counts as a continuation rather than a rest break.
// Boundary convenience for back-to-back shift templates; flagged for domain
// review.
const sameDayContinuationGap = 10 * time.Minute

// Evaluator decides staff eligibility for a shift on a given day against
// the assignments created so far. It holds the rule bundle for the run and
// performs no I/O.
type Evaluator struct {
	rules model.RulesConfiguration
}

// NewEvaluator creates an evaluator over a normalized copy of the rules.
func NewEvaluator(rules model.RulesConfiguration) *Evaluator {
	return &Evaluator{rules: rules.Normalized()}
}

// Rules returns the normalized rule bundle the evaluator runs with.
func (e *Evaluator) Rules() model.RulesConfiguration {
	return e.rules
}

// IsAvailable runs the full eligibility check chain: approved-leave overlap,
// same-day compatibility, rest period, specialty match and inter-guard
// spacing, in that order. All checks must pass.
func (e *Evaluator) IsAvailable(staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
	start, end := e.rules.ShiftInterval(day, shift)

	if e.hasLeaveConflict(staff, start, end) {
		return false
	}
	if !e.isDayCompatible(staff, day, shift, assignments) {
		return false
	}
	if !e.RespectsRest(staff, start, assignments) {
		return false
	}
	if !e.HasSpecialty(staff, shift) {
		return false
	}
	if !e.respectsGuardSpacing(staff, day, shift, assignments) {
		return false
	}
	return true
}

// GetAvailableCandidates returns every staff member passing the full check
// chain, preserving catalog order.
func (e *Evaluator) GetAvailableCandidates(staff []model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) []model.StaffMember {
	var candidates []model.StaffMember
	for _, s := range staff {
		if e.IsAvailable(s, day, shift, assignments) {
			candidates = append(candidates, s)
		}
	}
	return candidates
}

// hasLeaveConflict reports whether an APPROVED leave interval overlaps the
// shift's concrete [start, end) interval. Leave bounds are inclusive
// calendar dates, so the leave occupies [startDay, endDay+1).
func (e *Evaluator) hasLeaveConflict(staff model.StaffMember, start, end time.Time) bool {
	for _, leave := range staff.Leaves {
		if leave.Status != model.LeaveApproved {
			continue
		}
		leaveStart := model.DateOf(leave.Start)
		leaveEnd := model.DateOf(leave.End).AddDate(0, 0, 1)
		if start.Before(leaveEnd) && leaveStart.Before(end) {
			return true
		}
	}
	return false
}

// isDayCompatible enforces same-day incompatibility rules:
//   - a guard is exclusive: it coexists with nothing else that day, and
//     nothing joins a day that already has a guard
//   - on-call is compatible with other categories but forbidden on the
//     mandatory rest day immediately after a guard
//   - consultations at the same half-day exclude each other and any
//     operating block at that half-day
//   - operating blocks are capped per day at the max rooms per supervisor
func (e *Evaluator) isDayCompatible(staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
	category := e.rules.CategoryOf(shift)
	half := e.rules.HalfDayOf(shift)

	blocksToday := 0
	for _, a := range assignments {
		if a.StaffID != staff.ID {
			continue
		}

		if a.SameDay(day) {
			existing := e.rules.CategoryOf(a.Shift)
			if category == model.CategoryGuard || existing == model.CategoryGuard {
				return false
			}

			existingHalf := e.rules.HalfDayOf(a.Shift)
			sameHalf := half != model.FullDay && half == existingHalf
			if category == model.CategoryConsultation && sameHalf &&
				(existing == model.CategoryConsultation || existing == model.CategoryOperatingBlock) {
				return false
			}
			if category == model.CategoryOperatingBlock && sameHalf && existing == model.CategoryConsultation {
				return false
			}
			if existing == model.CategoryOperatingBlock {
				blocksToday++
			}
		}

		// On-call is forbidden on the rest day immediately after a guard.
		if category == model.CategoryOnCall &&
			e.rules.CategoryOf(a.Shift) == model.CategoryGuard &&
			a.SameDay(day.AddDate(0, 0, -1)) {
			return false
		}
	}

	if category == model.CategoryOperatingBlock && blocksToday >= e.rules.MaxRoomsPerSupervisor {
		return false
	}
	return true
}

// RespectsRest checks the gap between the end of the most recent prior
// assignment and the new shift's start against the configured minimum rest.
// A sub-10-minute gap on the same calendar day counts as a continuation of
// the previous shift and is exempt.
func (e *Evaluator) RespectsRest(staff model.StaffMember, start time.Time, assignments []model.Assignment) bool {
	var lastEnd time.Time
	found := false
	for _, a := range assignments {
		if a.StaffID != staff.ID || a.End.After(start) {
			continue
		}
		if !found || a.End.After(lastEnd) {
			lastEnd = a.End
			found = true
		}
	}
	if !found {
		return true
	}

	gap := start.Sub(lastEnd)
	if gap >= time.Duration(e.rules.MinRestHours)*time.Hour {
		return true
	}
	return model.SameCalendarDay(lastEnd, start) && gap < sameDayContinuationGap
}

// HasSpecialty reports whether at least one of the staff member's
// specialties appears in the shift's requirement list. Shifts with no
// configured requirement pass trivially.
func (e *Evaluator) HasSpecialty(staff model.StaffMember, shift model.ShiftType) bool {
	required := e.rules.RequiredSpecialties[shift]
	if len(required) == 0 {
		return true
	}
	for _, want := range required {
		for _, have := range staff.Specialties {
			if have == want {
				return true
			}
		}
	}
	return false
}

// respectsGuardSpacing rejects a guard shift when the staff member worked
// another guard ending within the configured minimum-days window.
func (e *Evaluator) respectsGuardSpacing(staff model.StaffMember, day time.Time, shift model.ShiftType, assignments []model.Assignment) bool {
	if e.rules.CategoryOf(shift) != model.CategoryGuard || e.rules.MinDaysBetweenGuards <= 0 {
		return true
	}
	target := model.DateOf(day)
	for _, a := range assignments {
		if a.StaffID != staff.ID || e.rules.CategoryOf(a.Shift) != model.CategoryGuard {
			continue
		}
		days := target.Sub(model.DateOf(a.End)).Hours() / 24
		if days < 0 {
			days = -days
		}
		if days < float64(e.rules.MinDaysBetweenGuards) {
			return false
		}
	}
	return true
}
