package gate

import (
	"fmt"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// GenerationRequestInput is a request to generate a planning over a range.
// Immediate requests are bounded by the short window; broader scheduling
// requests by the long one.
type GenerationRequestInput struct {
	Start     time.Time `validate:"required"`
	End       time.Time `validate:"required"`
	Immediate bool
	RoomCount int
}

// ValidatePlanningGeneration checks a generation request for structural and
// feasibility problems. The reported error list is capped for readability;
// capping is presentation policy, not a correctness rule.
func (g *Gate) ValidatePlanningGeneration(input GenerationRequestInput) (*model.ValidationResult, error) {
	if err := g.checkInput(input); err != nil {
		return nil, err
	}

	result := model.NewValidationResult()
	start := model.DateOf(input.Start)
	end := model.DateOf(input.End)

	if end.Before(start) {
		result.AddError("end date precedes start date")
		return result, nil
	}

	spanDays := int(end.Sub(start).Hours()/24) + 1
	if input.Immediate {
		if spanDays > g.limits.MaxImmediateWindowDays {
			result.AddError(fmt.Sprintf("range spans %d days, immediate generation is limited to %d",
				spanDays, g.limits.MaxImmediateWindowDays))
		}
	} else if start.AddDate(0, g.limits.MaxPlanningWindowMonths, 0).Before(end) {
		result.AddError(fmt.Sprintf("range exceeds the %d-month scheduling window", g.limits.MaxPlanningWindowMonths))
	}

	if start.Before(model.DateOf(g.Now())) {
		result.AddError("start date is in the past")
	}

	if input.RoomCount > 0 && len(g.staff) > 0 {
		g.checkDailyFeasibility(result, start, end, input.RoomCount)
	}

	capErrors(result, g.limits.MaxReportedErrors)
	return result, nil
}

// checkDailyFeasibility verifies supervisor-to-room and assistant-to-room
// ratios for every day in range net of approved leave, plus weekend/holiday
// staffing against the weekend shift list.
func (g *Gate) checkDailyFeasibility(result *model.ValidationResult, start, end time.Time, rooms int) {
	supervisorsNeeded := (rooms + g.rules.MaxRoomsPerSupervisor - 1) / g.rules.MaxRoomsPerSupervisor

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		seniors, juniors := g.availableByRole(day)

		offDay := model.IsWeekend(day) || g.isHoliday(day)
		if offDay {
			if seniors+juniors < len(g.rules.WeekendShifts) {
				result.AddError(fmt.Sprintf("insufficient staff for weekend/holiday coverage on %s: %d available, %d required",
					day.Format("2006-01-02"), seniors+juniors, len(g.rules.WeekendShifts)))
			}
			continue
		}

		if seniors < supervisorsNeeded {
			result.AddError(fmt.Sprintf("supervision ratio unsatisfiable on %s: %d supervisors for %d rooms",
				day.Format("2006-01-02"), seniors, rooms))
		}
		if juniors < rooms {
			result.AddError(fmt.Sprintf("assistant ratio unsatisfiable on %s: %d assistants for %d rooms",
				day.Format("2006-01-02"), juniors, rooms))
		}
	}
}

// availableByRole counts staff per tier not on approved leave that day.
func (g *Gate) availableByRole(day time.Time) (seniors, juniors int) {
	onLeave := make(map[string]bool)
	for _, l := range g.leaves {
		if l.Status == model.LeaveApproved && l.Covers(day) {
			onLeave[l.StaffID] = true
		}
	}
	for id, s := range g.staff {
		if onLeave[id] {
			continue
		}
		// Approved leaves may also ride on the staff record itself.
		skip := false
		for _, l := range s.Leaves {
			if l.Status == model.LeaveApproved && l.Covers(day) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if s.Role == model.RoleSenior {
			seniors++
		} else {
			juniors++
		}
	}
	return seniors, juniors
}

func capErrors(result *model.ValidationResult, max int) {
	if len(result.Errors) > max {
		result.Errors = result.Errors[:max]
	}
}
