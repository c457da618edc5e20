package gate

import (
	"fmt"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// LeaveRequestInput is a candidate leave request. Start and End are
// inclusive calendar dates.
type LeaveRequestInput struct {
	StaffID string    `validate:"required"`
	Start   time.Time `validate:"required"`
	End     time.Time `validate:"required"`
	Type    string
}

// ValidateLeaveRequest checks a leave request against the leave business
// rules, returning every detected violation. A missing staff or quota
// record is a hard error.
func (g *Gate) ValidateLeaveRequest(input LeaveRequestInput) (*model.ValidationResult, error) {
	if err := g.checkInput(input); err != nil {
		return nil, err
	}
	if _, ok := g.staff[input.StaffID]; !ok {
		return nil, fmt.Errorf("staff %s not found", input.StaffID)
	}
	quota, ok := g.quotas[input.StaffID]
	if !ok {
		return nil, fmt.Errorf("no leave quota record for staff %s", input.StaffID)
	}

	result := model.NewValidationResult()

	start := model.DateOf(input.Start)
	end := model.DateOf(input.End)
	if end.Before(start) {
		result.AddError("leave end date precedes start date")
		return result, nil
	}

	requested := model.Leave{StaffID: input.StaffID, Start: start, End: end}
	days := requested.Days()

	if days > g.limits.MaxLeaveDays {
		result.AddError(fmt.Sprintf("leave spans %d consecutive days, maximum is %d", days, g.limits.MaxLeaveDays))
	}

	for _, existing := range g.staffLeaves(input.StaffID) {
		if existing.Status != model.LeavePending && existing.Status != model.LeaveApproved {
			continue
		}
		if leavesOverlap(requested, existing) {
			result.AddError(fmt.Sprintf("leave overlaps existing %s leave from %s to %s",
				existing.Status, existing.Start.Format("2006-01-02"), existing.End.Format("2006-01-02")))
		}
	}

	g.checkYearlyQuota(result, requested, quota)
	g.checkLongLeaveSeparation(result, requested, days)

	return result, nil
}

func (g *Gate) staffLeaves(staffID string) []model.Leave {
	var own []model.Leave
	for _, l := range g.leaves {
		if l.StaffID == staffID {
			own = append(own, l)
		}
	}
	return own
}

func leavesOverlap(a, b model.Leave) bool {
	return !model.DateOf(a.Start).After(model.DateOf(b.End)) &&
		!model.DateOf(b.Start).After(model.DateOf(a.End))
}

// checkYearlyQuota verifies cumulative approved days in the calendar year of
// the request's start, counting the new request's days that fall in that
// year.
func (g *Gate) checkYearlyQuota(result *model.ValidationResult, requested model.Leave, quota LeaveQuota) {
	year := requested.Start.Year()
	total := daysInYear(requested, year)
	for _, existing := range g.staffLeaves(requested.StaffID) {
		if existing.Status == model.LeaveApproved {
			total += daysInYear(existing, year)
		}
	}
	if total > quota.YearlyCapDays {
		result.AddError(fmt.Sprintf("cumulative approved leave in %d would reach %d days, yearly cap is %d",
			year, total, quota.YearlyCapDays))
	}
}

// daysInYear counts the leave's days that fall within the given calendar year.
func daysInYear(l model.Leave, year int) int {
	yearStart := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
	start := model.DateOf(l.Start)
	end := model.DateOf(l.End)
	if start.Before(yearStart) {
		start = yearStart
	}
	if end.After(yearEnd) {
		end = yearEnd
	}
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// checkLongLeaveSeparation enforces that leaves longer than the long-leave
// threshold keep the configured separation from any other long leave for
// the same staff member within a window of the same size around the request.
func (g *Gate) checkLongLeaveSeparation(result *model.ValidationResult, requested model.Leave, days int) {
	if days <= g.limits.LongLeaveDays {
		return
	}
	separation := time.Duration(g.limits.LongLeaveSeparationDays) * 24 * time.Hour
	windowStart := model.DateOf(requested.Start).Add(-separation)
	windowEnd := model.DateOf(requested.End).Add(separation)

	for _, existing := range g.staffLeaves(requested.StaffID) {
		if existing.Status != model.LeavePending && existing.Status != model.LeaveApproved {
			continue
		}
		if existing.Days() <= g.limits.LongLeaveDays {
			continue
		}
		if model.DateOf(existing.End).Before(windowStart) || model.DateOf(existing.Start).After(windowEnd) {
			continue
		}
		if gapDays(requested, existing) < g.limits.LongLeaveSeparationDays {
			result.AddError(fmt.Sprintf("long leave requires %d days separation from long leave ending %s",
				g.limits.LongLeaveSeparationDays, existing.End.Format("2006-01-02")))
		}
	}
}

// gapDays returns the calendar-day gap between two leave intervals, zero if
// they touch or overlap.
func gapDays(a, b model.Leave) int {
	if leavesOverlap(a, b) {
		return 0
	}
	var gap time.Duration
	if model.DateOf(a.End).Before(model.DateOf(b.Start)) {
		gap = model.DateOf(b.Start).Sub(model.DateOf(a.End))
	} else {
		gap = model.DateOf(a.Start).Sub(model.DateOf(b.End))
	}
	return int(gap.Hours() / 24)
}
