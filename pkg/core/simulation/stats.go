package simulation

import (
	"sort"
	"strings"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// buildResult assembles the persisted payload from a computed plan and its
// validation outcome.
func buildResult(params Params, assignments []model.Assignment, validation *model.ValidationResult) *model.SimulationResult {
	rules := params.Rules.Normalized()
	start := model.DateOf(params.Start)
	end := model.DateOf(params.End)

	return &model.SimulationResult{
		SimulatedPeriod: model.Period{
			From:      start.Format("2006-01-02"),
			To:        end.Format("2006-01-02"),
			TotalDays: params.SpanDays(),
		},
		StaffingCoverage:  buildCoverage(start, end, assignments, rules),
		LeaveRequests:     buildLeaveStats(params.Leaves, start, end),
		ShiftDistribution: buildDistribution(params.Staff, assignments, rules),
		Conflicts:         buildConflictStats(validation),
	}
}

// buildCoverage computes per-day required-vs-actual staffing and the overall
// mean coverage percentage.
func buildCoverage(start, end time.Time, assignments []model.Assignment, rules model.RulesConfiguration) model.Coverage {
	covered := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		covered[model.DateOf(a.Start).Format("2006-01-02")+"|"+string(a.Shift)] = true
	}

	var byDay []model.DayCoverage
	var total float64
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		required := rules.ShiftsForDate(day)
		actual := 0
		for _, shift := range required {
			if covered[day.Format("2006-01-02")+"|"+string(shift)] {
				actual++
			}
		}
		pct := 100.0
		if len(required) > 0 {
			pct = float64(actual) / float64(len(required)) * 100
		}
		byDay = append(byDay, model.DayCoverage{
			Date:     day.Format("2006-01-02"),
			Coverage: pct,
			Required: len(required),
			Actual:   actual,
		})
		total += pct
	}

	overall := 100.0
	if len(byDay) > 0 {
		overall = total / float64(len(byDay))
	}
	return model.Coverage{Overall: overall, ByDay: byDay}
}

// buildLeaveStats tallies leave requests whose interval touches the period.
func buildLeaveStats(leaves []model.Leave, start, end time.Time) model.LeaveStats {
	stats := model.LeaveStats{}
	for _, l := range leaves {
		if model.DateOf(l.End).Before(start) || model.DateOf(l.Start).After(end) {
			continue
		}
		stats.TotalRequested++
		switch l.Status {
		case model.LeaveApproved:
			stats.Approved++
		case model.LeaveRejected:
			stats.Rejected++
		}
	}
	if stats.TotalRequested > 0 {
		stats.ApprovalRate = float64(stats.Approved) / float64(stats.TotalRequested) * 100
	}
	return stats
}

// buildDistribution computes per-staff shift distribution, sorted by staff
// name for deterministic output.
func buildDistribution(staff []model.StaffMember, assignments []model.Assignment, rules model.RulesConfiguration) []model.StaffShiftLoad {
	names := make(map[string]string, len(staff))
	for _, s := range staff {
		names[s.ID] = s.Name
	}

	loads := make(map[string]*model.StaffShiftLoad)
	for _, a := range assignments {
		name, ok := names[a.StaffID]
		if !ok {
			name = a.StaffID
		}
		load := loads[name]
		if load == nil {
			load = &model.StaffShiftLoad{StaffName: name}
			loads[name] = load
		}

		switch {
		case model.IsWeekend(a.Start):
			load.WeekendShifts++
		case rules.CategoryOf(a.Shift) == model.CategoryGuard || spansNight(rules, a.Shift):
			load.NightShifts++
		case rules.HalfDayOf(a.Shift) == model.AfternoonHalf:
			load.AfternoonShifts++
		default:
			load.MorningShifts++
		}
		load.TotalHours += a.Hours()
	}

	out := make([]model.StaffShiftLoad, 0, len(loads))
	for _, load := range loads {
		out = append(out, *load)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StaffName < out[j].StaffName })
	return out
}

func spansNight(rules model.RulesConfiguration, shift model.ShiftType) bool {
	w, ok := rules.ShiftWindows[shift]
	return ok && w.EndsNextDay
}

// buildConflictStats classifies validation violations by severity. Rest and
// coverage breaches endanger care continuity and rank high; specialty
// mismatches rank medium; the rest (equity etc.) rank low. Generated plans
// carry no resolution workflow, so everything counts as unresolved.
func buildConflictStats(validation *model.ValidationResult) model.ConflictStats {
	stats := model.ConflictStats{}
	if validation == nil {
		return stats
	}
	for _, msg := range validation.Errors {
		stats.Total++
		lower := strings.ToLower(msg)
		switch {
		case strings.Contains(lower, "rest period") || strings.Contains(lower, "uncovered"):
			stats.ByPriority.High++
		case strings.Contains(lower, "specialty"):
			stats.ByPriority.Medium++
		default:
			stats.ByPriority.Low++
		}
	}
	stats.Unresolved = stats.Total
	return stats
}
