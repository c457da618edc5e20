package planner

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// Validate runs the four post-hoc rule passes (coverage, rest periods,
// specialty match, equity) against a completed assignment set. All
// violations are accumulated; nothing short-circuits. The function is pure:
// the same inputs always produce the same result.
func Validate(staff []model.StaffMember, assignments []model.Assignment, rules model.RulesConfiguration) *model.ValidationResult {
	rules = rules.Normalized()
	result := model.NewValidationResult()

	validateCoverage(result, assignments, rules)
	validateRestPeriods(result, assignments, rules)
	validateSpecialties(result, staff, assignments, rules)
	validateEquity(result, staff, assignments, rules)

	return result
}

// validateCoverage checks that every day in the plan's span has at least one
// assignment for every shift type its weekday mandates.
func validateCoverage(result *model.ValidationResult, assignments []model.Assignment, rules model.RulesConfiguration) {
	if len(assignments) == 0 {
		return
	}

	first := model.DateOf(assignments[0].Start)
	last := first
	for _, a := range assignments[1:] {
		d := model.DateOf(a.Start)
		if d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	covered := make(map[string]bool, len(assignments))
	for _, a := range assignments {
		covered[coverageKey(model.DateOf(a.Start), a.Shift)] = true
	}

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		for _, shift := range rules.ShiftsForDate(day) {
			if !covered[coverageKey(day, shift)] {
				result.AddError(fmt.Sprintf("shift %s uncovered on %s", shift, day.Format("2006-01-02")))
			}
		}
	}
}

func coverageKey(day time.Time, shift model.ShiftType) string {
	return day.Format("2006-01-02") + "|" + string(shift)
}

// validateRestPeriods checks the gap between each staff member's consecutive
// assignments against the minimum rest, honoring the same-day short-gap
// continuation exemption.
func validateRestPeriods(result *model.ValidationResult, assignments []model.Assignment, rules model.RulesConfiguration) {
	byStaff := make(map[string][]model.Assignment)
	var staffIDs []string
	for _, a := range assignments {
		if _, seen := byStaff[a.StaffID]; !seen {
			staffIDs = append(staffIDs, a.StaffID)
		}
		byStaff[a.StaffID] = append(byStaff[a.StaffID], a)
	}
	sort.Strings(staffIDs)

	minRest := time.Duration(rules.MinRestHours) * time.Hour
	for _, staffID := range staffIDs {
		own := byStaff[staffID]
		sort.Slice(own, func(i, j int) bool { return own[i].Start.Before(own[j].Start) })

		for i := 1; i < len(own); i++ {
			prev, next := own[i-1], own[i]
			gap := next.Start.Sub(prev.End)
			if gap >= minRest {
				continue
			}
			if model.SameCalendarDay(prev.End, next.Start) && gap >= 0 && gap < sameDayContinuationGap {
				continue
			}
			result.AddError(fmt.Sprintf("rest period violated for staff %s: %s ends %s, %s starts %s",
				staffID, prev.Shift, prev.End.Format(time.RFC3339), next.Shift, next.Start.Format(time.RFC3339)))
		}
	}
}

// validateSpecialties checks every assignment's owner against the shift's
// required specialties.
func validateSpecialties(result *model.ValidationResult, staff []model.StaffMember, assignments []model.Assignment, rules model.RulesConfiguration) {
	byID := make(map[string]model.StaffMember, len(staff))
	for _, s := range staff {
		byID[s.ID] = s
	}
	eval := &Evaluator{rules: rules}

	for _, a := range assignments {
		owner, ok := byID[a.StaffID]
		if !ok {
			result.AddError(fmt.Sprintf("assignment %s references unknown staff %s", a.ID, a.StaffID))
			continue
		}
		if !eval.HasSpecialty(owner, a.Shift) {
			result.AddError(fmt.Sprintf("staff %s lacks required specialty for shift %s on %s",
				owner.Name, a.Shift, a.Start.Format("2006-01-02")))
		}
	}
}

// validateEquity flags staff whose assignment count deviates from the mean
// by more than MaxDeviation population standard deviations. Population
// stddev is used because the staff list is the whole population, not a
// sample; the multiplier is configuration, not a constant.
func validateEquity(result *model.ValidationResult, staff []model.StaffMember, assignments []model.Assignment, rules model.RulesConfiguration) {
	if len(staff) == 0 {
		return
	}

	counts := make(map[string]int, len(staff))
	for _, a := range assignments {
		counts[a.StaffID]++
	}

	var sum float64
	for _, s := range staff {
		sum += float64(counts[s.ID])
	}
	mean := sum / float64(len(staff))

	var variance float64
	for _, s := range staff {
		d := float64(counts[s.ID]) - mean
		variance += d * d
	}
	stdDev := math.Sqrt(variance / float64(len(staff)))
	if stdDev == 0 {
		return
	}

	bound := rules.MaxDeviation * stdDev
	for _, s := range staff {
		count := float64(counts[s.ID])
		if math.Abs(count-mean) > bound {
			result.AddError(fmt.Sprintf("assignment count for %s (%d) deviates from mean (%.2f) beyond equity bound",
				s.Name, counts[s.ID], mean))
		}
	}
}
