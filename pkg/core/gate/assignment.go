package gate

import (
	"fmt"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// AssignmentInput is a candidate manual assignment insertion.
type AssignmentInput struct {
	StaffID    string          `validate:"required"`
	Shift      model.ShiftType `validate:"required"`
	Date       time.Time       `validate:"required"`
	RoomID     string
	Supervised bool
}

// ValidateAssignment checks a manual assignment against the assignment
// business rules, returning every detected violation. Missing staff or room
// references are hard errors.
func (g *Gate) ValidateAssignment(input AssignmentInput) (*model.ValidationResult, error) {
	if err := g.checkInput(input); err != nil {
		return nil, err
	}
	staff, ok := g.staff[input.StaffID]
	if !ok {
		return nil, fmt.Errorf("staff %s not found", input.StaffID)
	}
	var room *Room
	if input.RoomID != "" {
		r, ok := g.rooms[input.RoomID]
		if !ok {
			return nil, fmt.Errorf("room %s not found", input.RoomID)
		}
		room = &r
	}

	result := model.NewValidationResult()
	day := model.DateOf(input.Date)
	start, end := g.rules.ShiftInterval(day, input.Shift)

	for _, a := range g.assignments {
		if a.StaffID == input.StaffID && a.SameDay(day) {
			result.AddError(fmt.Sprintf("staff %s already has an assignment on %s",
				staff.Name, day.Format("2006-01-02")))
			break
		}
	}

	if room != nil {
		if room.RequiredSkill != "" && !staff.HasSkill(room.RequiredSkill) {
			result.AddError(fmt.Sprintf("staff %s lacks skill %q required by room %s",
				staff.Name, room.RequiredSkill, room.Name))
		}
		if room.Specialized && staff.Role == model.RoleJunior && !input.Supervised {
			result.AddError(fmt.Sprintf("junior staff %s cannot work specialized room %s without supervision",
				staff.Name, room.Name))
		}
	}

	if g.rules.CategoryOf(input.Shift) == model.CategoryGuard {
		g.checkGuardRules(result, staff, day)
	}
	g.checkWeeklyHours(result, staff, start, end)
	g.checkConsecutiveDays(result, staff, day)

	return result, nil
}

// checkGuardRules enforces minimum inter-guard spacing and the monthly
// guard cap for guard-category shifts.
func (g *Gate) checkGuardRules(result *model.ValidationResult, staff model.StaffMember, day time.Time) {
	guardsThisMonth := 0
	for _, a := range g.assignments {
		if a.StaffID != staff.ID || g.rules.CategoryOf(a.Shift) != model.CategoryGuard {
			continue
		}
		otherDay := model.DateOf(a.End)
		spacing := day.Sub(otherDay).Hours() / 24
		if spacing < 0 {
			spacing = -spacing
		}
		if spacing > 0 && g.rules.MinDaysBetweenGuards > 0 && spacing < float64(g.rules.MinDaysBetweenGuards) {
			result.AddError(fmt.Sprintf("guard on %s is within %d days of guard ending %s",
				day.Format("2006-01-02"), g.rules.MinDaysBetweenGuards, otherDay.Format("2006-01-02")))
		}
		if a.Start.Year() == day.Year() && a.Start.Month() == day.Month() {
			guardsThisMonth++
		}
	}
	if guardsThisMonth+1 > g.limits.MonthlyGuardCap {
		result.AddError(fmt.Sprintf("monthly guard cap of %d reached for %s",
			g.limits.MonthlyGuardCap, day.Format("2006-01")))
	}
}

// checkWeeklyHours enforces the work-hour ceiling over the ISO week the new
// shift starts in.
func (g *Gate) checkWeeklyHours(result *model.ValidationResult, staff model.StaffMember, start, end time.Time) {
	year, week := start.ISOWeek()
	total := end.Sub(start).Hours()
	for _, a := range g.assignments {
		if a.StaffID != staff.ID {
			continue
		}
		if y, w := a.Start.ISOWeek(); y == year && w == week {
			total += a.Hours()
		}
	}
	if total > g.limits.WeeklyHourCap {
		result.AddError(fmt.Sprintf("weekly hours for %s would reach %.1f, cap is %.0f",
			staff.Name, total, g.limits.WeeklyHourCap))
	}
}

// checkConsecutiveDays enforces the rolling maximum-consecutive-working-days
// window, extending the run both backward and forward from the candidate day.
func (g *Gate) checkConsecutiveDays(result *model.ValidationResult, staff model.StaffMember, day time.Time) {
	worked := make(map[string]bool)
	for _, a := range g.assignments {
		if a.StaffID == staff.ID {
			worked[model.DateOf(a.Start).Format("2006-01-02")] = true
		}
	}

	run := 1 // the candidate day itself
	for d := day.AddDate(0, 0, -1); worked[d.Format("2006-01-02")]; d = d.AddDate(0, 0, -1) {
		run++
	}
	for d := day.AddDate(0, 0, 1); worked[d.Format("2006-01-02")]; d = d.AddDate(0, 0, 1) {
		run++
	}

	if run > g.limits.MaxConsecutiveWorkDays {
		result.AddError(fmt.Sprintf("assignment on %s would make %d consecutive working days, maximum is %d",
			day.Format("2006-01-02"), run, g.limits.MaxConsecutiveWorkDays))
	}
}
