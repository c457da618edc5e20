// Package gate pre-validates individual mutations (leave requests, manual
// assignment insertions, planning generation requests) before they touch
// persisted state. It is independent of the generator and sits at the API
// boundary.
package gate

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/medshift/rostergen/pkg/core/model"
)

// Room is an operating or consultation room an assignment can target.
type Room struct {
	ID            string
	Name          string
	RequiredSkill string
	Specialized   bool
}

// LeaveQuota is a staff member's yearly leave allowance record. A missing
// quota record is a hard error, not a violation.
type LeaveQuota struct {
	StaffID       string
	YearlyCapDays int
}

// Limits bundles the business-rule thresholds. Zero values are replaced by
// the defaults below.
type Limits struct {
	MaxLeaveDays            int     // max consecutive days per request
	YearlyLeaveCapDays      int     // cumulative approved days per calendar year
	LongLeaveDays           int     // a leave longer than this is a "long" leave
	LongLeaveSeparationDays int     // min separation between long leaves
	WeeklyHourCap           float64 // max worked hours per ISO week
	MaxConsecutiveWorkDays  int     // rolling window, both directions
	MonthlyGuardCap         int     // max guard shifts per calendar month
	MaxImmediateWindowDays  int     // generation span for immediate runs
	MaxPlanningWindowMonths int     // generation span for broader scheduling
	MaxReportedErrors       int     // presentation cap on generation errors
}

// DefaultLimits returns the standard thresholds.
func DefaultLimits() Limits {
	return Limits{
		MaxLeaveDays:            30,
		YearlyLeaveCapDays:      45,
		LongLeaveDays:           14,
		LongLeaveSeparationDays: 90,
		WeeklyHourCap:           48,
		MaxConsecutiveWorkDays:  6,
		MonthlyGuardCap:         4,
		MaxImmediateWindowDays:  31,
		MaxPlanningWindowMonths: 12,
		MaxReportedErrors:       10,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.MaxLeaveDays <= 0 {
		l.MaxLeaveDays = d.MaxLeaveDays
	}
	if l.YearlyLeaveCapDays <= 0 {
		l.YearlyLeaveCapDays = d.YearlyLeaveCapDays
	}
	if l.LongLeaveDays <= 0 {
		l.LongLeaveDays = d.LongLeaveDays
	}
	if l.LongLeaveSeparationDays <= 0 {
		l.LongLeaveSeparationDays = d.LongLeaveSeparationDays
	}
	if l.WeeklyHourCap <= 0 {
		l.WeeklyHourCap = d.WeeklyHourCap
	}
	if l.MaxConsecutiveWorkDays <= 0 {
		l.MaxConsecutiveWorkDays = d.MaxConsecutiveWorkDays
	}
	if l.MonthlyGuardCap <= 0 {
		l.MonthlyGuardCap = d.MonthlyGuardCap
	}
	if l.MaxImmediateWindowDays <= 0 {
		l.MaxImmediateWindowDays = d.MaxImmediateWindowDays
	}
	if l.MaxPlanningWindowMonths <= 0 {
		l.MaxPlanningWindowMonths = d.MaxPlanningWindowMonths
	}
	if l.MaxReportedErrors <= 0 {
		l.MaxReportedErrors = d.MaxReportedErrors
	}
	return l
}

// Gate evaluates business rules against a snapshot of persisted state.
// It never mutates anything; callers decide whether violations block.
type Gate struct {
	staff       map[string]model.StaffMember
	rooms       map[string]Room
	leaves      []model.Leave
	assignments []model.Assignment
	quotas      map[string]LeaveQuota
	rules       model.RulesConfiguration
	holidays    map[string]bool
	limits      Limits
	validate    *validator.Validate

	// Now is the clock used for "start in the past" checks; overridable in
	// tests.
	Now func() time.Time
}

// Config carries the state snapshot a Gate evaluates against.
type Config struct {
	Staff       []model.StaffMember
	Rooms       []Room
	Leaves      []model.Leave
	Assignments []model.Assignment
	Quotas      []LeaveQuota
	Rules       model.RulesConfiguration
	Holidays    []time.Time
	Limits      Limits
}

// New creates a gate over the given state snapshot.
func New(cfg Config) *Gate {
	g := &Gate{
		staff:       make(map[string]model.StaffMember, len(cfg.Staff)),
		rooms:       make(map[string]Room, len(cfg.Rooms)),
		leaves:      cfg.Leaves,
		assignments: cfg.Assignments,
		quotas:      make(map[string]LeaveQuota, len(cfg.Quotas)),
		rules:       cfg.Rules.Normalized(),
		holidays:    make(map[string]bool, len(cfg.Holidays)),
		limits:      cfg.Limits.withDefaults(),
		validate:    validator.New(),
		Now:         time.Now,
	}
	for _, s := range cfg.Staff {
		g.staff[s.ID] = s
	}
	for _, r := range cfg.Rooms {
		g.rooms[r.ID] = r
	}
	for _, q := range cfg.Quotas {
		g.quotas[q.StaffID] = q
	}
	for _, h := range cfg.Holidays {
		g.holidays[model.DateOf(h).Format("2006-01-02")] = true
	}
	return g
}

func (g *Gate) isHoliday(day time.Time) bool {
	return g.holidays[model.DateOf(day).Format("2006-01-02")]
}

func (g *Gate) checkInput(input any) error {
	if err := g.validate.Struct(input); err != nil {
		return fmt.Errorf("invalid input: %w", err)
	}
	return nil
}
