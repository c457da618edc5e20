package model

// SimulationResult is the persisted run payload. The JSON shape is consumed
// by downstream dashboards and must stay stable.
type SimulationResult struct {
	SimulatedPeriod   Period           `json:"simulatedPeriod"`
	StaffingCoverage  Coverage         `json:"staffingCoverage"`
	LeaveRequests     LeaveStats       `json:"leaveRequests"`
	ShiftDistribution []StaffShiftLoad `json:"shiftDistribution"`
	Conflicts         ConflictStats    `json:"conflicts"`
	IsPartialUpdate   bool             `json:"isPartialUpdate,omitempty"`
}

// Period is the simulated date range, dates formatted as 2006-01-02.
type Period struct {
	From      string `json:"from"`
	To        string `json:"to"`
	TotalDays int    `json:"totalDays"`
}

// Coverage summarizes required-vs-actual staffing over the period.
type Coverage struct {
	Overall float64       `json:"overall"`
	ByDay   []DayCoverage `json:"byDay"`
}

// DayCoverage is the staffing ratio for a single day.
type DayCoverage struct {
	Date     string  `json:"date"`
	Coverage float64 `json:"coverage"`
	Required int     `json:"required"`
	Actual   int     `json:"actual"`
}

// LeaveStats tallies leave requests inside the simulated period.
type LeaveStats struct {
	TotalRequested int     `json:"totalRequested"`
	Approved       int     `json:"approved"`
	Rejected       int     `json:"rejected"`
	ApprovalRate   float64 `json:"approvalRate"`
}

// StaffShiftLoad is the per-staff shift distribution.
type StaffShiftLoad struct {
	StaffName       string  `json:"staffName"`
	MorningShifts   int     `json:"morningShifts"`
	AfternoonShifts int     `json:"afternoonShifts"`
	NightShifts     int     `json:"nightShifts"`
	WeekendShifts   int     `json:"weekendShifts"`
	TotalHours      float64 `json:"totalHours"`
}

// ConflictStats tallies rule violations detected over the period.
type ConflictStats struct {
	Total      int            `json:"total"`
	ByPriority PriorityCounts `json:"byPriority"`
	Resolved   int            `json:"resolved"`
	Unresolved int            `json:"unresolved"`
}

// PriorityCounts buckets conflicts by severity.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}
