package model

import "time"

// Role classifies a staff member's seniority tier
type Role string

const (
	RoleSenior Role = "SENIOR"
	RoleJunior Role = "JUNIOR"
)

func (r Role) IsValid() bool {
	return r == RoleSenior || r == RoleJunior
}

// LeaveStatus is the lifecycle state of a leave request
type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

// AssignmentStatus is the lifecycle state of an assignment
type AssignmentStatus string

const (
	AssignmentPending  AssignmentStatus = "PENDING"
	AssignmentApproved AssignmentStatus = "APPROVED"
	AssignmentRejected AssignmentStatus = "REJECTED"
)

// RunStatus is the lifecycle state of a simulation run
type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

// Leave represents a leave request for a staff member.
// Start and End are inclusive calendar dates (time-of-day is ignored).
type Leave struct {
	ID      string
	StaffID string
	Start   time.Time
	End     time.Time
	Type    string
	Status  LeaveStatus
}

// Covers reports whether the leave interval contains the given calendar day.
func (l Leave) Covers(day time.Time) bool {
	d := DateOf(day)
	return !d.Before(DateOf(l.Start)) && !d.After(DateOf(l.End))
}

// Days returns the inclusive length of the leave in calendar days.
func (l Leave) Days() int {
	return int(DateOf(l.End).Sub(DateOf(l.Start)).Hours()/24) + 1
}

// StaffMember is an immutable input to a planning run
type StaffMember struct {
	ID          string
	Name        string
	Role        Role
	Specialties []string
	Skills      []string
	Experience  int // years
	Leaves      []Leave
}

// HasSkill reports whether the staff member holds the given skill.
// Skills are an explicit competency set, distinct from specialties.
func (s StaffMember) HasSkill(skill string) bool {
	for _, have := range s.Skills {
		if have == skill {
			return true
		}
	}
	return false
}

// Assignment is a concrete shift allocated to a staff member.
// Assignments are produced by the generator or by pre-validated manual
// insertion and are never mutated except for status transitions.
type Assignment struct {
	ID        string
	StaffID   string
	Shift     ShiftType
	Start     time.Time
	End       time.Time
	Status    AssignmentStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SameDay reports whether the assignment starts on the given calendar day.
func (a Assignment) SameDay(day time.Time) bool {
	return DateOf(a.Start).Equal(DateOf(day))
}

// Hours returns the assignment duration in hours.
func (a Assignment) Hours() float64 {
	return a.End.Sub(a.Start).Hours()
}

// ValidationResult accumulates rule violations. Errors are collected, not
// short-circuited; Valid is true iff no violation was recorded.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// NewValidationResult returns a valid, empty result.
func NewValidationResult() *ValidationResult {
	return &ValidationResult{Valid: true, Errors: []string{}}
}

// AddError records a violation and marks the result invalid.
func (v *ValidationResult) AddError(msg string) {
	v.Valid = false
	v.Errors = append(v.Errors, msg)
}

// Merge folds another result into this one.
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for _, e := range other.Errors {
		v.AddError(e)
	}
}

// SimulationRun tracks one simulation execution end to end
type SimulationRun struct {
	ID          string
	ScenarioID  string
	Start       time.Time
	End         time.Time
	Status      RunStatus
	Result      *SimulationResult
	ExecutionMs int64
	Error       string
}

// DateOf truncates a timestamp to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameCalendarDay reports whether two timestamps fall on the same calendar day.
func SameCalendarDay(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
