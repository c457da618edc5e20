package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medshift/rostergen/pkg/core/model"
)

func errorsContaining(result *model.ValidationResult, substr string) []string {
	var matched []string
	for _, e := range result.Errors {
		if strings.Contains(e, substr) {
			matched = append(matched, e)
		}
	}
	return matched
}

func TestValidate_CleanPlanPasses(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{
		{ID: "s1", Name: "Alice"},
		{ID: "s2", Name: "Bob"},
	}

	assignments, err := NewGenerator(staff, rules, monday, monday.AddDate(0, 0, 6), nil).GeneratePlanning()
	require.NoError(t, err)

	result := Validate(staff, assignments, rules)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_ReportsUncoveredShift(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{{ID: "s1", Name: "Alice"}}

	// Monday gets its morning but not its afternoon.
	assignments := []model.Assignment{assignmentOn("s1", model.ShiftMorning, monday, rules)}

	result := Validate(staff, assignments, rules)
	assert.False(t, result.Valid)
	uncovered := errorsContaining(result, "uncovered")
	require.Len(t, uncovered, 1)
	assert.Contains(t, uncovered[0], string(model.ShiftAfternoon))
	assert.Contains(t, uncovered[0], "2025-06-02")
}

func TestValidate_ReportsRestViolation(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{{ID: "s1", Name: "Alice"}}

	// Night ends Tuesday 08:00; the Tuesday afternoon leaves six hours of rest.
	assignments := []model.Assignment{
		assignmentOn("s1", model.ShiftNight, monday, rules),
		assignmentOn("s1", model.ShiftAfternoon, monday.AddDate(0, 0, 1), rules),
	}

	result := Validate(staff, assignments, rules)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, errorsContaining(result, "rest period violated for staff s1"))
}

func TestValidate_SameDayContinuationIsNotAViolation(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{{ID: "s1", Name: "Alice"}}

	assignments := []model.Assignment{
		assignmentOn("s1", model.ShiftMorning, monday, rules),
		assignmentOn("s1", model.ShiftAfternoon, monday, rules),
	}

	result := Validate(staff, assignments, rules)
	assert.Empty(t, errorsContaining(result, "rest period"))
}

func TestValidate_ReportsSpecialtyMismatch(t *testing.T) {
	rules := testRules()
	rules.RequiredSpecialties = map[model.ShiftType][]string{
		model.ShiftMorning: {"ANESTHESIA"},
	}
	staff := []model.StaffMember{{ID: "s1", Name: "Alice", Specialties: []string{"GENERAL"}}}

	assignments := []model.Assignment{assignmentOn("s1", model.ShiftMorning, monday, rules)}

	result := Validate(staff, assignments, rules)
	assert.False(t, result.Valid)
	mismatches := errorsContaining(result, "lacks required specialty")
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0], "Alice")
}

func TestValidate_ReportsUnknownStaff(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{{ID: "s1", Name: "Alice"}}

	assignments := []model.Assignment{assignmentOn("ghost", model.ShiftMorning, monday, rules)}

	result := Validate(staff, assignments, rules)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, errorsContaining(result, "unknown staff"))
}

func TestValidate_EquityFlagsSkewedDistribution(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{
		{ID: "s1", Name: "Alice"},
		{ID: "s2", Name: "Bob"},
		{ID: "s3", Name: "Carol"},
		{ID: "s4", Name: "Dave"},
	}

	// Alice carries the entire load across nine days.
	var assignments []model.Assignment
	for i := 0; i < 9; i++ {
		assignments = append(assignments, assignmentOn("s1", model.ShiftMorning, monday.AddDate(0, 0, i), rules))
	}

	result := Validate(staff, assignments, rules)
	flagged := errorsContaining(result, "deviates")
	require.Len(t, flagged, 1)
	assert.Contains(t, flagged[0], "Alice")
}

func TestValidate_EquitySkipsBalancedDistribution(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{
		{ID: "s1", Name: "Alice"},
		{ID: "s2", Name: "Bob"},
	}

	assignments := []model.Assignment{
		assignmentOn("s1", model.ShiftMorning, monday, rules),
		assignmentOn("s2", model.ShiftAfternoon, monday, rules),
	}

	result := Validate(staff, assignments, rules)
	assert.Empty(t, errorsContaining(result, "deviates"))
}

func TestValidate_IsIdempotent(t *testing.T) {
	rules := testRules()
	staff := []model.StaffMember{{ID: "s1", Name: "Alice"}}
	assignments := []model.Assignment{
		assignmentOn("s1", model.ShiftNight, monday, rules),
		assignmentOn("s1", model.ShiftAfternoon, monday.AddDate(0, 0, 1), rules),
	}

	first := Validate(staff, assignments, rules)
	second := Validate(staff, assignments, rules)
	assert.Equal(t, first, second)
}
