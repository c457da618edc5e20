package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/medshift/rostergen/pkg/core/model"
	"github.com/medshift/rostergen/pkg/db"
)

type fakeStore struct {
	staff    []model.StaffMember
	staffErr error

	savedAssignments []model.Assignment
	deleted          int
}

func (f *fakeStore) LoadStaff(_ context.Context, _ string) ([]model.StaffMember, error) {
	return f.staff, f.staffErr
}

func (f *fakeStore) LoadLeaves(_ context.Context, _ string, _, _ time.Time) ([]model.Leave, error) {
	return nil, nil
}

func (f *fakeStore) SaveAssignments(_ context.Context, assignments []model.Assignment) (db.SaveOutcome, error) {
	f.savedAssignments = assignments
	return db.SaveOutcome{Created: len(assignments)}, nil
}

func (f *fakeStore) DeleteAssignments(_ context.Context, _, _ time.Time) (int, error) {
	return f.deleted, nil
}

func (f *fakeStore) LoadPriorSimulationResult(_ context.Context, _ string) (*model.SimulationRun, error) {
	return nil, nil
}

func (f *fakeStore) SaveSimulationResult(_ context.Context, _ *model.SimulationRun) error {
	return nil
}

func serviceRules() model.RulesConfiguration {
	return model.RulesConfiguration{
		WeekdayShifts: []model.ShiftType{model.ShiftMorning, model.ShiftAfternoon},
		WeekendShifts: []model.ShiftType{model.ShiftWeekendGuard},
		ShiftWindows: map[model.ShiftType]model.ShiftWindow{
			model.ShiftMorning:      {StartHour: 8, EndHour: 14},
			model.ShiftAfternoon:    {StartHour: 14, EndHour: 20},
			model.ShiftWeekendGuard: {StartHour: 8, EndHour: 8, EndsNextDay: true},
		},
		Categories: map[model.ShiftType]model.Category{
			model.ShiftWeekendGuard: model.CategoryGuard,
		},
		MinRestHours: 12,
	}
}

func TestGeneratePlanning_PersistsValidPlan(t *testing.T) {
	store := &fakeStore{staff: []model.StaffMember{
		{ID: "s1", Name: "Alice", Role: model.RoleSenior},
		{ID: "s2", Name: "Bob", Role: model.RoleJunior},
	}}
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), "site-1",
		serviceRules(), start, start.AddDate(0, 0, 6), false)
	require.NoError(t, err)

	assert.Len(t, result.Assignments, 12)
	assert.True(t, result.Validation.Valid)
	assert.Equal(t, 12, result.Created)
	assert.Len(t, store.savedAssignments, 12)
}

func TestGeneratePlanning_DryRunSkipsPersistence(t *testing.T) {
	store := &fakeStore{staff: []model.StaffMember{
		{ID: "s1", Name: "Alice"},
		{ID: "s2", Name: "Bob"},
	}}
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	result, err := GeneratePlanning(context.Background(), store, zap.NewNop(), "site-1",
		serviceRules(), start, start.AddDate(0, 0, 2), true)
	require.NoError(t, err)

	assert.NotEmpty(t, result.Assignments)
	assert.Zero(t, result.Created)
	assert.Nil(t, store.savedAssignments)
}

func TestGeneratePlanning_EmptyRoster(t *testing.T) {
	store := &fakeStore{}
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	_, err := GeneratePlanning(context.Background(), store, zap.NewNop(), "site-1",
		serviceRules(), start, start, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no staff found")
}

func TestGeneratePlanning_LoadFailureIsFatal(t *testing.T) {
	store := &fakeStore{staffErr: errors.New("connection refused")}
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	_, err := GeneratePlanning(context.Background(), store, zap.NewNop(), "site-1",
		serviceRules(), start, start, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load staff")
}
