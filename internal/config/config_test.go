package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medshift/rostergen/pkg/core/model"
)

const validConfig = `
rules:
  weekdayShifts: [MORNING, AFTERNOON]
  weekendShifts: [WEEKEND_GUARD]
  shifts:
    - type: MORNING
      category: other
      start: "08:00"
      end: "14:00"
    - type: AFTERNOON
      category: other
      start: "14:00"
      end: "20:00"
    - type: WEEKEND_GUARD
      category: guard
      start: "08:00"
      end: "08:00"
      endsNextDay: true
    - type: OPERATING_BLOCK_AM
      category: operating_block
      start: "08:00"
      end: "12:00"
      requiredSpecialties: [ANESTHESIA]
  minRestHours: 12
  maxConsecutiveGuards: 5
  maxAssignmentDeviation: 1.5
  maxRoomsPerSupervisor: 2
  minDaysBetweenGuards: 2
  holidayRules:
    - "FREQ=YEARLY;BYMONTH=1;BYMONTHDAY=1"
simulation:
  workers: 2
  chunkDays: 7
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rostergen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromPath(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"MORNING", "AFTERNOON"}, cfg.Rules.WeekdayShifts)
	assert.Equal(t, 12, cfg.Rules.MinRestHours)
	assert.Equal(t, 2, cfg.Simulation.Workers)
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	_, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestValidate_RejectsUndefinedShiftReference(t *testing.T) {
	broken := `
rules:
  weekdayShifts: [MORNING, NIGHT]
  weekendShifts: [MORNING]
  shifts:
    - type: MORNING
      category: other
      start: "08:00"
      end: "14:00"
`
	_, err := LoadFromPath(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"NIGHT"`)
}

func TestValidate_RejectsBadClock(t *testing.T) {
	broken := `
rules:
  weekdayShifts: [MORNING]
  weekendShifts: [MORNING]
  shifts:
    - type: MORNING
      category: other
      start: "8am"
      end: "14:00"
`
	_, err := LoadFromPath(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start time")
}

func TestValidate_RejectsBadCategory(t *testing.T) {
	broken := `
rules:
  weekdayShifts: [MORNING]
  weekendShifts: [MORNING]
  shifts:
    - type: MORNING
      category: nonsense
      start: "08:00"
      end: "14:00"
`
	_, err := LoadFromPath(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestValidate_RejectsBadHolidayRule(t *testing.T) {
	broken := `
rules:
  weekdayShifts: [MORNING]
  weekendShifts: [MORNING]
  shifts:
    - type: MORNING
      category: other
      start: "08:00"
      end: "14:00"
  holidayRules:
    - "NOT A RULE"
`
	_, err := LoadFromPath(writeConfig(t, broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid rrule")
}

func TestBuildRules(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, validConfig))
	require.NoError(t, err)

	rules, err := cfg.BuildRules()
	require.NoError(t, err)

	assert.Equal(t, []model.ShiftType{model.ShiftMorning, model.ShiftAfternoon}, rules.WeekdayShifts)
	assert.Equal(t, model.CategoryGuard, rules.CategoryOf(model.ShiftWeekendGuard))
	assert.Equal(t, model.CategoryOperatingBlock, rules.CategoryOf(model.ShiftBlockAM))
	assert.Equal(t, []string{"ANESTHESIA"}, rules.RequiredSpecialties[model.ShiftBlockAM])

	window := rules.ShiftWindows[model.ShiftWeekendGuard]
	assert.Equal(t, 8, window.StartHour)
	assert.True(t, window.EndsNextDay)

	// Guard chains longer than two days are not supported; the configured 5
	// is clamped down.
	assert.Equal(t, 2, rules.MaxConsecutiveGuards)
}

func TestHolidays_ExpandsRecurrenceRules(t *testing.T) {
	cfg, err := LoadFromPath(writeConfig(t, validConfig))
	require.NoError(t, err)

	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2031, 12, 31, 0, 0, 0, 0, time.UTC)
	holidays, err := cfg.Holidays(from, to)
	require.NoError(t, err)

	require.NotEmpty(t, holidays)
	for _, h := range holidays {
		assert.Equal(t, time.January, h.Month())
		assert.Equal(t, 1, h.Day())
	}
}
