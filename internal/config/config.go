package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/teambition/rrule-go"
	"gopkg.in/yaml.v3"

	"github.com/medshift/rostergen/pkg/core/model"
)

// ShiftConfig defines one shift type: its category, time window and
// specialty requirements.
type ShiftConfig struct {
	Type                string   `yaml:"type" validate:"required"`
	Category            string   `yaml:"category" validate:"required,oneof=guard on_call consultation operating_block other"`
	Start               string   `yaml:"start" validate:"required"`
	End                 string   `yaml:"end" validate:"required"`
	EndsNextDay         bool     `yaml:"endsNextDay,omitempty"`
	RequiredSpecialties []string `yaml:"requiredSpecialties,omitempty"`
}

// RulesFile is the YAML shape of the scheduling rule catalog.
type RulesFile struct {
	WeekdayShifts          []string      `yaml:"weekdayShifts" validate:"required,min=1"`
	WeekendShifts          []string      `yaml:"weekendShifts" validate:"required,min=1"`
	Shifts                 []ShiftConfig `yaml:"shifts" validate:"required,min=1,dive"`
	MinRestHours           int           `yaml:"minRestHours" validate:"min=0"`
	MaxConsecutiveGuards   int           `yaml:"maxConsecutiveGuards,omitempty"`
	MaxAssignmentDeviation float64       `yaml:"maxAssignmentDeviation,omitempty"`
	MaxRoomsPerSupervisor  int           `yaml:"maxRoomsPerSupervisor,omitempty"`
	ExceptionalMaxRooms    int           `yaml:"exceptionalMaxRooms,omitempty"`
	MinDaysBetweenGuards   int           `yaml:"minDaysBetweenGuards,omitempty"`
	HolidayRules           []string      `yaml:"holidayRules,omitempty"`
}

// SimulationConfig bounds the simulation orchestrator.
type SimulationConfig struct {
	Workers              int `yaml:"workers,omitempty" validate:"omitempty,min=1"`
	ChunkDays            int `yaml:"chunkDays,omitempty" validate:"omitempty,min=1"`
	WorkerTimeoutSeconds int `yaml:"workerTimeoutSeconds,omitempty" validate:"omitempty,min=1"`
	CacheTTLMinutes      int `yaml:"cacheTTLMinutes,omitempty" validate:"omitempty,min=1"`
}

// Config represents the application configuration
type Config struct {
	Rules      RulesFile        `yaml:"rules"`
	Simulation SimulationConfig `yaml:"simulation,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

const configFileName = "rostergen.yaml"

// LoadWithEnv loads the configuration for an environment, preferring
// "<env>_rostergen.yaml" and falling back to the unprefixed file.
func LoadWithEnv(env string) (*Config, error) {
	if env != "" {
		if path, err := findConfigFile(env + "_" + configFileName); err == nil {
			return LoadFromPath(path)
		}
	}
	path, err := findConfigFile(configFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}
	return LoadFromPath(path)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct, the shift references and the
// holiday rrule syntax.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	defined := make(map[string]bool, len(cfg.Rules.Shifts))
	for i, shift := range cfg.Rules.Shifts {
		if _, err := parseClock(shift.Start); err != nil {
			return fmt.Errorf("invalid start time in shifts[%d]: %w", i, err)
		}
		if _, err := parseClock(shift.End); err != nil {
			return fmt.Errorf("invalid end time in shifts[%d]: %w", i, err)
		}
		defined[shift.Type] = true
	}
	for _, name := range append(append([]string{}, cfg.Rules.WeekdayShifts...), cfg.Rules.WeekendShifts...) {
		if !defined[name] {
			return fmt.Errorf("shift %q referenced in weekday/weekend list but not defined", name)
		}
	}

	for i, rule := range cfg.Rules.HolidayRules {
		if _, err := rrule.StrToRRule(rule); err != nil {
			return fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
	}

	return nil
}

// BuildRules converts the file representation into the engine's immutable
// rule bundle, resolving categories once so the evaluators never inspect
// type names.
func (c *Config) BuildRules() (model.RulesConfiguration, error) {
	rules := model.RulesConfiguration{
		ShiftWindows:          make(map[model.ShiftType]model.ShiftWindow, len(c.Rules.Shifts)),
		RequiredSpecialties:   make(map[model.ShiftType][]string, len(c.Rules.Shifts)),
		Categories:            make(map[model.ShiftType]model.Category, len(c.Rules.Shifts)),
		MinRestHours:          c.Rules.MinRestHours,
		MaxConsecutiveGuards:  c.Rules.MaxConsecutiveGuards,
		MaxDeviation:          c.Rules.MaxAssignmentDeviation,
		MaxRoomsPerSupervisor: c.Rules.MaxRoomsPerSupervisor,
		ExceptionalMaxRooms:   c.Rules.ExceptionalMaxRooms,
		MinDaysBetweenGuards:  c.Rules.MinDaysBetweenGuards,
	}

	for _, shift := range c.Rules.Shifts {
		shiftType := model.ShiftType(shift.Type)
		start, err := parseClock(shift.Start)
		if err != nil {
			return model.RulesConfiguration{}, err
		}
		end, err := parseClock(shift.End)
		if err != nil {
			return model.RulesConfiguration{}, err
		}
		rules.ShiftWindows[shiftType] = model.ShiftWindow{
			StartHour:   start.hour,
			StartMinute: start.minute,
			EndHour:     end.hour,
			EndMinute:   end.minute,
			EndsNextDay: shift.EndsNextDay,
		}
		if len(shift.RequiredSpecialties) > 0 {
			rules.RequiredSpecialties[shiftType] = shift.RequiredSpecialties
		}
		rules.Categories[shiftType] = parseCategory(shift.Category)
	}

	for _, name := range c.Rules.WeekdayShifts {
		rules.WeekdayShifts = append(rules.WeekdayShifts, model.ShiftType(name))
	}
	for _, name := range c.Rules.WeekendShifts {
		rules.WeekendShifts = append(rules.WeekendShifts, model.ShiftType(name))
	}

	return rules.Normalized(), nil
}

// Holidays expands the configured holiday rrules to concrete dates within
// [from, to].
func (c *Config) Holidays(from, to time.Time) ([]time.Time, error) {
	var holidays []time.Time
	for i, rule := range c.Rules.HolidayRules {
		r, err := rrule.StrToRRule(rule)
		if err != nil {
			return nil, fmt.Errorf("invalid rrule in holidayRules[%d]: %w", i, err)
		}
		holidays = append(holidays, r.Between(model.DateOf(from), model.DateOf(to), true)...)
	}
	return holidays, nil
}

type clock struct {
	hour   int
	minute int
}

func parseClock(s string) (clock, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return clock{}, fmt.Errorf("time %q must be HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return clock{}, fmt.Errorf("time %q has invalid hour", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return clock{}, fmt.Errorf("time %q has invalid minute", s)
	}
	return clock{hour: hour, minute: minute}, nil
}

func parseCategory(s string) model.Category {
	switch s {
	case "guard":
		return model.CategoryGuard
	case "on_call":
		return model.CategoryOnCall
	case "consultation":
		return model.CategoryConsultation
	case "operating_block":
		return model.CategoryOperatingBlock
	default:
		return model.CategoryOther
	}
}

// findConfigFile searches for the named file in the current directory and
// the user's home directory.
func findConfigFile(name string) (string, error) {
	if _, err := os.Stat(name); err == nil {
		return name, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, name)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file %s not found in current directory or home directory", name)
}
