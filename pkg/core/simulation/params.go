package simulation

import (
	"fmt"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// Strategy selects the execution path for a simulation run.
type Strategy string

const (
	// StrategyDefault computes from scratch behind the cache.
	StrategyDefault Strategy = "default"
	// StrategyCached only serves cache hits and never computes.
	StrategyCached Strategy = "cached"
	// StrategyParallelChunked splits long ranges into weekly chunks run on
	// a bounded worker pool, then combines deterministically.
	StrategyParallelChunked Strategy = "parallel"
	// StrategyIncremental reuses the most recent completed result for the
	// scenario as a base and applies a bounded recomputation.
	StrategyIncremental Strategy = "incremental"
)

// ParseStrategy maps a user-supplied name to a Strategy, defaulting to
// StrategyDefault for the empty string.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case "":
		return StrategyDefault, nil
	case StrategyDefault, StrategyCached, StrategyParallelChunked, StrategyIncremental:
		return Strategy(name), nil
	default:
		return "", fmt.Errorf("unknown simulation strategy %q", name)
	}
}

// Params is the full input of one simulation: scenario identity, date range,
// staff roster, rules and the leave requests to tally. Each chunk worker
// receives its own shallow copy; the slices are treated as immutable.
type Params struct {
	ScenarioID string                   `json:"scenarioId"`
	UserID     string                   `json:"userId"`
	Start      time.Time                `json:"start"`
	End        time.Time                `json:"end"`
	Staff      []model.StaffMember      `json:"staff"`
	Leaves     []model.Leave            `json:"leaves"`
	Rules      model.RulesConfiguration `json:"rules"`
}

// SpanDays returns the inclusive length of the simulated range in days.
func (p Params) SpanDays() int {
	return int(model.DateOf(p.End).Sub(model.DateOf(p.Start)).Hours()/24) + 1
}

// withRange returns a copy of the params narrowed to [start, end].
func (p Params) withRange(start, end time.Time) Params {
	out := p
	out.Start = start
	out.End = end
	return out
}
