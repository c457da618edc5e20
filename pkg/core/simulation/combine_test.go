package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medshift/rostergen/pkg/core/model"
)

func TestCombineChunks_WeightedCoverage(t *testing.T) {
	chunks := []chunkResult{
		{index: 0, days: 7, result: &model.SimulationResult{
			SimulatedPeriod:  model.Period{From: "2025-06-02", To: "2025-06-08", TotalDays: 7},
			StaffingCoverage: model.Coverage{Overall: 90},
		}},
		{index: 1, days: 3, result: &model.SimulationResult{
			SimulatedPeriod:  model.Period{From: "2025-06-09", To: "2025-06-11", TotalDays: 3},
			StaffingCoverage: model.Coverage{Overall: 80},
		}},
	}

	combined := combineChunks(chunks)

	// (90*7 + 80*3) / 10
	assert.InDelta(t, 87.0, combined.StaffingCoverage.Overall, 0.001)
	assert.Equal(t, 10, combined.SimulatedPeriod.TotalDays)
	assert.Equal(t, "2025-06-02", combined.SimulatedPeriod.From)
	assert.Equal(t, "2025-06-11", combined.SimulatedPeriod.To)
}

func TestCombineChunks_OrderIndependent(t *testing.T) {
	second := &model.SimulationResult{
		SimulatedPeriod: model.Period{From: "2025-06-09", To: "2025-06-15", TotalDays: 7},
	}
	first := &model.SimulationResult{
		SimulatedPeriod: model.Period{From: "2025-06-02", To: "2025-06-08", TotalDays: 7},
	}

	// Workers finish in arbitrary order; the combination must not care.
	combined := combineChunks([]chunkResult{
		{index: 1, days: 7, result: second},
		{index: 0, days: 7, result: first},
	})

	assert.Equal(t, "2025-06-02", combined.SimulatedPeriod.From)
	assert.Equal(t, "2025-06-15", combined.SimulatedPeriod.To)
}

func TestCombineChunks_SumsTalliesAndMergesDistribution(t *testing.T) {
	chunks := []chunkResult{
		{index: 0, days: 7, result: &model.SimulationResult{
			LeaveRequests: model.LeaveStats{TotalRequested: 3, Approved: 2, Rejected: 1},
			Conflicts:     model.ConflictStats{Total: 2, ByPriority: model.PriorityCounts{High: 1, Low: 1}, Unresolved: 2},
			ShiftDistribution: []model.StaffShiftLoad{
				{StaffName: "Alice", MorningShifts: 3, TotalHours: 18},
				{StaffName: "Bob", NightShifts: 2, TotalHours: 24},
			},
		}},
		{index: 1, days: 7, result: &model.SimulationResult{
			LeaveRequests: model.LeaveStats{TotalRequested: 1, Approved: 1},
			Conflicts:     model.ConflictStats{Total: 1, ByPriority: model.PriorityCounts{Medium: 1}, Unresolved: 1},
			ShiftDistribution: []model.StaffShiftLoad{
				{StaffName: "Alice", AfternoonShifts: 2, TotalHours: 12},
			},
		}},
	}

	combined := combineChunks(chunks)

	assert.Equal(t, 4, combined.LeaveRequests.TotalRequested)
	assert.Equal(t, 3, combined.LeaveRequests.Approved)
	assert.InDelta(t, 75.0, combined.LeaveRequests.ApprovalRate, 0.001)

	assert.Equal(t, 3, combined.Conflicts.Total)
	assert.Equal(t, 1, combined.Conflicts.ByPriority.High)
	assert.Equal(t, 1, combined.Conflicts.ByPriority.Medium)
	assert.Equal(t, 3, combined.Conflicts.Unresolved)

	require.Len(t, combined.ShiftDistribution, 2)
	alice := combined.ShiftDistribution[0]
	assert.Equal(t, "Alice", alice.StaffName)
	assert.Equal(t, 3, alice.MorningShifts)
	assert.Equal(t, 2, alice.AfternoonShifts)
	assert.InDelta(t, 30.0, alice.TotalHours, 0.001)
	assert.Equal(t, "Bob", combined.ShiftDistribution[1].StaffName)
}

func TestCombineChunks_Empty(t *testing.T) {
	combined := combineChunks(nil)
	require.NotNil(t, combined)
	assert.Zero(t, combined.SimulatedPeriod.TotalDays)
}
