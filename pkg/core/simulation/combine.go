package simulation

import (
	"sort"

	"github.com/medshift/rostergen/pkg/core/model"
)

// chunkResult pairs a computed chunk payload with its position in the range.
type chunkResult struct {
	index  int
	days   int
	result *model.SimulationResult
}

// combineChunks merges chunk payloads into one result, deterministically and
// sequentially:
//   - overall coverage is the chunk-length weighted average
//   - leave and conflict tallies are summed
//   - per-staff distributions are summed by staff name
//   - period bounds come from the first and last chunk
func combineChunks(chunks []chunkResult) *model.SimulationResult {
	if len(chunks) == 0 {
		return &model.SimulationResult{}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].index < chunks[j].index })

	first := chunks[0].result
	last := chunks[len(chunks)-1].result

	combined := &model.SimulationResult{
		SimulatedPeriod: model.Period{
			From: first.SimulatedPeriod.From,
			To:   last.SimulatedPeriod.To,
		},
	}

	var weightedCoverage float64
	totalDays := 0
	distribution := make(map[string]*model.StaffShiftLoad)

	for _, chunk := range chunks {
		r := chunk.result
		weightedCoverage += r.StaffingCoverage.Overall * float64(chunk.days)
		totalDays += chunk.days

		combined.StaffingCoverage.ByDay = append(combined.StaffingCoverage.ByDay, r.StaffingCoverage.ByDay...)

		combined.LeaveRequests.TotalRequested += r.LeaveRequests.TotalRequested
		combined.LeaveRequests.Approved += r.LeaveRequests.Approved
		combined.LeaveRequests.Rejected += r.LeaveRequests.Rejected

		combined.Conflicts.Total += r.Conflicts.Total
		combined.Conflicts.ByPriority.High += r.Conflicts.ByPriority.High
		combined.Conflicts.ByPriority.Medium += r.Conflicts.ByPriority.Medium
		combined.Conflicts.ByPriority.Low += r.Conflicts.ByPriority.Low
		combined.Conflicts.Resolved += r.Conflicts.Resolved
		combined.Conflicts.Unresolved += r.Conflicts.Unresolved

		for _, load := range r.ShiftDistribution {
			merged := distribution[load.StaffName]
			if merged == nil {
				merged = &model.StaffShiftLoad{StaffName: load.StaffName}
				distribution[load.StaffName] = merged
			}
			merged.MorningShifts += load.MorningShifts
			merged.AfternoonShifts += load.AfternoonShifts
			merged.NightShifts += load.NightShifts
			merged.WeekendShifts += load.WeekendShifts
			merged.TotalHours += load.TotalHours
		}
	}

	combined.SimulatedPeriod.TotalDays = totalDays
	if totalDays > 0 {
		combined.StaffingCoverage.Overall = weightedCoverage / float64(totalDays)
	}
	if combined.LeaveRequests.TotalRequested > 0 {
		combined.LeaveRequests.ApprovalRate = float64(combined.LeaveRequests.Approved) /
			float64(combined.LeaveRequests.TotalRequested) * 100
	}

	for _, load := range distribution {
		combined.ShiftDistribution = append(combined.ShiftDistribution, *load)
	}
	sort.Slice(combined.ShiftDistribution, func(i, j int) bool {
		return combined.ShiftDistribution[i].StaffName < combined.ShiftDistribution[j].StaffName
	})

	return combined
}
