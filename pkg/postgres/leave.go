package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// LoadLeaves retrieves leave records, optionally filtered by staff member
// and date range. Zero values disable the corresponding filter.
func (d *DB) LoadLeaves(ctx context.Context, staffID string, from, to time.Time) ([]model.Leave, error) {
	query := `
		SELECT id, staff_id, start_date, end_date, leave_type, status
		FROM leave
		WHERE ($1 = '' OR staff_id = $1)
		  AND ($2::date IS NULL OR end_date >= $2)
		  AND ($3::date IS NULL OR start_date <= $3)
		ORDER BY start_date, id
	`
	var fromArg, toArg *time.Time
	if !from.IsZero() {
		fromArg = &from
	}
	if !to.IsZero() {
		toArg = &to
	}

	rows, err := d.pool.Query(ctx, query, staffID, fromArg, toArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var leaves []model.Leave
	for rows.Next() {
		var l model.Leave
		var status string
		if err := rows.Scan(&l.ID, &l.StaffID, &l.Start, &l.End, &l.Type, &status); err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		l.Status = model.LeaveStatus(status)
		leaves = append(leaves, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leaves: %w", err)
	}

	return leaves, nil
}
