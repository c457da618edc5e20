package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/medshift/rostergen/pkg/core/model"
)

// LoadStaff retrieves all staff for a site, with their leave history
// attached.
func (d *DB) LoadStaff(ctx context.Context, siteID string) ([]model.StaffMember, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, role, specialties, skills, experience_years
		FROM staff_member
		WHERE site_id = $1
		ORDER BY name, id
	`, siteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []model.StaffMember
	for rows.Next() {
		var s model.StaffMember
		var role string
		if err := rows.Scan(&s.ID, &s.Name, &role, &s.Specialties, &s.Skills, &s.Experience); err != nil {
			return nil, fmt.Errorf("failed to scan staff member: %w", err)
		}
		s.Role = model.Role(role)
		staff = append(staff, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}

	leaves, err := d.LoadLeaves(ctx, "", time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	byStaff := make(map[string][]model.Leave)
	for _, l := range leaves {
		byStaff[l.StaffID] = append(byStaff[l.StaffID], l)
	}
	for i := range staff {
		staff[i].Leaves = byStaff[staff[i].ID]
	}

	return staff, nil
}
