package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/medshift/rostergen/pkg/core/model"
	"github.com/medshift/rostergen/pkg/db"
)

const uniqueViolation = "23505"

// SaveAssignments upserts a batch of assignments one item at a time. An
// individual item's uniqueness conflict is captured into the outcome's
// conflict list and processing continues; the batch as a whole still
// succeeds if the persistence calls themselves completed.
func (d *DB) SaveAssignments(ctx context.Context, assignments []model.Assignment) (db.SaveOutcome, error) {
	outcome := db.SaveOutcome{}

	for _, a := range assignments {
		var inserted bool
		err := d.pool.QueryRow(ctx, `
			INSERT INTO assignment (id, staff_id, shift_type, start_ts, end_ts, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (id) DO UPDATE
			SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
			RETURNING (xmax = 0)
		`, a.ID, a.StaffID, string(a.Shift), a.Start, a.End, string(a.Status), a.CreatedAt, a.UpdatedAt).Scan(&inserted)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				outcome.Conflicts = append(outcome.Conflicts,
					fmt.Errorf("assignment conflict for staff %s on %s: %w",
						a.StaffID, a.Start.Format("2006-01-02"), err))
				continue
			}
			return outcome, fmt.Errorf("failed to save assignment %s: %w", a.ID, err)
		}
		if inserted {
			outcome.Created++
		} else {
			outcome.Updated++
		}
	}

	return outcome, nil
}

// DeleteAssignments removes every assignment starting within [from, to]
// and returns the number deleted.
func (d *DB) DeleteAssignments(ctx context.Context, from, to time.Time) (int, error) {
	tag, err := d.pool.Exec(ctx, `
		DELETE FROM assignment
		WHERE start_ts >= $1 AND start_ts < $2
	`, model.DateOf(from), model.DateOf(to).AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("failed to delete assignments: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
