package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

// GetScheduleEntries retrieves the schedule cells between from and to inclusive
func (d *DB) GetScheduleEntries(ctx context.Context, from, to string) ([]db.ScheduleEntry, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT staff_id, shift_date, code
		FROM schedule_entry
		WHERE shift_date BETWEEN $1 AND $2
		ORDER BY shift_date, staff_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedule entries: %w", err)
	}
	defer rows.Close()

	var entries []db.ScheduleEntry
	for rows.Next() {
		var e db.ScheduleEntry
		var shiftDate time.Time
		if err := rows.Scan(&e.StaffID, &shiftDate, &e.Code); err != nil {
			return nil, fmt.Errorf("failed to scan schedule entry: %w", err)
		}
		e.ShiftDate = shiftDate.Format(model.DateFormat)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule entries: %w", err)
	}

	return entries, nil
}

// ReplaceScheduleEntries deletes the schedule between from and to inclusive and copies in entries
func (d *DB) ReplaceScheduleEntries(ctx context.Context, from, to string, entries []db.ScheduleEntry) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM schedule_entry WHERE shift_date BETWEEN $1 AND $2`, from, to); err != nil {
		return fmt.Errorf("failed to clear schedule entries: %w", err)
	}

	rows := make([][]any, 0, len(entries))
	for _, e := range entries {
		shiftDate, err := time.Parse(model.DateFormat, e.ShiftDate)
		if err != nil {
			return fmt.Errorf("invalid shift date %q for %s: %w", e.ShiftDate, e.StaffID, err)
		}
		rows = append(rows, []any{e.StaffID, shiftDate, e.Code})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"schedule_entry"},
		[]string{"staff_id", "shift_date", "code"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy schedule entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
