package postgres

import (
	"context"
	"fmt"

	"github.com/jakechorley/ward-overtime/pkg/db"
)

// GetStaff retrieves every active staff member ordered by id
func (d *DB) GetStaff(ctx context.Context) ([]db.Staff, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name, role, active
		FROM staff
		WHERE active
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query staff: %w", err)
	}
	defer rows.Close()

	var staff []db.Staff
	for rows.Next() {
		var s db.Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Role, &s.Active); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		staff = append(staff, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}

	return staff, nil
}

// UpsertStaff inserts or updates staff members by id.
// Staff missing from the list are marked inactive rather than deleted, so saved runs keep their references.
func (d *DB) UpsertStaff(ctx context.Context, staff []db.Staff) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE staff SET active = FALSE`); err != nil {
		return fmt.Errorf("failed to deactivate staff: %w", err)
	}

	for _, s := range staff {
		_, err := tx.Exec(ctx, `
			INSERT INTO staff (id, name, role, active)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, role = EXCLUDED.role, active = EXCLUDED.active
		`, s.ID, s.Name, s.Role, s.Active)
		if err != nil {
			return fmt.Errorf("failed to upsert staff %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
