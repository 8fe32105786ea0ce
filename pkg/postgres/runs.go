package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

// InsertRun saves a run with its allocations, scores and advisories in one transaction
func (d *DB) InsertRun(ctx context.Context, detail db.RunDetail) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	run := detail.Run
	runID, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", run.ID, err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO overtime_run (id, year, month, picker, seed, slot_count, filled_count, validation_errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, runID, run.Year, run.Month, run.Picker, run.Seed, run.SlotCount, run.FilledCount, run.ValidationErrors)
	if err != nil {
		return fmt.Errorf("failed to insert overtime run: %w", err)
	}

	allocationRows := make([][]any, len(detail.Allocations))
	for i, a := range detail.Allocations {
		shiftDate, err := time.Parse(model.DateFormat, a.ShiftDate)
		if err != nil {
			return fmt.Errorf("invalid allocation date %q: %w", a.ShiftDate, err)
		}
		allocationID, err := uuid.Parse(a.ID)
		if err != nil {
			return fmt.Errorf("invalid allocation id %q: %w", a.ID, err)
		}
		allocationRows[i] = []any{allocationID, runID, a.Sequence, shiftDate, a.ShiftType, a.StaffID, a.ScoreBefore, a.ScoreAfter}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"overtime_allocation"},
		[]string{"id", "run_id", "sequence", "shift_date", "shift_type", "staff_id", "score_before", "score_after"},
		pgx.CopyFromRows(allocationRows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy overtime allocations: %w", err)
	}

	scoreRows := make([][]any, len(detail.Scores))
	for i, s := range detail.Scores {
		scoreRows[i] = []any{runID, s.StaffID, s.BaseScore, s.FinalScore}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"overtime_score"},
		[]string{"run_id", "staff_id", "base_score", "final_score"},
		pgx.CopyFromRows(scoreRows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy overtime scores: %w", err)
	}

	batch := &pgx.Batch{}
	for _, a := range detail.Advisories {
		rank, err := shiftRank(a.ShiftType)
		if err != nil {
			return fmt.Errorf("invalid advisory on %s: %w", a.ShiftDate, err)
		}
		batch.Queue(`
			INSERT INTO overtime_advisory (run_id, shift_date, shift_type, shift_rank)
			VALUES ($1, $2, $3, $4)
		`, runID, a.ShiftDate, a.ShiftType, rank)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert advisories: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetRuns retrieves every saved run, newest first
func (d *DB) GetRuns(ctx context.Context) ([]db.OvertimeRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, year, month, created_at, picker, seed, slot_count, filled_count, validation_errors
		FROM overtime_run
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime runs: %w", err)
	}
	defer rows.Close()

	var runs []db.OvertimeRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overtime runs: %w", err)
	}

	return runs, nil
}

// GetRun retrieves a saved run and everything recorded for it
func (d *DB) GetRun(ctx context.Context, runID string) (*db.RunDetail, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, fmt.Errorf("invalid run id %q: %w", runID, err)
	}

	row := d.pool.QueryRow(ctx, `
		SELECT id, year, month, created_at, picker, seed, slot_count, filled_count, validation_errors
		FROM overtime_run
		WHERE id = $1
	`, id)

	run, err := scanRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, err
	}

	detail := &db.RunDetail{Run: run}

	if detail.Allocations, err = d.getRunAllocations(ctx, id); err != nil {
		return nil, err
	}
	if detail.Scores, err = d.getRunScores(ctx, id); err != nil {
		return nil, err
	}
	if detail.Advisories, err = d.getRunAdvisories(ctx, id); err != nil {
		return nil, err
	}

	return detail, nil
}

func scanRun(row pgx.Row) (db.OvertimeRun, error) {
	var run db.OvertimeRun
	var createdAt time.Time
	err := row.Scan(&run.ID, &run.Year, &run.Month, &createdAt, &run.Picker, &run.Seed,
		&run.SlotCount, &run.FilledCount, &run.ValidationErrors)
	if errors.Is(err, pgx.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, fmt.Errorf("failed to scan overtime run: %w", err)
	}
	run.CreatedAt = createdAt.UTC().Format(time.RFC3339)
	return run, nil
}

func (d *DB) getRunAllocations(ctx context.Context, runID uuid.UUID) ([]db.OvertimeAllocation, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, run_id, sequence, shift_date, shift_type, staff_id, score_before, score_after
		FROM overtime_allocation
		WHERE run_id = $1
		ORDER BY sequence
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime allocations: %w", err)
	}

	allocations, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.OvertimeAllocation, error) {
		var a db.OvertimeAllocation
		var shiftDate time.Time
		err := row.Scan(&a.ID, &a.RunID, &a.Sequence, &shiftDate, &a.ShiftType, &a.StaffID, &a.ScoreBefore, &a.ScoreAfter)
		a.ShiftDate = shiftDate.Format(model.DateFormat)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan overtime allocations: %w", err)
	}

	return allocations, nil
}

func (d *DB) getRunScores(ctx context.Context, runID uuid.UUID) ([]db.ScoreRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id, staff_id, base_score, final_score
		FROM overtime_score
		WHERE run_id = $1
		ORDER BY staff_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overtime scores: %w", err)
	}

	scores, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.ScoreRecord, error) {
		var s db.ScoreRecord
		err := row.Scan(&s.RunID, &s.StaffID, &s.BaseScore, &s.FinalScore)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan overtime scores: %w", err)
	}

	return scores, nil
}

func (d *DB) getRunAdvisories(ctx context.Context, runID uuid.UUID) ([]db.Advisory, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT run_id, shift_date, shift_type
		FROM overtime_advisory
		WHERE run_id = $1
		ORDER BY shift_date, shift_rank
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query advisories: %w", err)
	}

	advisories, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (db.Advisory, error) {
		var a db.Advisory
		var shiftDate time.Time
		err := row.Scan(&a.RunID, &shiftDate, &a.ShiftType)
		a.ShiftDate = shiftDate.Format(model.DateFormat)
		return a, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan advisories: %w", err)
	}

	return advisories, nil
}

// shiftRank orders shift types by priority, Senior first
func shiftRank(shiftType string) (int16, error) {
	parsed, err := model.ParseShiftType(shiftType)
	if err != nil {
		return 0, err
	}
	return int16(parsed), nil
}
