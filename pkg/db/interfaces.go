package db

import "context"

// StaffStore defines the interface for staff database operations
type StaffStore interface {
	GetStaff(ctx context.Context) ([]Staff, error)
	UpsertStaff(ctx context.Context, staff []Staff) error
}

// ScheduleStore defines the interface for monthly schedule operations.
// Dates are inclusive and formatted as model.DateFormat.
type ScheduleStore interface {
	GetScheduleEntries(ctx context.Context, from, to string) ([]ScheduleEntry, error)
	ReplaceScheduleEntries(ctx context.Context, from, to string, entries []ScheduleEntry) error
}

// RunStore defines the interface for saved overtime runs
type RunStore interface {
	InsertRun(ctx context.Context, detail RunDetail) error
	GetRuns(ctx context.Context) ([]OvertimeRun, error)
	GetRun(ctx context.Context, runID string) (*RunDetail, error)
}

// Database defines the interface for all database operations.
// postgres.DB implements this interface.
type Database interface {
	StaffStore
	ScheduleStore
	RunStore
}
