package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/pkg/db"
)

// RosterStore defines the database operations needed to store the roster
type RosterStore interface {
	UpsertStaff(ctx context.Context, staff []db.Staff) error
	ReplaceScheduleEntries(ctx context.Context, from, to string, entries []db.ScheduleEntry) error
}

// SyncRosterResult contains counts of what was copied
type SyncRosterResult struct {
	From           string
	To             string
	StaffCount     int
	ActiveCount    int
	EntryCount     int
	UnknownStaffID []string
}

// SyncRoster copies the staff list and a month of the schedule from the spreadsheet into the database.
// The month's schedule is replaced as a whole, so cells cleared in the sheet are cleared in the database.
func SyncRoster(
	ctx context.Context,
	sheets RosterSource,
	store RosterStore,
	logger *zap.Logger,
	year int,
	month time.Month,
) (*SyncRosterResult, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	from, to := monthBounds(year, month)
	logger.Debug("Starting syncRoster", zap.String("from", from), zap.String("to", to))

	staff, err := sheets.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read staff: %w", err)
	}

	entries, err := sheets.GetScheduleEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule: %w", err)
	}

	known := make(map[string]bool, len(staff))
	active := 0
	for _, s := range staff {
		known[s.ID] = true
		if s.Active {
			active++
		}
	}

	// The schedule may name staff missing from the staff tab; they are kept but reported
	var unknown []string
	seen := make(map[string]bool)
	for _, entry := range entries {
		if !known[entry.StaffID] && !seen[entry.StaffID] {
			seen[entry.StaffID] = true
			unknown = append(unknown, entry.StaffID)
		}
	}
	for _, staffID := range unknown {
		logger.Warn("Schedule names staff missing from the staff tab", zap.String("staff_id", staffID))
	}

	logger.Debug("Saving staff", zap.Int("count", len(staff)))
	if err := store.UpsertStaff(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to save staff: %w", err)
	}

	logger.Debug("Saving schedule", zap.Int("entries", len(entries)))
	if err := store.ReplaceScheduleEntries(ctx, from, to, entries); err != nil {
		return nil, fmt.Errorf("failed to save schedule: %w", err)
	}

	logger.Info("Roster synced",
		zap.Int("staff", len(staff)),
		zap.Int("active", active),
		zap.Int("entries", len(entries)))

	return &SyncRosterResult{
		From:           from,
		To:             to,
		StaffCount:     len(staff),
		ActiveCount:    active,
		EntryCount:     len(entries),
		UnknownStaffID: unknown,
	}, nil
}
