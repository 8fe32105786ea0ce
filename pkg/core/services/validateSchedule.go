package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/stretch"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

// StaffStretches lists the over-long work stretches of one staff member
type StaffStretches struct {
	StaffID   string
	Name      string
	Stretches []model.Stretch
}

// ValidateScheduleResult contains the work stretch check of one month
type ValidateScheduleResult struct {
	Year  int
	Month time.Month

	// Dates of the month, indexed like Violation.DayIndex
	Dates []string

	// StaffChecked counts the active staff whose schedule was scanned
	StaffChecked int

	Violations []model.Violation

	// Flagged lists, per staff member with at least one violation, their stretches ordered by staff id
	Flagged []StaffStretches
}

// ValidateSchedule checks a month's schedule for work stretches at or over the configured limit
func ValidateSchedule(
	ctx context.Context,
	source RosterSource,
	cfg *config.Config,
	logger *zap.Logger,
	year int,
	month time.Month,
) (*ValidateScheduleResult, error) {
	if err := validateMonth(month); err != nil {
		return nil, err
	}

	logger.Debug("Starting validateSchedule", zap.Int("year", year), zap.String("month", month.String()))

	allStaff, err := source.GetStaff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	staff := activeStaff(allStaff)

	from, to := monthBounds(year, month)
	entries, err := source.GetScheduleEntries(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch schedule: %w", err)
	}
	logger.Debug("Loaded schedule",
		zap.Int("staff", len(staff)),
		zap.Int("entries", len(entries)))

	dates := datesBetween(from, to)
	staffIDs := make([]string, len(staff))
	names := make(map[string]string, len(staff))
	for i, member := range staff {
		staffIDs[i] = member.ID
		names[member.ID] = member.Name
	}

	// Missing cells are blank, which counts as rest
	roster := db.BuildRoster(entries, staffIDs, dates, "")

	opts := cfg.StretchOptions()
	violations, err := stretch.ValidateRoster(ctx, roster, len(dates), opts)
	if err != nil {
		return nil, err
	}

	result := &ValidateScheduleResult{
		Year:         year,
		Month:        month,
		Dates:        dates,
		StaffChecked: len(staff),
		Violations:   violations,
		Flagged:      groupStretches(violations, names),
	}

	logger.Info("Schedule validated",
		zap.Int("limit", opts.Limit),
		zap.Int("violation_days", len(violations)),
		zap.Int("staff_flagged", len(result.Flagged)))

	return result, nil
}

// groupStretches groups violations, already ordered by staff id then day, into stretches per staff member
func groupStretches(violations []model.Violation, names map[string]string) []StaffStretches {
	byStaff := make(map[string][]int)
	for _, violation := range violations {
		byStaff[violation.StaffID] = append(byStaff[violation.StaffID], violation.DayIndex)
	}

	staffIDs := make([]string, 0, len(byStaff))
	for staffID := range byStaff {
		staffIDs = append(staffIDs, staffID)
	}
	sort.Strings(staffIDs)

	flagged := make([]StaffStretches, 0, len(staffIDs))
	for _, staffID := range staffIDs {
		flagged = append(flagged, StaffStretches{
			StaffID:   staffID,
			Name:      names[staffID],
			Stretches: stretch.Stretches(staffID, byStaff[staffID]),
		})
	}
	return flagged
}

// datesBetween lists every date in [from, to]; both bounds must be valid DateFormat dates
func datesBetween(from, to string) []string {
	start, _ := time.Parse(model.DateFormat, from)
	end, _ := time.Parse(model.DateFormat, to)

	var dates []string
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dates = append(dates, date.Format(model.DateFormat))
	}
	return dates
}
