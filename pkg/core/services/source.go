package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/clients/sheetsclient"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

// Roster source names accepted by the CLI
const (
	SourceDatabase = "db"
	SourceSheets   = "sheets"
)

// RosterSource supplies the staff list and the monthly schedule.
// postgres.DB satisfies it directly; SheetsSource reads the ward spreadsheet.
type RosterSource interface {
	GetStaff(ctx context.Context) ([]db.Staff, error)
	GetScheduleEntries(ctx context.Context, from, to string) ([]db.ScheduleEntry, error)
}

// SheetsReader defines the spreadsheet operations needed to read the roster
type SheetsReader interface {
	ListStaff(ctx context.Context, spreadsheetID, staffTab string) ([]db.Staff, error)
	ReadSchedule(ctx context.Context, spreadsheetID, tabTitle string, year int, month time.Month) ([]db.ScheduleEntry, error)
}

// SheetsSource reads the roster straight from the ward spreadsheet
type SheetsSource struct {
	client SheetsReader
	cfg    *config.SheetsConfig
}

// NewSheetsSource creates a roster source over the configured spreadsheet
func NewSheetsSource(client SheetsReader, cfg *config.SheetsConfig) (*SheetsSource, error) {
	if client == nil || cfg == nil {
		return nil, fmt.Errorf("sheets are not configured")
	}
	return &SheetsSource{client: client, cfg: cfg}, nil
}

// GetStaff reads the staff tab
func (s *SheetsSource) GetStaff(ctx context.Context) ([]db.Staff, error) {
	return s.client.ListStaff(ctx, s.cfg.SpreadsheetID, s.cfg.StaffTab)
}

// GetScheduleEntries reads every month tab overlapping [from, to] and keeps the entries inside it
func (s *SheetsSource) GetScheduleEntries(ctx context.Context, from, to string) ([]db.ScheduleEntry, error) {
	start, err := time.Parse(model.DateFormat, from)
	if err != nil {
		return nil, fmt.Errorf("invalid from date %q: %w", from, err)
	}
	end, err := time.Parse(model.DateFormat, to)
	if err != nil {
		return nil, fmt.Errorf("invalid to date %q: %w", to, err)
	}

	var entries []db.ScheduleEntry
	for month := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC); !month.After(end); month = month.AddDate(0, 1, 0) {
		tab := sheetsclient.ScheduleTabTitle(s.cfg.ScheduleTabLayout, month.Year(), month.Month())
		monthEntries, err := s.client.ReadSchedule(ctx, s.cfg.SpreadsheetID, tab, month.Year(), month.Month())
		if err != nil {
			return nil, fmt.Errorf("failed to read schedule tab %s: %w", tab, err)
		}
		for _, entry := range monthEntries {
			if entry.ShiftDate >= from && entry.ShiftDate <= to {
				entries = append(entries, entry)
			}
		}
	}

	return entries, nil
}

// activeStaff filters to active staff and converts them for the allocator
func activeStaff(staff []db.Staff) []model.StaffMember {
	members := make([]model.StaffMember, 0, len(staff))
	for _, s := range staff {
		if !s.Active {
			continue
		}
		members = append(members, model.StaffMember{ID: s.ID, Name: s.Name, Role: s.Role})
	}
	return members
}

// monthBounds returns the first and last date of a month
func monthBounds(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(model.DateFormat), last.Format(model.DateFormat)
}

func validateMonth(month time.Month) error {
	if month < time.January || month > time.December {
		return fmt.Errorf("month must be between 1 and 12, got %d", month)
	}
	return nil
}
