package sheetsclient

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

const staffIDColumn = "Staff ID"

// ScheduleTabTitle returns the name of the tab holding a month's schedule
func ScheduleTabTitle(layout string, year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format(layout)
}

// ReadSchedule reads a month's schedule grid: one row per staff member, one column per day of the month.
// Blank cells are not returned.
func (c *Client) ReadSchedule(ctx context.Context, spreadsheetID, tabTitle string, year int, month time.Month) ([]db.ScheduleEntry, error) {
	values, err := c.GetValues(ctx, spreadsheetID, tabTitle)
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule data: %w", err)
	}

	entries, err := parseScheduleGrid(values, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schedule tab %s: %w", tabTitle, err)
	}

	return entries, nil
}

// parseScheduleGrid converts a monthly grid into schedule entries.
// The header row holds "Staff ID" followed by day-of-month numbers; other columns are ignored.
func parseScheduleGrid(raw [][]interface{}, year int, month time.Month) ([]db.ScheduleEntry, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	header := raw[0]
	idCol := findColumnIndex(header, staffIDColumn)
	if idCol == -1 {
		return nil, fmt.Errorf("missing required field in header: %s", staffIDColumn)
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	// column index -> date
	dayColumns := make(map[int]string)
	seenDays := make(map[int]bool)
	for i := range header {
		if i == idCol {
			continue
		}

		day, err := strconv.Atoi(cellString(header, i))
		if err != nil {
			continue
		}
		if day < 1 || day > daysInMonth {
			return nil, fmt.Errorf("header column %d has day %d outside %s", i+1, day, first.Format("January 2006"))
		}
		if seenDays[day] {
			return nil, fmt.Errorf("day %d appears twice in header", day)
		}
		seenDays[day] = true
		dayColumns[i] = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(model.DateFormat)
	}

	if len(dayColumns) == 0 {
		return nil, fmt.Errorf("header has no day columns")
	}

	var entries []db.ScheduleEntry
	for r := 1; r < len(raw); r++ {
		row := raw[r]

		staffID := cellString(row, idCol)
		if staffID == "" {
			continue
		}

		for col, date := range dayColumns {
			code := strings.ToUpper(cellString(row, col))
			if code == "" {
				continue
			}
			entries = append(entries, db.ScheduleEntry{
				StaffID:   staffID,
				ShiftDate: date,
				Code:      code,
			})
		}
	}

	sortEntries(entries)
	return entries, nil
}

// sortEntries orders entries by date then staff id, matching the database's read order
func sortEntries(entries []db.ScheduleEntry) {
	slices.SortFunc(entries, func(a, b db.ScheduleEntry) int {
		if c := strings.Compare(a.ShiftDate, b.ShiftDate); c != 0 {
			return c
		}
		return strings.Compare(a.StaffID, b.StaffID)
	})
}
