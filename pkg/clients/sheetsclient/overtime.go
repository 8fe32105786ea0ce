package sheetsclient

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// UnfilledMarker is written in a slot nobody could take
const UnfilledMarker = "UNFILLED"

// OvertimeDay is one day of a published overtime rota.
// Holders maps each slot the day requires to the name of the staff member holding it ("" if unfilled).
type OvertimeDay struct {
	Date    string
	Holders map[model.ShiftType]string
}

// OvertimeRota represents the overtime allocation of one month as it is published
type OvertimeRota struct {
	Year  int
	Month time.Month
	RunID string
	Days  []OvertimeDay
}

// PublishOvertime writes the rota to its own tab, creating the tab if it doesn't exist
// and replacing its contents otherwise
func (c *Client) PublishOvertime(ctx context.Context, spreadsheetID string, rota *OvertimeRota) error {
	tabTitle := overtimeTabTitle(rota.Year, rota.Month)

	exists, err := c.HasSheet(ctx, spreadsheetID, tabTitle)
	if err != nil {
		return err
	}

	if !exists {
		if _, err := c.CreateSheet(ctx, spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	rows, err := buildOvertimeRows(rota)
	if err != nil {
		return err
	}

	if err := c.ReplaceValues(ctx, spreadsheetID, tabTitle, rows); err != nil {
		return fmt.Errorf("failed to publish overtime rota: %w", err)
	}

	return nil
}

// overtimeTabTitle creates a tab title in the format "Overtime March 2025"
func overtimeTabTitle(year int, month time.Month) string {
	return fmt.Sprintf("Overtime %s", time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January 2006"))
}

// buildOvertimeRows lays the rota out with a title row, a blank row, a header and one row per day.
// Slots the day does not require are left blank; required slots nobody holds are marked.
func buildOvertimeRows(rota *OvertimeRota) ([][]interface{}, error) {
	header := []interface{}{"Date"}
	for _, shiftType := range model.AllShiftTypes {
		header = append(header, fmt.Sprintf("%s (%s)", shiftType, shiftType.Code()))
	}

	rows := [][]interface{}{
		{fmt.Sprintf("Run %s", rota.RunID)},
		{},
		header,
	}

	for _, day := range rota.Days {
		date, err := time.Parse(model.DateFormat, day.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", day.Date, err)
		}

		row := []interface{}{date.Format("Mon Jan 02 2006")}
		for _, shiftType := range model.AllShiftTypes {
			holder, required := day.Holders[shiftType]
			switch {
			case !required:
				row = append(row, "")
			case holder == "":
				row = append(row, UnfilledMarker)
			default:
				row = append(row, holder)
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}
