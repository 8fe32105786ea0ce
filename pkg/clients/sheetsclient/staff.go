package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/jakechorley/ward-overtime/pkg/db"
)

// Expected column names in the staff tab
var staffFields = []string{
	"Staff ID",
	"Name",
	"Role",
	"Status",
}

// inactiveStatus marks staff who should not be offered overtime
const inactiveStatus = "inactive"

// ListStaff retrieves and parses the staff list from the given tab
func (c *Client) ListStaff(ctx context.Context, spreadsheetID, staffTab string) ([]db.Staff, error) {
	values, err := c.GetValues(ctx, spreadsheetID, staffTab)
	if err != nil {
		return nil, fmt.Errorf("failed to get staff data: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("staff tab is empty")
	}

	staff, err := parseStaff(values)
	if err != nil {
		return nil, fmt.Errorf("failed to parse staff: %w", err)
	}

	return staff, nil
}

// parseStaff converts raw spreadsheet data into Staff records
func parseStaff(raw [][]interface{}) ([]db.Staff, error) {
	if len(raw) < 1 {
		return nil, fmt.Errorf("no header row found")
	}

	// Build field index map from header row
	fieldIndexes := make(map[string]int)
	for _, field := range staffFields {
		index := findColumnIndex(raw[0], field)
		if index == -1 {
			return nil, fmt.Errorf("missing required field in header: %s", field)
		}
		fieldIndexes[field] = index
	}

	getField := func(field string, row []interface{}) string {
		return cellString(row, fieldIndexes[field])
	}

	staff := make([]db.Staff, 0, len(raw)-1)
	seen := make(map[string]int)
	for i := 1; i < len(raw); i++ {
		row := raw[i]

		id := getField("Staff ID", row)
		// Skip empty rows (rows with no id)
		if id == "" {
			continue
		}

		if previous, ok := seen[id]; ok {
			return nil, fmt.Errorf("staff id %s appears in rows %d and %d", id, previous+1, i+1)
		}
		seen[id] = i

		staff = append(staff, db.Staff{
			ID:     id,
			Name:   getField("Name", row),
			Role:   getField("Role", row),
			Active: !strings.EqualFold(getField("Status", row), inactiveStatus),
		})
	}

	return staff, nil
}
