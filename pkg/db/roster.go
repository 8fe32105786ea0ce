package db

import (
	"errors"
	"strings"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// ErrRunNotFound is returned when no saved run has the requested id
var ErrRunNotFound = errors.New("overtime run not found")

// BuildRoster lays schedule entries out as one code sequence per staff member over dates.
// Days without an entry get blankCode. When a cell appears twice the later entry wins.
// Entries for staff not in staffIDs or dates outside the horizon are ignored.
func BuildRoster(entries []ScheduleEntry, staffIDs []string, dates []string, blankCode model.ShiftCode) map[string][]model.ShiftCode {
	dateIndex := make(map[string]int, len(dates))
	for i, date := range dates {
		dateIndex[date] = i
	}

	roster := make(map[string][]model.ShiftCode, len(staffIDs))
	for _, staffID := range staffIDs {
		seq := make([]model.ShiftCode, len(dates))
		for i := range seq {
			seq[i] = blankCode
		}
		roster[staffID] = seq
	}

	for _, entry := range entries {
		seq, ok := roster[entry.StaffID]
		if !ok {
			continue
		}
		index, ok := dateIndex[entry.ShiftDate]
		if !ok {
			continue
		}

		code := strings.ToUpper(strings.TrimSpace(entry.Code))
		if code == "" {
			seq[index] = blankCode
			continue
		}
		seq[index] = model.ShiftCode(code)
	}

	return roster
}

// CountCodes counts, per staff member, the days whose code is one of codes
func CountCodes(roster map[string][]model.ShiftCode, codes []string) map[string]int {
	wanted := make(map[model.ShiftCode]bool, len(codes))
	for _, code := range codes {
		wanted[model.ShiftCode(strings.ToUpper(strings.TrimSpace(code)))] = true
	}

	counts := make(map[string]int, len(roster))
	for staffID, seq := range roster {
		for _, code := range seq {
			if wanted[code] {
				counts[staffID]++
			}
		}
	}
	return counts
}
