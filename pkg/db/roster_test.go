package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

func TestBuildRoster(t *testing.T) {
	dates := []string{"2025-03-01", "2025-03-02", "2025-03-03"}
	entries := []ScheduleEntry{
		{StaffID: "alice", ShiftDate: "2025-03-01", Code: "D"},
		{StaffID: "alice", ShiftDate: "2025-03-03", Code: " n "},
		{StaffID: "bob", ShiftDate: "2025-03-02", Code: "E"},
		// later entry wins
		{StaffID: "bob", ShiftDate: "2025-03-02", Code: "V"},
		// blank cell
		{StaffID: "bob", ShiftDate: "2025-03-03", Code: ""},
		// ignored
		{StaffID: "carol", ShiftDate: "2025-03-01", Code: "D"},
		{StaffID: "alice", ShiftDate: "2025-04-01", Code: "D"},
	}

	roster := BuildRoster(entries, []string{"alice", "bob"}, dates, "O")

	require.Len(t, roster, 2)
	assert.Equal(t, []model.ShiftCode{"D", "O", "N"}, roster["alice"])
	assert.Equal(t, []model.ShiftCode{"O", "V", "O"}, roster["bob"])
}

func TestBuildRoster_NoEntries(t *testing.T) {
	roster := BuildRoster(nil, []string{"alice"}, []string{"2025-03-01", "2025-03-02"}, "O")
	assert.Equal(t, []model.ShiftCode{"O", "O"}, roster["alice"])
}

func TestCountCodes(t *testing.T) {
	roster := map[string][]model.ShiftCode{
		"alice": {"D", "D", "O", "E", "D"},
		"bob":   {"N", "O", "O"},
	}

	counts := CountCodes(roster, []string{"d", "E"})
	assert.Equal(t, 4, counts["alice"])
	assert.Equal(t, 0, counts["bob"])
}
