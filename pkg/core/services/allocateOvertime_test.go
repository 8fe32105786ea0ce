package services

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/core/allocator"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/db"
	"github.com/jakechorley/ward-overtime/pkg/metrics"
)

// March 2025 has 21 weekdays; the test config asks for a senior and a secondary on each
const march2025Slots = 21 * 2

func TestAllocateOvertime_SavesRun(t *testing.T) {
	staff := append(testStaff(10), db.Staff{ID: "n99", Name: "Retired", Active: false})
	source := &mockRosterSource{
		staff: staff,
		entries: []db.ScheduleEntry{
			{StaffID: "n01", ShiftDate: "2025-03-03", Code: "D"},
			{StaffID: "n01", ShiftDate: "2025-03-04", Code: "D"},
			{StaffID: "n01", ShiftDate: "2025-03-05", Code: "d"},
			{StaffID: "n01", ShiftDate: "2025-03-06", Code: "N"},
		},
	}
	store := &mockOvertimeStore{}
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), store, source, testConfig(), logger, 2025, time.March, AllocateOptions{})
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.False(t, result.Published)
	assert.Equal(t, "fewest", result.Picker)
	assert.Equal(t, int64(0), result.Seed)
	assert.Len(t, result.Days, 31)
	assert.Len(t, result.Staff, 10, "inactive staff are left out")
	assert.Equal(t, "2025-03-01", source.requestedFrom)
	assert.Equal(t, "2025-03-31", source.requestedTo)

	require.Len(t, store.inserted, 1)
	detail := store.inserted[0]

	assert.Equal(t, result.RunID, detail.Run.ID)
	_, err = uuid.Parse(detail.Run.ID)
	assert.NoError(t, err)
	assert.Equal(t, 2025, detail.Run.Year)
	assert.Equal(t, 3, detail.Run.Month)
	assert.Equal(t, march2025Slots, detail.Run.SlotCount)
	assert.Equal(t, march2025Slots, detail.Run.FilledCount)
	assert.Equal(t, 0, detail.Run.ValidationErrors)
	assert.Empty(t, detail.Advisories)

	require.Len(t, detail.Allocations, march2025Slots)
	for i, allocation := range detail.Allocations {
		assert.Equal(t, i+1, allocation.Sequence)
		assert.Equal(t, detail.Run.ID, allocation.RunID)
		assert.NotEqual(t, "n99", allocation.StaffID)
		_, err := uuid.Parse(allocation.ID)
		assert.NoError(t, err)
	}
	assert.Equal(t, "Senior", detail.Allocations[0].ShiftType)

	require.Len(t, detail.Scores, 10)
	scores := make(map[string]db.ScoreRecord)
	for _, score := range detail.Scores {
		scores[score.StaffID] = score
	}
	// three day shifts at 0.1 each; the night shift is not a regular code
	assert.InDelta(t, -0.3, scores["n01"].BaseScore, 1e-9)
	assert.InDelta(t, 0.0, scores["n02"].BaseScore, 1e-9)
	assert.InDelta(t, result.Outcome.FinalScores["n01"], scores["n01"].FinalScore, 1e-9)
}

func TestAllocateOvertime_DryRun(t *testing.T) {
	source := &mockRosterSource{staff: testStaff(10)}
	store := &mockOvertimeStore{}
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), store, source, testConfig(), logger, 2025, time.March, AllocateOptions{DryRun: true})
	require.NoError(t, err)

	assert.False(t, result.Saved)
	assert.Empty(t, result.RunID)
	assert.Empty(t, store.inserted)
	assert.Len(t, result.Outcome.Assignments, march2025Slots)
}

func TestAllocateOvertime_Publishes(t *testing.T) {
	cfg := testConfig()
	cfg.Sheets = &config.SheetsConfig{SpreadsheetID: "sheet-1", StaffTab: "Staff", CredentialsFile: "sa.json"}

	source := &mockRosterSource{staff: testStaff(10)}
	store := &mockOvertimeStore{}
	publisher := &mockPublisher{}
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), store, source, cfg, logger, 2025, time.March, AllocateOptions{Publisher: publisher})
	require.NoError(t, err)

	assert.True(t, result.Saved)
	assert.True(t, result.Published)
	assert.Equal(t, "sheet-1", publisher.spreadsheetID)

	require.Len(t, publisher.rotas, 1)
	rota := publisher.rotas[0]
	assert.Equal(t, result.RunID, rota.RunID)
	assert.Equal(t, time.March, rota.Month)

	// weekends carry no slots and are left out
	require.Len(t, rota.Days, 21)
	assert.Equal(t, "2025-03-03", rota.Days[0].Date)
	for _, day := range rota.Days {
		require.Len(t, day.Holders, 2)
		assert.Contains(t, day.Holders[model.Senior], "Nurse ")
		assert.Contains(t, day.Holders[model.Secondary], "Nurse ")
	}
}

func TestAllocateOvertime_PublishWithoutSheets(t *testing.T) {
	source := &mockRosterSource{staff: testStaff(10)}
	store := &mockOvertimeStore{}
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), store, source, testConfig(), logger, 2025, time.March, AllocateOptions{Publisher: &mockPublisher{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets are not configured")

	require.NotNil(t, result)
	assert.True(t, result.Saved, "the run is saved before publishing")
	assert.False(t, result.Published)
	assert.Len(t, store.inserted, 1)
}

func TestAllocateOvertime_PublishFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Sheets = &config.SheetsConfig{SpreadsheetID: "sheet-1", StaffTab: "Staff", CredentialsFile: "sa.json"}

	source := &mockRosterSource{staff: testStaff(10)}
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, source, cfg, logger, 2025, time.March,
		AllocateOptions{Publisher: &mockPublisher{publishErr: errors.New("quota exceeded")}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publishing failed")
	assert.Contains(t, err.Error(), result.RunID)
}

func TestAllocateOvertime_RandomPicker(t *testing.T) {
	cfg := testConfig()
	cfg.SeniorPicker = config.PickerRandom
	cfg.Seed = 42

	store := &mockOvertimeStore{}
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), store, &mockRosterSource{staff: testStaff(10)}, cfg, logger, 2025, time.March, AllocateOptions{})
	require.NoError(t, err)

	assert.Equal(t, "random", result.Picker)
	assert.Equal(t, int64(42), result.Seed)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, int64(42), store.inserted[0].Run.Seed)

	// the same seed replays the same senior choices
	again, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, &mockRosterSource{staff: testStaff(10)}, cfg, logger, 2025, time.March, AllocateOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, result.Outcome.Table, again.Outcome.Table)
}

func TestAllocateOvertime_RandomPickerWithoutSeed(t *testing.T) {
	cfg := testConfig()
	cfg.SeniorPicker = config.PickerRandom
	logger := zap.NewNop()

	result, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, &mockRosterSource{staff: testStaff(10)}, cfg, logger, 2025, time.March, AllocateOptions{DryRun: true})
	require.NoError(t, err)
	assert.NotEqual(t, int64(0), result.Seed, "a clock seed is recorded so the run can be replayed")
}

func TestAllocateOvertime_Errors(t *testing.T) {
	logger := zap.NewNop()

	t.Run("invalid month", func(t *testing.T) {
		_, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, &mockRosterSource{}, testConfig(), logger, 2025, time.Month(0), AllocateOptions{})
		assert.Error(t, err)
	})

	t.Run("staff source fails", func(t *testing.T) {
		source := &mockRosterSource{staffErr: errors.New("connection refused")}
		_, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, source, testConfig(), logger, 2025, time.March, AllocateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch staff")
	})

	t.Run("schedule source fails", func(t *testing.T) {
		source := &mockRosterSource{staff: testStaff(3), entriesErr: errors.New("timeout")}
		_, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, source, testConfig(), logger, 2025, time.March, AllocateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch schedule")
	})

	t.Run("no active staff", func(t *testing.T) {
		source := &mockRosterSource{staff: []db.Staff{{ID: "n01", Active: false}}}
		_, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, source, testConfig(), logger, 2025, time.March, AllocateOptions{})
		assert.ErrorIs(t, err, allocator.ErrNoStaff)
	})

	t.Run("store fails", func(t *testing.T) {
		store := &mockOvertimeStore{insertErr: errors.New("disk full")}
		_, err := AllocateOvertime(t.Context(), store, &mockRosterSource{staff: testStaff(10)}, testConfig(), logger, 2025, time.March, AllocateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save run")
	})

	t.Run("invalid day profile", func(t *testing.T) {
		cfg := testConfig()
		cfg.DayProfiles.Weekday = []string{"Z"}
		_, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, &mockRosterSource{staff: testStaff(3)}, cfg, logger, 2025, time.March, AllocateOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid dayProfiles.weekday")
	})
}

func TestAllocateOvertimeResult_RunStats(t *testing.T) {
	// One nurse: one senior per week, the other weekday seniors go unfilled
	// and the secondary slot is taken on every day they are not already senior
	logger := zap.NewNop()
	result, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, &mockRosterSource{staff: testStaff(1)}, testConfig(), logger, 2025, time.March, AllocateOptions{DryRun: true})
	require.NoError(t, err)

	stats := result.RunStats()

	assert.Equal(t, metrics.OutcomeDryRun, stats.Outcome)
	assert.Equal(t, 1, stats.Staff)
	// March 2025 weeks with weekdays: 3-9, 10-16, 17-23, 24-30 and 31
	assert.Equal(t, map[string]int{"Senior": 5, "Secondary": 16}, stats.Filled)
	assert.Equal(t, map[string]int{"Senior": 16, "Secondary": 5}, stats.Unfilled)
	assert.Equal(t, 0.0, stats.ScoreSpread)
	assert.Equal(t, 0, stats.ValidationErrors)
}

func TestAllocateOvertimeResult_RunStatsOutcome(t *testing.T) {
	outcome := &allocator.AllocationOutcome{
		FinalScores:      map[string]float64{"a": 1.2, "b": -0.5, "c": 0.4},
		ValidationErrors: []allocator.SlotValidationError{{Date: "2025-03-03", ConstraintName: "WeeklySeniorCap"}},
	}

	rejected := (&AllocateOvertimeResult{Outcome: outcome}).RunStats()
	assert.Equal(t, metrics.OutcomeRejected, rejected.Outcome)
	assert.InDelta(t, 1.7, rejected.ScoreSpread, 1e-9)
	assert.Equal(t, 1, rejected.ValidationErrors)

	forced := (&AllocateOvertimeResult{Outcome: outcome, Saved: true}).RunStats()
	assert.Equal(t, metrics.OutcomeSaved, forced.Outcome)
}

func TestBuildRunDetail_Advisories(t *testing.T) {
	logger := zap.NewNop()
	result, err := AllocateOvertime(t.Context(), &mockOvertimeStore{}, &mockRosterSource{staff: testStaff(1)}, testConfig(), logger, 2025, time.March, AllocateOptions{DryRun: true})
	require.NoError(t, err)

	detail := buildRunDetail("run-1", 2025, time.March, "fewest", 0, result.Outcome)

	assert.Equal(t, march2025Slots, detail.Run.SlotCount)
	assert.Equal(t, 21, detail.Run.FilledCount)
	require.Len(t, detail.Advisories, 21)
	for _, advisory := range detail.Advisories {
		assert.Equal(t, "run-1", advisory.RunID)
	}
	assert.Equal(t, detail.Run.SlotCount, detail.Run.FilledCount+len(detail.Advisories))
}
