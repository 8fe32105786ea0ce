package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/clients/sheetsclient"
	"github.com/jakechorley/ward-overtime/pkg/db"
)

// mockRosterSource implements RosterSource for testing
type mockRosterSource struct {
	staff      []db.Staff
	entries    []db.ScheduleEntry
	staffErr   error
	entriesErr error

	requestedFrom string
	requestedTo   string
}

func (m *mockRosterSource) GetStaff(ctx context.Context) ([]db.Staff, error) {
	if m.staffErr != nil {
		return nil, m.staffErr
	}
	return m.staff, nil
}

func (m *mockRosterSource) GetScheduleEntries(ctx context.Context, from, to string) ([]db.ScheduleEntry, error) {
	m.requestedFrom, m.requestedTo = from, to
	if m.entriesErr != nil {
		return nil, m.entriesErr
	}
	return m.entries, nil
}

// mockOvertimeStore implements OvertimeStore for testing
type mockOvertimeStore struct {
	inserted  []db.RunDetail
	insertErr error
}

func (m *mockOvertimeStore) InsertRun(ctx context.Context, detail db.RunDetail) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, detail)
	return nil
}

// mockPublisher implements OvertimePublisher for testing
type mockPublisher struct {
	spreadsheetID string
	rotas         []*sheetsclient.OvertimeRota
	publishErr    error
}

func (m *mockPublisher) PublishOvertime(ctx context.Context, spreadsheetID string, rota *sheetsclient.OvertimeRota) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.spreadsheetID = spreadsheetID
	m.rotas = append(m.rotas, rota)
	return nil
}

// mockSheetsReader implements SheetsReader for testing
type mockSheetsReader struct {
	staff     []db.Staff
	schedules map[string][]db.ScheduleEntry // keyed by tab title
	readTabs  []string
}

func (m *mockSheetsReader) ListStaff(ctx context.Context, spreadsheetID, staffTab string) ([]db.Staff, error) {
	return m.staff, nil
}

func (m *mockSheetsReader) ReadSchedule(ctx context.Context, spreadsheetID, tabTitle string, year int, month time.Month) ([]db.ScheduleEntry, error) {
	m.readTabs = append(m.readTabs, tabTitle)
	entries, ok := m.schedules[tabTitle]
	if !ok {
		return nil, fmt.Errorf("tab %s not found", tabTitle)
	}
	return entries, nil
}

// mockRosterStore implements RosterStore for testing
type mockRosterStore struct {
	staff       []db.Staff
	entries     []db.ScheduleEntry
	from, to    string
	upsertErr   error
	replaceErr  error
	replaceCall int
}

func (m *mockRosterStore) UpsertStaff(ctx context.Context, staff []db.Staff) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.staff = staff
	return nil
}

func (m *mockRosterStore) ReplaceScheduleEntries(ctx context.Context, from, to string, entries []db.ScheduleEntry) error {
	m.replaceCall++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.from, m.to, m.entries = from, to, entries
	return nil
}

// mockRunReader implements RunReader for testing
type mockRunReader struct {
	runs    []db.OvertimeRun
	details map[string]*db.RunDetail
	err     error
}

func (m *mockRunReader) GetRuns(ctx context.Context) ([]db.OvertimeRun, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.runs, nil
}

func (m *mockRunReader) GetRun(ctx context.Context, runID string) (*db.RunDetail, error) {
	if m.err != nil {
		return nil, m.err
	}
	detail, ok := m.details[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	return detail, nil
}

// testConfig returns a defaulted config whose weekdays need a senior and a secondary
// and whose weekends need nobody
func testConfig() *config.Config {
	cfg := &config.Config{
		DatabaseURL: "postgres://localhost/ward_test",
		DayProfiles: config.DayProfiles{
			Weekday:  []string{"A", "B"},
			Saturday: []string{},
			Sunday:   []string{},
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// testStaff returns n active staff n01, n02, ... named Nurse 1, Nurse 2, ...
func testStaff(n int) []db.Staff {
	staff := make([]db.Staff, n)
	for i := range staff {
		staff[i] = db.Staff{
			ID:     fmt.Sprintf("n%02d", i+1),
			Name:   fmt.Sprintf("Nurse %d", i+1),
			Role:   "RN",
			Active: true,
		}
	}
	return staff
}
