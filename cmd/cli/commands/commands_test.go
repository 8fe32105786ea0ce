package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/ward-overtime/internal/config"
	"github.com/jakechorley/ward-overtime/pkg/core/model"
	"github.com/jakechorley/ward-overtime/pkg/core/services"
	"github.com/jakechorley/ward-overtime/pkg/metrics"
)

func TestParseYearMonth(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantYear  int
		wantMonth time.Month
		wantErr   string
	}{
		{name: "valid", args: []string{"2025", "3"}, wantYear: 2025, wantMonth: time.March},
		{name: "zero padded", args: []string{"2025", "03"}, wantYear: 2025, wantMonth: time.March},
		{name: "year not a number", args: []string{"twenty", "3"}, wantErr: "year must be a number"},
		{name: "month not a number", args: []string{"2025", "March"}, wantErr: "month must be a number"},
		{name: "month out of range", args: []string{"2025", "13"}, wantErr: "between 1 and 12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			year, month, err := parseYearMonth(tt.args)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantYear, year)
			assert.Equal(t, tt.wantMonth, month)
		})
	}
}

func TestFormatSlots(t *testing.T) {
	assert.Equal(t, "A B F", formatSlots([]model.ShiftType{model.Senior, model.Secondary, model.FillerF}))
	assert.Equal(t, "—", formatSlots(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Alice", truncate("Alice", 10))
	assert.Equal(t, "Alexandr…", truncate("Alexandra Smith", 9))
}

func TestRosterSource(t *testing.T) {
	app := &AppContext{Env: "test", Cfg: &config.Config{}}

	_, err := app.rosterSource("csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")

	_, err = app.rosterSource(services.SourceSheets)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets are not configured for environment test")
}

func TestDatabase_ConnectsLazily(t *testing.T) {
	app := &AppContext{
		Cfg:    &config.Config{DatabaseURL: "postgres://localhost:notaport/ward"},
		Logger: zap.NewNop(),
		Ctx:    context.Background(),
	}
	assert.Nil(t, app.Database, "nothing connects before a command asks")

	_, err := app.database()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
	assert.Nil(t, app.Database)

	_, err = app.rosterSource(services.SourceDatabase)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
}

func TestInstrument(t *testing.T) {
	metricsFile := filepath.Join(t.TempDir(), "overtime.prom")
	app := &AppContext{
		Cfg:     &config.Config{MetricsFile: metricsFile},
		Metrics: metrics.NewManager(),
		Logger:  zap.NewNop(),
	}

	ok := instrument(app, "calendar", func(cmd *cobra.Command, args []string) error { return nil })
	failing := instrument(app, "calendar", func(cmd *cobra.Command, args []string) error { return errors.New("boom") })

	require.NoError(t, ok(nil, nil))
	err := failing(nil, nil)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error(), "the command's error is passed through unchanged")

	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `ward_overtime_commands_total{command="calendar",status="ok"} 1`)
	assert.Contains(t, string(data), `ward_overtime_commands_total{command="calendar",status="error"} 1`)
}

func TestInstrument_NoMetricsFile(t *testing.T) {
	app := &AppContext{
		Cfg:     &config.Config{},
		Metrics: metrics.NewManager(),
		Logger:  zap.NewNop(),
	}

	run := instrument(app, "listRuns", func(cmd *cobra.Command, args []string) error { return nil })
	assert.NoError(t, run(nil, nil))
}
