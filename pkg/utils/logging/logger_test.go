package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogFileName(t *testing.T) {
	startedAt := time.Date(2025, time.March, 1, 9, 30, 5, 0, time.UTC)
	assert.Equal(t, filepath.Join("logs", "prod_2025-03-01_09-30-05.log"), LogFileName("logs", "prod", startedAt))
}

func TestInitLogger_WritesJSONDebugToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "logs")

	logger, err := InitLogger("test", dir)
	require.NoError(t, err)

	logger.Debug("allocation step", zap.String("phase", "senior"), zap.Int("slots", 27))
	_ = logger.Sync()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "test_"))

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "allocation step", line["msg"])
	assert.Equal(t, "senior", line["phase"])
	assert.Equal(t, float64(27), line["slots"])
	assert.Contains(t, line, "timestamp")
}
