package postgres

import (
	"slices"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingMigrations_Embedded(t *testing.T) {
	pending, err := pendingMigrations(migrationsFS, map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_init.sql", "002_overtime_runs.sql", "003_advisory_shift_rank.sql"}, pending)

	pending, err = pendingMigrations(migrationsFS, map[string]bool{"001_init.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"002_overtime_runs.sql", "003_advisory_shift_rank.sql"}, pending)
}

func TestPendingMigrations_SortsAndFilters(t *testing.T) {
	migrations := fstest.MapFS{
		"migrations/010_late.sql":    {Data: []byte("SELECT 1;")},
		"migrations/002_second.sql":  {Data: []byte("SELECT 1;")},
		"migrations/001_first.sql":   {Data: []byte("SELECT 1;")},
		"migrations/README.md":       {Data: []byte("notes")},
		"migrations/old/003_old.sql": {Data: []byte("SELECT 1;")},
	}

	pending, err := pendingMigrations(migrations, map[string]bool{"002_second.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"001_first.sql", "010_late.sql"}, pending)
}

func TestPendingMigrations_MissingDirectory(t *testing.T) {
	_, err := pendingMigrations(fstest.MapFS{}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read migrations directory")
}

func TestShiftRank(t *testing.T) {
	names := []string{"FillerF", "Secondary", "FillerE", "Senior", "Quaternary", "Tertiary"}

	ranks := make(map[string]int16, len(names))
	for _, name := range names {
		rank, err := shiftRank(name)
		require.NoError(t, err)
		ranks[name] = rank
	}

	sorted := slices.Clone(names)
	slices.SortFunc(sorted, func(a, b string) int { return int(ranks[a]) - int(ranks[b]) })
	assert.Equal(t, []string{"Senior", "Secondary", "Tertiary", "Quaternary", "FillerE", "FillerF"}, sorted)

	_, err := shiftRank("Night")
	assert.Error(t, err)
}
