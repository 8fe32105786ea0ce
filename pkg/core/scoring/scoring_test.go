package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

func newTestTracker(t *testing.T, ids []string, base map[string]float64) *Tracker {
	t.Helper()
	tracker, err := NewTracker(ids, base)
	require.NoError(t, err)
	return tracker
}

func TestNewTracker_BaseScores(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob"}, map[string]float64{"alice": -2.5})

	assert.Equal(t, 2, tracker.Len())
	assert.Equal(t, -2.5, tracker.Score("alice"))
	assert.Equal(t, -2.5, tracker.Base("alice"))
	assert.Equal(t, 0.0, tracker.Score("bob"))
	assert.True(t, tracker.Has("bob"))
	assert.False(t, tracker.Has("carol"))
}

func TestNewTracker_InvalidInput(t *testing.T) {
	_, err := NewTracker([]string{"alice", "alice"}, nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate staff id")

	_, err = NewTracker([]string{"alice"}, map[string]float64{"bob": -1})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown staff id")
}

func TestTracker_Apply(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob"}, map[string]float64{"alice": -2, "bob": -1})

	score, err := tracker.Apply("alice", model.Senior)
	require.NoError(t, err)
	assert.InDelta(t, -0.8, score, 1e-9)

	score, err = tracker.Apply("alice", model.Secondary)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, score, 1e-9)

	// Filler shifts carry no weight
	score, err = tracker.Apply("bob", model.FillerE)
	require.NoError(t, err)
	assert.Equal(t, -1.0, score)

	// Base is untouched and other staff are unaffected
	assert.Equal(t, -2.0, tracker.Base("alice"))
	assert.Equal(t, -1.0, tracker.Score("bob"))

	_, err = tracker.Apply("carol", model.Senior)
	assert.Error(t, err)
}

func TestTracker_Snapshot(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob"}, map[string]float64{"alice": -1})
	_, err := tracker.Apply("bob", model.Tertiary)
	require.NoError(t, err)

	snapshot := tracker.Snapshot()
	snapshot["alice"] = 100

	assert.Equal(t, -1.0, tracker.Score("alice"))
	assert.InDelta(t, 0.6, snapshot["bob"], 1e-9)
}

func TestTracker_LessBreaksTiesByID(t *testing.T) {
	tracker := newTestTracker(t, []string{"bob", "alice"}, map[string]float64{"bob": -1, "alice": -1})

	assert.True(t, tracker.Less("alice", "bob"))
	assert.False(t, tracker.Less("bob", "alice"))

	// 0.1 + 0.2 style drift must still tie
	drift := 0.1
	drift += 0.2
	tracker2 := newTestTracker(t, []string{"x", "y"}, map[string]float64{"x": drift, "y": 0.3})
	assert.True(t, tracker2.Less("x", "y"))
	assert.False(t, tracker2.Less("y", "x"))
}

func TestScoreQueue_PopsLowestScore(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob", "carol"}, map[string]float64{
		"alice": -1,
		"bob":   -3,
		"carol": -2,
	})
	queue := NewScoreQueue(tracker)

	all := func(string) bool { return true }

	id, ok := queue.PopEligible(all)
	require.True(t, ok)
	assert.Equal(t, "bob", id)

	// bob is out of the queue until pushed back
	id, ok = queue.PopEligible(all)
	require.True(t, ok)
	assert.Equal(t, "carol", id)
}

func TestScoreQueue_SkipsIneligibleAndKeepsThem(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob", "carol"}, map[string]float64{
		"alice": -1,
		"bob":   -3,
		"carol": -2,
	})
	queue := NewScoreQueue(tracker)

	id, ok := queue.PopEligible(func(id string) bool { return id == "alice" })
	require.True(t, ok)
	assert.Equal(t, "alice", id)

	// bob and carol were held and put back
	id, ok = queue.PopEligible(func(string) bool { return true })
	require.True(t, ok)
	assert.Equal(t, "bob", id)
}

func TestScoreQueue_NoEligible(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice"}, nil)
	queue := NewScoreQueue(tracker)

	_, ok := queue.PopEligible(func(string) bool { return false })
	assert.False(t, ok)

	// alice is still queued
	id, ok := queue.PopEligible(func(string) bool { return true })
	require.True(t, ok)
	assert.Equal(t, "alice", id)
}

func TestScoreQueue_ReordersAfterApply(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob"}, map[string]float64{"alice": -1.0, "bob": -0.9})
	queue := NewScoreQueue(tracker)
	all := func(string) bool { return true }

	id, _ := queue.PopEligible(all)
	require.Equal(t, "alice", id)
	_, err := tracker.Apply("alice", model.Secondary) // -0.3
	require.NoError(t, err)
	queue.Push("alice")

	id, _ = queue.PopEligible(all)
	assert.Equal(t, "bob", id)
}

func TestScoreQueue_DiscardsStaleEntries(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice", "bob"}, map[string]float64{"alice": -2, "bob": -1})
	queue := NewScoreQueue(tracker)

	// Score changes while alice is still queued at her old score
	_, err := tracker.Apply("alice", model.Senior)
	require.NoError(t, err)
	_, err = tracker.Apply("alice", model.Senior) // 0.4
	require.NoError(t, err)
	queue.Push("alice")

	all := func(string) bool { return true }

	id, _ := queue.PopEligible(all)
	assert.Equal(t, "bob", id)
	id, _ = queue.PopEligible(all)
	assert.Equal(t, "alice", id)
	_, ok := queue.PopEligible(all)
	assert.False(t, ok)
}

func TestScoreQueue_PushIsIdempotent(t *testing.T) {
	tracker := newTestTracker(t, []string{"alice"}, nil)
	queue := NewScoreQueue(tracker)

	queue.Push("alice")
	queue.Push("alice")
	queue.Push("unknown")

	assert.Equal(t, 1, queue.Len())
}
