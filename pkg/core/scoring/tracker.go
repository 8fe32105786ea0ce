// Package scoring tracks per-staff fairness scores during a single allocation run.
//
// A staff member starts at their base score (negative in proportion to the regular
// shifts they already work) and is credited the fixed weight of every overtime shift
// they are given. Always choosing the lowest score drives scores toward zero.
//
// A Tracker is not safe for concurrent use; every run owns its own instance.
package scoring

import (
	"fmt"
	"math"

	"github.com/jakechorley/ward-overtime/pkg/core/model"
)

// scorePrecision is the number of score units per point used when comparing scores,
// so that float drift from repeated additions does not break ties differently
const scorePrecision = 1e6

// Tracker holds the cumulative fairness score of every staff member in a run
type Tracker struct {
	ids     []string
	index   map[string]int
	base    []float64
	current []float64

	// version is bumped on every Apply so queued entries can detect they are stale
	version []int
}

// NewTracker creates a tracker for the given staff, in order.
// Staff missing from baseScores start at 0.
func NewTracker(staffIDs []string, baseScores map[string]float64) (*Tracker, error) {
	t := &Tracker{
		ids:     make([]string, len(staffIDs)),
		index:   make(map[string]int, len(staffIDs)),
		base:    make([]float64, len(staffIDs)),
		current: make([]float64, len(staffIDs)),
		version: make([]int, len(staffIDs)),
	}

	for i, id := range staffIDs {
		if _, exists := t.index[id]; exists {
			return nil, fmt.Errorf("duplicate staff id %q", id)
		}
		t.ids[i] = id
		t.index[id] = i
		t.base[i] = baseScores[id]
		t.current[i] = baseScores[id]
	}

	for id := range baseScores {
		if _, exists := t.index[id]; !exists {
			return nil, fmt.Errorf("base score given for unknown staff id %q", id)
		}
	}

	return t, nil
}

// Len returns the number of tracked staff
func (t *Tracker) Len() int {
	return len(t.ids)
}

// Has returns true if the staff member is tracked
func (t *Tracker) Has(staffID string) bool {
	_, ok := t.index[staffID]
	return ok
}

// Score returns the current score of a staff member (0 for unknown staff)
func (t *Tracker) Score(staffID string) float64 {
	i, ok := t.index[staffID]
	if !ok {
		return 0
	}
	return t.current[i]
}

// Base returns the score a staff member started the run with
func (t *Tracker) Base(staffID string) float64 {
	i, ok := t.index[staffID]
	if !ok {
		return 0
	}
	return t.base[i]
}

// Apply credits a staff member with the weight of the given shift type and returns the new score.
// It is the only way a score changes.
func (t *Tracker) Apply(staffID string, shiftType model.ShiftType) (float64, error) {
	i, ok := t.index[staffID]
	if !ok {
		return 0, fmt.Errorf("cannot apply %s to unknown staff id %q", shiftType, staffID)
	}
	t.current[i] += shiftType.Weight()
	t.version[i]++
	return t.current[i], nil
}

// Snapshot returns a copy of every current score keyed by staff id
func (t *Tracker) Snapshot() map[string]float64 {
	scores := make(map[string]float64, len(t.ids))
	for i, id := range t.ids {
		scores[id] = t.current[i]
	}
	return scores
}

// Less orders two staff members by current score, then by ascending staff id
func (t *Tracker) Less(a, b string) bool {
	return t.lessIndex(t.index[a], t.index[b])
}

func (t *Tracker) lessIndex(i, j int) bool {
	qi, qj := quantize(t.current[i]), quantize(t.current[j])
	if qi != qj {
		return qi < qj
	}
	return t.ids[i] < t.ids[j]
}

func quantize(score float64) int64 {
	return int64(math.Round(score * scorePrecision))
}
