package allocator

import "math/rand"

// SeniorPicker selects who takes a senior slot from the week's remaining candidates.
// Candidates are never empty and are given in staff input order.
type SeniorPicker interface {
	Name() string
	Pick(state *RunState, candidates []string) string
}

// FewestSeniorPicker picks the candidate with the fewest senior shifts so far in the run,
// then the lowest current fairness score, then the lowest staff id
type FewestSeniorPicker struct{}

// NewFewestSeniorPicker creates the default, deterministic senior picker
func NewFewestSeniorPicker() *FewestSeniorPicker {
	return &FewestSeniorPicker{}
}

func (p *FewestSeniorPicker) Name() string {
	return "fewest"
}

func (p *FewestSeniorPicker) Pick(state *RunState, candidates []string) string {
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if p.better(state, candidate, best) {
			best = candidate
		}
	}
	return best
}

func (p *FewestSeniorPicker) better(state *RunState, a, b string) bool {
	countA, countB := state.SeniorTotal(a), state.SeniorTotal(b)
	if countA != countB {
		return countA < countB
	}
	return state.Tracker.Less(a, b)
}

// RandomPicker picks uniformly at random from an explicitly seeded source,
// so a run can be reproduced from its seed
type RandomPicker struct {
	rng *rand.Rand
}

// NewRandomPicker creates a random senior picker seeded with seed
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPicker) Name() string {
	return "random"
}

func (p *RandomPicker) Pick(state *RunState, candidates []string) string {
	return candidates[p.rng.Intn(len(candidates))]
}
