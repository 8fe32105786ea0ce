package scoring

import "container/heap"

// queueEntry is a staff member's score as it was when the entry was pushed
type queueEntry struct {
	index   int
	key     int64
	version int
}

// scoreHeap implements heap.Interface ordered by score then staff id.
// Lower score = popped first.
type scoreHeap struct {
	entries []queueEntry
	ids     []string
}

func (h scoreHeap) Len() int { return len(h.entries) }

func (h scoreHeap) Less(i, j int) bool {
	a, b := h.entries[i], h.entries[j]
	if a.key != b.key {
		return a.key < b.key
	}
	return h.ids[a.index] < h.ids[b.index]
}

func (h scoreHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
}

// Push adds an entry. Called by heap.Push - do not call directly.
func (h *scoreHeap) Push(x any) {
	h.entries = append(h.entries, x.(queueEntry))
}

// Pop removes the last entry. Called by heap.Pop - do not call directly.
func (h *scoreHeap) Pop() any {
	old := h.entries
	n := len(old)
	entry := old[n-1]
	h.entries = old[:n-1]
	return entry
}

// ScoreQueue is a min-priority queue of staff keyed by their current score.
//
// Entries are invalidated lazily: when a score changes the old entry stays in the
// heap and is discarded when it surfaces, because its version no longer matches.
type ScoreQueue struct {
	tracker *Tracker
	heap    scoreHeap

	// queued holds the version of the live entry for each staff member, -1 if none
	queued []int
}

// NewScoreQueue creates a queue holding every staff member of the tracker
func NewScoreQueue(tracker *Tracker) *ScoreQueue {
	q := &ScoreQueue{
		tracker: tracker,
		heap: scoreHeap{
			entries: make([]queueEntry, 0, tracker.Len()),
			ids:     tracker.ids,
		},
		queued: make([]int, tracker.Len()),
	}

	for i := range q.queued {
		q.queued[i] = -1
		q.pushIndex(i)
	}

	return q
}

// Push (re)queues a staff member at their current score. It is a no-op when the
// staff member is already queued at that score.
func (q *ScoreQueue) Push(staffID string) {
	i, ok := q.tracker.index[staffID]
	if !ok {
		return
	}
	q.pushIndex(i)
}

func (q *ScoreQueue) pushIndex(i int) {
	if q.queued[i] == q.tracker.version[i] {
		return
	}
	q.queued[i] = q.tracker.version[i]
	heap.Push(&q.heap, queueEntry{
		index:   i,
		key:     quantize(q.tracker.current[i]),
		version: q.tracker.version[i],
	})
}

// PopEligible removes and returns the lowest-scoring staff member for which eligible
// returns true. Ineligible staff stay queued. The caller must Push the returned staff
// member back once their score has been updated.
func (q *ScoreQueue) PopEligible(eligible func(staffID string) bool) (string, bool) {
	var held []int
	defer func() {
		for _, i := range held {
			q.pushIndex(i)
		}
	}()

	for q.heap.Len() > 0 {
		entry := heap.Pop(&q.heap).(queueEntry)

		// Stale entry, a newer one is queued or will be
		if entry.version != q.tracker.version[entry.index] {
			continue
		}
		q.queued[entry.index] = -1

		id := q.tracker.ids[entry.index]
		if !eligible(id) {
			held = append(held, entry.index)
			continue
		}

		return id, true
	}

	return "", false
}

// Len returns the number of entries in the heap, including stale ones
func (q *ScoreQueue) Len() int {
	return q.heap.Len()
}
