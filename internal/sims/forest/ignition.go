package forest

import "sync"

// Coord addresses a grid cell.
type Coord struct {
	X, Y int
}

// IgnitionQueue collects ignition requests between steps. Push may be called
// from any goroutine; Drain hands every pending request to exactly one caller.
type IgnitionQueue struct {
	mu      sync.Mutex
	pending []Coord
}

// Push queues an ignition request.
func (q *IgnitionQueue) Push(c Coord) {
	q.mu.Lock()
	q.pending = append(q.pending, c)
	q.mu.Unlock()
}

// Drain removes and returns all pending requests.
func (q *IgnitionQueue) Drain() []Coord {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.pending
	q.pending = nil
	return out
}

// Len reports the number of pending requests.
func (q *IgnitionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// applyIgnitions returns the snapshot a step should read: src itself when no
// request targets a tree, otherwise a copy with those trees marked igniting.
// An igniting cell burns its neighbors this step and is Burning in the
// output; it burns out on the step after.
func applyIgnitions(src *Grid, ignitions []Coord) *Grid {
	snap := src
	for _, c := range ignitions {
		if !src.InBounds(c.X, c.Y) {
			continue
		}
		idx := src.index(c.X, c.Y)
		if src.cells[idx] != Tree {
			continue
		}
		if snap == src {
			snap = src.Clone()
		}
		snap.cells[idx] = igniting
	}
	return snap
}
