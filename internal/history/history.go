// internal/history/history.go
package history

import (
	"time"

	"github.com/badgeforge/badgeforge/internal/graph"
	"github.com/badgeforge/badgeforge/internal/types"
)

/*
 * Bounded undo/redo history.
 *
 * Ring buffer of immutable graph snapshots with a cursor at the current
 * position. Two entry points:
 *   - Record: debounced; calls within the coalescing window of the
 *     previous accepted call are dropped, so a burst of change events
 *     from one continuous gesture collapses into a single snapshot.
 *   - Checkpoint: explicit edit-transaction boundary signaled by the
 *     editor for discrete logical operations (add/remove/connect,
 *     completed drag). Bypasses the debounce window.
 *
 * An accepted push truncates any entries after the cursor (a redo branch
 * is discarded once a new edit diverges from it), appends, advances the
 * cursor, and evicts the oldest entry past capacity.
 *
 * Snapshots are deep copies both on the way in and on the way out, so a
 * caller can never mutate history state by reference.
 *
 * The clock is injectable; tests drive the debounce window without
 * sleeping.
 */

// Snapshot is an immutable capture of the full graph state.
type Snapshot struct {
	Graph   graph.Graph
	TakenAt time.Time
}

// History maintains the bounded snapshot buffer.
type History struct {
	entries  []Snapshot
	cursor   int
	capacity int
	debounce time.Duration
	lastPush time.Time
	now      func() time.Time
}

// New creates a history with the given capacity and debounce window.
// Non-positive arguments fall back to the package defaults.
func New(capacity int, debounce time.Duration) *History {
	if capacity <= 0 {
		capacity = types.HistoryCapacity
	}
	if debounce <= 0 {
		debounce = types.HistoryDebounce
	}
	return &History{
		entries:  make([]Snapshot, 0, capacity),
		cursor:   -1,
		capacity: capacity,
		debounce: debounce,
		now:      time.Now,
	}
}

// Record pushes a debounced snapshot. Returns false when the call falls
// inside the coalescing window of the previous accepted push (the
// snapshot is dropped, not queued).
func (h *History) Record(g *graph.Graph) bool {
	now := h.now()
	if !h.lastPush.IsZero() && now.Sub(h.lastPush) < h.debounce {
		return false
	}
	h.push(g, now)
	return true
}

// Checkpoint pushes a snapshot at an explicit edit-transaction boundary,
// bypassing the debounce window. The very first graph state on editor
// mount goes through Checkpoint so a single undo from the first real edit
// returns to the initial state, not to an empty graph.
func (h *History) Checkpoint(g *graph.Graph) {
	h.push(g, h.now())
}

func (h *History) push(g *graph.Graph, now time.Time) {
	// Divergent edit discards the abandoned redo branch.
	h.entries = h.entries[:h.cursor+1]
	h.entries = append(h.entries, Snapshot{Graph: g.Clone(), TakenAt: now})
	h.cursor++

	if len(h.entries) > h.capacity {
		h.entries = h.entries[1:]
		h.cursor--
	}
	h.lastPush = now
}

// Undo moves the cursor back one entry and returns a deep copy of that
// snapshot's graph. No-op at the first entry.
func (h *History) Undo() (graph.Graph, bool) {
	if !h.CanUndo() {
		return graph.Graph{}, false
	}
	h.cursor--
	g := h.entries[h.cursor].Graph.Clone()
	return g, true
}

// Redo moves the cursor forward one entry and returns a deep copy.
// No-op at the last entry.
func (h *History) Redo() (graph.Graph, bool) {
	if !h.CanRedo() {
		return graph.Graph{}, false
	}
	h.cursor++
	g := h.entries[h.cursor].Graph.Clone()
	return g, true
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.entries)
}
