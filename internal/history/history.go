// Package history keeps a linear undo/redo sequence of snapshots.
//
// A History holds entries and a cursor; the entry under the cursor is the
// present value. Commits equal to the present are dropped, commits after an
// undo discard the redo tail, and debounced commits collapse a burst of
// edits into the last one.
package history

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// DefaultWindow is the debounce window used when none is configured.
const DefaultWindow = 300 * time.Millisecond

// History is safe for concurrent use. Debounced commits are applied from a
// timer goroutine, so every accessor takes the lock.
type History[T any] struct {
	mu      sync.Mutex
	entries []T
	cursor  int

	limit    int
	window   time.Duration
	equal    func(a, b T) bool
	onChange func(T)

	schedule func(func())
	draft    T
	pending  bool
	gen      uint64 // bumped whenever the pending draft is consumed or dropped
}

// Option configures a History.
type Option[T any] func(*History[T])

// WithLimit caps the number of entries; the oldest are dropped first.
// Zero means unbounded.
func WithLimit[T any](n int) Option[T] {
	return func(h *History[T]) { h.limit = n }
}

// WithWindow sets the debounce window.
func WithWindow[T any](d time.Duration) Option[T] {
	return func(h *History[T]) { h.window = d }
}

// WithEqual replaces the deep-equality check used for no-op suppression.
func WithEqual[T any](eq func(a, b T) bool) Option[T] {
	return func(h *History[T]) { h.equal = eq }
}

// WithOnChange registers fn to receive the present value after every
// transition. fn runs without the lock held and may call back into the
// History.
func WithOnChange[T any](fn func(T)) Option[T] {
	return func(h *History[T]) { h.onChange = fn }
}

// New returns a History holding initial as its only entry.
func New[T any](initial T, opts ...Option[T]) *History[T] {
	h := &History[T]{
		entries: []T{initial},
		window:  DefaultWindow,
		equal: func(a, b T) bool {
			return cmp.Equal(a, b, cmpopts.EquateEmpty())
		},
	}
	for _, o := range opts {
		o(h)
	}
	h.schedule = debounce.New(h.window)
	return h
}

// CommitOption alters how a single commit is applied.
type CommitOption func(*commitConfig)

type commitConfig struct {
	debounce bool
}

// Debounced delays the commit by the history's window. A later commit
// inside the window replaces it.
func Debounced() CommitOption {
	return func(c *commitConfig) { c.debounce = true }
}

// Commit records next as the new present value.
func (h *History[T]) Commit(next T, opts ...CommitOption) {
	h.CommitFunc(func(T) T { return next }, opts...)
}

// CommitFunc records fn applied to the current value. The current value
// includes a pending debounced draft, so chained edits build on each other.
// An immediate commit first records the draft as its own entry.
func (h *History[T]) CommitFunc(fn func(current T) T, opts ...CommitOption) {
	var cfg commitConfig
	for _, o := range opts {
		o(&cfg)
	}

	h.mu.Lock()
	if cfg.debounce {
		next := fn(h.currentLocked())
		h.draft = next
		h.pending = true
		h.gen++
		gen := h.gen
		h.schedule(func() { h.flushGen(gen) })
		h.mu.Unlock()
		return
	}

	flushed := h.flushLocked()
	changed := h.pushLocked(fn(h.entries[h.cursor]))
	present := h.entries[h.cursor]
	h.mu.Unlock()

	if flushed || changed {
		h.notify(present)
	}
}

// Flush applies a pending debounced commit immediately.
func (h *History[T]) Flush() {
	h.mu.Lock()
	changed := h.flushLocked()
	present := h.entries[h.cursor]
	h.mu.Unlock()
	if changed {
		h.notify(present)
	}
}

func (h *History[T]) flushGen(gen uint64) {
	h.mu.Lock()
	if !h.pending || gen != h.gen {
		h.mu.Unlock()
		return
	}
	changed := h.flushLocked()
	present := h.entries[h.cursor]
	h.mu.Unlock()
	if changed {
		h.notify(present)
	}
}

// Undo moves the cursor back one entry. A pending debounced commit is
// applied first so it can itself be undone.
func (h *History[T]) Undo() bool {
	h.mu.Lock()
	h.flushLocked()
	if h.cursor == 0 {
		h.mu.Unlock()
		return false
	}
	h.cursor--
	present := h.entries[h.cursor]
	h.mu.Unlock()
	h.notify(present)
	return true
}

// Redo moves the cursor forward one entry.
func (h *History[T]) Redo() bool {
	h.mu.Lock()
	h.flushLocked()
	if h.cursor == len(h.entries)-1 {
		h.mu.Unlock()
		return false
	}
	h.cursor++
	present := h.entries[h.cursor]
	h.mu.Unlock()
	h.notify(present)
	return true
}

// Reset replaces the whole history with a single entry, discarding any
// pending debounced commit.
func (h *History[T]) Reset(value T) {
	h.mu.Lock()
	h.dropDraftLocked()
	h.entries = []T{value}
	h.cursor = 0
	h.mu.Unlock()
	h.notify(value)
}

// Present returns the entry under the cursor.
func (h *History[T]) Present() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.cursor]
}

// Current returns the pending debounced draft if there is one, otherwise
// the present value.
func (h *History[T]) Current() T {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.currentLocked()
}

// Pending reports whether a debounced commit is waiting.
func (h *History[T]) Pending() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pending
}

func (h *History[T]) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor > 0 || (h.pending && !h.equal(h.draft, h.entries[h.cursor]))
}

func (h *History[T]) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor < len(h.entries)-1
}

// Len returns the number of entries.
func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Cursor returns the index of the present entry.
func (h *History[T]) Cursor() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.cursor
}

// Snapshot returns a copy of the entries and the cursor, flushing any
// pending commit first.
func (h *History[T]) Snapshot() ([]T, int) {
	h.mu.Lock()
	changed := h.flushLocked()
	entries := make([]T, len(h.entries))
	copy(entries, h.entries)
	cursor := h.cursor
	present := h.entries[h.cursor]
	h.mu.Unlock()
	if changed {
		h.notify(present)
	}
	return entries, cursor
}

// Restore replaces the history with previously snapshotted entries.
func (h *History[T]) Restore(entries []T, cursor int) error {
	if len(entries) == 0 {
		return errors.New("restore history: no entries")
	}
	if cursor < 0 || cursor >= len(entries) {
		return fmt.Errorf("restore history: cursor %d out of range [0,%d)", cursor, len(entries))
	}
	h.mu.Lock()
	h.dropDraftLocked()
	h.entries = make([]T, len(entries))
	copy(h.entries, entries)
	h.cursor = cursor
	h.trimLocked()
	present := h.entries[h.cursor]
	h.mu.Unlock()
	h.notify(present)
	return nil
}

// ── locked helpers ─────────────────────────────────────────

func (h *History[T]) currentLocked() T {
	if h.pending {
		return h.draft
	}
	return h.entries[h.cursor]
}

func (h *History[T]) dropDraftLocked() {
	if !h.pending {
		return
	}
	var zero T
	h.draft = zero
	h.pending = false
	h.gen++
	// Replace the outstanding timer task so nothing stale fires later.
	h.schedule(func() {})
}

func (h *History[T]) flushLocked() bool {
	if !h.pending {
		return false
	}
	next := h.draft
	h.dropDraftLocked()
	return h.pushLocked(next)
}

func (h *History[T]) pushLocked(next T) bool {
	if h.equal(next, h.entries[h.cursor]) {
		return false
	}
	h.entries = append(h.entries[:h.cursor+1:h.cursor+1], next)
	h.cursor = len(h.entries) - 1
	h.trimLocked()
	return true
}

func (h *History[T]) trimLocked() {
	if h.limit <= 0 || len(h.entries) <= h.limit {
		return
	}
	drop := len(h.entries) - h.limit
	if drop > h.cursor {
		drop = h.cursor
	}
	h.entries = h.entries[drop:]
	h.cursor -= drop
}

func (h *History[T]) notify(present T) {
	if h.onChange != nil {
		h.onChange(present)
	}
}
