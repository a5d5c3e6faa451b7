// Package editor binds the tree library, the history and the drag session
// into the action surface used by front ends and agents.
//
// Every action that changes the tree commits through the History, so undo
// and redo cover all edits. Selection, the style clipboard and the drag
// session are transient and never enter the history.
package editor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/events"
	"pagebuilder/internal/history"
	"pagebuilder/internal/plugins"
)

// Capabilities is what the editor needs from the capability registry.
type Capabilities interface {
	domain.Capabilities
	Defaults(t domain.BlockType) (domain.Block, error)
	CanNest(parentType, childType domain.BlockType) error
	CanNestTree(parentType domain.BlockType, root domain.Block) error
}

// Options configures an Editor. Zero values fall back to sensible defaults.
type Options struct {
	PageID       string
	Tree         domain.Tree
	Caps         Capabilities
	Measure      dnd.Measurer
	Emitter      events.Emitter
	Logger       zerolog.Logger
	Context      context.Context
	Debounce     time.Duration
	HistoryLimit int

	// OnChange observes every new present tree, including debounced ones.
	OnChange func(domain.Tree)
}

// Editor owns one page's tree and its transient editing state.
// It is safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	pageID   string
	ctx      context.Context
	caps     Capabilities
	resolver *dnd.Resolver
	hist     *history.History[domain.Tree]
	emitter  events.Emitter
	log      zerolog.Logger
	onChange func(domain.Tree)

	selected  string
	drag      *dnd.Session
	clipboard *domain.StyleSet
}

// New creates an editor over opts.Tree.
func New(opts Options) *Editor {
	e := &Editor{
		pageID:   opts.PageID,
		ctx:      opts.Context,
		caps:     opts.Caps,
		emitter:  opts.Emitter,
		log:      opts.Logger.With().Str("pageId", opts.PageID).Logger(),
		onChange: opts.OnChange,
	}
	if e.ctx == nil {
		e.ctx = context.Background()
	}
	if e.caps == nil {
		e.caps = plugins.Builtin()
	}
	if e.emitter == nil {
		e.emitter = events.Nop{}
	}
	window := opts.Debounce
	if window <= 0 {
		window = history.DefaultWindow
	}

	tree := opts.Tree
	if tree == nil {
		tree = domain.Tree{}
	}
	e.hist = history.New(tree,
		history.WithWindow[domain.Tree](window),
		history.WithLimit[domain.Tree](opts.HistoryLimit),
		history.WithOnChange(e.changed),
	)
	e.resolver = &dnd.Resolver{Caps: e.caps, Measure: opts.Measure}
	e.drag = dnd.NewSession(e.resolver)
	return e
}

// PageID returns the id of the edited page.
func (e *Editor) PageID() string { return e.pageID }

// Tree returns the current tree, including a pending debounced edit.
func (e *Editor) Tree() domain.Tree {
	return e.hist.Current()
}

// History exposes the underlying history for persistence.
func (e *Editor) History() *history.History[domain.Tree] {
	return e.hist
}

// SetMeasurer replaces the source of live block rects.
func (e *Editor) SetMeasurer(m dnd.Measurer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolver.Measure = m
}

// State returns a snapshot for the rendering layer.
func (e *Editor) State() domain.PageState {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := domain.PageState{
		PageID:     e.pageID,
		Tree:       e.hist.Current(),
		SelectedID: e.selected,
		CanUndo:    e.hist.CanUndo(),
		CanRedo:    e.hist.CanRedo(),
	}
	if e.drag.Active() {
		s.DraggingID = e.drag.Payload().BlockID
		if d, ok := e.drag.Decision(); ok {
			s.Indicator = d.Indicator()
		}
	}
	return s
}

// ── history ────────────────────────────────────────────────

// Undo steps back one edit. It reports false at the start of history.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.hist.Undo()
	e.pruneSelection()
	return ok
}

// Redo steps forward one edit. It reports false at the end of history.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.hist.Redo()
	e.pruneSelection()
	return ok
}

// CanUndo reports whether Undo would do anything.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether Redo would do anything.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// ResetHistory loads t as the only history entry. It is the one path that
// replaces the tree without an undoable commit.
func (e *Editor) ResetHistory(t domain.Tree) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t == nil {
		t = domain.Tree{}
	}
	e.drag.Cancel()
	e.hist.Reset(t)
	e.pruneSelection()
}

// Flush applies a pending debounced edit immediately.
func (e *Editor) Flush() {
	e.hist.Flush()
}

func (e *Editor) commit(next domain.Tree, debounce bool) {
	if debounce {
		e.hist.Commit(next, history.Debounced())
		return
	}
	e.hist.Commit(next)
}

// changed runs after every history transition, without the history lock.
// It must not take e.mu: commits happen while e.mu is held.
func (e *Editor) changed(t domain.Tree) {
	e.emitter.Emit(e.ctx, events.EditorChanged, domain.PageState{
		PageID:  e.pageID,
		Tree:    t,
		CanUndo: e.hist.CanUndo(),
		CanRedo: e.hist.CanRedo(),
	})
	if e.onChange != nil {
		e.onChange(t)
	}
}

// ── selection ──────────────────────────────────────────────

// Selected returns the selected block id, or "".
func (e *Editor) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Select selects id. An empty id clears the selection.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if id != "" && !blocktree.Contains(e.hist.Current(), id) {
		return notFound(id)
	}
	e.setSelected(id)
	return nil
}

// SelectParent selects the parent of id. Top-level blocks have no parent
// to select and leave the selection unchanged.
func (e *Editor) SelectParent(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	parent, ok := blocktree.Parent(e.hist.Current(), id)
	if !ok {
		return false
	}
	e.setSelected(parent.ID)
	return true
}

// SelectSibling selects the previous or next sibling of id. It reports
// false at either end of the sequence.
func (e *Editor) SelectSibling(id string, dir domain.Direction) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	siblings, i, ok := blocktree.Siblings(e.hist.Current(), id)
	if !ok {
		return false
	}
	j := i + dir.Offset()
	if j < 0 || j >= len(siblings) {
		return false
	}
	e.setSelected(siblings[j].ID)
	return true
}

func (e *Editor) setSelected(id string) {
	if e.selected == id {
		return
	}
	e.selected = id
	e.emitter.Emit(e.ctx, events.EditorSelection, id)
}

// pruneSelection clears a selection that no longer exists in the tree.
func (e *Editor) pruneSelection() {
	if e.selected != "" && !blocktree.Contains(e.hist.Current(), e.selected) {
		e.setSelected("")
	}
}
