package editor

import (
	"fmt"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/events"
)

// ─────────────────────────────────────────────────────────────
// Drag lifecycle
// ─────────────────────────────────────────────────────────────

// OnDragStart begins a drag gesture carrying p.
func (e *Editor) OnDragStart(p dnd.Payload) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := p.DraggedType(e.hist.Current()); !ok {
		if p.Kind == dnd.PayloadExisting {
			return notFound(p.BlockID)
		}
		return fmt.Errorf("drag payload %q without a block type: %w", p.Kind, domain.ErrIncompatible)
	}
	e.hist.Flush()
	e.drag.Start(p)
	e.emitIndicator(nil)
	return nil
}

// OnDragMove resolves the drop decision for the current pointer feedback.
// It returns nil when no legal drop exists at this position.
func (e *Editor) OnDragMove(u dnd.Update) *domain.DropIndicator {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.drag.Active() {
		return nil
	}
	var ind *domain.DropIndicator
	if d, ok := e.drag.Move(e.hist.Current(), u); ok {
		ind = d.Indicator()
	}
	e.emitIndicator(ind)
	return ind
}

// OnDragEnd commits the last decision and returns the id of the dropped
// block. Without a decision the gesture is abandoned and the tree is left
// alone; the returned error then wraps domain.ErrNoDecision.
func (e *Editor) OnDragEnd() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, d, ok := e.drag.End()
	e.emitIndicator(nil)
	if !ok {
		return "", domain.ErrNoDecision
	}

	switch p.Kind {
	case dnd.PayloadExisting:
		if err := e.moveLocked(p.BlockID, d.TargetID, d.Position); err != nil {
			return "", err
		}
		e.setSelected(p.BlockID)
		return p.BlockID, nil
	case dnd.PayloadNew:
		b, err := e.caps.Defaults(p.Type)
		if err != nil {
			return "", fmt.Errorf("new block: %w", err)
		}
		return e.insertLocked(d.TargetID, b, d.Position)
	case dnd.PayloadPattern:
		if p.Pattern == nil {
			return "", domain.ErrNoDecision
		}
		return e.insertLocked(d.TargetID, blocktree.Clone(*p.Pattern), d.Position)
	default:
		return "", domain.ErrNoDecision
	}
}

// OnDragCancel abandons the gesture without touching the tree.
func (e *Editor) OnDragCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.drag.Cancel()
	e.emitIndicator(nil)
}

// Dragging reports whether a gesture is in progress.
func (e *Editor) Dragging() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drag.Active()
}

func (e *Editor) emitIndicator(ind *domain.DropIndicator) {
	e.emitter.Emit(e.ctx, events.EditorDropIndicator, ind)
}
