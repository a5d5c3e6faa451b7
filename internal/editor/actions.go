package editor

import (
	"errors"
	"fmt"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
)

// ErrEmptyClipboard is returned by PasteStyles before any CopyStyles.
var ErrEmptyClipboard = errors.New("style clipboard is empty")

func notFound(id string) error {
	return fmt.Errorf("block %q: %w", id, domain.ErrNotFound)
}

// Update merges patch into id. With debounce set, a burst of updates
// produces a single history entry.
func (e *Editor) Update(id string, patch blocktree.Patch, debounce bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	loc, ok := blocktree.Locate(t, id)
	if !ok {
		return notFound(id)
	}
	if patch.Type != nil && *patch.Type != loc.Block.Type {
		parentType := domain.RootType
		if loc.ParentID != domain.RootID {
			parent, _ := blocktree.Parent(t, id)
			parentType = parent.Type
		}
		if err := e.caps.CanNest(parentType, *patch.Type); err != nil {
			return fmt.Errorf("retype block: %w", err)
		}
	}
	e.commit(blocktree.Update(t, id, patch), debounce)
	return nil
}

// Insert places b relative to targetID. A block without an id, or whose
// ids collide with the tree, is cloned with fresh ids first. It returns the
// id of the inserted block.
func (e *Editor) Insert(targetID string, b domain.Block, pos domain.Position) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insertLocked(targetID, b, pos)
}

// InsertNew instantiates a block of type bt from its defaults and inserts it.
func (e *Editor) InsertNew(targetID string, bt domain.BlockType, pos domain.Position) (string, error) {
	b, err := e.caps.Defaults(bt)
	if err != nil {
		return "", fmt.Errorf("new block: %w", err)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insertLocked(targetID, b, pos)
}

// InsertPattern inserts a fresh-id copy of a saved subtree.
func (e *Editor) InsertPattern(targetID string, pattern domain.Block, pos domain.Position) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.insertLocked(targetID, blocktree.Clone(pattern), pos)
}

func (e *Editor) insertLocked(targetID string, b domain.Block, pos domain.Position) (string, error) {
	t := e.hist.Current()
	if b.ID == "" || collides(t, b) {
		b = blocktree.Clone(b)
	}
	if err := blocktree.Validate(domain.Tree{b}); err != nil {
		b = blocktree.Clone(b)
	}
	parentType, err := e.placement(t, targetID, pos)
	if err != nil {
		return "", err
	}
	if err := e.caps.CanNestTree(parentType, b); err != nil {
		e.log.Debug().Err(err).Str("targetId", targetID).Msg("insert rejected")
		return "", fmt.Errorf("insert block: %w", err)
	}
	e.commit(blocktree.Insert(t, targetID, b, pos), false)
	e.setSelected(b.ID)
	return b.ID, nil
}

// Remove deletes id and its subtree, clearing the selection when it falls
// inside the removed subtree.
func (e *Editor) Remove(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	if !blocktree.Contains(t, id) {
		return notFound(id)
	}
	e.commit(blocktree.Remove(t, id), false)
	e.pruneSelection()
	return nil
}

// Move relocates id relative to targetID. Moving a block into its own
// subtree, or next to a parent that does not accept it, fails with the
// tree unchanged.
func (e *Editor) Move(id, targetID string, pos domain.Position) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moveLocked(id, targetID, pos)
}

func (e *Editor) moveLocked(id, targetID string, pos domain.Position) error {
	t := e.hist.Current()
	loc, ok := blocktree.Locate(t, id)
	if !ok {
		return notFound(id)
	}
	if id == targetID || blocktree.IsAncestor(t, id, targetID) {
		return fmt.Errorf("move %q into itself: %w", id, domain.ErrIllegalMove)
	}
	parentType, err := e.placement(t, targetID, pos)
	if err != nil {
		return err
	}
	if err := e.caps.CanNest(parentType, loc.Block.Type); err != nil {
		e.log.Debug().Err(err).Str("blockId", id).Str("targetId", targetID).Msg("move rejected")
		return fmt.Errorf("move block: %w", err)
	}
	next, ok := blocktree.Move(t, id, targetID, pos)
	if !ok {
		return fmt.Errorf("move %q: %w", id, domain.ErrIllegalMove)
	}
	e.commit(next, false)
	return nil
}

// Swap exchanges id with its previous or next sibling. At either end of
// the sequence it does nothing.
func (e *Editor) Swap(id string, dir domain.Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	if !blocktree.Contains(t, id) {
		return notFound(id)
	}
	e.commit(blocktree.Swap(t, id, dir), false)
	return nil
}

// Duplicate inserts a deep copy of id right after it and selects the copy.
func (e *Editor) Duplicate(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, cloneID := blocktree.Duplicate(e.hist.Current(), id)
	if cloneID == "" {
		return "", notFound(id)
	}
	e.commit(next, false)
	e.setSelected(cloneID)
	return cloneID, nil
}

// CopyStyles copies the variants and styles of id to the clipboard.
func (e *Editor) CopyStyles(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	loc, ok := blocktree.Locate(e.hist.Current(), id)
	if !ok {
		return notFound(id)
	}
	s := loc.Block.StyleSet()
	e.clipboard = &s
	return nil
}

// PasteStyles merges the clipboard's variants and styles into id.
func (e *Editor) PasteStyles(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clipboard == nil {
		return ErrEmptyClipboard
	}
	t := e.hist.Current()
	if !blocktree.Contains(t, id) {
		return notFound(id)
	}
	e.commit(blocktree.Update(t, id, blocktree.Patch{
		Variants: e.clipboard.Variants,
		Styles:   e.clipboard.Styles,
	}), false)
	return nil
}

// Clipboard returns the copied style set, if any.
func (e *Editor) Clipboard() (domain.StyleSet, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.clipboard == nil {
		return domain.StyleSet{}, false
	}
	return *e.clipboard, true
}

// ── lists ──────────────────────────────────────────────────

// AddListItem adds an item after anchorID, or at the end when anchorID is
// a list. The new item is selected.
func (e *Editor) AddListItem(anchorID, content string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	next, id := blocktree.AddListItem(e.hist.Current(), anchorID, content)
	if id == "" {
		return "", notFound(anchorID)
	}
	e.commit(next, false)
	e.setSelected(id)
	return id, nil
}

// RemoveListItem removes an item, hoisting its nested items, and moves the
// selection to the previous sibling.
func (e *Editor) RemoveListItem(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	if !isListItem(t, id) {
		return "", notFound(id)
	}
	next, prevID := blocktree.RemoveListItem(t, id)
	e.commit(next, false)
	if prevID != "" {
		e.setSelected(prevID)
	} else {
		e.pruneSelection()
	}
	return prevID, nil
}

// IndentListItem nests id under its previous sibling. It does nothing for
// the first item of a list.
func (e *Editor) IndentListItem(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	if !isListItem(t, id) {
		return notFound(id)
	}
	e.commit(blocktree.IndentListItem(t, id), false)
	return nil
}

// OutdentListItem moves id one nesting level up. It does nothing at the
// outermost level.
func (e *Editor) OutdentListItem(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	if !isListItem(t, id) {
		return notFound(id)
	}
	e.commit(blocktree.OutdentListItem(t, id), false)
	return nil
}

// UpdateListItemContent replaces the text of an item.
func (e *Editor) UpdateListItemContent(id, content string, debounce bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.hist.Current()
	if !isListItem(t, id) {
		return notFound(id)
	}
	e.commit(blocktree.UpdateListItemContent(t, id, content), debounce)
	return nil
}

// ── helpers ────────────────────────────────────────────────

// placement validates a target and returns the type of the block that
// would become the parent.
func (e *Editor) placement(t domain.Tree, targetID string, pos domain.Position) (domain.BlockType, error) {
	norm := pos.Normalize()
	if norm == "" {
		return "", fmt.Errorf("position %q: %w", pos, domain.ErrIllegalMove)
	}
	if targetID == domain.RootID {
		return domain.RootType, nil
	}
	loc, ok := blocktree.Locate(t, targetID)
	if !ok {
		return "", notFound(targetID)
	}
	if norm == domain.PositionInner {
		return loc.Block.Type, nil
	}
	if loc.ParentID == domain.RootID {
		return domain.RootType, nil
	}
	parent, _ := blocktree.Parent(t, targetID)
	return parent.Type, nil
}

func collides(t domain.Tree, b domain.Block) bool {
	existing := make(map[string]struct{})
	blocktree.Walk(t, func(x domain.Block, _ string, _ int) bool {
		existing[x.ID] = struct{}{}
		return true
	})
	clash := false
	blocktree.Walk(domain.Tree{b}, func(x domain.Block, _ string, _ int) bool {
		_, clash = existing[x.ID]
		return !clash
	})
	return clash
}

func isListItem(t domain.Tree, id string) bool {
	loc, ok := blocktree.Locate(t, id)
	return ok && loc.Block.Type == domain.BlockTypeListItem
}
