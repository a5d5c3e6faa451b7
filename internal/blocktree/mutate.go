package blocktree

import (
	"maps"
	"slices"

	"pagebuilder/internal/domain"
)

// Patch is a partial update of a block. Nil fields are left untouched;
// the three bags are merged key by key rather than replaced.
type Patch struct {
	Type     *domain.BlockType
	Content  *string
	Props    map[string]any
	Variants map[string]any
	Styles   map[string]any
	Children []domain.Block // replaces the children when non-nil
}

// Apply returns b with the patch merged in.
func (p Patch) Apply(b domain.Block) domain.Block {
	if p.Type != nil {
		b.Type = *p.Type
	}
	if p.Content != nil {
		b.Content = *p.Content
	}
	b.Props = mergeBag(b.Props, p.Props)
	b.Variants = mergeBag(b.Variants, p.Variants)
	b.Styles = mergeBag(b.Styles, p.Styles)
	if p.Children != nil {
		b.Children = p.Children
	}
	return b
}

func mergeBag(dst, src map[string]any) map[string]any {
	if len(src) == 0 {
		return dst
	}
	out := maps.Clone(dst)
	if out == nil {
		out = make(map[string]any, len(src))
	}
	maps.Copy(out, src)
	return out
}

// Insert places node relative to targetID. domain.RootID appends to the
// top-level sequence. An unresolvable target or position returns t unchanged.
func Insert(t domain.Tree, targetID string, node domain.Block, pos domain.Position) domain.Tree {
	out, ok := insert(t, targetID, node, pos)
	if !ok {
		return t
	}
	return out
}

func insert(t domain.Tree, targetID string, node domain.Block, pos domain.Position) (domain.Tree, bool) {
	if targetID == domain.RootID {
		return append(slices.Clone(t), node), true
	}
	loc, ok := Locate(t, targetID)
	if !ok {
		return t, false
	}
	switch pos.Normalize() {
	case domain.PositionInner:
		// The children slot is created here and nowhere else.
		return editChildren(t, loc.Path, func(c []domain.Block) []domain.Block {
			return insertAt(c, len(c), node)
		}), true
	case domain.PositionBefore:
		return editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
			return insertAt(c, loc.Index, node)
		}), true
	case domain.PositionAfter:
		return editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
			return insertAt(c, loc.Index+1, node)
		}), true
	default:
		return t, false
	}
}

// Remove detaches id and its whole subtree. A missing id returns t unchanged.
func Remove(t domain.Tree, id string) domain.Tree {
	loc, ok := Locate(t, id)
	if !ok {
		return t
	}
	return editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
		return removeAt(c, loc.Index)
	})
}

// Update merges patch into the block id. Only the path from the root to
// the block is reallocated.
func Update(t domain.Tree, id string, patch Patch) domain.Tree {
	loc, ok := Locate(t, id)
	if !ok {
		return t
	}
	return editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
		return replaceAt(c, loc.Index, patch.Apply(loc.Block))
	})
}

// Swap exchanges id with its previous or next sibling. It is a no-op at
// either end of the sequence.
func Swap(t domain.Tree, id string, dir domain.Direction) domain.Tree {
	loc, ok := Locate(t, id)
	if !ok {
		return t
	}
	siblings := childrenAt(t, loc.ParentPath())
	j := loc.Index + dir.Offset()
	if j < 0 || j >= len(siblings) {
		return t
	}
	return editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
		out := slices.Clone(c)
		out[loc.Index], out[j] = out[j], out[loc.Index]
		return out
	})
}

// Move relocates activeID relative to targetID. It reports false, leaving
// nothing to commit, when either id is missing, when the ids are equal, or
// when targetID lies inside activeID's subtree.
func Move(t domain.Tree, activeID, targetID string, pos domain.Position) (domain.Tree, bool) {
	if activeID == targetID || IsAncestor(t, activeID, targetID) {
		return nil, false
	}
	loc, ok := Locate(t, activeID)
	if !ok {
		return nil, false
	}
	out, ok := insert(Remove(t, activeID), targetID, loc.Block, pos)
	if !ok {
		return nil, false
	}
	return out, true
}

// Duplicate inserts a fresh-id clone of id right after it and returns the
// clone's id. A missing id returns t unchanged and an empty id.
func Duplicate(t domain.Tree, id string) (domain.Tree, string) {
	loc, ok := Locate(t, id)
	if !ok {
		return t, ""
	}
	clone := Clone(loc.Block)
	out := editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
		return insertAt(c, loc.Index+1, clone)
	})
	return out, clone.ID
}

// Clone deep-copies b, minting a new id for it and every descendant.
func Clone(b domain.Block) domain.Block {
	b.ID = NewID()
	b.Props = maps.Clone(b.Props)
	b.Variants = maps.Clone(b.Variants)
	b.Styles = maps.Clone(b.Styles)
	if b.Children != nil {
		children := make([]domain.Block, len(b.Children))
		for i, c := range b.Children {
			children[i] = Clone(c)
		}
		b.Children = children
	}
	return b
}
