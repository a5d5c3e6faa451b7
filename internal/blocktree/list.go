package blocktree

import (
	"maps"
	"slices"

	"pagebuilder/internal/domain"
)

// List blocks hold list-items; a list-item may hold a single nested list
// among its children.

func isList(b domain.Block) bool { return b.Type == domain.BlockTypeList }
func isItem(b domain.Block) bool { return b.Type == domain.BlockTypeListItem }

func nestedListIndex(item domain.Block) int {
	return slices.IndexFunc(item.Children, isList)
}

func newList(like domain.Block, items []domain.Block) domain.Block {
	return domain.Block{
		ID:       NewID(),
		Type:     domain.BlockTypeList,
		Props:    maps.Clone(like.Props),
		Children: items,
	}
}

// AddListItem creates an item with content. Anchored on a list it appends
// to the list; anchored on an item it inserts right after that item.
func AddListItem(t domain.Tree, anchorID, content string) (domain.Tree, string) {
	loc, ok := Locate(t, anchorID)
	if !ok {
		return t, ""
	}
	item := domain.Block{ID: NewID(), Type: domain.BlockTypeListItem, Content: content}
	switch {
	case isList(loc.Block):
		return Insert(t, anchorID, item, domain.PositionInner), item.ID
	case isItem(loc.Block):
		return Insert(t, anchorID, item, domain.PositionAfter), item.ID
	default:
		return t, ""
	}
}

// RemoveListItem removes an item, hoisting the items of its nested list
// into its place. It returns the id of the previous sibling, or "" when
// the item was first, so the caller can move focus there.
func RemoveListItem(t domain.Tree, itemID string) (domain.Tree, string) {
	loc, ok := Locate(t, itemID)
	if !ok || !isItem(loc.Block) {
		return t, ""
	}
	var hoisted []domain.Block
	if k := nestedListIndex(loc.Block); k >= 0 {
		hoisted = loc.Block.Children[k].Children
	}
	prevID := ""
	if loc.Index > 0 {
		prevID = childrenAt(t, loc.ParentPath())[loc.Index-1].ID
	}
	out := editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
		return insertAt(removeAt(c, loc.Index), loc.Index, hoisted...)
	})
	return out, prevID
}

// IndentListItem makes the item the last entry of a nested list under its
// preceding sibling, creating that list when needed. The first item of a
// list cannot be indented.
func IndentListItem(t domain.Tree, itemID string) domain.Tree {
	loc, ok := Locate(t, itemID)
	if !ok || !isItem(loc.Block) || loc.Index == 0 || loc.ParentID == domain.RootID {
		return t
	}
	parent := nodeAt(t, loc.ParentPath())
	prev := parent.Children[loc.Index-1]
	if !isList(parent) || !isItem(prev) {
		return t
	}

	prev.Children = slices.Clone(prev.Children)
	if k := nestedListIndex(prev); k >= 0 {
		nested := prev.Children[k]
		nested.Children = insertAt(nested.Children, len(nested.Children), loc.Block)
		prev.Children[k] = nested
	} else {
		prev.Children = append(prev.Children, newList(parent, []domain.Block{loc.Block}))
	}

	return editChildren(t, loc.ParentPath(), func(c []domain.Block) []domain.Block {
		return removeAt(replaceAt(c, loc.Index-1, prev), loc.Index)
	})
}

// OutdentListItem moves the item one level up, right after the list-item
// that owns its list. Items that followed it move, in order, into the
// item's own nested list. It is a no-op unless the grandparent is a
// list-item. A nested list left empty is removed.
func OutdentListItem(t domain.Tree, itemID string) domain.Tree {
	loc, ok := Locate(t, itemID)
	if !ok || !isItem(loc.Block) || len(loc.Path) < 3 {
		return t
	}
	n := len(loc.Path)
	listPath, ownerPath := loc.Path[:n-1], loc.Path[:n-2]
	list, owner := nodeAt(t, listPath), nodeAt(t, ownerPath)
	if !isList(list) || !isItem(owner) {
		return t
	}

	remaining := slices.Clone(list.Children[:loc.Index])
	trailing := slices.Clone(list.Children[loc.Index+1:])

	item := loc.Block
	if len(trailing) > 0 {
		item.Children = slices.Clone(item.Children)
		if k := nestedListIndex(item); k >= 0 {
			nested := item.Children[k]
			nested.Children = insertAt(nested.Children, len(nested.Children), trailing...)
			item.Children[k] = nested
		} else {
			item.Children = append(item.Children, newList(list, trailing))
		}
	}

	listIdx := loc.Path[n-2]
	if len(remaining) == 0 {
		owner.Children = removeAt(owner.Children, listIdx)
	} else {
		list.Children = remaining
		owner.Children = replaceAt(owner.Children, listIdx, list)
	}

	ownerIdx := ownerPath[len(ownerPath)-1]
	return editChildren(t, ownerPath[:len(ownerPath)-1], func(c []domain.Block) []domain.Block {
		return insertAt(replaceAt(c, ownerIdx, owner), ownerIdx+1, item)
	})
}

// UpdateListItemContent replaces the inline content of an item.
func UpdateListItemContent(t domain.Tree, itemID, content string) domain.Tree {
	loc, ok := Locate(t, itemID)
	if !ok || !isItem(loc.Block) {
		return t
	}
	return Update(t, itemID, Patch{Content: &content})
}
