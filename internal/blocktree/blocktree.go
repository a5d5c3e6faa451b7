// Package blocktree implements the structural reads and copy-on-write
// mutations of a block tree. No function mutates its input tree: every
// mutator returns a new root that shares all subtrees off the edited path.
package blocktree

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"pagebuilder/internal/domain"
)

// NewID mints a block id.
func NewID() string {
	return uuid.NewString()
}

// Location describes where a block sits in a tree.
type Location struct {
	Block    domain.Block
	ParentID string // domain.RootID for top-level blocks
	Index    int
	Path     []int // child indexes from the root sequence down to Block
}

// ParentPath returns the path of the sequence holding the block.
func (l Location) ParentPath() []int {
	return l.Path[:len(l.Path)-1]
}

// Locate finds a block by id with a depth-first search.
func Locate(t domain.Tree, id string) (Location, bool) {
	if id == "" || id == domain.RootID {
		return Location{}, false
	}
	var (
		loc   Location
		found bool
	)
	var walk func(seq []domain.Block, parentID string, path []int) bool
	walk = func(seq []domain.Block, parentID string, path []int) bool {
		for i, b := range seq {
			p := append(slices.Clone(path), i)
			if b.ID == id {
				loc = Location{Block: b, ParentID: parentID, Index: i, Path: p}
				return true
			}
			if walk(b.Children, b.ID, p) {
				return true
			}
		}
		return false
	}
	found = walk(t, domain.RootID, nil)
	return loc, found
}

// Contains reports whether id is present in the tree.
func Contains(t domain.Tree, id string) bool {
	_, ok := Locate(t, id)
	return ok
}

// IsAncestor reports whether ancestorID is a proper ancestor of nodeID.
func IsAncestor(t domain.Tree, ancestorID, nodeID string) bool {
	loc, ok := Locate(t, nodeID)
	if !ok {
		return false
	}
	// Every proper prefix of the path addresses an ancestor.
	for depth := len(loc.Path) - 1; depth > 0; depth-- {
		if nodeAt(t, loc.Path[:depth]).ID == ancestorID {
			return true
		}
	}
	return false
}

// Parent returns the block holding id. It reports false for top-level
// blocks and for missing ids.
func Parent(t domain.Tree, id string) (domain.Block, bool) {
	loc, ok := Locate(t, id)
	if !ok || loc.ParentID == domain.RootID {
		return domain.Block{}, false
	}
	return nodeAt(t, loc.ParentPath()), true
}

// Siblings returns the sequence holding id and the index of id in it.
func Siblings(t domain.Tree, id string) ([]domain.Block, int, bool) {
	loc, ok := Locate(t, id)
	if !ok {
		return nil, 0, false
	}
	return childrenAt(t, loc.ParentPath()), loc.Index, true
}

// Children returns the children of id, or the root sequence for domain.RootID.
func Children(t domain.Tree, id string) ([]domain.Block, bool) {
	if id == domain.RootID {
		return t, true
	}
	loc, ok := Locate(t, id)
	if !ok {
		return nil, false
	}
	return loc.Block.Children, true
}

// Walk visits every block depth-first in display order. Returning false
// from fn stops the walk.
func Walk(t domain.Tree, fn func(b domain.Block, parentID string, depth int) bool) {
	var walk func(seq []domain.Block, parentID string, depth int) bool
	walk = func(seq []domain.Block, parentID string, depth int) bool {
		for _, b := range seq {
			if !fn(b, parentID, depth) {
				return false
			}
			if !walk(b.Children, b.ID, depth+1) {
				return false
			}
		}
		return true
	}
	walk(t, domain.RootID, 0)
}

// IDs returns every id in the tree in display order.
func IDs(t domain.Tree) []string {
	var ids []string
	Walk(t, func(b domain.Block, _ string, _ int) bool {
		ids = append(ids, b.ID)
		return true
	})
	return ids
}

// Count returns the number of blocks in the tree.
func Count(t domain.Tree) int {
	return len(IDs(t))
}

// Validate checks that every block has an id and that ids are unique.
func Validate(t domain.Tree) error {
	ids := IDs(t)
	if lo.Contains(ids, "") {
		return errors.New("block without id")
	}
	if dups := lo.FindDuplicates(ids); len(dups) > 0 {
		return fmt.Errorf("duplicate block id %q", dups[0])
	}
	return nil
}

// Repair gives a fresh id to every block whose id is empty or already used
// earlier in pre-order, and reports how many blocks it renamed. Blocks off
// the renamed paths stay shared with t.
func Repair(t domain.Tree) (domain.Tree, int) {
	n := 0
	out := repairSeq(t, make(map[string]bool), &n)
	return out, n
}

func repairSeq(seq []domain.Block, seen map[string]bool, n *int) []domain.Block {
	var out []domain.Block
	for i, b := range seq {
		before := *n
		if b.ID == "" || seen[b.ID] {
			b.ID = NewID()
			*n++
		}
		seen[b.ID] = true
		b.Children = repairSeq(b.Children, seen, n)
		if *n != before {
			if out == nil {
				out = slices.Clone(seq)
			}
			out[i] = b
		}
	}
	if out == nil {
		return seq
	}
	return out
}

// ── path helpers ───────────────────────────────────────────

func nodeAt(seq []domain.Block, path []int) domain.Block {
	b := seq[path[0]]
	for _, i := range path[1:] {
		b = b.Children[i]
	}
	return b
}

func childrenAt(seq []domain.Block, path []int) []domain.Block {
	if len(path) == 0 {
		return seq
	}
	return nodeAt(seq, path).Children
}

// editChildren rebuilds the spine from the root down to the sequence at
// parentPath, replacing that sequence with fn's result. fn must not modify
// its argument in place.
func editChildren(seq []domain.Block, parentPath []int, fn func([]domain.Block) []domain.Block) []domain.Block {
	if len(parentPath) == 0 {
		return fn(seq)
	}
	out := slices.Clone(seq)
	node := out[parentPath[0]]
	node.Children = editChildren(node.Children, parentPath[1:], fn)
	out[parentPath[0]] = node
	return out
}

func insertAt(seq []domain.Block, i int, items ...domain.Block) []domain.Block {
	out := make([]domain.Block, 0, len(seq)+len(items))
	out = append(out, seq[:i]...)
	out = append(out, items...)
	return append(out, seq[i:]...)
}

func removeAt(seq []domain.Block, i int) []domain.Block {
	out := make([]domain.Block, 0, len(seq)-1)
	out = append(out, seq[:i]...)
	return append(out, seq[i+1:]...)
}

func replaceAt(seq []domain.Block, i int, b domain.Block) []domain.Block {
	out := slices.Clone(seq)
	out[i] = b
	return out
}
