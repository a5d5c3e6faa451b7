package dnd

import (
	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
)

// PayloadKind tells what is being dragged.
type PayloadKind string

const (
	PayloadExisting PayloadKind = "existing" // a block already in the tree
	PayloadNew      PayloadKind = "new"      // a new block of a type, from the palette
	PayloadPattern  PayloadKind = "pattern"  // a saved subtree
)

// Payload describes the dragged item.
type Payload struct {
	Kind    PayloadKind      `json:"kind"`
	BlockID string           `json:"blockId,omitempty"`
	Type    domain.BlockType `json:"type,omitempty"`
	Pattern *domain.Block    `json:"pattern,omitempty"`
}

// Existing drags a block already in the tree.
func Existing(id string) Payload {
	return Payload{Kind: PayloadExisting, BlockID: id}
}

// NewBlock drags a block of type t that does not exist yet.
func NewBlock(t domain.BlockType) Payload {
	return Payload{Kind: PayloadNew, Type: t}
}

// FromPattern drags a copy of a saved subtree.
func FromPattern(b domain.Block) Payload {
	return Payload{Kind: PayloadPattern, Type: b.Type, Pattern: &b}
}

// DraggedType resolves the block type carried by p.
func (p Payload) DraggedType(t domain.Tree) (domain.BlockType, bool) {
	switch p.Kind {
	case PayloadExisting:
		loc, ok := blocktree.Locate(t, p.BlockID)
		if !ok {
			return "", false
		}
		return loc.Block.Type, true
	case PayloadNew:
		return p.Type, p.Type != ""
	case PayloadPattern:
		if p.Pattern == nil {
			return "", false
		}
		return p.Pattern.Type, true
	default:
		return "", false
	}
}

// draggedID is the id to exclude from sibling slots.
func (p Payload) draggedID() string {
	if p.Kind == PayloadExisting {
		return p.BlockID
	}
	return ""
}
