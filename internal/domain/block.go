package domain

import "maps"

// BlockType is a namespaced identifier selecting the capability that governs a block.
type BlockType string

const (
	BlockTypeContainer BlockType = "layout/container"
	BlockTypeRow       BlockType = "layout/row"
	BlockTypeColumn    BlockType = "layout/column"
	BlockTypeText      BlockType = "basic/text"
	BlockTypeHeading   BlockType = "basic/heading"
	BlockTypeImage     BlockType = "basic/image"
	BlockTypeButton    BlockType = "basic/button"
	BlockTypeDivider   BlockType = "basic/divider"
	BlockTypeList      BlockType = "basic/list"
	BlockTypeListItem  BlockType = "basic/list-item"
	BlockTypeChart     BlockType = "data/chart"
	BlockTypeTable     BlockType = "data/table"
	BlockTypeTableRow  BlockType = "data/table-row"
	BlockTypeTableCell BlockType = "data/table-cell"
)

// RootID addresses the top-level sequence of a tree.
const RootID = "root"

// RootType is the pseudo-type of the canvas root, used when a capability
// restricts the parents it may be placed in.
const RootType BlockType = "root"

// Block is a node in the document tree.
type Block struct {
	ID       string         `json:"id"`
	Type     BlockType      `json:"type"`
	Content  string         `json:"content,omitempty"`
	Props    map[string]any `json:"props,omitempty"`
	Variants map[string]any `json:"variants,omitempty"`
	Styles   map[string]any `json:"styles,omitempty"`
	Children []Block        `json:"children,omitempty"`
}

// Tree is the ordered root-level sequence of a document.
type Tree []Block

// Prop returns a string prop, or fallback when absent or not a string.
func (b Block) Prop(key, fallback string) string {
	if v, ok := b.Props[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// HasChildSlot reports whether the block has a children sequence, even an empty one.
func (b Block) HasChildSlot() bool {
	return b.Children != nil
}

// StyleSet is the part of a block carried by copy/paste styles.
type StyleSet struct {
	Variants map[string]any `json:"variants,omitempty"`
	Styles   map[string]any `json:"styles,omitempty"`
}

// StyleSet returns a copy of the block's variants and styles.
func (b Block) StyleSet() StyleSet {
	return StyleSet{
		Variants: maps.Clone(b.Variants),
		Styles:   maps.Clone(b.Styles),
	}
}
