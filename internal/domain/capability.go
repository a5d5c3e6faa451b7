package domain

// Capability describes how a block type behaves inside the tree.
type Capability struct {
	Type        BlockType
	Label       string
	IsContainer bool

	// AllowedChildren restricts the types a container accepts. Nil accepts any.
	AllowedChildren []BlockType
	// AllowedParents restricts where this type may be placed. Nil allows any.
	AllowedParents []BlockType

	// Axis computes the layout axis from the container's current state.
	// Nil means a fixed column axis.
	Axis func(b Block) Axis

	// Defaults builds the initial data of a new block, without an id.
	Defaults func() Block
}

// LayoutAxis returns the axis of b according to the capability.
func (c Capability) LayoutAxis(b Block) Axis {
	if c.Axis == nil {
		return AxisColumn
	}
	if a := c.Axis(b); a == AxisRow {
		return AxisRow
	}
	return AxisColumn
}

// Capabilities resolves the capability of a block type.
type Capabilities interface {
	Lookup(t BlockType) (Capability, bool)
}
