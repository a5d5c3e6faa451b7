package plugins

import "pagebuilder/internal/domain"

// ─────────────────────────────────────────────────────────────
// Built-in block kinds
// ─────────────────────────────────────────────────────────────

// Builtin returns a registry holding every built-in block kind.
func Builtin() *Registry {
	r := NewRegistry()
	RegisterBuiltins(r)
	return r
}

// RegisterBuiltins installs the built-in block kinds into r.
func RegisterBuiltins(r *Registry) {
	for _, c := range builtins() {
		r.Register(c)
	}
}

func fixed(a domain.Axis) func(domain.Block) domain.Axis {
	return func(domain.Block) domain.Axis { return a }
}

// directionAxis reads the flex direction a container is configured with.
func directionAxis(b domain.Block) domain.Axis {
	switch b.Prop("direction", "column") {
	case "row", "row-reverse":
		return domain.AxisRow
	default:
		return domain.AxisColumn
	}
}

func leaf(t domain.BlockType, label string, defaults func() domain.Block) domain.Capability {
	return domain.Capability{Type: t, Label: label, Defaults: defaults}
}

func builtins() []domain.Capability {
	return []domain.Capability{
		// ── layout ──
		{
			Type:        domain.BlockTypeContainer,
			Label:       "Container",
			IsContainer: true,
			Axis:        directionAxis,
			Defaults: func() domain.Block {
				return domain.Block{
					Props:    map[string]any{"direction": "column", "gap": 16},
					Children: []domain.Block{},
				}
			},
		},
		{
			Type:            domain.BlockTypeRow,
			Label:           "Row",
			IsContainer:     true,
			AllowedChildren: []domain.BlockType{domain.BlockTypeColumn},
			Axis:            fixed(domain.AxisRow),
			Defaults: func() domain.Block {
				return domain.Block{
					Children: []domain.Block{
						{Type: domain.BlockTypeColumn, Children: []domain.Block{}},
						{Type: domain.BlockTypeColumn, Children: []domain.Block{}},
					},
				}
			},
		},
		{
			Type:           domain.BlockTypeColumn,
			Label:          "Column",
			IsContainer:    true,
			AllowedParents: []domain.BlockType{domain.BlockTypeRow},
			Axis:           fixed(domain.AxisColumn),
			Defaults: func() domain.Block {
				return domain.Block{Children: []domain.Block{}}
			},
		},

		// ── basic ──
		leaf(domain.BlockTypeText, "Text", func() domain.Block {
			return domain.Block{Content: "Text"}
		}),
		leaf(domain.BlockTypeHeading, "Heading", func() domain.Block {
			return domain.Block{Content: "Heading", Props: map[string]any{"level": 2}}
		}),
		leaf(domain.BlockTypeImage, "Image", func() domain.Block {
			return domain.Block{Props: map[string]any{"src": "", "alt": ""}}
		}),
		leaf(domain.BlockTypeButton, "Button", func() domain.Block {
			return domain.Block{Content: "Button", Props: map[string]any{"href": ""}}
		}),
		leaf(domain.BlockTypeDivider, "Divider", func() domain.Block {
			return domain.Block{}
		}),
		{
			Type:            domain.BlockTypeList,
			Label:           "List",
			IsContainer:     true,
			AllowedChildren: []domain.BlockType{domain.BlockTypeListItem},
			Defaults: func() domain.Block {
				return domain.Block{
					Props: map[string]any{"ordered": false},
					Children: []domain.Block{
						{Type: domain.BlockTypeListItem, Content: "Item"},
					},
				}
			},
		},
		{
			// A list-item carries inline content plus at most one nested list.
			Type:            domain.BlockTypeListItem,
			Label:           "List item",
			IsContainer:     true,
			AllowedChildren: []domain.BlockType{domain.BlockTypeList},
			AllowedParents:  []domain.BlockType{domain.BlockTypeList},
			Defaults: func() domain.Block {
				return domain.Block{Content: "Item"}
			},
		},

		// ── data ──
		leaf(domain.BlockTypeChart, "Chart", func() domain.Block {
			return domain.Block{Props: map[string]any{"kind": "bar", "source": ""}}
		}),
		{
			Type:            domain.BlockTypeTable,
			Label:           "Table",
			IsContainer:     true,
			AllowedChildren: []domain.BlockType{domain.BlockTypeTableRow},
			Defaults: func() domain.Block {
				row := func() domain.Block {
					return domain.Block{
						Type: domain.BlockTypeTableRow,
						Children: []domain.Block{
							{Type: domain.BlockTypeTableCell, Children: []domain.Block{}},
							{Type: domain.BlockTypeTableCell, Children: []domain.Block{}},
						},
					}
				}
				return domain.Block{Children: []domain.Block{row(), row()}}
			},
		},
		{
			Type:            domain.BlockTypeTableRow,
			Label:           "Table row",
			IsContainer:     true,
			AllowedChildren: []domain.BlockType{domain.BlockTypeTableCell},
			AllowedParents:  []domain.BlockType{domain.BlockTypeTable},
			Axis:            fixed(domain.AxisRow),
			Defaults: func() domain.Block {
				return domain.Block{Children: []domain.Block{}}
			},
		},
		{
			Type:           domain.BlockTypeTableCell,
			Label:          "Table cell",
			IsContainer:    true,
			AllowedParents: []domain.BlockType{domain.BlockTypeTableRow},
			Defaults: func() domain.Block {
				return domain.Block{Children: []domain.Block{}}
			},
		},
	}
}
