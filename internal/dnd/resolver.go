// Package dnd resolves where a drag in progress would drop.
//
// Each update pairs the block under the pointer with the dragged element's
// bounding rect. The resolver picks the container, checks type
// compatibility, and selects the nearest sibling edge along the
// container's layout axis. Every failure is reported as "no decision".
package dnd

import (
	"math"

	"github.com/samber/lo"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
)

// IndicatorThickness is the size of the drop indicator line.
const IndicatorThickness = 4.0

// ContainerEdgeBand is how close to a hovered container's leading or
// trailing edge the dragged center must be for the drop to go beside the
// container rather than into it. It never exceeds a quarter of the
// container's extent.
const ContainerEdgeBand = 8.0

// Measurer supplies live bounding rects of rendered blocks. domain.RootID
// addresses the canvas itself.
type Measurer interface {
	Rect(id string) (domain.Rect, bool)
}

// Rects is a Measurer over a fixed set of measurements.
type Rects map[string]domain.Rect

func (r Rects) Rect(id string) (domain.Rect, bool) {
	rect, ok := r[id]
	return rect, ok && !rect.Empty()
}

// Update is one tick of pointer feedback.
type Update struct {
	// OverID is the hit-tested block under the pointer, or domain.RootID
	// for bare canvas.
	OverID string
	// Dragged is the dragged element's current bounding rect.
	Dragged domain.Rect
}

// Decision is a validated drop target.
type Decision struct {
	TargetID    string          `json:"targetId"`
	Position    domain.Position `json:"position"`
	Rect        domain.Rect     `json:"rect"`
	ContainerID string          `json:"containerId"`
}

// Indicator converts the decision for the rendering layer.
func (d Decision) Indicator() *domain.DropIndicator {
	return &domain.DropIndicator{TargetID: d.TargetID, Position: d.Position, Rect: d.Rect}
}

// Resolver turns updates into decisions.
type Resolver struct {
	Caps    domain.Capabilities
	Measure Measurer
}

type slot struct {
	targetID string
	pos      domain.Position
	coord    float64
	sibling  domain.Rect
}

// Resolve returns the drop decision for p at u, or false when no legal
// target exists.
func (r *Resolver) Resolve(t domain.Tree, p Payload, u Update) (Decision, bool) {
	if r.Caps == nil || r.Measure == nil {
		return Decision{}, false
	}
	dragType, ok := p.DraggedType(t)
	if !ok {
		return Decision{}, false
	}

	container, ok := r.container(t, p, u)
	if !ok {
		return Decision{}, false
	}
	if !r.compatible(container, dragType) {
		return Decision{}, false
	}

	exclude := p.draggedID()
	var eligible []domain.Block
	for _, c := range container.Children {
		if c.ID != exclude {
			eligible = append(eligible, c)
		}
	}

	if len(eligible) == 0 {
		rect, ok := r.Measure.Rect(container.ID)
		if !ok {
			return Decision{}, false
		}
		return Decision{
			TargetID:    container.ID,
			Position:    domain.PositionInner,
			Rect:        rect,
			ContainerID: container.ID,
		}, true
	}

	if u.Dragged.Empty() {
		return Decision{}, false
	}
	axis := r.axis(container)
	center := u.Dragged.Center(axis)

	slots := make([]slot, 0, 2*len(eligible))
	for _, c := range eligible {
		rect, ok := r.Measure.Rect(c.ID)
		if !ok {
			return Decision{}, false
		}
		slots = append(slots,
			slot{c.ID, axis.Leading(), rect.LeadingEdge(axis), rect},
			slot{c.ID, axis.Trailing(), rect.TrailingEdge(axis), rect},
		)
	}

	best := slots[0]
	bestDist := math.Abs(best.coord - center)
	for _, s := range slots[1:] {
		// Strict comparison keeps the earlier slot on ties.
		if d := math.Abs(s.coord - center); d < bestDist {
			best, bestDist = s, d
		}
	}

	return Decision{
		TargetID:    best.targetID,
		Position:    best.pos,
		Rect:        indicatorRect(best.sibling, axis, best.coord),
		ContainerID: container.ID,
	}, true
}

// container resolves the block that would receive the drop. A hovered
// container receives it only while the dragged center is inside it;
// otherwise the drop goes to the container's parent, like a hovered leaf.
func (r *Resolver) container(t domain.Tree, p Payload, u Update) (domain.Block, bool) {
	overID := u.OverID
	if overID == "" {
		return domain.Block{}, false
	}
	if overID == domain.RootID {
		return rootBlock(t), true
	}
	loc, ok := blocktree.Locate(t, overID)
	if !ok {
		return domain.Block{}, false
	}
	if id := p.draggedID(); id != "" && (id == overID || blocktree.IsAncestor(t, id, overID)) {
		return domain.Block{}, false
	}
	parent := rootBlock(t)
	if loc.ParentID != domain.RootID {
		if parent, ok = blocktree.Parent(t, overID); !ok {
			return domain.Block{}, false
		}
	}
	if c, ok := r.Caps.Lookup(loc.Block.Type); ok && c.IsContainer && r.inside(loc.Block, r.axis(parent), u.Dragged) {
		return loc.Block, true
	}
	return parent, true
}

// inside reports whether the dragged center lies within the container's
// rect and clear of the edge bands along the parent's axis. Without
// geometry the pointer counts as inside.
func (r *Resolver) inside(container domain.Block, parentAxis domain.Axis, dragged domain.Rect) bool {
	rect, ok := r.Measure.Rect(container.ID)
	if !ok || dragged.Empty() {
		return true
	}
	if !rect.ContainsPoint(dragged.Center(domain.AxisRow), dragged.Center(domain.AxisColumn)) {
		return false
	}
	lead, trail := rect.LeadingEdge(parentAxis), rect.TrailingEdge(parentAxis)
	band := min(ContainerEdgeBand, (trail-lead)/4)
	c := dragged.Center(parentAxis)
	return c > lead+band && c < trail-band
}

func (r *Resolver) compatible(container domain.Block, dragType domain.BlockType) bool {
	if container.Type != domain.RootType {
		c, ok := r.Caps.Lookup(container.Type)
		if !ok || !c.IsContainer {
			return false
		}
		if c.AllowedChildren != nil && !lo.Contains(c.AllowedChildren, dragType) {
			return false
		}
	}
	if d, ok := r.Caps.Lookup(dragType); ok && d.AllowedParents != nil {
		return lo.Contains(d.AllowedParents, container.Type)
	}
	return true
}

func (r *Resolver) axis(container domain.Block) domain.Axis {
	if c, ok := r.Caps.Lookup(container.Type); ok {
		return c.LayoutAxis(container)
	}
	return domain.AxisColumn
}

func rootBlock(t domain.Tree) domain.Block {
	return domain.Block{ID: domain.RootID, Type: domain.RootType, Children: t}
}

// indicatorRect is a thin line centered on edge, spanning the sibling's
// cross axis.
func indicatorRect(sibling domain.Rect, axis domain.Axis, edge float64) domain.Rect {
	if axis == domain.AxisRow {
		return domain.Rect{X: edge - IndicatorThickness/2, Y: sibling.Y, W: IndicatorThickness, H: sibling.H}
	}
	return domain.Rect{X: sibling.X, Y: edge - IndicatorThickness/2, W: sibling.W, H: IndicatorThickness}
}
