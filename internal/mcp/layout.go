package mcpserver

import (
	"math"

	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
)

const (
	GridSize    = 8.0
	Gap         = 16.0 // between siblings and inside container edges
	CanvasWidth = 960.0
	LeafHeight  = 48.0
	EmptyHeight = 64.0 // an empty container still offers a drop area
)

// LayoutEngine produces the block rects a renderer would, so drag gestures
// issued by agents can be resolved without a front end. Containers stack
// their children along their axis; row children share the width evenly.
type LayoutEngine struct {
	caps        domain.Capabilities
	gridSize    float64
	gap         float64
	width       float64
	leafHeight  float64
	emptyHeight float64
}

func NewLayoutEngine(caps domain.Capabilities) *LayoutEngine {
	return &LayoutEngine{
		caps:        caps,
		gridSize:    GridSize,
		gap:         Gap,
		width:       CanvasWidth,
		leafHeight:  LeafHeight,
		emptyHeight: EmptyHeight,
	}
}

// snap rounds v up to the next grid point.
func (le *LayoutEngine) snap(v float64) float64 {
	return math.Ceil(v/le.gridSize) * le.gridSize
}

// Measure lays out t and returns a rect for every block, plus the canvas
// under domain.RootID.
func (le *LayoutEngine) Measure(t domain.Tree) dnd.Rects {
	rects := make(dnd.Rects)
	canvas := domain.Rect{W: le.width}
	le.place(rects, t, domain.AxisColumn, canvas)

	h := le.emptyHeight
	if n := len(t); n > 0 {
		h = 0
		for _, b := range t {
			h += le.height(b, le.width)
		}
		h += le.gap * float64(n-1)
	}
	canvas.H = h
	rects[domain.RootID] = canvas
	return rects
}

// LeafRect is the rect of a freshly dragged leaf whose center is at (x, y).
func (le *LayoutEngine) LeafRect(x, y float64) domain.Rect {
	w := le.width / 2
	return domain.Rect{X: x - w/2, Y: y - le.leafHeight/2, W: w, H: le.leafHeight}
}

// place positions seq inside box along axis.
func (le *LayoutEngine) place(rects dnd.Rects, seq []domain.Block, axis domain.Axis, box domain.Rect) {
	n := len(seq)
	if n == 0 {
		return
	}
	if axis == domain.AxisRow {
		w := (box.W - le.gap*float64(n-1)) / float64(n)
		x := box.X
		for _, b := range seq {
			r := domain.Rect{X: x, Y: box.Y, W: w, H: le.height(b, w)}
			rects[b.ID] = r
			le.placeChildren(rects, b, r)
			x += w + le.gap
		}
		return
	}

	y := box.Y
	for _, b := range seq {
		r := domain.Rect{X: box.X, Y: y, W: box.W, H: le.height(b, box.W)}
		rects[b.ID] = r
		le.placeChildren(rects, b, r)
		y += r.H + le.gap
	}
}

func (le *LayoutEngine) placeChildren(rects dnd.Rects, b domain.Block, r domain.Rect) {
	c, ok := le.container(b)
	if !ok || len(b.Children) == 0 {
		return
	}
	inner := domain.Rect{X: r.X + le.gap, Y: r.Y + le.gap, W: r.W - 2*le.gap, H: r.H - 2*le.gap}
	le.place(rects, b.Children, c.LayoutAxis(b), inner)
}

// height is the extent of b laid out at width w.
func (le *LayoutEngine) height(b domain.Block, w float64) float64 {
	c, ok := le.container(b)
	if !ok {
		return le.leafHeight
	}
	n := len(b.Children)
	if n == 0 {
		return le.emptyHeight
	}

	inner := w - 2*le.gap
	var h float64
	if c.LayoutAxis(b) == domain.AxisRow {
		cw := (inner - le.gap*float64(n-1)) / float64(n)
		for _, child := range b.Children {
			h = math.Max(h, le.height(child, cw))
		}
	} else {
		for _, child := range b.Children {
			h += le.height(child, inner)
		}
		h += le.gap * float64(n-1)
	}
	return le.snap(h + 2*le.gap)
}

func (le *LayoutEngine) container(b domain.Block) (domain.Capability, bool) {
	if le.caps == nil {
		return domain.Capability{}, false
	}
	c, ok := le.caps.Lookup(b.Type)
	return c, ok && c.IsContainer
}
