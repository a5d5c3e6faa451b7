package domain

// Position places a node relative to a target block.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
	PositionInner  Position = "inner"

	// Axis-relative synonyms used by drop indicators.
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
)

// Normalize folds the axis-relative synonyms onto before/after.
// Unknown values normalize to the empty Position.
func (p Position) Normalize() Position {
	switch p {
	case PositionBefore, PositionTop, PositionLeft:
		return PositionBefore
	case PositionAfter, PositionBottom, PositionRight:
		return PositionAfter
	case PositionInner:
		return PositionInner
	default:
		return ""
	}
}

// Valid reports whether p is one of the known positions or synonyms.
func (p Position) Valid() bool {
	return p.Normalize() != ""
}

// Direction selects the previous or next sibling.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Offset returns -1 for up and +1 for down.
func (d Direction) Offset() int {
	if d == DirectionUp {
		return -1
	}
	return 1
}

// Axis is the main layout axis of a container.
type Axis string

const (
	AxisColumn Axis = "column"
	AxisRow    Axis = "row"
)

// Leading returns the position vocabulary for the start edge along the axis.
func (a Axis) Leading() Position {
	if a == AxisRow {
		return PositionLeft
	}
	return PositionTop
}

// Trailing returns the position vocabulary for the end edge along the axis.
func (a Axis) Trailing() Position {
	if a == AxisRow {
		return PositionRight
	}
	return PositionBottom
}
