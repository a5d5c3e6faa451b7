package domain

// Rect is an axis-aligned bounding box in canvas pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Empty reports whether the rect has no measurable area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Intersects reports whether two rects overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && r.X+r.W > o.X &&
		r.Y < o.Y+o.H && r.Y+r.H > o.Y
}

// ContainsPoint reports whether (x, y) lies inside r, edges included.
func (r Rect) ContainsPoint(x, y float64) bool {
	return x >= r.X && x <= r.X+r.W && y >= r.Y && y <= r.Y+r.H
}

// Center returns the midpoint of the rect along the axis.
func (r Rect) Center(a Axis) float64 {
	if a == AxisRow {
		return r.X + r.W/2
	}
	return r.Y + r.H/2
}

// LeadingEdge returns the start coordinate along the axis.
func (r Rect) LeadingEdge(a Axis) float64 {
	if a == AxisRow {
		return r.X
	}
	return r.Y
}

// TrailingEdge returns the end coordinate along the axis.
func (r Rect) TrailingEdge(a Axis) float64 {
	if a == AxisRow {
		return r.X + r.W
	}
	return r.Y + r.H
}
