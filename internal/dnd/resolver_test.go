package dnd

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/plugins"
)

func text(id string) domain.Block {
	return domain.Block{ID: id, Type: domain.BlockTypeText}
}

// column builds a container with three stacked text children whose top
// edges sit at 100, 200 and 300, each 50 tall.
func column() (domain.Tree, Rects) {
	tree := domain.Tree{{
		ID:       "box",
		Type:     domain.BlockTypeContainer,
		Children: []domain.Block{text("c1"), text("c2"), text("c3")},
	}}
	rects := Rects{
		domain.RootID: {X: 0, Y: 0, W: 800, H: 1000},
		"box":         {X: 0, Y: 80, W: 400, H: 300},
		"c1":          {X: 10, Y: 100, W: 380, H: 50},
		"c2":          {X: 10, Y: 200, W: 380, H: 50},
		"c3":          {X: 10, Y: 300, W: 380, H: 50},
	}
	return tree, rects
}

func dragged(centerY float64) domain.Rect {
	return domain.Rect{X: 20, Y: centerY - 10, W: 100, H: 20}
}

func TestResolve_NearestSlot(t *testing.T) {
	tree, rects := column()
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}

	tests := []struct {
		name    string
		centerY float64
		target  string
		pos     domain.Position
	}{
		{"closer to c2 top than c1 bottom", 205, "c2", domain.PositionTop},
		{"exactly on c1 bottom", 150, "c1", domain.PositionBottom},
		{"tie between c1 bottom and c2 top goes to the earlier slot", 175, "c1", domain.PositionBottom},
		{"above the first child", 95, "c1", domain.PositionTop},
		{"below the last child", 370, "c3", domain.PositionBottom},
		{"just past c2 bottom", 260, "c2", domain.PositionBottom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "box", Dragged: dragged(tt.centerY)})
			if !ok {
				t.Fatal("expected a decision")
			}
			if d.TargetID != tt.target || d.Position != tt.pos {
				t.Errorf("got {%s %s}, want {%s %s}", d.TargetID, d.Position, tt.target, tt.pos)
			}
			if d.ContainerID != "box" {
				t.Errorf("container = %s, want box", d.ContainerID)
			}
		})
	}
}

func TestResolve_IndicatorRect(t *testing.T) {
	tree, rects := column()
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}
	d, _ := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "box", Dragged: dragged(205)})
	want := domain.Rect{X: 10, Y: 198, W: 380, H: IndicatorThickness}
	if diff := cmp.Diff(want, d.Rect); diff != "" {
		t.Errorf("indicator mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_RowAxis(t *testing.T) {
	tree := domain.Tree{{
		ID:       "row",
		Type:     domain.BlockTypeContainer,
		Props:    map[string]any{"direction": "row"},
		Children: []domain.Block{text("l"), text("r")},
	}}
	rects := Rects{
		"row": {X: 0, Y: 0, W: 400, H: 100},
		"l":   {X: 0, Y: 0, W: 100, H: 100},
		"r":   {X: 200, Y: 0, W: 100, H: 100},
	}
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}
	d, ok := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "row", Dragged: domain.Rect{X: 180, Y: 10, W: 40, H: 40}})
	if !ok || d.TargetID != "r" || d.Position != domain.PositionLeft {
		t.Fatalf("got %+v ok=%v, want {r left}", d, ok)
	}
	want := domain.Rect{X: 198, Y: 0, W: IndicatorThickness, H: 100}
	if diff := cmp.Diff(want, d.Rect); diff != "" {
		t.Errorf("indicator mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_OverLeafUsesParent(t *testing.T) {
	tree, rects := column()
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}
	d, ok := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "c3", Dragged: dragged(340)})
	if !ok || d.ContainerID != "box" || d.TargetID != "c3" || d.Position != domain.PositionBottom {
		t.Fatalf("got %+v ok=%v", d, ok)
	}

	// A top-level leaf resolves to the canvas root.
	flat := domain.Tree{text("a"), text("b")}
	rects = Rects{domain.RootID: {W: 500, H: 500}, "a": {Y: 0, W: 500, H: 40}, "b": {Y: 50, W: 500, H: 40}}
	r.Measure = rects
	d, ok = r.Resolve(flat, NewBlock(domain.BlockTypeHeading), Update{OverID: "a", Dragged: dragged(0)})
	if !ok || d.ContainerID != domain.RootID || d.TargetID != "a" || d.Position != domain.PositionTop {
		t.Fatalf("got %+v ok=%v", d, ok)
	}
}

func TestResolve_HoveredContainerNeedsPointerInside(t *testing.T) {
	tree := domain.Tree{
		{ID: "A", Type: domain.BlockTypeContainer, Children: []domain.Block{text("x")}},
		{ID: "B", Type: domain.BlockTypeContainer, Children: []domain.Block{text("y")}},
	}
	rects := Rects{
		domain.RootID: {W: 500, H: 400},
		"A":           {Y: 0, W: 500, H: 100},
		"x":           {X: 10, Y: 10, W: 480, H: 40},
		"B":           {Y: 200, W: 500, H: 100},
		"y":           {X: 10, Y: 210, W: 480, H: 40},
	}
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}

	tests := []struct {
		name      string
		centerY   float64
		container string
		target    string
		pos       domain.Position
	}{
		{"well below A", 300, domain.RootID, "A", domain.PositionBottom},
		{"in A's trailing band", 97, domain.RootID, "A", domain.PositionBottom},
		{"in A's leading band", 3, domain.RootID, "A", domain.PositionTop},
		{"inside A", 55, "A", "x", domain.PositionBottom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := r.Resolve(tree, Existing("B"), Update{OverID: "A", Dragged: dragged(tt.centerY)})
			if !ok {
				t.Fatal("expected a decision")
			}
			if d.ContainerID != tt.container || d.TargetID != tt.target || d.Position != tt.pos {
				t.Errorf("got {%s %s in %s}, want {%s %s in %s}",
					d.TargetID, d.Position, d.ContainerID, tt.target, tt.pos, tt.container)
			}
		})
	}
}

func TestResolve_EmptyContainerIsInner(t *testing.T) {
	tree := domain.Tree{{ID: "box", Type: domain.BlockTypeContainer, Children: []domain.Block{}}}
	rects := Rects{"box": {X: 0, Y: 0, W: 300, H: 120}}
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}
	d, ok := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "box", Dragged: dragged(50)})
	if !ok {
		t.Fatal("expected a decision")
	}
	want := Decision{TargetID: "box", Position: domain.PositionInner, Rect: rects["box"], ContainerID: "box"}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolve_ExcludesDraggedSibling(t *testing.T) {
	tree := domain.Tree{{ID: "box", Type: domain.BlockTypeContainer, Children: []domain.Block{text("only")}}}
	rects := Rects{"box": {W: 300, H: 120}, "only": {W: 300, H: 40}}
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}
	d, ok := r.Resolve(tree, Existing("only"), Update{OverID: "box", Dragged: dragged(20)})
	if !ok || d.Position != domain.PositionInner || d.TargetID != "box" {
		t.Fatalf("got %+v ok=%v, want inner box", d, ok)
	}
}

func TestResolve_Rejections(t *testing.T) {
	tree := domain.Tree{
		{ID: "box", Type: domain.BlockTypeContainer, Children: []domain.Block{
			{ID: "inner", Type: domain.BlockTypeContainer, Children: []domain.Block{text("leaf")}},
		}},
		{ID: "tbl", Type: domain.BlockTypeTable, Children: []domain.Block{
			{ID: "tr", Type: domain.BlockTypeTableRow, Children: []domain.Block{}},
		}},
	}
	rects := Rects{
		domain.RootID: {W: 1000, H: 1000},
		"box":         {W: 500, H: 300},
		"inner":       {Y: 10, W: 400, H: 200},
		"leaf":        {Y: 20, W: 300, H: 40},
		"tbl":         {Y: 400, W: 500, H: 100},
		"tr":          {Y: 400, W: 500, H: 50},
	}
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}

	tests := []struct {
		name    string
		payload Payload
		over    string
		centerY float64
	}{
		{"over itself", Existing("box"), "box", 30},
		{"over own descendant", Existing("box"), "leaf", 30},
		{"text into a table", NewBlock(domain.BlockTypeText), "tbl", 460},
		{"cell outside a row", NewBlock(domain.BlockTypeTableCell), "box", 30},
		{"unknown hit", NewBlock(domain.BlockTypeText), "missing", 30},
		{"no hit", NewBlock(domain.BlockTypeText), "", 30},
		{"unknown dragged block", Existing("ghost"), "box", 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if d, ok := r.Resolve(tree, tt.payload, Update{OverID: tt.over, Dragged: dragged(tt.centerY)}); ok {
				t.Errorf("expected no decision, got %+v", d)
			}
		})
	}

	d, ok := r.Resolve(tree, NewBlock(domain.BlockTypeTableRow), Update{OverID: "tbl", Dragged: dragged(460)})
	if !ok || d.TargetID != "tr" || d.Position != domain.PositionBottom {
		t.Errorf("row into table: got %+v ok=%v", d, ok)
	}
}

func TestResolve_MissingMeasurement(t *testing.T) {
	tree, rects := column()
	delete(rects, "c2")
	r := &Resolver{Caps: plugins.Builtin(), Measure: rects}
	if _, ok := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "box", Dragged: dragged(205)}); ok {
		t.Error("expected no decision when a sibling cannot be measured")
	}
	if _, ok := r.Resolve(tree, NewBlock(domain.BlockTypeText), Update{OverID: "box"}); ok {
		t.Error("expected no decision for an empty dragged rect")
	}
}

func TestSession_Lifecycle(t *testing.T) {
	tree, rects := column()
	s := NewSession(&Resolver{Caps: plugins.Builtin(), Measure: rects})

	if _, ok := s.Move(tree, Update{OverID: "box", Dragged: dragged(205)}); ok {
		t.Fatal("idle session must not decide")
	}

	s.Start(Existing("c3"))
	if _, ok := s.Move(tree, Update{OverID: "box", Dragged: dragged(205)}); !ok {
		t.Fatal("expected a decision")
	}
	// A tick over nothing clears the stale decision.
	if _, ok := s.Move(tree, Update{OverID: "", Dragged: dragged(205)}); ok {
		t.Fatal("expected no decision")
	}
	if _, ok := s.Decision(); ok {
		t.Fatal("stale decision kept")
	}
	s.Move(tree, Update{OverID: "box", Dragged: dragged(95)})
	p, d, ok := s.End()
	if !ok || p.BlockID != "c3" || d.TargetID != "c1" || d.Position != domain.PositionTop {
		t.Fatalf("End = %+v %+v %v", p, d, ok)
	}
	if s.Active() {
		t.Fatal("session still active after End")
	}

	s.Start(NewBlock(domain.BlockTypeText))
	s.Move(tree, Update{OverID: "box", Dragged: dragged(205)})
	s.Cancel()
	if _, _, ok := s.End(); ok {
		t.Fatal("cancelled gesture must not produce a decision")
	}
}
