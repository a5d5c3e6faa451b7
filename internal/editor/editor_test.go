package editor

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/events"
)

func newEditor(t *testing.T, tree domain.Tree) (*Editor, *events.MockEmitter) {
	t.Helper()
	em := &events.MockEmitter{}
	e := New(Options{PageID: "p1", Tree: tree, Emitter: em, Debounce: 20 * time.Millisecond})
	return e, em
}

func text(id string) domain.Block {
	return domain.Block{ID: id, Type: domain.BlockTypeText, Content: id}
}

func box(id string, children ...domain.Block) domain.Block {
	if children == nil {
		children = []domain.Block{}
	}
	return domain.Block{ID: id, Type: domain.BlockTypeContainer, Children: children}
}

func ids(tree domain.Tree) []string { return blocktree.IDs(tree) }

func TestEditor_Scenario(t *testing.T) {
	e, em := newEditor(t, nil)

	cID, err := e.InsertNew(domain.RootID, domain.BlockTypeContainer, domain.PositionInner)
	if err != nil {
		t.Fatalf("insert container: %v", err)
	}
	tree := e.Tree()
	if len(tree) != 1 || tree[0].Type != domain.BlockTypeContainer || len(tree[0].Children) != 0 {
		t.Fatalf("unexpected tree %+v", tree)
	}

	tID, err := e.InsertNew(cID, domain.BlockTypeText, domain.PositionInner)
	if err != nil {
		t.Fatalf("insert text: %v", err)
	}
	tree = e.Tree()
	if len(tree[0].Children) != 1 || tree[0].Children[0].Type != domain.BlockTypeText {
		t.Fatalf("container children = %+v", tree[0].Children)
	}

	if err := e.Move(tID, cID, domain.PositionAfter); err != nil {
		t.Fatalf("move: %v", err)
	}
	tree = e.Tree()
	if len(tree) != 2 || tree[0].ID != cID || tree[1].ID != tID || len(tree[0].Children) != 0 {
		t.Fatalf("unexpected tree %+v", tree)
	}

	if e.Selected() != tID {
		t.Errorf("selected = %q, want the last inserted block", e.Selected())
	}
	if got := len(em.Named(events.EditorChanged)); got != 3 {
		t.Errorf("changed events = %d, want 3", got)
	}

	for i := 0; i < 3; i++ {
		if !e.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	if len(e.Tree()) != 0 || e.CanUndo() || !e.CanRedo() {
		t.Fatalf("after undo: tree=%+v", e.Tree())
	}
	if e.Selected() != "" {
		t.Errorf("selection %q survived the undo that removed it", e.Selected())
	}
}

func TestEditor_MoveRejections(t *testing.T) {
	orig := domain.Tree{
		box("outer", box("inner", text("t"))),
		{ID: "tbl", Type: domain.BlockTypeTable, Children: []domain.Block{
			{ID: "tr", Type: domain.BlockTypeTableRow, Children: []domain.Block{}},
		}},
	}
	e, _ := newEditor(t, orig)

	tests := []struct {
		name   string
		id     string
		target string
		pos    domain.Position
		want   error
	}{
		{"into own descendant", "outer", "inner", domain.PositionInner, domain.ErrIllegalMove},
		{"onto itself", "outer", "outer", domain.PositionAfter, domain.ErrIllegalMove},
		{"text into table", "t", "tbl", domain.PositionInner, domain.ErrIncompatible},
		{"text next to a row", "t", "tr", domain.PositionBefore, domain.ErrIncompatible},
		{"row to the root", "tr", "outer", domain.PositionAfter, domain.ErrIncompatible},
		{"into a leaf", "outer", "t", domain.PositionInner, domain.ErrIllegalMove},
		{"missing block", "zz", "outer", domain.PositionAfter, domain.ErrNotFound},
		{"missing target", "t", "zz", domain.PositionAfter, domain.ErrNotFound},
		{"bad position", "t", "outer", "sideways", domain.ErrIllegalMove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.Move(tt.id, tt.target, tt.pos)
			if !errors.Is(err, tt.want) && !(tt.want == domain.ErrIllegalMove && errors.Is(err, domain.ErrIncompatible)) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if diff := cmp.Diff(orig, e.Tree()); diff != "" {
				t.Errorf("tree changed (-want +got):\n%s", diff)
			}
		})
	}
	if e.History().Len() != 1 {
		t.Errorf("history len = %d, want 1", e.History().Len())
	}
}

func TestEditor_UpdateDebounce(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{text("t")})

	for _, c := range []string{"#100", "#200", "#300"} {
		if err := e.Update("t", blocktree.Patch{Styles: map[string]any{"color": c}}, true); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if got := e.Tree()[0].Styles["color"]; got != "#300" {
		t.Errorf("live color = %v, want #300", got)
	}
	deadline := time.Now().Add(2 * time.Second)
	for e.History().Pending() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if e.History().Len() != 2 {
		t.Fatalf("history len = %d, want 2", e.History().Len())
	}

	if err := e.Update("t", blocktree.Patch{Styles: map[string]any{"size": 2}}, false); err != nil {
		t.Fatalf("update: %v", err)
	}
	want := map[string]any{"color": "#300", "size": 2}
	if diff := cmp.Diff(want, e.Tree()[0].Styles); diff != "" {
		t.Errorf("styles mismatch (-want +got):\n%s", diff)
	}
	if err := e.Update("zz", blocktree.Patch{}, false); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditor_DebouncedEditSurvivesUndoOfLaterSwap(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{text("a"), text("b")})

	if err := e.Update("a", blocktree.Patch{Styles: map[string]any{"color": "red"}}, true); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := e.Swap("b", domain.DirectionUp); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if e.History().Len() != 3 {
		t.Fatalf("history len = %d, want 3", e.History().Len())
	}

	if !e.Undo() {
		t.Fatal("undo failed")
	}
	tree := e.Tree()
	if diff := cmp.Diff([]string{"a", "b"}, ids(tree)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
	if got := tree[0].Styles["color"]; got != "red" {
		t.Errorf("color after undoing the swap = %v, want red", got)
	}

	if !e.Undo() {
		t.Fatal("second undo failed")
	}
	if got := e.Tree()[0].Styles["color"]; got != nil {
		t.Errorf("color after undoing the edit = %v, want none", got)
	}
}

func TestEditor_UpdateRetypeChecksParent(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{text("t")})
	cell := domain.BlockTypeTableCell
	if err := e.Update("t", blocktree.Patch{Type: &cell}, false); !errors.Is(err, domain.ErrIncompatible) {
		t.Errorf("err = %v, want ErrIncompatible", err)
	}
	heading := domain.BlockTypeHeading
	if err := e.Update("t", blocktree.Patch{Type: &heading}, false); err != nil {
		t.Errorf("retype to heading: %v", err)
	}
}

func TestEditor_InsertIncompatible(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{{ID: "tbl", Type: domain.BlockTypeTable, Children: []domain.Block{}}})
	if _, err := e.InsertNew("tbl", domain.BlockTypeText, domain.PositionInner); !errors.Is(err, domain.ErrIncompatible) {
		t.Errorf("err = %v, want ErrIncompatible", err)
	}
	if _, err := e.InsertNew("tbl", domain.BlockTypeTableRow, domain.PositionInner); err != nil {
		t.Errorf("row into table: %v", err)
	}
	if _, err := e.InsertNew(domain.RootID, "custom/unknown", domain.PositionInner); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditor_InsertRefreshesCollidingIDs(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{text("t")})
	id, err := e.Insert("t", text("t"), domain.PositionAfter)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if id == "t" {
		t.Fatal("colliding id was kept")
	}
	if err := blocktree.Validate(e.Tree()); err != nil {
		t.Fatal(err)
	}
}

func TestEditor_RemoveClearsSelection(t *testing.T) {
	e, em := newEditor(t, domain.Tree{box("b", text("t")), text("u")})
	if err := e.Select("t"); err != nil {
		t.Fatalf("select: %v", err)
	}
	if err := e.Remove("u"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e.Selected() != "t" {
		t.Fatal("unrelated removal cleared the selection")
	}
	if err := e.Remove("b"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if e.Selected() != "" {
		t.Errorf("selected = %q after removing its ancestor", e.Selected())
	}
	if last, _ := em.Last(events.EditorSelection); last.Data != "" {
		t.Errorf("last selection event = %v", last.Data)
	}
	if err := e.Remove("b"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditor_Selection(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{box("b", text("x"), text("y")), text("z")})

	if err := e.Select("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if !e.SelectSibling("x", domain.DirectionDown) || e.Selected() != "y" {
		t.Errorf("selected = %q, want y", e.Selected())
	}
	if e.SelectSibling("y", domain.DirectionDown) {
		t.Error("sibling past the end should be refused")
	}
	if e.SelectSibling("x", domain.DirectionUp) {
		t.Error("sibling before the start should be refused")
	}
	if !e.SelectParent("y") || e.Selected() != "b" {
		t.Errorf("selected = %q, want b", e.Selected())
	}
	if e.SelectParent("b") {
		t.Error("top-level blocks have no parent to select")
	}
	if err := e.Select(""); err != nil || e.Selected() != "" {
		t.Errorf("clear selection: %v", err)
	}
}

func TestEditor_SwapAndDuplicate(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{text("a"), box("b", text("b1"))})
	if err := e.Swap("a", domain.DirectionUp); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if e.History().Len() != 1 {
		t.Error("swap at the boundary should not be recorded")
	}
	if err := e.Swap("a", domain.DirectionDown); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if diff := cmp.Diff([]string{"b", "b1", "a"}, ids(e.Tree())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	cloneID, err := e.Duplicate("b")
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	tree := e.Tree()
	if len(tree) != 3 || tree[1].ID != cloneID || e.Selected() != cloneID {
		t.Fatalf("unexpected tree %v", ids(tree))
	}
	if err := blocktree.Validate(tree); err != nil {
		t.Fatal(err)
	}
}

func TestEditor_CopyPasteStyles(t *testing.T) {
	src := text("src")
	src.Styles = map[string]any{"color": "red"}
	src.Variants = map[string]any{"size": "lg"}
	dst := text("dst")
	dst.Styles = map[string]any{"margin": 4}
	e, _ := newEditor(t, domain.Tree{src, dst})

	if err := e.PasteStyles("dst"); !errors.Is(err, ErrEmptyClipboard) {
		t.Errorf("err = %v, want ErrEmptyClipboard", err)
	}
	lenBefore := e.History().Len()
	if err := e.CopyStyles("src"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if e.History().Len() != lenBefore {
		t.Error("copying styles must not touch history")
	}
	if err := e.PasteStyles("dst"); err != nil {
		t.Fatalf("paste: %v", err)
	}
	got := e.Tree()[1]
	if diff := cmp.Diff(map[string]any{"color": "red", "margin": 4}, got.Styles); diff != "" {
		t.Errorf("styles mismatch (-want +got):\n%s", diff)
	}
	if got.Variants["size"] != "lg" {
		t.Errorf("variants = %v", got.Variants)
	}
}

func TestEditor_ListActions(t *testing.T) {
	list := domain.Block{ID: "L", Type: domain.BlockTypeList, Children: []domain.Block{
		{ID: "a", Type: domain.BlockTypeListItem, Content: "a"},
		{ID: "b", Type: domain.BlockTypeListItem, Content: "b"},
	}}
	e, _ := newEditor(t, domain.Tree{list})

	id, err := e.AddListItem("b", "c")
	if err != nil || e.Selected() != id {
		t.Fatalf("add: %v", err)
	}
	if err := e.IndentListItem("b"); err != nil {
		t.Fatalf("indent: %v", err)
	}
	if err := e.OutdentListItem("b"); err != nil {
		t.Fatalf("outdent: %v", err)
	}
	if diff := cmp.Diff([]string{"L", "a", "b", id}, ids(e.Tree())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if err := e.UpdateListItemContent("a", "first", false); err != nil {
		t.Fatalf("update: %v", err)
	}
	prev, err := e.RemoveListItem(id)
	if err != nil || prev != "b" || e.Selected() != "b" {
		t.Errorf("remove: prev=%q selected=%q err=%v", prev, e.Selected(), err)
	}
	if err := e.IndentListItem("L"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditor_ResetHistory(t *testing.T) {
	e, _ := newEditor(t, domain.Tree{text("a")})
	_ = e.Select("a")
	_ = e.Remove("a")
	e.ResetHistory(domain.Tree{text("b")})
	if e.CanUndo() || e.CanRedo() || e.History().Len() != 1 {
		t.Error("reset kept history")
	}
	if diff := cmp.Diff([]string{"b"}, ids(e.Tree())); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	state := e.State()
	if state.PageID != "p1" || state.SelectedID != "" {
		t.Errorf("state = %+v", state)
	}
}
