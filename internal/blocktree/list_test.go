package blocktree

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"pagebuilder/internal/domain"
)

func item(id string, nested ...domain.Block) domain.Block {
	b := domain.Block{ID: id, Type: domain.BlockTypeListItem, Content: id}
	if len(nested) > 0 {
		b.Children = []domain.Block{{ID: id + "-list", Type: domain.BlockTypeList, Children: nested}}
	}
	return b
}

func list(id string, items ...domain.Block) domain.Block {
	return domain.Block{ID: id, Type: domain.BlockTypeList, Props: map[string]any{"ordered": true}, Children: items}
}

// outline flattens a list tree, wrapping each list in parens.
func outline(seq []domain.Block) []string {
	var out []string
	for _, b := range seq {
		switch b.Type {
		case domain.BlockTypeList:
			out = append(out, "(")
			out = append(out, outline(b.Children)...)
			out = append(out, ")")
		default:
			out = append(out, b.ID)
			out = append(out, outline(b.Children)...)
		}
	}
	return out
}

func TestIndentOutdent_Inverse(t *testing.T) {
	orig := domain.Tree{list("L", item("a"), item("b"), item("c"))}

	indented := IndentListItem(orig, "b")
	if diff := cmp.Diff([]string{"(", "a", "(", "b", ")", "c", ")"}, outline(indented)); diff != "" {
		t.Fatalf("indent mismatch (-want +got):\n%s", diff)
	}
	nested := indented[0].Children[0].Children[0]
	if nested.Props["ordered"] != true {
		t.Error("new nested list should inherit the parent list props")
	}

	restored := OutdentListItem(indented, "b")
	if diff := cmp.Diff(outline(orig), outline(restored)); diff != "" {
		t.Fatalf("outdent did not restore the original (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(orig, restored, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("restored tree differs (-want +got):\n%s", diff)
	}
}

func TestIndent_AppendsToExistingNestedList(t *testing.T) {
	tree := domain.Tree{list("L", item("a", item("a1")), item("b"))}
	got := IndentListItem(tree, "b")
	if diff := cmp.Diff([]string{"(", "a", "(", "a1", "b", ")", ")"}, outline(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestIndent_NoOps(t *testing.T) {
	tree := domain.Tree{list("L", item("a"), item("b")), leaf("p")}
	for _, id := range []string{"a", "p", "L", "missing"} {
		got := IndentListItem(tree, id)
		if diff := cmp.Diff(tree, got); diff != "" {
			t.Errorf("IndentListItem(%q) changed the tree (-want +got):\n%s", id, diff)
		}
	}
}

func TestOutdent_RehomesTrailingItems(t *testing.T) {
	tree := domain.Tree{list("L",
		item("a", item("x"), item("y"), item("z")),
		item("b"),
	)}
	got := OutdentListItem(tree, "x")
	want := []string{"(", "a", "x", "(", "y", "z", ")", "b", ")"}
	if diff := cmp.Diff(want, outline(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOutdent_MiddleItemKeepsPreceding(t *testing.T) {
	tree := domain.Tree{list("L",
		item("a", item("x"), item("y"), item("z")),
	)}
	got := OutdentListItem(tree, "y")
	want := []string{"(", "a", "(", "x", ")", "y", "(", "z", ")", ")"}
	if diff := cmp.Diff(want, outline(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestOutdent_OutermostLevelIsNoOp(t *testing.T) {
	tree := domain.Tree{list("L", item("a"), item("b"))}
	got := OutdentListItem(tree, "b")
	if diff := cmp.Diff(tree, got); diff != "" {
		t.Errorf("outdent at outermost level changed the tree (-want +got):\n%s", diff)
	}
}

func TestRemoveListItem_HoistsNested(t *testing.T) {
	tree := domain.Tree{list("L", item("a"), item("b", item("b1"), item("b2")), item("c"))}
	got, prev := RemoveListItem(tree, "b")
	if prev != "a" {
		t.Errorf("focus handle = %q, want a", prev)
	}
	want := []string{"(", "a", "b1", "b2", "c", ")"}
	if diff := cmp.Diff(want, outline(got)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	_, prev = RemoveListItem(tree, "a")
	if prev != "" {
		t.Errorf("first item has no previous sibling, got %q", prev)
	}

	same, prev := RemoveListItem(tree, "L")
	if prev != "" || Count(same) != Count(tree) {
		t.Error("removing a non-item should be a no-op")
	}
}

func TestAddListItem(t *testing.T) {
	tree := domain.Tree{list("L", item("a"), item("b"))}

	got, id := AddListItem(tree, "a", "new")
	if id == "" {
		t.Fatal("expected a new id")
	}
	if diff := cmp.Diff([]string{"(", "a", id, "b", ")"}, outline(got)); diff != "" {
		t.Errorf("after item mismatch (-want +got):\n%s", diff)
	}

	got, id = AddListItem(tree, "L", "tail")
	if diff := cmp.Diff([]string{"(", "a", "b", id, ")"}, outline(got)); diff != "" {
		t.Errorf("append mismatch (-want +got):\n%s", diff)
	}
	loc, _ := Locate(got, id)
	if loc.Block.Content != "tail" || loc.Block.Type != domain.BlockTypeListItem {
		t.Errorf("unexpected new item %+v", loc.Block)
	}
}

func TestUpdateListItemContent(t *testing.T) {
	tree := domain.Tree{list("L", item("a"))}
	got := UpdateListItemContent(tree, "a", "changed")
	if got[0].Children[0].Content != "changed" {
		t.Errorf("content = %q", got[0].Children[0].Content)
	}
	same := UpdateListItemContent(tree, "L", "nope")
	if same[0].Content != "" {
		t.Error("lists have no inline content to update")
	}
}
