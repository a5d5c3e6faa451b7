package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerListTools() {
	s.mcp.AddTool(mcp.NewTool("add_list_item",
		mcp.WithDescription("Add a list item. Anchored on a list it appends; anchored on an item it inserts right after it."),
		mcp.WithString("anchorId", mcp.Description("List or list-item ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("Item text")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleAddListItem)

	s.mcp.AddTool(mcp.NewTool("remove_list_item",
		mcp.WithDescription("Remove a list item. Items of its nested list take its place."),
		mcp.WithString("itemId", mcp.Description("List-item ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleRemoveListItem)

	s.mcp.AddTool(mcp.NewTool("indent_list_item",
		mcp.WithDescription("Nest a list item under its previous sibling"),
		mcp.WithString("itemId", mcp.Description("List-item ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleIndentListItem)

	s.mcp.AddTool(mcp.NewTool("outdent_list_item",
		mcp.WithDescription("Move a nested list item one level up, right after the item that owns its list"),
		mcp.WithString("itemId", mcp.Description("List-item ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleOutdentListItem)

	s.mcp.AddTool(mcp.NewTool("update_list_item",
		mcp.WithDescription("Replace the text of a list item"),
		mcp.WithString("itemId", mcp.Description("List-item ID"), mcp.Required()),
		mcp.WithString("content", mcp.Description("New text"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUpdateListItem)
}

func (s *Server) handleAddListItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	anchorID, err := requireString(args, "anchorId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	id, err := ed.AddListItem(anchorID, req.GetString("content", ""))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]string{"id": id})
}

func (s *Server) handleRemoveListItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, err := requireString(args, "itemId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	focus, err := ed.RemoveListItem(itemID)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]string{"removed": itemID, "focusId": focus})
}

func (s *Server) handleIndentListItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.listItemAction(ctx, req, "indented", func(ed listEditor, id string) error {
		return ed.IndentListItem(id)
	})
}

func (s *Server) handleOutdentListItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.listItemAction(ctx, req, "outdented", func(ed listEditor, id string) error {
		return ed.OutdentListItem(id)
	})
}

func (s *Server) handleUpdateListItem(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content := req.GetString("content", "")
	return s.listItemAction(ctx, req, "updated", func(ed listEditor, id string) error {
		return ed.UpdateListItemContent(id, content, false)
	})
}

type listEditor interface {
	IndentListItem(id string) error
	OutdentListItem(id string) error
	UpdateListItemContent(id, content string, debounce bool) error
}

func (s *Server) listItemAction(ctx context.Context, req mcp.CallToolRequest, verb string, fn func(listEditor, string) error) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	itemID, err := requireString(args, "itemId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := fn(ed, itemID); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("List item %s %s", itemID, verb)), nil
}
