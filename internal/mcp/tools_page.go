package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/storage"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages, most recently updated first"),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page and make it the active page"),
		mcp.WithString("name", mcp.Description("Name of the new page"), mcp.Required()),
		mcp.WithString("tree", mcp.Description("Initial block tree as a JSON array (optional)")),
	), s.handleCreatePage)

	// ── open_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("open_page",
		mcp.WithDescription("Open a page for editing and make it the active page. Tools that accept pageId default to it."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
	), s.handleOpenPage)

	// ── get_tree ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_tree",
		mcp.WithDescription("Get the block tree, selection and undo state of a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleGetTree)

	// ── save_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_page",
		mcp.WithDescription("Persist a page and its undo history"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSavePage)

	// ── close_page ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("close_page",
		mcp.WithDescription("Close an open page, saving unsaved edits unless discard is set"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithBoolean("discard", mcp.Description("Drop unsaved edits (default false)")),
	), s.handleClosePage)

	// ── rename_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Rename a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenamePage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("🛑 DESTRUCTIVE: Delete a page and its history"),
		mcp.WithString("pageId", mcp.Description("ID of the page to delete"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)

	// ── import_page / export_page ──────────────────────
	s.mcp.AddTool(mcp.NewTool("import_page",
		mcp.WithDescription("Import a JSON tree file. The file name without extension becomes the page id."),
		mcp.WithString("path", mcp.Description("Path of the JSON file"), mcp.Required()),
	), s.handleImportPage)
	s.mcp.AddTool(mcp.NewTool("export_page",
		mcp.WithDescription("Write the tree of a page to a JSON file"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("path", mcp.Description("Destination path"), mcp.Required()),
	), s.handleExportPage)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last edit of a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone edit of a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleRedo)
}

func boolPtr(v bool) *bool { return &v }

// ── Handlers ───────────────────────────────────────────────

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pages, err := s.pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []domain.PageSummary{}
	}
	return jsonResult(pages)
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return nil, errors.New("name is required")
	}
	var tree domain.Tree
	if raw := req.GetString("tree", ""); raw != "" {
		t, err := storage.DecodeTree([]byte(raw))
		if err != nil {
			return toolError(err)
		}
		tree = t
	}
	ed, err := s.pages.CreatePage(ctx, name, tree)
	if err != nil {
		return toolError(err)
	}
	s.setActivePage(ed.PageID())
	return jsonResult(map[string]string{"id": ed.PageID(), "name": name})
}

func (s *Server) handleOpenPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, errors.New("pageId is required")
	}
	ed, err := s.pages.OpenPage(ctx, pageID)
	if err != nil {
		return toolError(err)
	}
	s.setActivePage(pageID)
	return jsonResult(ed.State())
}

func (s *Server) handleGetTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editorFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(ed.State())
}

func (s *Server) handleSavePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := s.resolvePageID(req.GetArguments())
	if err != nil {
		return nil, err
	}
	if err := s.pages.SavePage(ctx, pageID); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Page %s saved", pageID)), nil
}

func (s *Server) handleClosePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	if err := s.pages.ClosePage(ctx, pageID, !getBool(args, "discard", false)); err != nil {
		return toolError(err)
	}
	s.mu.Lock()
	if s.activePageID == pageID {
		s.activePageID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Page %s closed", pageID)), nil
}

func (s *Server) handleRenamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	if err := s.pages.RenamePage(ctx, pageID, name); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Page %s renamed to %q", pageID, name)), nil
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID := req.GetString("pageId", "")
	if pageID == "" {
		return nil, errors.New("pageId is required")
	}
	if err := s.pages.DeletePage(ctx, pageID); err != nil {
		return toolError(err)
	}
	s.mu.Lock()
	if s.activePageID == pageID {
		s.activePageID = ""
	}
	s.mu.Unlock()
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}

func (s *Server) handleImportPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return nil, errors.New("path is required")
	}
	p, err := s.pages.ImportFile(ctx, path)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(domain.PageSummary{ID: p.ID, Name: p.Name, UpdatedAt: p.UpdatedAt})
}

func (s *Server) handleExportPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	path, err := requireString(args, "path")
	if err != nil {
		return nil, err
	}
	if err := s.pages.ExportFile(ctx, pageID, path); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Page %s exported to %s", pageID, path)), nil
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editorFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	if !ed.Undo() {
		return textResult("Nothing to undo"), nil
	}
	return jsonResult(ed.State())
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editorFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	if !ed.Redo() {
		return textResult("Nothing to redo"), nil
	}
	return jsonResult(ed.State())
}
