package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
)

const positionHelp = "before, after or inner (top/left and bottom/right are accepted)"

func (s *Server) registerBlockTools() {
	// ── list_block_types ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_block_types",
		mcp.WithDescription("List the registered block types and their nesting rules"),
	), s.handleListBlockTypes)

	// ── insert_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_block",
		mcp.WithDescription("Insert a new block of a registered type relative to a target block. Use targetId \"root\" with position inner to append at the top level."),
		mcp.WithString("type", mcp.Description("Block type, e.g. basic/text or layout/row"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("targetId", mcp.Description("Target block ID (default root)")),
		mcp.WithString("position", mcp.Description("Placement: "+positionHelp+" (default inner)")),
		mcp.WithString("content", mcp.Description("Initial inline content (optional)")),
		mcp.WithString("props", mcp.Description("JSON object merged into the default props (optional)")),
	), s.handleInsertBlock)

	// ── update_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_block",
		mcp.WithDescription("Patch a block. props, variants and styles are merged key by key."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("content", mcp.Description("New inline content (optional)")),
		mcp.WithString("type", mcp.Description("New block type (optional)")),
		mcp.WithString("props", mcp.Description("JSON object of props (optional)")),
		mcp.WithString("variants", mcp.Description("JSON object of variants (optional)")),
		mcp.WithString("styles", mcp.Description("JSON object of styles (optional)")),
	), s.handleUpdateBlock)

	// ── remove_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("remove_block",
		mcp.WithDescription("Remove a block and its whole subtree. Undo restores it."),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleRemoveBlock)

	// ── move_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_block",
		mcp.WithDescription("Move a block relative to a target block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Target block ID, or root"), mcp.Required()),
		mcp.WithString("position", mcp.Description("Placement: "+positionHelp), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleMoveBlock)

	// ── swap_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("swap_block",
		mcp.WithDescription("Swap a block with its previous (up) or next (down) sibling"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("direction", mcp.Description("up or down"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSwapBlock)

	// ── duplicate_block ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_block",
		mcp.WithDescription("Insert a copy of a block, with fresh ids, right after it"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleDuplicateBlock)

	// ── select_block ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_block",
		mcp.WithDescription("Select a block, or its parent or sibling when relation is given"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("relation", mcp.Description("self (default), parent, up or down")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSelectBlock)

	// ── copy_styles / paste_styles ─────────────────────
	s.mcp.AddTool(mcp.NewTool("copy_styles",
		mcp.WithDescription("Copy the styles and variants of a block to the style clipboard"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleCopyStyles)
	s.mcp.AddTool(mcp.NewTool("paste_styles",
		mcp.WithDescription("Apply the style clipboard to a block"),
		mcp.WithString("blockId", mcp.Description("Block ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handlePasteStyles)
}

// ── Handlers ───────────────────────────────────────────────

type blockTypeInfo struct {
	Type            domain.BlockType   `json:"type"`
	Label           string             `json:"label,omitempty"`
	Container       bool               `json:"container"`
	AllowedChildren []domain.BlockType `json:"allowedChildren,omitempty"`
	AllowedParents  []domain.BlockType `json:"allowedParents,omitempty"`
}

func (s *Server) handleListBlockTypes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []blockTypeInfo
	for _, t := range s.registry.Types() {
		c, _ := s.registry.Lookup(t)
		out = append(out, blockTypeInfo{
			Type:            c.Type,
			Label:           c.Label,
			Container:       c.IsContainer,
			AllowedChildren: c.AllowedChildren,
			AllowedParents:  c.AllowedParents,
		})
	}
	return jsonResult(out)
}

func (s *Server) handleInsertBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockType, err := requireString(args, "type")
	if err != nil {
		return nil, err
	}
	pos, err := parsePosition(args, "position", domain.PositionInner)
	if err != nil {
		return nil, err
	}
	props, err := parseObject(args, "props")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}

	b, err := s.registry.Defaults(domain.BlockType(blockType))
	if err != nil {
		return toolError(err)
	}
	if content, ok := args["content"].(string); ok && content != "" {
		b.Content = content
	}
	if props != nil {
		b = blocktree.Patch{Props: props}.Apply(b)
	}

	target := req.GetString("targetId", domain.RootID)
	id, err := ed.Insert(target, b, pos)
	if err != nil {
		return toolError(err)
	}
	loc, _ := blocktree.Locate(ed.Tree(), id)
	return jsonResult(loc.Block)
}

func (s *Server) handleUpdateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}

	var patch blocktree.Patch
	if v, ok := args["content"].(string); ok {
		patch.Content = &v
	}
	if v, ok := args["type"].(string); ok && v != "" {
		bt := domain.BlockType(v)
		patch.Type = &bt
	}
	if patch.Props, err = parseObject(args, "props"); err != nil {
		return nil, err
	}
	if patch.Variants, err = parseObject(args, "variants"); err != nil {
		return nil, err
	}
	if patch.Styles, err = parseObject(args, "styles"); err != nil {
		return nil, err
	}

	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ed.Update(blockID, patch, false); err != nil {
		return toolError(err)
	}
	loc, _ := blocktree.Locate(ed.Tree(), blockID)
	return jsonResult(loc.Block)
}

func (s *Server) handleRemoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ed.Remove(blockID); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Block %s removed", blockID)), nil
}

func (s *Server) handleMoveBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	target, err := requireString(args, "targetId")
	if err != nil {
		return nil, err
	}
	pos, err := parsePosition(args, "position", "")
	if err != nil {
		return nil, err
	}
	if pos == "" {
		return nil, errors.New("position is required")
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ed.Move(blockID, target, pos); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Block %s moved %s %s", blockID, pos.Normalize(), target)), nil
}

func (s *Server) handleSwapBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	dir := domain.Direction(req.GetString("direction", ""))
	if dir != domain.DirectionUp && dir != domain.DirectionDown {
		return nil, errors.New("direction must be up or down")
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ed.Swap(blockID, dir); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Block %s swapped %s", blockID, dir)), nil
}

func (s *Server) handleDuplicateBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	id, err := ed.Duplicate(blockID)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]string{"id": id})
}

func (s *Server) handleSelectBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}

	switch rel := req.GetString("relation", "self"); rel {
	case "self":
		if err := ed.Select(blockID); err != nil {
			return toolError(err)
		}
	case "parent":
		ed.SelectParent(blockID)
	case string(domain.DirectionUp), string(domain.DirectionDown):
		ed.SelectSibling(blockID, domain.Direction(rel))
	default:
		return nil, errors.New("relation must be self, parent, up or down")
	}
	return jsonResult(map[string]string{"selectedId": ed.Selected()})
}

func (s *Server) handleCopyStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ed.CopyStyles(blockID); err != nil {
		return toolError(err)
	}
	clip, _ := ed.Clipboard()
	return jsonResult(clip)
}

func (s *Server) handlePasteStyles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	if err := ed.PasteStyles(blockID); err != nil {
		return toolError(err)
	}
	return textResult(fmt.Sprintf("Styles pasted onto %s", blockID)), nil
}
