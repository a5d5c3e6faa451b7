package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
)

func (s *Server) registerPatternTools() {
	s.mcp.AddTool(mcp.NewTool("save_pattern",
		mcp.WithDescription("Save a block and its subtree as a reusable pattern"),
		mcp.WithString("blockId", mcp.Description("Root block of the pattern"), mcp.Required()),
		mcp.WithString("name", mcp.Description("Pattern name"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleSavePattern)

	s.mcp.AddTool(mcp.NewTool("list_patterns",
		mcp.WithDescription("List saved patterns"),
	), s.handleListPatterns)

	s.mcp.AddTool(mcp.NewTool("insert_pattern",
		mcp.WithDescription("Insert a copy of a saved pattern, with fresh ids, relative to a target block"),
		mcp.WithString("patternId", mcp.Description("Pattern ID"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Target block ID (default root)")),
		mcp.WithString("position", mcp.Description("Placement: "+positionHelp+" (default inner)")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleInsertPattern)
}

type patternSummary struct {
	ID     string           `json:"id"`
	Name   string           `json:"name"`
	Type   domain.BlockType `json:"type"`
	Blocks int              `json:"blocks"`
}

func summarizePattern(p domain.Pattern) patternSummary {
	n := 0
	var count func(b domain.Block)
	count = func(b domain.Block) {
		n++
		for _, c := range b.Children {
			count(c)
		}
	}
	count(p.Block)
	return patternSummary{ID: p.ID, Name: p.Name, Type: p.Block.Type, Blocks: n}
}

func (s *Server) handleSavePattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	blockID, err := requireString(args, "blockId")
	if err != nil {
		return nil, err
	}
	name, err := requireString(args, "name")
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	if _, err := s.pages.OpenPage(ctx, pageID); err != nil {
		return toolError(err)
	}
	p, err := s.pages.SavePattern(ctx, pageID, blockID, name)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(summarizePattern(*p))
}

func (s *Server) handleListPatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	patterns, err := s.pages.ListPatterns(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]patternSummary, len(patterns))
	for i, p := range patterns {
		out[i] = summarizePattern(p)
	}
	return jsonResult(out)
}

func (s *Server) handleInsertPattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	patternID, err := requireString(args, "patternId")
	if err != nil {
		return nil, err
	}
	pos, err := parsePosition(args, "position", domain.PositionInner)
	if err != nil {
		return nil, err
	}
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	if _, err := s.pages.OpenPage(ctx, pageID); err != nil {
		return toolError(err)
	}
	id, err := s.pages.InsertPattern(ctx, pageID, patternID, req.GetString("targetId", domain.RootID), pos)
	if err != nil {
		return toolError(err)
	}
	return jsonResult(map[string]string{"id": id})
}
