package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/dnd"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
)

func (s *Server) registerDragTools() {
	// ── drag_block ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drag_block",
		mcp.WithDescription("Drag a block, a new block type or a pattern over the laid-out page and drop it where the pointer lands. "+
			"Coordinates are in the page layout returned by measure_page. Set dryRun to only preview the drop indicator."),
		mcp.WithString("blockId", mcp.Description("Existing block to drag")),
		mcp.WithString("type", mcp.Description("Block type to create")),
		mcp.WithString("patternId", mcp.Description("Pattern to insert")),
		mcp.WithString("overId", mcp.Description("Block under the pointer, or root for bare canvas"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Pointer X"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Pointer Y"), mcp.Required()),
		mcp.WithBoolean("dryRun", mcp.Description("Preview only (default false)")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleDragBlock)

	// ── measure_page ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("measure_page",
		mcp.WithDescription("Lay out a page and return the rect of every block"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleMeasurePage)
}

type dragResult struct {
	Dropped   bool                  `json:"dropped"`
	BlockID   string                `json:"blockId,omitempty"`
	Indicator *domain.DropIndicator `json:"indicator"`
}

func (s *Server) payload(ctx context.Context, args map[string]any) (dnd.Payload, error) {
	blockID, _ := args["blockId"].(string)
	blockType, _ := args["type"].(string)
	patternID, _ := args["patternId"].(string)

	switch {
	case blockID != "":
		return dnd.Existing(blockID), nil
	case blockType != "":
		return dnd.NewBlock(domain.BlockType(blockType)), nil
	case patternID != "":
		p, err := s.pages.Pattern(ctx, patternID)
		if err != nil {
			return dnd.Payload{}, err
		}
		return dnd.FromPattern(p.Block), nil
	default:
		return dnd.Payload{}, errors.New("one of blockId, type or patternId is required")
	}
}

// draggedRect places the dragged element so its center is at (x, y). An
// existing block keeps its measured size.
func (s *Server) draggedRect(rects dnd.Rects, p dnd.Payload, x, y float64) domain.Rect {
	if p.Kind == dnd.PayloadExisting {
		if r, ok := rects.Rect(p.BlockID); ok {
			r.X, r.Y = x-r.W/2, y-r.H/2
			return r
		}
	}
	return s.layout.LeafRect(x, y)
}

func (s *Server) handleDragBlock(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	overID, err := requireString(args, "overId")
	if err != nil {
		return nil, err
	}
	p, err := s.payload(ctx, args)
	if err != nil {
		return toolError(err)
	}
	ed, err := s.editorFor(ctx, args)
	if err != nil {
		return nil, err
	}
	res, err := s.drag(ed, p, overID, getFloat(args, "x", 0), getFloat(args, "y", 0), getBool(args, "dryRun", false))
	if err != nil {
		return toolError(err)
	}
	return jsonResult(res)
}

// drag runs one full gesture against the headless layout.
func (s *Server) drag(ed *editor.Editor, p dnd.Payload, overID string, x, y float64, dryRun bool) (dragResult, error) {
	rects := s.layout.Measure(ed.Tree())
	ed.SetMeasurer(rects)
	if err := ed.OnDragStart(p); err != nil {
		return dragResult{}, err
	}
	ind := ed.OnDragMove(dnd.Update{OverID: overID, Dragged: s.draggedRect(rects, p, x, y)})
	if dryRun {
		ed.OnDragCancel()
		return dragResult{Indicator: ind}, nil
	}

	id, err := ed.OnDragEnd()
	if errors.Is(err, domain.ErrNoDecision) {
		return dragResult{}, nil
	}
	if err != nil {
		return dragResult{}, err
	}
	return dragResult{Dropped: true, BlockID: id, Indicator: ind}, nil
}

func (s *Server) handleMeasurePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ed, err := s.editorFor(ctx, req.GetArguments())
	if err != nil {
		return nil, err
	}
	return jsonResult(s.layout.Measure(ed.Tree()))
}
