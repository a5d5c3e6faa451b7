package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through building a landing page out of layout and basic blocks"),
		mcp.WithArgument("product",
			mcp.ArgumentDescription("Product or topic the page presents"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("feature_grid",
		mcp.WithPromptDescription("Build a row of feature columns and save it as a reusable pattern"),
		mcp.WithArgument("features",
			mcp.ArgumentDescription("Comma-separated feature names"),
			mcp.RequiredArgument(),
		),
	), s.handleFeatureGridPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("outline",
		mcp.WithPromptDescription("Turn a topic into a nested bullet outline"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Topic of the outline"),
			mcp.RequiredArgument(),
		),
	), s.handleOutlinePrompt)
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.TextContent{Type: "text", Text: text},
			},
		},
	}
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	product := req.Params.Arguments["product"]
	return userPrompt(fmt.Sprintf("Build a landing page for: %s", product),
		fmt.Sprintf(`Build a landing page for "%s". Follow these steps:

1. Use create_page with the name "%s" (it becomes the active page)
2. Call list_block_types to see which blocks exist and what they may contain
3. Insert a layout/container at the root, then a basic/heading and a basic/text inside it with insert_block
4. Add a layout/row below the container with two layout/column children, and fill each column with a basic/image and a basic/button
5. Use get_tree to check the structure, then save_page

Only nest blocks where list_block_types allows it; rejected inserts leave the tree unchanged.`, product, product)), nil
}

func (s *Server) handleFeatureGridPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	features := req.Params.Arguments["features"]
	return userPrompt("Build a reusable feature grid",
		fmt.Sprintf(`Build a feature grid for these features: %s. Follow these steps:

1. Insert a layout/row on the active page with insert_block
2. For each feature, insert a layout/column inside the row, then a basic/heading and a basic/text inside the column
3. Style the first heading with update_block, then use copy_styles and paste_styles to apply the same styles to the other headings
4. Save the row with save_pattern so it can be reused with insert_pattern or drag_block
5. save_page when done`, features)), nil
}

func (s *Server) handleOutlinePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return userPrompt(fmt.Sprintf("Outline: %s", topic),
		fmt.Sprintf(`Write an outline about "%s" on the active page. Follow these steps:

1. Insert a basic/heading with the topic, then a basic/list below it
2. Use add_list_item on the list for each main point; anchoring on an item inserts right after it
3. Use indent_list_item to nest sub-points under the previous item, and outdent_list_item to move them back
4. Fix wording with update_list_item, then save_page`, topic)), nil
}
