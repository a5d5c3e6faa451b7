package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"pagebuilder/internal/domain"
)

const (
	pagesURI       = "pagebuilder://pages"
	pageTreePrefix = "pagebuilder://page/"
	pageTreeSuffix = "/tree"
)

func (s *Server) registerResources() {
	// ── pagebuilder://pages ────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		pagesURI,
		"All Pages",
		mcp.WithMIMEType("application/json"),
	), s.handlePagesResource)

	// ── pagebuilder://page/{pageId}/tree ───────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageTreePrefix+"{pageId}"+pageTreeSuffix,
			"Block Tree of a Page",
		),
		s.handlePageTreeResource,
	)
}

func (s *Server) handlePagesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	pages, err := s.pages.ListPages(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []domain.PageSummary{}
	}
	data, err := json.MarshalIndent(pages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal pages: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      pagesURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handlePageTreeResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := pageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}
	data, err := s.pages.ExportTree(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// pageIDFromURI extracts the page id from "pagebuilder://page/{id}/tree".
func pageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, pageTreePrefix)
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, pageTreeSuffix)
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}
