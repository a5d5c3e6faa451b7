// Package mcpserver exposes the page editor to AI agents over MCP.
package mcpserver

import (
	"context"
	"errors"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"pagebuilder/internal/editor"
	"pagebuilder/internal/plugins"
	"pagebuilder/internal/service"
)

// Server is the MCP server of the page builder.
// It exposes tools, resources, and prompts so agents can edit pages.
type Server struct {
	mcp      *server.MCPServer
	pages    *service.PageService
	registry *plugins.Registry
	layout   *LayoutEngine
	log      zerolog.Logger

	// Active page context (set by create_page / open_page)
	mu           sync.Mutex
	activePageID string
}

// Deps holds the dependencies passed from the command layer.
type Deps struct {
	Pages    *service.PageService
	Registry *plugins.Registry // must be the registry the PageService uses
	Logger   zerolog.Logger
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	reg := deps.Registry
	if reg == nil {
		reg = plugins.Builtin()
	}
	s := &Server{
		pages:    deps.Pages,
		registry: reg,
		layout:   NewLayoutEngine(reg),
		log:      deps.Logger,
	}

	s.mcp = server.NewMCPServer(
		"pagebuilder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerPageTools()
	s.registerBlockTools()
	s.registerListTools()
	s.registerPatternTools()
	s.registerDragTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	s.log.Info().Msg("starting MCP stdio server")
	return server.ServeStdio(s.mcp)
}

// ── Helpers ────────────────────────────────────────────────

func (s *Server) setActivePage(id string) {
	s.mu.Lock()
	s.activePageID = id
	s.mu.Unlock()
}

// resolvePageID returns the pageId from tool args or falls back to the
// active page.
func (s *Server) resolvePageID(args map[string]any) (string, error) {
	if pid, ok := args["pageId"].(string); ok && pid != "" {
		return pid, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activePageID != "" {
		return s.activePageID, nil
	}
	return "", errors.New("no pageId provided and no active page set (use open_page first)")
}

// editorFor returns the editor of the page named by args, opening the page
// when needed.
func (s *Server) editorFor(ctx context.Context, args map[string]any) (*editor.Editor, error) {
	pageID, err := s.resolvePageID(args)
	if err != nil {
		return nil, err
	}
	return s.pages.OpenPage(ctx, pageID)
}
