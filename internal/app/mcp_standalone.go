package app

import (
	"context"
	"fmt"

	mcpserver "pagebuilder/internal/mcp"
)

// ServeMCP runs the page editor as an MCP server on stdin/stdout until the
// client disconnects. Log lines must go to stderr or a file in this mode.
func (a *App) ServeMCP(ctx context.Context) error {
	if err := a.Startup(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Shutdown(context.WithoutCancel(ctx)); err != nil {
			a.log.Error().Err(err).Msg("shutdown")
		}
	}()
	if err := a.StartBackground(ctx); err != nil {
		return err
	}

	srv := mcpserver.New(mcpserver.Deps{
		Pages:    a.pages,
		Registry: a.registry,
		Logger:   a.log.With().Str("component", "mcp").Logger(),
	})
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}
