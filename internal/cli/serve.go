package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
	"pagebuilder/internal/domain"
)

func newMCPCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the page editor to agents over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.app.ServeMCP(cmd.Context())
		},
	}
}

func newWatchCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dir]",
		Short: "Import JSON page trees dropped into a directory until interrupted",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.app.Config()
			if len(args) == 1 {
				cfg.ImportDir = args[0]
			}
			if cfg.ImportDir == "" {
				return errors.New("no directory given and PAGEBUILDER_IMPORT_DIR is not set")
			}
			rt.app = app.New(cfg, rt.log.Logger)

			return rt.withApp(cmd.Context(), func(a *app.App) error {
				if err := a.StartBackground(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "watching %s\n", cfg.ImportDir)
				<-cmd.Context().Done()
				return nil
			})
		},
	}
}

func countBlocks(t domain.Tree) int {
	n := 0
	for _, b := range t {
		n += 1 + countBlocks(b.Children)
	}
	return n
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}
	return d, nil
}
