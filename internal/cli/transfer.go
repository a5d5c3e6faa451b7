package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
)

func newImportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>...",
		Short: "Import JSON page trees",
		Long: `Import one or more JSON page trees. The file name without its
extension becomes the page id; importing the same file again replaces the
page.

Example:
  pagebuilder import ./home.json ./pricing.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd.Context(), func(a *app.App) error {
				for _, path := range args {
					p, err := a.Pages().ImportFile(cmd.Context(), path)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d blocks\n", p.ID, countBlocks(p.Tree))
				}
				return nil
			})
		},
	}
}

func newExportCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "export <page-id> <file.json>",
		Short: "Write the block tree of a page to a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd.Context(), func(a *app.App) error {
				return a.Pages().ExportFile(cmd.Context(), args[0], args[1])
			})
		},
	}
}
