package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
)

func newPagesCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "pages",
		Short: "List pages, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd.Context(), func(a *app.App) error {
				pages, err := a.Pages().ListPages(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, p := range pages {
					fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.UpdatedAt.Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}
}

func newTreeCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <page-id>",
		Short: "Print the block tree of a page as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd.Context(), func(a *app.App) error {
				data, err := a.Pages().ExportTree(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}
}

func newPatternsCommand(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List saved patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withApp(cmd.Context(), func(a *app.App) error {
				patterns, err := a.Pages().ListPatterns(cmd.Context())
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, p := range patterns {
					fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Block.Type)
				}
				return w.Flush()
			})
		},
	}
}
