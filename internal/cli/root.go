// Package cli is the pagebuilder command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pagebuilder/internal/app"
	"pagebuilder/internal/config"
	"pagebuilder/internal/logging"
)

// flags mirror config.Config. Only flags set on the command line override
// the environment.
type flags struct {
	driver       string
	dsn          string
	dataDir      string
	importDir    string
	autosave     string
	debounce     string
	historyLimit int
	logLevel     string
	logFile      string
}

// runtime is what PersistentPreRunE hands to the subcommands.
type runtime struct {
	app *app.App
	log *logging.Log
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var f flags
	rt := &runtime{}

	root := &cobra.Command{
		Use:   "pagebuilder",
		Short: "Block tree page editor",
		Long: `pagebuilder edits pages made of nested blocks: containers, rows,
columns, text, lists and tables.

It serves the editor to AI agents over MCP, and imports or exports page
trees as JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil && !cmd.Flags().Changed("driver") && !cmd.Flags().Changed("dsn") {
				return err
			}
			cfg, err = f.apply(cmd, cfg)
			if err != nil {
				return err
			}

			b := logging.New().ToWriter(cmd.ErrOrStderr()).WithLevel(cfg.LogLevel).Console()
			if cfg.LogFile != "" {
				b = b.ToPath(cfg.LogFile)
			}
			l, err := b.Make()
			if err != nil {
				return fmt.Errorf("open log: %w", err)
			}
			rt.log = l
			rt.app = app.New(cfg, l.Logger)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if rt.log != nil {
				return rt.log.Close()
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.driver, "driver", config.DefaultDriver, "storage driver: sqlite, postgres, mysql or mongo")
	pf.StringVar(&f.dsn, "dsn", "", "database DSN (sqlite: file path)")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory of the default sqlite database")
	pf.StringVar(&f.importDir, "import-dir", "", "directory watched for JSON page trees")
	pf.StringVar(&f.autosave, "autosave", config.DefaultAutosave, `autosave cron schedule, or "off"`)
	pf.StringVar(&f.debounce, "debounce", config.DefaultDebounce.String(), "coalescing window of typed edits")
	pf.IntVar(&f.historyLimit, "history-limit", config.DefaultHistoryLimit, "undo entries kept per page")
	pf.StringVar(&f.logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	pf.StringVar(&f.logFile, "log-file", "", "append logs to this file instead of stderr")

	root.AddCommand(
		newMCPCommand(rt),
		newWatchCommand(rt),
		newPagesCommand(rt),
		newTreeCommand(rt),
		newPatternsCommand(rt),
		newImportCommand(rt),
		newExportCommand(rt),
	)
	return root
}

// apply overrides cfg with the flags set on the command line.
func (f *flags) apply(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	set := cmd.Flags().Changed
	if set("driver") {
		cfg.Driver = f.driver
	}
	if set("dsn") {
		cfg.DSN = f.dsn
	}
	if set("data-dir") {
		cfg.DataDir = f.dataDir
	}
	if set("import-dir") {
		cfg.ImportDir = f.importDir
	}
	if set("autosave") {
		cfg.Autosave = f.autosave
	}
	if set("debounce") {
		d, err := parseDuration(f.debounce)
		if err != nil {
			return cfg, fmt.Errorf("parse --debounce: %w", err)
		}
		cfg.Debounce = d
	}
	if set("history-limit") {
		cfg.HistoryLimit = f.historyLimit
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-file") {
		cfg.LogFile = f.logFile
	}
	return cfg, cfg.Validate()
}

// withApp runs fn against a started App and shuts it down afterwards.
func (rt *runtime) withApp(ctx context.Context, fn func(a *app.App) error) error {
	if err := rt.app.Startup(ctx); err != nil {
		return err
	}
	err := fn(rt.app)
	if serr := rt.app.Shutdown(context.WithoutCancel(ctx)); serr != nil && err == nil {
		err = serr
	}
	return err
}

// Execute runs the root command until it returns or the process is
// interrupted.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}
