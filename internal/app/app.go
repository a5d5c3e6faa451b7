// Package app wires configuration, storage and the page service into the
// process every command runs in.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"pagebuilder/internal/config"
	"pagebuilder/internal/events"
	"pagebuilder/internal/plugins"
	"pagebuilder/internal/service"
	"pagebuilder/internal/storage"
)

// App owns the long-lived components of a pagebuilder process.
type App struct {
	cfg      config.Config
	log      zerolog.Logger
	registry *plugins.Registry

	backend  *storage.Backend
	pages    *service.PageService
	autosave *service.AutoSaver
	imports  *service.ImportWatcher
}

// New creates an App. Nothing is opened until Startup.
func New(cfg config.Config, log zerolog.Logger) *App {
	return &App{cfg: cfg, log: log, registry: plugins.Builtin()}
}

// Startup opens the store and the page service.
func (a *App) Startup(ctx context.Context) error {
	dsn := a.cfg.DSN
	if a.cfg.Driver == string(storage.DialectSQLite) {
		dsn = a.cfg.SQLitePath()
	}
	backend, err := storage.OpenBackend(ctx, a.cfg.Driver, dsn, a.cfg.HistoryLimit)
	if err != nil {
		return fmt.Errorf("open %s store: %w", a.cfg.Driver, err)
	}
	a.backend = backend
	a.pages = service.NewPageService(service.Options{
		Backend:      backend,
		Caps:         a.registry,
		Emitter:      logEmitter(a.log),
		Logger:       a.log,
		Debounce:     a.cfg.Debounce,
		HistoryLimit: a.cfg.HistoryLimit,
	})
	a.log.Debug().Str("driver", a.cfg.Driver).Msg("store opened")
	return nil
}

// StartBackground starts autosave and, when an import directory is
// configured, the import watcher.
func (a *App) StartBackground(ctx context.Context) error {
	if a.pages == nil {
		return errors.New("app not started")
	}
	if a.cfg.Autosave != "" && a.cfg.Autosave != config.AutosaveOff {
		a.autosave = service.NewAutoSaver(a.pages, a.cfg.Autosave, a.log)
		if err := a.autosave.Start(ctx); err != nil {
			return err
		}
	}
	if a.cfg.ImportDir != "" {
		a.imports = service.NewImportWatcher(a.pages, a.cfg.ImportDir, a.log)
		if err := a.imports.Start(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown stops the background jobs, saves open pages and closes the
// store.
func (a *App) Shutdown(ctx context.Context) error {
	if a.imports != nil {
		a.imports.Stop()
	}
	if a.autosave != nil {
		a.autosave.Stop()
	}
	var errs []error
	if a.pages != nil {
		if err := a.pages.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("save open pages: %w", err))
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Pages returns the page service. It is nil before Startup.
func (a *App) Pages() *service.PageService { return a.pages }

// Registry returns the block capability registry.
func (a *App) Registry() *plugins.Registry { return a.registry }

// Config returns the settings the App was created with.
func (a *App) Config() config.Config { return a.cfg }

// logEmitter reports events at debug level when no front end is attached.
func logEmitter(log zerolog.Logger) events.Emitter {
	return events.Func(func(_ context.Context, event string, _ any) {
		log.Debug().Str("event", event).Msg("emit")
	})
}
