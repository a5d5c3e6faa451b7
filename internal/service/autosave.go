package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────
// AutoSaver — periodic save of dirty pages
// ─────────────────────────────────────────────────────────────

// AutoSaver saves the dirty pages of a PageService on a cron schedule.
type AutoSaver struct {
	pages *PageService
	spec  string
	log   zerolog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewAutoSaver creates an AutoSaver for a cron spec such as "@every 30s".
func NewAutoSaver(pages *PageService, spec string, log zerolog.Logger) *AutoSaver {
	return &AutoSaver{pages: pages, spec: spec, log: log}
}

// Start schedules the saves. Calling Start on a running AutoSaver restarts
// it.
func (a *AutoSaver) Start(ctx context.Context) error {
	a.Stop()

	c := cron.New()
	if _, err := c.AddFunc(a.spec, func() { a.Tick(ctx) }); err != nil {
		return fmt.Errorf("autosave: invalid schedule %q: %w", a.spec, err)
	}
	c.Start()

	a.mu.Lock()
	a.cron = c
	a.mu.Unlock()
	a.log.Info().Str("schedule", a.spec).Msg("autosave started")
	return nil
}

// Tick saves the dirty pages once.
func (a *AutoSaver) Tick(ctx context.Context) {
	n, err := a.pages.SaveDirty(ctx)
	if err != nil {
		a.log.Error().Err(err).Msg("autosave failed")
	}
	if n > 0 {
		a.log.Debug().Int("pages", n).Msg("autosaved")
	}
}

// Stop halts the schedule and waits for a running tick to finish.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	c := a.cron
	a.cron = nil
	a.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
