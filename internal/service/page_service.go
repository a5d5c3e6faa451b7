// Package service owns the open editing sessions and moves pages between
// them and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"pagebuilder/internal/blocktree"
	"pagebuilder/internal/domain"
	"pagebuilder/internal/editor"
	"pagebuilder/internal/events"
	"pagebuilder/internal/plugins"
	"pagebuilder/internal/storage"
)

// ErrSaveInProgress is returned when a page is already being saved.
var ErrSaveInProgress = errors.New("save already in progress")

// ─────────────────────────────────────────────────────────────
// Page Service — sessions, persistence and patterns
// ─────────────────────────────────────────────────────────────

// Options configures a PageService.
type Options struct {
	Backend      *storage.Backend
	Caps         editor.Capabilities
	Emitter      events.Emitter
	Logger       zerolog.Logger
	Debounce     time.Duration
	HistoryLimit int
}

// PageService maps open page ids to their editors.
type PageService struct {
	backend      *storage.Backend
	caps         editor.Capabilities
	emitter      events.Emitter
	log          zerolog.Logger
	debounce     time.Duration
	historyLimit int

	mu       sync.Mutex
	sessions map[string]*session
	saving   saveGuard
}

type session struct {
	editor *editor.Editor
	dirty  atomic.Bool

	mu        sync.Mutex
	name      string
	createdAt time.Time
}

func (sess *session) page(tree domain.Tree) *domain.Page {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &domain.Page{ID: sess.editor.PageID(), Name: sess.name, Tree: tree, CreatedAt: sess.createdAt}
}

func (sess *session) rename(name string) {
	sess.mu.Lock()
	sess.name = name
	sess.mu.Unlock()
}

// NewPageService creates a PageService over an open backend.
func NewPageService(opts Options) *PageService {
	s := &PageService{
		backend:      opts.Backend,
		caps:         opts.Caps,
		emitter:      opts.Emitter,
		log:          opts.Logger,
		debounce:     opts.Debounce,
		historyLimit: opts.HistoryLimit,
		sessions:     make(map[string]*session),
	}
	if s.caps == nil {
		s.caps = plugins.Builtin()
	}
	if s.emitter == nil {
		s.emitter = events.Nop{}
	}
	return s
}

// Capabilities returns the registry editors are created with.
func (s *PageService) Capabilities() editor.Capabilities { return s.caps }

// CreatePage stores a new page holding tree and opens it.
func (s *PageService) CreatePage(ctx context.Context, name string, tree domain.Tree) (*editor.Editor, error) {
	if tree == nil {
		tree = domain.Tree{}
	}
	if err := blocktree.Validate(tree); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	p := &domain.Page{ID: blocktree.NewID(), Name: name, Tree: tree}
	if err := s.backend.Pages.SavePage(ctx, p); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	s.log.Info().Str("pageId", p.ID).Str("name", name).Msg("page created")

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.openLocked(ctx, p, nil).editor, nil
}

// ListPages returns the stored pages, most recently updated first.
func (s *PageService) ListPages(ctx context.Context) ([]domain.PageSummary, error) {
	pages, err := s.backend.Pages.ListPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	return pages, nil
}

// OpenPage returns the editor of a page, loading the page and its saved
// history when it is not open yet.
func (s *PageService) OpenPage(ctx context.Context, id string) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess.editor, nil
	}

	p, err := s.backend.Pages.GetPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	rec, err := s.backend.History.LoadHistory(ctx, id)
	if err != nil {
		s.log.Warn().Err(err).Str("pageId", id).Msg("history not restored")
		rec = nil
	}
	return s.openLocked(ctx, p, rec).editor, nil
}

// repairTree renames blocks with a blank or repeated id so every block
// stays addressable.
func (s *PageService) repairTree(pageID string, t domain.Tree) (domain.Tree, bool) {
	fixed, n := blocktree.Repair(t)
	if n > 0 {
		s.log.Warn().Str("pageId", pageID).Int("blocks", n).Msg("renamed blocks with missing or duplicate ids")
	}
	return fixed, n > 0
}

func (s *PageService) openLocked(ctx context.Context, p *domain.Page, rec *domain.HistoryRecord) *session {
	var renamed bool
	p.Tree, renamed = s.repairTree(p.ID, p.Tree)
	if rec != nil {
		for i, entry := range rec.Entries {
			rec.Entries[i], _ = blocktree.Repair(entry)
		}
	}

	sess := &session{name: p.Name, createdAt: p.CreatedAt}
	sess.editor = editor.New(editor.Options{
		PageID:       p.ID,
		Tree:         p.Tree,
		Caps:         s.caps,
		Emitter:      s.emitter,
		Logger:       s.log,
		Context:      context.WithoutCancel(ctx),
		Debounce:     s.debounce,
		HistoryLimit: s.historyLimit,
		OnChange:     func(domain.Tree) { sess.dirty.Store(true) },
	})
	if rec != nil {
		hist := sess.editor.History()
		if err := hist.Restore(rec.Entries, rec.Cursor); err != nil {
			s.log.Warn().Err(err).Str("pageId", p.ID).Msg("history not restored")
		} else {
			// The stored page is authoritative; a diverging history gets
			// the page tree as a new entry on top.
			hist.Commit(p.Tree)
		}
	}
	sess.dirty.Store(renamed)
	s.sessions[p.ID] = sess
	return sess
}

// Editor returns the editor of an open page.
func (s *PageService) Editor(id string) (*editor.Editor, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	return sess.editor, true
}

// OpenPages returns the ids of the open pages, sorted.
func (s *PageService) OpenPages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dirty reports whether an open page has unsaved edits.
func (s *PageService) Dirty(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return ok && sess.dirty.Load()
}

// SavePage writes an open page and its history to the store.
func (s *PageService) SavePage(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("save page %q: not open: %w", id, domain.ErrNotFound)
	}
	return s.save(ctx, id, sess)
}

func (s *PageService) save(ctx context.Context, id string, sess *session) error {
	if !s.saving.TryLock(id) {
		return fmt.Errorf("save page %q: %w", id, ErrSaveInProgress)
	}
	defer s.saving.Unlock(id)

	// Cleared after the flush so that only edits racing the write mark the
	// page dirty again.
	sess.editor.Flush()
	sess.dirty.Store(false)
	entries, cursor := sess.editor.History().Snapshot()

	p := sess.page(entries[cursor])
	if err := s.backend.Pages.SavePage(ctx, p); err != nil {
		sess.dirty.Store(true)
		return fmt.Errorf("save page: %w", err)
	}
	sess.mu.Lock()
	sess.createdAt = p.CreatedAt
	sess.mu.Unlock()
	if err := s.backend.History.SaveHistory(ctx, id, domain.HistoryRecord{Entries: entries, Cursor: cursor}); err != nil {
		s.log.Warn().Err(err).Str("pageId", id).Msg("history not saved")
	}

	s.log.Debug().Str("pageId", id).Int("entries", len(entries)).Msg("page saved")
	s.emitter.Emit(ctx, events.PageSaved, domain.PageSummary{ID: id, Name: p.Name, UpdatedAt: p.UpdatedAt})
	return nil
}

// SaveDirty saves every open page with unsaved edits and returns how many
// were written.
func (s *PageService) SaveDirty(ctx context.Context) (int, error) {
	s.mu.Lock()
	dirty := make(map[string]*session)
	for id, sess := range s.sessions {
		if sess.dirty.Load() {
			dirty[id] = sess
		}
	}
	s.mu.Unlock()

	var (
		saved int
		errs  []error
	)
	for id, sess := range dirty {
		err := s.save(ctx, id, sess)
		switch {
		case errors.Is(err, ErrSaveInProgress):
		case err != nil:
			errs = append(errs, err)
		default:
			saved++
		}
	}
	return saved, errors.Join(errs...)
}

// RenamePage changes the display name of a page.
func (s *PageService) RenamePage(ctx context.Context, id, name string) error {
	s.mu.Lock()
	sess, open := s.sessions[id]
	if open {
		sess.rename(name)
		sess.dirty.Store(true)
	}
	s.mu.Unlock()
	if open {
		return s.save(ctx, id, sess)
	}

	p, err := s.backend.Pages.GetPage(ctx, id)
	if err != nil {
		return fmt.Errorf("rename page: %w", err)
	}
	p.Name = name
	if err := s.backend.Pages.SavePage(ctx, p); err != nil {
		return fmt.Errorf("rename page: %w", err)
	}
	return nil
}

// ClosePage drops the session of a page, saving it first when save is set
// and it has unsaved edits.
func (s *PageService) ClosePage(ctx context.Context, id string, save bool) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	sess.editor.Flush()
	if save && sess.dirty.Load() {
		if err := s.save(ctx, id, sess); err != nil {
			return fmt.Errorf("close page: %w", err)
		}
	}
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// DeletePage closes a page without saving and removes it and its history.
func (s *PageService) DeletePage(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	if err := s.backend.Pages.DeletePage(ctx, id); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	s.log.Info().Str("pageId", id).Msg("page deleted")
	return nil
}

// Close saves every dirty page and waits for in-flight saves.
func (s *PageService) Close(ctx context.Context) error {
	_, err := s.SaveDirty(ctx)
	s.saving.WaitAll(ctx)
	return err
}

// ── patterns ───────────────────────────────────────────────

// SavePattern stores a copy of a block subtree of an open page under name.
func (s *PageService) SavePattern(ctx context.Context, pageID, blockID, name string) (*domain.Pattern, error) {
	ed, ok := s.Editor(pageID)
	if !ok {
		return nil, fmt.Errorf("save pattern: page %q not open: %w", pageID, domain.ErrNotFound)
	}
	loc, ok := blocktree.Locate(ed.Tree(), blockID)
	if !ok {
		return nil, fmt.Errorf("save pattern: block %q: %w", blockID, domain.ErrNotFound)
	}
	p := &domain.Pattern{ID: blocktree.NewID(), Name: name, Block: loc.Block}
	if err := s.backend.Patterns.SavePattern(ctx, p); err != nil {
		return nil, fmt.Errorf("save pattern: %w", err)
	}
	return p, nil
}

// ListPatterns returns the saved patterns.
func (s *PageService) ListPatterns(ctx context.Context) ([]domain.Pattern, error) {
	patterns, err := s.backend.Patterns.ListPatterns(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	return patterns, nil
}

// Pattern returns a saved pattern.
func (s *PageService) Pattern(ctx context.Context, id string) (*domain.Pattern, error) {
	p, err := s.backend.Patterns.GetPattern(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return p, nil
}

// InsertPattern inserts a fresh-id copy of a saved pattern into an open
// page and returns the id of its root.
func (s *PageService) InsertPattern(ctx context.Context, pageID, patternID, targetID string, pos domain.Position) (string, error) {
	ed, ok := s.Editor(pageID)
	if !ok {
		return "", fmt.Errorf("insert pattern: page %q not open: %w", pageID, domain.ErrNotFound)
	}
	p, err := s.Pattern(ctx, patternID)
	if err != nil {
		return "", fmt.Errorf("insert pattern: %w", err)
	}
	return ed.InsertPattern(targetID, p.Block, pos)
}

// DeletePattern removes a saved pattern.
func (s *PageService) DeletePattern(ctx context.Context, id string) error {
	if err := s.backend.Patterns.DeletePattern(ctx, id); err != nil {
		return fmt.Errorf("delete pattern: %w", err)
	}
	return nil
}
