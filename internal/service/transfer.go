package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"pagebuilder/internal/domain"
	"pagebuilder/internal/events"
	"pagebuilder/internal/storage"
)

// ── import / export ────────────────────────────────────────

// ImportTree decodes a serialized tree into the page with the given id,
// creating the page when it does not exist. Malformed JSON yields an empty
// page rather than an error. An open page gets the tree as a fresh history.
func (s *PageService) ImportTree(ctx context.Context, id, name string, data []byte) (*domain.Page, error) {
	tree, err := storage.DecodeTree(data)
	if err != nil {
		s.log.Warn().Err(err).Str("pageId", id).Msg("malformed tree, importing an empty page")
		tree = domain.Tree{}
	}
	tree, _ = s.repairTree(id, tree)

	if ed, ok := s.Editor(id); ok {
		ed.ResetHistory(tree)
		if err := s.SavePage(ctx, id); err != nil {
			return nil, fmt.Errorf("import page: %w", err)
		}
		p := &domain.Page{ID: id, Name: name, Tree: ed.Tree()}
		s.emitter.Emit(ctx, events.PageImported, domain.PageSummary{ID: id, Name: name})
		return p, nil
	}

	p, err := s.backend.Pages.GetPage(ctx, id)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		p = &domain.Page{ID: id, Name: name}
	case err != nil:
		return nil, fmt.Errorf("import page: %w", err)
	}
	p.Tree = tree
	if err := s.backend.Pages.SavePage(ctx, p); err != nil {
		return nil, fmt.Errorf("import page: %w", err)
	}
	if err := s.backend.History.ClearHistory(ctx, id); err != nil {
		return nil, fmt.Errorf("import page: %w", err)
	}

	s.log.Info().Str("pageId", id).Int("blocks", len(tree)).Msg("page imported")
	s.emitter.Emit(ctx, events.PageImported, domain.PageSummary{ID: p.ID, Name: p.Name, UpdatedAt: p.UpdatedAt})
	return p, nil
}

// ImportFile imports a JSON file. The file name without its extension is
// both the page id and the page name.
func (s *PageService) ImportFile(ctx context.Context, path string) (*domain.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("import file: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return s.ImportTree(ctx, stem, stem, data)
}

// ExportTree returns the indented JSON of a page tree. Open pages export
// their current tree, unsaved edits included.
func (s *PageService) ExportTree(ctx context.Context, id string) ([]byte, error) {
	var tree domain.Tree
	if ed, ok := s.Editor(id); ok {
		tree = ed.Tree()
	} else {
		p, err := s.backend.Pages.GetPage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("export page: %w", err)
		}
		tree = p.Tree
	}

	data, err := storage.EncodeTree(tree)
	if err != nil {
		return nil, fmt.Errorf("export page: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, fmt.Errorf("export page: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// ExportFile writes a page tree to path.
func (s *PageService) ExportFile(ctx context.Context, id, path string) error {
	data, err := s.ExportTree(ctx, id)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("export file: %w", err)
	}
	return nil
}
