package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// PageStore implements domain.PageStore over SQL.
type PageStore struct {
	db *DB
}

func NewPageStore(db *DB) *PageStore {
	return &PageStore{db: db}
}

// SavePage inserts or replaces a page, stamping its timestamps.
func (s *PageStore) SavePage(ctx context.Context, p *domain.Page) error {
	data, err := EncodeTree(p.Tree)
	if err != nil {
		return fmt.Errorf("encode page tree: %w", err)
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	_, err = s.db.conn.ExecContext(ctx,
		s.db.upsert("pages", []string{"id"}, []string{"name", "tree_json", "created_at", "updated_at"}),
		p.ID, p.Name, string(data), p.CreatedAt.UnixMilli(), p.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save page: %w", err)
	}
	return nil
}

// GetPage loads a page. A missing page wraps domain.ErrNotFound.
func (s *PageStore) GetPage(ctx context.Context, id string) (*domain.Page, error) {
	var (
		p                domain.Page
		treeJSON         string
		created, updated int64
	)
	err := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT id, name, tree_json, created_at, updated_at FROM pages WHERE id = ?`), id,
	).Scan(&p.ID, &p.Name, &treeJSON, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get page %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	p.Tree, err = DecodeTree([]byte(treeJSON))
	if err != nil {
		return nil, fmt.Errorf("get page %q: %w", id, err)
	}
	p.CreatedAt = time.UnixMilli(created).UTC()
	p.UpdatedAt = time.UnixMilli(updated).UTC()
	return &p, nil
}

// ListPages returns page summaries, most recently updated first.
func (s *PageStore) ListPages(ctx context.Context) ([]domain.PageSummary, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT id, name, updated_at FROM pages ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var pages []domain.PageSummary
	for rows.Next() {
		var (
			p       domain.PageSummary
			updated int64
		)
		if err := rows.Scan(&p.ID, &p.Name, &updated); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		p.UpdatedAt = time.UnixMilli(updated).UTC()
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// DeletePage removes a page and its stored history.
func (s *PageStore) DeletePage(ctx context.Context, id string) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete page: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM history_entries WHERE page_id = ?`,
		`DELETE FROM history_state WHERE page_id = ?`,
		`DELETE FROM pages WHERE id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, s.db.rebind(q), id); err != nil {
			return fmt.Errorf("delete page: %w", err)
		}
	}
	return tx.Commit()
}
