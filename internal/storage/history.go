package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pagebuilder/internal/domain"
)

// DefaultHistoryLimit caps the snapshots kept per page.
const DefaultHistoryLimit = 100

// HistoryStore persists undo history as one row per snapshot plus a
// cursor row per page.
type HistoryStore struct {
	db    *DB
	limit int
}

// NewHistoryStore creates a store that keeps at most limit snapshots per
// page. A non-positive limit uses DefaultHistoryLimit.
func NewHistoryStore(db *DB, limit int) *HistoryStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &HistoryStore{db: db, limit: limit}
}

// SaveHistory replaces the stored history of a page.
func (s *HistoryStore) SaveHistory(ctx context.Context, pageID string, rec domain.HistoryRecord) error {
	rec = pruneHistory(rec, s.limit)
	if len(rec.Entries) == 0 {
		return s.ClearHistory(ctx, pageID)
	}

	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.db.rebind(`DELETE FROM history_entries WHERE page_id = ?`), pageID); err != nil {
		return fmt.Errorf("clear history entries: %w", err)
	}
	insert := s.db.rebind(`INSERT INTO history_entries (page_id, seq, tree_json) VALUES (?, ?, ?)`)
	for i, t := range rec.Entries {
		data, err := EncodeTree(t)
		if err != nil {
			return fmt.Errorf("encode history entry %d: %w", i, err)
		}
		if _, err := tx.ExecContext(ctx, insert, pageID, i, string(data)); err != nil {
			return fmt.Errorf("insert history entry: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		s.db.upsert("history_state", []string{"page_id"}, []string{"position"}),
		pageID, rec.Cursor,
	); err != nil {
		return fmt.Errorf("update history state: %w", err)
	}
	return tx.Commit()
}

// LoadHistory returns the stored history of a page, or nil when none.
func (s *HistoryStore) LoadHistory(ctx context.Context, pageID string) (*domain.HistoryRecord, error) {
	var cursor int
	err := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT position FROM history_state WHERE page_id = ?`), pageID,
	).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load history state: %w", err)
	}

	rows, err := s.db.conn.QueryContext(ctx,
		s.db.rebind(`SELECT tree_json FROM history_entries WHERE page_id = ? ORDER BY seq ASC`), pageID)
	if err != nil {
		return nil, fmt.Errorf("load history entries: %w", err)
	}
	defer rows.Close()

	rec := &domain.HistoryRecord{Cursor: cursor}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		t, err := DecodeTree([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", len(rec.Entries), err)
		}
		rec.Entries = append(rec.Entries, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(rec.Entries) == 0 {
		return nil, nil
	}
	if rec.Cursor < 0 || rec.Cursor >= len(rec.Entries) {
		rec.Cursor = len(rec.Entries) - 1
	}
	return rec, nil
}

// ClearHistory removes all history of a page.
func (s *HistoryStore) ClearHistory(ctx context.Context, pageID string) error {
	_, stateErr := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM history_state WHERE page_id = ?`), pageID)
	_, entriesErr := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM history_entries WHERE page_id = ?`), pageID)
	if err := errors.Join(stateErr, entriesErr); err != nil {
		return fmt.Errorf("clear history %s: %w", pageID, err)
	}
	return nil
}

// pruneHistory drops the oldest snapshots beyond limit, never the one
// under the cursor.
func pruneHistory(rec domain.HistoryRecord, limit int) domain.HistoryRecord {
	if len(rec.Entries) <= limit {
		return rec
	}
	drop := len(rec.Entries) - limit
	if drop > rec.Cursor {
		drop = rec.Cursor
	}
	rec.Entries = rec.Entries[drop:]
	rec.Cursor -= drop
	if len(rec.Entries) > limit {
		// Entries after the cursor are the redo tail; trim it last.
		rec.Entries = rec.Entries[:limit]
	}
	return rec
}
