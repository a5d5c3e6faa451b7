package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"pagebuilder/internal/domain"
)

// PatternStore implements domain.PatternStore over SQL.
type PatternStore struct {
	db *DB
}

func NewPatternStore(db *DB) *PatternStore {
	return &PatternStore{db: db}
}

func (s *PatternStore) SavePattern(ctx context.Context, p *domain.Pattern) error {
	data, err := json.Marshal(p.Block)
	if err != nil {
		return fmt.Errorf("encode pattern: %w", err)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	}
	_, err = s.db.conn.ExecContext(ctx,
		s.db.upsert("patterns", []string{"id"}, []string{"name", "block_json", "created_at"}),
		p.ID, p.Name, string(data), p.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save pattern: %w", err)
	}
	return nil
}

func (s *PatternStore) GetPattern(ctx context.Context, id string) (*domain.Pattern, error) {
	row := s.db.conn.QueryRowContext(ctx,
		s.db.rebind(`SELECT id, name, block_json, created_at FROM patterns WHERE id = ?`), id)
	p, err := scanPattern(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get pattern %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get pattern: %w", err)
	}
	return p, nil
}

func (s *PatternStore) ListPatterns(ctx context.Context) ([]domain.Pattern, error) {
	rows, err := s.db.conn.QueryContext(ctx, `SELECT id, name, block_json, created_at FROM patterns ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list patterns: %w", err)
	}
	defer rows.Close()

	var patterns []domain.Pattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		patterns = append(patterns, *p)
	}
	return patterns, rows.Err()
}

func (s *PatternStore) DeletePattern(ctx context.Context, id string) error {
	_, err := s.db.conn.ExecContext(ctx, s.db.rebind(`DELETE FROM patterns WHERE id = ?`), id)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPattern(row scanner) (*domain.Pattern, error) {
	var (
		p         domain.Pattern
		blockJSON string
		created   int64
	)
	if err := row.Scan(&p.ID, &p.Name, &blockJSON, &created); err != nil {
		return nil, err
	}
	b, err := DecodeBlock([]byte(blockJSON))
	if err != nil {
		return nil, err
	}
	p.Block = b
	p.CreatedAt = time.UnixMilli(created).UTC()
	return &p, nil
}
