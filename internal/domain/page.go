package domain

import (
	"context"
	"time"
)

// Page is a persisted document: a named block tree.
type Page struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Tree      Tree      `json:"tree"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PageSummary is the listing view of a page, without its tree.
type PageSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pattern is a named, reusable subtree insertable as a unit.
type Pattern struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Block     Block     `json:"block"`
	CreatedAt time.Time `json:"createdAt"`
}

type PageStore interface {
	SavePage(ctx context.Context, p *Page) error
	GetPage(ctx context.Context, id string) (*Page, error)
	ListPages(ctx context.Context) ([]PageSummary, error)
	DeletePage(ctx context.Context, id string) error
}

type PatternStore interface {
	SavePattern(ctx context.Context, p *Pattern) error
	GetPattern(ctx context.Context, id string) (*Pattern, error)
	ListPatterns(ctx context.Context) ([]Pattern, error)
	DeletePattern(ctx context.Context, id string) error
}

// HistoryRecord is the persisted undo history of a page.
type HistoryRecord struct {
	Entries []Tree `json:"entries"`
	Cursor  int    `json:"cursor"`
}

type HistoryStore interface {
	SaveHistory(ctx context.Context, pageID string, rec HistoryRecord) error
	LoadHistory(ctx context.Context, pageID string) (*HistoryRecord, error)
	ClearHistory(ctx context.Context, pageID string) error
}
