package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pagebuilder/internal/domain"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleTree() domain.Tree {
	return domain.Tree{{
		ID:       "c",
		Type:     domain.BlockTypeContainer,
		Props:    map[string]any{"direction": "row"},
		Children: []domain.Block{{ID: "t", Type: domain.BlockTypeText, Content: "hello"}},
	}}
}

func TestPageStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewPageStore(openTestDB(t))

	p := &domain.Page{ID: "p1", Name: "Home", Tree: sampleTree()}
	require.NoError(t, store.SavePage(ctx, p))
	require.False(t, p.CreatedAt.IsZero())

	got, err := store.GetPage(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Home", got.Name)
	require.Equal(t, p.Tree, got.Tree)
	require.True(t, got.CreatedAt.Equal(p.CreatedAt))

	p.Name = "Landing"
	require.NoError(t, store.SavePage(ctx, p))
	require.NoError(t, store.SavePage(ctx, &domain.Page{ID: "p2", Name: "Other"}))

	list, err := store.ListPages(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	names := []string{list[0].Name, list[1].Name}
	require.ElementsMatch(t, []string{"Landing", "Other"}, names)

	empty, err := store.GetPage(ctx, "p2")
	require.NoError(t, err)
	require.NotNil(t, empty.Tree)
	require.Empty(t, empty.Tree)

	require.NoError(t, store.DeletePage(ctx, "p1"))
	_, err = store.GetPage(ctx, "p1")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPageStore_LegacyStringChildren(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	_, err := db.Conn().Exec(
		`INSERT INTO pages (id, name, tree_json, created_at, updated_at) VALUES (?, ?, ?, 0, 0)`,
		"legacy", "Legacy", `[{"id":"c","type":"layout/container","children":"[{\"id\":\"t\",\"type\":\"basic/text\"}]"}]`,
	)
	require.NoError(t, err)

	p, err := NewPageStore(db).GetPage(ctx, "legacy")
	require.NoError(t, err)
	require.Len(t, p.Tree[0].Children, 1)
	require.Equal(t, "t", p.Tree[0].Children[0].ID)
}

func TestPatternStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewPatternStore(openTestDB(t))

	require.NoError(t, store.SavePattern(ctx, &domain.Pattern{ID: "b", Name: "Hero", Block: sampleTree()[0]}))
	require.NoError(t, store.SavePattern(ctx, &domain.Pattern{ID: "a", Name: "Card", Block: domain.Block{ID: "x", Type: domain.BlockTypeText}}))

	got, err := store.GetPattern(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, sampleTree()[0], got.Block)

	list, err := store.ListPatterns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Card", list[0].Name)

	require.NoError(t, store.DeletePattern(ctx, "b"))
	_, err = store.GetPattern(ctx, "b")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistoryStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	store := NewHistoryStore(openTestDB(t), 3)

	rec, err := store.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Nil(t, rec)

	entries := []domain.Tree{{}, sampleTree(), {{ID: "z", Type: domain.BlockTypeDivider}}}
	require.NoError(t, store.SaveHistory(ctx, "p1", domain.HistoryRecord{Entries: entries, Cursor: 1}))

	rec, err = store.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, 1, rec.Cursor)
	require.Len(t, rec.Entries, 3)
	require.Equal(t, sampleTree(), rec.Entries[1])

	// Saving again replaces, and pruning keeps the limit.
	five := []domain.Tree{{}, {}, {}, {}, sampleTree()}
	require.NoError(t, store.SaveHistory(ctx, "p1", domain.HistoryRecord{Entries: five, Cursor: 4}))
	rec, err = store.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, rec.Entries, 3)
	require.Equal(t, 2, rec.Cursor)
	require.Equal(t, sampleTree(), rec.Entries[2])

	require.NoError(t, store.ClearHistory(ctx, "p1"))
	rec, err = store.LoadHistory(ctx, "p1")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestPruneHistory(t *testing.T) {
	tests := []struct {
		name       string
		n, cursor  int
		limit      int
		wantLen    int
		wantCursor int
	}{
		{"under limit", 3, 2, 5, 3, 2},
		{"drops oldest", 6, 5, 4, 4, 3},
		{"keeps cursor entry", 6, 1, 3, 3, 0},
		{"cursor at start trims redo tail", 6, 0, 2, 2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.HistoryRecord{Entries: make([]domain.Tree, tt.n), Cursor: tt.cursor}
			got := pruneHistory(rec, tt.limit)
			require.Len(t, got.Entries, tt.wantLen)
			require.Equal(t, tt.wantCursor, got.Cursor)
		})
	}
}

func TestBackend_SQLite(t *testing.T) {
	ctx := context.Background()
	b, err := OpenBackend(ctx, "sqlite", filepath.Join(t.TempDir(), "b.db"), 10)
	require.NoError(t, err)
	defer b.Close(ctx)
	require.Equal(t, "sqlite", b.Driver)
	require.NoError(t, b.Pages.SavePage(ctx, &domain.Page{ID: "p", Name: "P"}))

	_, err = OpenBackend(ctx, "oracle", "", 10)
	require.Error(t, err)
}

func TestDialectSQL(t *testing.T) {
	pg := &DB{dialect: DialectPostgres}
	require.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	require.Equal(t,
		"INSERT INTO t (id, a) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET a = excluded.a",
		pg.upsert("t", []string{"id"}, []string{"a"}))

	my := &DB{dialect: DialectMySQL}
	require.Equal(t,
		"INSERT INTO t (id, a, b) VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE a = VALUES(a), b = VALUES(b)",
		my.upsert("t", []string{"id"}, []string{"a", "b"}))
}

func TestMongoDatabaseName(t *testing.T) {
	tests := map[string]string{
		"mongodb://localhost:27017":                                    DefaultMongoDatabase,
		"mongodb://localhost:27017/":                                   DefaultMongoDatabase,
		"mongodb://user:pw@localhost:27017/pages":                      "pages",
		"mongodb+srv://user:pw@cluster.example.net/site?retryWrites=1": "site",
	}
	for uri, want := range tests {
		require.Equal(t, want, mongoDatabaseName(uri), uri)
	}
}

func TestHistoryStore_ClearReportsStateError(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	store := NewHistoryStore(db, 3)
	require.NoError(t, store.SaveHistory(ctx, "p1", domain.HistoryRecord{Entries: []domain.Tree{{}, sampleTree()}, Cursor: 1}))

	_, err := db.conn.ExecContext(ctx, `DROP TABLE history_state`)
	require.NoError(t, err)
	require.ErrorContains(t, store.ClearHistory(ctx, "p1"), "clear history p1")
}
