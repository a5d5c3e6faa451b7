package storage

import (
	"context"
	"fmt"

	"pagebuilder/internal/domain"
)

// Backend bundles the stores of one database.
type Backend struct {
	Driver   string
	Pages    domain.PageStore
	Patterns domain.PatternStore
	History  domain.HistoryStore

	close func(context.Context) error
}

// OpenBackend opens the stores for driver: sqlite, postgres, mysql or mongo.
func OpenBackend(ctx context.Context, driver, dsn string, historyLimit int) (*Backend, error) {
	switch driver {
	case "mongo":
		m, err := OpenMongo(ctx, dsn, historyLimit)
		if err != nil {
			return nil, err
		}
		return &Backend{Driver: driver, Pages: m, Patterns: m, History: m, close: m.Close}, nil
	case string(DialectSQLite), string(DialectPostgres), string(DialectMySQL):
		db, err := Open(Dialect(driver), dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLBackend(db, historyLimit), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
}

// NewSQLBackend wraps an open DB.
func NewSQLBackend(db *DB, historyLimit int) *Backend {
	return &Backend{
		Driver:   string(db.Dialect()),
		Pages:    NewPageStore(db),
		Patterns: NewPatternStore(db),
		History:  NewHistoryStore(db, historyLimit),
		close:    func(context.Context) error { return db.Close() },
	}
}

// Close releases the underlying connection.
func (b *Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}
