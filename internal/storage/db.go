package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour of a DB.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// DB wraps a SQL connection and the dialect spoken over it.
type DB struct {
	conn    *sql.DB
	dialect Dialect
}

// OpenSQLite opens (or creates) the SQLite file at dbPath.
func OpenSQLite(dbPath string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	conn, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer; a single connection prevents SQLITE_BUSY.
	conn.SetMaxOpenConns(1)
	return setup(conn, DialectSQLite)
}

// Open connects to a server database. MySQL DSNs need no parseTime since
// timestamps are stored as unix milliseconds.
func Open(d Dialect, dsn string) (*DB, error) {
	if d == DialectSQLite {
		return OpenSQLite(dsn)
	}
	if d != DialectPostgres && d != DialectMySQL {
		return nil, fmt.Errorf("unsupported dialect: %s", d)
	}
	conn, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return setup(conn, d)
}

func setup(conn *sql.DB, d Dialect) (*DB, error) {
	db := &DB{conn: conn, dialect: d}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Dialect returns the SQL flavour of the connection.
func (db *DB) Dialect() Dialect {
	return db.dialect
}

// rebind rewrites ? placeholders into the dialect's form.
func (db *DB) rebind(q string) string {
	if db.dialect != DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// upsert builds an insert-or-update statement for table keyed on key.
func (db *DB) upsert(table string, key []string, cols []string) string {
	all := append(append([]string{}, key...), cols...)
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(all, ", "), marks)

	sets := make([]string, len(cols))
	for i, c := range cols {
		if db.dialect == DialectMySQL {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		} else {
			sets[i] = fmt.Sprintf("%s = excluded.%s", c, c)
		}
	}
	if db.dialect == DialectMySQL {
		q += " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	} else {
		q += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", strings.Join(key, ", "), strings.Join(sets, ", "))
	}
	return db.rebind(q)
}

func (db *DB) migrate() error {
	key, text := "TEXT", "TEXT"
	if db.dialect == DialectMySQL {
		key, text = "VARCHAR(64)", "LONGTEXT"
	}
	r := strings.NewReplacer("{{key}}", key, "{{text}}", text)

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id {{key}} PRIMARY KEY,
			name {{text}} NOT NULL,
			tree_json {{text}} NOT NULL,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS patterns (
			id {{key}} PRIMARY KEY,
			name {{text}} NOT NULL,
			block_json {{text}} NOT NULL,
			created_at BIGINT NOT NULL
		)`,
		// Undo history: one row per snapshot plus the cursor per page.
		`CREATE TABLE IF NOT EXISTS history_entries (
			page_id {{key}} NOT NULL,
			seq INTEGER NOT NULL,
			tree_json {{text}} NOT NULL,
			PRIMARY KEY (page_id, seq)
		)`,
		`CREATE TABLE IF NOT EXISTS history_state (
			page_id {{key}} PRIMARY KEY,
			position INTEGER NOT NULL
		)`,
	}

	for _, m := range migrations {
		stmt := r.Replace(m)
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %s: %w", strings.Join(strings.Fields(stmt), " ")[:40], err)
		}
	}
	return nil
}
