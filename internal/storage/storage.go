package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Supported dialects. Postgres is selected by DSN shape; everything
// else is treated as a SQLite path or URI.
const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// Store owns the database handle for the lifetime of the process. It is
// constructed once at startup and passed down explicitly.
type Store struct {
	DB      *sql.DB
	Dialect string
}

// Open connects to the database named by dsn and applies the embedded
// migrations for its dialect. An empty dsn selects an ephemeral
// in-memory SQLite store.
func Open(dsn string) (*Store, error) {
	dialect, driver, resolved := resolveDSN(dsn)

	db, err := sql.Open(driver, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dialect == DialectSQLite {
		// A single connection keeps an in-memory database alive and
		// serializes writers, which SQLite requires anyway.
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := migrate(db, dialect); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{DB: db, Dialect: dialect}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.DB.Close()
}

func resolveDSN(dsn string) (dialect, driver, resolved string) {
	switch {
	case dsn == "":
		return DialectSQLite, "sqlite", "file::memory:?cache=shared&_pragma=foreign_keys(1)"
	case strings.HasPrefix(dsn, "postgres://"),
		strings.HasPrefix(dsn, "postgresql://"),
		strings.Contains(dsn, "host="):
		return DialectPostgres, "postgres", dsn
	default:
		return DialectSQLite, "sqlite", dsn
	}
}

func migrate(db *sql.DB, dialect string) error {
	gooseDialect := dialect
	if dialect == DialectSQLite {
		gooseDialect = "sqlite3"
	}
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(gooseDialect); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(db, "migrations/"+dialect); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders into the $N form postgres expects.
// SQLite accepts ? natively, so queries are written once with ?.
func (s *Store) Rebind(query string) string {
	if s.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
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
