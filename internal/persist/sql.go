package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"pagesmith/internal/editor"
)

// Dialect selects placeholder syntax and driver name.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS profile_documents (
	username   TEXT PRIMARY KEY,
	document   TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// OpenSQLite opens the cache database at path with WAL and a busy timeout,
// creating parent directories first. ":memory:" opens a private in-memory
// database on a single connection.
func OpenSQLite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: mkdir: %w", err)
		}
	}
	db, err := sql.Open(string(SQLite), path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	for _, p := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	return db, nil
}

// OpenPostgres opens a server database from a connection URL.
func OpenPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open(string(Postgres), dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}

// SQLStore keeps documents as JSON text in the profile_documents table.
// It is safe for concurrent use.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	now     func() time.Time
}

// NewSQLStore wraps db and creates the table when missing.
func NewSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create profile_documents: %w", err)
	}
	return &SQLStore{db: db, dialect: dialect, logger: logger, now: time.Now}, nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *SQLStore) rebind(q string) string {
	if s.dialect != Postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Load(ctx context.Context, username string) (*editor.Document, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT document FROM profile_documents WHERE username = ?`), username,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", ErrPersistence, username, err)
	}
	doc, err := editor.ParseDocument([]byte(raw))
	if err != nil {
		s.logger.Warn("stored document is corrupt", zap.String("user", username), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return doc, nil
}

func (s *SQLStore) Save(ctx context.Context, username string, doc *editor.Document) error {
	data, err := doc.Marshal()
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrPersistence, err)
	}
	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO profile_documents (username, document, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET document = excluded.document, updated_at = excluded.updated_at`),
		username, string(data), s.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", ErrPersistence, username, err)
	}
	s.logger.Debug("document stored", zap.String("user", username), zap.Int("bytes", len(data)))
	return nil
}
