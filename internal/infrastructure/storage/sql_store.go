package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"DailyDigest/internal/ports"
)

const seenTable = "seen_urls"

// SQLStore persists the seen-set in SQLite or Postgres.
type SQLStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	driver  string
}

var _ ports.SeenStore = (*SQLStore)(nil)

// OpenSQLStore opens the database for driver "sqlite" or "postgres" and ensures the table.
func OpenSQLStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	format, err := placeholderFormat(driver)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		if dir := filepath.Dir(dsn); dir != "" && dsn != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create seen db dir: %w", err)
			}
		}
	}
	builder := sq.StatementBuilder.PlaceholderFormat(format)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	store := &SQLStore{db: db, builder: builder, driver: driver}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an existing handle; the table must already exist.
// Drivers other than postgres get "?" placeholders.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	format, err := placeholderFormat(driver)
	if err != nil {
		format = sq.Question
	}
	return &SQLStore{db: db, builder: sq.StatementBuilder.PlaceholderFormat(format), driver: driver}
}

func placeholderFormat(driver string) (sq.PlaceholderFormat, error) {
	switch driver {
	case "sqlite":
		return sq.Question, nil
	case "postgres":
		return sq.Dollar, nil
	default:
		return nil, fmt.Errorf("unsupported seen store driver %q", driver)
	}
}

func (s *SQLStore) migrate(ctx context.Context) error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + seenTable + ` (
		url TEXT PRIMARY KEY,
		seen_at TIMESTAMP NOT NULL
	)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create %s: %w", seenTable, err)
	}
	return nil
}

// AlreadyProcessed returns a map with URLs that already exist in storage.
func (s *SQLStore) AlreadyProcessed(ctx context.Context, urls []string) (map[string]bool, error) {
	if s.db == nil || len(urls) == 0 {
		return map[string]bool{}, nil
	}

	query, args, err := s.builder.Select("url").From(seenTable).Where(sq.Eq{"url": urls}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}

	result := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan url: %w", err)
		}
		result[u] = true
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("rows iteration: %w", rowsErr)
	}

	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("close rows: %w", closeErr)
	}

	return result, nil
}

// MarkProcessed inserts url; duplicates are ignored.
func (s *SQLStore) MarkProcessed(ctx context.Context, url string) error {
	if s.db == nil {
		return nil
	}

	query, args, err := s.builder.Insert(seenTable).
		Columns("url", "seen_at").
		Values(url, time.Now().UTC()).
		Suffix("ON CONFLICT (url) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert seen url: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
