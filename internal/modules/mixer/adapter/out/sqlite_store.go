package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"soundblanket/internal/modules/mixer/domain"
	apperrors "soundblanket/internal/platform/errors"

	_ "modernc.org/sqlite"
)

// SQLiteMixStore stores each mix as one row holding the same JSON record the
// file store writes. Keys come back in first-insert order.
type SQLiteMixStore struct {
	db *sql.DB
}

func NewSQLiteMixStore(dbPath string) (*SQLiteMixStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	store := &SQLiteMixStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteMixStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS mixes (
  name TEXT PRIMARY KEY,
  record TEXT NOT NULL,
  saved_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create mixes table: %w", err)
	}
	return nil
}

func (s *SQLiteMixStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM mixes ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list mixes: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan mix name: %w", err)
		}
		keys = append(keys, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mixes: %w", err)
	}
	return keys, nil
}

func (s *SQLiteMixStore) Exists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM mixes WHERE name = ?`, name).Scan(&n); err != nil {
		return false, fmt.Errorf("check mix %q: %w", name, err)
	}
	return n > 0, nil
}

func (s *SQLiteMixStore) Get(ctx context.Context, name string) (domain.Mix, error) {
	var record string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM mixes WHERE name = ?`, name).Scan(&record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Mix{}, apperrors.ErrNotFound
		}
		return domain.Mix{}, fmt.Errorf("get mix %q: %w", name, err)
	}
	return unmarshalMix(name, []byte(record))
}

func (s *SQLiteMixStore) Put(ctx context.Context, mix domain.Mix) error {
	payload, err := marshalMix(mix)
	if err != nil {
		return err
	}
	savedAt := mix.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}
	const stmt = `
INSERT INTO mixes (name, record, saved_at)
VALUES (?, ?, ?)
ON CONFLICT(name) DO UPDATE SET
  record=excluded.record,
  saved_at=excluded.saved_at;
`
	if _, err := s.db.ExecContext(ctx, stmt, mix.Name, string(payload), savedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upsert mix %q: %w", mix.Name, err)
	}
	return nil
}

func (s *SQLiteMixStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM mixes WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete mix %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mix %q: %w", name, err)
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (s *SQLiteMixStore) Close() error {
	return s.db.Close()
}
