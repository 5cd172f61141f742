package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS assets (
	name     TEXT PRIMARY KEY,
	data     BLOB NOT NULL,
	size     INTEGER NOT NULL,
	modified INTEGER NOT NULL
)`

// SQLiteStore keeps assets in a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates) the database at path. An empty path
// means assets.db inside [DefaultDir].
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "assets.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, storeError(err, "mkdir db dir")
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, storeError(err, "open sqlite %s", path)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storeError(err, "create sqlite schema")
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(ctx context.Context, name string, buf []byte) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if buf == nil {
		buf = []byte{}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (name, data, size, modified) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, size = excluded.size, modified = excluded.modified
	`, name, buf, len(buf), time.Now().UnixMilli())
	if err != nil {
		return storeError(err, "sqlite put %s", name)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM assets WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, storeError(err, "sqlite get %s", name)
	}
	if data == nil {
		data = []byte{}
	}
	return data, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, size, modified FROM assets ORDER BY name`)
	if err != nil {
		return nil, storeError(err, "sqlite list")
	}
	defer rows.Close()

	var out []Asset
	for rows.Next() {
		var (
			a        Asset
			modified int64
		)
		if err := rows.Scan(&a.Name, &a.Size, &modified); err != nil {
			return nil, storeError(err, "sqlite list")
		}
		a.Modified = time.UnixMilli(modified)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError(err, "sqlite list")
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM assets WHERE name = ?`, name); err != nil {
		return storeError(err, "sqlite delete %s", name)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
