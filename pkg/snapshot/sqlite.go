package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver" // database/sql driver "sqlite3"
	_ "github.com/ncruces/go-sqlite3/embed"  // bundled SQLite build
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	data       BLOB    NOT NULL,
	saved_at   INTEGER NOT NULL,
	expires_at INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_snapshots_expires_at ON snapshots (expires_at);
`

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
	"PRAGMA busy_timeout = 5000",
}

// SQLiteStore keeps snapshots in a local SQLite database. Expired rows are
// hidden from Load and removed by Prune.
type SQLiteStore struct {
	db   *sql.DB
	opts *options
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens or creates the database at path and applies the schema.
// The returned store owns the connection and must be closed.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.Join(ErrStorage, errors.New("database path is empty"))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrStorage, err)
	}
	for _, pragma := range sqlitePragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, errors.Join(ErrStorage, fmt.Errorf("set %q: %w", pragma, err))
		}
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, errors.Join(ErrStorage, fmt.Errorf("apply schema: %w", err))
	}

	return &SQLiteStore{db: db, opts: applyOptions(opts)}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, snap Snapshot) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := encode(snap)
	if err != nil {
		return err
	}

	now := s.opts.now()
	var expiresAt int64
	if s.opts.ttl > 0 {
		expiresAt = now.Add(s.opts.ttl).UnixNano()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, data, saved_at, expires_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at, expires_at = excluded.expires_at`,
		key, data, now.UnixNano(), expiresAt)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (Snapshot, error) {
	if key == "" {
		return Snapshot{}, ErrEmptyKey
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE key = ? AND (expires_at = 0 OR expires_at > ?)`,
		key, s.opts.now().UnixNano()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	if err != nil {
		return Snapshot{}, errors.Join(ErrStorage, err)
	}
	return decode(data)
}

func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE key = ?`, key); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Prune deletes expired rows and returns how many were removed.
func (s *SQLiteStore) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE expires_at <> 0 AND expires_at <= ?`, s.opts.now().UnixNano())
	if err != nil {
		return 0, errors.Join(ErrStorage, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Ping checks the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
