package tracker

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// Local persists collection snapshots durably on-device. Values are
// opaque serialized record sequences, one key per collection.
type Local struct {
	db *sql.DB
}

// OpenLocal opens/creates a SQLite database and runs migrations.
func OpenLocal(path string) (*Local, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	l := &Local{db: db}
	if err := l.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the underlying database handle.
func (l *Local) Close() error { return l.db.Close() }

func (l *Local) migrate() error {
	_, err := l.db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
  name TEXT PRIMARY KEY,
  body BLOB NOT NULL,
  saved_at INTEGER NOT NULL
);
`)
	return err
}

// Get returns the stored blob for key, or nil when the key is absent.
// A missing key is not an error.
func (l *Local) Get(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	err := l.db.QueryRowContext(ctx,
		`SELECT body FROM snapshots WHERE name = ?`, key).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return body, err
}

// Set overwrites the stored blob for key.
func (l *Local) Set(ctx context.Context, key string, body []byte) error {
	_, err := l.db.ExecContext(ctx, `
INSERT INTO snapshots(name, body, saved_at) VALUES(?,?,?)
ON CONFLICT(name) DO UPDATE SET body=excluded.body, saved_at=excluded.saved_at`,
		key, body, time.Now().Unix())
	return err
}

// Remove deletes the stored blob for key. Removing an absent key is a
// no-op.
func (l *Local) Remove(ctx context.Context, key string) error {
	_, err := l.db.ExecContext(ctx, `DELETE FROM snapshots WHERE name = ?`, key)
	return err
}

// loadSnapshot reads and decodes the snapshot for key. A missing key or
// a corrupt blob yields an empty sequence: cache corruption never
// blocks the user, it only costs the cached copy.
func loadSnapshot[T Record[T]](ctx context.Context, l *Local, key string, log zerolog.Logger) []T {
	body, err := l.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("local snapshot read failed")
		return nil
	}
	if len(body) == 0 {
		return nil
	}
	var recs []T
	if err := json.Unmarshal(body, &recs); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("local snapshot corrupt, treating as empty")
		return nil
	}
	return recs
}

// saveSnapshot encodes and writes the full snapshot for key.
func saveSnapshot[T Record[T]](ctx context.Context, l *Local, key string, recs []T) error {
	body, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	return l.Set(ctx, key, body)
}
