// Package cache implements the TTL response cache backing the backend
// cascade. Entries are content-addressed by a hash of the canonicalized
// request signature and stored in SQLite; expired entries are evicted
// lazily on read, with an optional sweep to bound growth.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/jonesrussell/goveille/internal/frenchtext"
)

const schema = `
CREATE TABLE IF NOT EXISTS responses (
	key       TEXT PRIMARY KEY,
	backend   TEXT NOT NULL DEFAULT '',
	payload   BLOB NOT NULL,
	stored_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_stored_at ON responses(stored_at);
`

// Store is a TTL cache over a SQLite database.
type Store struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens or creates the cache database at path.
func Open(path string, ttl time.Duration, opts ...Option) (*Store, error) {
	if ttl <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	// Single writer keeps SQLite from returning busy errors under the pool.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing cache schema: %w", err)
	}

	s := &Store{db: db, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Key derives the cache key from the request signature parts. The signature
// is normalized first so equivalent queries share an entry.
func Key(parts ...string) string {
	sig := frenchtext.Normalize(strings.Join(parts, "\x1f"))
	sum := sha256.Sum256([]byte(sig))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload and the backend that produced it. An entry
// past its TTL is a miss and is deleted.
func (s *Store) Get(key string) (payload []byte, backend string, hit bool, err error) {
	var row struct {
		Backend  string `db:"backend"`
		Payload  []byte `db:"payload"`
		StoredAt int64  `db:"stored_at"`
	}
	err = s.db.Get(&row, `SELECT backend, payload, stored_at FROM responses WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		s.misses.Add(1)
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, fmt.Errorf("cache read: %w", err)
	}

	if s.now().Sub(time.Unix(row.StoredAt, 0)) >= s.ttl {
		s.misses.Add(1)
		if _, delErr := s.db.Exec(`DELETE FROM responses WHERE key = ?`, key); delErr != nil {
			return nil, "", false, fmt.Errorf("cache evict: %w", delErr)
		}
		return nil, "", false, nil
	}

	s.hits.Add(1)
	return row.Payload, row.Backend, true, nil
}

// Put stores the payload under key, replacing any previous entry atomically.
func (s *Store) Put(key, backend string, payload []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO responses (key, backend, payload, stored_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			backend   = excluded.backend,
			payload   = excluded.payload,
			stored_at = excluded.stored_at`,
		key, backend, payload, s.now().Unix())
	if err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

// Sweep removes entries older than maxAge and returns how many were deleted.
func (s *Store) Sweep(maxAge time.Duration) (int64, error) {
	cutoff := s.now().Add(-maxAge).Unix()
	res, err := s.db.Exec(`DELETE FROM responses WHERE stored_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cache sweep: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cache sweep count: %w", err)
	}
	return removed, nil
}

// Stats reports cache usage counters.
type Stats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// Stats returns the current entry count and hit/miss counters.
func (s *Store) Stats() (Stats, error) {
	var entries int64
	if err := s.db.Get(&entries, `SELECT COUNT(*) FROM responses`); err != nil {
		return Stats{}, fmt.Errorf("cache stats: %w", err)
	}
	return Stats{
		Entries: entries,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}
