package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/civicsnap/civic-cli/pkg/geocode"
)

// SQLiteCache implements GeocodeCache using modernc.org/sqlite.
type SQLiteCache struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLite(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteCache{db: db, now: time.Now}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS geocode_cache (
	zip        TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_geocode_cache_expires_at ON geocode_cache(expires_at);
`

// Migrate creates the cache table if needed.
func (s *SQLiteCache) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close releases the database handle.
func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

// Get returns the cached geocode result for zip, or ok=false when absent or
// expired.
func (s *SQLiteCache) Get(ctx context.Context, zip string) (*geocode.Result, bool, error) {
	var payload string
	var expiresAt int64

	row := s.db.QueryRowContext(ctx,
		`SELECT payload, expires_at FROM geocode_cache WHERE zip = ?`, zip)
	if err := row.Scan(&payload, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, eris.Wrapf(err, "sqlite: get geocode %s", zip)
	}

	if !s.now().Before(time.Unix(expiresAt, 0)) {
		return nil, false, nil
	}

	var res geocode.Result
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return nil, false, eris.Wrapf(err, "sqlite: unmarshal geocode %s", zip)
	}
	return &res, true, nil
}

// Put upserts a geocode result with the given expiry.
func (s *SQLiteCache) Put(ctx context.Context, zip string, res *geocode.Result, expiresAt time.Time) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal geocode %s", zip)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO geocode_cache (zip, payload, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (zip) DO UPDATE SET
			payload = excluded.payload,
			expires_at = excluded.expires_at`,
		zip, string(payload), expiresAt.Unix(),
	)
	return eris.Wrapf(err, "sqlite: put geocode %s", zip)
}

// WithNow sets a fixed clock for testing.
func (s *SQLiteCache) WithNow(now func() time.Time) *SQLiteCache {
	s.now = now
	return s
}
