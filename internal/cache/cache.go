// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists enrichment results in a local SQLite database,
// keyed by a content hash of each row's semantic fields.
// Implements: prd002-cache (R1-R4).
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/roadmap-engine/pkg/types"
)

const dbFile = "enrichment.db"

// Entry is one cached enrichment result. Entries are written once per key
// on first successful enrichment; re-puts overwrite with equivalent content,
// so writes are idempotent.
type Entry struct {
	Summary        string
	Classification types.Classification
	Guide          string
	CreatedAt      time.Time
}

// Store manages the enrichment cache SQLite database. The enrichment
// coordinator is the sole writer; no locking discipline beyond WAL is needed.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the cache database at cacheDir/enrichment.db,
// creating the directory and schema if needed (R1.1, R1.2).
func NewStore(cacheDir string) (*Store, error) {
	if cacheDir == "" {
		cacheDir = ".cache"
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(
		`CREATE TABLE IF NOT EXISTS enrichment_cache (
			row_hash       TEXT PRIMARY KEY,
			summary        TEXT NOT NULL,
			classification TEXT NOT NULL,
			guide          TEXT NOT NULL,
			created_at     TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Key computes the deterministic cache key for a row's semantic fields.
// Resources are deliberately excluded: two rows that differ only in their
// resource URLs share one cached result (R2.2). Fields are joined with a
// separator so adjacent fields cannot collide.
func Key(category, subcategory, topic, description string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s|%s", category, subcategory, topic, description)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached entry for key, or ok=false on a miss (R3.1).
func (s *Store) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		e       Entry
		class   string
		created string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT summary, classification, guide, created_at
		 FROM enrichment_cache WHERE row_hash = ?`, key,
	).Scan(&e.Summary, &class, &e.Guide, &created)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("querying cache: %w", err)
	}

	e.Classification = types.Classification(class)
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		e.CreatedAt = t
	}
	return e, true, nil
}

// Put stores an entry under key, overwriting any existing entry (R3.2).
func (s *Store) Put(ctx context.Context, key string, e Entry) error {
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO enrichment_cache
		 (row_hash, summary, classification, guide, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		key, e.Summary, string(e.Classification), e.Guide,
		createdAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Stats returns the number of cached entries and the most recent write
// timestamp (zero time when the cache is empty) (R4.1).
func (s *Store) Stats(ctx context.Context) (int, time.Time, error) {
	var (
		count  int
		latest sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), MAX(created_at) FROM enrichment_cache`,
	).Scan(&count, &latest)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("querying cache stats: %w", err)
	}

	var ts time.Time
	if latest.Valid {
		if t, perr := time.Parse(time.RFC3339Nano, latest.String); perr == nil {
			ts = t
		}
	}
	return count, ts, nil
}

// Clear removes every cached entry (R4.2). Clearing is an operator action;
// the coordinator never invalidates entries itself.
func (s *Store) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM enrichment_cache`)
	if err != nil {
		return 0, fmt.Errorf("clearing cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
