// Package store implements Logly's embedded relational store: a single
// SQLite file holding raw samples, parsed log events, trace side tables,
// IP reputation, and hourly/daily roll-ups.
//
// The store is pinned to one hardcoded path per data directory (Open) to
// prevent accidental multi-writer scenarios against divergent schemas;
// tests that need an arbitrary path use NewForTest instead of sniffing an
// environment variable.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// fileName is the one database file name Open ever creates, inside the
// caller-supplied data directory. Any other path must go through
// NewForTest.
const fileName = "logly.db"

// Store wraps a *sql.DB plus the process-wide write mutex that serializes
// every insert/update/delete against it (reads do not take the mutex;
// the pool holds a single connection, so reads and writes still run one
// at a time).
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Path returns the single hardcoded database path for a given data
// directory.
func Path(dataDir string) string {
	return filepath.Join(dataDir, fileName)
}

// Open opens (creating if necessary) the database at Path(dataDir),
// idempotently initializes its schema, and configures WAL journaling
// with a 60s busy timeout. It retries transient open failures with
// bounded exponential backoff (5 attempts, starting at 100ms, doubling).
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return open(Path(dataDir))
}

// NewForTest opens the database at an arbitrary path, bypassing the
// hardcoded-path guard. This is the only sanctioned override — tests
// must not reach for an environment variable instead.
func NewForTest(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create test data dir: %w", err)
		}
	}
	return open(path)
}

func open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(60000)", path)

	var db *sql.DB
	var err error
	delay := 100 * time.Millisecond
	for attempt := 0; attempt < 5; attempt++ {
		db, err = sql.Open("sqlite", dsn)
		if err == nil {
			err = db.Ping()
		}
		if err == nil {
			break
		}
		if attempt < 4 {
			time.Sleep(delay)
			delay *= 2
			continue
		}
		return nil, fmt.Errorf("open database after retries: %w", err)
	}

	db.SetMaxOpenConns(1) // one connection shared by every read and write

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=10000",
		"PRAGMA busy_timeout=60000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %q: %w", pragma, err)
		}
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path this store was opened against.
func (s *Store) Path() string {
	return s.path
}

// Size returns the database file size in bytes.
func (s *Store) Size() (int64, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// withWriteLock serializes fn against every other writer on this store,
// so two writes from the same or different goroutines commit in their
// mutex-acquisition order.
func (s *Store) withWriteLock(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
