// Package store implements the local persistence layer: an embedded SQLite
// database holding drafts, cached media, typed settings, and the outbound
// sync queue.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"

	"github.com/quillapp/quill/internal/events"
)

// Store owns the SQLite connection shared by all repositories. It is
// constructed cheaply; the database is opened and the schema applied on
// first use, at most once across concurrent callers. A failed bootstrap is
// reported to every caller and retried by the next call.
//
// Updates carry no optimistic-concurrency check: two interleaved updates to
// the same row both succeed and the later write wins. Conflict handling is
// the remote sync layer's concern; this store only records sync status.
type Store struct {
	path   string
	logger *events.Logger

	initMu sync.Mutex
	db     *sql.DB // non-nil once bootstrap succeeded

	importing atomic.Bool

	Drafts   *DraftRepo
	Images   *ImageRepo
	Queue    *QueueRepo
	Settings *SettingsRepo
}

// New creates a store for the given database path. No I/O happens until the
// first operation.
func New(path string, logger *events.Logger) *Store {
	s := &Store{
		path:   path,
		logger: logger.WithField("component", "store"),
	}
	s.Drafts = &DraftRepo{store: s}
	s.Images = &ImageRepo{store: s}
	s.Queue = &QueueRepo{store: s}
	s.Settings = &SettingsRepo{store: s}
	return s
}

// ready returns the database handle, running the open+bootstrap sequence on
// first call. Concurrent first callers share a single attempt.
func (s *Store) ready(ctx context.Context) (*sql.DB, error) {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.db != nil {
		return s.db, nil
	}

	db, err := sql.Open("sqlite3", s.path+"?_journal=WAL&_timeout=5000&_fk=1&_loc=UTC")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite writes are serialized; a single connection avoids SQLITE_BUSY
	// between interleaved repository calls.
	db.SetMaxOpenConns(1)

	if err := applySchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database: %w", err)
	}

	s.logger.WithField("path", s.path).Debug("Database initialized")
	s.db = db
	return s.db, nil
}

// Close closes the database if it was opened.
func (s *Store) Close() error {
	s.initMu.Lock()
	defer s.initMu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}
