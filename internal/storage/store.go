package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mvp-joe/project-atlas/internal/config"
	"github.com/mvp-joe/project-atlas/internal/errs"
)

// Store is an open project index. It is safe for concurrent readers; writes
// go through WithTx and must be serialized by the caller (see Lock).
type Store struct {
	db   *sql.DB
	path string

	versionMu   sync.Mutex
	versionConn *sql.Conn
}

// dsn enables WAL (concurrent readers during a write), enforced foreign keys
// and a busy timeout for readers racing a checkpoint.
func dsn(path string) string {
	return path + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000"
}

// Open opens (creating if needed) the store at dbPath and brings its schema
// up to date. Every failure is an errs.KindStore error.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, errs.Store(fmt.Errorf("failed to create store directory: %w", err))
	}

	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, errs.Store(fmt.Errorf("failed to open database: %w", err))
	}

	s := &Store{db: db, path: dbPath}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, errs.Store(err)
	}
	return s, nil
}

// OpenProject opens the store of the project rooted at root.
func OpenProject(ctx context.Context, root string) (*Store, error) {
	return Open(ctx, config.DBPath(root))
}

// OpenExisting opens the project store only if it already exists, returning
// errs.KindIndexMissing otherwise. Read-only commands use it so a query
// never creates an empty index as a side effect.
func OpenExisting(ctx context.Context, root string) (*Store, error) {
	path := config.DBPath(root)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, errs.IndexMissing(path)
		}
		return nil, errs.Store(err)
	}
	return Open(ctx, path)
}

func (s *Store) init(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	var fk int
	if err := s.db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
		return fmt.Errorf("failed to read foreign_keys pragma: %w", err)
	}
	if fk != 1 {
		return fmt.Errorf("foreign key enforcement is not available")
	}

	return EnsureSchema(ctx, s.db)
}

// DB exposes the underlying handle for read-only callers and tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	s.versionMu.Lock()
	if s.versionConn != nil {
		s.versionConn.Close()
		s.versionConn = nil
	}
	s.versionMu.Unlock()
	return s.db.Close()
}

// DataVersion returns a counter that changes whenever a transaction is
// committed by any other connection, from this process or another one.
// Values are only meaningful compared with each other.
//
// The pragma is per connection, so it is always read on one reserved
// connection; every write goes through a different one.
func (s *Store) DataVersion(ctx context.Context) (int64, error) {
	s.versionMu.Lock()
	defer s.versionMu.Unlock()

	if s.versionConn == nil {
		conn, err := s.db.Conn(ctx)
		if err != nil {
			return 0, errs.Store(fmt.Errorf("failed to reserve connection: %w", err))
		}
		s.versionConn = conn
	}

	var v int64
	if err := s.versionConn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&v); err != nil {
		return 0, errs.Store(fmt.Errorf("failed to read data_version: %w", err))
	}
	return v, nil
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Store(fmt.Errorf("failed to begin transaction: %w", err))
	}
	defer tx.Rollback() // Safe to call even after commit

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errs.Store(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

// Reset clears every indexed row. The schema is kept.
func (s *Store) Reset(ctx context.Context) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		for _, table := range []string{"exports", "imports", "symbols", "files"} {
			if _, err := tx.tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return errs.Store(fmt.Errorf("failed to clear %s: %w", table, err))
			}
		}
		return nil
	})
}

// DeleteFile removes a file and, through cascades, all of its rows.
func (s *Store) DeleteFile(ctx context.Context, path string) error {
	return s.WithTx(ctx, func(tx *Tx) error {
		return tx.DeleteFileRows(ctx, path)
	})
}
