package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/mvp-joe/project-atlas/internal/config"
)

// ErrIndexLocked is returned when another process holds the writer lock.
var ErrIndexLocked = errors.New("index is being written by another process")

// WriterLock enforces a single writer per project store across processes.
// It sits next to the database so every tool opening the same store
// contends on the same file.
type WriterLock struct {
	lock *flock.Flock
}

// NewWriterLock creates a lock for the store whose database lives at dbPath.
func NewWriterLock(dbPath string) *WriterLock {
	lockPath := filepath.Join(filepath.Dir(dbPath), config.LockFileName)
	return &WriterLock{lock: flock.New(lockPath)}
}

// Acquire takes the lock without blocking.
// Returns ErrIndexLocked if another holder has it.
func (l *WriterLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.lock.Path()), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return ErrIndexLocked
	}
	return nil
}

// Release releases the lock. Safe to call when not held.
func (l *WriterLock) Release() error {
	return l.lock.Unlock()
}

// Lock returns the writer lock guarding this store.
func (s *Store) Lock() *WriterLock {
	return NewWriterLock(s.path)
}
