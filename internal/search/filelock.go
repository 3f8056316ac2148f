package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// ErrLockHeld indicates another process holds the index run lock.
var ErrLockHeld = errors.New("index lock is held by another process")

// FileLock guards the index directory against concurrent index runs
// using flock(2). The lock is released automatically if the process
// exits or crashes.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a file lock at the given path. The lock file and
// its parent directories are created on first acquisition.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// TryLock attempts to acquire the exclusive lock without blocking.
// Returns ErrLockHeld when another process holds it; other errors are
// unexpected failures.
func (l *FileLock) TryLock() error {
	if l.file == nil {
		if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
			return fmt.Errorf("create lock directory: %w", err)
		}
		file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0644)
		if err != nil {
			return fmt.Errorf("open lock file: %w", err)
		}
		l.file = file
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = l.file.Close()
		l.file = nil
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return ErrLockHeld
		}
		return fmt.Errorf("flock failed: %w", err)
	}

	return nil
}

// Unlock releases the lock. Safe to call when not held (no-op).
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}

	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if err != nil {
		return fmt.Errorf("flock unlock failed: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close lock file: %w", closeErr)
	}

	return nil
}

// IsLocked reports whether this instance currently holds the lock.
func (l *FileLock) IsLocked() bool {
	return l.file != nil
}
