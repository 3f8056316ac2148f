package search

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestFileLock_AcquireAndRelease(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "index.lock"))

	if err := lock.TryLock(); err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if !lock.IsLocked() {
		t.Error("Expected IsLocked after TryLock")
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if lock.IsLocked() {
		t.Error("Expected not locked after Unlock")
	}
}

func TestFileLock_SecondHolderRefused(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.lock")

	first := NewFileLock(path)
	if err := first.TryLock(); err != nil {
		t.Fatalf("first TryLock failed: %v", err)
	}
	defer func() {
		if err := first.Unlock(); err != nil {
			t.Errorf("Unlock failed: %v", err)
		}
	}()

	second := NewFileLock(path)
	err := second.TryLock()
	if !errors.Is(err, ErrLockHeld) {
		t.Fatalf("Expected ErrLockHeld, got %v", err)
	}
	if second.IsLocked() {
		t.Error("Second holder should not report locked")
	}
}

func TestFileLock_ReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.lock")

	first := NewFileLock(path)
	if err := first.TryLock(); err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}

	second := NewFileLock(path)
	if err := second.TryLock(); err != nil {
		t.Fatalf("TryLock after release failed: %v", err)
	}
	if err := second.Unlock(); err != nil {
		t.Errorf("Unlock failed: %v", err)
	}
}

func TestFileLock_UnlockWithoutLock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "index.lock"))
	if err := lock.Unlock(); err != nil {
		t.Errorf("Unlock without lock should be a no-op, got %v", err)
	}
}

func TestFileLock_CreatesParentDirs(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "nested", "dir", "index.lock"))
	if err := lock.TryLock(); err != nil {
		t.Fatalf("TryLock failed: %v", err)
	}
	if err := lock.Unlock(); err != nil {
		t.Errorf("Unlock failed: %v", err)
	}
}
