// Package filelock coordinates cross-process access to the toolchain store.
// Two gomsv runs (or a run and another tool sharing the store) may install
// toolchains concurrently; a flock-based lock serializes installs, and
// AtomicWrite keeps metadata files consistent under interruption.
package filelock

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileLock wraps a flock advisory lock on a lock file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// New creates a lock backed by the lock file at path. The file is created on
// first acquisition.
func New(path string) *FileLock {
	return &FileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// Lock acquires the lock exclusively, blocking until it is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("filelock: acquire %s: %w", fl.path, err)
	}
	return nil
}

// TryLock attempts to acquire the lock without blocking. It reports whether
// the lock was acquired.
func (fl *FileLock) TryLock() (bool, error) {
	acquired, err := fl.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("filelock: try %s: %w", fl.path, err)
	}
	return acquired, nil
}

// Unlock releases the lock.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("filelock: release %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite writes data to path through a same-directory temp file and
// rename, so readers never observe a partial write.
func AtomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("filelock: create directory %s: %w", dir, err)
	}

	// The temp file lives next to the target so the rename stays on one
	// filesystem, which is what makes it atomic.
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("filelock: create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if tempFile != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		return fmt.Errorf("filelock: write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		return fmt.Errorf("filelock: sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("filelock: close temp file: %w", err)
	}

	if err := os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("filelock: set permissions: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("filelock: rename temp file to %s: %w", path, err)
	}

	tempFile = nil
	return nil
}
