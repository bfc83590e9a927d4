package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

const lockFileName = "store.lock"

// ErrLocked is returned when another live process holds the data directory.
var ErrLocked = errors.New("data directory is locked")

// DirLock is a PID lock file that keeps two processes from writing the same
// data directory.
type DirLock struct {
	path string
}

// NewDirLock creates a lock manager for the given data directory.
func NewDirLock(dir string) *DirLock {
	return &DirLock{
		path: filepath.Join(dir, lockFileName),
	}
}

// Acquire attempts to acquire the lock.
// Stale locks (from dead processes) are automatically cleaned up.
func (l *DirLock) Acquire() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
		f.Close()
		if writeErr != nil {
			os.Remove(l.path)
			return fmt.Errorf("failed to write lock file: %w", writeErr)
		}
		return nil
	}

	if !os.IsExist(err) {
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	data, readErr := os.ReadFile(l.path)
	if readErr != nil {
		return fmt.Errorf("failed to read existing lock file: %w", readErr)
	}

	pid, parseErr := strconv.Atoi(strings.TrimSpace(string(data)))
	if parseErr != nil {
		// Invalid PID in lock file - treat as stale
		if removeErr := os.Remove(l.path); removeErr != nil {
			return fmt.Errorf("failed to remove invalid lock file: %w", removeErr)
		}
		return l.retryAcquire()
	}

	if processExists(pid) {
		return fmt.Errorf("%w (PID %d)", ErrLocked, pid)
	}

	if removeErr := os.Remove(l.path); removeErr != nil {
		return fmt.Errorf("failed to remove stale lock file: %w", removeErr)
	}

	return l.retryAcquire()
}

// retryAcquire tries once more after a stale lock was removed.
func (l *DirLock) retryAcquire() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: acquired by another process during retry", ErrLocked)
		}
		return fmt.Errorf("failed to create lock file on retry: %w", err)
	}

	_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
	f.Close()
	if writeErr != nil {
		os.Remove(l.path)
		return fmt.Errorf("failed to write lock file on retry: %w", writeErr)
	}
	return nil
}

// Release removes the lock file. Releasing twice is not an error.
func (l *DirLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// processExists checks if a process with the given PID is running.
// Signal 0 checks for existence without delivering anything.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
