package storage

import (
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// DirLock provides advisory locking of a data directory tree, enforcing the
// assumption that a single process instance owns a given output directory.
// It uses flock(2), so the lock is released automatically if the process dies.
type DirLock struct {
	path string
	file *os.File
}

// NewDirLock creates a lock for the given directory. The lock is not acquired
// until Lock() is called. The lock file is created at dir/.tubefeed.lock.
func NewDirLock(dir string) *DirLock {
	return &DirLock{path: filepath.Join(dir, ".tubefeed.lock")}
}

// Lock acquires an exclusive lock with the specified timeout.
// Returns ErrLockTimeout if the lock cannot be acquired within the timeout.
func (l *DirLock) Lock(timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return &StorageError{Op: "lock", Path: l.path, Err: err}
	}

	var err error
	l.file, err = os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &StorageError{Op: "lock", Path: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		err = syscall.Flock(int(l.file.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	l.file.Close()
	l.file = nil
	return ErrLockTimeout
}

// Unlock releases the lock.
func (l *DirLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	os.Remove(l.path)
	l.file = nil
	return nil
}
