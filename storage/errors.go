package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations.
var (
	ErrNotFound    = errors.New("storage: not found")
	ErrLockTimeout = errors.New("storage: lock timeout")
)

// StorageError wraps errors from storage operations with context about
// what failed. Use errors.As() to extract it:
//
//	var storageErr *storage.StorageError
//	if errors.As(err, &storageErr) {
//		fmt.Printf("%s %s failed: %v\n", storageErr.Op, storageErr.Path, storageErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("scan", "write", "lock").
	Op string
	// Path is the file or directory involved.
	Path string
	// Err is the underlying error.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *StorageError) Unwrap() error { return e.Err }
