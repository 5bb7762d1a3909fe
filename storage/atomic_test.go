package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestAtomicWriterCommit verifies a committed write replaces the target and
// leaves no temp files behind.
func TestAtomicWriterCommit(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "feed.xml")
	if err := os.WriteFile(target, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewAtomicWriter(target)
	if err != nil {
		t.Fatalf("NewAtomicWriter() error = %v", err)
	}
	if _, err := w.Write([]byte("new content")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new content" {
		t.Errorf("file content = %q, want %q", data, "new content")
	}
	assertNoTempFiles(t, dir)
}

// TestAtomicWriterAbort verifies an aborted write leaves the target intact.
func TestAtomicWriterAbort(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "feed.xml")
	if err := os.WriteFile(target, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	w, err := NewAtomicWriter(target)
	if err != nil {
		t.Fatalf("NewAtomicWriter() error = %v", err)
	}
	if _, err := w.Write([]byte("partial")); err != nil {
		t.Fatal(err)
	}
	if err := w.Abort(); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "original" {
		t.Errorf("file content = %q, want %q", data, "original")
	}
	assertNoTempFiles(t, dir)
}

// TestWriteFileAtomicCreatesDirectories verifies parent directories are
// created on demand.
func TestWriteFileAtomicCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "nested", "file.txt")

	if err := WriteFileAtomic(target, []byte("data")); err != nil {
		t.Fatalf("WriteFileAtomic() error = %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "data" {
		t.Errorf("file content = %q, want %q", data, "data")
	}
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tubefeed-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}

// TestDirLockExcludesSecondLocker verifies a held lock times out a second
// locker, and that Unlock releases it.
func TestDirLockExcludesSecondLocker(t *testing.T) {
	dir := t.TempDir()

	first := NewDirLock(dir)
	if err := first.Lock(time.Second); err != nil {
		t.Fatalf("first Lock() error = %v", err)
	}

	second := NewDirLock(dir)
	if err := second.Lock(50 * time.Millisecond); err != ErrLockTimeout {
		t.Fatalf("second Lock() error = %v, want ErrLockTimeout", err)
	}

	if err := first.Unlock(); err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	if err := second.Lock(time.Second); err != nil {
		t.Fatalf("second Lock() after release error = %v", err)
	}
	second.Unlock()
}
