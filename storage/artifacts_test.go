package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
}

// TestArtifactStorePaths verifies the filename layout for a fingerprint.
func TestArtifactStorePaths(t *testing.T) {
	store := NewArtifactStore("/data", "webp")
	fp := Fingerprint("some episode")

	if got, want := store.AudioPath("news", fp), "/data/news/"+fp+".mp3"; got != want {
		t.Errorf("AudioPath() = %s, want %s", got, want)
	}
	if got, want := store.ThumbnailPath("news", fp), "/data/news/"+fp+".webp"; got != want {
		t.Errorf("ThumbnailPath() = %s, want %s", got, want)
	}
	if got, want := store.Stem("news", fp), "/data/news/"+fp; got != want {
		t.Errorf("Stem() = %s, want %s", got, want)
	}
}

// TestListFingerprintsScan verifies directory scanning picks up audio files
// and ignores everything else.
func TestListFingerprintsScan(t *testing.T) {
	root := t.TempDir()
	store := NewArtifactStore(root, "webp")

	fp1 := Fingerprint("first")
	fp2 := Fingerprint("second")
	writeFile(t, store.AudioPath("news", fp1), []byte("audio"))
	writeFile(t, store.AudioPath("news", fp2), []byte("audio"))
	writeFile(t, store.ThumbnailPath("news", fp1), []byte("image"))
	writeFile(t, filepath.Join(root, "news", "feed.xml"), []byte("<rss/>"))

	fps, err := store.ListFingerprints("news")
	if err != nil {
		t.Fatalf("ListFingerprints() error = %v", err)
	}
	if len(fps) != 2 {
		t.Fatalf("ListFingerprints() returned %d entries, want 2", len(fps))
	}
	found := map[string]bool{}
	for _, fp := range fps {
		found[fp] = true
	}
	if !found[fp1] || !found[fp2] {
		t.Errorf("ListFingerprints() = %v, want both %s and %s", fps, fp1, fp2)
	}
}

// TestListFingerprintsMissingDir verifies a missing subscription directory
// yields an empty list, not an error.
func TestListFingerprintsMissingDir(t *testing.T) {
	store := NewArtifactStore(t.TempDir(), "webp")
	fps, err := store.ListFingerprints("nonexistent")
	if err != nil {
		t.Fatalf("ListFingerprints() error = %v", err)
	}
	if len(fps) != 0 {
		t.Errorf("ListFingerprints() = %v, want empty", fps)
	}
}

// TestLookup verifies artifact resolution and the not-found sentinel.
func TestLookup(t *testing.T) {
	root := t.TempDir()
	store := NewArtifactStore(root, "webp")
	fp := Fingerprint("an episode")

	_, err := store.Lookup("news", fp)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Lookup() error = %v, want ErrNotFound", err)
	}

	writeFile(t, store.AudioPath("news", fp), []byte("audio"))
	a, err := store.Lookup("news", fp)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if !a.Downloaded {
		t.Error("Downloaded = false, want true")
	}
	if a.ThumbnailPath != "" {
		t.Errorf("ThumbnailPath = %q, want empty (no thumbnail on disk)", a.ThumbnailPath)
	}

	writeFile(t, store.ThumbnailPath("news", fp), []byte("image"))
	a, err = store.Lookup("news", fp)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if a.ThumbnailPath == "" {
		t.Error("ThumbnailPath empty, want path to thumbnail")
	}
}

// TestHasAudioIdempotenceCheck verifies the skip check that prevents
// re-downloading.
func TestHasAudioIdempotenceCheck(t *testing.T) {
	root := t.TempDir()
	store := NewArtifactStore(root, "webp")
	fp := Fingerprint("the episode")

	if store.HasAudio("news", fp) {
		t.Fatal("HasAudio() = true before any write")
	}
	writeFile(t, store.AudioPath("news", fp), []byte("audio"))
	if !store.HasAudio("news", fp) {
		t.Fatal("HasAudio() = false after write")
	}
}

// TestAudioSize verifies size reporting, including the zero fallback.
func TestAudioSize(t *testing.T) {
	root := t.TempDir()
	store := NewArtifactStore(root, "webp")
	fp := Fingerprint("sized episode")

	if got := store.AudioSize("news", fp); got != 0 {
		t.Errorf("AudioSize() = %d for missing file, want 0", got)
	}
	writeFile(t, store.AudioPath("news", fp), []byte("12345"))
	if got := store.AudioSize("news", fp); got != 5 {
		t.Errorf("AudioSize() = %d, want 5", got)
	}
}
