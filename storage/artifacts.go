package storage

import (
	"os"
	"path/filepath"
	"strings"
)

// AudioExt is the suffix of every audio artifact.
const AudioExt = ".mp3"

// Artifact is one downloaded episode: the audio file plus, when present,
// its converted thumbnail, both named by the title fingerprint.
type Artifact struct {
	// Fingerprint is the filename stem shared by the file pair.
	Fingerprint string
	// AudioPath is the absolute or store-relative path of the audio file.
	AudioPath string
	// ThumbnailPath is the path of the thumbnail file, empty if none exists.
	ThumbnailPath string
	// Downloaded is false when the acquisition step was bypassed and the
	// artifact reference is speculative.
	Downloaded bool
}

// ArtifactStore is the directory-scan-as-state view of one data directory.
// There is no persisted index: the set of files under a subscription
// directory is the source of truth for what has been published.
type ArtifactStore struct {
	// Root is the output root; each subscription owns Root/<name>/.
	Root string

	// ThumbnailFormat is the extension (without dot) used for thumbnail
	// files, e.g. "webp".
	ThumbnailFormat string
}

// NewArtifactStore creates a store over the given output root.
func NewArtifactStore(root, thumbnailFormat string) *ArtifactStore {
	if thumbnailFormat == "" {
		thumbnailFormat = "webp"
	}
	return &ArtifactStore{Root: root, ThumbnailFormat: thumbnailFormat}
}

// SubscriptionDir returns the directory owned by the named subscription.
func (s *ArtifactStore) SubscriptionDir(subscription string) string {
	return filepath.Join(s.Root, subscription)
}

// EnsureSubscriptionDir creates the subscription directory if needed.
func (s *ArtifactStore) EnsureSubscriptionDir(subscription string) (string, error) {
	dir := s.SubscriptionDir(subscription)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &StorageError{Op: "mkdir", Path: dir, Err: err}
	}
	return dir, nil
}

// AudioPath returns the path of the audio file for a fingerprint.
func (s *ArtifactStore) AudioPath(subscription, fingerprint string) string {
	return filepath.Join(s.SubscriptionDir(subscription), fingerprint+AudioExt)
}

// ThumbnailPath returns the path of the thumbnail file for a fingerprint.
func (s *ArtifactStore) ThumbnailPath(subscription, fingerprint string) string {
	return filepath.Join(s.SubscriptionDir(subscription), fingerprint+"."+s.ThumbnailFormat)
}

// Stem returns the filename stem (without extension) that the acquisition
// backend should write to for a fingerprint.
func (s *ArtifactStore) Stem(subscription, fingerprint string) string {
	return filepath.Join(s.SubscriptionDir(subscription), fingerprint)
}

// HasAudio reports whether the audio artifact for a fingerprint exists.
// This is the idempotence check: a fingerprint with an existing audio file
// is never re-acquired.
func (s *ArtifactStore) HasAudio(subscription, fingerprint string) bool {
	_, err := os.Stat(s.AudioPath(subscription, fingerprint))
	return err == nil
}

// Lookup returns the artifact for a fingerprint, or ErrNotFound if the
// audio file does not exist. The thumbnail is optional.
func (s *ArtifactStore) Lookup(subscription, fingerprint string) (*Artifact, error) {
	audio := s.AudioPath(subscription, fingerprint)
	if _, err := os.Stat(audio); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "stat", Path: audio, Err: err}
	}

	a := &Artifact{Fingerprint: fingerprint, AudioPath: audio, Downloaded: true}
	thumb := s.ThumbnailPath(subscription, fingerprint)
	if _, err := os.Stat(thumb); err == nil {
		a.ThumbnailPath = thumb
	}
	return a, nil
}

// ListFingerprints scans a subscription directory and returns the fingerprint
// of every audio artifact found, in directory order. A missing directory
// yields an empty list, not an error.
func (s *ArtifactStore) ListFingerprints(subscription string) ([]string, error) {
	dir := s.SubscriptionDir(subscription)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &StorageError{Op: "scan", Path: dir, Err: err}
	}

	var fingerprints []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, AudioExt) {
			continue
		}
		fingerprints = append(fingerprints, strings.TrimSuffix(name, AudioExt))
	}
	return fingerprints, nil
}

// AudioSize returns the byte size of the audio artifact, or 0 when the file
// is unexpectedly missing.
func (s *ArtifactStore) AudioSize(subscription, fingerprint string) int64 {
	info, err := os.Stat(s.AudioPath(subscription, fingerprint))
	if err != nil {
		return 0
	}
	return info.Size()
}
