// Package youtube provides the video-platform backends: candidate listing
// for channels and playlists, availability probing, metadata fetching and
// audio acquisition, all via yt-dlp as a subprocess, with an optional
// Data API v3 prober.
package youtube

import (
	"errors"
	"sort"
	"time"
)

// Sentinel errors for backend operations.
var (
	ErrVideoUnavailable  = errors.New("youtube: video unavailable")
	ErrSourceNotFound    = errors.New("youtube: source not found")
	ErrRateLimited       = errors.New("youtube: rate limited")
	ErrNetworkTimeout    = errors.New("youtube: network timeout")
	ErrYtdlpNotInstalled = errors.New("youtube: yt-dlp not installed")
)

// Candidate is one video discovered in a source's listing, not yet
// downloaded. It is transient: only the derived artifact persists.
type Candidate struct {
	// ID is the platform video ID (e.g. "dQw4w9WgXcQ").
	ID string `json:"id"`

	// Title is the video title, exactly as reported by the backend.
	// Fingerprinting depends on it byte-for-byte.
	Title string `json:"title"`

	// Uploader is the channel display name.
	Uploader string `json:"uploader"`

	// DurationSeconds is the video length. Zero when unknown.
	DurationSeconds int `json:"duration"`

	// ViewCount is the number of views. Zero when unavailable.
	ViewCount int64 `json:"view_count"`

	// UploadDate is the calendar upload date in YYYYMMDD form.
	UploadDate string `json:"upload_date"`

	// Timestamp is the fine-grained unix upload time; zero when the
	// backend did not report one.
	Timestamp int64 `json:"timestamp,omitempty"`

	// PlaylistPosition is the 1-based position for playlist sources,
	// zero otherwise.
	PlaylistPosition int `json:"playlist_position,omitempty"`
}

// WatchURL returns the full watch URL for this candidate.
func (c Candidate) WatchURL() string {
	return "https://www.youtube.com/watch?v=" + c.ID
}

// UploadedAt returns the best-known upload time: the fine-grained timestamp
// when present, otherwise the parsed upload date, otherwise the zero time.
func (c Candidate) UploadedAt() time.Time {
	if c.Timestamp > 0 {
		return time.Unix(c.Timestamp, 0).UTC()
	}
	if c.UploadDate != "" {
		if t, err := time.Parse("20060102", c.UploadDate); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortNewestFirst orders candidates newest first: by timestamp descending,
// falling back to upload-date string comparison when either timestamp is
// missing. The sort is stable so backend order breaks ties.
func SortNewestFirst(candidates []Candidate) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Timestamp > 0 && b.Timestamp > 0 {
			return a.Timestamp > b.Timestamp
		}
		return a.UploadDate > b.UploadDate
	})
}

// ResolverError wraps errors from candidate resolution with context about
// what failed. Use errors.As() to extract it:
//
//	var resErr *youtube.ResolverError
//	if errors.As(err, &resErr) {
//		fmt.Printf("resolving %s failed: %v\n", resErr.Source, resErr.Err)
//	}
type ResolverError struct {
	// Backend indicates which backend produced the error ("ytdlp", "api").
	Backend string
	// Source is the source URL that was being resolved.
	Source string
	// Err is the underlying error.
	Err error
}

func (e *ResolverError) Error() string {
	return "youtube: " + e.Backend + " resolving " + e.Source + ": " + e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is() and errors.As().
func (e *ResolverError) Unwrap() error { return e.Err }
