package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"tubefeed/retry"
)

const (
	defaultYtdlpPath    = "yt-dlp"
	defaultYtdlpTimeout = 10 * time.Minute
)

// Directory lists the candidates of one source, newest first. The two
// implementations cover the two source kinds; both bound the fetch at the
// backend level so a look-back of N never lists the whole history.
type Directory interface {
	// ListCandidates returns up to limit candidates, newest first.
	ListCandidates(ctx context.Context, url string, limit int) ([]Candidate, error)

	// LatestCandidate returns only the single newest entry, without
	// building the full list. Nil with nil error means the source is empty.
	LatestCandidate(ctx context.Context, url string) (*Candidate, error)
}

// Ytdlp runs the yt-dlp executable and parses its JSON output. It is the
// shared plumbing under the directories, the prober and the downloader.
type Ytdlp struct {
	// Path is the path to the yt-dlp executable. Defaults to "yt-dlp".
	Path string

	// Timeout is the maximum time to wait for one invocation.
	// Defaults to 10 minutes.
	Timeout time.Duration

	// RetryConfig holds retry behavior for listing operations.
	RetryConfig *retry.Config
}

// NewYtdlp creates yt-dlp plumbing with default settings.
func NewYtdlp() *Ytdlp {
	cfg := retry.DefaultConfig()
	return &Ytdlp{
		Path:        defaultYtdlpPath,
		Timeout:     defaultYtdlpTimeout,
		RetryConfig: &cfg,
	}
}

func (y *Ytdlp) path() string {
	if y.Path != "" {
		return y.Path
	}
	return defaultYtdlpPath
}

func (y *Ytdlp) timeout() time.Duration {
	if y.Timeout > 0 {
		return y.Timeout
	}
	return defaultYtdlpTimeout
}

// CheckInstalled verifies that yt-dlp is runnable.
func (y *Ytdlp) CheckInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, y.path(), "--version")
	if err := cmd.Run(); err != nil {
		return ErrYtdlpNotInstalled
	}
	return nil
}

// Version returns the yt-dlp version string.
func (y *Ytdlp) Version(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, y.path(), "--version").Output()
	if err != nil {
		return "", ErrYtdlpNotInstalled
	}
	return strings.TrimSpace(string(out)), nil
}

// run executes yt-dlp with the given arguments and returns stdout.
// Failures are classified into the package sentinels where stderr allows.
func (y *Ytdlp) run(ctx context.Context, args ...string) ([]byte, error) {
	cmdCtx, cancel := context.WithTimeout(ctx, y.timeout())
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, y.path(), args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, ErrNetworkTimeout
		}
		if cmdCtx.Err() == context.Canceled {
			return nil, context.Canceled
		}
		errMsg := stderr.String()
		if cause := classifyExtractorError(errMsg); cause != CauseUnknown {
			return nil, fmt.Errorf("%w: %s", ErrVideoUnavailable, cause)
		}
		if strings.Contains(errMsg, "does not exist") || strings.Contains(errMsg, "not found") {
			return nil, ErrSourceNotFound
		}
		if strings.Contains(errMsg, "429") || strings.Contains(strings.ToLower(errMsg), "rate") {
			return nil, ErrRateLimited
		}
		return nil, fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(errMsg))
	}

	return stdout.Bytes(), nil
}

// ytdlpPlaylist is yt-dlp's -J output for a playlist or channel tab.
type ytdlpPlaylist struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Uploader string       `json:"uploader"`
	Entries  []ytdlpEntry `json:"entries"`
}

// ytdlpEntry is a single video in yt-dlp's JSON output. Flat listings carry
// only a subset of these fields.
type ytdlpEntry struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Uploader   string  `json:"uploader"`
	Duration   float64 `json:"duration"`
	ViewCount  int64   `json:"view_count"`
	UploadDate string  `json:"upload_date"`
	Timestamp  int64   `json:"timestamp"`
}

func (e ytdlpEntry) candidate() Candidate {
	return Candidate{
		ID:              e.ID,
		Title:           e.Title,
		Uploader:        e.Uploader,
		DurationSeconds: int(e.Duration),
		ViewCount:       e.ViewCount,
		UploadDate:      e.UploadDate,
		Timestamp:       e.Timestamp,
	}
}

// listFlat performs a bounded flat listing of a playlist-shaped URL.
func (y *Ytdlp) listFlat(ctx context.Context, url string, limit int) (*ytdlpPlaylist, error) {
	args := []string{"--flat-playlist", "-J", "--no-warnings"}
	if limit > 0 {
		args = append(args, "--playlist-end", strconv.Itoa(limit))
	}
	args = append(args, url)

	var playlist ytdlpPlaylist
	cfg := y.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	err := retry.Do(ctx, *cfg, listErrorClassifier, func(ctx context.Context) error {
		out, err := y.run(ctx, args...)
		if err != nil {
			return &ResolverError{Backend: "ytdlp", Source: url, Err: err}
		}
		if err := json.Unmarshal(out, &playlist); err != nil {
			return &ResolverError{Backend: "ytdlp", Source: url,
				Err: fmt.Errorf("parse yt-dlp output: %w", err)}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// FetchFull retrieves the full metadata of a single video.
func (y *Ytdlp) FetchFull(ctx context.Context, videoID string) (*Candidate, error) {
	out, err := y.run(ctx, "-J", "--no-warnings", watchURL(videoID))
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}

	var entry ytdlpEntry
	if err := json.Unmarshal(out, &entry); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	if entry.ID == "" || entry.Title == "" {
		return nil, fmt.Errorf("invalid metadata: missing id or title")
	}
	c := entry.candidate()
	return &c, nil
}

// hydrate upgrades flat entries to full candidates. Flat listings often miss
// upload dates and timestamps, which the newest-first sort needs; a failed
// per-video fetch falls back to the flat fields instead of dropping the entry.
func (y *Ytdlp) hydrate(ctx context.Context, entries []ytdlpEntry) []Candidate {
	candidates := make([]Candidate, 0, len(entries))
	for _, entry := range entries {
		if entry.ID == "" {
			continue
		}
		if full, err := y.FetchFull(ctx, entry.ID); err == nil {
			candidates = append(candidates, *full)
		} else {
			candidates = append(candidates, entry.candidate())
		}
	}
	return candidates
}

// listErrorClassifier determines if a listing error is retryable.
func listErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	var resErr *ResolverError
	if errors.As(err, &resErr) {
		switch {
		case errors.Is(resErr.Err, ErrSourceNotFound),
			errors.Is(resErr.Err, ErrVideoUnavailable),
			errors.Is(resErr.Err, context.Canceled):
			return false
		default:
			// Retryable: rate limit, timeout, network errors
			return true
		}
	}
	return true
}

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
