package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Cause classifies why a video cannot be fetched. Unknown covers transient
// failures that say nothing about the video itself.
type Cause string

const (
	CauseUnknown      Cause = "unknown"
	CauseDeleted      Cause = "deleted"
	CausePrivate      Cause = "private"
	CauseRegionLocked Cause = "region-locked"
)

// classifyExtractorError maps yt-dlp stderr text to a Cause. The patterns
// track yt-dlp's extractor messages; order matters because "This video is
// not available" contains "video" but not "unavailable".
func classifyExtractorError(stderr string) Cause {
	switch {
	case strings.Contains(stderr, "Private video"):
		return CausePrivate
	case strings.Contains(stderr, "Video unavailable"):
		return CauseDeleted
	case strings.Contains(stderr, "This video is not available"):
		return CauseRegionLocked
	default:
		return CauseUnknown
	}
}

// Diagnosis is the result of a deep per-video check.
type Diagnosis struct {
	VideoID   string
	Available bool
	Cause     Cause
	Detail    string
}

func (d Diagnosis) String() string {
	if d.Available {
		return fmt.Sprintf("video %s: available", d.VideoID)
	}
	return fmt.Sprintf("video %s: unavailable (%s): %s", d.VideoID, d.Cause, d.Detail)
}

// Prober checks whether individual videos are fetchable before any download
// is attempted. Probes are rate limited so a long exhaustion run does not
// hammer the backend.
type Prober struct {
	ytdlp   *Ytdlp
	limiter *rate.Limiter
}

// NewProber creates a prober over the given yt-dlp plumbing. probesPerSecond
// bounds the probe rate; zero or negative means two per second.
func NewProber(y *Ytdlp, probesPerSecond float64) *Prober {
	if probesPerSecond <= 0 {
		probesPerSecond = 2
	}
	return &Prober{
		ytdlp:   y,
		limiter: rate.NewLimiter(rate.Limit(probesPerSecond), 1),
	}
}

// IsAvailable reports whether the video can be fetched right now. A false
// result means the backend rejected the video; errors from the probe
// machinery itself (timeouts, cancellation) are returned as errors so the
// caller can tell "video is gone" from "could not check".
func (p *Prober) IsAvailable(ctx context.Context, videoID string) (bool, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return false, err
	}

	// A metadata-only simulate fetch is the cheapest request that still
	// exercises the extractor's availability checks.
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := p.ytdlp.run(probeCtx, "--simulate", "--no-warnings", "--quiet", watchURL(videoID))
	if err == nil {
		return true, nil
	}
	switch {
	case isUnavailable(err):
		return false, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	default:
		// Treat unclassified failures as unavailable rather than
		// erroring the whole selection pass.
		return false, nil
	}
}

// Diagnose runs a verbose fetch of one video and classifies the failure.
// Used when selection exhausts its look-back without finding anything.
func (p *Prober) Diagnose(ctx context.Context, videoID string) (*Diagnosis, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	probeCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	_, err := p.ytdlp.run(probeCtx, "--simulate", "--no-warnings", watchURL(videoID))
	if err == nil {
		return &Diagnosis{VideoID: videoID, Available: true, Cause: CauseUnknown}, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	diag := &Diagnosis{
		VideoID: videoID,
		Cause:   CauseUnknown,
		Detail:  err.Error(),
	}
	// run embeds the classified cause in the error message.
	switch {
	case strings.Contains(err.Error(), string(CausePrivate)):
		diag.Cause = CausePrivate
	case strings.Contains(err.Error(), string(CauseRegionLocked)):
		diag.Cause = CauseRegionLocked
	case isUnavailable(err):
		diag.Cause = CauseDeleted
	}
	return diag, nil
}

// isUnavailable reports whether err means the video itself cannot be
// fetched, as opposed to a failure of the probe machinery.
func isUnavailable(err error) bool {
	return errors.Is(err, ErrVideoUnavailable) || errors.Is(err, ErrSourceNotFound)
}
