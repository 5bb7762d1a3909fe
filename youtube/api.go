package youtube

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"tubefeed/retry"
)

// AvailabilityProber checks single videos before they are downloaded.
// Satisfied by Prober (yt-dlp) and APIProber (Data API v3).
type AvailabilityProber interface {
	IsAvailable(ctx context.Context, videoID string) (bool, error)
	Diagnose(ctx context.Context, videoID string) (*Diagnosis, error)
}

// APIProber checks video availability through YouTube Data API v3. A status
// probe costs 1 quota unit versus a full extractor round trip, so it is the
// preferred prober when an API key is configured. When the estimated quota
// runs out it falls back to the yt-dlp prober.
type APIProber struct {
	service     *youtube.Service
	RetryConfig *retry.Config

	mu             sync.Mutex
	estimatedQuota int
	lastQuotaReset time.Time
	quotaExhausted bool
	fallback       AvailabilityProber
}

// NewAPIProber creates a Data API v3 prober.
func NewAPIProber(apiKey string) (*APIProber, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}

	service, err := youtube.NewService(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	cfg := retry.DefaultConfig()
	return &APIProber{
		service:        service,
		RetryConfig:    &cfg,
		estimatedQuota: 10000, // Default daily quota
		lastQuotaReset: time.Now(),
	}, nil
}

// SetFallback sets the prober to use when quota is exhausted.
func (a *APIProber) SetFallback(p AvailabilityProber) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fallback = p
}

// IsAvailable reports whether the video exists and is publicly playable
// according to the Data API.
func (a *APIProber) IsAvailable(ctx context.Context, videoID string) (bool, error) {
	if fb := a.exhaustedFallback(); fb != nil {
		return fb.IsAvailable(ctx, videoID)
	}

	item, err := a.fetchStatus(ctx, videoID)
	if err != nil {
		return false, err
	}
	if item == nil {
		// Deleted videos simply vanish from the API response.
		return false, nil
	}
	return item.Status == nil || item.Status.PrivacyStatus == "public" ||
		item.Status.PrivacyStatus == "unlisted", nil
}

// Diagnose classifies why a video is not fetchable using its API status.
func (a *APIProber) Diagnose(ctx context.Context, videoID string) (*Diagnosis, error) {
	if fb := a.exhaustedFallback(); fb != nil {
		return fb.Diagnose(ctx, videoID)
	}

	item, err := a.fetchStatus(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &Diagnosis{VideoID: videoID, Cause: CauseDeleted,
			Detail: "video not present in API response"}, nil
	}
	if item.Status != nil && item.Status.PrivacyStatus == "private" {
		return &Diagnosis{VideoID: videoID, Cause: CausePrivate,
			Detail: "privacy status: private"}, nil
	}
	if item.ContentDetails != nil && item.ContentDetails.RegionRestriction != nil &&
		len(item.ContentDetails.RegionRestriction.Blocked) > 0 {
		return &Diagnosis{VideoID: videoID, Cause: CauseRegionLocked,
			Detail: fmt.Sprintf("blocked in %d regions",
				len(item.ContentDetails.RegionRestriction.Blocked))}, nil
	}
	return &Diagnosis{VideoID: videoID, Available: true, Cause: CauseUnknown}, nil
}

func (a *APIProber) fetchStatus(ctx context.Context, videoID string) (*youtube.Video, error) {
	var item *youtube.Video

	cfg := a.RetryConfig
	if cfg == nil {
		defaultCfg := retry.DefaultConfig()
		cfg = &defaultCfg
	}

	err := retry.Do(ctx, *cfg, apiErrorClassifier, func(ctx context.Context) error {
		call := a.service.Videos.List([]string{"status", "contentDetails"}).
			Id(videoID).
			Context(ctx)

		resp, err := call.Do()
		if err != nil {
			if ctx.Err() != nil {
				return ErrNetworkTimeout
			}
			return err
		}

		a.trackQuotaUsage(1) // videos.list uses 1 unit
		if len(resp.Items) > 0 {
			item = resp.Items[0]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (a *APIProber) exhaustedFallback() AvailabilityProber {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.quotaExhausted && a.fallback != nil {
		return a.fallback
	}
	return nil
}

// trackQuotaUsage updates the estimated quota and checks if it is exhausted.
func (a *APIProber) trackQuotaUsage(units int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Reset quota if a day has passed
	if time.Since(a.lastQuotaReset) > 24*time.Hour {
		a.estimatedQuota = 10000
		a.lastQuotaReset = time.Now()
		a.quotaExhausted = false
	}

	a.estimatedQuota -= units
	if a.estimatedQuota <= 0 && !a.quotaExhausted {
		log.Printf("tubefeed: API quota exhausted, probes fall back to yt-dlp")
		a.quotaExhausted = true
	}
}

// apiErrorClassifier determines if a Data API error is retryable.
func apiErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	switch err {
	case ErrSourceNotFound, ErrVideoUnavailable:
		return false
	}
	if strings.Contains(err.Error(), "quotaExceeded") {
		return true
	}
	if strings.Contains(err.Error(), "rateLimitExceeded") {
		return true
	}
	return true
}
