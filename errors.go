package tubefeed

import (
	"tubefeed/retry"
	"tubefeed/storage"
	"tubefeed/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, tubefeed.ErrVideoUnavailable) {
//		fmt.Println("video is gone")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var resErr *tubefeed.ResolverError
//	if errors.As(err, &resErr) {
//		fmt.Printf("listing %s failed: %v\n", resErr.Source, resErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ResolverError wraps errors during candidate listing.
	ResolverError = youtube.ResolverError
	// RetryableError wraps errors that occurred after retries were exhausted.
	RetryableError = retry.RetryableError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrVideoUnavailable indicates the video is deleted, private or blocked.
	ErrVideoUnavailable = youtube.ErrVideoUnavailable
	// ErrSourceNotFound indicates the channel or playlist does not exist.
	ErrSourceNotFound = youtube.ErrSourceNotFound
	// ErrRateLimited indicates the operation was rate limited.
	ErrRateLimited = youtube.ErrRateLimited
	// ErrNetworkTimeout indicates a network timeout occurred.
	ErrNetworkTimeout = youtube.ErrNetworkTimeout
	// ErrYtdlpNotInstalled indicates the yt-dlp binary was not found.
	ErrYtdlpNotInstalled = youtube.ErrYtdlpNotInstalled

	// Storage errors
	// ErrNotFound indicates an artifact was not found on disk.
	ErrNotFound = storage.ErrNotFound
	// ErrLockTimeout indicates a timeout acquiring the data directory lock.
	ErrLockTimeout = storage.ErrLockTimeout
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like ErrSourceNotFound.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
