package provider

import "errors"

// Sentinel kinds for provider failures. Callers branch on these three
// kinds only; everything else about the transport stays opaque.
var (
	// ErrUnavailable covers network, timeout and auth failures. Retryable
	// by virtue of the next scheduled run.
	ErrUnavailable = errors.New("provider unavailable")

	// ErrNotFound means the video is deleted, private or never existed.
	// Not retryable.
	ErrNotFound = errors.New("video not found")

	// ErrQuotaExceeded means the caller must back off before retrying.
	ErrQuotaExceeded = errors.New("provider quota exceeded")
)
