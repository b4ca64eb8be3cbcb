// Package provider defines the capability contract for the external
// video platform. Implementations live under adapters; consumers only
// depend on these operations and the three failure kinds.
package provider

import (
	"context"
	"io"

	"github.com/okian/clipscore/internal/domain/model"
)

// UploadMetadata describes a video being uploaded.
type UploadMetadata struct {
	Title       string
	Description string
	Tags        []string
}

// QuotaStatus reports the provider's call budget.
type QuotaStatus struct {
	Cost  int
	Limit int
}

// Client is the narrow capability surface over the video platform.
// Implementations translate every transport failure into one of the
// sentinel kinds in errors.go and never retry on their own.
type Client interface {
	// Status reports whether a video is currently publicly visible.
	Status(ctx context.Context, videoID string) (model.VideoStatus, error)

	// Metrics fetches the engagement snapshot for one video.
	Metrics(ctx context.Context, videoID string) (model.VideoMetrics, error)

	// MetricsBatch fetches metrics for a set of videos; absent entries
	// are missing from the map, never an error.
	MetricsBatch(ctx context.Context, videoIDs []string) (map[string]model.VideoMetrics, error)

	// Upload submits a new video and returns its id.
	Upload(ctx context.Context, payload io.Reader, meta UploadMetadata) (string, error)

	// Quota probes the provider's call budget.
	Quota(ctx context.Context) (QuotaStatus, error)
}
