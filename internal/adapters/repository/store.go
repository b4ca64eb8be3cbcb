// Package repository defines the submission/metrics store interface and errors.
package repository

import (
	"context"
	"time"

	"github.com/okian/clipscore/internal/domain/model"
)

// Store provides read/write access to submissions and their metrics.
// It is the only shared mutable resource in the pipeline; every metrics
// record is written by at most one batch item per run, so implementations
// need no record-level locking beyond their own internal consistency.
type Store interface {
	// Create persists a new submission together with a zeroed metrics
	// record. Assigns an id when the submission carries none. Returns
	// ErrDuplicateVideo when the external video is already submitted.
	Create(ctx context.Context, sub *model.Submission) error

	// GetByVideoID returns the submission referencing the external video.
	// Returns ErrNotFound when no such submission exists.
	GetByVideoID(ctx context.Context, videoID string) (model.Submission, error)

	// ListByStatus returns all submissions in the given state, oldest first.
	ListByStatus(ctx context.Context, status model.Status) ([]model.Submission, error)

	// ListApprovedCreatedSince returns approved submissions created at or
	// after the given instant, oldest first.
	ListApprovedCreatedSince(ctx context.Context, since time.Time) ([]model.Submission, error)

	// ListByUser returns a user's submissions, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Submission, error)

	// CountByUserSince counts a user's submissions created at or after
	// the given instant.
	CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error)

	// CountByStatus counts submissions in the given state.
	CountByStatus(ctx context.Context, status model.Status) (int, error)

	// UpdateVerification transitions status and verificationStatus
	// together; used exclusively by the verification engine.
	UpdateVerification(ctx context.Context, id string, status model.Status) error

	// UpdateStatus writes status only, leaving verificationStatus as the
	// record of the last automated pass; used by manual overrides.
	UpdateStatus(ctx context.Context, id string, status model.Status) error

	// UpdateMetrics overwrites a submission's metrics counters in one
	// write. lastUpdated never moves backwards.
	UpdateMetrics(ctx context.Context, submissionID string, views, likes int64, watchHours float64, lastUpdated time.Time) error

	// GetMetrics returns the metrics record for one submission.
	// Returns ErrNotFound when the submission is unknown.
	GetMetrics(ctx context.Context, submissionID string) (model.Metrics, error)

	// GetMetricsBatch returns metrics for the given submissions. Unknown
	// ids are simply absent from the result.
	GetMetricsBatch(ctx context.Context, submissionIDs []string) (map[string]model.Metrics, error)
}
