// Package syncer refreshes stored metrics for approved submissions in
// paced batches against the provider.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/provider"
	"github.com/okian/clipscore/pkg/logger"
	"github.com/okian/clipscore/pkg/metrics"
)

// Default scheduler configuration constants.
const (
	defaultBatchSize  = 50
	defaultBatchDelay = 2000 * time.Millisecond

	// quotaBackoffFactor stretches the inter-batch delay when the
	// provider reports quota pressure.
	quotaBackoffFactor = 4
)

// MetricsFetcher is the slice of the provider capability the scheduler
// needs for refreshing a single video.
type MetricsFetcher interface {
	Metrics(ctx context.Context, videoID string) (model.VideoMetrics, error)
}

// QuotaProber reports the provider's call budget. Optional; without it
// the scheduler keeps the fixed inter-batch delay.
type QuotaProber interface {
	Quota(ctx context.Context) (provider.QuotaStatus, error)
}

// Store is the slice of the persistence surface the scheduler needs.
type Store interface {
	ListByStatus(ctx context.Context, status model.Status) ([]model.Submission, error)
	UpdateMetrics(ctx context.Context, id string, views, likes int64, watchHours float64, lastUpdated time.Time) error
}

// Result summarizes one sync run.
type Result struct {
	Total   int
	Updated int
	Failed  int
	Batches int
}

// itemOutcome is the settled result of one in-flight refresh.
type itemOutcome struct {
	submission model.Submission
	metrics    model.VideoMetrics
	err        error
}

// Scheduler runs a full metrics refresh per invocation: every approved
// submission, in fixed-size batches, with an unconditional pacing delay
// between batches. Runs are idempotent; re-running a completed sync only
// moves lastUpdated forward.
type Scheduler struct {
	fetcher    MetricsFetcher
	prober     QuotaProber
	store      Store
	batchSize  int
	batchDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	now        func() time.Time
	logger     logger.Logger
}

// New creates a sync scheduler.
func New(fetcher MetricsFetcher, store Store, opts ...Option) *Scheduler {
	s := &Scheduler{
		fetcher:    fetcher,
		store:      store,
		batchSize:  defaultBatchSize,
		batchDelay: defaultBatchDelay,
		sleep:      sleepCtx,
		now:        time.Now,
		logger:     logger.Get().Named("syncer"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Run executes one sync pass. Per-item refresh failures are logged and
// skipped; the stored record keeps its previous snapshot. Only a failure
// to list the approved set fails the run. Cancellation mid-run lets the
// in-flight batch settle, then stops before the next one.
func (s *Scheduler) Run(ctx context.Context) (Result, error) {
	start := s.now().UTC()

	approved, err := s.store.ListByStatus(ctx, model.StatusApproved)
	if err != nil {
		metrics.RecordSyncRunFailure()
		return Result{}, fmt.Errorf("%w: %v", ErrListApproved, err)
	}

	res := Result{Total: len(approved)}
	if len(approved) == 0 {
		metrics.RecordSyncRun()
		metrics.UpdateSyncLastRun(start.Unix())
		return res, nil
	}

	s.logger.Info(ctx, "starting metrics sync",
		logger.Int("total", len(approved)),
		logger.Int("batchSize", s.batchSize),
	)

	for i := 0; i < len(approved); i += s.batchSize {
		end := i + s.batchSize
		if end > len(approved) {
			end = len(approved)
		}

		batchStart := s.now()
		updated, failed := s.runBatch(ctx, approved[i:end], start)
		metrics.RecordSyncBatchLatency(float64(s.now().Sub(batchStart).Milliseconds()))

		res.Updated += updated
		res.Failed += failed
		res.Batches++

		if end >= len(approved) {
			break
		}
		if err := s.pace(ctx); err != nil {
			s.logger.Warn(ctx, "sync cancelled between batches",
				logger.Int("completedBatches", res.Batches))
			metrics.RecordSyncRunFailure()
			return res, err
		}
	}

	s.logger.Info(ctx, "metrics sync complete",
		logger.Int("updated", res.Updated),
		logger.Int("failed", res.Failed),
		logger.Int("batches", res.Batches),
	)
	metrics.RecordSyncRun()
	metrics.UpdateSyncLastRun(start.Unix())
	return res, nil
}

// runBatch fetches every submission's metrics concurrently and waits for
// all of them to settle before writing anything back. One failed fetch
// never wastes the rest of the batch.
func (s *Scheduler) runBatch(ctx context.Context, batch []model.Submission, syncStart time.Time) (updated, failed int) {
	outcomes := make(chan itemOutcome, len(batch))
	for _, sub := range batch {
		go func(sub model.Submission) {
			m, err := s.fetcher.Metrics(ctx, sub.VideoID)
			outcomes <- itemOutcome{submission: sub, metrics: m, err: err}
		}(sub)
	}

	for range batch {
		out := <-outcomes
		if out.err != nil {
			failed++
			metrics.RecordSyncItemFailed()
			s.logger.Warn(ctx, "metrics fetch failed; keeping previous snapshot",
				logger.String("submissionID", out.submission.ID),
				logger.String("videoID", out.submission.VideoID),
				logger.Error(out.err),
			)
			continue
		}

		watchHours := out.metrics.WatchMinutes / 60
		err := s.store.UpdateMetrics(ctx, out.submission.ID,
			out.metrics.Views, out.metrics.Likes, watchHours, syncStart)
		if err != nil {
			failed++
			metrics.RecordSyncItemFailed()
			metrics.RecordStoreError()
			s.logger.Error(ctx, "metrics write failed",
				logger.String("submissionID", out.submission.ID),
				logger.Error(err),
			)
			continue
		}
		updated++
		metrics.RecordSyncItemUpdated()
	}
	return updated, failed
}

// pace applies the inter-batch delay. The delay is unconditional; quota
// pressure only ever stretches it.
func (s *Scheduler) pace(ctx context.Context) error {
	delay := s.batchDelay
	if s.prober != nil {
		if _, err := s.prober.Quota(ctx); errors.Is(err, provider.ErrQuotaExceeded) {
			delay *= quotaBackoffFactor
			s.logger.Warn(ctx, "quota pressure; stretching batch delay",
				logger.Duration("delay", delay))
		}
	}
	metrics.RecordSyncPacingDelay(float64(delay.Milliseconds()))
	return s.sleep(ctx, delay)
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
