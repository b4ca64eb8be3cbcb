package syncer

import (
	"context"
	"time"

	"github.com/okian/clipscore/pkg/logger"
)

// Option applies a configuration option to the Scheduler.
type Option func(*Scheduler)

// WithBatchSize sets how many submissions are refreshed per batch.
func WithBatchSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithBatchDelay sets the pacing delay between batches.
func WithBatchDelay(d time.Duration) Option {
	return func(s *Scheduler) {
		if d >= 0 {
			s.batchDelay = d
		}
	}
}

// WithQuotaProber enables quota-aware pacing.
func WithQuotaProber(p QuotaProber) Option {
	return func(s *Scheduler) {
		s.prober = p
	}
}

// WithClock sets the time source. Used by tests for fixed sync stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSleeper replaces the pacing sleep. Used by tests to observe
// delays without waiting them out.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Scheduler) {
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithLogger sets a custom logger for the scheduler.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
