// Package verify transitions pending submissions based on the video's
// public visibility at the provider.
package verify

import (
	"context"
	"errors"
	"sync"

	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/provider"
	"github.com/okian/clipscore/pkg/logger"
	"github.com/okian/clipscore/pkg/metrics"
)

// defaultConcurrency bounds the verification fan-out.
const defaultConcurrency = 8

// StatusChecker is the slice of the provider capability this engine needs.
type StatusChecker interface {
	Status(ctx context.Context, videoID string) (model.VideoStatus, error)
}

// Store is the slice of the persistence surface this engine needs.
type Store interface {
	ListByStatus(ctx context.Context, status model.Status) ([]model.Submission, error)
	UpdateVerification(ctx context.Context, id string, status model.Status) error
}

// Result summarizes one verification pass.
type Result struct {
	Approved int
	Rejected int
	Retained int // left pending, retried on the next run
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithConcurrency bounds the per-submission check fan-out.
func WithConcurrency(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine runs one verification pass per invocation over all currently
// pending submissions.
//
// State machine per submission, initial state PENDING:
//   - provider reports public            -> APPROVED
//   - provider reports not-public        -> REJECTED
//   - provider reports NotFound          -> REJECTED
//   - provider unavailable / over quota  -> PENDING (unchanged)
//
// APPROVED and REJECTED are terminal for this engine; only a manual
// override moves a submission out of them.
type Engine struct {
	checker     StatusChecker
	store       Store
	concurrency int
	logger      logger.Logger
}

// New creates a verification engine.
func New(checker StatusChecker, store Store, opts ...Option) *Engine {
	e := &Engine{
		checker:     checker,
		store:       store,
		concurrency: defaultConcurrency,
		logger:      logger.Get().Named("verify"),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Run verifies every pending submission once, in creation order, with a
// bounded fan-out. One submission's failure never prevents processing
// of the others; the only error returned is a failure to list pending
// submissions, which is run-level fatal.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	pending, err := e.store.ListByStatus(ctx, model.StatusPending)
	if err != nil {
		return Result{}, err
	}
	if len(pending) == 0 {
		return Result{}, nil
	}

	e.logger.Info(ctx, "verifying pending submissions", logger.Int("count", len(pending)))

	var (
		mu  sync.Mutex
		res Result
		wg  sync.WaitGroup
	)
	sem := make(chan struct{}, e.concurrency)

	for _, sub := range pending {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub model.Submission) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := e.verifyOne(ctx, sub)

			mu.Lock()
			switch outcome {
			case model.StatusApproved:
				res.Approved++
			case model.StatusRejected:
				res.Rejected++
			default:
				res.Retained++
			}
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	e.logger.Info(ctx, "verification pass complete",
		logger.Int("approved", res.Approved),
		logger.Int("rejected", res.Rejected),
		logger.Int("retained", res.Retained),
	)
	return res, nil
}

// verifyOne checks a single submission and returns the state it ended
// up in. StatusPending means the submission was left untouched.
func (e *Engine) verifyOne(ctx context.Context, sub model.Submission) model.Status {
	status, err := e.checker.Status(ctx, sub.VideoID)

	var next model.Status
	switch {
	case err == nil && status.Public:
		next = model.StatusApproved
	case err == nil || errors.Is(err, provider.ErrNotFound):
		next = model.StatusRejected
	default:
		// Unavailable or over quota: leave pending, retried next run.
		metrics.RecordVerificationTransition("retained")
		e.logger.Warn(ctx, "verification check failed; leaving pending",
			logger.String("submissionID", sub.ID),
			logger.String("videoID", sub.VideoID),
			logger.Error(err),
		)
		return model.StatusPending
	}

	if err := e.store.UpdateVerification(ctx, sub.ID, next); err != nil {
		// Isolated: the transition is retried on the next run.
		metrics.RecordStoreError()
		metrics.RecordVerificationTransition("retained")
		e.logger.Error(ctx, "verification write failed; leaving pending",
			logger.String("submissionID", sub.ID),
			logger.Error(err),
		)
		return model.StatusPending
	}

	if next == model.StatusApproved {
		metrics.RecordVerificationTransition("approved")
	} else {
		metrics.RecordVerificationTransition("rejected")
	}
	e.logger.Debug(ctx, "submission verified",
		logger.String("submissionID", sub.ID),
		logger.String("status", string(next)),
	)
	return next
}
