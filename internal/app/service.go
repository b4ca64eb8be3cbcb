// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/clipscore/internal/adapters/cache"
	"github.com/okian/clipscore/internal/adapters/provider/youtube"
	"github.com/okian/clipscore/internal/adapters/repository"
	"github.com/okian/clipscore/internal/config"
	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/provider"
	"github.com/okian/clipscore/internal/domain/ranking"
	"github.com/okian/clipscore/internal/domain/syncer"
	"github.com/okian/clipscore/internal/domain/types"
	"github.com/okian/clipscore/internal/domain/verify"
	"github.com/okian/clipscore/pkg/logger"
	"github.com/okian/clipscore/pkg/metrics"
)

// RankingsCache is the optional read-side cache for computed leaderboards.
type RankingsCache interface {
	Get(ctx context.Context, window types.Window) ([]types.RankedEntry, bool)
	Set(ctx context.Context, window types.Window, entries []types.RankedEntry)
}

// Service implements the API dependencies for the submission pipeline.
type Service struct {
	mu sync.Mutex

	// Core components
	store    repository.Store
	db       *sql.DB
	provider provider.Client
	verifier *verify.Engine
	syncer   *syncer.Scheduler
	ranker   *ranking.Engine
	cache    RankingsCache

	// Configuration
	cfg *config.Config
	now func() time.Time

	// State
	started bool
	// syncMu serializes externally triggered sync passes.
	syncMu sync.Mutex

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the submission store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithProvider sets the video platform client.
func WithProvider(client provider.Client) Option {
	return func(s *Service) {
		s.provider = client
	}
}

// WithCache sets the rankings cache.
func WithCache(c RankingsCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithClock sets the time source. Used by tests for fixed windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service around the given configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg: cfg,
		now: time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components. Components not
// injected through options are built from configuration.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.logger.Info(ctx, "starting submission service...")

	if s.store == nil {
		if s.cfg.DatabaseURL != "" {
			db, err := sql.Open("postgres", s.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			if err := db.PingContext(ctx); err != nil {
				return err
			}
			s.db = db
			s.store = repository.NewPostgresStore(db)
			s.logger.Info(ctx, "using postgres store")
		} else {
			s.store = repository.NewMemoryStore()
			s.logger.Info(ctx, "using in-memory store")
		}
	}

	if s.provider == nil {
		s.provider = youtube.New(
			youtube.WithAPIKey(s.cfg.YouTubeAPIKey),
			youtube.WithTimeout(time.Duration(s.cfg.YouTubeTimeoutMS)*time.Millisecond),
		)
	}

	if s.cache == nil && s.cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: s.cfg.RedisAddr})
		s.cache = cache.New(client,
			cache.WithTTL(time.Duration(s.cfg.RankingsCacheTTLMS)*time.Millisecond),
		)
		s.logger.Info(ctx, "rankings cache enabled", logger.String("addr", s.cfg.RedisAddr))
	}

	s.verifier = verify.New(s.provider, s.store,
		verify.WithConcurrency(s.cfg.VerifyConcurrency),
	)
	s.syncer = syncer.New(s.provider, s.store,
		syncer.WithBatchSize(s.cfg.BatchSize),
		syncer.WithBatchDelay(time.Duration(s.cfg.BatchDelayMS)*time.Millisecond),
		syncer.WithQuotaProber(s.provider),
		syncer.WithClock(s.now),
	)
	s.ranker = ranking.New(
		ranking.WithMaxEntries(s.cfg.MaxRankingsLimit),
		ranking.WithClock(s.now),
	)

	s.started = true
	s.logger.Info(ctx, "submission service started",
		logger.Int("batchSize", s.cfg.BatchSize),
		logger.Int("verifyConcurrency", s.cfg.VerifyConcurrency),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping submission service...")

	if s.db != nil {
		_ = s.db.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "submission service stopped")
}

// CreateSubmission registers a new external video. The submission
// starts pending and carries a zeroed metrics record until the first
// verification and sync passes pick it up.
func (s *Service) CreateSubmission(ctx context.Context, videoURL, userID, userName, title string) (model.Submission, error) {
	videoID, ok := youtube.ExtractVideoID(videoURL)
	if !ok {
		return model.Submission{}, model.ErrInvalidVideoURL
	}

	monthStart := s.monthStart()
	count, err := s.store.CountByUserSince(ctx, userID, monthStart)
	if err != nil {
		metrics.RecordStoreError()
		return model.Submission{}, err
	}
	if count >= s.cfg.MonthlySubmissionLimit {
		return model.Submission{}, model.ErrMonthlyLimit
	}

	sub := model.Submission{
		VideoID:            videoID,
		UserID:             userID,
		UserName:           userName,
		Title:              title,
		Status:             model.StatusPending,
		VerificationStatus: model.StatusPending,
		CreatedAt:          s.now().UTC(),
	}
	if err := s.store.Create(ctx, &sub); err != nil {
		return model.Submission{}, err
	}

	s.logger.Info(ctx, "submission created",
		logger.String("submissionID", sub.ID),
		logger.String("videoID", sub.VideoID),
		logger.String("userID", sub.UserID),
	)
	return sub, nil
}

// ListSubmissions returns a user's submissions, newest first, with the
// current metrics snapshot attached to each.
func (s *Service) ListSubmissions(ctx context.Context, userID string) ([]types.SubmissionView, error) {
	subs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(subs))
	for i, sub := range subs {
		ids[i] = sub.ID
	}
	metricsByID, err := s.store.GetMetricsBatch(ctx, ids)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	views := make([]types.SubmissionView, len(subs))
	for i, sub := range subs {
		m := metricsByID[sub.ID]
		views[i] = types.SubmissionView{
			ID:                 sub.ID,
			VideoID:            sub.VideoID,
			UserID:             sub.UserID,
			UserName:           sub.UserName,
			Title:              sub.Title,
			Status:             string(sub.Status),
			VerificationStatus: string(sub.VerificationStatus),
			Metrics: types.MetricsSnapshot{
				Views:       m.Views,
				Likes:       m.Likes,
				WatchHours:  m.WatchHours,
				LastUpdated: m.LastUpdated,
			},
			CreatedAt: sub.CreatedAt,
		}
	}
	return views, nil
}

// OverrideStatus manually forces a submission's lifecycle state. The
// recorded verification status is left untouched so the override stays
// visible as such.
func (s *Service) OverrideStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return repository.ErrInvalidStatus
	}
	if err := s.store.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.logger.Info(ctx, "submission status overridden",
		logger.String("submissionID", id),
		logger.String("status", string(status)),
	)
	return nil
}

// RunSync executes one verification pass followed by one metrics
// refresh pass. Passes are serialized; a trigger arriving while a sync
// is in flight waits for its turn.
func (s *Service) RunSync(ctx context.Context) (types.SyncSummary, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	verified, err := s.verifier.Run(ctx)
	if err != nil {
		return types.SyncSummary{}, err
	}

	synced, err := s.syncer.Run(ctx)
	if err != nil {
		return types.SyncSummary{}, err
	}

	s.refreshGauges(ctx)

	return types.SyncSummary{
		Approved: verified.Approved,
		Rejected: verified.Rejected,
		Retained: verified.Retained,
		Synced:   synced.Updated,
		Failed:   synced.Failed,
		Batches:  synced.Batches,
	}, nil
}

// Rankings returns the leaderboard for a window, capped at limit. The
// full board is cached per window; limits only slice the cached copy.
func (s *Service) Rankings(ctx context.Context, window types.Window, limit int) ([]types.RankedEntry, error) {
	if s.cache != nil {
		if entries, ok := s.cache.Get(ctx, window); ok {
			return capEntries(entries, limit), nil
		}
	}

	subs, err := s.store.ListByStatus(ctx, model.StatusApproved)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	ids := make([]string, len(subs))
	for i, sub := range subs {
		ids[i] = sub.ID
	}
	metricsByID, err := s.store.GetMetricsBatch(ctx, ids)
	if err != nil {
		metrics.RecordStoreError()
		return nil, err
	}

	entries := s.ranker.Rank(window, subs, metricsByID)
	if s.cache != nil {
		s.cache.Set(ctx, window, entries)
	}
	return capEntries(entries, limit), nil
}

// Stats exposes service counters for the stats endpoint.
func (s *Service) Stats(ctx context.Context) map[string]interface{} {
	s.mu.Lock()
	started := s.started
	s.mu.Unlock()

	stats := map[string]interface{}{
		"started":    started,
		"batch_size": s.cfg.BatchSize,
	}

	for _, status := range []model.Status{model.StatusPending, model.StatusApproved, model.StatusRejected} {
		count, err := s.store.CountByStatus(ctx, status)
		if err != nil {
			continue
		}
		stats[string(status)] = count
	}

	s.refreshGauges(ctx)
	return stats
}

// refreshGauges pushes submission counts into the metrics gauges.
func (s *Service) refreshGauges(ctx context.Context) {
	if pending, err := s.store.CountByStatus(ctx, model.StatusPending); err == nil {
		metrics.UpdatePendingSubmissions(pending)
	}
	if approved, err := s.store.CountByStatus(ctx, model.StatusApproved); err == nil {
		metrics.UpdateApprovedSubmissions(approved)
	}
}

// monthStart returns the first instant of the current calendar month.
func (s *Service) monthStart() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func capEntries(entries []types.RankedEntry, limit int) []types.RankedEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
