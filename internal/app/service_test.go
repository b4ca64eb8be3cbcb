package service_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clipscore/internal/adapters/repository"
	service "github.com/okian/clipscore/internal/app"
	"github.com/okian/clipscore/internal/config"
	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/provider"
	"github.com/okian/clipscore/internal/domain/types"
	"github.com/okian/clipscore/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stubProvider serves canned statuses and metrics keyed by video id.
type stubProvider struct {
	statuses map[string]model.VideoStatus
	metrics  map[string]model.VideoMetrics
	errs     map[string]error
}

func (p *stubProvider) Status(_ context.Context, videoID string) (model.VideoStatus, error) {
	if err, ok := p.errs[videoID]; ok {
		return model.VideoStatus{}, err
	}
	st, ok := p.statuses[videoID]
	if !ok {
		return model.VideoStatus{}, provider.ErrNotFound
	}
	return st, nil
}

func (p *stubProvider) Metrics(_ context.Context, videoID string) (model.VideoMetrics, error) {
	if err, ok := p.errs[videoID]; ok {
		return model.VideoMetrics{}, err
	}
	m, ok := p.metrics[videoID]
	if !ok {
		return model.VideoMetrics{}, provider.ErrNotFound
	}
	return m, nil
}

func (p *stubProvider) MetricsBatch(ctx context.Context, videoIDs []string) (map[string]model.VideoMetrics, error) {
	out := make(map[string]model.VideoMetrics, len(videoIDs))
	for _, id := range videoIDs {
		if m, err := p.Metrics(ctx, id); err == nil {
			out[id] = m
		}
	}
	return out, nil
}

func (p *stubProvider) Upload(context.Context, io.Reader, provider.UploadMetadata) (string, error) {
	return "", provider.ErrUnavailable
}

func (p *stubProvider) Quota(context.Context) (provider.QuotaStatus, error) {
	return provider.QuotaStatus{Cost: 1, Limit: 10000}, nil
}

func newTestService(p provider.Client, now time.Time) *service.Service {
	cfg := config.New()
	s := service.New(cfg,
		service.WithStore(repository.NewMemoryStore()),
		service.WithProvider(p),
		service.WithClock(func() time.Time { return now }),
	)
	if err := s.Start(context.Background()); err != nil {
		panic(err)
	}
	return s
}

func TestCreateSubmission(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
		svc := newTestService(&stubProvider{}, now)
		defer svc.Stop()

		Convey("When a user submits a valid video link", func() {
			sub, err := svc.CreateSubmission(ctx,
				"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "user-1", "Ada", "my clip")

			Convey("Then the submission starts pending on both flags", func() {
				So(err, ShouldBeNil)
				So(sub.ID, ShouldNotBeEmpty)
				So(sub.VideoID, ShouldEqual, "dQw4w9WgXcQ")
				So(sub.Status, ShouldEqual, model.StatusPending)
				So(sub.VerificationStatus, ShouldEqual, model.StatusPending)
			})

			Convey("And the stored record carries the pending verification state", func() {
				So(err, ShouldBeNil)
				views, err := svc.ListSubmissions(ctx, "user-1")
				So(err, ShouldBeNil)
				So(views, ShouldHaveLength, 1)
				So(views[0].VerificationStatus, ShouldEqual, "PENDING")
			})

			Convey("And resubmitting the same video is rejected", func() {
				_, err := svc.CreateSubmission(ctx,
					"https://youtu.be/dQw4w9WgXcQ", "user-2", "Grace", "same clip")
				So(errors.Is(err, repository.ErrDuplicateVideo), ShouldBeTrue)
			})
		})

		Convey("When the link carries no recognizable video id", func() {
			_, err := svc.CreateSubmission(ctx, "https://example.com/nope", "user-1", "Ada", "x")

			Convey("Then the submission is refused", func() {
				So(errors.Is(err, model.ErrInvalidVideoURL), ShouldBeTrue)
			})
		})

		Convey("When a user hits the monthly limit", func() {
			urls := []string{
				"https://youtu.be/aaaaaaaaaaa",
				"https://youtu.be/bbbbbbbbbbb",
				"https://youtu.be/ccccccccccc",
			}
			for _, u := range urls {
				_, err := svc.CreateSubmission(ctx, u, "user-1", "Ada", "clip")
				So(err, ShouldBeNil)
			}
			_, err := svc.CreateSubmission(ctx, "https://youtu.be/ddddddddddd", "user-1", "Ada", "clip")

			Convey("Then the fourth submission this month is refused", func() {
				So(errors.Is(err, model.ErrMonthlyLimit), ShouldBeTrue)
			})

			Convey("But other users are unaffected", func() {
				_, err := svc.CreateSubmission(ctx, "https://youtu.be/eeeeeeeeeee", "user-2", "Grace", "clip")
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestRunSyncAndRankings(t *testing.T) {
	Convey("Given submissions in every lifecycle state", t, func() {
		ctx := context.Background()
		now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
		p := &stubProvider{
			statuses: map[string]model.VideoStatus{
				"aaaaaaaaaaa": {Public: true},
				"bbbbbbbbbbb": {Public: false},
			},
			metrics: map[string]model.VideoMetrics{
				"aaaaaaaaaaa": {Views: 1000, Likes: 50, WatchMinutes: 120},
			},
		}
		svc := newTestService(p, now)
		defer svc.Stop()

		_, err := svc.CreateSubmission(ctx, "https://youtu.be/aaaaaaaaaaa", "user-1", "Ada", "public clip")
		So(err, ShouldBeNil)
		_, err = svc.CreateSubmission(ctx, "https://youtu.be/bbbbbbbbbbb", "user-2", "Grace", "private clip")
		So(err, ShouldBeNil)

		Convey("When a sync pass runs", func() {
			summary, err := svc.RunSync(ctx)

			Convey("Then verification precedes the metrics refresh", func() {
				So(err, ShouldBeNil)
				So(summary.Approved, ShouldEqual, 1)
				So(summary.Rejected, ShouldEqual, 1)
				So(summary.Synced, ShouldEqual, 1)
				So(summary.Failed, ShouldEqual, 0)
			})

			Convey("And the leaderboard ranks the approved clip with fresh metrics", func() {
				So(err, ShouldBeNil)
				entries, err := svc.Rankings(ctx, types.WindowMonth, 50)
				So(err, ShouldBeNil)
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].VideoID, ShouldEqual, "aaaaaaaaaaa")
				So(entries[0].Metrics.Views, ShouldEqual, 1000)
				So(entries[0].Metrics.WatchHours, ShouldAlmostEqual, 2.0, 1e-9)
				// views + likes*10 + watchHours*100
				So(entries[0].Score, ShouldAlmostEqual, 1000+500+200, 1e-9)
			})

			Convey("And a second pass is idempotent", func() {
				So(err, ShouldBeNil)
				again, err := svc.RunSync(ctx)
				So(err, ShouldBeNil)
				So(again.Approved, ShouldEqual, 0)
				So(again.Rejected, ShouldEqual, 0)
				So(again.Synced, ShouldEqual, 1)
			})
		})

		Convey("When the provider is unreachable during verification", func() {
			p.errs = map[string]error{
				"aaaaaaaaaaa": provider.ErrUnavailable,
				"bbbbbbbbbbb": provider.ErrUnavailable,
			}
			summary, err := svc.RunSync(ctx)

			Convey("Then pending submissions are retained for the next run", func() {
				So(err, ShouldBeNil)
				So(summary.Retained, ShouldEqual, 2)
				So(summary.Approved, ShouldEqual, 0)
			})
		})
	})
}

func TestStatsConcurrentWithLifecycle(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
		svc := newTestService(&stubProvider{}, now)
		defer svc.Stop()

		Convey("When stats are read while the service stops and restarts", func() {
			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 20; j++ {
						_ = svc.Stats(ctx)
					}
				}()
			}
			svc.Stop()
			So(svc.Start(ctx), ShouldBeNil)
			wg.Wait()

			Convey("Then the service still reports it is started", func() {
				So(svc.Stats(ctx)["started"], ShouldBeTrue)
			})
		})
	})
}

func TestOverrideStatus(t *testing.T) {
	Convey("Given an approved submission", t, func() {
		ctx := context.Background()
		now := time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)
		p := &stubProvider{
			statuses: map[string]model.VideoStatus{"aaaaaaaaaaa": {Public: true}},
			metrics:  map[string]model.VideoMetrics{"aaaaaaaaaaa": {Views: 10}},
		}
		svc := newTestService(p, now)
		defer svc.Stop()

		sub, err := svc.CreateSubmission(ctx, "https://youtu.be/aaaaaaaaaaa", "user-1", "Ada", "clip")
		So(err, ShouldBeNil)
		_, err = svc.RunSync(ctx)
		So(err, ShouldBeNil)

		Convey("When an operator rejects it manually", func() {
			err := svc.OverrideStatus(ctx, sub.ID, model.StatusRejected)

			Convey("Then it disappears from the leaderboard", func() {
				So(err, ShouldBeNil)
				entries, err := svc.Rankings(ctx, types.WindowAllTime, 50)
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})

			Convey("And the automated verdict stays on record", func() {
				So(err, ShouldBeNil)
				views, err := svc.ListSubmissions(ctx, "user-1")
				So(err, ShouldBeNil)
				So(views, ShouldHaveLength, 1)
				So(views[0].Status, ShouldEqual, "REJECTED")
				So(views[0].VerificationStatus, ShouldEqual, "APPROVED")
				So(views[0].Metrics.Views, ShouldEqual, 10)
			})
		})

		Convey("When the id is unknown", func() {
			err := svc.OverrideStatus(ctx, "missing", model.StatusApproved)

			Convey("Then the override fails with not found", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})

		Convey("When the status is not a lifecycle state", func() {
			err := svc.OverrideStatus(ctx, sub.ID, model.Status("BOGUS"))

			Convey("Then the override is refused", func() {
				So(errors.Is(err, repository.ErrInvalidStatus), ShouldBeTrue)
			})
		})
	})
}
