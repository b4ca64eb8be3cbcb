package repository

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clipscore/internal/domain/model"
)

func TestMemoryStoreSubmissions(t *testing.T) {
	Convey("Given an empty in-memory store", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()
		base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)

		create := func(videoID, userID string, at time.Time) model.Submission {
			sub := model.Submission{
				VideoID:   videoID,
				UserID:    userID,
				Title:     "clip " + videoID,
				Status:    model.StatusPending,
				CreatedAt: at,
			}
			So(store.Create(ctx, &sub), ShouldBeNil)
			return sub
		}

		Convey("When a submission is created", func() {
			sub := create("vid-a", "user-1", base)

			Convey("Then it gets an id and a zeroed metrics record", func() {
				So(sub.ID, ShouldNotBeEmpty)
				m, err := store.GetMetrics(ctx, sub.ID)
				So(err, ShouldBeNil)
				So(m.Views, ShouldEqual, 0)
				So(m.Likes, ShouldEqual, 0)
				So(m.WatchHours, ShouldEqual, 0)
			})

			Convey("And it is retrievable by video id", func() {
				got, err := store.GetByVideoID(ctx, "vid-a")
				So(err, ShouldBeNil)
				So(got.ID, ShouldEqual, sub.ID)
			})

			Convey("And the same video cannot be submitted twice", func() {
				dup := model.Submission{VideoID: "vid-a", UserID: "user-2", Status: model.StatusPending}
				So(store.Create(ctx, &dup), ShouldEqual, ErrDuplicateVideo)
			})
		})

		Convey("When listing by status", func() {
			a := create("vid-a", "user-1", base)
			b := create("vid-b", "user-1", base.Add(time.Hour))
			So(store.UpdateVerification(ctx, b.ID, model.StatusApproved), ShouldBeNil)

			pending, err := store.ListByStatus(ctx, model.StatusPending)
			So(err, ShouldBeNil)
			approved, err := store.ListByStatus(ctx, model.StatusApproved)
			So(err, ShouldBeNil)

			Convey("Then each state lists its own submissions", func() {
				So(pending, ShouldHaveLength, 1)
				So(pending[0].ID, ShouldEqual, a.ID)
				So(approved, ShouldHaveLength, 1)
				So(approved[0].ID, ShouldEqual, b.ID)
			})
		})

		Convey("When listing a user's submissions", func() {
			create("vid-a", "user-1", base)
			late := create("vid-b", "user-1", base.Add(time.Hour))
			create("vid-c", "user-2", base)

			subs, err := store.ListByUser(ctx, "user-1")

			Convey("Then only theirs come back, newest first", func() {
				So(err, ShouldBeNil)
				So(subs, ShouldHaveLength, 2)
				So(subs[0].ID, ShouldEqual, late.ID)
			})
		})

		Convey("When counting a user's submissions since an instant", func() {
			create("vid-a", "user-1", base)
			create("vid-b", "user-1", base.AddDate(0, -1, 0))

			count, err := store.CountByUserSince(ctx, "user-1", base.Add(-time.Hour))

			Convey("Then older submissions are excluded", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When a manual override follows verification", func() {
			sub := create("vid-a", "user-1", base)
			So(store.UpdateVerification(ctx, sub.ID, model.StatusApproved), ShouldBeNil)
			So(store.UpdateStatus(ctx, sub.ID, model.StatusRejected), ShouldBeNil)

			got, err := store.GetByVideoID(ctx, "vid-a")

			Convey("Then the automated verdict stays on record", func() {
				So(err, ShouldBeNil)
				So(got.Status, ShouldEqual, model.StatusRejected)
				So(got.VerificationStatus, ShouldEqual, model.StatusApproved)
			})
		})

		Convey("When updating an unknown submission", func() {
			So(store.UpdateStatus(ctx, "missing", model.StatusApproved), ShouldEqual, ErrNotFound)
			So(store.UpdateVerification(ctx, "missing", model.StatusApproved), ShouldEqual, ErrNotFound)
			So(store.UpdateMetrics(ctx, "missing", 1, 1, 1, base), ShouldEqual, ErrNotFound)
		})
	})
}

func TestMemoryStoreMetrics(t *testing.T) {
	Convey("Given a store with one submission", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()
		base := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		sub := model.Submission{VideoID: "vid-a", UserID: "user-1", Status: model.StatusPending, CreatedAt: base}
		So(store.Create(ctx, &sub), ShouldBeNil)

		Convey("When metrics are refreshed", func() {
			So(store.UpdateMetrics(ctx, sub.ID, 1000, 50, 1.5, base.Add(time.Hour)), ShouldBeNil)

			m, err := store.GetMetrics(ctx, sub.ID)

			Convey("Then the counters are overwritten in one write", func() {
				So(err, ShouldBeNil)
				So(m.Views, ShouldEqual, 1000)
				So(m.Likes, ShouldEqual, 50)
				So(m.WatchHours, ShouldAlmostEqual, 1.5, 1e-9)
				So(m.LastUpdated, ShouldResemble, base.Add(time.Hour))
			})
		})

		Convey("When a refresh carries an older timestamp", func() {
			So(store.UpdateMetrics(ctx, sub.ID, 10, 1, 0.1, base.Add(time.Hour)), ShouldBeNil)
			So(store.UpdateMetrics(ctx, sub.ID, 20, 2, 0.2, base.Add(time.Minute)), ShouldBeNil)

			m, err := store.GetMetrics(ctx, sub.ID)

			Convey("Then lastUpdated never moves backwards", func() {
				So(err, ShouldBeNil)
				So(m.Views, ShouldEqual, 20)
				So(m.LastUpdated, ShouldResemble, base.Add(time.Hour))
			})
		})

		Convey("When fetching a metrics batch", func() {
			other := model.Submission{VideoID: "vid-b", UserID: "user-1", Status: model.StatusPending, CreatedAt: base}
			So(store.Create(ctx, &other), ShouldBeNil)
			So(store.UpdateMetrics(ctx, sub.ID, 5, 1, 0, base), ShouldBeNil)

			batch, err := store.GetMetricsBatch(ctx, []string{sub.ID, other.ID, "missing"})

			Convey("Then unknown ids are simply absent", func() {
				So(err, ShouldBeNil)
				So(batch, ShouldHaveLength, 2)
				So(batch[sub.ID].Views, ShouldEqual, 5)
				So(batch, ShouldNotContainKey, "missing")
			})
		})
	})
}
