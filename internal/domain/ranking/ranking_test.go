package ranking_test

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/ranking"
	"github.com/okian/clipscore/internal/domain/types"
)

func TestScore(t *testing.T) {
	Convey("Given the scoring formula", t, func() {
		Convey("Views, likes and watch hours are weighted 1/10/100", func() {
			m := model.Metrics{Views: 1000, Likes: 50, WatchHours: 2}
			So(ranking.Score(m), ShouldAlmostEqual, 1000+500+200, 1e-9)
		})

		Convey("A zero record scores zero", func() {
			So(ranking.Score(model.Metrics{}), ShouldEqual, 0)
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a ranking engine with a fixed clock", t, func() {
		now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
		engine := ranking.New(ranking.WithClock(func() time.Time { return now }))

		approved := func(id string, age time.Duration) model.Submission {
			return model.Submission{
				ID:        id,
				VideoID:   "vid-" + id,
				Title:     "clip " + id,
				Status:    model.StatusApproved,
				CreatedAt: now.Add(-age),
			}
		}

		Convey("When ranking a mixed set over a month", func() {
			subs := []model.Submission{
				approved("a", 24*time.Hour),
				approved("b", 48*time.Hour),
				{ID: "c", Status: model.StatusPending, CreatedAt: now},
				{ID: "d", Status: model.StatusRejected, CreatedAt: now},
			}
			metricsByID := map[string]model.Metrics{
				"a": {Views: 100, Likes: 10, WatchHours: 1}, // 300
				"b": {Views: 1000, Likes: 0, WatchHours: 0}, // 1000
			}

			entries := engine.Rank(types.WindowMonth, subs, metricsByID)

			Convey("Then only approved submissions are ranked, highest score first", func() {
				So(entries, ShouldHaveLength, 2)
				So(entries[0].ID, ShouldEqual, "b")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].ID, ShouldEqual, "a")
				So(entries[1].Rank, ShouldEqual, 2)
			})
		})

		Convey("When a submission has no metrics record", func() {
			subs := []model.Submission{approved("a", time.Hour)}

			entries := engine.Rank(types.WindowWeek, subs, nil)

			Convey("Then it is ranked with a zero score, never excluded", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].Score, ShouldEqual, 0)
			})
		})

		Convey("When submissions fall outside the window", func() {
			subs := []model.Submission{
				approved("recent", 2*24*time.Hour),
				approved("old", 10*24*time.Hour),
			}

			entries := engine.Rank(types.WindowWeek, subs, nil)

			Convey("Then the week window drops the older one", func() {
				So(entries, ShouldHaveLength, 1)
				So(entries[0].ID, ShouldEqual, "recent")
			})

			Convey("And the month window drops a forty day old one", func() {
				stale := engine.Rank(types.WindowMonth, []model.Submission{
					approved("recent", 2*24*time.Hour),
					approved("stale", 40*24*time.Hour),
				}, nil)
				So(stale, ShouldHaveLength, 1)
				So(stale[0].ID, ShouldEqual, "recent")
			})

			Convey("But allTime keeps both", func() {
				all := engine.Rank(types.WindowAllTime, subs, nil)
				So(all, ShouldHaveLength, 2)
			})
		})

		Convey("When scores tie", func() {
			subs := []model.Submission{approved("b", time.Hour), approved("a", time.Hour)}
			metricsByID := map[string]model.Metrics{
				"a": {Views: 10, Likes: 0},
				"b": {Views: 10, Likes: 0},
			}

			entries := engine.Rank(types.WindowWeek, subs, metricsByID)

			Convey("Then ordering falls back to id and stays deterministic", func() {
				So(entries[0].ID, ShouldEqual, "a")
				So(entries[1].ID, ShouldEqual, "b")
			})

			Convey("And views break ties before ids", func() {
				metricsByID["b"] = model.Metrics{Views: 0, Likes: 1} // same score 10
				again := engine.Rank(types.WindowWeek, subs, metricsByID)
				So(again[0].ID, ShouldEqual, "a")
			})
		})

		Convey("When more submissions qualify than the cap allows", func() {
			capped := ranking.New(
				ranking.WithClock(func() time.Time { return now }),
				ranking.WithMaxEntries(3),
			)
			var subs []model.Submission
			metricsByID := map[string]model.Metrics{}
			for i := 0; i < 10; i++ {
				id := fmt.Sprintf("s%02d", i)
				subs = append(subs, approved(id, time.Hour))
				metricsByID[id] = model.Metrics{Views: int64(i * 100)}
			}

			entries := capped.Rank(types.WindowWeek, subs, metricsByID)

			Convey("Then the cap is applied after the full sort", func() {
				So(entries, ShouldHaveLength, 3)
				So(entries[0].ID, ShouldEqual, "s09")
				So(entries[1].ID, ShouldEqual, "s08")
				So(entries[2].ID, ShouldEqual, "s07")
			})
		})
	})
}
