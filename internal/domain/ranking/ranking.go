// Package ranking turns metrics snapshots into a deterministic leaderboard.
package ranking

import (
	"sort"
	"time"

	"github.com/okian/clipscore/internal/domain/model"
	"github.com/okian/clipscore/internal/domain/types"
)

// Scoring weights. Watch-hours dominate, likes next, raw views least.
// These are deliberate design constants and must not be tuned casually.
const (
	likeWeight      = 10
	watchHourWeight = 100
)

// Default engine configuration constants.
const (
	defaultMaxEntries = 50
	weekWindow        = 7 * 24 * time.Hour
)

// allTimeFloor bounds the allTime window.
var allTimeFloor = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// Score computes the weighted score for one metrics record:
// views + likes*10 + watchHours*100.
func Score(m model.Metrics) float64 {
	return float64(m.Views) + float64(m.Likes)*likeWeight + m.WatchHours*watchHourWeight
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithMaxEntries caps the leaderboard length. The cap is applied after
// the full sort, never before.
func WithMaxEntries(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxEntries = n
		}
	}
}

// WithClock sets the time source. Used by tests for fixed windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// Engine ranks submissions over a time window. It is a pure read-time
// computation with no side effects.
type Engine struct {
	maxEntries int
	now        func() time.Time
}

// New creates a ranking engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxEntries: defaultMaxEntries,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// WindowStart returns the inclusive lower bound of a window.
func (e *Engine) WindowStart(w types.Window) time.Time {
	now := e.now()
	switch w {
	case types.WindowWeek:
		return now.Add(-weekWindow)
	case types.WindowMonth:
		return now.AddDate(0, -1, 0)
	case types.WindowAllTime:
		return allTimeFloor
	}
	return allTimeFloor
}

// Rank produces the ordered, capped leaderboard for a window.
// Only approved submissions created within the window are eligible.
// Submissions without a metrics record score zero; they are ranked,
// never excluded. Ordering is a total order: score desc, then views
// desc, then likes desc, then id asc.
func (e *Engine) Rank(window types.Window, subs []model.Submission, metricsByID map[string]model.Metrics) []types.RankedEntry {
	start := e.WindowStart(window)

	entries := make([]types.RankedEntry, 0, len(subs))
	for _, sub := range subs {
		if sub.Status != model.StatusApproved || sub.CreatedAt.Before(start) {
			continue
		}
		m := metricsByID[sub.ID] // zero value scores zero
		entries = append(entries, types.RankedEntry{
			ID:       sub.ID,
			Title:    sub.Title,
			VideoID:  sub.VideoID,
			UserName: sub.UserName,
			Metrics: types.MetricsSnapshot{
				Views:       m.Views,
				Likes:       m.Likes,
				WatchHours:  m.WatchHours,
				LastUpdated: m.LastUpdated,
			},
			Score:     Score(m),
			CreatedAt: sub.CreatedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Metrics.Views != b.Metrics.Views {
			return a.Metrics.Views > b.Metrics.Views
		}
		if a.Metrics.Likes != b.Metrics.Likes {
			return a.Metrics.Likes > b.Metrics.Likes
		}
		return a.ID < b.ID
	})

	if len(entries) > e.maxEntries {
		entries = entries[:e.maxEntries]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
