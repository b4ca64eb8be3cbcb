// Package types contains common types used across the application
package types

import (
	"strings"
	"time"
)

// Window selects the time range over which submissions are ranked.
type Window string

// Ranking windows.
const (
	WindowWeek    Window = "week"
	WindowMonth   Window = "month"
	WindowAllTime Window = "allTime"
)

// ParseWindow maps a query value to a Window. Empty input defaults to
// the month window; unknown values are rejected.
func ParseWindow(s string) (Window, bool) {
	switch strings.TrimSpace(s) {
	case "":
		return WindowMonth, true
	case string(WindowWeek):
		return WindowWeek, true
	case string(WindowMonth):
		return WindowMonth, true
	case string(WindowAllTime):
		return WindowAllTime, true
	}
	return "", false
}

// SyncSummary reports the outcome of one verification plus sync pass.
type SyncSummary struct {
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Retained int `json:"retained"`
	Synced   int `json:"synced"`
	Failed   int `json:"failed"`
	Batches  int `json:"batches"`
}

// SubmissionView is the read shape of a submission with its current
// metrics snapshot attached.
type SubmissionView struct {
	ID                 string          `json:"id"`
	VideoID            string          `json:"video_id"`
	UserID             string          `json:"user_id"`
	UserName           string          `json:"user_name"`
	Title              string          `json:"title"`
	Status             string          `json:"status"`
	VerificationStatus string          `json:"verification_status,omitempty"`
	Metrics            MetricsSnapshot `json:"metrics"`
	CreatedAt          time.Time       `json:"created_at"`
}

// MetricsSnapshot is the read shape of a submission's engagement counters.
type MetricsSnapshot struct {
	Views       int64     `json:"views"`
	Likes       int64     `json:"likes"`
	WatchHours  float64   `json:"watch_hours"`
	LastUpdated time.Time `json:"last_updated"`
}

// RankedEntry represents one leaderboard row. It is a read-time
// projection and is never persisted.
type RankedEntry struct {
	Rank      int             `json:"rank"`
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	VideoID   string          `json:"video_id"`
	UserName  string          `json:"user_name"`
	Metrics   MetricsSnapshot `json:"metrics"`
	Score     float64         `json:"score"`
	CreatedAt time.Time       `json:"created_at"`
}
