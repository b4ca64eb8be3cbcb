// Package model contains domain models passed between layers.
package model

import "time"

// Status enumerates the lifecycle states of a submission.
type Status string

// Submission lifecycle states.
const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Submission is a user-proposed external video entered into the contest.
type Submission struct {
	ID      string // opaque submission id
	VideoID string // external video identifier, unique across submissions
	UserID  string // submitting user
	Title   string
	// Status drives verification eligibility, metrics refresh and ranking.
	Status Status
	// VerificationStatus mirrors the outcome of the last verification pass.
	// It is kept separate from Status so a manual override of Status is
	// visible as such.
	VerificationStatus Status
	UserName           string
	CreatedAt          time.Time
}

// Metrics holds the engagement counters for one submission.
// Mutated exclusively by the sync scheduler; created zeroed alongside
// its submission.
type Metrics struct {
	SubmissionID string
	Views        int64
	Likes        int64
	WatchHours   float64
	LastUpdated  time.Time
}

// VideoMetrics is the raw engagement snapshot reported by the provider.
type VideoMetrics struct {
	Views        int64
	Likes        int64
	WatchMinutes float64
}

// VideoStatus is the visibility state reported by the provider.
type VideoStatus struct {
	Public bool
}
