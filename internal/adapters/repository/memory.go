package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/clipscore/internal/domain/model"
)

// MemoryStore is a mutex-guarded in-memory Store. It is the default
// backend and the one the domain tests run against.
type MemoryStore struct {
	mu sync.RWMutex

	submissions map[string]model.Submission // by submission id
	byVideoID   map[string]string           // video id -> submission id
	order       []string                    // submission ids in creation order
	metrics     map[string]model.Metrics    // by submission id
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		submissions: make(map[string]model.Submission),
		byVideoID:   make(map[string]string),
		metrics:     make(map[string]model.Metrics),
	}
}

// Create persists a new submission with a zeroed metrics record.
func (s *MemoryStore) Create(ctx context.Context, sub *model.Submission) error {
	if !sub.Status.Valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byVideoID[sub.VideoID]; exists {
		return ErrDuplicateVideo
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	s.submissions[sub.ID] = *sub
	s.byVideoID[sub.VideoID] = sub.ID
	s.order = append(s.order, sub.ID)
	s.metrics[sub.ID] = model.Metrics{SubmissionID: sub.ID}
	return nil
}

// GetByVideoID returns the submission referencing the external video.
func (s *MemoryStore) GetByVideoID(ctx context.Context, videoID string) (model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byVideoID[videoID]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return s.submissions[id], nil
}

// ListByStatus returns all submissions in the given state, oldest first.
func (s *MemoryStore) ListByStatus(ctx context.Context, status model.Status) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Submission
	for _, id := range s.order {
		if sub := s.submissions[id]; sub.Status == status {
			out = append(out, sub)
		}
	}
	return out, nil
}

// ListApprovedCreatedSince returns approved submissions created at or
// after the given instant, oldest first.
func (s *MemoryStore) ListApprovedCreatedSince(ctx context.Context, since time.Time) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Submission
	for _, id := range s.order {
		sub := s.submissions[id]
		if sub.Status == model.StatusApproved && !sub.CreatedAt.Before(since) {
			out = append(out, sub)
		}
	}
	return out, nil
}

// ListByUser returns a user's submissions, newest first.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Submission
	for _, id := range s.order {
		if sub := s.submissions[id]; sub.UserID == userID {
			out = append(out, sub)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// CountByUserSince counts a user's submissions created at or after the
// given instant.
func (s *MemoryStore) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sub := range s.submissions {
		if sub.UserID == userID && !sub.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// CountByStatus counts submissions in the given state.
func (s *MemoryStore) CountByStatus(ctx context.Context, status model.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, sub := range s.submissions {
		if sub.Status == status {
			count++
		}
	}
	return count, nil
}

// UpdateVerification transitions status and verificationStatus together.
func (s *MemoryStore) UpdateVerification(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[id]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	sub.VerificationStatus = status
	s.submissions[id] = sub
	return nil
}

// UpdateStatus writes status only; verificationStatus keeps recording
// the last automated pass.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[id]
	if !ok {
		return ErrNotFound
	}
	sub.Status = status
	s.submissions[id] = sub
	return nil
}

// UpdateMetrics overwrites a submission's counters in one write.
func (s *MemoryStore) UpdateMetrics(ctx context.Context, submissionID string, views, likes int64, watchHours float64, lastUpdated time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[submissionID]
	if !ok {
		return ErrNotFound
	}
	m.Views = views
	m.Likes = likes
	m.WatchHours = watchHours
	if lastUpdated.After(m.LastUpdated) {
		m.LastUpdated = lastUpdated
	}
	s.metrics[submissionID] = m
	return nil
}

// GetMetrics returns the metrics record for one submission.
func (s *MemoryStore) GetMetrics(ctx context.Context, submissionID string) (model.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metrics[submissionID]
	if !ok {
		return model.Metrics{}, ErrNotFound
	}
	return m, nil
}

// GetMetricsBatch returns metrics for the given submissions.
func (s *MemoryStore) GetMetricsBatch(ctx context.Context, submissionIDs []string) (map[string]model.Metrics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Metrics, len(submissionIDs))
	for _, id := range submissionIDs {
		if m, ok := s.metrics[id]; ok {
			out[id] = m
		}
	}
	return out, nil
}
