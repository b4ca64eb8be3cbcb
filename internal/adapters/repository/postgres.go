package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/okian/clipscore/internal/domain/model"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresStore persists submissions and metrics in Postgres.
type PostgresStore struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db: db,
		sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const submissionColumns = "id, video_id, user_id, user_name, title, status, verification_status, created_at"

// Create inserts the submission and its zeroed metrics row in one
// transaction, so a submission never exists without a metrics record.
func (s *PostgresStore) Create(ctx context.Context, sub *model.Submission) error {
	if !sub.Status.Valid() {
		return ErrInvalidStatus
	}
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `INSERT INTO submissions (id, video_id, user_id, user_name, title, status, verification_status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := tx.ExecContext(ctx, query,
		sub.ID,
		sub.VideoID,
		sub.UserID,
		sub.UserName,
		sub.Title,
		string(sub.Status),
		string(sub.VerificationStatus),
		sub.CreatedAt,
	); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateVideo
		}
		return fmt.Errorf("insert submission: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO video_metrics (submission_id, views, likes, watch_hours, last_updated)
		 VALUES ($1, 0, 0, 0, $2)`,
		sub.ID, sub.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert metrics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create: %w", err)
	}
	return nil
}

// GetByVideoID returns the submission referencing the external video.
func (s *PostgresStore) GetByVideoID(ctx context.Context, videoID string) (model.Submission, error) {
	query, args, err := s.sb.
		Select(submissionColumns).
		From("submissions").
		Where(sq.Eq{"video_id": videoID}).
		ToSql()
	if err != nil {
		return model.Submission{}, fmt.Errorf("build query: %w", err)
	}

	sub, err := scanSubmission(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Submission{}, ErrNotFound
	}
	if err != nil {
		return model.Submission{}, fmt.Errorf("get by video id: %w", err)
	}
	return sub, nil
}

// ListByStatus returns all submissions in the given state, oldest first.
func (s *PostgresStore) ListByStatus(ctx context.Context, status model.Status) ([]model.Submission, error) {
	return s.list(ctx, sq.Eq{"status": string(status)}, "created_at ASC")
}

// ListApprovedCreatedSince returns approved submissions created at or
// after the given instant, oldest first.
func (s *PostgresStore) ListApprovedCreatedSince(ctx context.Context, since time.Time) ([]model.Submission, error) {
	return s.list(ctx, sq.And{
		sq.Eq{"status": string(model.StatusApproved)},
		sq.GtOrEq{"created_at": since},
	}, "created_at ASC")
}

// ListByUser returns a user's submissions, newest first.
func (s *PostgresStore) ListByUser(ctx context.Context, userID string) ([]model.Submission, error) {
	return s.list(ctx, sq.Eq{"user_id": userID}, "created_at DESC")
}

func (s *PostgresStore) list(ctx context.Context, where sq.Sqlizer, orderBy string) ([]model.Submission, error) {
	query, args, err := s.sb.
		Select(submissionColumns).
		From("submissions").
		Where(where).
		OrderBy(orderBy).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// CountByUserSince counts a user's submissions created at or after the
// given instant.
func (s *PostgresStore) CountByUserSince(ctx context.Context, userID string, since time.Time) (int, error) {
	query, args, err := s.sb.
		Select("COUNT(*)").
		From("submissions").
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.GtOrEq{"created_at": since},
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by user: %w", err)
	}
	return count, nil
}

// CountByStatus counts submissions in the given state.
func (s *PostgresStore) CountByStatus(ctx context.Context, status model.Status) (int, error) {
	query, args, err := s.sb.
		Select("COUNT(*)").
		From("submissions").
		Where(sq.Eq{"status": string(status)}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return count, nil
}

// UpdateVerification transitions status and verificationStatus together.
func (s *PostgresStore) UpdateVerification(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = $1, verification_status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update verification: %w", err)
	}
	return requireRow(res)
}

// UpdateStatus writes status only; used by manual overrides.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status model.Status) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET status = $1 WHERE id = $2`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return requireRow(res)
}

// UpdateMetrics overwrites a submission's counters in one write.
// GREATEST keeps last_updated monotonically non-decreasing.
func (s *PostgresStore) UpdateMetrics(ctx context.Context, submissionID string, views, likes int64, watchHours float64, lastUpdated time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE video_metrics
		 SET views = $1, likes = $2, watch_hours = $3, last_updated = GREATEST(last_updated, $4)
		 WHERE submission_id = $5`,
		views, likes, watchHours, lastUpdated, submissionID,
	)
	if err != nil {
		return fmt.Errorf("update metrics: %w", err)
	}
	return requireRow(res)
}

// GetMetrics returns the metrics record for one submission.
func (s *PostgresStore) GetMetrics(ctx context.Context, submissionID string) (model.Metrics, error) {
	var m model.Metrics
	err := s.db.QueryRowContext(ctx,
		`SELECT submission_id, views, likes, watch_hours, last_updated
		 FROM video_metrics WHERE submission_id = $1`,
		submissionID,
	).Scan(&m.SubmissionID, &m.Views, &m.Likes, &m.WatchHours, &m.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Metrics{}, ErrNotFound
	}
	if err != nil {
		return model.Metrics{}, fmt.Errorf("get metrics: %w", err)
	}
	return m, nil
}

// GetMetricsBatch returns metrics for the given submissions.
func (s *PostgresStore) GetMetricsBatch(ctx context.Context, submissionIDs []string) (map[string]model.Metrics, error) {
	if len(submissionIDs) == 0 {
		return map[string]model.Metrics{}, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT submission_id, views, likes, watch_hours, last_updated
		 FROM video_metrics WHERE submission_id = ANY($1)`,
		pq.StringArray(submissionIDs),
	)
	if err != nil {
		return nil, fmt.Errorf("batch metrics: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]model.Metrics, len(submissionIDs))
	for rows.Next() {
		var m model.Metrics
		if err := rows.Scan(&m.SubmissionID, &m.Views, &m.Likes, &m.WatchHours, &m.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan metrics: %w", err)
		}
		out[m.SubmissionID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (model.Submission, error) {
	var sub model.Submission
	var status, verification string
	if err := row.Scan(
		&sub.ID,
		&sub.VideoID,
		&sub.UserID,
		&sub.UserName,
		&sub.Title,
		&status,
		&verification,
		&sub.CreatedAt,
	); err != nil {
		return model.Submission{}, err
	}
	sub.Status = model.Status(status)
	sub.VerificationStatus = model.Status(verification)
	return sub, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
